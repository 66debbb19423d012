package localserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"
)

type fakeHandler struct {
	resp events.APIGatewayProxyResponse
	err  error
	got  events.APIGatewayProxyRequest
}

func (f *fakeHandler) Handle(_ context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	f.got = req
	return f.resp, f.err
}

func TestRouter_ForwardsEventAndWritesResponse(t *testing.T) {
	fh := &fakeHandler{resp: events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json", "X-Correlation-Id": "c-1"},
		Body:       `{"success":true}`,
	}}
	srv := httptest.NewServer(NewRouter(fh, "/chat"))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/chat", strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, err)
	req.Header.Set("X-Correlation-Id", "c-1")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "c-1", res.Header.Get("X-Correlation-Id"))
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, `{"success":true}`, string(body))

	require.Equal(t, http.MethodPost, fh.got.HTTPMethod)
	require.Equal(t, "/chat", fh.got.Path)
	require.Equal(t, `{"message":"hi"}`, fh.got.Body)
	require.Equal(t, "c-1", fh.got.Headers["X-Correlation-Id"])
	require.NotEmpty(t, fh.got.RequestContext.RequestID)
}

func TestRouter_Options(t *testing.T) {
	fh := &fakeHandler{resp: events.APIGatewayProxyResponse{StatusCode: http.StatusOK}}
	srv := httptest.NewServer(NewRouter(fh, "/chat"))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/chat", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, http.MethodOptions, fh.got.HTTPMethod)
}

func TestRouter_HandlerError(t *testing.T) {
	srv := httptest.NewServer(NewRouter(&fakeHandler{err: errors.New("boom")}, "/chat"))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

func TestRouter_UnknownRoute(t *testing.T) {
	srv := httptest.NewServer(NewRouter(&fakeHandler{}, "/chat"))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/chat")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}
