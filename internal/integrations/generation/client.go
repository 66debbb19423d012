package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"chat-relay/internal/domain"
)

const defaultTimeout = 25 * time.Second

// HTTPStatusError captures non-2xx responses from the generation endpoint.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

// Error renders the message surfaced to callers, e.g. "API error 500: <body>".
// 422 bodies are flattened into "field: msg" pairs when they parse.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Detail())
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Detail returns the error text without the status prefix.
func (e *HTTPStatusError) Detail() string {
	if e.StatusCode == http.StatusUnprocessableEntity {
		if summary, ok := formatValidationDetail(e.Body); ok {
			return summary
		}
	}
	return e.Body
}

type validationError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

type validationErrorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// formatValidationDetail turns {"detail":[{"loc":[...],"msg":"..."}]} into
// "field: msg, field: msg". The field is the last loc element.
func formatValidationDetail(body string) (string, bool) {
	var payload validationErrorBody
	if err := json.Unmarshal([]byte(body), &payload); err != nil || len(payload.Detail) == 0 {
		return "", false
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return text, text != ""
	}

	var items []validationError
	if err := json.Unmarshal(payload.Detail, &items); err != nil {
		return "", false
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s: %s", fieldName(item.Loc), item.Msg))
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ", "), true
}

func fieldName(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	return fmt.Sprint(loc[len(loc)-1])
}

// Client posts generation requests to a single configured endpoint.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	rc         *resty.Client
}

type Option func(*Client)

// WithTimeout bounds each request. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient sets the underlying transport client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client for the given absolute http(s) endpoint URL.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("generation: endpoint must not be empty")
	}
	u, err := url.ParseRequestURI(endpoint)
	if err != nil {
		return nil, fmt.Errorf("generation: parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("generation: unsupported endpoint scheme %q", u.Scheme)
	}

	c := &Client{
		endpoint: endpoint,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient != nil {
		c.rc = resty.NewWithClient(c.httpClient)
	} else {
		c.rc = resty.New()
	}
	c.rc.SetTimeout(c.timeout)
	c.rc.SetHeader("Content-Type", "application/json")
	return c, nil
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Generate posts req once and returns generated_text. Non-2xx responses
// yield *HTTPStatusError; an empty generated_text yields domain.ErrEmptyGeneration.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("generation: marshal request: %w", err)
	}

	res, err := c.rc.R().
		SetContext(ctx).
		SetBody(body).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("generation: request failed: %w", err)
	}

	if !res.IsSuccess() {
		return "", &HTTPStatusError{
			StatusCode: res.StatusCode(),
			URL:        c.endpoint,
			Body:       string(res.Body()),
		}
	}

	var payload domain.GenerationResponse
	if err := json.Unmarshal(res.Body(), &payload); err != nil {
		return "", fmt.Errorf("generation: decode response: %w", err)
	}
	if payload.GeneratedText == "" {
		return "", domain.ErrEmptyGeneration
	}
	return payload.GeneratedText, nil
}
