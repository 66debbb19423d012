package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chat-relay/internal/domain"
	"chat-relay/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

// Relayer is the use case the handler fronts.
type Relayer interface {
	Relay(ctx context.Context, in usecase.RelayInput) (usecase.RelayOutput, error)
}

type Handler struct {
	relay  Relayer
	logger *zap.Logger
}

type chatRequest struct {
	Message             *string           `json:"message"`
	ConversationHistory []domain.ChatTurn `json:"conversationHistory"`
}

type chatResponse struct {
	Success             bool              `json:"success"`
	Response            string            `json:"response"`
	ConversationHistory []domain.ChatTurn `json:"conversationHistory"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func NewHandler(relay Relayer, logger *zap.Logger) (*Handler, error) {
	if relay == nil {
		return nil, errors.New("handler: relay must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{relay: relay, logger: logger}, nil
}

// Handle serves one API Gateway proxy event. It never returns an error:
// every failure becomes a 500 response with {"success":false,"error":...}.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	corrID := correlationID(req.Headers)
	log := h.logger.With(zap.String("correlation_id", corrID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("relay panicked", zap.Any("panic", r), zap.Stack("stack"))
			resp, err = h.fail(log, corrID, usecase.Internal("panic", fmt.Sprint(r), nil)), nil
		}
	}()

	log.Info("received event",
		zap.String("method", req.HTTPMethod),
		zap.String("path", req.Path),
		zap.String("request_id", req.RequestContext.RequestID),
		zap.String("body", req.Body),
	)

	if claims := authClaims(req); claims != nil {
		log.Info("authenticated user", zap.String("user", identity(claims)))
	}

	if req.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    responseHeaders(corrID),
		}, nil
	}

	in, decodeErr := decodeRequest(req)
	if decodeErr != nil {
		return h.fail(log, corrID, decodeErr), nil
	}

	out, relayErr := h.relay.Relay(usecase.WithLogger(ctx, log), in)
	if relayErr != nil {
		return h.fail(log, corrID, relayErr), nil
	}

	return h.respond(log, http.StatusOK, corrID, chatResponse{
		Success:             true,
		Response:            out.Response,
		ConversationHistory: out.History,
	}), nil
}

func decodeRequest(req events.APIGatewayProxyRequest) (usecase.RelayInput, error) {
	body := req.Body
	if req.IsBase64Encoded {
		raw, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return usecase.RelayInput{}, usecase.MalformedRequest("invalid_base64", "request body is not valid base64", err)
		}
		body = string(raw)
	}
	if strings.TrimSpace(body) == "" {
		return usecase.RelayInput{}, usecase.MalformedRequest("empty_body", "request body is required", nil)
	}

	var in chatRequest
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		return usecase.RelayInput{}, usecase.MalformedRequest("invalid_json", "invalid request body: "+err.Error(), err)
	}
	if in.Message == nil {
		return usecase.RelayInput{}, usecase.MalformedRequest("missing_message", "message is required", nil)
	}
	return usecase.RelayInput{
		Message: *in.Message,
		History: in.ConversationHistory,
	}, nil
}

func (h *Handler) fail(log *zap.Logger, corrID string, err error) events.APIGatewayProxyResponse {
	var relayErr *usecase.Error
	if !errors.As(err, &relayErr) {
		relayErr = usecase.Internal("unexpected_error", err.Error(), err)
	}
	log.Error("request failed",
		zap.String("code", string(relayErr.Code)),
		zap.String("reason", relayErr.Reason),
		zap.Error(err),
	)
	return h.respond(log, http.StatusInternalServerError, corrID, errorResponse{
		Success: false,
		Error:   relayErr.PublicMessage(),
	})
}

func (h *Handler) respond(log *zap.Logger, status int, corrID string, payload any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error("failed to encode response", zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"success":false,"error":"failed to encode response"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    responseHeaders(corrID),
		Body:       string(body),
	}
}

func responseHeaders(corrID string) map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
		"Access-Control-Allow-Methods": "OPTIONS,POST",
		correlationHeader:              corrID,
	}
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return newUUID()
}

// authClaims returns the Cognito claims attached by an API Gateway
// authorizer, or nil. They are only logged.
func authClaims(req events.APIGatewayProxyRequest) map[string]any {
	if req.RequestContext.Authorizer == nil {
		return nil
	}
	claims, ok := req.RequestContext.Authorizer["claims"].(map[string]any)
	if !ok || len(claims) == 0 {
		return nil
	}
	return claims
}

func identity(claims map[string]any) string {
	for _, key := range []string{"email", "cognito:username"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

var newUUID = func() string {
	return uuid.NewString()
}
