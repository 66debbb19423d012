package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"chat-relay/internal/domain"
)

const (
	maxNewTokens = 512
	temperature  = 0.7
	topP         = 0.9
)

type httpStatusCoder interface {
	error
	HTTPStatusCode() int
}

type RelayService struct {
	gen     Generator
	logger  *zap.Logger
	modelID string
}

type RelayInput struct {
	Message string
	History []domain.ChatTurn
}

type RelayOutput struct {
	Response string
	History  []domain.ChatTurn
}

func NewRelayService(gen Generator, logger *zap.Logger, modelID string) (*RelayService, error) {
	if gen == nil {
		return nil, errors.New("usecase: generator must not be nil")
	}
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return nil, errors.New("usecase: model id must not be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelayService{gen: gen, logger: logger, modelID: modelID}, nil
}

// Relay sends the history plus the new user message to the generator and
// returns the history extended by the user turn and the assistant reply.
// The input slice is never modified.
func (s *RelayService) Relay(ctx context.Context, in RelayInput) (RelayOutput, error) {
	log := loggerFrom(ctx, s.logger)

	turns := make([]domain.ChatTurn, 0, len(in.History)+2)
	turns = append(turns, in.History...)
	turns = append(turns, domain.ChatTurn{Role: domain.RoleUser, Content: in.Message})

	prompt, dropped := domain.Reshape(turns)
	if dropped > 0 {
		log.Warn("dropping turns with unsupported role from prompt", zap.Int("dropped", dropped))
	}

	req := buildGenerationRequest(prompt)
	log.Info("calling generation endpoint",
		zap.String("model", s.modelID),
		zap.Int("turns", len(prompt)),
		zap.Any("payload", req),
	)

	text, err := s.gen.Generate(ctx, req)
	if err != nil {
		return RelayOutput{}, classifyGenerationError(err)
	}
	log.Info("generation endpoint replied", zap.String("generated_text", text))

	turns = append(turns, domain.ChatTurn{Role: domain.RoleAssistant, Content: text})
	return RelayOutput{Response: text, History: turns}, nil
}

func buildGenerationRequest(prompt []domain.WireTurn) domain.GenerationRequest {
	return domain.GenerationRequest{
		Prompt:       prompt,
		MaxNewTokens: maxNewTokens,
		DoSample:     true,
		Temperature:  temperature,
		TopP:         topP,
	}
}

func classifyGenerationError(err error) *Error {
	if errors.Is(err, domain.ErrEmptyGeneration) {
		return newError(ErrorEmptyGeneration, "empty_generated_text", domain.ErrEmptyGeneration.Error(), err)
	}
	var statusErr httpStatusCoder
	if errors.As(err, &statusErr) {
		return newError(ErrorUpstream, "generation_http_status", statusErr.Error(), err)
	}
	return newError(ErrorInternal, "generation_request_error", err.Error(), err)
}
