//go:generate mockgen -source=$GOFILE -destination=generator_mock.go -package=$GOPACKAGE
package usecase

import (
	"context"

	"chat-relay/internal/domain"
)

// Generator performs one call to the text-generation endpoint and returns the
// generated text.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
}
