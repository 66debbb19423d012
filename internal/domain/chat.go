package domain

import "errors"

// ErrEmptyGeneration reports a well-formed generation response that carries
// no generated_text.
var ErrEmptyGeneration = errors.New("no generated_text returned from the model")

// Role identifies who produced a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one message of a conversation in its logical form, as the
// caller sends and receives it.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TextBlock wraps turn content for the generation endpoint.
type TextBlock struct {
	Text string `json:"text"`
}

// WireTurn is a ChatTurn reshaped into the generation endpoint's format.
type WireTurn struct {
	Role    Role        `json:"role"`
	Content []TextBlock `json:"content"`
}

// GenerationRequest is the JSON body posted to the generation endpoint.
type GenerationRequest struct {
	Prompt       []WireTurn `json:"prompt"`
	MaxNewTokens int        `json:"max_new_tokens"`
	DoSample     bool       `json:"do_sample"`
	Temperature  float64    `json:"temperature"`
	TopP         float64    `json:"top_p"`
}

// GenerationResponse is the JSON body returned by the generation endpoint.
type GenerationResponse struct {
	GeneratedText string `json:"generated_text"`
}

// Reshape converts turns into wire turns, keeping order. Turns whose role is
// neither user nor assistant are skipped; the second return value counts them.
func Reshape(turns []ChatTurn) ([]WireTurn, int) {
	wire := make([]WireTurn, 0, len(turns))
	dropped := 0
	for _, t := range turns {
		switch t.Role {
		case RoleUser, RoleAssistant:
			wire = append(wire, WireTurn{
				Role:    t.Role,
				Content: []TextBlock{{Text: t.Content}},
			})
		default:
			dropped++
		}
	}
	return wire, dropped
}
