package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReshape_SingleUserTurn(t *testing.T) {
	wire, dropped := Reshape([]ChatTurn{{Role: RoleUser, Content: "hello"}})
	require.Zero(t, dropped)
	require.Equal(t, []WireTurn{{Role: RoleUser, Content: []TextBlock{{Text: "hello"}}}}, wire)
}

func TestReshape_PreservesOrder(t *testing.T) {
	wire, dropped := Reshape([]ChatTurn{
		{Role: RoleUser, Content: "one"},
		{Role: RoleAssistant, Content: "two"},
		{Role: RoleUser, Content: "three"},
	})
	require.Zero(t, dropped)
	require.Len(t, wire, 3)
	require.Equal(t, "one", wire[0].Content[0].Text)
	require.Equal(t, RoleAssistant, wire[1].Role)
	require.Equal(t, "three", wire[2].Content[0].Text)
}

func TestReshape_DropsUnknownRoles(t *testing.T) {
	wire, dropped := Reshape([]ChatTurn{
		{Role: "system", Content: "be nice"},
		{Role: RoleUser, Content: "hi"},
		{Role: "", Content: "?"},
	})
	require.Equal(t, 2, dropped)
	require.Len(t, wire, 1)
	require.Equal(t, RoleUser, wire[0].Role)
}

func TestReshape_EmptyInput(t *testing.T) {
	wire, dropped := Reshape(nil)
	require.Zero(t, dropped)
	require.NotNil(t, wire)
	require.Empty(t, wire)
}

func TestGenerationRequest_WireFormat(t *testing.T) {
	raw, err := json.Marshal(GenerationRequest{
		Prompt:       []WireTurn{{Role: RoleUser, Content: []TextBlock{{Text: "hi"}}}},
		MaxNewTokens: 512,
		DoSample:     true,
		Temperature:  0.7,
		TopP:         0.9,
	})
	require.NoError(t, err)
	require.JSONEq(t, `{
		"prompt": [{"role": "user", "content": [{"text": "hi"}]}],
		"max_new_tokens": 512,
		"do_sample": true,
		"temperature": 0.7,
		"top_p": 0.9
	}`, string(raw))
}
