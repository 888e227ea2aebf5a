package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSendsContextAndParsesReply(t *testing.T) {
	var captured chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Resposta do modelo"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "gpt-4")

	reply, err := client.Chat(context.Background(),
		[]Message{{Role: "user", Content: "Rewrite the intro"}},
		ChatContext{ProposalName: "ALMA 2026", Client: "Cliente X"})
	require.NoError(t, err)
	assert.Equal(t, "Resposta do modelo", reply)

	assert.Equal(t, "gpt-4", captured.Model)
	assert.Equal(t, 1000, captured.MaxTokens)
	assert.InDelta(t, 0.7, captured.Temperature, 0.001)

	// Primeira mensagem é a de sistema com o contexto; a do usuário vem depois.
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "Proposal Name: ALMA 2026")
	assert.Equal(t, "Rewrite the intro", captured.Messages[1].Content)
}

func TestChatUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "rate limited"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	_, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "oi"}}, ChatContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestChatEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	_, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "oi"}}, ChatContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vazia")
}

func TestChatWithoutBaseURL(t *testing.T) {
	client := NewClient("", "")

	_, err := client.Chat(context.Background(), nil, ChatContext{})
	require.Error(t, err)
}
