// Package ai implementa o assistente de edição de propostas sobre uma
// API de chat-completions compatível com OpenAI.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// Message é uma mensagem da conversa com papel marcado.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatContext acompanha a conversa com o estado atual da proposta.
type ChatContext struct {
	ProposalName   string `json:"proposalName"`
	Client         string `json:"client"`
	SelectedText   string `json:"selectedText"`
	CurrentContent string `json:"currentContent"`
}

// systemPrompt descreve o papel do assistente para a agência.
const systemPrompt = `You are an AI assistant specialized in helping create and edit business proposals for THE FORCE, a creative agency. You have expertise in:

1. Writing compelling proposal content
2. Improving existing text for clarity and professionalism
3. Creating technical specifications
4. Generating pricing sections
5. Translating content between Portuguese and English
6. Creating executive summaries
7. Formatting content appropriately

Always maintain THE FORCE's professional tone while being creative and engaging. When modifying content, provide both the explanation and the improved text.

Available commands:
- "Generate [section]" - Create new content
- "Rewrite [text]" - Improve existing content
- "Translate to [language]" - Translate content
- "Add technical specs for [item]" - Add technical details
- "Create summary" - Generate executive summary
- "Format as [style]" - Change formatting`

// Client fala com uma API de chat-completions compatível com OpenAI.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient cria o cliente. A chave vem do ambiente.
func NewClient(baseURL, model string) *Client {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("AI_API_KEY")
	}

	if model == "" {
		model = "gpt-4"
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Chat envia a conversa com o cabeçalho de contexto da proposta e devolve
// a resposta do modelo.
func (c *Client) Chat(ctx context.Context, messages []Message, chatCtx ChatContext) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("ai: baseURL não configurada")
	}

	payload := chatRequest{
		Model:       c.model,
		Messages:    append([]Message{buildSystemMessage(chatCtx)}, messages...),
		MaxTokens:   1000,
		Temperature: 0.7,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errorBody)
		return "", fmt.Errorf("ai: status %d: %v", resp.StatusCode, errorBody)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("ai: resposta ilegível: %w", err)
	}

	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("ai: resposta vazia do modelo")
	}

	return decoded.Choices[0].Message.Content, nil
}

// buildSystemMessage monta a mensagem de sistema com o contexto da proposta.
// O preview do conteúdo é cortado em 500 caracteres.
func buildSystemMessage(chatCtx ChatContext) Message {
	proposalName := chatCtx.ProposalName
	if proposalName == "" {
		proposalName = "N/A"
	}
	client := chatCtx.Client
	if client == "" {
		client = "N/A"
	}
	selected := chatCtx.SelectedText
	if selected == "" {
		selected = "None"
	}

	preview := "No content yet"
	if chatCtx.CurrentContent != "" {
		preview = chatCtx.CurrentContent
		// Corta em runas para não partir um caractere acentuado ao meio.
		if runes := []rune(preview); len(runes) > 500 {
			preview = string(runes[:500])
		}
		preview += "..."
	}

	content := fmt.Sprintf(`%s

Current proposal context:
- Proposal Name: %s
- Client: %s
- Selected Text: %s

Current content preview:
%s`, systemPrompt, proposalName, client, selected, preview)

	return Message{Role: "system", Content: content}
}
