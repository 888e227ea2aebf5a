package ai

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/theforce-cc/proposal-backend/internal/logger"
)

// fallbackReply é a resposta neutra quando o upstream falha. A falha da
// API nunca vira erro para o usuário: o assistente degrada, a página não.
const fallbackReply = "Sorry, I could not generate a response."

// Ações reconhecidas na resposta do assistente.
const (
	ActionChat          = "chat"
	ActionModifyContent = "modify_content"
)

// Reply é a resposta do assistente para a camada HTTP.
type Reply struct {
	Content    string `json:"content"`
	Action     string `json:"action"`
	NewContent any    `json:"newContent"`
}

// Completer abstrai o cliente de chat-completions para os testes.
type Completer interface {
	Chat(ctx context.Context, messages []Message, chatCtx ChatContext) (string, error)
}

// Assistant encaminha a conversa para o modelo e classifica a intenção.
type Assistant struct {
	client Completer
}

// NewAssistant cria o assistente.
func NewAssistant(client Completer) *Assistant {
	return &Assistant{client: client}
}

// Respond nunca devolve erro: qualquer falha do upstream vira a resposta
// neutra de fallback com a ação padrão de chat.
func (a *Assistant) Respond(ctx context.Context, messages []Message, chatCtx ChatContext) Reply {
	content, err := a.client.Chat(ctx, messages, chatCtx)
	if err != nil {
		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":    err.Error(),
				"proposal": chatCtx.ProposalName,
			}).Warn("assistente: falha no upstream, usando fallback")
		}
		return Reply{Content: fallbackReply, Action: ActionChat}
	}

	return Reply{Content: content, Action: detectAction(messages)}
}

// detectAction marca pedidos de modificação de conteúdo a partir da
// última mensagem do usuário.
func detectAction(messages []Message) string {
	if len(messages) == 0 {
		return ActionChat
	}

	last := strings.ToLower(messages[len(messages)-1].Content)
	if strings.Contains(last, "rewrite") || strings.Contains(last, "generate") || strings.Contains(last, "modify") {
		return ActionModifyContent
	}
	return ActionChat
}
