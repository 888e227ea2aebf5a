// Package ws transmite eventos do ciclo de vida das propostas para os
// dashboards conectados via WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/theforce-cc/proposal-backend/internal/logger"
)

// Tipos de evento enviados ao dashboard.
const (
	EventProposalCreated = "proposal.created"
	EventProposalUpdated = "proposal.updated"
	EventProposalViewed  = "proposal.viewed"
	EventProposalDeleted = "proposal.deleted"
)

// ProposalEvent é a carga enviada aos clientes do dashboard.
type ProposalEvent struct {
	Type       string    `json:"type"`
	ProposalID uuid.UUID `json:"proposal_id"`
	Slug       string    `json:"slug,omitempty"`
	Status     string    `json:"status,omitempty"`
}

// Hub gerencia todas as conexões WebSocket do dashboard.
// Os eventos são melhor esforço: cliente lento é desconectado, nunca
// bloqueia o caminho da requisição.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	ctx        context.Context
}

// NewHub cria o hub.
func NewHub(ctx context.Context) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 32),
		ctx:        ctx,
	}
}

// Run executa o loop principal do hub.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case payload := <-h.broadcast:
			h.send(payload)
		}
	}
}

// Register adiciona um cliente.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister remove um cliente.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast envia o evento para todos os dashboards conectados.
func (h *Hub) Broadcast(event ProposalEvent) {
	raw, err := json.Marshal(event)
	if err != nil {
		if logger.Log != nil {
			logger.Log.WithField("error", err.Error()).Warn("ws: falha ao serializar evento")
		}
		return
	}

	// Envio não bloqueante: se o buffer do hub estiver cheio, o evento
	// é descartado em vez de atrasar a resposta HTTP.
	select {
	case h.broadcast <- raw:
	default:
		if logger.Log != nil {
			logger.Log.Warn("ws: buffer de eventos cheio, evento descartado")
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

func (h *Hub) send(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			go client.Close()
		}
	}
}
