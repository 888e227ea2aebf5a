package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// ProposalStatus representa o estado de uma proposta no ciclo de revisão.
type ProposalStatus string

const (
	StatusDraft    ProposalStatus = "draft"
	StatusSent     ProposalStatus = "sent"
	StatusViewed   ProposalStatus = "viewed"
	StatusApproved ProposalStatus = "approved"
	StatusRejected ProposalStatus = "rejected"
)

// IsValid informa se o status é um dos valores reconhecidos.
func (s ProposalStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusViewed, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo aplica a whitelist de transições do ciclo de revisão:
// draft→sent, sent→viewed, sent|viewed→approved|rejected.
// Escrever o mesmo status é sempre permitido (no-op).
func (s ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusDraft:
		return next == StatusSent
	case StatusSent:
		return next == StatusViewed || next == StatusApproved || next == StatusRejected
	case StatusViewed:
		return next == StatusApproved || next == StatusRejected
	}
	return false
}

// Proposal é a entidade central: uma proposta comercial apresentada a um cliente.
// O slug é gerado na criação e nunca muda, mesmo que o nome seja editado depois.
type Proposal struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Client      string         `db:"client" json:"client"`
	ClientID    *uuid.UUID     `db:"client_id" json:"client_id,omitempty"`
	Value       float64        `db:"value" json:"value"`
	Slug        string         `db:"slug" json:"slug"`
	Status      ProposalStatus `db:"status" json:"status"`
	Version     int            `db:"version" json:"version"`
	ContentJSON types.JSONText `db:"content_json" json:"content_json"`
	CreatedBy   *uuid.UUID     `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
