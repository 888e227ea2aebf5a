package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/theforce-cc/proposal-backend/internal/models"
	"github.com/theforce-cc/proposal-backend/internal/pkg/apperror"
	"github.com/theforce-cc/proposal-backend/internal/repository/common"
)

// ErrSlugTaken indica que o insert falhou na constraint única do slug.
// O store trata esse erro tentando o próximo sufixo, nunca o expõe direto.
var ErrSlugTaken = errors.New("slug already taken")

// ProposalRepository cuida da tabela proposals.
type ProposalRepository struct {
	db *sqlx.DB
}

// NewProposalRepository cria a instância do repositório.
func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create insere uma nova proposta. Uma violação da constraint única do
// slug vira ErrSlugTaken para o chamador tentar outro sufixo.
func (r *ProposalRepository) Create(ctx context.Context, p *models.Proposal) error {
	query := `
		INSERT INTO proposals (name, client, client_id, value, slug, status, version, content_json, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		p.Name, p.Client, p.ClientID, p.Value, p.Slug, p.Status, p.Version, p.ContentJSON, p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err, "proposals_slug_key") {
			return ErrSlugTaken
		}
		return fmt.Errorf("proposal repository: create: %w", err)
	}

	return nil
}

// GetByID devolve a proposta pelo identificador.
func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	return common.GetByID[models.Proposal](ctx, r.db, "proposals", id, apperror.ErrProposalNotFound)
}

// GetBySlug devolve a proposta pelo slug.
func (r *ProposalRepository) GetBySlug(ctx context.Context, slug string) (*models.Proposal, error) {
	return common.GetByField[models.Proposal](ctx, r.db, "proposals", "slug", slug, apperror.ErrProposalNotFound)
}

// SlugExists verifica se já existe proposta com o slug informado.
// Melhor esforço: a palavra final é da constraint única no insert.
func (r *ProposalRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM proposals WHERE slug = $1`
	if err := r.db.GetContext(ctx, &count, query, slug); err != nil {
		return false, fmt.Errorf("proposal repository: slug exists: %w", err)
	}
	return count > 0, nil
}

// List devolve todas as propostas, mais recentes primeiro.
func (r *ProposalRepository) List(ctx context.Context) ([]models.Proposal, error) {
	proposals := []models.Proposal{}
	query := `
		SELECT id, name, client, client_id, value, slug, status, version, content_json, created_by, created_at, updated_at
		FROM proposals
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &proposals, query); err != nil {
		return nil, fmt.Errorf("proposal repository: list: %w", err)
	}
	return proposals, nil
}

// Update persiste os campos mutáveis e atualiza updated_at.
func (r *ProposalRepository) Update(ctx context.Context, p *models.Proposal) error {
	query := `
		UPDATE proposals
		SET name = $2, client = $3, client_id = $4, value = $5, status = $6, version = $7, content_json = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		p.ID, p.Name, p.Client, p.ClientID, p.Value, p.Status, p.Version, p.ContentJSON,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.ErrProposalNotFound
		}
		return fmt.Errorf("proposal repository: update: %w", err)
	}

	return nil
}

// UpdateStatus grava apenas o status, usado pelo hook de visualização.
func (r *ProposalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProposalStatus) error {
	query := `UPDATE proposals SET status = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("proposal repository: update status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err == nil && rows == 0 {
		return apperror.ErrProposalNotFound
	}
	return nil
}

// Delete remove a proposta. Remoção de id inexistente é sucesso
// (política suave: o chamador pode já ter observado a remoção).
func (r *ProposalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM proposals WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("proposal repository: delete: %w", err)
	}
	return nil
}
