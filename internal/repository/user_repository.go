package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/theforce-cc/proposal-backend/internal/models"
	"github.com/theforce-cc/proposal-backend/internal/pkg/apperror"
	"github.com/theforce-cc/proposal-backend/internal/repository/common"
)

// UserRepository cuida da tabela users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository cria a instância do repositório.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create insere um novo usuário da equipe.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, name, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		user.Email, user.Name, user.Role, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err, "users_email_key") {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("user repository: create: %w", err)
	}

	return nil
}

// GetByEmail devolve o usuário pelo email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return common.GetByField[models.User](ctx, r.db, "users", "email", email, apperror.ErrUserNotFound)
}

// GetByID devolve o usuário pelo identificador.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return common.GetByID[models.User](ctx, r.db, "users", id, apperror.ErrUserNotFound)
}

// GetOrCreateSystemUser garante a identidade sistema de forma idempotente:
// insert com ON CONFLICT DO NOTHING seguido de leitura, na mesma transação.
// Chamado a cada criação de proposta sem autor, sempre devolve a mesma
// identidade.
func (r *UserRepository) GetOrCreateSystemUser(ctx context.Context) (*models.User, error) {
	var user models.User

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		insert := `
			INSERT INTO users (id, email, name, role)
			VALUES ($1, 'sistema@theforce.cc', 'Sistema THE FORCE', 'admin')
			ON CONFLICT (id) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, insert, models.SystemUserID); err != nil {
			return err
		}

		return tx.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, models.SystemUserID)
	})
	if err != nil {
		return nil, fmt.Errorf("user repository: ensure system user: %w", err)
	}

	return &user, nil
}
