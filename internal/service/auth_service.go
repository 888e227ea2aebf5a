package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"

	"github.com/theforce-cc/proposal-backend/internal/models"
	"github.com/theforce-cc/proposal-backend/internal/pkg/apperror"
	"github.com/theforce-cc/proposal-backend/internal/repository/common"
	"github.com/theforce-cc/proposal-backend/internal/validation"
)

// AuthRepository descreve o que o AuthService precisa do armazenamento.
type AuthRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthService encapsula registro e autenticação da equipe.
// O store de propostas nunca enxerga credenciais, apenas a referência
// opaca de identidade.
type AuthService struct {
	repo         AuthRepository
	tokenManager *TokenManager
}

// RegisterInput carrega os dados de registro.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// LoginInput carrega os dados de login.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult devolve o resultado do registro ou do login.
type AuthResult struct {
	User      *models.User `json:"user"`
	TokenPair *TokenPair   `json:"tokens"`
}

// NewAuthService cria o serviço de autenticação.
func NewAuthService(repo AuthRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		repo:         repo,
		tokenManager: tokenManager,
	}
}

// Register cria um novo usuário da equipe.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	role := in.Role
	if role == "" {
		role = models.RoleEditor
	}
	if role != models.RoleAdmin && role != models.RoleEditor && role != models.RoleViewer {
		return nil, apperror.New(apperror.ErrCodeValidation, "papel deve ser admin, editor ou viewer")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = deriveName(in.Email)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "não foi possível gerar o hash da senha")
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Name:         name,
		Role:         role,
		PasswordHash: string(passHash),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "email já cadastrado")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "não foi possível criar o usuário")
	}

	tokenPair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "não foi possível emitir os tokens")
	}

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Login autentica um usuário pelo par email/senha.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.New(apperror.ErrCodeUnauthorized, "credenciais inválidas")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "credenciais inválidas")
	}

	tokenPair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "não foi possível emitir os tokens")
	}

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Refresh troca um refresh token válido por um novo par.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokenManager.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "refresh token inválido")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "refresh token inválido")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.New(apperror.ErrCodeUnauthorized, "refresh token inválido")
		}
		return nil, err
	}

	tokenPair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "não foi possível emitir os tokens")
	}

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// deriveName usa a parte local do email quando nenhum nome é informado.
func deriveName(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
