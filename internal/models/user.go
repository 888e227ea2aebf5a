package models

import (
	"time"

	"github.com/google/uuid"
)

// Papéis reconhecidos para a equipe interna.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// SystemUserID é a identidade fixa usada como dona das propostas quando
// nenhuma autenticação real está configurada.
var SystemUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// User representa uma identidade da equipe (ou o usuário sistema).
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	Role         string    `db:"role" json:"role"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
