package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"maria@theforce.cc",
		"joao.silva+propostas@example.com.br",
		"ADMIN@THEFORCE.CC",
	}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"sem-arroba",
		"duas@arrobas@x.com",
		"@dominio.com",
		"maria@",
		"maria@semtld",
		"maçã@example.com",
		strings.Repeat("a", 65) + "@example.com",
	}
	for _, email := range invalid {
		assert.Error(t, ValidateEmail(email), email)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword(""))
	assert.Error(t, ValidatePassword("curta"))
	assert.Error(t, ValidatePassword(strings.Repeat("x", 73)))
	assert.NoError(t, ValidatePassword("senha-forte-123"))
	assert.NoError(t, ValidatePassword(strings.Repeat("x", 72)))
}

func TestValidateLength(t *testing.T) {
	assert.NoError(t, ValidateLength("nome", "abc", 1, 10))
	assert.Error(t, ValidateLength("nome", "", 1, 10))
	assert.Error(t, ValidateLength("nome", "abcdefghijk", 1, 10))

	// Conta runas, não bytes.
	assert.NoError(t, ValidateLength("nome", "ação", 1, 4))
}

func TestValidateNonEmpty(t *testing.T) {
	assert.NoError(t, ValidateNonEmpty("cliente", "THE FORCE"))
	assert.Error(t, ValidateNonEmpty("cliente", "   "))
}
