package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Limites de validação.
const (
	MinPasswordLength     = 8
	MaxPasswordLength     = 72 // limite do bcrypt
	MaxProposalNameLength = 200
	MaxClientNameLength   = 200
	MaxProposalValue      = 100000000.0
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
)

// ValidateLength verifica o comprimento de uma string em runas.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s precisa de pelo menos %d caracteres", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s pode ter no máximo %d caracteres", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty verifica que a string não é vazia.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s não pode ficar vazio", fieldName)
	}
	return nil
}

// ValidateEmail verifica o formato do email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email é obrigatório")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("formato de email inválido")
	}

	localPart, domainPart := parts[0], parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("a parte local do email deve ter entre 1 e 64 caracteres")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("o domínio do email deve ter entre 1 e 255 caracteres")
	}

	if !emailLocalRegex.MatchString(localPart) {
		return fmt.Errorf("a parte local do email contém caracteres inválidos")
	}
	if !emailDomainRegex.MatchString(domainPart) {
		return fmt.Errorf("o domínio do email tem formato inválido")
	}

	return nil
}

// ValidatePassword verifica os requisitos mínimos da senha.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("senha é obrigatória")
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("a senha precisa de pelo menos %d caracteres", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("a senha pode ter no máximo %d caracteres", MaxPasswordLength)
	}
	return nil
}
