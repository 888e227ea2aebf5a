// Package slug deriva identificadores de URL a partir de nomes livres.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Generate converte um nome livre em um slug: decompõe acentos (NFD),
// descarta as marcas combinantes, coloca tudo em minúsculas, troca
// sequências fora de [a-z0-9] por um único hífen e apara as pontas.
// A unicidade não é garantida aqui; quem resolve colisão é o store.
func Generate(name string) string {
	decomposed := norm.NFD.String(name)

	var b strings.Builder
	b.Grow(len(decomposed))

	lastHyphen := false
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen && b.Len() > 0 {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	return strings.Trim(b.String(), "-")
}

// WithSuffix devolve o candidato para a tentativa n de resolução de
// colisão: a base pura quando n == 0, senão "base-n".
func WithSuffix(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}
