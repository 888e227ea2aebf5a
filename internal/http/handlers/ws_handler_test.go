package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theforce-cc/proposal-backend/internal/service"
)

func TestWSUpgradeOriginAllowList(t *testing.T) {
	allowed := []string{"http://localhost:3000", "https://app.theforce.cc"}
	tm := service.NewTokenManager("access-secret-apenas-para-teste-123", "refresh-secret-apenas-para-teste-12", 0, 0)
	h := NewWSHandler(nil, tm, allowed)

	cases := []struct {
		name   string
		origin string
		want   bool
	}{
		{"origin da lista", "http://localhost:3000", true},
		{"segundo origin da lista", "https://app.theforce.cc", true},
		{"origin desconhecido", "https://malicioso.example.com", false},
		{"esquema diferente", "https://localhost:3000", false},
		{"sem origin (cliente não-browser)", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/ws", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			assert.Equal(t, tc.want, h.upgrader.CheckOrigin(req))
		})
	}
}
