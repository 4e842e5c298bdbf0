package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loan-eligibility/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	secret := "testsecret"
	cfg := config.AuthConfig{Enabled: true, JWTSecret: secret}

	var gotSubject string
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	sign := func(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name       string
		cfg        config.AuthConfig
		header     func(t *testing.T) string
		wantStatus int
		wantSub    string
	}{
		{
			name:       "disabled middleware passes through",
			cfg:        config.AuthConfig{Enabled: false},
			header:     func(t *testing.T) string { return "" },
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			cfg:        cfg,
			header:     func(t *testing.T) string { return "" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			cfg:        cfg,
			header:     func(t *testing.T) string { return "Basic abc" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			cfg:        cfg,
			header:     func(t *testing.T) string { return "Bearer invalidtoken" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong secret",
			cfg:  cfg,
			header: func(t *testing.T) string {
				return "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"username": "asha"})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			cfg:  cfg,
			header: func(t *testing.T) string {
				return "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
					"username": "asha",
					"exp":      time.Now().Add(-time.Hour).Unix(),
				})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "valid token",
			cfg:  cfg,
			header: func(t *testing.T) string {
				return "bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
					"username": "asha",
					"exp":      time.Now().Add(time.Hour).Unix(),
				})
			},
			wantStatus: http.StatusOK,
			wantSub:    "asha",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSubject = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if h := tt.header(t); h != "" {
				req.Header.Set("Authorization", h)
			}
			rec := httptest.NewRecorder()

			AuthMiddleware(tt.cfg, logger)(nextHandler).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantSub, gotSubject)
		})
	}
}
