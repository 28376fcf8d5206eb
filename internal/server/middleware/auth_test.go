package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator accepts a fixed set of tokens.
type testTokenValidator struct {
	validTokens map[string]string
}

func (v *testTokenValidator) ValidateToken(tokenString string) (SubjectGetter, error) {
	subject, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return testClaims(subject), nil
}

type testClaims string

func (c testClaims) GetSubject() string { return string(c) }

func protected(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var seen string
	validator := &testTokenValidator{validTokens: map[string]string{"good-token": "api-gateway"}}
	handler := AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := GetSubject(r)
		require.NoError(t, err)
		seen = subject
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &seen
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantDetail string
	}{
		{"valid token", "Bearer good-token", http.StatusOK, ""},
		{"lowercase scheme", "bearer good-token", http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "Falta el token de acceso"},
		{"wrong scheme", "Basic good-token", http.StatusUnauthorized, "Falta el token de acceso"},
		{"extra parts", "Bearer good-token extra", http.StatusUnauthorized, "Falta el token de acceso"},
		{"unknown token", "Bearer bad-token", http.StatusUnauthorized, "Token de acceso inválido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, seen := protected(t)
			req := httptest.NewRequest(http.MethodPost, "/validar", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "api-gateway", *seen)
				return
			}
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantDetail, body["detail"])
			assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
			assert.Empty(t, *seen)
		})
	}
}

func TestGetSubject_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetSubject(req)
	assert.Error(t, err)

	req = req.WithContext(context.WithValue(req.Context(), SubjectKey(), "svc"))
	subject, err := GetSubject(req)
	require.NoError(t, err)
	assert.Equal(t, "svc", subject)
}
