package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClaims struct {
	userID uuid.UUID
}

func (c *testClaims) GetUserID() uuid.UUID {
	return c.userID
}

func validatorFor(tokens map[string]uuid.UUID) TokenValidator {
	return TokenValidatorFunc(func(_ context.Context, token string) (Principal, error) {
		id, ok := tokens[token]
		if !ok {
			return nil, fmt.Errorf("invalid token")
		}
		return &testClaims{userID: id}, nil
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	userID := uuid.New()
	mw := AuthMiddleware(validatorFor(map[string]uuid.UUID{"tok-1": userID}), nil)

	var gotID uuid.UUID
	var gotToken string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		gotID, err = GetUserID(r)
		require.NoError(t, err)
		gotToken = GetToken(r)
		w.WriteHeader(http.StatusOK)
	}))

	for _, header := range []string{"Bearer tok-1", "bearer tok-1", "BEARER   tok-1"} {
		t.Run(header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/cvs", nil)
			req.Header.Set("Authorization", header)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, userID, gotID)
			assert.Equal(t, "tok-1", gotToken)
		})
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	mw := AuthMiddleware(validatorFor(map[string]uuid.UUID{"tok-1": uuid.New()}), nil)
	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic tok-1"},
		{"no token", "Bearer"},
		{"extra parts", "Bearer tok-1 extra"},
		{"unknown token", "Bearer nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			req := httptest.NewRequest(http.MethodGet, "/cvs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, called)
		})
	}
}

func TestAuthMiddleware_CustomUnauthorized(t *testing.T) {
	mw := AuthMiddleware(validatorFor(nil), func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"auth/invalid-token"}`))
	})
	rec := httptest.NewRecorder()
	mw(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"code":"auth/invalid-token"}`, rec.Body.String())
}

func TestGetUserID_Missing(t *testing.T) {
	_, err := GetUserID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, err)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUserID(req.Context(), id))
	got, err := GetUserID(req)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}
