package odin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pet-adoption/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOdin(t *testing.T, h http.HandlerFunc) *Verifier {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "key-1"})
	require.NoError(t, err)
	return NewVerifier(c)
}

func TestVerifier_OK(t *testing.T) {
	v := newOdin(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, verifyPath, r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tok", body["token"])

		_ = json.NewEncoder(w).Encode(map[string]string{"user_id": "u-9", "email": "Ana@Example.com", "role": "shelter"})
	})

	claims, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{UserID: "u-9", Email: "ana@example.com", Role: auth.RoleShelter}, claims)
}

func TestVerifier_DefaultsToAdopter(t *testing.T) {
	v := newOdin(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"user_id": "u-1"})
	})

	claims, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdopter, claims.Role)
}

func TestVerifier_Unauthorized(t *testing.T) {
	v := newOdin(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrOdinUnauthorized)
}

func TestVerifier_Upstream(t *testing.T) {
	v := newOdin(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrOdinUpstream)
}

func TestVerifier_NotConfigured(t *testing.T) {
	c, err := NewClient(Config{})
	require.NoError(t, err)

	_, err = NewVerifier(c).Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrOdinNotConfigured)
}

func TestVerifier_LocalRoleWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"user_id": "u-7", "role": "adopter"})
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "key-1"})
	require.NoError(t, err)

	roles := map[string]auth.Role{"u-7": auth.RoleShelter}
	v := NewVerifier(c, WithLocalRoles(func(_ context.Context, id string) (auth.Role, bool) {
		r, ok := roles[id]
		return r, ok
	}))

	claims, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleShelter, claims.Role)

	delete(roles, "u-7")
	claims, err = v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdopter, claims.Role)
}
