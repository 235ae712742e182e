package odin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pet-adoption/internal/ports/auth"
)

var ErrTokenEmpty = errors.New("token is empty")

// RoleFunc devuelve el rol local de un usuario; ok=false si no existe.
type RoleFunc func(ctx context.Context, userID string) (auth.Role, bool)

// Verifier implementa auth.AuthVerifier contra Odin. Odin autentica, pero los
// roles shelter/admin viven en nuestro store de usuarios.
type Verifier struct {
	client     *Client
	localRoles RoleFunc
}

type VerifierOption func(*Verifier)

// WithLocalRoles hace que el rol del store local gane sobre el que mande Odin.
func WithLocalRoles(fn RoleFunc) VerifierOption {
	return func(v *Verifier) { v.localRoles = fn }
}

func NewVerifier(client *Client, opts ...VerifierOption) *Verifier {
	v := &Verifier{client: client}
	for _, o := range opts {
		o(v)
	}
	return v
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrOdinNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	claims, err := v.client.VerifyToken(ctx, token)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("odin verify failed: %w", err)
	}

	if v.localRoles != nil {
		if role, ok := v.localRoles(ctx, claims.UserID); ok {
			claims.Role = role
		}
	}
	return claims, nil
}
