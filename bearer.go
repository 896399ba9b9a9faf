package neurochat

import (
	"context"
	"errors"
	"fmt"

	"github.com/EdwinKingori/I-NeuroChat/jwt"
)

// JWTResolver resolves bearer JWTs to identities through a [jwt.Manager].
// It implements [TokenResolver], so handler code can authenticate with
// either credential mechanism behind the same interface.
//
// JWT identities are self-contained: the claims carry user, email, and role,
// and no storage or cache lookup happens on the resolve path. Revocation is
// therefore bounded by token TTL alone; keep JWT TTLs short.
type JWTResolver struct {
	manager *jwt.Manager
}

// NewJWTResolver wraps manager as a [TokenResolver].
func NewJWTResolver(manager *jwt.Manager) (*JWTResolver, error) {
	if manager == nil {
		return nil, errors.New("jwt manager required")
	}
	return &JWTResolver{manager: manager}, nil
}

// ResolveToken verifies the compact JWT and maps its claims to an identity.
// Any parse, signature, or claim failure surfaces as [ErrInvalidToken].
func (r *JWTResolver) ResolveToken(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims, err := r.manager.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
		Active: true,
	}, nil
}

var _ TokenResolver = (*JWTResolver)(nil)
var _ TokenResolver = (*Engine)(nil)
