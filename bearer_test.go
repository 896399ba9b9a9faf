package neurochat

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/EdwinKingori/I-NeuroChat/jwt"
)

func newTestJWTResolver(t *testing.T) (*JWTResolver, *jwt.Manager) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	manager, err := jwt.NewManager(jwt.Config{
		TTL:           time.Minute,
		SigningMethod: jwt.MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	resolver, err := NewJWTResolver(manager)
	if err != nil {
		t.Fatalf("NewJWTResolver() error = %v", err)
	}
	return resolver, manager
}

func TestJWTResolverRoundTrip(t *testing.T) {
	resolver, manager := newTestJWTResolver(t)

	token, err := manager.Issue("u-1", "alice@example.com", "support")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	ident, err := resolver.ResolveToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ResolveToken() error = %v", err)
	}
	want := Identity{UserID: "u-1", Email: "alice@example.com", Role: "support", Active: true}
	if *ident != want {
		t.Fatalf("ResolveToken() = %+v, want %+v", ident, want)
	}
}

func TestJWTResolverRejectsGarbage(t *testing.T) {
	resolver, _ := newTestJWTResolver(t)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := resolver.ResolveToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ResolveToken(%q) error = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestJWTResolverRejectsForeignSignature(t *testing.T) {
	resolver, _ := newTestJWTResolver(t)
	_, other := newTestJWTResolver(t)

	token, err := other.Issue("u-1", "alice@example.com", "support")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := resolver.ResolveToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("ResolveToken() cross-key error = %v, want ErrInvalidToken", err)
	}
}
