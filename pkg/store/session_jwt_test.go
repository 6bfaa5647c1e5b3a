package store

import (
	"testing"
	"time"

	"interviewai/pkg/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTSessionRoundTrip(t *testing.T) {
	sessions, err := NewJWTSessionStore(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	token, err := sessions.NewSession("user-1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	identity, err := sessions.IdentityFromToken(token)
	if err != nil {
		t.Fatalf("identity from token: %v", err)
	}
	if identity.UserID != "user-1" {
		t.Fatalf("expected user-1, got %q", identity.UserID)
	}
	if identity.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %q", identity.Role)
	}
	if !identity.IsAdmin() {
		t.Fatal("admin identity should report IsAdmin")
	}
}

func TestJWTSessionRejectsForeignSignature(t *testing.T) {
	sessions, err := NewJWTSessionStore(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	other, err := NewJWTSessionStore("fedcba9876543210fedcba9876543210", time.Hour)
	if err != nil {
		t.Fatalf("new other store: %v", err)
	}
	token, err := other.NewSession("user-1", domain.RoleUser)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := sessions.IdentityFromToken(token); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}
}

func TestJWTSessionRejectsExpired(t *testing.T) {
	sessions, err := NewJWTSessionStore(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	// Force immediate expiry beyond leeway.
	sessions.ttl = -2 * time.Minute
	token, err := sessions.NewSession("user-1", domain.RoleUser)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := sessions.IdentityFromToken(token); err == nil {
		t.Fatal("expired token must be rejected")
	}
}

func TestJWTSessionRejectsGarbage(t *testing.T) {
	sessions, err := NewJWTSessionStore(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	for _, token := range []string{"", "   ", "not.a.jwt"} {
		if _, err := sessions.IdentityFromToken(token); err == nil {
			t.Fatalf("token %q must be rejected", token)
		}
	}
}

func TestJWTSessionStoreRequiresStrongSecret(t *testing.T) {
	if _, err := NewJWTSessionStore("short", time.Hour); err == nil {
		t.Fatal("short secret should be rejected")
	}
}

func TestJWTSessionDefaultsRole(t *testing.T) {
	sessions, err := NewJWTSessionStore(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	token, err := sessions.NewSession("user-1", "")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	identity, err := sessions.IdentityFromToken(token)
	if err != nil {
		t.Fatalf("identity from token: %v", err)
	}
	if identity.Role != domain.RoleUser {
		t.Fatalf("empty role should default to user, got %q", identity.Role)
	}
}
