package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisResetTokenRoundTrip(t *testing.T) {
	redis := miniredis.RunT(t)
	tokens := NewRedisResetTokenStore(redis.Addr(), "")

	token, err := tokens.NewResetToken("user@example.com", 15*time.Minute)
	if err != nil {
		t.Fatalf("new reset token: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	ok, err := tokens.ConsumeResetToken("user@example.com", "wrong-token")
	if err != nil {
		t.Fatalf("consume wrong token: %v", err)
	}
	if ok {
		t.Fatal("wrong token must not validate")
	}

	ok, err = tokens.ConsumeResetToken("user@example.com", token)
	if err != nil {
		t.Fatalf("consume token: %v", err)
	}
	if !ok {
		t.Fatal("valid token rejected")
	}

	// Single use: the same token must not validate twice.
	ok, err = tokens.ConsumeResetToken("user@example.com", token)
	if err != nil {
		t.Fatalf("consume token again: %v", err)
	}
	if ok {
		t.Fatal("token must be single-use")
	}
}

func TestRedisResetTokenExpires(t *testing.T) {
	redis := miniredis.RunT(t)
	tokens := NewRedisResetTokenStore(redis.Addr(), "")

	token, err := tokens.NewResetToken("user@example.com", time.Minute)
	if err != nil {
		t.Fatalf("new reset token: %v", err)
	}
	redis.FastForward(2 * time.Minute)

	ok, err := tokens.ConsumeResetToken("user@example.com", token)
	if err != nil {
		t.Fatalf("consume expired token: %v", err)
	}
	if ok {
		t.Fatal("expired token must not validate")
	}
}

func TestRedisResetTokenReplacedByNewIssue(t *testing.T) {
	redis := miniredis.RunT(t)
	tokens := NewRedisResetTokenStore(redis.Addr(), "")

	first, err := tokens.NewResetToken("user@example.com", time.Minute)
	if err != nil {
		t.Fatalf("first token: %v", err)
	}
	second, err := tokens.NewResetToken("user@example.com", time.Minute)
	if err != nil {
		t.Fatalf("second token: %v", err)
	}

	ok, err := tokens.ConsumeResetToken("user@example.com", first)
	if err != nil {
		t.Fatalf("consume first: %v", err)
	}
	if ok {
		t.Fatal("replaced token must not validate")
	}
	ok, err = tokens.ConsumeResetToken("user@example.com", second)
	if err != nil {
		t.Fatalf("consume second: %v", err)
	}
	if !ok {
		t.Fatal("latest token rejected")
	}
}

func TestMemoryResetTokenStore(t *testing.T) {
	tokens := NewMemoryResetTokenStore()
	token, err := tokens.NewResetToken("User@Example.com", time.Minute)
	if err != nil {
		t.Fatalf("new reset token: %v", err)
	}
	// Email lookup is case-insensitive.
	ok, err := tokens.ConsumeResetToken("user@example.com", token)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !ok {
		t.Fatal("valid token rejected")
	}
	ok, _ = tokens.ConsumeResetToken("user@example.com", token)
	if ok {
		t.Fatal("token must be single-use")
	}
}
