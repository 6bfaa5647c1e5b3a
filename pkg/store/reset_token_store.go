package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisResetTokenStore keeps hashed password reset tokens in Redis. Only
// the SHA-256 hash is stored, keyed by the account email, and the entry
// expires with the configured TTL. A successful consume deletes the entry
// so a token is single-use.
type RedisResetTokenStore struct {
	client *redis.Client
}

// NewRedisResetTokenStore builds a Redis-backed reset token store.
func NewRedisResetTokenStore(addr, password string) *RedisResetTokenStore {
	return &RedisResetTokenStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// NewResetToken issues a token for the email and stores its hash with ttl.
// Issuing a new token replaces any previous outstanding one.
func (s *RedisResetTokenStore) NewResetToken(email string, ttl time.Duration) (string, error) {
	token, err := generateResetToken()
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.client.Set(ctx, resetTokenRedisKey(email), resetTokenHash(token), ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeResetToken validates the token for the email and deletes it on
// success. Unknown or expired tokens return false without error.
func (s *RedisResetTokenStore) ConsumeResetToken(email, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	key := resetTokenRedisKey(email)
	storedHash, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !hashesEqual(storedHash, resetTokenHash(token)) {
		return false, nil
	}
	if err := s.client.Del(ctx, key).Err(); err != nil && err != redis.Nil {
		return false, err
	}
	return true, nil
}

type memoryResetToken struct {
	hash   string
	expiry time.Time
}

// MemoryResetTokenStore keeps reset tokens in memory for tests.
type MemoryResetTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryResetToken
}

// NewMemoryResetTokenStore constructs an in-memory reset token store.
func NewMemoryResetTokenStore() *MemoryResetTokenStore {
	return &MemoryResetTokenStore{tokens: make(map[string]memoryResetToken)}
}

// NewResetToken issues a token for the email and stores its hash with ttl.
func (s *MemoryResetTokenStore) NewResetToken(email string, ttl time.Duration) (string, error) {
	token, err := generateResetToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.tokens[strings.ToLower(email)] = memoryResetToken{
		hash:   resetTokenHash(token),
		expiry: time.Now().UTC().Add(ttl),
	}
	s.mu.Unlock()
	return token, nil
}

// ConsumeResetToken validates and deletes the token for the email.
func (s *MemoryResetTokenStore) ConsumeResetToken(email, token string) (bool, error) {
	key := strings.ToLower(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tokens[key]
	if !ok {
		return false, nil
	}
	if time.Now().UTC().After(entry.expiry) {
		delete(s.tokens, key)
		return false, nil
	}
	if !hashesEqual(entry.hash, resetTokenHash(token)) {
		return false, nil
	}
	delete(s.tokens, key)
	return true, nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func resetTokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func hashesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func resetTokenRedisKey(email string) string {
	return fmt.Sprintf("reset:token:%s", strings.ToLower(strings.TrimSpace(email)))
}
