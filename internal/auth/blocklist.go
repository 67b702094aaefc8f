package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/feedback-board/internal/persistence"
)

const blocklistKeyPrefix = "auth:blocklist:"

// TokenBlocklist revokes bearer tokens until they expire on their own.
// Logout writes a Redis key with a TTL matching the remaining token
// lifetime; the auth middleware rejects any token found here.
type TokenBlocklist struct {
	redis *persistence.Redis
}

// NewTokenBlocklist constructs a blocklist over the shared Redis client.
func NewTokenBlocklist(r *persistence.Redis) *TokenBlocklist {
	return &TokenBlocklist{redis: r}
}

// Revoke marks a token as invalid until expiresAt.
func (b *TokenBlocklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return b.redis.Client.Set(ctx, blocklistKey(token), "1", ttl).Err()
}

// IsRevoked reports whether the token was revoked. Redis outages fail
// open so a cache blip cannot lock every caller out.
func (b *TokenBlocklist) IsRevoked(ctx context.Context, token string) bool {
	err := b.redis.Client.Get(ctx, blocklistKey(token)).Err()
	if err == redis.Nil {
		return false
	}
	return err == nil
}

func blocklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return blocklistKeyPrefix + hex.EncodeToString(sum[:])
}
