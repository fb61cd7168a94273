package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

// RevocationStore remembers logged-out token ids in Redis until the token would expire anyway.
// A nil store never revokes anything.
type RevocationStore struct {
	rdb *redis.Client
}

// NewRevocationStore returns nil when rdb is nil.
func NewRevocationStore(rdb *redis.Client) *RevocationStore {
	if rdb == nil {
		return nil
	}
	return &RevocationStore{rdb: rdb}
}

// Revoke marks jti as revoked until the given expiry.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if s == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked returns true if jti was revoked and has not expired yet.
func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s == nil || jti == "" {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
