// Package viewed tracks which articles a device has already been
// counted as viewing, so a reload does not inflate view totals. The set
// is advisory: it cannot prevent double-counting across devices, and it
// is keyed by the device id Pedium assigns in a cookie.
package viewed

import (
	"context"
	"fmt"

	"pedium/internal/cache"

	"go.uber.org/zap"
)

// Store is the persisted ViewedSet
type Store struct {
	cache  cache.Cache
	logger *zap.Logger
}

// NewStore creates a ViewedSet over the cache layer
func NewStore(c cache.Cache, logger *zap.Logger) *Store {
	return &Store{cache: c, logger: logger}
}

func key(deviceID, articleID string) string {
	return fmt.Sprintf("viewed:%s:%s", deviceID, articleID)
}

// Seen reports whether this device was already counted for the article
func (s *Store) Seen(ctx context.Context, deviceID, articleID string) bool {
	if deviceID == "" || articleID == "" {
		return false
	}
	return s.cache.Exists(ctx, key(deviceID, articleID))
}

// MarkSeen records the article as counted for this device. Entries do
// not expire; the set must outlive the session.
func (s *Store) MarkSeen(ctx context.Context, deviceID, articleID string) {
	if deviceID == "" || articleID == "" {
		return
	}
	if err := s.cache.Set(ctx, key(deviceID, articleID), "1", 0); err != nil {
		s.logger.Warn("failed to persist viewed marker",
			zap.String("article_id", articleID),
			zap.Error(err),
		)
	}
}
