// services/checkin_token_cache.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"chapter-community/models"
	"chapter-community/storage"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const checkInTokenNamespace = "checkin_token"

// CheckInTokenCache holds the most recently issued token per event.
// Get does not filter by expiry; whether an entry is still usable is the
// caller's call because it depends on when the caller asks.
type CheckInTokenCache struct {
	store  storage.DurableStore
	prefix string
	clock  clockwork.Clock
	logger zerolog.Logger
}

func NewCheckInTokenCache(store storage.DurableStore, prefix string, clock clockwork.Clock, logger zerolog.Logger) *CheckInTokenCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CheckInTokenCache{store: store, prefix: prefix, clock: clock, logger: logger}
}

func (c *CheckInTokenCache) key(eventID string) string {
	return storage.Key(c.prefix, checkInTokenNamespace, eventID)
}

func (c *CheckInTokenCache) keyPrefix() string {
	return storage.Key(c.prefix, checkInTokenNamespace, "")
}

// Get returns the stored entry for eventID, or nil when there is none.
func (c *CheckInTokenCache) Get(ctx context.Context, eventID string) (*models.CachedCheckInToken, error) {
	raw, ok, err := c.store.Get(ctx, c.key(eventID))
	if err != nil {
		return nil, fmt.Errorf("read cached token for %s: %w", eventID, err)
	}
	if !ok {
		return nil, nil
	}
	var entry models.CachedCheckInToken
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("decode cached token for %s: %w", eventID, err)
	}
	return &entry, nil
}

// Put overwrites the entry for eventID.
func (c *CheckInTokenCache) Put(ctx context.Context, eventID, token string, window models.CheckInWindow) error {
	entry := models.CachedCheckInToken{
		EventID:        eventID,
		Token:          token,
		WindowOpensAt:  window.OpensAt,
		WindowClosesAt: window.ClosesAt,
		CachedAt:       c.clock.Now(),
	}
	buf, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cached token for %s: %w", eventID, err)
	}
	if err := c.store.Set(ctx, c.key(eventID), string(buf)); err != nil {
		return fmt.Errorf("write cached token for %s: %w", eventID, err)
	}
	return nil
}

// Clear removes the entry for eventID. Missing entries are not an error.
func (c *CheckInTokenCache) Clear(ctx context.Context, eventID string) error {
	if err := c.store.Remove(ctx, c.key(eventID)); err != nil {
		return fmt.Errorf("clear cached token for %s: %w", eventID, err)
	}
	return nil
}

// ClearAllExpired removes every entry whose window closed before now, plus
// entries that no longer decode. It returns how many were removed.
func (c *CheckInTokenCache) ClearAllExpired(ctx context.Context) (int, error) {
	keys, err := c.store.ListKeys(ctx)
	if err != nil {
		return 0, fmt.Errorf("list cached tokens: %w", err)
	}

	now := c.clock.Now()
	prefix := c.keyPrefix()
	removed := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		raw, ok, err := c.store.Get(ctx, key)
		if err != nil {
			return removed, fmt.Errorf("read %s: %w", key, err)
		}
		if !ok {
			continue
		}

		var entry models.CachedCheckInToken
		if err := json.Unmarshal([]byte(raw), &entry); err == nil && !entry.WindowClosesAt.Before(now) {
			continue
		}
		if err := c.store.Remove(ctx, key); err != nil {
			return removed, fmt.Errorf("remove %s: %w", key, err)
		}
		removed++
	}

	if removed > 0 {
		c.logger.Info().Int("removed", removed).Msg("🧹 cleared expired check-in tokens")
	}
	return removed, nil
}
