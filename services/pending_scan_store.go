// services/pending_scan_store.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chapter-community/metrics"
	"chapter-community/models"
	"chapter-community/storage"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// DefaultPendingScanTTL is how long a scanned token waits for submission.
const DefaultPendingScanTTL = 10 * time.Minute

const pendingScanNamespace = "pending_scan"

// PendingScanStore is the single durable slot for a scanned token that has
// not been submitted yet. Expiry is enforced lazily on read.
type PendingScanStore struct {
	store  storage.DurableStore
	key    string
	ttl    time.Duration
	clock  clockwork.Clock
	logger zerolog.Logger
}

func NewPendingScanStore(store storage.DurableStore, prefix string, ttl time.Duration, clock clockwork.Clock, logger zerolog.Logger) *PendingScanStore {
	if ttl <= 0 {
		ttl = DefaultPendingScanTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PendingScanStore{
		store:  store,
		key:    storage.Key(prefix, pendingScanNamespace),
		ttl:    ttl,
		clock:  clock,
		logger: logger,
	}
}

// Save replaces any previous pending scan with token.
func (p *PendingScanStore) Save(ctx context.Context, token string) (models.PendingScan, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.PendingScan{}, ErrEmptyToken
	}

	// Display only. A token that does not decode is still saved; the
	// validator decides whether it is any good.
	var displayName string
	if display, err := DecodeTokenForDisplay(token); err != nil {
		p.logger.Debug().Err(err).Msg("scanned token has no readable display claims")
	} else {
		displayName = display.EventName
	}

	now := p.clock.Now()
	scan := models.PendingScan{
		Token:            token,
		EventDisplayName: displayName,
		ScannedAt:        now,
		ExpiresAt:        now.Add(p.ttl),
	}
	buf, err := json.Marshal(scan)
	if err != nil {
		return models.PendingScan{}, fmt.Errorf("encode pending scan: %w", err)
	}
	if err := p.store.Set(ctx, p.key, string(buf)); err != nil {
		return models.PendingScan{}, fmt.Errorf("write pending scan: %w", err)
	}
	return scan, nil
}

// Get returns the pending scan, or nil when there is none. An expired or
// unreadable entry is cleared and reported as absent.
func (p *PendingScanStore) Get(ctx context.Context) (*models.PendingScan, error) {
	raw, ok, err := p.store.Get(ctx, p.key)
	if err != nil {
		return nil, fmt.Errorf("read pending scan: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var scan models.PendingScan
	if err := json.Unmarshal([]byte(raw), &scan); err != nil {
		p.logger.Warn().Err(err).Msg("discarding unreadable pending scan")
		return nil, p.Clear(ctx)
	}

	if scan.ExpiredAt(p.clock.Now()) {
		metrics.IncPendingScanExpired()
		p.logger.Info().
			Time("scanned_at", scan.ScannedAt).
			Time("expires_at", scan.ExpiresAt).
			Msg("pending scan expired")
		return nil, p.Clear(ctx)
	}
	return &scan, nil
}

// Clear removes the pending scan. Idempotent.
func (p *PendingScanStore) Clear(ctx context.Context) error {
	if err := p.store.Remove(ctx, p.key); err != nil {
		return fmt.Errorf("clear pending scan: %w", err)
	}
	return nil
}
