package services

import (
	"context"
	"testing"
	"time"

	"chapter-community/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestPendingStore(ttl time.Duration) (*PendingScanStore, *storage.MemoryStore, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(testStart)
	store := storage.NewMemoryStore()
	return NewPendingScanStore(store, "chapter", ttl, clock, zerolog.Nop()), store, clock
}

func TestPendingScanSaveAndGet(t *testing.T) {
	ctx := context.Background()
	p, store, _ := newTestPendingStore(0)

	scan, err := p.Save(ctx, "  opaque-token ")
	require.NoError(t, err)
	require.Equal(t, "opaque-token", scan.Token)
	require.Empty(t, scan.EventDisplayName)
	require.True(t, scan.ScannedAt.Equal(testStart))
	require.True(t, scan.ExpiresAt.Equal(testStart.Add(DefaultPendingScanTTL)))

	_, ok, err := store.Get(ctx, "chapter:pending_scan")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := p.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "opaque-token", got.Token)
}

func TestPendingScanSaveRejectsEmptyToken(t *testing.T) {
	p, _, _ := newTestPendingStore(time.Minute)
	_, err := p.Save(context.Background(), "  ")
	require.ErrorIs(t, err, ErrEmptyToken)
}

func TestPendingScanSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	p, _, clock := newTestPendingStore(time.Minute)

	_, err := p.Save(ctx, "first")
	require.NoError(t, err)
	clock.Advance(30 * time.Second)
	_, err = p.Save(ctx, "second")
	require.NoError(t, err)

	got, err := p.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "second", got.Token)
	require.True(t, got.ExpiresAt.Equal(testStart.Add(90*time.Second)))
}

func TestPendingScanDisplayNameFromToken(t *testing.T) {
	p, _, _ := newTestPendingStore(time.Minute)
	tok := signedTestToken(t, jwt.MapClaims{"event_id": "evt-1", "event_name": "Spring Mixer"})

	scan, err := p.Save(context.Background(), tok)
	require.NoError(t, err)
	require.Equal(t, "Spring Mixer", scan.EventDisplayName)
}

func TestPendingScanExpiresLazily(t *testing.T) {
	ctx := context.Background()
	ttl := 10 * time.Minute
	p, store, clock := newTestPendingStore(ttl)

	_, err := p.Save(ctx, "tok")
	require.NoError(t, err)

	clock.Advance(ttl)
	got, err := p.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got, "still valid exactly at expiry")

	clock.Advance(time.Second)
	got, err = p.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, got)

	_, ok, err := store.Get(ctx, "chapter:pending_scan")
	require.NoError(t, err)
	require.False(t, ok, "expired entry is removed on read")

	got, err = p.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPendingScanCorruptEntryCleared(t *testing.T) {
	ctx := context.Background()
	p, store, _ := newTestPendingStore(time.Minute)
	require.NoError(t, store.Set(ctx, "chapter:pending_scan", "%%%"))

	got, err := p.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, got)

	_, ok, err := store.Get(ctx, "chapter:pending_scan")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPendingScanClearIdempotent(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPendingStore(time.Minute)
	require.NoError(t, p.Clear(ctx))

	_, err := p.Save(ctx, "tok")
	require.NoError(t, err)
	require.NoError(t, p.Clear(ctx))
	require.NoError(t, p.Clear(ctx))

	got, err := p.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestProperty_PendingScanTTLBoundary(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("a scan is returned exactly until its TTL has elapsed", prop.ForAll(
		func(ttlSec, elapsedSec int64) bool {
			ctx := context.Background()
			ttl := time.Duration(ttlSec) * time.Second
			p, _, clock := newTestPendingStore(ttl)
			if _, err := p.Save(ctx, "tok"); err != nil {
				return false
			}
			clock.Advance(time.Duration(elapsedSec) * time.Second)

			got, err := p.Get(ctx)
			if err != nil {
				return false
			}
			return (got != nil) == (elapsedSec <= ttlSec)
		},
		gen.Int64Range(1, 1200),
		gen.Int64Range(0, 2400),
	))

	properties.TestingRun(t)
}
