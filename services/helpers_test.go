package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chapter-community/models"
	"chapter-community/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type fakeEngine struct {
	mu       sync.Mutex
	calls    []models.RewardEvaluation
	decision models.RewardDecision
	err      error
	panicMsg string
}

func (f *fakeEngine) Evaluate(_ context.Context, req models.RewardEvaluation) (models.RewardDecision, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	decision, err, panicMsg := f.decision, f.err, f.panicMsg
	f.mu.Unlock()
	if panicMsg != "" {
		panic(panicMsg)
	}
	return decision, err
}

func (f *fakeEngine) Calls() []models.RewardEvaluation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.RewardEvaluation, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeIssuer struct {
	mu     sync.Mutex
	calls  int
	issued models.IssuedToken
	err    error
}

func (f *fakeIssuer) IssueToken(_ context.Context, _ string) (models.IssuedToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.issued, f.err
}

func (f *fakeIssuer) set(issued models.IssuedToken, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued, f.err = issued, err
}

type fakeValidator struct {
	result models.CheckInResult
	err    error
	tokens []string
}

func (f *fakeValidator) Validate(_ context.Context, token string, _ *models.Location) (models.CheckInResult, error) {
	f.tokens = append(f.tokens, token)
	return f.result, f.err
}

func transportErr(op string) error {
	return NewTransportError(op, errors.New("dial tcp 10.0.0.1:443: connect: connection refused"))
}

func newTestBus(clock clockwork.Clock) *ActionEventBus {
	return NewActionEventBus(clock, zerolog.Nop())
}

func newTestCache(clock clockwork.Clock) (*CheckInTokenCache, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	return NewCheckInTokenCache(store, "chapter", clock, zerolog.Nop()), store
}

func signedTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("issuer-secret"))
	require.NoError(t, err)
	return tok
}

func window(opens, closes time.Time) models.CheckInWindow {
	return models.CheckInWindow{OpensAt: opens, ClosesAt: closes}
}
