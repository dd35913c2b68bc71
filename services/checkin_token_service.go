// services/checkin_token_service.go
package services

import (
	"context"
	"strings"
	"time"

	"chapter-community/metrics"
	"chapter-community/models"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// TokenSource tells the caller whether a token is live or a degraded offline answer.
type TokenSource string

const (
	SourceLive  TokenSource = "live"
	SourceCache TokenSource = "cache"
)

// CheckInToken is the result of GetToken.
type CheckInToken struct {
	EventID string               `json:"event_id"`
	Token   string               `json:"token"`
	Window  models.CheckInWindow `json:"window"`
	Source  TokenSource          `json:"source"`
}

// CheckInTokenService fetches tokens from the issuer first and falls back to
// the cache only when the issuer provably could not be reached. A server
// denial always clears the cache and is returned as is.
type CheckInTokenService struct {
	issuer TokenIssuer
	cache  *CheckInTokenCache
	clock  clockwork.Clock
	logger zerolog.Logger

	group singleflight.Group
}

func NewCheckInTokenService(issuer TokenIssuer, cache *CheckInTokenCache, clock clockwork.Clock, logger zerolog.Logger) *CheckInTokenService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CheckInTokenService{issuer: issuer, cache: cache, clock: clock, logger: logger}
}

// GetToken returns a token for eventID. Concurrent calls for the same event
// share one issuer request; the shared request is not tied to any single
// caller's cancellation, and each caller stops waiting when its own ctx ends.
func (s *CheckInTokenService) GetToken(ctx context.Context, eventID string) (CheckInToken, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return CheckInToken{}, ErrEmptyEventID
	}
	ch := s.group.DoChan(eventID, func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx), eventID)
	})
	select {
	case <-ctx.Done():
		return CheckInToken{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return CheckInToken{}, res.Err
		}
		return res.Val.(CheckInToken), nil
	}
}

func (s *CheckInTokenService) fetch(ctx context.Context, eventID string) (CheckInToken, error) {
	log := s.logger.With().Str("checkin_event_id", eventID).Logger()

	issued, err := s.issuer.IssueToken(ctx, eventID)
	if err == nil {
		err = validateIssued(issued)
	}

	if err == nil {
		if cacheErr := s.cache.Put(ctx, eventID, issued.Token, issued.Window); cacheErr != nil {
			log.Warn().Err(cacheErr).Msg("failed to cache issued check-in token")
		}
		metrics.IncTokenFetch(string(SourceLive))
		log.Debug().Str("source", string(SourceLive)).Msg("check-in token served live")
		return CheckInToken{EventID: eventID, Token: issued.Token, Window: issued.Window, Source: SourceLive}, nil
	}

	switch {
	case IsAuthoritativeDenial(err):
		// A fresh "no" must never be masked by an older cached "yes".
		if clearErr := s.cache.Clear(ctx, eventID); clearErr != nil {
			log.Error().Err(clearErr).Msg("failed to clear cached token after denial")
		}
		metrics.IncTokenFetch("denied")
		log.Warn().Err(err).Str("error_code", ErrorCode(err)).Msg("check-in token denied by server")
		return CheckInToken{}, err

	case IsTransportFailure(err):
		cached, cacheErr := s.cache.Get(ctx, eventID)
		if cacheErr != nil {
			log.Error().Err(cacheErr).Msg("failed to read cached token during outage")
		}
		if cached != nil && cached.UsableAt(s.clock.Now()) {
			metrics.IncTokenFetch(string(SourceCache))
			log.Warn().
				Err(err).
				Str("source", string(SourceCache)).
				Time("cached_at", cached.CachedAt).
				Time("window_closes_at", cached.WindowClosesAt).
				Msg("served from cache due to offline condition")
			return CheckInToken{EventID: eventID, Token: cached.Token, Window: cached.Window(), Source: SourceCache}, nil
		}
		metrics.IncTokenFetch("failed")
		log.Error().Err(err).Msg("check-in token unavailable: issuer unreachable and no valid cached token")
		return CheckInToken{}, err

	default:
		metrics.IncTokenFetch("failed")
		log.Error().Err(err).Msg("check-in token request failed")
		return CheckInToken{}, err
	}
}

// validateIssued rejects a success response that carries no usable token.
func validateIssued(issued models.IssuedToken) error {
	if strings.TrimSpace(issued.Token) == "" {
		return NewDenial("issue_token", 200, CodeInvalidResponse, ErrEmptyToken.Error())
	}
	if issued.Window.ClosesAt.IsZero() {
		return NewDenial("issue_token", 200, CodeInvalidResponse, "response carried no check-in window")
	}
	if issued.Window.ClosesAt.Before(issued.Window.OpensAt) {
		return NewDenial("issue_token", 200, CodeInvalidResponse, ErrInvalidWindow.Error())
	}
	return nil
}

// GetWindowState derives the window state at the current time.
func (s *CheckInTokenService) GetWindowState(opensAt, closesAt time.Time) models.WindowState {
	return WindowStateAt(s.clock.Now(), opensAt, closesAt)
}

// WindowStateAt is the pure form of GetWindowState. Both bounds are inclusive.
func WindowStateAt(now, opensAt, closesAt time.Time) models.WindowState {
	switch {
	case now.Before(opensAt):
		return models.WindowNotOpen
	case now.After(closesAt):
		return models.WindowClosed
	default:
		return models.WindowActive
	}
}

