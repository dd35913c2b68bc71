// services/checkin_submitter.go
package services

import (
	"context"
	"time"

	"chapter-community/models"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// EarlyCheckInWindow is how soon after the window opens a check-in counts as early.
const EarlyCheckInWindow = 15 * time.Minute

// CheckInSubmitter completes the scan flow: it submits the pending token to
// the validator and reports the resulting actions on the bus.
type CheckInSubmitter struct {
	scans     *PendingScanStore
	validator CheckInValidator
	bus       *ActionEventBus
	clock     clockwork.Clock
	logger    zerolog.Logger
}

func NewCheckInSubmitter(scans *PendingScanStore, validator CheckInValidator, bus *ActionEventBus, clock clockwork.Clock, logger zerolog.Logger) *CheckInSubmitter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CheckInSubmitter{scans: scans, validator: validator, bus: bus, clock: clock, logger: logger}
}

// Submit validates the pending scan for actorID.
//
// On success the slot is cleared and checked_in (plus early_checkin when it
// applies) is emitted. A server rejection also clears the slot, since the
// same token will not be accepted later. A transport failure keeps it so the
// user can retry.
func (s *CheckInSubmitter) Submit(ctx context.Context, actorID string, loc *models.Location) (models.CheckInResult, error) {
	scan, err := s.scans.Get(ctx)
	if err != nil {
		return models.CheckInResult{}, err
	}
	if scan == nil {
		return models.CheckInResult{}, ErrNoPendingScan
	}

	result, err := s.validator.Validate(ctx, scan.Token, loc)
	if err != nil {
		if IsAuthoritativeDenial(err) {
			if clearErr := s.scans.Clear(ctx); clearErr != nil {
				s.logger.Error().Err(clearErr).Msg("failed to clear rejected pending scan")
			}
			s.logger.Warn().Err(err).Str("error_code", ErrorCode(err)).Msg("check-in rejected")
		} else {
			s.logger.Error().Err(err).Msg("check-in submission failed, pending scan kept for retry")
		}
		return models.CheckInResult{}, err
	}

	if err := s.scans.Clear(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear submitted pending scan")
	}

	s.logger.Info().
		Str("checkin_event_id", result.Event.ID).
		Str("attendance_id", result.Attendance.ID).
		Msg("✅ checked in")

	payload := models.CheckInPayload{EventID: result.Event.ID, AttendanceID: result.Attendance.ID}
	s.bus.Emit(ctx, models.ActionCheckedIn, actorID, payload)
	if s.isEarly(result) {
		payload.Early = true
		s.bus.Emit(ctx, models.ActionEarlyCheckIn, actorID, payload)
	}
	return result, nil
}

// Abandon drops the pending scan without submitting it.
func (s *CheckInSubmitter) Abandon(ctx context.Context) error {
	return s.scans.Clear(ctx)
}

func (s *CheckInSubmitter) isEarly(result models.CheckInResult) bool {
	if result.Event.CheckInOpensAt == nil {
		return false
	}
	at := result.Attendance.CheckedInAt
	if at.IsZero() {
		at = s.clock.Now()
	}
	opens := *result.Event.CheckInOpensAt
	return !at.Before(opens) && at.Sub(opens) <= EarlyCheckInWindow
}
