// services/rewards_dispatcher.go
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"chapter-community/metrics"
	"chapter-community/models"

	"github.com/rs/zerolog"
)

// DefaultRewardRules maps each action to the rule the server evaluates for it.
// Kinds missing from the map never trigger an evaluation.
var DefaultRewardRules = map[models.ActionKind]models.RewardRuleID{
	models.ActionCheckedIn:         "event_checkin",
	models.ActionEarlyCheckIn:      "early_checkin_bonus",
	models.ActionRSVP:              "event_rsvp",
	models.ActionPhotoUploaded:     "event_photo_upload",
	models.ActionFeedbackSubmitted: "event_feedback",
	models.ActionProfileCompleted:  "profile_completion",
}

// Dispatch outcomes, used as the metrics label.
const (
	OutcomeUnmapped       = "unmapped"
	OutcomeAwarded        = "awarded"
	OutcomeDeclined       = "declined"
	OutcomeServerError    = "server_error"
	OutcomeTransportError = "transport_error"
)

const defaultEvaluateTimeout = 15 * time.Second

// RewardsDispatcher turns action events into rule engine evaluations.
// It never deduplicates or caches awards; every mapped event is forwarded.
type RewardsDispatcher struct {
	bus     *ActionEventBus
	engine  RuleEngine
	rules   map[models.ActionKind]models.RewardRuleID
	timeout time.Duration
	logger  zerolog.Logger

	mu          sync.Mutex
	unsubscribe func()
	inflight    sync.WaitGroup
}

func NewRewardsDispatcher(bus *ActionEventBus, engine RuleEngine, rules map[models.ActionKind]models.RewardRuleID, logger zerolog.Logger) *RewardsDispatcher {
	if rules == nil {
		rules = DefaultRewardRules
	}
	return &RewardsDispatcher{
		bus:     bus,
		engine:  engine,
		rules:   rules,
		timeout: defaultEvaluateTimeout,
		logger:  logger,
	}
}

// Start subscribes to the bus. Calling it again while started is a no-op.
func (d *RewardsDispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unsubscribe != nil {
		return
	}
	d.unsubscribe = d.bus.Subscribe(d.handle)
	d.logger.Info().Int("rules", len(d.rules)).Msg("🎯 rewards dispatcher started")
}

// Stop de-registers from the bus. Evaluations already in flight keep running.
func (d *RewardsDispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unsubscribe == nil {
		return
	}
	d.unsubscribe()
	d.unsubscribe = nil
	d.logger.Info().Msg("⏹️ rewards dispatcher stopped")
}

// Wait blocks until every evaluation started so far has finished. Call it
// after Stop; no evaluation starts once Stop has returned.
func (d *RewardsDispatcher) Wait() {
	d.inflight.Wait()
}

// RuleFor returns the rule mapped to kind, if any.
func (d *RewardsDispatcher) RuleFor(kind models.ActionKind) (models.RewardRuleID, bool) {
	rule, ok := d.rules[kind]
	return rule, ok && rule != ""
}

func (d *RewardsDispatcher) handle(ctx context.Context, ev models.ActionEvent) error {
	rule, ok := d.RuleFor(ev.Kind)
	if !ok {
		metrics.IncRewardDispatch(string(ev.Kind), OutcomeUnmapped)
		d.logger.Debug().
			Str("action_kind", string(ev.Kind)).
			Str("event_id", ev.ID).
			Msg("ignored, unmapped")
		return nil
	}

	// An Emit that snapshotted subscribers before Stop can still land here.
	d.mu.Lock()
	if d.unsubscribe == nil {
		d.mu.Unlock()
		d.logger.Debug().
			Str("action_kind", string(ev.Kind)).
			Str("event_id", ev.ID).
			Msg("ignored, dispatcher stopped")
		return nil
	}
	d.inflight.Add(1)
	d.mu.Unlock()

	// The evaluation outlives the emitter's request.
	evalCtx := context.WithoutCancel(ctx)
	go func() {
		defer d.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error().
					Interface("panic", r).
					Str("action_kind", string(ev.Kind)).
					Str("event_id", ev.ID).
					Msg("reward evaluation panicked")
			}
		}()
		d.evaluate(evalCtx, ev, rule)
	}()
	return nil
}

func (d *RewardsDispatcher) evaluate(ctx context.Context, ev models.ActionEvent, rule models.RewardRuleID) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req := models.RewardEvaluation{
		ActorID:  ev.ActorID,
		RuleID:   rule,
		Metadata: ev.Metadata(),
	}
	log := d.logger.With().
		Str("action_kind", string(ev.Kind)).
		Str("event_id", ev.ID).
		Str("actor_id", ev.ActorID).
		Str("rule_id", string(rule)).
		Logger()

	decision, err := d.engine.Evaluate(ctx, req)
	switch {
	case err == nil && decision.Awarded:
		metrics.IncRewardDispatch(string(ev.Kind), OutcomeAwarded)
		log.Info().
			Int64("amount", decision.Amount).
			Int64("new_balance", decision.NewBalance).
			Msg("🎉 reward awarded")
	case err == nil:
		metrics.IncRewardDispatch(string(ev.Kind), OutcomeDeclined)
		log.Info().Str("decline_reason", decision.DeclineReason).Msg("reward declined")
	case IsAuthoritativeDenial(err):
		var re *RemoteError
		errors.As(err, &re)
		if re.StatusCode >= 500 {
			metrics.IncRewardDispatch(string(ev.Kind), OutcomeServerError)
			log.Error().Err(err).Int("status", re.StatusCode).Msg("rule engine failed")
			return
		}
		reason := re.Code
		if reason == "" {
			reason = re.Message
		}
		metrics.IncRewardDispatch(string(ev.Kind), OutcomeDeclined)
		log.Info().Str("decline_reason", reason).Msg("reward declined")
	default:
		metrics.IncRewardDispatch(string(ev.Kind), OutcomeTransportError)
		log.Error().Err(err).Msg("❌ rule engine unreachable")
	}
}
