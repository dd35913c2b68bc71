// models/reward.go
package models

// RewardRuleID is an opaque identifier understood only by the remote rule engine.
type RewardRuleID string

// RewardEvaluation is the request forwarded to the rule engine for one action.
type RewardEvaluation struct {
	ActorID  string         `json:"actor_id"`
	RuleID   RewardRuleID   `json:"rule_id"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RewardDecision is the rule engine's answer. Awarded=false with a DeclineReason
// is a business decline (duplicate, unmet precondition), not an error.
type RewardDecision struct {
	Awarded       bool   `json:"awarded"`
	Amount        int64  `json:"amount,omitempty"`
	NewBalance    int64  `json:"new_balance,omitempty"`
	DeclineReason string `json:"decline_reason,omitempty"`
}
