// services/remote_clients.go
package services

import (
	"context"
	"net/http"
	"net/url"

	"chapter-community/models"
)

// RuleEngine evaluates one reward rule for one actor. Duplicate suppression
// and preconditions are enforced entirely on the server.
type RuleEngine interface {
	Evaluate(ctx context.Context, req models.RewardEvaluation) (models.RewardDecision, error)
}

// TokenIssuer mints signed, time-scoped check-in tokens.
type TokenIssuer interface {
	IssueToken(ctx context.Context, eventID string) (models.IssuedToken, error)
}

// CheckInValidator is the authoritative acceptor of scanned tokens.
type CheckInValidator interface {
	Validate(ctx context.Context, token string, loc *models.Location) (models.CheckInResult, error)
}

// RuleEngineClient calls POST /rewards/evaluate.
type RuleEngineClient struct{ api *APIClient }

func NewRuleEngineClient(api *APIClient) *RuleEngineClient { return &RuleEngineClient{api: api} }

func (c *RuleEngineClient) Evaluate(ctx context.Context, req models.RewardEvaluation) (models.RewardDecision, error) {
	var out models.RewardDecision
	err := c.api.call(ctx, "evaluate_reward", http.MethodPost, "/rewards/evaluate", req, &out)
	return out, err
}

// TokenIssuerClient calls POST /events/{id}/checkin-token.
type TokenIssuerClient struct{ api *APIClient }

func NewTokenIssuerClient(api *APIClient) *TokenIssuerClient { return &TokenIssuerClient{api: api} }

func (c *TokenIssuerClient) IssueToken(ctx context.Context, eventID string) (models.IssuedToken, error) {
	var out models.IssuedToken
	path := "/events/" + url.PathEscape(eventID) + "/checkin-token"
	err := c.api.call(ctx, "issue_token", http.MethodPost, path, nil, &out)
	return out, err
}

// CheckInValidatorClient calls POST /checkin/validate.
type CheckInValidatorClient struct{ api *APIClient }

func NewCheckInValidatorClient(api *APIClient) *CheckInValidatorClient {
	return &CheckInValidatorClient{api: api}
}

func (c *CheckInValidatorClient) Validate(ctx context.Context, token string, loc *models.Location) (models.CheckInResult, error) {
	body := struct {
		Token    string           `json:"token"`
		Location *models.Location `json:"location,omitempty"`
	}{Token: token, Location: loc}

	var out models.CheckInResult
	err := c.api.call(ctx, "validate_checkin", http.MethodPost, "/checkin/validate", body, &out)
	return out, err
}

var (
	_ RuleEngine       = (*RuleEngineClient)(nil)
	_ TokenIssuer      = (*TokenIssuerClient)(nil)
	_ CheckInValidator = (*CheckInValidatorClient)(nil)
)
