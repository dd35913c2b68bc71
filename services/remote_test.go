package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chapter-community/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAPIClient(srv.URL+"/", "secret", time.Second)
}

func writeEnvelope(w http.ResponseWriter, status int, env map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func TestIssueTokenSuccess(t *testing.T) {
	opens := testStart
	closes := testStart.Add(time.Hour)
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/events/evt%2F1/checkin-token", r.URL.EscapedPath())
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"token":  "tok-1",
				"window": map[string]any{"opens_at": opens, "closes_at": closes},
			},
		})
	})

	got, err := NewTokenIssuerClient(api).IssueToken(context.Background(), "evt/1")
	require.NoError(t, err)
	require.Equal(t, "tok-1", got.Token)
	require.True(t, got.Window.OpensAt.Equal(opens))
	require.True(t, got.Window.ClosesAt.Equal(closes))
}

func TestIssueTokenDeniedWithCode(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusForbidden, map[string]any{
			"success":    false,
			"error":      "only admins can generate check-in codes",
			"error_code": CodeNotAdmin,
		})
	})

	_, err := NewTokenIssuerClient(api).IssueToken(context.Background(), "evt-1")
	require.True(t, IsAuthoritativeDenial(err))
	require.False(t, IsTransportFailure(err))
	require.Equal(t, CodeNotAdmin, ErrorCode(err))
	require.ErrorContains(t, err, "only admins")
}

func TestCallSuccessFalseOn200(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"success": false, "error_code": CodeCheckInClosed})
	})

	_, err := NewTokenIssuerClient(api).IssueToken(context.Background(), "evt-1")
	require.True(t, IsAuthoritativeDenial(err))
	require.Equal(t, CodeCheckInClosed, ErrorCode(err))
}

func TestCallNonJSONBody(t *testing.T) {
	cases := []struct {
		status   int
		wantCode string
	}{
		{http.StatusOK, CodeInvalidResponse},
		{http.StatusBadGateway, ""},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			api := newTestAPI(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, "<html>sign in to the wifi</html>")
			})

			_, err := NewTokenIssuerClient(api).IssueToken(context.Background(), "evt-1")
			require.True(t, IsAuthoritativeDenial(err), "any HTTP response means the server was reached")
			require.Equal(t, tc.wantCode, ErrorCode(err))
		})
	}
}

func TestCallMissingData(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true})
	})

	_, err := NewTokenIssuerClient(api).IssueToken(context.Background(), "evt-1")
	require.Equal(t, CodeInvalidResponse, ErrorCode(err))
}

func TestCallUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	api := NewAPIClient(url, "", time.Second)
	_, err := NewTokenIssuerClient(api).IssueToken(context.Background(), "evt-1")
	require.Error(t, err)
	require.True(t, IsTransportFailure(err))
	require.False(t, IsAuthoritativeDenial(err))
}

func TestCallTimeoutIsTransportFailure(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	api.Client.Timeout = 50 * time.Millisecond

	_, err := NewTokenIssuerClient(api).IssueToken(context.Background(), "evt-1")
	require.True(t, IsTransportFailure(err))
}

func TestEvaluateRewardRoundTrip(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rewards/evaluate", r.URL.Path)
		var req models.RewardEvaluation
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user-1", req.ActorID)
		assert.Equal(t, models.RewardRuleID("event_rsvp"), req.RuleID)
		assert.Equal(t, "going", req.Metadata["status"])
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"awarded": true, "amount": 10, "new_balance": 110},
		})
	})

	got, err := NewRuleEngineClient(api).Evaluate(context.Background(), models.RewardEvaluation{
		ActorID:  "user-1",
		RuleID:   "event_rsvp",
		Metadata: models.RSVPPayload{EventID: "evt-1", Status: models.RSVPGoing}.Metadata(),
	})
	require.NoError(t, err)
	require.True(t, got.Awarded)
	require.Equal(t, int64(110), got.NewBalance)
}

func TestValidateCheckInSendsLocation(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tok-1", body["token"])
		assert.Contains(t, body, "location")
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"attendance": map[string]any{"id": "att-1", "event_id": "evt-1"},
				"event":      map[string]any{"id": "evt-1", "name": "Mixer"},
			},
		})
	})

	got, err := NewCheckInValidatorClient(api).Validate(context.Background(), "tok-1", &models.Location{Latitude: 1, Longitude: 2})
	require.NoError(t, err)
	require.Equal(t, "att-1", got.Attendance.ID)
	require.Equal(t, "Mixer", got.Event.Name)
}
