// handlers/action_routes.go
package handlers

import (
	"strings"

	"chapter-community/middleware"
	"chapter-community/models"
	"chapter-community/services"

	"github.com/gofiber/fiber/v2"
)

// actionRequest carries the union of payload fields for every action kind.
type actionRequest struct {
	Kind         models.ActionKind `json:"kind"`
	EventID      string            `json:"event_id"`
	AttendanceID string            `json:"attendance_id"`
	Status       models.RSVPStatus `json:"status"`
	PhotoID      string            `json:"photo_id"`
	Rating       int               `json:"rating"`
	Fields       []string          `json:"fields"`
}

// payload builds the typed payload for the request's kind. Unknown kinds get none.
func (r actionRequest) payload() models.ActionPayload {
	switch r.Kind {
	case models.ActionCheckedIn, models.ActionEarlyCheckIn:
		return models.CheckInPayload{EventID: r.EventID, AttendanceID: r.AttendanceID, Early: r.Kind == models.ActionEarlyCheckIn}
	case models.ActionRSVP:
		return models.RSVPPayload{EventID: r.EventID, Status: r.Status}
	case models.ActionPhotoUploaded:
		return models.PhotoUploadedPayload{EventID: r.EventID, PhotoID: r.PhotoID}
	case models.ActionFeedbackSubmitted:
		return models.FeedbackPayload{EventID: r.EventID, Rating: r.Rating}
	case models.ActionProfileUpdated, models.ActionProfileCompleted:
		return models.ProfilePayload{Fields: r.Fields, Completed: r.Kind == models.ActionProfileCompleted}
	}
	return nil
}

// SetupActionRoutes exposes the action bus to the UI shell. Emission is
// fire-and-forget, so the response never reflects reward outcomes.
func SetupActionRoutes(router fiber.Router, bus *services.ActionEventBus) {
	router.Post("/actions", func(c *fiber.Ctx) error {
		var req actionRequest
		if err := c.BodyParser(&req); err != nil {
			return respondFailure(c, fiber.StatusBadRequest, "", "invalid request body")
		}
		req.Kind = models.ActionKind(strings.TrimSpace(string(req.Kind)))
		if req.Kind == "" {
			return respondFailure(c, fiber.StatusBadRequest, "", "kind is required")
		}

		ev := bus.Emit(c.UserContext(), req.Kind, middleware.ActorID(c), req.payload())
		return respondOK(c, fiber.StatusAccepted, fiber.Map{
			"id":          ev.ID,
			"kind":        ev.Kind,
			"occurred_at": ev.OccurredAt,
		})
	})
}
