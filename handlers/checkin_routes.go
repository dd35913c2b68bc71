// handlers/checkin_routes.go
package handlers

import (
	"time"

	"chapter-community/middleware"
	"chapter-community/models"
	"chapter-community/services"

	"github.com/gofiber/fiber/v2"
)

// CheckInServices groups what the check-in routes need.
type CheckInServices struct {
	Tokens    *services.CheckInTokenService
	Scans     *services.PendingScanStore
	Submitter *services.CheckInSubmitter
}

func SetupCheckInRoutes(router fiber.Router, svc CheckInServices) {
	// Admin: token for the event QR code.
	router.Get("/events/:id/checkin-token", func(c *fiber.Ctx) error {
		tok, err := svc.Tokens.GetToken(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return respondOK(c, fiber.StatusOK, fiber.Map{
			"event_id": tok.EventID,
			"token":    tok.Token,
			"window":   tok.Window,
			"state":    svc.Tokens.GetWindowState(tok.Window.OpensAt, tok.Window.ClosesAt),
			"source":   tok.Source,
		})
	})

	router.Get("/window-state", func(c *fiber.Ctx) error {
		opensAt, err := time.Parse(time.RFC3339, c.Query("opens_at"))
		if err != nil {
			return respondFailure(c, fiber.StatusBadRequest, "", "opens_at must be an RFC3339 timestamp")
		}
		closesAt, err := time.Parse(time.RFC3339, c.Query("closes_at"))
		if err != nil {
			return respondFailure(c, fiber.StatusBadRequest, "", "closes_at must be an RFC3339 timestamp")
		}
		if closesAt.Before(opensAt) {
			return respondError(c, services.ErrInvalidWindow)
		}
		return respondOK(c, fiber.StatusOK, fiber.Map{
			"state": svc.Tokens.GetWindowState(opensAt, closesAt),
		})
	})

	// Attendee: scan, review, submit or abandon.
	router.Post("/pending-scan", func(c *fiber.Ctx) error {
		var req struct {
			Token string `json:"token"`
		}
		if err := c.BodyParser(&req); err != nil {
			return respondFailure(c, fiber.StatusBadRequest, "", "invalid request body")
		}
		scan, err := svc.Scans.Save(c.UserContext(), req.Token)
		if err != nil {
			return respondError(c, err)
		}
		return respondOK(c, fiber.StatusCreated, scan)
	})

	router.Get("/pending-scan", func(c *fiber.Ctx) error {
		scan, err := svc.Scans.Get(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		if scan == nil {
			return respondError(c, services.ErrNoPendingScan)
		}
		return respondOK(c, fiber.StatusOK, scan)
	})

	router.Delete("/pending-scan", func(c *fiber.Ctx) error {
		if err := svc.Submitter.Abandon(c.UserContext()); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	router.Post("/checkin/submit", func(c *fiber.Ctx) error {
		var req struct {
			Location *models.Location `json:"location"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return respondFailure(c, fiber.StatusBadRequest, "", "invalid request body")
			}
		}
		result, err := svc.Submitter.Submit(c.UserContext(), middleware.ActorID(c), req.Location)
		if err != nil {
			return respondError(c, err)
		}
		return respondOK(c, fiber.StatusOK, result)
	})
}
