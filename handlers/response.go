// handlers/response.go
package handlers

import (
	"errors"
	"net/http"

	"chapter-community/services"

	"github.com/gofiber/fiber/v2"
)

// CodeUpstreamUnreachable marks a failure where the chapter API never answered.
const CodeUpstreamUnreachable = "UPSTREAM_UNREACHABLE"

func respondOK(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func respondFailure(c *fiber.Ctx, status int, code, msg string) error {
	body := fiber.Map{
		"success": false,
		"error":   msg,
	}
	if code != "" {
		body["error_code"] = code
	}
	return c.Status(status).JSON(body)
}

// respondError maps a service error onto the local API envelope.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrEmptyEventID),
		errors.Is(err, services.ErrEmptyToken),
		errors.Is(err, services.ErrInvalidWindow):
		return respondFailure(c, fiber.StatusBadRequest, "", err.Error())
	case errors.Is(err, services.ErrNoPendingScan):
		return respondFailure(c, fiber.StatusNotFound, "", err.Error())
	case services.IsTransportFailure(err):
		return respondFailure(c, fiber.StatusServiceUnavailable, CodeUpstreamUnreachable, err.Error())
	case services.IsAuthoritativeDenial(err):
		var re *services.RemoteError
		errors.As(err, &re)
		return respondFailure(c, denialStatus(re), re.Code, re.Message)
	default:
		return respondFailure(c, fiber.StatusInternalServerError, "", err.Error())
	}
}

func denialStatus(re *services.RemoteError) int {
	switch re.Code {
	case services.CodeNotAdmin:
		return fiber.StatusForbidden
	case services.CodeCheckInNotOpen, services.CodeCheckInClosed, services.CodeAlreadyCheckedIn:
		return fiber.StatusConflict
	case services.CodeInvalidToken, services.CodeTokenExpired:
		return fiber.StatusUnprocessableEntity
	case services.CodeInvalidResponse:
		return fiber.StatusBadGateway
	}
	if re.StatusCode >= http.StatusBadRequest && re.StatusCode < http.StatusInternalServerError {
		return re.StatusCode
	}
	return fiber.StatusBadGateway
}
