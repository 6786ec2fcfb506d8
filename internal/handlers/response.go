package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-critic/internal/models"
	"alfredoptarigan/resume-critic/internal/services"
)

var errInvalidSessionID = errors.New("invalid session id")

func parseSessionID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errInvalidSessionID
	}
	return id, nil
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, errInvalidSessionID):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrSessionBusy), errors.Is(err, services.ErrTurnInFlight):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrPreconditionFailed):
		return fiber.StatusPreconditionFailed
	case errors.Is(err, services.ErrInputMissing), errors.Is(err, services.ErrUnsupportedFormat):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrRenderFailed), errors.Is(err, services.ErrExtractionFailed):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrTimeout):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, services.ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.Is(err, services.ErrModelUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, services.ErrCritiqueFailed), errors.Is(err, services.ErrRevisionFailed):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// respondError writes the user-facing message of err. Internal details stay
// in the logs.
func respondError(c *fiber.Ctx, err error) error {
	code := errorStatus(err)
	message := services.UserMessage(err)
	if errors.Is(err, errInvalidSessionID) {
		message = "Invalid session ID format"
	}
	return c.Status(code).JSON(models.ErrorResponse{Error: message, Code: code})
}

// ErrorHandler renders errors that escape the handlers, such as fiber
// routing errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := services.UnexpectedErrorMessage

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	return c.Status(code).JSON(models.ErrorResponse{Error: message, Code: code})
}
