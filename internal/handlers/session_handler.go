package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-critic/internal/services"
)

type SessionHandler struct {
	assistant *services.Assistant
}

func NewSessionHandler(assistant *services.Assistant) *SessionHandler {
	return &SessionHandler{assistant: assistant}
}

// HandleCreate handles POST /sessions
func (h *SessionHandler) HandleCreate(c *fiber.Ctx) error {
	return c.Status(fiber.StatusCreated).JSON(h.assistant.NewSession())
}

// HandleGet handles GET /sessions/:id
func (h *SessionHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseSessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	session, err := h.assistant.GetSession(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

// HandleDelete handles DELETE /sessions/:id
func (h *SessionHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseSessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.assistant.DeleteSession(id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
