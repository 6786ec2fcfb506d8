package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-critic/internal/models"
	"alfredoptarigan/resume-critic/internal/services"
)

type ChatHandler struct {
	assistant *services.Assistant
}

func NewChatHandler(assistant *services.Assistant) *ChatHandler {
	return &ChatHandler{assistant: assistant}
}

// HandleChat handles POST /sessions/:id/chat
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	id, err := parseSessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(c)
	}

	resp, err := h.assistant.Chat(c.UserContext(), id, req.Message)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// HandleReset handles DELETE /sessions/:id/conversation
func (h *ChatHandler) HandleReset(c *fiber.Ctx) error {
	id, err := parseSessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.assistant.ResetConversation(id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
