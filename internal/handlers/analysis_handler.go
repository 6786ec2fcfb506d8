package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-critic/internal/models"
	"alfredoptarigan/resume-critic/internal/services"
)

type AnalysisHandler struct {
	assistant *services.Assistant
}

func NewAnalysisHandler(assistant *services.Assistant) *AnalysisHandler {
	return &AnalysisHandler{assistant: assistant}
}

// HandleAnalyze handles POST /sessions/:id/analyze
func (h *AnalysisHandler) HandleAnalyze(c *fiber.Ctx) error {
	id, err := parseSessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	resp, err := h.assistant.Analyze(c.UserContext(), id)
	if err != nil && resp.ContentCritique == "" && resp.LayoutCritique == "" {
		return respondError(c, err)
	}
	// a partial critique is still a result; failed_paths names what is missing
	return c.JSON(resp)
}

// HandleRevise handles POST /sessions/:id/revise
func (h *AnalysisHandler) HandleRevise(c *fiber.Ctx) error {
	id, err := parseSessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.ReviseRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidPayload(c)
		}
	}

	resp, err := h.assistant.Revise(c.UserContext(), id, req.ExtraInstructions)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
