package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-critic/internal/models"
	"alfredoptarigan/resume-critic/internal/services"
)

type JobDescriptionHandler struct {
	assistant *services.Assistant
}

func NewJobDescriptionHandler(assistant *services.Assistant) *JobDescriptionHandler {
	return &JobDescriptionHandler{assistant: assistant}
}

// HandleSelectMode handles PUT /sessions/:id/job-description/mode
func (h *JobDescriptionHandler) HandleSelectMode(c *fiber.Ctx) error {
	id, err := parseSessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.JobDescriptionModeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(c)
	}

	mode, err := services.ParseJobDescriptionMode(strings.ToLower(strings.TrimSpace(req.Mode)))
	if err != nil {
		return respondError(c, err)
	}

	resp, err := h.assistant.SelectJobDescriptionMode(id, mode)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// HandleText handles POST /sessions/:id/job-description/text
func (h *JobDescriptionHandler) HandleText(c *fiber.Ctx) error {
	id, err := parseSessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.JobDescriptionTextRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(c)
	}

	resp, err := h.assistant.JobDescriptionFromText(c.UserContext(), id, req.Text)
	return respondJobDescription(c, resp, err)
}

// HandleURL handles POST /sessions/:id/job-description/url
func (h *JobDescriptionHandler) HandleURL(c *fiber.Ctx) error {
	id, err := parseSessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.JobDescriptionURLRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(c)
	}
	if strings.TrimSpace(req.URL) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "url is required",
			Code:  fiber.StatusBadRequest,
		})
	}

	resp, err := h.assistant.JobDescriptionFromURL(c.UserContext(), id, req.URL)
	return respondJobDescription(c, resp, err)
}

// HandleClear handles DELETE /sessions/:id/job-description
func (h *JobDescriptionHandler) HandleClear(c *fiber.Ctx) error {
	id, err := parseSessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.assistant.ClearJobDescription(id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// respondJobDescription sends a failed extraction with its fallback text so
// the client can show it next to the input.
func respondJobDescription(c *fiber.Ctx, resp models.JobDescriptionResponse, err error) error {
	switch {
	case err == nil:
		return c.JSON(resp)
	case errors.Is(err, services.ErrExtractionFailed):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}
	return respondError(c, err)
}

func invalidPayload(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: "Invalid request payload",
		Code:  fiber.StatusBadRequest,
	})
}
