package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-critic/internal/models"
	"alfredoptarigan/resume-critic/internal/services"
)

var documentExtensions = []string{".pdf", ".docx"}

type UploadHandler struct {
	assistant      *services.Assistant
	storageService services.StorageService
}

func NewUploadHandler(assistant *services.Assistant, storageService services.StorageService) *UploadHandler {
	return &UploadHandler{
		assistant:      assistant,
		storageService: storageService,
	}
}

// HandleUploadResume handles POST /sessions/:id/resume
func (h *UploadHandler) HandleUploadResume(c *fiber.Ctx) error {
	id, err := parseSessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	file, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Please upload your resume as the 'resume' form file",
			Code:  fiber.StatusBadRequest,
		})
	}

	data, err := h.storageService.ReadUpload(file, documentExtensions...)
	if err != nil {
		return respondError(c, err)
	}

	resp, err := h.assistant.UploadResume(c.UserContext(), id, file.Filename, data)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// HandleRemoveResume handles DELETE /sessions/:id/resume
func (h *UploadHandler) HandleRemoveResume(c *fiber.Ctx) error {
	id, err := parseSessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.assistant.RemoveResume(id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleUploadJobDescription handles POST /sessions/:id/job-description/file
func (h *UploadHandler) HandleUploadJobDescription(c *fiber.Ctx) error {
	id, err := parseSessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	file, err := c.FormFile("job_description")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Please upload the job description as the 'job_description' form file",
			Code:  fiber.StatusBadRequest,
		})
	}

	data, err := h.storageService.ReadUpload(file, documentExtensions...)
	if err != nil {
		return respondError(c, err)
	}

	resp, err := h.assistant.JobDescriptionFromFile(id, file.Filename, data)
	return respondJobDescription(c, resp, err)
}
