package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-critic/internal/services"
)

// Register mounts the API under /api/v1.
func Register(app *fiber.App, assistant *services.Assistant, storageService services.StorageService) {
	sessionHandler := NewSessionHandler(assistant)
	uploadHandler := NewUploadHandler(assistant, storageService)
	jobDescriptionHandler := NewJobDescriptionHandler(assistant)
	analysisHandler := NewAnalysisHandler(assistant)
	chatHandler := NewChatHandler(assistant)

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/sessions", sessionHandler.HandleCreate)
	api.Get("/sessions/:id", sessionHandler.HandleGet)
	api.Delete("/sessions/:id", sessionHandler.HandleDelete)

	api.Post("/sessions/:id/resume", uploadHandler.HandleUploadResume)
	api.Delete("/sessions/:id/resume", uploadHandler.HandleRemoveResume)

	api.Put("/sessions/:id/job-description/mode", jobDescriptionHandler.HandleSelectMode)
	api.Post("/sessions/:id/job-description/file", uploadHandler.HandleUploadJobDescription)
	api.Post("/sessions/:id/job-description/text", jobDescriptionHandler.HandleText)
	api.Post("/sessions/:id/job-description/url", jobDescriptionHandler.HandleURL)
	api.Delete("/sessions/:id/job-description", jobDescriptionHandler.HandleClear)

	api.Post("/sessions/:id/analyze", analysisHandler.HandleAnalyze)
	api.Post("/sessions/:id/revise", analysisHandler.HandleRevise)

	api.Post("/sessions/:id/chat", chatHandler.HandleChat)
	api.Delete("/sessions/:id/conversation", chatHandler.HandleReset)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Critic API",
			"version": "1.0.0",
		})
	})
}
