package handler

import (
	"franklin/internal/middleware"
	"franklin/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the API under /api plus the health check.
// Only quiz generation is rate limited.
func RegisterRoutes(app *fiber.App, health *HealthHandler, quiz *QuizHandler, files *FileHandler, limiter *service.RateLimiter) {
	validator := middleware.NewValidationMiddleware()

	app.Get("/health", health.Health)

	api := app.Group("/api")
	api.Post("/generate-quiz", middleware.RateLimit(limiter), validator.ValidateGenerateQuizBody(), quiz.GenerateQuiz)
	api.Post("/ingest-file", files.IngestFile)
	api.Delete("/ingest-file", validator.ValidateFileIDQuery(), files.DeleteFile)
}
