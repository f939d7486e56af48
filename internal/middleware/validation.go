package middleware

import (
	"strings"

	"franklin/internal/domain"
	"franklin/internal/dto"
	"franklin/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalsGenerateQuizRequest = "validated_generate_quiz_request"
	LocalsFileID              = "validated_file_id"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateGenerateQuizBody parses and validates the generate-quiz body.
func (vm *ValidationMiddleware) ValidateGenerateQuizBody() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dto.GenerateQuizRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return domain.NewInvalidInputError("request body must be a JSON object")
			}
		}

		if errors := vm.validator.ValidateGenerateQuizRequest(&req); len(errors) > 0 {
			return errors // This will be handled by ErrorHandler middleware
		}

		// Store validated value in context for handlers to use
		c.Locals(LocalsGenerateQuizRequest, &req)
		return c.Next()
	}
}

// ValidateFileIDQuery validates the fileId query parameter.
func (vm *ValidationMiddleware) ValidateFileIDQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileID := strings.TrimSpace(c.Query("fileId"))
		if fileID == "" {
			return domain.NewInvalidInputError("fileId is required")
		}
		if errors := vm.validator.ValidateFileID(fileID); len(errors) > 0 {
			return errors
		}

		c.Locals(LocalsFileID, fileID)
		return c.Next()
	}
}
