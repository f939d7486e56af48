package handler

import (
	"franklin/internal/domain"
	"franklin/internal/dto"
	"franklin/internal/middleware"
	"franklin/internal/service"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service       service.QuizService
	minTextLength int
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService, minTextLength int) *QuizHandler {
	return &QuizHandler{
		service:       service,
		minTextLength: minTextLength,
	}
}

// GenerateQuiz godoc
// @Summary Generate a multiple-choice quiz
// @Description Generates questions from study text, previously ingested files, or both
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Study material"
// @Success 200 {object} dto.GenerateQuizResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /generate-quiz [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	req, ok := c.Locals(middleware.LocalsGenerateQuizRequest).(*dto.GenerateQuizRequest)
	if !ok {
		req = &dto.GenerateQuizRequest{}
		if err := c.BodyParser(req); err != nil {
			return domain.NewInvalidInputError("request body must be a JSON object")
		}
	}

	input, err := domain.NewGenerationInput(req.Text, req.FileRefs(), h.minTextLength)
	if err != nil {
		return err
	}

	quiz, err := h.service.GenerateQuiz(c.UserContext(), input)
	if err != nil {
		return err
	}

	return c.JSON(dto.NewGenerateQuizResponse(quiz))
}
