package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"franklin/internal/domain"
	"franklin/internal/dto"
	"franklin/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler is the centralized fiber error handler. Every failure leaves
// as {error, code}; the pipeline phase that failed is only logged.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log := logger.FromContext(c.UserContext())

		// Handle validation errors
		var validationErrs domain.ValidationErrors
		if errors.As(err, &validationErrs) {
			log.Warn("Validation errors occurred",
				zap.String("path", c.Path()),
				zap.Int("error_count", len(validationErrs)),
			)
			return c.Status(http.StatusBadRequest).JSON(dto.ValidationErrorResponse{
				Error:  "request validation failed",
				Code:   string(domain.CodeValidation),
				Errors: validationErrs,
			})
		}

		// Handle domain errors
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			statusCode := StatusForCode(domainErr.Code)

			fields := []zap.Field{
				zap.String("path", c.Path()),
				zap.String("code", string(domainErr.Code)),
				zap.String("message", domainErr.Message),
				zap.Int("status", statusCode),
				zap.NamedError("cause", domainErr.Err),
			}
			if statusCode >= http.StatusInternalServerError {
				log.Error("Domain error occurred", fields...)
			} else {
				log.Warn("Domain error occurred", fields...)
			}

			if retry, ok := domainErr.Context["retry_after_seconds"].(int); ok {
				c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retry))
			}

			return c.Status(statusCode).JSON(dto.ErrorResponse{
				Error:   domainErr.Message,
				Code:    string(domainErr.Code),
				Details: publicDetails(domainErr),
			})
		}

		// Handle fiber errors
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			log.Warn("Fiber error occurred",
				zap.Int("code", fiberErr.Code),
				zap.String("message", fiberErr.Message),
			)
			// an oversized body is an input error like any other oversized file
			if fiberErr.Code == http.StatusRequestEntityTooLarge {
				return c.Status(http.StatusBadRequest).JSON(dto.ErrorResponse{
					Error: fiberErr.Message,
					Code:  string(domain.CodeFileTooLarge),
				})
			}
			return c.Status(fiberErr.Code).JSON(dto.ErrorResponse{
				Error: fiberErr.Message,
				Code:  "HTTP_ERROR",
			})
		}

		// Handle unknown errors
		log.Error("Unknown error occurred",
			zap.String("path", c.Path()),
			zap.Error(err),
		)

		return c.Status(http.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "internal server error",
			Code:  string(domain.CodeInternal),
		})
	}
}

// StatusForCode maps domain error codes to HTTP status codes
func StatusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeInvalidInput, domain.CodeInsufficientInput, domain.CodeFileTooLarge,
		domain.CodeMissingFile, domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeRateLimited:
		return http.StatusTooManyRequests
	case domain.CodeUploadInit, domain.CodeUploadTransfer, domain.CodeMissingFileID,
		domain.CodeFileDelete, domain.CodeSchema:
		return http.StatusBadGateway
	case domain.CodeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicDetails exposes only context keys that are safe to show clients.
func publicDetails(err *domain.DomainError) map[string]interface{} {
	details := make(map[string]interface{})
	for _, key := range []string{"max_bytes", "retry_after_seconds"} {
		if v, ok := err.Context[key]; ok {
			details[key] = v
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}
