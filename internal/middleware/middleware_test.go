package middleware_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"franklin/internal/adapter"
	"franklin/internal/domain"
	"franklin/internal/dto"
	"franklin/internal/middleware"
	"franklin/internal/service"
	"franklin/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestErrorHandler_DomainErrors(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.NewInsufficientInputError(50), http.StatusBadRequest, "INSUFFICIENT_INPUT"},
		{domain.NewFileTooLargeError(10 << 20), http.StatusBadRequest, "FILE_TOO_LARGE"},
		{domain.NewMissingFileError(), http.StatusBadRequest, "MISSING_FILE"},
		{domain.NewConfigError("GEMINI_API_KEY"), http.StatusInternalServerError, "CONFIG_ERROR"},
		{domain.NewSchemaError("question 1: prompt is missing"), http.StatusBadGateway, "SCHEMA_ERROR"},
		{domain.NewError(domain.CodeUploadInit, "API key not valid", nil), http.StatusBadGateway, "UPLOAD_INIT_FAILED"},
		{domain.NewError(domain.CodeMissingFileID, "no id", nil), http.StatusBadGateway, "MISSING_FILE_ID"},
		{domain.NewError(domain.CodeFileDelete, "gone", nil), http.StatusBadGateway, "FILE_DELETE_FAILED"},
		{domain.NewUpstreamUnavailableError(errors.New("dial")), http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			app := newApp()
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decodeError(t, resp)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestErrorHandler_HidesCause(t *testing.T) {
	app := newApp()
	app.Get("/", func(c *fiber.Ctx) error {
		return domain.NewUpstreamUnavailableError(errors.New("secret-key-in-url"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(raw), "secret-key-in-url")
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	app := newApp()
	app.Get("/", func(c *fiber.Ctx) error {
		return domain.ValidationErrors{domain.NewMissingFieldError("fileId")}
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body dto.ValidationErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "fileId", body.Errors[0].Field)
}

func TestRequestID(t *testing.T) {
	app := newApp()
	app.Use(middleware.RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		id, _ := c.Locals(middleware.LocalsRequestID).(string)
		return c.SendString(id)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	id := resp.Header.Get(middleware.HeaderRequestID)
	assert.True(t, util.IsULID(id))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, id, string(body))

	incoming := util.NewULID()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.HeaderRequestID, incoming)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, incoming, resp.Header.Get(middleware.HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.HeaderRequestID, "<script>")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, "<script>", resp.Header.Get(middleware.HeaderRequestID))
}

func TestClientKey(t *testing.T) {
	app := newApp()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(middleware.ClientKey(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "203.0.113.7", string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, "0.0.0.0", string(body))
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	limiter := service.NewRateLimiter(adapter.NewMemoryRateLimitStore(), 2, time.Minute).
		WithClock(func() time.Time { return now })

	app := newApp()
	app.Post("/", middleware.RateLimit(limiter), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	send := func() *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Forwarded-For", "198.51.100.4")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := send()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", resp.Header.Get("X-RateLimit-Remaining"))

	resp = send()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))

	resp = send()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	assert.Equal(t, "RATE_LIMITED", decodeError(t, resp).Code)
}

func TestValidateGenerateQuizBody(t *testing.T) {
	vm := middleware.NewValidationMiddleware()
	app := newApp()
	app.Post("/", vm.ValidateGenerateQuizBody(), func(c *fiber.Ctx) error {
		req := c.Locals(middleware.LocalsGenerateQuizRequest).(*dto.GenerateQuizRequest)
		return c.JSON(req)
	})

	post := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := post(`{"text":"hello","files":[{"providerFileId":"files/abc"}]}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post(`{"files":[{"providerFileId":""}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(`{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, resp).Code)
}

func TestValidateFileIDQuery(t *testing.T) {
	vm := middleware.NewValidationMiddleware()
	app := newApp()
	app.Delete("/", vm.ValidateFileIDQuery(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(middleware.LocalsFileID).(string))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/?fileId=files/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, resp).Code)
}
