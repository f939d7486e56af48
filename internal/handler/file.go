package handler

import (
	"franklin/internal/domain"
	"franklin/internal/dto"
	"franklin/internal/logger"
	"franklin/internal/middleware"
	"franklin/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const uploadFormField = "file"

// FileHandler handles file ingestion requests
type FileHandler struct {
	service service.IngestionService
}

// NewFileHandler creates a new FileHandler instance
func NewFileHandler(service service.IngestionService) *FileHandler {
	return &FileHandler{service: service}
}

// IngestFile godoc
// @Summary Upload a study file
// @Description Uploads one file to the provider and waits until it can be referenced
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Study file (max 10 MiB)"
// @Success 200 {object} dto.IngestFileResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /ingest-file [post]
func (h *FileHandler) IngestFile(c *fiber.Ctx) error {
	header, err := c.FormFile(uploadFormField)
	if err != nil {
		return domain.NewMissingFileError()
	}

	f, err := header.Open()
	if err != nil {
		return domain.NewInternalError("failed to open uploaded file", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.FromContext(c.UserContext()).Warn("failed to close uploaded file", zap.Error(cerr))
		}
	}()

	handle, err := h.service.Ingest(c.UserContext(), service.IngestRequest{
		FileName: header.Filename,
		MimeType: header.Header.Get(fiber.HeaderContentType),
		Size:     header.Size,
		Body:     f,
	})
	if err != nil {
		return err
	}

	return c.JSON(dto.NewIngestFileResponse(handle))
}

// DeleteFile godoc
// @Summary Delete an ingested file
// @Tags files
// @Produce json
// @Param fileId query string true "Provider file id"
// @Success 200 {object} dto.DeleteFileResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /ingest-file [delete]
func (h *FileHandler) DeleteFile(c *fiber.Ctx) error {
	fileID, _ := c.Locals(middleware.LocalsFileID).(string)
	if fileID == "" {
		fileID = c.Query("fileId")
	}

	if err := h.service.Delete(c.UserContext(), fileID); err != nil {
		return err
	}
	return c.JSON(dto.DeleteFileResponse{Success: true})
}
