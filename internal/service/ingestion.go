package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"franklin/internal/config"
	"franklin/internal/domain"
	"franklin/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultMimeType = "application/octet-stream"

// IngestRequest is one uploaded file as received from the client.
type IngestRequest struct {
	FileName string
	MimeType string
	// Size is the size declared by the client, or 0 when unknown.
	Size int64
	Body io.Reader
}

// IngestionService moves client files to the provider and waits for them to
// become usable.
type IngestionService interface {
	Ingest(ctx context.Context, req IngestRequest) (*domain.FileHandle, error)
	Delete(ctx context.Context, fileID string) error
}

type ingestionService struct {
	gateway      domain.FileGateway
	maxBytes     int64
	pollAttempts int
	pollInterval time.Duration
	tempDir      string
	allowedTypes []string
}

// NewIngestionService creates an ingestion service. A nil gateway means the
// provider credential is not configured; every call then fails with CONFIG_ERROR.
func NewIngestionService(gateway domain.FileGateway, cfg config.UploadConfig) IngestionService {
	return &ingestionService{
		gateway:      gateway,
		maxBytes:     cfg.MaxBytes,
		pollAttempts: cfg.PollAttempts,
		pollInterval: cfg.PollInterval,
		tempDir:      cfg.TempDir,
		allowedTypes: cfg.AllowedTypes,
	}
}

func (s *ingestionService) Ingest(ctx context.Context, req IngestRequest) (*domain.FileHandle, error) {
	log := logger.FromContext(ctx)

	if s.gateway == nil {
		return nil, domain.NewConfigError("GEMINI_API_KEY")
	}
	if req.Body == nil {
		return nil, domain.NewMissingFileError()
	}
	if req.Size > s.maxBytes {
		return nil, domain.NewFileTooLargeError(s.maxBytes)
	}

	name := filepath.Base(strings.TrimSpace(req.FileName))
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "upload"
	}
	mimeType := resolveMimeType(name, req.MimeType)
	if !s.allowed(mimeType) {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("unsupported file type: %s", mimeType))
	}

	data, err := s.spool(ctx, name, req.Body)
	if err != nil {
		return nil, err
	}

	log.Info("uploading file to provider",
		zap.String("file_name", name),
		zap.String("mime_type", mimeType),
		zap.Int("size_bytes", len(data)))

	handle, err := s.gateway.Upload(ctx, name, mimeType, data)
	if err != nil {
		return nil, err
	}
	if handle.MimeType == "" {
		handle.MimeType = mimeType
	}

	if !handle.State.Terminal() {
		handle.State = s.waitUntilActive(ctx, handle)
	}

	log.Info("file ingested",
		zap.String("file_id", handle.ID),
		zap.String("state", string(handle.State)))
	return handle, nil
}

// spool copies the upload into a uniquely named temp file and reads it back,
// enforcing the size limit on the bytes actually received. The temp file is
// removed on every path.
func (s *ingestionService) spool(ctx context.Context, name string, body io.Reader) ([]byte, error) {
	path := filepath.Join(s.tempDir, uuid.NewString()+"_"+name)
	f, err := os.Create(path)
	if err != nil {
		return nil, domain.NewInternalError("failed to store upload", err)
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.FromContext(ctx).Warn("failed to remove temp file", zap.String("path", path), zap.Error(rmErr))
		}
	}()

	n, err := io.Copy(f, io.LimitReader(body, s.maxBytes+1))
	closeErr := f.Close()
	if err != nil {
		return nil, domain.NewInternalError("failed to store upload", err)
	}
	if closeErr != nil {
		return nil, domain.NewInternalError("failed to store upload", closeErr)
	}
	if n > s.maxBytes {
		return nil, domain.NewFileTooLargeError(s.maxBytes)
	}
	if n == 0 {
		return nil, domain.NewInvalidInputError("uploaded file is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewInternalError("failed to read upload", err)
	}
	return data, nil
}

// waitUntilActive polls the provider at a fixed interval. It never fails:
// a failed lookup yields UNKNOWN and running out of attempts yields PROCESSING.
func (s *ingestionService) waitUntilActive(ctx context.Context, handle *domain.FileHandle) domain.ProcessingState {
	log := logger.FromContext(ctx).With(zap.String("file_id", handle.ID))

	for attempt := 1; attempt <= s.pollAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				log.Warn("stopped waiting for file", zap.Error(ctx.Err()))
				return domain.StateProcessing
			case <-time.After(s.pollInterval):
			}
		}

		status, err := s.gateway.Status(ctx, handle.ID)
		if err != nil {
			log.Warn("file status lookup failed", zap.Int("attempt", attempt), zap.Error(err))
			return domain.StateUnknown
		}
		if status.URI != "" {
			handle.URI = status.URI
		}
		if status.State.Terminal() {
			return status.State
		}
		log.Debug("file still processing", zap.Int("attempt", attempt))
	}
	return domain.StateProcessing
}

func (s *ingestionService) Delete(ctx context.Context, fileID string) error {
	if s.gateway == nil {
		return domain.NewConfigError("GEMINI_API_KEY")
	}
	if strings.TrimSpace(fileID) == "" {
		return domain.NewInvalidInputError("fileId is required")
	}
	if err := s.gateway.Delete(ctx, fileID); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("file deleted", zap.String("file_id", fileID))
	return nil
}

func (s *ingestionService) allowed(mimeType string) bool {
	if len(s.allowedTypes) == 0 {
		return true
	}
	family, _, _ := strings.Cut(mimeType, "/")
	for _, t := range s.allowedTypes {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == mimeType || t == family+"/*" || t == "*/*" {
			return true
		}
	}
	return false
}

// resolveMimeType strips parameters from the declared type and falls back to
// the file extension when the client sent nothing useful.
func resolveMimeType(fileName, declared string) string {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || mediaType == "" || mediaType == defaultMimeType {
		if ext := filepath.Ext(fileName); ext != "" {
			if byExt, _, err := mime.ParseMediaType(mime.TypeByExtension(ext)); err == nil && byExt != "" {
				return byExt
			}
		}
		return defaultMimeType
	}
	return strings.ToLower(mediaType)
}
