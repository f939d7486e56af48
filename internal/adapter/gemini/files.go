package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"franklin/internal/domain"
	"franklin/internal/util"

	"go.uber.org/zap"
)

const (
	headerAPIKey            = "X-Goog-Api-Key"
	headerUploadProtocol    = "X-Goog-Upload-Protocol"
	headerUploadCommand     = "X-Goog-Upload-Command"
	headerUploadOffset      = "X-Goog-Upload-Offset"
	headerUploadURL         = "X-Goog-Upload-URL"
	headerUploadContentLen  = "X-Goog-Upload-Header-Content-Length"
	headerUploadContentType = "X-Goog-Upload-Header-Content-Type"

	maxResponseBody = 1 << 20
)

// FileClient speaks the provider's file API: the two-phase resumable upload,
// the per-file status lookup and deletion.
type FileClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewFileClient creates a FileClient. baseURL is the API origin, for example
// https://generativelanguage.googleapis.com.
func NewFileClient(apiKey, baseURL string, httpClient *http.Client, logger *zap.Logger) (*FileClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("Gemini API key cannot be empty")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("Gemini base URL cannot be empty")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}, nil
}

type fileResource struct {
	Name      string    `json:"name"`
	MimeType  string    `json:"mimeType"`
	SizeBytes flexInt64 `json:"sizeBytes"`
	State     string    `json:"state"`
	URI       string    `json:"uri"`
}

func (f fileResource) handle() *domain.FileHandle {
	return &domain.FileHandle{
		ID:        f.Name,
		MimeType:  f.MimeType,
		SizeBytes: int64(f.SizeBytes),
		State:     domain.ParseProcessingState(f.State),
		URI:       f.URI,
	}
}

// flexInt64 accepts int64 values encoded either as JSON numbers or strings;
// the provider serializes int64 fields as strings.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid int64 %q: %w", s, err)
	}
	*f = flexInt64(n)
	return nil
}

// Upload implements domain.FileGateway.
func (c *FileClient) Upload(ctx context.Context, fileName, mimeType string, data []byte) (*domain.FileHandle, error) {
	uploadURL, err := c.initiateUpload(ctx, fileName, mimeType, len(data))
	if err != nil {
		return nil, err
	}
	return c.transfer(ctx, uploadURL, data)
}

func (c *FileClient) initiateUpload(ctx context.Context, fileName, mimeType string, contentLength int) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"file": map[string]string{
			"displayName": fileName,
			"mimeType":    mimeType,
		},
	})
	if err != nil {
		return "", domain.NewError(domain.CodeUploadInit, "upload initialization failed", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/v1beta/files", bytes.NewReader(payload))
	if err != nil {
		return "", domain.NewError(domain.CodeUploadInit, "upload initialization failed", err)
	}
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set(headerUploadProtocol, "resumable")
	req.Header.Set(headerUploadCommand, "start")
	req.Header.Set(headerUploadContentLen, strconv.Itoa(contentLength))
	req.Header.Set(headerUploadContentType, mimeType)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewError(domain.CodeUploadInit, "upload initialization failed", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))

	if !isSuccess(resp.StatusCode) {
		c.logger.Warn("Upload initialization rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("file_name", fileName))
		return "", domain.NewError(domain.CodeUploadInit, providerMessage(body, "upload initialization failed"), nil).
			WithContext("status", resp.StatusCode)
	}

	uploadURL := resp.Header.Get(headerUploadURL)
	if uploadURL == "" {
		return "", domain.NewError(domain.CodeUploadInit, "no upload URL returned by provider", nil)
	}
	return uploadURL, nil
}

func (c *FileClient) transfer(ctx context.Context, uploadURL string, data []byte) (*domain.FileHandle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return nil, domain.NewError(domain.CodeUploadTransfer, "file upload failed", err)
	}
	req.ContentLength = int64(len(data))
	req.Header.Set(headerUploadOffset, "0")
	req.Header.Set(headerUploadCommand, "upload, finalize")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewError(domain.CodeUploadTransfer, "file upload failed", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))

	if !isSuccess(resp.StatusCode) {
		return nil, domain.NewError(domain.CodeUploadTransfer, providerMessage(body, "file upload failed"), nil).
			WithContext("status", resp.StatusCode)
	}

	var result struct {
		File fileResource `json:"file"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, domain.NewError(domain.CodeUploadTransfer, "malformed upload response", err)
	}
	if result.File.Name == "" {
		return nil, domain.NewError(domain.CodeMissingFileID, "no file id in provider response", nil)
	}

	handle := result.File.handle()
	if handle.SizeBytes == 0 {
		handle.SizeBytes = int64(len(data))
	}
	return handle, nil
}

// Status implements domain.FileGateway.
func (c *FileClient) Status(ctx context.Context, fileID string) (*domain.FileHandle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fileURL(fileID), nil)
	if err != nil {
		return nil, domain.NewUpstreamUnavailableError(err)
	}
	req.Header.Set(headerAPIKey, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewUpstreamUnavailableError(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))

	if !isSuccess(resp.StatusCode) {
		return nil, domain.NewError(domain.CodeUpstreamUnavailable, util.Truncate(string(body), domain.ProviderDetailLimit), nil).
			WithContext("status", resp.StatusCode)
	}

	var file fileResource
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, domain.NewError(domain.CodeUpstreamUnavailable, "malformed file status response", err)
	}
	if file.Name == "" {
		file.Name = "files/" + domain.ShortFileID(fileID)
	}
	return file.handle(), nil
}

// Delete implements domain.FileGateway.
func (c *FileClient) Delete(ctx context.Context, fileID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.fileURL(fileID), nil)
	if err != nil {
		return domain.NewError(domain.CodeFileDelete, "file deletion failed", err)
	}
	req.Header.Set(headerAPIKey, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewError(domain.CodeFileDelete, "file deletion failed", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		return domain.NewError(domain.CodeFileDelete, util.Truncate(string(body), domain.ProviderDetailLimit), nil).
			WithContext("status", resp.StatusCode)
	}
	return nil
}

func (c *FileClient) fileURL(fileID string) string {
	return ResourceURI(c.baseURL, fileID)
}

// ResourceURI is the URI of a file resource, used both for status/delete
// calls and to reference the file from a prompt.
func ResourceURI(baseURL, fileID string) string {
	return fmt.Sprintf("%s/v1beta/files/%s", strings.TrimRight(baseURL, "/"), url.PathEscape(domain.ShortFileID(fileID)))
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// providerMessage extracts error.message from a provider error body, falling
// back to the given message. The result is bounded in length.
func providerMessage(body []byte, fallback string) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return util.Truncate(envelope.Error.Message, domain.ProviderDetailLimit)
	}
	return fallback
}

var _ domain.FileGateway = (*FileClient)(nil)
