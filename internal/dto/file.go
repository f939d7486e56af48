package dto

import "franklin/internal/domain"

// IngestFileResponse is returned by POST /api/ingest-file.
type IngestFileResponse struct {
	Success   bool   `json:"success"`
	FileID    string `json:"fileId"`
	MimeType  string `json:"mimeType,omitempty"`
	State     string `json:"state"`
	SizeBytes int64  `json:"sizeBytes"`
}

func NewIngestFileResponse(h *domain.FileHandle) IngestFileResponse {
	return IngestFileResponse{
		Success:   true,
		FileID:    h.ID,
		MimeType:  h.MimeType,
		State:     string(h.State),
		SizeBytes: h.SizeBytes,
	}
}

// DeleteFileResponse is returned by DELETE /api/ingest-file.
type DeleteFileResponse struct {
	Success bool `json:"success"`
}
