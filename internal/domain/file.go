package domain

import (
	"context"
	"strings"
)

// ProcessingState is the provider's lifecycle label for an ingested file.
// PROCESSING is the pending state: the file exists but may not be referenced yet.
type ProcessingState string

const (
	StateProcessing ProcessingState = "PROCESSING"
	StateActive     ProcessingState = "ACTIVE"
	StateFailed     ProcessingState = "FAILED"
	StateUnknown    ProcessingState = "UNKNOWN"
)

// ParseProcessingState maps a provider state string onto ProcessingState.
func ParseProcessingState(s string) ProcessingState {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PROCESSING", "PENDING":
		return StateProcessing
	case "ACTIVE":
		return StateActive
	case "FAILED":
		return StateFailed
	default:
		return StateUnknown
	}
}

// Terminal reports whether polling can stop.
func (s ProcessingState) Terminal() bool {
	return s == StateActive || s == StateFailed
}

// FileHandle references a file that finished the upload handshake.
type FileHandle struct {
	ID        string          `json:"fileId"`
	MimeType  string          `json:"mimeType"`
	SizeBytes int64           `json:"sizeBytes"`
	State     ProcessingState `json:"state"`
	URI       string          `json:"uri,omitempty"`
}

// Ref returns the attachment reference used when prompting.
func (h FileHandle) Ref() FileRef {
	return FileRef{ID: h.ID, MimeType: h.MimeType}
}

// FileRef is a client-supplied reference to a previously ingested file.
type FileRef struct {
	ID       string
	MimeType string
}

// ShortFileID strips the "files/" resource prefix.
func ShortFileID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), "files/")
}

// FileGateway is the port onto the provider's file API.
type FileGateway interface {
	// Upload performs the two-phase resumable upload and returns the handle
	// with whatever state the provider reported at finalize time.
	Upload(ctx context.Context, fileName, mimeType string, data []byte) (*FileHandle, error)
	// Status fetches the current state of one file.
	Status(ctx context.Context, fileID string) (*FileHandle, error)
	// Delete removes a file from the provider.
	Delete(ctx context.Context, fileID string) error
}
