package validation

import (
	"strings"
	"testing"

	"franklin/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGenerateQuizRequest(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name       string
		req        dto.GenerateQuizRequest
		wantFields []string
	}{
		{
			name: "text only",
			req:  dto.GenerateQuizRequest{Text: "Cells are the basic unit of life."},
		},
		{
			name: "empty request is shape-valid",
			req:  dto.GenerateQuizRequest{},
		},
		{
			name: "valid files",
			req: dto.GenerateQuizRequest{Files: []dto.FileReference{
				{ProviderFileID: "files/abc-123", MimeType: "application/pdf"},
				{ProviderFileID: "xyz789"},
			}},
		},
		{
			name:       "text too long",
			req:        dto.GenerateQuizRequest{Text: strings.Repeat("a", MaxTextLength+1)},
			wantFields: []string{"text"},
		},
		{
			name: "blank and malformed ids",
			req: dto.GenerateQuizRequest{Files: []dto.FileReference{
				{ProviderFileID: " "},
				{ProviderFileID: "../etc/passwd"},
				{ProviderFileID: "files/ok", MimeType: "not a mime"},
			}},
			wantFields: []string{"files[0].providerFileId", "files[1].providerFileId", "files[2].mimeType"},
		},
		{
			name:       "too many files",
			req:        dto.GenerateQuizRequest{Files: make([]dto.FileReference, MaxFiles+1)},
			wantFields: []string{"files"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateGenerateQuizRequest(&tt.req)
			require.Len(t, errs, len(tt.wantFields))
			for i, field := range tt.wantFields {
				assert.Equal(t, field, errs[i].Field)
			}
		})
	}
}

func TestValidateFileID(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateFileID("files/abc123"))
	assert.Empty(t, v.ValidateFileID("abc-123"))

	errs := v.ValidateFileID("")
	require.Len(t, errs, 1)
	assert.Equal(t, "fileId", errs[0].Field)

	errs = v.ValidateFileID("files/ABC?x=1")
	require.Len(t, errs, 1)
	assert.Equal(t, "fileId", errs[0].Field)
}
