package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"franklin/internal/domain"
	"franklin/internal/dto"
)

const (
	// MaxTextLength bounds the study text accepted in one request.
	MaxTextLength = 100000
	// MaxFiles bounds the number of file references in one request.
	MaxFiles = 10
)

var (
	fileIDPattern   = regexp.MustCompile(`^(files/)?[a-z0-9][a-z0-9-]{0,39}$`)
	mimeTypePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9!#$&^_.+-]*/[a-zA-Z0-9][a-zA-Z0-9!#$&^_.+-]*$`)
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateGenerateQuizRequest checks request shape only. Whether the text is
// long enough is decided when the generation input is classified.
func (v *Validator) ValidateGenerateQuizRequest(req *dto.GenerateQuizRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if n := utf8.RuneCountInString(req.Text); n > MaxTextLength {
		errors = append(errors, domain.NewOutOfRangeError("text", n, 0, MaxTextLength))
	}

	if len(req.Files) > MaxFiles {
		errors = append(errors, domain.NewOutOfRangeError("files", len(req.Files), 0, MaxFiles))
		return errors
	}

	for i, f := range req.Files {
		field := fmt.Sprintf("files[%d].providerFileId", i)
		if strings.TrimSpace(f.ProviderFileID) == "" {
			errors = append(errors, domain.NewMissingFieldError(field))
		} else if !isValidFileID(f.ProviderFileID) {
			errors = append(errors, domain.NewInvalidFormatError(field, f.ProviderFileID))
		}
		if f.MimeType != "" && !mimeTypePattern.MatchString(f.MimeType) {
			errors = append(errors, domain.NewInvalidFormatError(fmt.Sprintf("files[%d].mimeType", i), f.MimeType))
		}
	}

	return errors
}

// ValidateFileID validates the fileId query parameter of the delete endpoint.
func (v *Validator) ValidateFileID(fileID string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(fileID) == "" {
		errors = append(errors, domain.NewMissingFieldError("fileId"))
	} else if !isValidFileID(fileID) {
		errors = append(errors, domain.NewInvalidFormatError("fileId", fileID))
	}

	return errors
}

// isValidFileID accepts provider file names with or without the "files/" prefix.
func isValidFileID(s string) bool {
	return fileIDPattern.MatchString(strings.TrimSpace(s))
}
