package domain

import (
	"context"
	"strings"
	"unicode/utf8"
)

// GenerationInput is the closed set of request shapes accepted by the prompt
// builder: TextInput, FilesInput or TextWithFilesInput.
type GenerationInput interface {
	generationInput()
}

type TextInput struct {
	Text string
}

type FilesInput struct {
	Files []FileRef
}

// TextWithFilesInput carries both. Text shorter than the minimum length is kept
// as supplementary context but does not drive the question count.
type TextWithFilesInput struct {
	Text  string
	Files []FileRef
}

func (TextInput) generationInput()          {}
func (FilesInput) generationInput()         {}
func (TextWithFilesInput) generationInput() {}

// TextLength counts characters (runes) after trimming.
func TextLength(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}

// NewGenerationInput classifies raw request fields. It fails with
// INSUFFICIENT_INPUT when there is neither enough text nor a file.
func NewGenerationInput(text string, files []FileRef, minTextLength int) (GenerationInput, error) {
	text = strings.TrimSpace(text)
	refs := make([]FileRef, 0, len(files))
	for _, f := range files {
		if id := strings.TrimSpace(f.ID); id != "" {
			refs = append(refs, FileRef{ID: id, MimeType: strings.TrimSpace(f.MimeType)})
		}
	}

	hasText := TextLength(text) >= minTextLength
	switch {
	case len(refs) > 0 && text != "":
		return TextWithFilesInput{Text: text, Files: refs}, nil
	case len(refs) > 0:
		return FilesInput{Files: refs}, nil
	case hasText:
		return TextInput{Text: text}, nil
	default:
		return nil, NewInsufficientInputError(minTextLength)
	}
}

// InputFiles returns the file references carried by in, if any.
func InputFiles(in GenerationInput) []FileRef {
	switch v := in.(type) {
	case FilesInput:
		return v.Files
	case TextWithFilesInput:
		return v.Files
	default:
		return nil
	}
}

// WithFiles returns a copy of in with its file references replaced.
func WithFiles(in GenerationInput, files []FileRef) GenerationInput {
	switch v := in.(type) {
	case FilesInput:
		return FilesInput{Files: files}
	case TextWithFilesInput:
		return TextWithFilesInput{Text: v.Text, Files: files}
	default:
		return in
	}
}

// PromptParts is a provider-neutral prompt: instruction text plus typed file
// attachments referenced by provider id.
type PromptParts struct {
	Text        string
	Attachments []FileRef
}

// ContentGenerator is the port onto the provider's generate-content call.
type ContentGenerator interface {
	Generate(ctx context.Context, parts PromptParts) (string, error)
}
