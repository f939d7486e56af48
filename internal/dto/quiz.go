package dto

import "franklin/internal/domain"

// FileReference points at a file previously returned by the ingest endpoint.
type FileReference struct {
	ProviderFileID string `json:"providerFileId"`
	MimeType       string `json:"mimeType,omitempty"`
}

// GenerateQuizRequest is the body of POST /api/generate-quiz.
// @Description Study text, file references or both
type GenerateQuizRequest struct {
	Text  string          `json:"text,omitempty"`
	Files []FileReference `json:"files,omitempty"`
}

// FileRefs converts the request references into domain references.
func (r *GenerateQuizRequest) FileRefs() []domain.FileRef {
	refs := make([]domain.FileRef, 0, len(r.Files))
	for _, f := range r.Files {
		refs = append(refs, domain.FileRef{ID: f.ProviderFileID, MimeType: f.MimeType})
	}
	return refs
}

// QuestionResponse is one generated question.
type QuestionResponse struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// GenerateQuizResponse carries the shuffled questions.
type GenerateQuizResponse struct {
	Questions []QuestionResponse `json:"questions"`
}

// NewGenerateQuizResponse maps a quiz onto its wire form.
func NewGenerateQuizResponse(quiz *domain.Quiz) GenerateQuizResponse {
	resp := GenerateQuizResponse{Questions: make([]QuestionResponse, 0, quiz.Len())}
	if quiz == nil {
		return resp
	}
	for _, q := range quiz.Questions {
		resp.Questions = append(resp.Questions, QuestionResponse{
			Prompt:       q.Prompt,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Explanation:  q.Explanation,
		})
	}
	return resp
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse lists every invalid request field.
type ValidationErrorResponse struct {
	Error  string                   `json:"error"`
	Code   string                   `json:"code"`
	Errors []domain.ValidationError `json:"errors"`
}
