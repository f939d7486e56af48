package service

import (
	"fmt"
	"strconv"

	"franklin/internal/domain"

	"github.com/tmc/langchaingo/prompts"
)

const maxQuestionCount = 12

const quizPromptTemplate = `You are an experienced trainer preparing learners for an exam on the material below.
{{if .material}}
{{.material_label}}:
"""
{{.material}}
"""
{{end}}{{if .has_files}}
The attached document(s) are part of the study material. Base the questions on their content.
{{end}}
Create exactly {{.count}} multiple-choice questions. Each question has exactly 1 correct and 4 incorrect answer options.

Rules:
- The correct answer must be unambiguously correct and verifiable from the material.
- The incorrect answers must be clearly wrong in the context of the material.
- Avoid options that could also be considered correct.
- Ask about specific details of the material rather than general knowledge.
- Give a short explanation of why the correct answer is correct.

Respond with ONLY a JSON array and no other text, in exactly this format:
[
  {
    "prompt": "question text",
    "options": ["option 1", "option 2", "option 3", "option 4", "option 5"],
    "correctIndex": 0,
    "explanation": "why the correct option is correct"
  }
]`

const repairPromptTemplate = `The following output was supposed to be a JSON array of exactly {{.count}} multiple-choice questions but it is invalid: {{.problem}}.

Correct it into a strictly valid JSON array of exactly {{.count}} items. Every item has a non-empty "prompt", an "options" array of exactly 5 strings, an integer "correctIndex" between 0 and 4 and a non-empty "explanation".
Respond with the JSON array only, without any commentary or markdown.

Output to correct:
"""
{{.raw}}
"""`

// QuestionCount maps the trimmed character length of the source text onto
// the number of questions to request.
func QuestionCount(textLength int) int {
	switch {
	case textLength < 100:
		return 1
	case textLength < 200:
		return 2
	case textLength < 400:
		return 3
	default:
		return min(4+(textLength-400)/200, maxQuestionCount)
	}
}

// Prompt is a rendered generation request together with the number of
// questions the response must contain.
type Prompt struct {
	Parts         domain.PromptParts
	ExpectedCount int
}

// PromptBuilder renders generation and repair prompts.
type PromptBuilder struct {
	minTextLength     int
	fileQuestionCount int
	quizTemplate      prompts.PromptTemplate
	repairTemplate    prompts.PromptTemplate
}

func NewPromptBuilder(minTextLength, fileQuestionCount int) *PromptBuilder {
	return &PromptBuilder{
		minTextLength:     minTextLength,
		fileQuestionCount: fileQuestionCount,
		quizTemplate: prompts.NewPromptTemplate(quizPromptTemplate,
			[]string{"material", "material_label", "has_files", "count"}),
		repairTemplate: prompts.NewPromptTemplate(repairPromptTemplate,
			[]string{"count", "problem", "raw"}),
	}
}

// ExpectedCount returns the number of questions requested for in.
func (b *PromptBuilder) ExpectedCount(in domain.GenerationInput) (int, error) {
	switch v := in.(type) {
	case domain.TextInput:
		return QuestionCount(domain.TextLength(v.Text)), nil
	case domain.FilesInput:
		return b.fileQuestionCount, nil
	case domain.TextWithFilesInput:
		if n := domain.TextLength(v.Text); n >= b.minTextLength {
			return QuestionCount(n), nil
		}
		return b.fileQuestionCount, nil
	default:
		return 0, domain.NewInternalError(fmt.Sprintf("unsupported generation input %T", in), nil)
	}
}

// Build renders the generation prompt for in.
func (b *PromptBuilder) Build(in domain.GenerationInput) (*Prompt, error) {
	count, err := b.ExpectedCount(in)
	if err != nil {
		return nil, err
	}

	values := map[string]any{
		"material":       "",
		"material_label": "Study material",
		"has_files":      false,
		"count":          strconv.Itoa(count),
	}
	var attachments []domain.FileRef
	switch v := in.(type) {
	case domain.TextInput:
		values["material"] = v.Text
	case domain.FilesInput:
		values["has_files"] = true
		attachments = v.Files
	case domain.TextWithFilesInput:
		values["material"] = v.Text
		values["has_files"] = true
		if domain.TextLength(v.Text) < b.minTextLength {
			values["material_label"] = "Additional notes from the learner"
		}
		attachments = v.Files
	}

	text, err := b.quizTemplate.Format(values)
	if err != nil {
		return nil, domain.NewInternalError("failed to render quiz prompt", err)
	}

	return &Prompt{
		Parts: domain.PromptParts{
			Text:        text,
			Attachments: append([]domain.FileRef(nil), attachments...),
		},
		ExpectedCount: count,
	}, nil
}

// BuildRepair renders the single follow-up request asking the model to fix
// its previous output. Attachments are not resent.
func (b *PromptBuilder) BuildRepair(raw string, expected int, problem string) (domain.PromptParts, error) {
	text, err := b.repairTemplate.Format(map[string]any{
		"count":   strconv.Itoa(expected),
		"problem": problem,
		"raw":     raw,
	})
	if err != nil {
		return domain.PromptParts{}, domain.NewInternalError("failed to render repair prompt", err)
	}
	return domain.PromptParts{Text: text}, nil
}
