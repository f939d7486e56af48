package service

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"franklin/internal/domain"
)

const msgNotJSON = "quiz response is not valid JSON"

var fencePattern = regexp.MustCompile("(?s)```[A-Za-z]*[ \t]*\\r?\\n?(.*?)\\s*```")

// ResponseValidator turns raw model output into a quiz, rejecting anything
// that does not match the question schema exactly.
type ResponseValidator struct{}

func NewResponseValidator() *ResponseValidator {
	return &ResponseValidator{}
}

// NormalizeResponse trims the output and unwraps a markdown code fence.
func NormalizeResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	// unterminated fence
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			return strings.TrimSpace(s[i+1:])
		}
	}
	return s
}

// ParseAndValidate normalizes raw, decodes it and checks it against the
// schema. parsed is false when raw held no JSON at all.
func (v *ResponseValidator) ParseAndValidate(raw string, expected int) (quiz *domain.Quiz, parsed bool, derr *domain.DomainError) {
	var data interface{}
	if err := json.Unmarshal([]byte(NormalizeResponse(raw)), &data); err != nil {
		return nil, false, domain.NewSchemaError(msgNotJSON)
	}

	questions, msg := validateQuestions(data, expected)
	if msg != "" {
		return nil, true, domain.NewSchemaError(msg)
	}
	return &domain.Quiz{Questions: questions}, true, nil
}

func validateQuestions(data interface{}, expected int) ([]domain.Question, string) {
	items, ok := data.([]interface{})
	if !ok || len(items) != expected {
		return nil, fmt.Sprintf("quiz must contain exactly %d questions", expected)
	}

	questions := make([]domain.Question, 0, len(items))
	for i, item := range items {
		n := i + 1
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Sprintf("question %d: must be an object", n)
		}

		prompt, ok := nonBlankString(obj["prompt"])
		if !ok {
			return nil, fmt.Sprintf("question %d: prompt is missing", n)
		}

		options, ok := stringSlice(obj["options"])
		if !ok || len(options) != domain.OptionCount {
			return nil, fmt.Sprintf("question %d: exactly %d options are required", n, domain.OptionCount)
		}

		correct, ok := obj["correctIndex"].(float64)
		if !ok || correct != math.Trunc(correct) || correct < 0 || correct >= domain.OptionCount {
			return nil, fmt.Sprintf("question %d: correctIndex must be an integer between 0 and %d", n, domain.OptionCount-1)
		}

		explanation, ok := nonBlankString(obj["explanation"])
		if !ok {
			return nil, fmt.Sprintf("question %d: explanation is missing", n)
		}

		questions = append(questions, domain.Question{
			Prompt:       prompt,
			Options:      options,
			CorrectIndex: int(correct),
			Explanation:  explanation,
		})
	}
	return questions, ""
}

func nonBlankString(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func stringSlice(v interface{}) ([]string, bool) {
	raw, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
