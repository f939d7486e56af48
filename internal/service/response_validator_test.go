package service

import (
	"encoding/json"
	"testing"

	"franklin/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuestionMap() map[string]interface{} {
	return map[string]interface{}{
		"prompt":       "What does a mitochondrion produce?",
		"options":      []interface{}{"ATP", "DNA", "Lipids", "Chlorophyll", "Starch"},
		"correctIndex": 0,
		"explanation":  "Mitochondria produce ATP through cellular respiration.",
	}
}

func encodeQuestions(t *testing.T, items ...map[string]interface{}) string {
	t.Helper()
	b, err := json.Marshal(items)
	require.NoError(t, err)
	return string(b)
}

func TestNormalizeResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "  [1]  ", "[1]"},
		{"json fence", "```json\n[1, 2]\n```", "[1, 2]"},
		{"bare fence", "```\n[3]\n```", "[3]"},
		{"fence with preamble", "Here is your quiz:\n```json\n[4]\n```\nGood luck!", "[4]"},
		{"unterminated fence", "```json\n[5]", "[5]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeResponse(tt.raw))
		})
	}
}

func TestParseAndValidate_Valid(t *testing.T) {
	v := NewResponseValidator()
	raw := "```json\n" + encodeQuestions(t, sampleQuestionMap(), sampleQuestionMap()) + "\n```"

	quiz, parsed, derr := v.ParseAndValidate(raw, 2)
	require.Nil(t, derr)
	assert.True(t, parsed)
	require.Equal(t, 2, quiz.Len())
	assert.Equal(t, "ATP", quiz.Questions[0].CorrectOption())
	for _, q := range quiz.Questions {
		assert.True(t, q.Valid())
	}
}

func TestParseAndValidate_NotJSON(t *testing.T) {
	v := NewResponseValidator()
	quiz, parsed, derr := v.ParseAndValidate("Sorry, I cannot help with that.", 1)

	assert.Nil(t, quiz)
	assert.False(t, parsed)
	require.NotNil(t, derr)
	assert.Equal(t, domain.CodeSchema, derr.Code)
	assert.Equal(t, "quiz response is not valid JSON", derr.Message)
}

func TestParseAndValidate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(q map[string]interface{})
		want   string
	}{
		{"missing prompt", func(q map[string]interface{}) { delete(q, "prompt") }, "question 1: prompt is missing"},
		{"blank prompt", func(q map[string]interface{}) { q["prompt"] = "   " }, "question 1: prompt is missing"},
		{"four options", func(q map[string]interface{}) {
			q["options"] = []interface{}{"a", "b", "c", "d"}
		}, "question 1: exactly 5 options are required"},
		{"non-string option", func(q map[string]interface{}) {
			q["options"] = []interface{}{"a", "b", 3, "d", "e"}
		}, "question 1: exactly 5 options are required"},
		{"index out of range", func(q map[string]interface{}) { q["correctIndex"] = 5 }, "question 1: correctIndex must be an integer between 0 and 4"},
		{"negative index", func(q map[string]interface{}) { q["correctIndex"] = -1 }, "question 1: correctIndex must be an integer between 0 and 4"},
		{"fractional index", func(q map[string]interface{}) { q["correctIndex"] = 1.5 }, "question 1: correctIndex must be an integer between 0 and 4"},
		{"string index", func(q map[string]interface{}) { q["correctIndex"] = "2" }, "question 1: correctIndex must be an integer between 0 and 4"},
		{"missing explanation", func(q map[string]interface{}) { delete(q, "explanation") }, "question 1: explanation is missing"},
	}

	v := NewResponseValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := sampleQuestionMap()
			tt.mutate(q)

			quiz, parsed, derr := v.ParseAndValidate(encodeQuestions(t, q), 1)
			assert.Nil(t, quiz)
			assert.True(t, parsed)
			require.NotNil(t, derr)
			assert.Equal(t, domain.CodeSchema, derr.Code)
			assert.Equal(t, tt.want, derr.Message)
		})
	}
}

func TestParseAndValidate_WrongCount(t *testing.T) {
	v := NewResponseValidator()

	_, _, derr := v.ParseAndValidate(encodeQuestions(t, sampleQuestionMap()), 3)
	require.NotNil(t, derr)
	assert.Equal(t, "quiz must contain exactly 3 questions", derr.Message)

	_, _, derr = v.ParseAndValidate(`{"questions": []}`, 1)
	require.NotNil(t, derr)
	assert.Equal(t, "quiz must contain exactly 1 questions", derr.Message)
}

func TestParseAndValidate_FirstViolationWins(t *testing.T) {
	v := NewResponseValidator()
	second := sampleQuestionMap()
	delete(second, "explanation")
	delete(second, "prompt")

	_, _, derr := v.ParseAndValidate(encodeQuestions(t, sampleQuestionMap(), second), 2)
	require.NotNil(t, derr)
	assert.Equal(t, "question 2: prompt is missing", derr.Message)
}
