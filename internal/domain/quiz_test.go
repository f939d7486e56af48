package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validQuestion() Question {
	return Question{
		Prompt:       "What does MVP stand for?",
		Options:      []string{"Minimum Viable Product", "Most Valuable Player", "Model View Presenter", "Maximum Value Proposition", "Minimal Visual Prototype"},
		CorrectIndex: 0,
		Explanation:  "The text defines MVP as the minimum viable product.",
	}
}

func TestQuestion_Valid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(q *Question)
		want   bool
	}{
		{"valid", func(q *Question) {}, true},
		{"blank prompt", func(q *Question) { q.Prompt = "  " }, false},
		{"four options", func(q *Question) { q.Options = q.Options[:4] }, false},
		{"negative index", func(q *Question) { q.CorrectIndex = -1 }, false},
		{"index five", func(q *Question) { q.CorrectIndex = 5 }, false},
		{"blank explanation", func(q *Question) { q.Explanation = "\n" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(&q)
			assert.Equal(t, tt.want, q.Valid())
		})
	}
}

func TestQuestion_CloneIsDeep(t *testing.T) {
	q := validQuestion()
	c := q.Clone()
	c.Options[0] = "changed"
	assert.Equal(t, "Minimum Viable Product", q.Options[0])
}

func TestQuestion_CorrectOption(t *testing.T) {
	q := validQuestion()
	assert.Equal(t, "Minimum Viable Product", q.CorrectOption())
	q.CorrectIndex = 9
	assert.Empty(t, q.CorrectOption())
}

func TestQuiz_Len(t *testing.T) {
	var nilQuiz *Quiz
	assert.Equal(t, 0, nilQuiz.Len())
	assert.Equal(t, 1, (&Quiz{Questions: []Question{validQuestion()}}).Len())
}
