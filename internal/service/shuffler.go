package service

import (
	"math/rand/v2"
	"sync"

	"franklin/internal/domain"
)

// Shuffler moves each question's correct answer to a uniformly random slot.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewShuffler returns a shuffler drawing from rng. A nil rng gets a randomly
// seeded PCG source.
func NewShuffler(rng *rand.Rand) *Shuffler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Shuffler{rng: rng}
}

// Shuffle returns a new slice; questions is left untouched. For each
// question a target slot is drawn; when it differs from the correct index the
// two options swap places.
func (s *Shuffler) Shuffle(questions []domain.Question) []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		q = q.Clone()
		target := s.rng.IntN(domain.OptionCount)
		if target != q.CorrectIndex && q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options) && target < len(q.Options) {
			q.Options[target], q.Options[q.CorrectIndex] = q.Options[q.CorrectIndex], q.Options[target]
			q.CorrectIndex = target
		}
		out[i] = q
	}
	return out
}
