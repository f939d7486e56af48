package service

import (
	"context"
	"fmt"
	"net/http"

	"franklin/internal/domain"
	"franklin/internal/logger"
	"franklin/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxGenerationAttempts = 2

// generationPhase labels the pipeline step a request is in.
type generationPhase string

const (
	phaseAdmitted         generationPhase = "ADMITTED"
	phaseInputValidated   generationPhase = "INPUT_VALIDATED"
	phasePrompted         generationPhase = "PROMPTED"
	phaseAwaitingUpstream generationPhase = "AWAITING_UPSTREAM"
	phaseValidating       generationPhase = "VALIDATING"
	phaseRepairing        generationPhase = "REPAIRING"
	phaseShuffling        generationPhase = "SHUFFLING"
	phaseDone             generationPhase = "DONE"
	phaseFailed           generationPhase = "FAILED"
)

// QuizService turns study material into a validated, shuffled quiz.
type QuizService interface {
	GenerateQuiz(ctx context.Context, in domain.GenerationInput) (*domain.Quiz, error)
}

type quizService struct {
	generator   domain.ContentGenerator
	files       domain.FileGateway
	prompts     *PromptBuilder
	validator   *ResponseValidator
	shuffler    *Shuffler
	verifyFiles bool
}

// NewQuizService wires the pipeline. generator may be nil when no provider
// credential is configured; files may be nil to skip file verification.
func NewQuizService(
	generator domain.ContentGenerator,
	files domain.FileGateway,
	prompts *PromptBuilder,
	shuffler *Shuffler,
	verifyFiles bool,
) QuizService {
	return &quizService{
		generator:   generator,
		files:       files,
		prompts:     prompts,
		validator:   NewResponseValidator(),
		shuffler:    shuffler,
		verifyFiles: verifyFiles && files != nil,
	}
}

type phaseTracker struct {
	log   *zap.Logger
	phase generationPhase
}

func (t *phaseTracker) enter(p generationPhase, fields ...zap.Field) {
	t.phase = p
	t.log.Debug("quiz generation phase", append([]zap.Field{zap.String("phase", string(p))}, fields...)...)
}

func (t *phaseTracker) fail(err error) error {
	t.log.Warn("quiz generation failed",
		zap.String("phase", string(t.phase)),
		zap.String("code", string(domain.CodeOf(err))),
		zap.Error(err))
	t.phase = phaseFailed
	return err
}

func (s *quizService) GenerateQuiz(ctx context.Context, in domain.GenerationInput) (*domain.Quiz, error) {
	tracker := &phaseTracker{log: logger.FromContext(ctx)}
	tracker.enter(phaseAdmitted)

	if s.generator == nil {
		return nil, tracker.fail(domain.NewConfigError("GEMINI_API_KEY"))
	}
	if in == nil {
		return nil, tracker.fail(domain.NewInvalidInputError("no generation input"))
	}

	in, err := s.resolveFiles(ctx, in)
	if err != nil {
		return nil, tracker.fail(err)
	}
	tracker.enter(phaseInputValidated, zap.Int("files", len(domain.InputFiles(in))))

	prompt, err := s.prompts.Build(in)
	if err != nil {
		return nil, tracker.fail(err)
	}
	tracker.enter(phasePrompted, zap.Int("expected_questions", prompt.ExpectedCount))

	quiz, err := s.generateValidated(ctx, tracker, prompt)
	if err != nil {
		return nil, tracker.fail(err)
	}

	tracker.enter(phaseShuffling)
	shuffled := s.shuffler.Shuffle(quiz.Questions)
	for i, q := range shuffled {
		if !q.Valid() || q.CorrectOption() != quiz.Questions[i].CorrectOption() {
			return nil, tracker.fail(domain.NewInternalError(fmt.Sprintf("question %d changed its answer while shuffling", i+1), nil))
		}
	}
	quiz.Questions = shuffled

	tracker.enter(phaseDone, zap.Int("questions", quiz.Len()))
	return quiz, nil
}

// attemptOutcome is the result of one generate-and-validate round.
type attemptOutcome struct {
	quiz    *domain.Quiz
	raw     string
	parsed  bool
	failure *domain.DomainError
}

// generateValidated runs the initial attempt and, when its output holds no
// JSON at all, exactly one repair attempt. Output that parses but breaks the
// schema fails immediately.
func (s *quizService) generateValidated(ctx context.Context, tracker *phaseTracker, prompt *Prompt) (*domain.Quiz, error) {
	parts := prompt.Parts
	var outcome attemptOutcome

	for attempt := 1; attempt <= maxGenerationAttempts; attempt++ {
		if attempt > 1 {
			tracker.enter(phaseRepairing, zap.String("problem", outcome.failure.Message))
			repair, err := s.prompts.BuildRepair(outcome.raw, prompt.ExpectedCount, outcome.failure.Message)
			if err != nil {
				return nil, err
			}
			parts = repair
		}

		tracker.enter(phaseAwaitingUpstream, zap.Int("attempt", attempt))
		raw, err := s.generator.Generate(ctx, parts)
		if err != nil {
			return nil, generationError(err)
		}

		tracker.enter(phaseValidating, zap.Int("attempt", attempt))
		outcome = s.check(raw, prompt.ExpectedCount)
		if outcome.failure == nil {
			return outcome.quiz, nil
		}
		if outcome.parsed {
			break
		}
	}
	return nil, outcome.failure
}

func (s *quizService) check(raw string, expected int) attemptOutcome {
	quiz, parsed, failure := s.validator.ParseAndValidate(raw, expected)
	return attemptOutcome{quiz: quiz, raw: raw, parsed: parsed, failure: failure}
}

// generationError keeps domain errors as they are and reports anything else
// as an upstream failure carrying the provider's message.
func generationError(err error) error {
	if de, ok := domain.AsDomainError(err); ok {
		return de
	}
	return domain.NewError(domain.CodeUpstreamUnavailable, util.Truncate(err.Error(), domain.ProviderDetailLimit), err)
}

// resolveFiles confirms every referenced file is usable and fills in MIME
// types the client left out. Lookups run concurrently.
func (s *quizService) resolveFiles(ctx context.Context, in domain.GenerationInput) (domain.GenerationInput, error) {
	refs := domain.InputFiles(in)
	if len(refs) == 0 || !s.verifyFiles {
		return in, nil
	}

	resolved := make([]domain.FileRef, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		g.Go(func() error {
			handle, err := s.files.Status(gctx, ref.ID)
			if err != nil {
				return fileLookupError(ref.ID, err)
			}
			if handle.State == domain.StateFailed {
				return domain.NewInvalidInputError(fmt.Sprintf("file %s failed processing", ref.ID))
			}
			mimeType := ref.MimeType
			if mimeType == "" {
				mimeType = handle.MimeType
			}
			resolved[i] = domain.FileRef{ID: ref.ID, MimeType: mimeType}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return domain.WithFiles(in, resolved), nil
}

func fileLookupError(fileID string, err error) error {
	de, ok := domain.AsDomainError(err)
	if !ok {
		return domain.NewUpstreamUnavailableError(err)
	}
	if status, _ := de.Context["status"].(int); status == http.StatusNotFound {
		return domain.NewInvalidInputError(fmt.Sprintf("file %s not found", fileID))
	}
	return de
}
