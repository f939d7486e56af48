// Command quizgen generates a quiz from study text passed as arguments and,
// optionally, a local file, and prints the questions as JSON.
//
//	quizgen "Product discovery starts with the problem, not the solution..."
//	quizgen -file lecture.pdf "focus on chapter 2"
//
// Exit codes: 1 configuration or input error, 2 the model output never
// matched the quiz schema, 3 upstream failure.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"franklin/internal/adapter/gemini"
	"franklin/internal/config"
	"franklin/internal/domain"
	"franklin/internal/dto"
	"franklin/internal/logger"
	"franklin/internal/service"

	"go.uber.org/zap"
)

const (
	exitOK = iota
	exitInput
	exitSchema
	exitUpstream
)

type options struct {
	file     string
	mimeType string
	keep     bool
	verbose  bool
	text     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("quizgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := &options{}
	fs.StringVar(&opts.file, "file", "", "path of a study file to ingest before generating")
	fs.StringVar(&opts.mimeType, "mime", "", "MIME type of -file (detected from the extension when empty)")
	fs.BoolVar(&opts.keep, "keep", false, "keep the ingested file at the provider after generating")
	fs.BoolVar(&opts.verbose, "v", false, "write logs to stdout")
	fs.Usage = func() {
		fmt.Fprintln(stderr, `usage: quizgen [-file path] [-mime type] [-keep] [-v] "study text"`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.text = strings.TrimSpace(strings.Join(fs.Args(), " "))
	if opts.text == "" && opts.file == "" {
		fs.Usage()
		return nil, errors.New("pass study text as arguments or a file with -file")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return exitInput
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return exitInput
	}
	if opts.verbose {
		if err := logger.Initialize(cfg.Logger); err != nil {
			fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
			return exitInput
		}
		defer func() { _ = logger.Sync() }()
	}
	if !cfg.HasAPIKey() {
		fmt.Fprintln(stderr, "GEMINI_API_KEY is not set; add it to .env.local or the environment")
		return exitInput
	}

	files, err := gemini.NewFileClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL,
		&http.Client{Timeout: cfg.Gemini.Timeout}, logger.Get())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitInput
	}
	generator, err := gemini.NewGenerator(ctx, gemini.GeneratorConfig{
		APIKey:   cfg.Gemini.APIKey,
		Model:    cfg.Gemini.Model,
		BaseURL:  cfg.Gemini.BaseURL,
		Timeout:  cfg.Gemini.Timeout,
		JSONMode: cfg.Gemini.JSONMode,
	}, logger.Get())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitInput
	}
	defer generator.Close()

	ingestion := service.NewIngestionService(files, cfg.Upload)

	var refs []domain.FileRef
	if opts.file != "" {
		handle, err := ingestFile(ctx, ingestion, opts)
		if err != nil {
			return report(stderr, err)
		}
		if !opts.keep {
			defer func() {
				if err := ingestion.Delete(context.Background(), handle.ID); err != nil {
					logger.Get().Warn("failed to delete ingested file", zap.String("file_id", handle.ID), zap.Error(err))
				}
			}()
		}
		switch handle.State {
		case domain.StateFailed:
			return report(stderr, domain.NewInvalidInputError(fmt.Sprintf("provider failed to process %s", opts.file)))
		case domain.StateActive:
		default:
			fmt.Fprintf(stderr, "warning: %s is still %s, generation may fail\n", handle.ID, handle.State)
		}
		refs = append(refs, handle.Ref())
	}

	input, err := domain.NewGenerationInput(opts.text, refs, cfg.Generation.MinTextLength)
	if err != nil {
		return report(stderr, err)
	}

	quizService := service.NewQuizService(
		generator,
		files,
		service.NewPromptBuilder(cfg.Generation.MinTextLength, cfg.Generation.FileQuestionCount),
		service.NewShuffler(nil),
		false,
	)
	quiz, err := quizService.GenerateQuiz(ctx, input)
	if err != nil {
		return report(stderr, err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dto.NewGenerateQuizResponse(quiz).Questions); err != nil {
		fmt.Fprintf(stderr, "failed to write quiz: %v\n", err)
		return exitInput
	}
	return exitOK
}

func ingestFile(ctx context.Context, ingestion service.IngestionService, opts *options) (*domain.FileHandle, error) {
	f, err := os.Open(opts.file)
	if err != nil {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("cannot open %s: %v", opts.file, err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("cannot stat %s: %v", opts.file, err))
	}

	return ingestion.Ingest(ctx, service.IngestRequest{
		FileName: info.Name(),
		MimeType: opts.mimeType,
		Size:     info.Size(),
		Body:     f,
	})
}

func report(stderr io.Writer, err error) int {
	code := exitCode(err)
	if code == exitSchema {
		fmt.Fprintf(stderr, "invalid quiz data: %v\n", err)
	} else {
		fmt.Fprintf(stderr, "quiz generation failed: %v\n", err)
	}
	return code
}

// exitCode maps an error onto the process exit status.
func exitCode(err error) int {
	switch domain.CodeOf(err) {
	case domain.CodeConfig, domain.CodeInvalidInput, domain.CodeInsufficientInput,
		domain.CodeFileTooLarge, domain.CodeMissingFile, domain.CodeValidation:
		return exitInput
	case domain.CodeSchema:
		return exitSchema
	default:
		return exitUpstream
	}
}
