package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"franklin/internal/domain"
	"franklin/internal/util"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeneratorConfig configures the generate-content client.
type GeneratorConfig struct {
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
	JSONMode bool
}

// Generator implements domain.ContentGenerator with the genai client.
type Generator struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	apiKey  string
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGenerator creates a Generator. It does not contact the provider.
func NewGenerator(ctx context.Context, cfg GeneratorConfig, logger *zap.Logger) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("Gemini API key cannot be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("Gemini model name cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(0.4)
	if cfg.JSONMode {
		model.ResponseMIMEType = "application/json"
	}

	logger.Info("Initializing Gemini generator", zap.String("model", cfg.Model), zap.Bool("json_mode", cfg.JSONMode))
	return &Generator{
		client:  client,
		model:   model,
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

// Close closes the underlying client.
func (g *Generator) Close() error {
	return g.client.Close()
}

// Generate implements domain.ContentGenerator.
func (g *Generator) Generate(ctx context.Context, parts domain.PromptParts) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.model.GenerateContent(ctx, buildParts(g.baseURL, parts)...)
	if err != nil {
		return "", providerError(err, g.apiKey)
	}

	text := responseText(resp)
	g.logger.Debug("Gemini response received",
		zap.Int("attachments", len(parts.Attachments)),
		zap.Int("response_length", len(text)))
	return text, nil
}

// clientOptions points the client at the same origin the file URIs use, so
// attachments and generate-content calls always reach one provider.
func clientOptions(cfg GeneratorConfig) []option.ClientOption {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	return opts
}

// providerError reports a failed generate-content call with the provider's
// message, truncated and with the API key removed. Transport errors can quote
// the request URL, which carries the key.
func providerError(err error, apiKey string) *domain.DomainError {
	detail := "generate content: " + err.Error()
	if apiKey != "" {
		detail = strings.ReplaceAll(detail, apiKey, "REDACTED")
	}
	return domain.NewError(domain.CodeUpstreamUnavailable, util.Truncate(detail, domain.ProviderDetailLimit), errors.New(detail))
}

// buildParts renders the instruction as a text part and every attachment as a
// typed file-data part referencing the provider resource.
func buildParts(baseURL string, parts domain.PromptParts) []genai.Part {
	out := make([]genai.Part, 0, len(parts.Attachments)+1)
	out = append(out, genai.Text(parts.Text))
	for _, f := range parts.Attachments {
		out = append(out, genai.FileData{
			MIMEType: f.MimeType,
			URI:      ResourceURI(baseURL, f.ID),
		})
	}
	return out
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

var _ domain.ContentGenerator = (*Generator)(nil)
