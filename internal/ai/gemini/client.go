package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/megharajeev28/resume-matcher/internal/ai"
	"github.com/megharajeev28/resume-matcher/internal/utils"
)

const (
	defaultModel = "gemini-2.5-flash"
	provider     = "gemini"
	baseBackoff  = time.Second
)

// wait is swapped in tests to skip backoff delays.
var wait = utils.WaitFor

type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client to request schema-constrained JSON.
type Generator struct {
	models      contentModels
	model       string
	maxRetries  int
	temperature float32
	logger      *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
// maxRetries is the total number of attempts per request.
func NewGenerator(ctx context.Context, apiKey, model string, maxRetries int, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ai.ErrCredentialMissing)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		models:      client.Models,
		model:       model,
		maxRetries:  maxRetries,
		temperature: 0.2,
		logger:      logger,
	}, nil
}

// GenerateJSON sends prompt with the system instruction and a response schema,
// retrying transient failures with exponential backoff.
func (g *Generator) GenerateJSON(ctx context.Context, systemInstruction, prompt string, schema *genai.Schema) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	temperature := g.temperature
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
	if systemInstruction = strings.TrimSpace(systemInstruction); systemInstruction != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}}
	}

	backoff := ai.Backoff{
		Attempts: g.maxRetries,
		Base:     baseBackoff,
		Wait:     wait,
		Logger:   g.logger,
	}

	var resp *genai.GenerateContentResponse
	err := backoff.Do(ctx, retryable, func(ctx context.Context) error {
		var err error
		resp, err = g.models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
		return err
	})
	if err != nil {
		return "", ai.NewTransportError(provider, err)
	}

	return responseText(resp)
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ai.NewMalformedResponseError("gemini api returned nil response", nil)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", ai.NewMalformedResponseError("No candidates found in API response", nil)
	}

	return output, nil
}

// retryable reports whether err is worth another attempt: server-side and
// transport errors are, client errors (4xx) are not.
func retryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusInternalServerError
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code >= http.StatusInternalServerError
	}

	return true
}
