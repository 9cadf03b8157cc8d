// Package openai scores qualifications through the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/openai/openai-go/v3/shared/constant"
	"go.uber.org/zap"

	"github.com/megharajeev28/resume-matcher/internal/ai"
	"github.com/megharajeev28/resume-matcher/internal/utils"
)

const (
	defaultModel        = "gpt-4o-mini"
	defaultMaxLogLength = 200
	provider            = "openai"
	baseBackoff         = time.Second
)

var wait = utils.WaitFor

// Config holds the connection settings for the OpenAI assessor.
type Config struct {
	APIKey       string
	Model        string
	BaseURL      string
	MaxRetries   int
	MaxLogLength int
	HTTPClient   *http.Client
}

// Assessor implements ai.Assessor on top of chat completions in JSON mode.
type Assessor struct {
	client     openai.Client
	model      string
	maxRetries int
	maxLogLen  int
	logger     *zap.Logger
}

// NewAssessor builds an assessor. The SDK's own retries are disabled so that
// the shared backoff policy (no retries on 4xx) applies.
func NewAssessor(cfg Config, logger *zap.Logger) (*Assessor, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w", ai.ErrCredentialMissing)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Assessor{
		client:     openai.NewClient(opts...),
		model:      model,
		maxRetries: cfg.MaxRetries,
		maxLogLen:  maxLogLen,
		logger:     logger,
	}, nil
}

func (a *Assessor) Assess(ctx context.Context, req *ai.Request) (*ai.Assessment, error) {
	if req == nil || len(req.Qualifications) == 0 {
		return nil, ai.ErrNoQualifications
	}

	prompt := ai.BuildPrompt(req)

	a.logger.Debug("openai chat completion request",
		zap.Int("qualifications", len(req.Qualifications)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(ai.SystemInstruction),
			openai.UserMessage(prompt),
		},
		Model: shared.ChatModel(a.model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: constant.JSONObject("json_object"),
			},
		},
		Temperature: openai.Float(0.2),
	}

	backoff := ai.Backoff{
		Attempts: a.maxRetries,
		Base:     baseBackoff,
		Wait:     wait,
		Logger:   a.logger,
	}

	var completion *openai.ChatCompletion
	err := backoff.Do(ctx, retryable, func(ctx context.Context) error {
		var err error
		completion, err = a.client.Chat.Completions.New(ctx, params)
		return err
	})
	if err != nil {
		return nil, ai.NewTransportError(provider, err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return nil, ai.NewMalformedResponseError("No candidates found in API response", nil)
	}

	raw := completion.Choices[0].Message.Content

	a.logger.Debug("openai chat completion response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	scores, err := ai.ParseScores(raw)
	if err != nil {
		return nil, err
	}

	return &ai.Assessment{Scores: scores, Raw: raw}, nil
}

func (a *Assessor) Provider() string { return provider }

func (a *Assessor) Model() string { return a.model }

func retryable(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}
