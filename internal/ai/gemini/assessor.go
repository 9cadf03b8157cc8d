package gemini

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/megharajeev28/resume-matcher/internal/ai"
	"github.com/megharajeev28/resume-matcher/internal/utils"
)

const defaultMaxLogLength = 200

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, systemInstruction, prompt string, schema *genai.Schema) (string, error)
	Model() string
}

// Assessor scores qualifications through Gemini structured output.
type Assessor struct {
	generator jsonGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewAssessor(generator jsonGenerator, maxLogLength int, logger *zap.Logger) *Assessor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Assessor{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (a *Assessor) Assess(ctx context.Context, req *ai.Request) (*ai.Assessment, error) {
	if req == nil || len(req.Qualifications) == 0 {
		return nil, ai.ErrNoQualifications
	}

	prompt := ai.BuildPrompt(req)

	a.logger.Debug("gemini generate content request",
		zap.Int("qualifications", len(req.Qualifications)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateJSON(ctx, ai.SystemInstruction, prompt, ScoresSchema())
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini generate content response",
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

func (a *Assessor) Model() string { return a.generator.Model() }

// ScoresSchema constrains the model output to the qualificationScores envelope.
func ScoresSchema() *genai.Schema {
	minScore, maxScore := 0.0, 100.0

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"qualificationScores": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"qualification": {Type: genai.TypeString},
						"score": {
							Type:        genai.TypeInteger,
							Description: "The relevance score from 0-100.",
							Minimum:     &minScore,
							Maximum:     &maxScore,
						},
						"reasoning": {
							Type:        genai.TypeString,
							Description: "A brief explanation for the score.",
						},
					},
					Required:         []string{"qualification", "score", "reasoning"},
					PropertyOrdering: []string{"qualification", "score", "reasoning"},
				},
			},
		},
		Required: []string{"qualificationScores"},
	}
}
