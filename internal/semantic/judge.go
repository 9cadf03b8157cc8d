// Package semantic reduces a remote assessor's per-qualification scores to a
// single 0–100 judgement and converts every failure into a zero score with a
// human-readable reason.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/megharajeev28/resume-matcher/internal/ai"
	"github.com/megharajeev28/resume-matcher/internal/logger"
	"github.com/megharajeev28/resume-matcher/internal/utils"
)

const (
	ReasonNoCredential     = "API key not found."
	ReasonNoQualifications = "Could not extract qualifications from job description."
	ReasonDisabled         = "Semantic matching is disabled."
	reasonScored           = "Based on scores for %d individual qualifications."

	DefaultTimeout  = 30 * time.Second
	DefaultMaxChars = 12000
)

// ErrDisabled marks a judge that was deliberately configured without a provider.
var ErrDisabled = errors.New("semantic matching is disabled")

// Judgement is the semantic stage's contribution before weighting.
type Judgement struct {
	SubScore  float64                 `json:"sub_score"`
	Reasoning string                  `json:"reasoning"`
	Scores    []ai.QualificationScore `json:"qualification_scores,omitempty"`
	// Err keeps the underlying failure for logging; it never reaches callers as an error.
	Err error `json:"-"`
}

// Degraded reports whether the judgement stands in for a failed or skipped assessment.
func (j Judgement) Degraded() bool {
	return j.Err != nil
}

// Config bounds a single remote assessment.
type Config struct {
	// Timeout caps one Evaluate call including retries; zero disables it.
	Timeout time.Duration
	// MaxChars truncates each document to this many runes before sending; zero disables it.
	MaxChars int
}

// Judge runs the semantic stage on top of an ai.Assessor.
type Judge struct {
	assessor    ai.Assessor
	unavailable Judgement
	timeout     time.Duration
	maxChars    int
	logger      *zap.Logger
}

// New returns a Judge backed by assessor. A nil assessor yields a disabled judge.
func New(assessor ai.Assessor, cfg Config, log *zap.Logger) *Judge {
	if log == nil {
		log = zap.NewNop()
	}
	if assessor == nil {
		return Unavailable(ErrDisabled, log)
	}

	return &Judge{
		assessor: assessor,
		timeout:  cfg.Timeout,
		maxChars: cfg.MaxChars,
		logger:   logger.WithCommonFields(log, assessor.Provider(), assessor.Model()),
	}
}

// Unavailable returns a Judge that always answers with a zero score and the
// reason derived from cause, e.g. a missing credential.
func Unavailable(cause error, log *zap.Logger) *Judge {
	if log == nil {
		log = zap.NewNop()
	}
	if cause == nil {
		cause = ErrDisabled
	}

	return &Judge{
		unavailable: degraded(cause, 0),
		logger:      log,
	}
}

// Evaluate judges candidate against the qualifications of target. It never
// fails: problems yield a zero sub-score and a reason.
func (j *Judge) Evaluate(ctx context.Context, candidate, target string, qualifications []string) (result Judgement) {
	if len(qualifications) == 0 {
		return degraded(ai.ErrNoQualifications, j.timeout)
	}

	if j.assessor == nil {
		return j.unavailable
	}

	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("semantic assessor panicked", zap.Any("panic", r))
			result = degraded(fmt.Errorf("assessor panic: %v", r), j.timeout)
		}
	}()

	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	candidate, candidateCut := utils.TruncateRunes(candidate, j.maxChars)
	target, targetCut := utils.TruncateRunes(target, j.maxChars)
	if candidateCut || targetCut {
		j.logger.Info("documents truncated before semantic assessment",
			zap.Int("max_chars", j.maxChars),
			zap.Bool("resume_truncated", candidateCut),
			zap.Bool("job_description_truncated", targetCut),
		)
	}

	assessment, err := j.assessor.Assess(ctx, &ai.Request{
		Candidate:      candidate,
		Target:         target,
		Qualifications: qualifications,
	})
	if err != nil {
		j.logger.Warn("semantic assessment failed", zap.Error(err))
		return degraded(err, j.timeout)
	}

	if assessment == nil || len(assessment.Scores) == 0 {
		return degraded(ai.NewMalformedResponseError("LLM returned no qualification scores", nil), j.timeout)
	}

	result = Judgement{
		SubScore:  Mean(assessment.Scores),
		Reasoning: fmt.Sprintf(reasonScored, len(assessment.Scores)),
		Scores:    assessment.Scores,
	}

	j.logger.Debug("semantic assessment completed",
		zap.Float64("sub_score", result.SubScore),
		zap.Int("scored_qualifications", len(assessment.Scores)),
	)

	return result
}

// Mean is the unweighted average of the scores, truncated to a whole number.
func Mean(scores []ai.QualificationScore) float64 {
	if len(scores) == 0 {
		return 0
	}

	var total float64
	for _, s := range scores {
		total += math.Max(0, math.Min(100, s.Score))
	}

	return math.Trunc(total / float64(len(scores)))
}

func degraded(err error, timeout time.Duration) Judgement {
	return Judgement{SubScore: 0, Reasoning: reason(err, timeout), Err: err}
}

func reason(err error, timeout time.Duration) string {
	switch {
	case errors.Is(err, ai.ErrCredentialMissing):
		return ReasonNoCredential
	case errors.Is(err, ai.ErrNoQualifications):
		return ReasonNoQualifications
	case errors.Is(err, context.DeadlineExceeded):
		if timeout > 0 {
			return fmt.Sprintf("API request timed out after %s.", timeout)
		}
		return "API request timed out."
	case errors.Is(err, ai.ErrMalformedResponse):
		return fmt.Sprintf("Failed to parse API response: %v", err)
	case errors.Is(err, ai.ErrTransport):
		return fmt.Sprintf("API request failed: %v", err)
	case errors.Is(err, ErrDisabled):
		return ReasonDisabled
	default:
		return fmt.Sprintf("Semantic analysis failed: %v", err)
	}
}
