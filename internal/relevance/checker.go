// Package relevance runs the full scoring pipeline for one résumé and one job
// description.
package relevance

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/megharajeev28/resume-matcher/internal/logger"
	"github.com/megharajeev28/resume-matcher/internal/matching"
	"github.com/megharajeev28/resume-matcher/internal/scoring"
	"github.com/megharajeev28/resume-matcher/internal/semantic"
	"github.com/megharajeev28/resume-matcher/internal/skills"
)

// SemanticJudge scores a candidate against the qualifications of a target.
// Implementations must not fail; problems are reported through the judgement.
type SemanticJudge interface {
	Evaluate(ctx context.Context, candidate, target string, qualifications []string) semantic.Judgement
}

// Checker is safe for concurrent use; it holds no per-check state.
type Checker struct {
	catalog skills.Catalog
	judge   SemanticJudge
	logger  *zap.Logger
	newID   func() string
}

// NewChecker wires the pipeline. An empty catalog falls back to the default
// one and a nil judge disables the semantic stage.
func NewChecker(catalog skills.Catalog, judge SemanticJudge, log *zap.Logger) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	if catalog.Len() == 0 {
		catalog = skills.DefaultCatalog()
	}
	if judge == nil {
		judge = semantic.Unavailable(nil, log)
	}

	return &Checker{
		catalog: catalog,
		judge:   judge,
		logger:  log,
		newID:   uuid.NewString,
	}
}

// Check scores resume against job. It always returns a verdict.
func (c *Checker) Check(ctx context.Context, resume, job string) scoring.Verdict {
	log := logger.WithCheckID(c.logger, c.newID())

	if strings.TrimSpace(resume) == "" || strings.TrimSpace(job) == "" {
		log.Warn("document text is empty",
			zap.Bool("resume_empty", strings.TrimSpace(resume) == ""),
			zap.Bool("job_description_empty", strings.TrimSpace(job) == ""),
		)
		return scoring.Unreadable()
	}

	hard := matching.Match(resume, c.catalog)
	log.Debug("hard match completed",
		zap.Float64("hard_sub_score", hard.SubScore),
		zap.Strings("found", hard.Found),
		zap.Strings("missing", hard.Missing),
	)

	if hard.Complete() {
		verdict := scoring.ShortCircuit(hard)
		log.Info("all key skills found, semantic stage skipped", zap.Int("score", verdict.Score))
		return verdict
	}

	qualifications := skills.ExtractQualifications(job)
	judgement := c.judge.Evaluate(ctx, resume, job, qualifications)
	if judgement.Degraded() {
		log.Warn("semantic stage degraded", zap.String("reason", judgement.Reasoning))
	}

	verdict := scoring.Combine(hard, judgement)
	log.Info("relevance check completed",
		zap.Int("score", verdict.Score),
		zap.String("verdict", string(verdict.Band)),
		zap.Float64("hard_sub_score", hard.SubScore),
		zap.Float64("semantic_sub_score", judgement.SubScore),
		zap.Int("qualifications", len(qualifications)),
	)

	return verdict
}

// Catalog returns the skills the checker matches against.
func (c *Checker) Catalog() skills.Catalog {
	return c.catalog
}
