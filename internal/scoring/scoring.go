// Package scoring combines the exact-match and semantic sub-scores into the
// final verdict.
package scoring

import (
	"math"

	"github.com/megharajeev28/resume-matcher/internal/matching"
	"github.com/megharajeev28/resume-matcher/internal/semantic"
)

// Band is the categorical verdict derived from the final score.
type Band string

const (
	High   Band = "High"
	Medium Band = "Medium"
	Low    Band = "Low"
)

const (
	HardWeight     = 0.7
	SemanticWeight = 0.3

	HighThreshold   = 80
	MediumThreshold = 50

	// ReadFailure is the single missing-skills entry reported when a document yields no text.
	ReadFailure = "Error: Could not read files."
)

// BandFor maps a final score onto its band.
func BandFor(score int) Band {
	switch {
	case score >= HighThreshold:
		return High
	case score >= MediumThreshold:
		return Medium
	default:
		return Low
	}
}

// Breakdown explains how a verdict was reached.
type Breakdown struct {
	HardSubScore     float64             `json:"hard_sub_score"`
	SemanticSubScore float64             `json:"semantic_sub_score"`
	SemanticSkipped  bool                `json:"semantic_skipped"`
	Found            []string            `json:"found_skills"`
	Semantic         *semantic.Judgement `json:"semantic,omitempty"`
}

// Verdict is the outcome of one relevance check.
type Verdict struct {
	Score         int        `json:"score"`
	Band          Band       `json:"verdict"`
	MissingSkills []string   `json:"missing_skills"`
	Breakdown     *Breakdown `json:"breakdown,omitempty"`
}

// Combine weights both sub-scores and truncates the result to a whole number.
func Combine(hard matching.Result, judgement semantic.Judgement) Verdict {
	score := int(math.Trunc(hard.SubScore*HardWeight + judgement.SubScore*SemanticWeight))
	score = max(0, min(100, score))

	return Verdict{
		Score:         score,
		Band:          BandFor(score),
		MissingSkills: nonNil(hard.Missing),
		Breakdown: &Breakdown{
			HardSubScore:     hard.SubScore,
			SemanticSubScore: judgement.SubScore,
			Found:            nonNil(hard.Found),
			Semantic:         &judgement,
		},
	}
}

// ShortCircuit is the verdict for a candidate that has every catalog skill.
func ShortCircuit(hard matching.Result) Verdict {
	return Verdict{
		Score:         100,
		Band:          High,
		MissingSkills: []string{},
		Breakdown: &Breakdown{
			HardSubScore:    hard.SubScore,
			SemanticSkipped: true,
			Found:           nonNil(hard.Found),
		},
	}
}

// Unreadable is the verdict when either document produced no text.
func Unreadable() Verdict {
	return Verdict{
		Score:         0,
		Band:          Low,
		MissingSkills: []string{ReadFailure},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
