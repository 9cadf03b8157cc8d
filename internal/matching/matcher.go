// Package matching implements the deterministic hard-match stage: literal,
// case-insensitive presence of catalog skills in candidate text.
package matching

import (
	"strings"

	"github.com/megharajeev28/resume-matcher/internal/skills"
)

// MaxSubScore caps the hard-match contribution; the other half of the scale
// belongs to the semantic stage.
const MaxSubScore = 50

// Result is the outcome of matching one candidate text against a catalog.
// Found and Missing partition the catalog and keep catalog order.
type Result struct {
	SubScore float64  `json:"sub_score"`
	Found    []string `json:"found"`
	Missing  []string `json:"missing"`
}

// Complete reports whether every catalog skill was found.
func (r Result) Complete() bool {
	return len(r.Missing) == 0
}

// Match checks each catalog skill for substring containment in candidate,
// ignoring case. No stemming, synonyms or partial credit.
func Match(candidate string, catalog skills.Catalog) Result {
	lower := strings.ToLower(candidate)
	labels := catalog.Labels()

	res := Result{
		Found:   make([]string, 0, len(labels)),
		Missing: make([]string, 0, len(labels)),
	}
	for _, label := range labels {
		if strings.Contains(lower, strings.ToLower(label)) {
			res.Found = append(res.Found, label)
			continue
		}
		res.Missing = append(res.Missing, label)
	}

	if len(labels) > 0 {
		res.SubScore = float64(MaxSubScore*len(res.Found)) / float64(len(labels))
	}

	return res
}
