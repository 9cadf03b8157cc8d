package skills

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCatalog is returned when a catalog would hold no skills.
var ErrEmptyCatalog = errors.New("skill catalog must not be empty")

// Catalog is an ordered sequence of distinct canonical skill labels.
type Catalog struct {
	labels []string
}

var defaultLabels = []string{"Python", "SQL", "machine learning", "data analysis", "Docker"}

// DefaultCatalog returns the built-in reference catalog.
func DefaultCatalog() Catalog {
	return Catalog{labels: append([]string(nil), defaultLabels...)}
}

// NewCatalog validates labels and keeps their order. Labels are trimmed; blank
// labels and case-insensitive duplicates are rejected.
func NewCatalog(labels []string) (Catalog, error) {
	if len(labels) == 0 {
		return Catalog{}, ErrEmptyCatalog
	}

	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for i, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			return Catalog{}, fmt.Errorf("skill #%d is blank", i+1)
		}

		key := strings.ToLower(label)
		if _, ok := seen[key]; ok {
			return Catalog{}, fmt.Errorf("skill %q is listed more than once", label)
		}
		seen[key] = struct{}{}
		out = append(out, label)
	}

	return Catalog{labels: out}, nil
}

// Labels returns a copy of the catalog in order.
func (c Catalog) Labels() []string {
	return append([]string(nil), c.labels...)
}

func (c Catalog) Len() int { return len(c.labels) }
