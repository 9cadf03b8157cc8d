package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const scoresField = "qualificationScores"

// ParseScores decodes the qualificationScores envelope from raw model output.
// Markdown code fences and surrounding chatter are tolerated; a missing
// envelope, an empty list or an item without a numeric score are not.
func ParseScores(raw string) ([]QualificationScore, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, NewMalformedResponseError("empty response body", nil)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, NewMalformedResponseError("failed to parse JSON response", err)
	}

	field, ok := data[scoresField]
	if !ok {
		return nil, NewMalformedResponseError(fmt.Sprintf("response has no %q field", scoresField), nil)
	}

	items, ok := field.([]any)
	if !ok {
		return nil, NewMalformedResponseError(fmt.Sprintf("%q is not a list", scoresField), nil)
	}

	if len(items) == 0 {
		return nil, NewMalformedResponseError("LLM returned no qualification scores", nil)
	}

	scores := make([]QualificationScore, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, NewMalformedResponseError(fmt.Sprintf("score #%d is not an object", i+1), nil)
		}

		score := coerceFloat(obj["score"])
		if math.IsNaN(score) {
			return nil, NewMalformedResponseError(fmt.Sprintf("score #%d has no numeric score", i+1), nil)
		}

		scores = append(scores, QualificationScore{
			Qualification: coerceString(obj["qualification"]),
			Score:         clamp(score, 0, 100),
			Reasoning:     coerceString(obj["reasoning"]),
		})
	}

	return scores, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.TrimSpace(strings.Trim(raw, "`"))

	// Models sometimes wrap the object in prose despite the instruction.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		raw = raw[start : end+1]
	}

	return raw
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "%"))
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
