package skills

import "strings"

// QualificationsMarker opens the structured requirements section of a job description.
const QualificationsMarker = "Qualifications:"

// ExtractQualifications returns the non-blank, trimmed lines that follow the first
// QualificationsMarker in text. The marker is matched case-sensitively; without it
// the result is empty.
func ExtractQualifications(text string) []string {
	idx := strings.Index(text, QualificationsMarker)
	if idx == -1 {
		return []string{}
	}

	section := text[idx+len(QualificationsMarker):]
	section = strings.ReplaceAll(section, "\r\n", "\n")

	out := []string{}
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
