package ai

import (
	_ "embed"
	"strings"
)

//go:embed prompt.md
var promptTemplate string

// SystemInstruction is sent as the system role where the provider supports one.
const SystemInstruction = "You are a helpful and accurate resume analysis assistant. Answer with JSON only."

// BuildPrompt renders the instruction sent to the remote service.
func BuildPrompt(req *Request) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job description:\n{{JOB_DESCRIPTION}}\n\nResume:\n{{RESUME}}\n\nQualifications:\n{{QUALIFICATIONS}}\n\nJSON Response:"
	}

	lines := make([]string, 0, len(req.Qualifications))
	for _, q := range req.Qualifications {
		lines = append(lines, "- "+q)
	}

	return strings.NewReplacer(
		"{{JOB_DESCRIPTION}}", req.Target,
		"{{RESUME}}", req.Candidate,
		"{{QUALIFICATIONS}}", strings.Join(lines, "\n"),
	).Replace(template)
}
