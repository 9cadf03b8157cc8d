package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/megharajeev28/resume-matcher/internal/ai"
	"github.com/megharajeev28/resume-matcher/internal/scoring"
	"github.com/megharajeev28/resume-matcher/internal/semantic"
)

func TestWriteVerdictText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		verdict scoring.Verdict
		want    []string
	}{
		{
			name: "short circuit",
			verdict: scoring.Verdict{
				Score:         100,
				Band:          scoring.High,
				MissingSkills: []string{},
				Breakdown:     &scoring.Breakdown{HardSubScore: 50, SemanticSkipped: true},
			},
			want: []string{
				"Overall Relevance: High",
				"Final Score: 100.00%",
				"All Key Skills Found!",
				"Semantic Match: skipped",
			},
		},
		{
			name: "combined",
			verdict: scoring.Verdict{
				Score:         51,
				Band:          scoring.Medium,
				MissingSkills: []string{"machine learning", "data analysis"},
				Breakdown: &scoring.Breakdown{
					HardSubScore:     30,
					SemanticSubScore: 100,
					Semantic: &semantic.Judgement{
						SubScore:  100,
						Reasoning: "Based on scores for 1 individual qualifications.",
						Scores:    []ai.QualificationScore{{Qualification: "Python", Score: 100, Reasoning: "daily use"}},
					},
				},
			},
			want: []string{
				"Overall Relevance: Medium",
				"Final Score: 51.00%",
				"Missing Key Skills: machine learning, data analysis",
				"Hard Match: 30.00/50",
				"Semantic Match: 100.00/100 (Based on scores for 1 individual qualifications.)",
				"  - Python: 100 (daily use)",
			},
		},
		{
			name:    "unreadable",
			verdict: scoring.Unreadable(),
			want: []string{
				"Overall Relevance: Low",
				"Final Score: 0.00%",
				"Missing Key Skills: Error: Could not read files.",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := writeVerdict(&buf, tt.verdict, OutputText); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			out := buf.String()
			for _, line := range tt.want {
				if !strings.Contains(out, line+"\n") {
					t.Errorf("expected output to contain %q, got:\n%s", line, out)
				}
			}
		})
	}
}

func TestWriteVerdictJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	verdict := scoring.Verdict{Score: 12, Band: scoring.Low, MissingSkills: []string{"Docker"}}
	if err := writeVerdict(&buf, verdict, OutputJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if got["score"] != float64(12) || got["verdict"] != "Low" {
		t.Fatalf("unexpected payload %v", got)
	}
	if _, ok := got["breakdown"]; ok {
		t.Fatalf("empty breakdown must be omitted")
	}
}

func TestValidateDocumentPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.pdf")
	if err := os.WriteFile(resume, []byte("%PDF-"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "folder.txt"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "existing pdf", input: " " + resume + " ", wantErr: false},
		{name: "empty", input: "  ", wantErr: true},
		{name: "unsupported", input: filepath.Join(dir, "resume.odt"), wantErr: true},
		{name: "missing", input: filepath.Join(dir, "missing.txt"), wantErr: true},
		{name: "directory", input: filepath.Join(dir, "folder.txt"), wantErr: true},
	}

	for _, tt := range tests {
		if err := validateDocumentPath(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("%s: validateDocumentPath(%q) error = %v, wantErr %v", tt.name, tt.input, err, tt.wantErr)
		}
	}
}
