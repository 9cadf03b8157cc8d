package semantic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/megharajeev28/resume-matcher/internal/ai"
)

type stubAssessor struct {
	assessment *ai.Assessment
	err        error
	panicWith  any
	calls      int
	last       *ai.Request
	deadline   bool
	block      bool
}

func (s *stubAssessor) Assess(ctx context.Context, req *ai.Request) (*ai.Assessment, error) {
	s.calls++
	s.last = req
	_, s.deadline = ctx.Deadline()
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	if s.block {
		<-ctx.Done()
		return nil, ai.NewTransportError("stub", ctx.Err())
	}
	return s.assessment, s.err
}

func (s *stubAssessor) Provider() string { return "stub" }
func (s *stubAssessor) Model() string    { return "stub-model" }

func scores(values ...float64) *ai.Assessment {
	result := make([]ai.QualificationScore, 0, len(values))
	for i, v := range values {
		result = append(result, ai.QualificationScore{Qualification: fmt.Sprintf("q%d", i), Score: v})
	}
	return &ai.Assessment{Scores: result}
}

func TestEvaluateAveragesAndTruncates(t *testing.T) {
	stub := &stubAssessor{assessment: scores(80, 85)}
	judge := New(stub, Config{Timeout: time.Second}, zap.NewNop())

	got := judge.Evaluate(context.Background(), "resume", "job", []string{"a", "b"})

	if got.SubScore != 82 {
		t.Fatalf("expected 82, got %v", got.SubScore)
	}
	if got.Degraded() {
		t.Fatalf("unexpected degraded judgement: %v", got.Err)
	}
	if got.Reasoning != "Based on scores for 2 individual qualifications." {
		t.Fatalf("unexpected reasoning %q", got.Reasoning)
	}
	if len(got.Scores) != 2 {
		t.Fatalf("expected per-qualification scores to be kept, got %d", len(got.Scores))
	}
	if !stub.deadline {
		t.Fatalf("expected assessor context to carry a deadline")
	}
	if stub.last.Target != "job" || stub.last.Candidate != "resume" {
		t.Fatalf("unexpected request %+v", stub.last)
	}
}

func TestEvaluateWithoutQualificationsSkipsAssessor(t *testing.T) {
	stub := &stubAssessor{assessment: scores(100)}
	judge := New(stub, Config{}, zap.NewNop())

	got := judge.Evaluate(context.Background(), "resume", "job", nil)

	if stub.calls != 0 {
		t.Fatalf("assessor must not be called, got %d calls", stub.calls)
	}
	if got.SubScore != 0 || got.Reasoning != ReasonNoQualifications {
		t.Fatalf("unexpected judgement %+v", got)
	}
}

func TestEvaluateDegradesOnFailures(t *testing.T) {
	tests := []struct {
		name   string
		stub   *stubAssessor
		prefix string
	}{
		{
			name:   "transport",
			stub:   &stubAssessor{err: ai.NewTransportError("stub", errors.New("status 503"))},
			prefix: "API request failed: ",
		},
		{
			name:   "malformed",
			stub:   &stubAssessor{err: ai.NewMalformedResponseError("invalid JSON", errors.New("unexpected end"))},
			prefix: "Failed to parse API response: ",
		},
		{
			name:   "empty assessment",
			stub:   &stubAssessor{assessment: &ai.Assessment{}},
			prefix: "Failed to parse API response: LLM returned no qualification scores",
		},
		{
			name:   "unknown",
			stub:   &stubAssessor{err: errors.New("boom")},
			prefix: "Semantic analysis failed: boom",
		},
		{
			name:   "panic",
			stub:   &stubAssessor{panicWith: "kaboom"},
			prefix: "Semantic analysis failed: assessor panic: kaboom",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			judge := New(tt.stub, Config{}, zap.NewNop())
			got := judge.Evaluate(context.Background(), "resume", "job", []string{"a"})

			if got.SubScore != 0 {
				t.Fatalf("expected zero sub-score, got %v", got.SubScore)
			}
			if !got.Degraded() {
				t.Fatalf("expected degraded judgement")
			}
			if !strings.HasPrefix(got.Reasoning, tt.prefix) {
				t.Fatalf("expected reasoning to start with %q, got %q", tt.prefix, got.Reasoning)
			}
		})
	}
}

func TestEvaluateTimesOut(t *testing.T) {
	stub := &stubAssessor{block: true}
	judge := New(stub, Config{Timeout: 10 * time.Millisecond}, zap.NewNop())

	got := judge.Evaluate(context.Background(), "resume", "job", []string{"a"})

	if got.SubScore != 0 {
		t.Fatalf("expected zero sub-score, got %v", got.SubScore)
	}
	if got.Reasoning != "API request timed out after 10ms." {
		t.Fatalf("unexpected reasoning %q", got.Reasoning)
	}
}

func TestEvaluateTruncatesDocuments(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	stub := &stubAssessor{assessment: scores(50)}
	judge := New(stub, Config{MaxChars: 4}, zap.New(core))

	judge.Evaluate(context.Background(), "résumé text", "job", []string{"a"})

	if stub.last.Candidate != "résu" {
		t.Fatalf("expected candidate to be cut to 4 runes, got %q", stub.last.Candidate)
	}
	if stub.last.Target != "job" {
		t.Fatalf("short target must be untouched, got %q", stub.last.Target)
	}

	entries := logs.FilterMessage("documents truncated before semantic assessment").All()
	if len(entries) != 1 {
		t.Fatalf("expected one truncation log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["resume_truncated"] != true || fields["job_description_truncated"] != false {
		t.Fatalf("unexpected truncation fields %v", fields)
	}
	if fields["ai_provider"] != "stub" {
		t.Fatalf("expected provider field, got %v", fields["ai_provider"])
	}
}

func TestUnavailableJudge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cause  error
		reason string
	}{
		{name: "missing credential", cause: fmt.Errorf("gemini: %w", ai.ErrCredentialMissing), reason: ReasonNoCredential},
		{name: "disabled", cause: nil, reason: ReasonDisabled},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Unavailable(tt.cause, nil).Evaluate(context.Background(), "resume", "job", []string{"a"})
			if got.SubScore != 0 || got.Reasoning != tt.reason {
				t.Fatalf("unexpected judgement %+v", got)
			}
		})
	}
}

func TestMean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "empty", values: nil, want: 0},
		{name: "single", values: []float64{40}, want: 40},
		{name: "fraction truncated", values: []float64{70, 75, 76}, want: 73},
		{name: "clamped", values: []float64{150, -20}, want: 50},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var assessed []ai.QualificationScore
			if tt.values != nil {
				assessed = scores(tt.values...).Scores
			}
			if got := Mean(assessed); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
