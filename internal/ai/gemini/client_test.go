package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/megharajeev28/resume-matcher/internal/ai"
)

type fakeResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type callRecord struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type fakeModels struct {
	mu    sync.Mutex
	calls []callRecord
	queue []fakeResponse
}

func (f *fakeModels) enqueue(resp *genai.GenerateContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeResponse{resp: resp, err: err})
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, callRecord{model: model, contents: contents, config: config})
	if len(f.queue) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := f.queue[0]
	f.queue = f.queue[1:]
	return res.resp, res.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func skipBackoff(t *testing.T) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	original := wait
	wait = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	t.Cleanup(func() { wait = original })
	return &delays
}

func TestGeneratorRequestsStructuredJSON(t *testing.T) {
	skipBackoff(t)

	models := &fakeModels{}
	models.enqueue(textResponse(`{"qualificationScores": []}`), nil)

	g := &Generator{models: models, model: "gemini-pro", maxRetries: 3, temperature: 0.2, logger: zap.NewNop()}

	out, err := g.GenerateJSON(context.Background(), "system", "  prompt  ", ScoresSchema())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"qualificationScores": []}` {
		t.Fatalf("unexpected output: %q", out)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(models.calls))
	}

	call := models.calls[0]
	if call.model != "gemini-pro" {
		t.Fatalf("unexpected model: %q", call.model)
	}
	if got := call.contents[0].Parts[0].Text; got != "prompt" {
		t.Fatalf("expected trimmed prompt, got %q", got)
	}
	if call.config == nil || call.config.ResponseMIMEType != "application/json" {
		t.Fatalf("expected JSON response mime type, got %+v", call.config)
	}
	if call.config.ResponseSchema == nil || call.config.ResponseSchema.Properties["qualificationScores"] == nil {
		t.Fatalf("expected qualificationScores response schema")
	}
	if call.config.SystemInstruction == nil || call.config.SystemInstruction.Parts[0].Text != "system" {
		t.Fatalf("expected system instruction to be set")
	}
}

func TestGeneratorRetriesOnServerError(t *testing.T) {
	delays := skipBackoff(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"})
	models.enqueue(nil, genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"})
	models.enqueue(textResponse("retry ok"), nil)

	g := &Generator{models: models, model: "gemini-pro", maxRetries: 3, logger: zap.NewNop()}

	out, err := g.GenerateJSON(context.Background(), "", "prompt", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "retry ok" {
		t.Fatalf("unexpected output: %q", out)
	}
	if len(models.calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(models.calls))
	}

	want := []time.Duration{time.Second, 2 * time.Second}
	if len(*delays) != len(want) || (*delays)[0] != want[0] || (*delays)[1] != want[1] {
		t.Fatalf("expected backoff %v, got %v", want, *delays)
	}
}

func TestGeneratorStopsAfterRetriesExhausted(t *testing.T) {
	skipBackoff(t)

	models := &fakeModels{}
	tempErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	models.enqueue(nil, tempErr)
	models.enqueue(nil, tempErr)

	g := &Generator{models: models, model: "gemini-pro", maxRetries: 2, logger: zap.NewNop()}

	_, err := g.GenerateJSON(context.Background(), "sys", "msg", nil)
	if !errors.Is(err, ai.ErrTransport) {
		t.Fatalf("expected transport error after retries exhausted, got %v", err)
	}
	if len(models.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.calls))
	}
}

func TestGeneratorDoesNotRetryClientErrors(t *testing.T) {
	skipBackoff(t)

	for _, code := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusTooManyRequests} {
		models := &fakeModels{}
		models.enqueue(nil, genai.APIError{Code: code, Message: "rejected"})

		g := &Generator{models: models, model: "gemini-pro", maxRetries: 3, logger: zap.NewNop()}

		_, err := g.GenerateJSON(context.Background(), "sys", "msg", nil)
		if !errors.Is(err, ai.ErrTransport) {
			t.Fatalf("status %d: expected transport error, got %v", code, err)
		}
		if len(models.calls) != 1 {
			t.Fatalf("status %d: expected single call, got %d", code, len(models.calls))
		}
	}
}

func TestGeneratorDoesNotRetryCancelledContext(t *testing.T) {
	skipBackoff(t)

	models := &fakeModels{}
	models.enqueue(nil, context.Canceled)

	g := &Generator{models: models, model: "gemini-pro", maxRetries: 3, logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := g.GenerateJSON(ctx, "sys", "msg", nil); err == nil {
		t.Fatal("expected error")
	}
	if len(models.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(models.calls))
	}
}

func TestGeneratorEmptyResponseIsMalformed(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(&genai.GenerateContentResponse{}, nil)

	g := &Generator{models: models, model: "gemini-pro", maxRetries: 1, logger: zap.NewNop()}

	_, err := g.GenerateJSON(context.Background(), "sys", "msg", nil)
	if !errors.Is(err, ai.ErrMalformedResponse) {
		t.Fatalf("expected malformed response error, got %v", err)
	}
}

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), "   ", "", 1, nil)
	if !errors.Is(err, ai.ErrCredentialMissing) {
		t.Fatalf("expected ErrCredentialMissing, got %v", err)
	}
}
