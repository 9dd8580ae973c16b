package insight

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeGenerator struct {
	lastReq GenerateRequest
	resp    GenerateResponse
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return GenerateResponse{}, f.err
	}
	return f.resp, nil
}

func TestAnalyzeValidatesBeforeGateway(t *testing.T) {
	gen := &fakeGenerator{}
	a := NewAnalyzer(gen, Config{})

	_, err := a.Analyze(context.Background(), AnalysisRequest{Topic: " "})
	se, ok := AsError(err)
	if !ok || se.Kind != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gen.lastReq.Model != "" {
		t.Fatal("gateway must not be called for invalid input")
	}
}

func TestAnalyzeBuildsUpstreamPayload(t *testing.T) {
	gen := &fakeGenerator{resp: GenerateResponse{
		Response: `{"summary":"s","keyConcepts":[{"name":"c","color":"blue"}],"relatedLinks":[{"title":"t","url":"u"}]}`,
		Model:    "llama3.2:latest",
	}}
	a := NewAnalyzer(gen, Config{})

	req := AnalysisRequest{
		Topic:       "AI ethics",
		Language:    "en",
		ModelParams: ModelParams{Model: "llama3.2:latest", Temperature: 0.7},
		FileInfo:    &FileInfo{Name: "essay.pdf", SizeLabel: "1.2 MB", CharCount: 5400},
	}
	result, err := a.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if gen.lastReq.Model != "llama3.2:latest" {
		t.Fatalf("model = %q", gen.lastReq.Model)
	}
	if gen.lastReq.Prompt != "AI ethics" {
		t.Fatalf("prompt = %q", gen.lastReq.Prompt)
	}
	if gen.lastReq.Format != "json" || gen.lastReq.Stream {
		t.Fatalf("payload format/stream mismatch: %+v", gen.lastReq)
	}
	if gen.lastReq.Options.Temperature != 0.7 {
		t.Fatalf("temperature = %v", gen.lastReq.Options.Temperature)
	}
	if !strings.Contains(gen.lastReq.System, "essay.pdf") {
		t.Fatal("system prompt lacks the file context clause")
	}
	if !strings.Contains(gen.lastReq.System, "Respond in this language: en") {
		t.Fatal("system prompt lacks the language clause")
	}

	if result.Summary != "s" {
		t.Fatalf("summary = %q", result.Summary)
	}
	if result.Metadata["requestLength"] != len("AI ethics") {
		t.Fatalf("metadata.requestLength = %v", result.Metadata["requestLength"])
	}
	if _, ok := result.Metadata["timestamp"]; !ok {
		t.Fatal("metadata.timestamp missing")
	}
	if result.GenerationTimeMs < 0 {
		t.Fatalf("generationTimeMs = %d", result.GenerationTimeMs)
	}
}

func TestAnalyzeDefaultsModelAndTemperature(t *testing.T) {
	gen := &fakeGenerator{resp: GenerateResponse{Response: `{"summary":"s","keyConcepts":[],"relatedLinks":[]}`}}
	a := NewAnalyzer(gen, Config{})

	if _, err := a.Analyze(context.Background(), AnalysisRequest{Topic: "defaults"}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if gen.lastReq.Model != DefaultModel {
		t.Fatalf("model = %q, want %q", gen.lastReq.Model, DefaultModel)
	}
	if gen.lastReq.Options.Temperature != DefaultTemperature {
		t.Fatalf("temperature = %v, want %v", gen.lastReq.Options.Temperature, DefaultTemperature)
	}
	if !strings.Contains(gen.lastReq.System, "Respond in this language: "+DefaultLanguage) {
		t.Fatal("system prompt should default the response language")
	}
}

func TestAnalyzePropagatesGatewayErrors(t *testing.T) {
	gatewayErr := NewUpstreamHTTPError(503, "Service Unavailable")
	gen := &fakeGenerator{err: gatewayErr}
	a := NewAnalyzer(gen, Config{})

	_, err := a.Analyze(context.Background(), AnalysisRequest{Topic: "upstream down"})
	se, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %v", err)
	}
	if se.Kind != KindUpstreamHTTP || se.StatusCode != 503 {
		t.Fatalf("error = %+v", se)
	}
	if !se.Retryable() {
		t.Fatal("5xx upstream errors should be retryable")
	}
}

func TestAnalyzeWrapsUnknownErrors(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection reset")}
	a := NewAnalyzer(gen, Config{})

	_, err := a.Analyze(context.Background(), AnalysisRequest{Topic: "flaky network"})
	se, ok := AsError(err)
	if !ok || se.Kind != KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestAnalyzeMockMode(t *testing.T) {
	a := NewAnalyzer(nil, Config{UseMockData: true})

	start := time.Now()
	result, err := a.Analyze(context.Background(), AnalysisRequest{
		Topic:       "AI ethics",
		ModelParams: ModelParams{Model: "llama3.2:latest", Temperature: 0.7},
	})
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if elapsed > 2500*time.Millisecond {
		t.Fatalf("mock generation took %v, want under ~2s", elapsed)
	}
	if result.Summary == "" {
		t.Fatal("mock summary is empty")
	}
	if n := len(result.KeyConcepts); n < 3 || n > 6 {
		t.Fatalf("mock keyConcepts length = %d, want 3..6", n)
	}
	if n := len(result.RelatedLinks); n < 2 || n > 4 {
		t.Fatalf("mock relatedLinks length = %d, want 2..4", n)
	}
	if result.GenerationTimeMs < mockDelayMinMs {
		t.Fatalf("generationTimeMs = %d, want >= %d (simulated latency)", result.GenerationTimeMs, mockDelayMinMs)
	}
}

func TestAnalyzeMockModeCancellation(t *testing.T) {
	a := NewAnalyzer(nil, Config{UseMockData: true})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx, AnalysisRequest{Topic: "canceled before start"})
	se, ok := AsError(err)
	if !ok || se.Kind != KindTransport {
		t.Fatalf("expected transport error for canceled context, got %v", err)
	}
}
