package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"insight-backend/internal/insight"
)

func TestGeneratePassesWireContract(t *testing.T) {
	var gotBody map[string]any
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"response": "{\"summary\":\"s\",\"keyConcepts\":[],\"relatedLinks\":[]}",
			"model": "llama3.2:latest",
			"total_duration": 42,
			"load_duration": 7,
			"prompt_eval_count": 11,
			"eval_count": 23
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)
	resp, err := client.Generate(context.Background(), insight.GenerateRequest{
		Model:   "llama3.2:latest",
		Prompt:  "AI ethics",
		System:  "system instruction",
		Format:  "json",
		Options: insight.GenerateOptions{Temperature: 0.7},
		Stream:  false,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if gotPath != "/generate" {
		t.Fatalf("request path = %q", gotPath)
	}
	if gotBody["model"] != "llama3.2:latest" || gotBody["prompt"] != "AI ethics" {
		t.Fatalf("payload = %+v", gotBody)
	}
	if gotBody["format"] != "json" {
		t.Fatalf("format = %v", gotBody["format"])
	}
	if stream, ok := gotBody["stream"].(bool); !ok || stream {
		t.Fatalf("stream = %v, want false", gotBody["stream"])
	}
	opts, ok := gotBody["options"].(map[string]any)
	if !ok || opts["temperature"] != 0.7 {
		t.Fatalf("options = %v", gotBody["options"])
	}

	if resp.Model != "llama3.2:latest" || resp.TotalDuration != 42 || resp.EvalCount != 23 {
		t.Fatalf("response = %+v", resp)
	}
	if !strings.Contains(resp.Response, `"summary"`) {
		t.Fatalf("response field = %q", resp.Response)
	}
}

func TestGenerateSendsAPIKey(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"response":"{}"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key", time.Second)
	if _, err := client.Generate(context.Background(), insight.GenerateRequest{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gotAuth != "Bearer secret-key" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
}

func TestGenerateUpstreamHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.Generate(context.Background(), insight.GenerateRequest{Model: "missing"})
	se, ok := insight.AsError(err)
	if !ok {
		t.Fatalf("expected *insight.Error, got %v", err)
	}
	if se.Kind != insight.KindUpstreamHTTP || se.StatusCode != http.StatusNotFound {
		t.Fatalf("error = %+v", se)
	}
	if se.Retryable() {
		t.Fatal("4xx should not be retryable")
	}
}

func TestGenerateServerErrorRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.Generate(context.Background(), insight.GenerateRequest{})
	se, ok := insight.AsError(err)
	if !ok || se.Kind != insight.KindUpstreamHTTP {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if !se.Retryable() {
		t.Fatal("5xx should be retryable")
	}
}

func TestGenerateTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client := NewClient(server.URL, "", 100*time.Millisecond)
	start := time.Now()
	_, err := client.Generate(context.Background(), insight.GenerateRequest{Prompt: "never answered"})
	elapsed := time.Since(start)

	se, ok := insight.AsError(err)
	if !ok || se.Kind != insight.KindTimeout {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if !strings.Contains(se.Message, "100") {
		t.Fatalf("timeout message %q does not carry the configured value", se.Message)
	}
	if !se.Retryable() {
		t.Fatal("timeouts should be retryable")
	}
	if elapsed > time.Second {
		t.Fatalf("timeout took %v, deadline not enforced", elapsed)
	}
}

func TestGenerateTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(server.URL, "", time.Second)
	_, err := client.Generate(context.Background(), insight.GenerateRequest{})
	se, ok := insight.AsError(err)
	if !ok || se.Kind != insight.KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !se.Retryable() {
		t.Fatal("transport errors should be retryable")
	}
}

func TestGenerateDeviatingEnvelopeFallsThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain text, not the documented envelope"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	resp, err := client.Generate(context.Background(), insight.GenerateRequest{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// The raw body surfaces through Response so normalization degrades to
	// the fallback result instead of crashing.
	result := insight.Normalize(resp)
	if result.Metadata["rawResponse"] != "plain text, not the documented envelope" {
		t.Fatalf("fallback rawResponse = %v", result.Metadata["rawResponse"])
	}
}
