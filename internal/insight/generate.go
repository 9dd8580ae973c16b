package insight

import "context"

// GenerateRequest is the payload accepted by the model backend's /generate
// endpoint. The shape is fixed by the upstream contract; any change there
// shows up as a normalization fallback, not a crash.
type GenerateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system"`
	Format  string          `json:"format"`
	Options GenerateOptions `json:"options"`
	Stream  bool            `json:"stream"`
}

// GenerateOptions carries model sampling options.
type GenerateOptions struct {
	Temperature float64 `json:"temperature"`
}

// GenerateResponse is the reply of the model backend. Response holds the
// JSON-encoded insight payload as a string; the remaining fields are
// performance counters.
type GenerateResponse struct {
	Response        string `json:"response"`
	Model           string `json:"model"`
	TotalDuration   int64  `json:"total_duration"`
	LoadDuration    int64  `json:"load_duration"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Generator issues a single generation call against the model backend.
// Implementations map transport and HTTP failures to *Error.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}
