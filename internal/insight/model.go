package insight

import "time"

// ModelParams selects the upstream model and sampling temperature.
type ModelParams struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// FileInfo describes the uploaded file an analysis request was derived from.
// It only affects prompt construction; the extracted text itself travels in
// AnalysisRequest.Topic.
type FileInfo struct {
	Name      string `json:"name"`
	SizeLabel string `json:"size"`
	CharCount int    `json:"chars"`
}

// AnalysisRequest is the immutable input of a single analysis. Once enqueued
// it is never mutated.
type AnalysisRequest struct {
	Topic       string      `json:"topic"`
	Language    string      `json:"language,omitempty"`
	ModelParams ModelParams `json:"modelParams"`
	FileInfo    *FileInfo   `json:"fileInfo,omitempty"`
}

// KeyConcept is one concept extracted from the analyzed text. Color is a CSS
// color name or class used by the dashboard UI.
type KeyConcept struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

// RelatedLink points at a recommended external resource.
type RelatedLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// InsightResult is the structured analysis produced exactly once per
// successful request.
type InsightResult struct {
	Summary          string         `json:"summary"`
	KeyConcepts      []KeyConcept   `json:"keyConcepts"`
	RelatedLinks     []RelatedLink  `json:"relatedLinks"`
	GenerationTimeMs int64          `json:"generationTimeMs"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// ValidationOptions bounds the length of an analysis topic.
type ValidationOptions struct {
	MinLength int
	MaxLength int
}

// DefaultValidationOptions mirror the limits enforced by the dashboard.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{MinLength: 3, MaxLength: 10000}
}

const (
	// DefaultModel is used when a request carries no model name.
	DefaultModel = "llama3.2:latest"
	// DefaultTemperature is used when a request carries no temperature.
	DefaultTemperature = 0.7
	// DefaultLanguage is the response language when none is requested.
	DefaultLanguage = "ru"
	// DefaultTimeout bounds a single upstream generation call.
	DefaultTimeout = 30 * time.Second
)

// Config holds the gateway settings for one Analyzer.
type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	UseMockData bool
}

// withDefaults fills zero fields with the standard settings.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:11434/api"
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
