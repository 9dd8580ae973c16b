package insight

import (
	"context"
	"time"
	"unicode/utf8"
)

// Analyzer runs a single analysis end to end: validation, gateway call (or
// mock generation), normalization and metadata stamping. It is safe for
// concurrent use; the queue serializes calls only because the upstream model
// backend serializes compute-bound inference.
type Analyzer struct {
	Gen        Generator
	Config     Config
	Validation ValidationOptions
}

// NewAnalyzer constructs an Analyzer with defaulted configuration.
func NewAnalyzer(gen Generator, cfg Config) *Analyzer {
	return &Analyzer{
		Gen:        gen,
		Config:     cfg.withDefaults(),
		Validation: DefaultValidationOptions(),
	}
}

// Analyze validates the request, generates insights and returns the stamped
// result. Failures are always *Error; a malformed upstream body is not a
// failure (see Normalize).
func (a *Analyzer) Analyze(ctx context.Context, req AnalysisRequest) (InsightResult, error) {
	if err := ValidateRequest(req, a.Validation); err != nil {
		return InsightResult{}, err
	}

	start := time.Now()

	var result InsightResult
	if a.Config.UseMockData {
		if err := mockDelay(ctx); err != nil {
			return InsightResult{}, wrapError(err)
		}
		result = mockInsights(req)
	} else {
		if a.Gen == nil {
			return InsightResult{}, NewTransportError("model backend client is not configured", nil)
		}
		raw, err := a.Gen.Generate(ctx, buildGenerateRequest(req))
		if err != nil {
			return InsightResult{}, wrapError(err)
		}
		result = Normalize(raw)
	}

	result.GenerationTimeMs = time.Since(start).Milliseconds()
	if result.Metadata == nil {
		result.Metadata = make(map[string]any, 2)
	}
	result.Metadata["requestLength"] = utf8.RuneCountInString(req.Topic)
	result.Metadata["timestamp"] = time.Now().UTC().Format(time.RFC3339)

	return result, nil
}
