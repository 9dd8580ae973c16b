package insight

import (
	"encoding/json"
	"strings"
)

const (
	fallbackSummary            = "The model returned a malformed response. Please try again."
	fallbackConceptName        = "Format error"
	fallbackConceptDescription = "The model failed to generate valid JSON"
	fallbackLinkTitle          = "Ollama documentation"
	fallbackLinkURL            = "https://ollama.com/docs"
)

// insightPayload is the shape the model is instructed to emit inside the
// upstream Response string.
type insightPayload struct {
	Summary      string        `json:"summary"`
	KeyConcepts  []KeyConcept  `json:"keyConcepts"`
	RelatedLinks []RelatedLink `json:"relatedLinks"`
}

// Normalize interprets a raw upstream reply and always yields a usable
// result. A parse error or a shape mismatch degrades to the fallback result
// with the original text kept under metadata.rawResponse for diagnosis; it is
// the one place where a malformed upstream payload does not surface as an
// error, because the dashboard must always have something coherent to render.
func Normalize(raw GenerateResponse) InsightResult {
	payload, ok := decodePayload(raw.Response)
	if !ok {
		return fallbackResult(raw.Response)
	}

	return InsightResult{
		Summary:      payload.Summary,
		KeyConcepts:  payload.KeyConcepts,
		RelatedLinks: payload.RelatedLinks,
		Metadata: map[string]any{
			"model":             raw.Model,
			"total_duration":    raw.TotalDuration,
			"load_duration":     raw.LoadDuration,
			"prompt_eval_count": raw.PromptEvalCount,
			"eval_count":        raw.EvalCount,
		},
	}
}

func decodePayload(response string) (insightPayload, bool) {
	var payload insightPayload
	if err := json.Unmarshal([]byte(response), &payload); err != nil {
		return insightPayload{}, false
	}
	if strings.TrimSpace(payload.Summary) == "" {
		return insightPayload{}, false
	}
	// keyConcepts and relatedLinks must be present as arrays, even if empty.
	var shape struct {
		KeyConcepts  json.RawMessage `json:"keyConcepts"`
		RelatedLinks json.RawMessage `json:"relatedLinks"`
	}
	if err := json.Unmarshal([]byte(response), &shape); err != nil {
		return insightPayload{}, false
	}
	if !isJSONArray(shape.KeyConcepts) || !isJSONArray(shape.RelatedLinks) {
		return insightPayload{}, false
	}
	return payload, true
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "[")
}

func fallbackResult(rawResponse string) InsightResult {
	return InsightResult{
		Summary: fallbackSummary,
		KeyConcepts: []KeyConcept{
			{Name: fallbackConceptName, Color: "red", Description: fallbackConceptDescription},
		},
		RelatedLinks: []RelatedLink{
			{Title: fallbackLinkTitle, URL: fallbackLinkURL},
		},
		Metadata: map[string]any{
			"rawResponse": rawResponse,
		},
	}
}
