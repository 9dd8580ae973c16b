package analyses

import (
	"time"
	"unicode/utf8"
)

const topicPreviewRunes = 200

type createRequest struct {
	Topic       string  `json:"topic"`
	Language    string  `json:"language"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

type analyzeDocumentRequest struct {
	Language    string  `json:"language"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// ErrorInfo is the outward-facing error of a failed analysis.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// AnalysisResponse is the outward-facing representation of an analysis job.
type AnalysisResponse struct {
	AnalysisID  string         `json:"analysisId"`
	Status      string         `json:"status"`
	Progress    int            `json:"progress"`
	Topic       string         `json:"topic,omitempty"`
	Language    string         `json:"language,omitempty"`
	Model       string         `json:"model,omitempty"`
	DocumentID  string         `json:"documentId,omitempty"`
	FileName    string         `json:"fileName,omitempty"`
	Result      map[string]any `json:"result,omitempty"`
	Error       *ErrorInfo     `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

func toResponse(a Analysis) AnalysisResponse {
	resp := AnalysisResponse{
		AnalysisID:  a.ID,
		Status:      a.Status,
		Progress:    a.Progress,
		Topic:       truncateRunes(a.Topic, topicPreviewRunes),
		Language:    a.Language,
		Model:       a.Model,
		DocumentID:  a.DocumentID,
		FileName:    a.FileName,
		Result:      a.Result,
		CreatedAt:   a.CreatedAt,
		CompletedAt: a.CompletedAt,
	}
	if a.Status == StatusFailed {
		resp.Error = &ErrorInfo{Kind: a.ErrorKind, Message: a.ErrorMessage}
	}
	return resp
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "…"
}
