package analyses

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"insight-backend/internal/documents"
	"insight-backend/internal/insight"
	"insight-backend/internal/shared/metrics"
	"insight-backend/internal/shared/telemetry"
)

// DocumentSource supplies extracted text for document-backed analyses.
type DocumentSource interface {
	ExtractedText(ctx context.Context, userID, documentID string) (documents.Extraction, error)
}

// Service owns the analysis job lifecycle: it persists job records and wires
// queue callbacks back into the repo, metrics and logs.
type Service struct {
	Repo     Repo
	Queue    *insight.Queue
	Analyzer *insight.Analyzer
	Docs     DocumentSource

	// DefaultModel is used when a request names no model.
	DefaultModel string

	mu       sync.Mutex
	queueIDs map[string]string
}

// NewService constructs a Service over the given queue and analyzer.
func NewService(repo Repo, queue *insight.Queue, analyzer *insight.Analyzer, docs DocumentSource) *Service {
	return &Service{
		Repo:     repo,
		Queue:    queue,
		Analyzer: analyzer,
		Docs:     docs,
		queueIDs: make(map[string]string),
	}
}

// CreateInput describes a new analysis job.
type CreateInput struct {
	Topic       string
	Language    string
	Model       string
	Temperature float64
	DocumentID  string
}

// Create persists a queued analysis record and enqueues it. Topic validation
// happens at execution time inside the queue, so an invalid topic still
// yields a record that transitions to failed.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Analysis, error) {
	if strings.TrimSpace(userID) == "" {
		return Analysis{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if in.Model == "" {
		in.Model = s.DefaultModel
	}

	req := insight.AnalysisRequest{
		Topic:    in.Topic,
		Language: in.Language,
		ModelParams: insight.ModelParams{
			Model:       in.Model,
			Temperature: in.Temperature,
		},
	}

	analysis := Analysis{
		ID:          uuid.NewString(),
		UserID:      userID,
		Topic:       in.Topic,
		Language:    in.Language,
		Model:       in.Model,
		Temperature: in.Temperature,
		Status:      StatusQueued,
		CreatedAt:   time.Now().UTC(),
	}

	if in.DocumentID != "" {
		if s.Docs == nil {
			return Analysis{}, fmt.Errorf("%w: document analysis is not available", ErrInvalidInput)
		}
		ext, err := s.Docs.ExtractedText(ctx, userID, in.DocumentID)
		if err != nil {
			return Analysis{}, err
		}
		req.Topic = ext.Text
		req.FileInfo = &insight.FileInfo{
			Name:      ext.FileName,
			SizeLabel: ext.SizeLabel,
			CharCount: ext.CharCount,
		}
		analysis.DocumentID = in.DocumentID
		analysis.Topic = ext.Text
		analysis.FileName = ext.FileName
		analysis.FileSizeLabel = ext.SizeLabel
		analysis.FileCharCount = ext.CharCount
	}

	if err := s.Repo.Create(ctx, analysis); err != nil {
		return Analysis{}, err
	}

	bg := backgroundWithRequestID(ctx)
	analysisID := analysis.ID
	progress := 0

	cb := insight.Callbacks{
		OnStart: func() {
			metrics.IncAnalysisStarted()
			if err := s.Repo.MarkProcessing(bg, analysisID, time.Now().UTC()); err != nil {
				telemetry.Error("analysis.mark_processing_failed", logFields(bg, analysisID, userID, map[string]any{"error": err.Error()}))
			}
			telemetry.Info("analysis.status", logFields(bg, analysisID, userID, map[string]any{"status": StatusProcessing}))
			s.publishQueueGauges()
		},
		OnProgress: func(step int) {
			progress += step
			if progress > 95 {
				progress = 95
			}
			if err := s.Repo.UpdateProgress(bg, analysisID, progress); err != nil {
				telemetry.Error("analysis.update_progress_failed", logFields(bg, analysisID, userID, map[string]any{"error": err.Error()}))
			}
		},
		OnComplete: func(result insight.InsightResult) {
			s.forget(analysisID)
			resultMap, err := toResultMap(result)
			if err != nil {
				telemetry.Error("analysis.result_encode_failed", logFields(bg, analysisID, userID, map[string]any{"error": err.Error()}))
			}
			if err := s.Repo.MarkTerminal(bg, analysisID, StatusCompleted, resultMap, "", "", time.Now().UTC()); err != nil {
				telemetry.Error("analysis.mark_completed_failed", logFields(bg, analysisID, userID, map[string]any{"error": err.Error()}))
			}
			metrics.IncAnalysisCompleted()
			metrics.ObserveAnalysisDurationMs(float64(result.GenerationTimeMs))
			telemetry.Info("analysis.status", logFields(bg, analysisID, userID, map[string]any{
				"status":             StatusCompleted,
				"generation_time_ms": result.GenerationTimeMs,
			}))
			s.publishQueueGauges()
		},
		OnError: func(aerr *insight.Error) {
			s.forget(analysisID)
			if err := s.Repo.MarkTerminal(bg, analysisID, StatusFailed, nil, string(aerr.Kind), aerr.Message, time.Now().UTC()); err != nil {
				telemetry.Error("analysis.mark_failed_failed", logFields(bg, analysisID, userID, map[string]any{"error": err.Error()}))
			}
			metrics.IncAnalysisFailed()
			telemetry.Info("analysis.status", logFields(bg, analysisID, userID, map[string]any{
				"status":     StatusFailed,
				"error_kind": string(aerr.Kind),
				"retryable":  aerr.Retryable(),
			}))
			s.publishQueueGauges()
		},
	}

	// The mapping must exist before a terminal callback can call forget,
	// otherwise a fast-completing entry leaves a stale id behind. Callbacks
	// run on queue goroutines, so holding the lock across Enqueue makes them
	// wait for the insert instead of racing it.
	s.mu.Lock()
	if s.queueIDs == nil {
		s.queueIDs = make(map[string]string)
	}
	s.queueIDs[analysisID] = s.Queue.Enqueue(req, cb)
	s.mu.Unlock()

	s.publishQueueGauges()
	telemetry.Info("analysis.status", logFields(ctx, analysisID, userID, map[string]any{"status": StatusQueued}))

	return analysis, nil
}

// Cancel removes a still-queued analysis. Once the job is in flight or
// terminal it returns ErrNotCancelable.
func (s *Service) Cancel(ctx context.Context, userID, analysisID string) error {
	analysis, err := s.Get(ctx, userID, analysisID)
	if err != nil {
		return err
	}
	if IsTerminal(analysis.Status) {
		return ErrNotCancelable
	}

	queueID, ok := s.lookup(analysisID)
	if !ok || !s.Queue.Cancel(queueID) {
		return ErrNotCancelable
	}
	s.forget(analysisID)

	if err := s.Repo.MarkTerminal(ctx, analysisID, StatusCanceled, nil, "", "", time.Now().UTC()); err != nil {
		return err
	}
	metrics.IncAnalysisCanceled()
	telemetry.Info("analysis.status", logFields(ctx, analysisID, userID, map[string]any{"status": StatusCanceled}))
	s.publishQueueGauges()
	return nil
}

// Get fetches a single analysis scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (Analysis, error) {
	analysis, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	if analysis.UserID != userID {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

// List returns a user's analyses newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// AnalyzeNow runs an analysis synchronously, bypassing the queue and the
// repo. Used by non-interactive callers such as cmd/batch.
func (s *Service) AnalyzeNow(ctx context.Context, in CreateInput) (insight.InsightResult, error) {
	if in.Model == "" {
		in.Model = s.DefaultModel
	}
	return s.Analyzer.Analyze(ctx, insight.AnalysisRequest{
		Topic:    in.Topic,
		Language: in.Language,
		ModelParams: insight.ModelParams{
			Model:       in.Model,
			Temperature: in.Temperature,
		},
	})
}

func (s *Service) lookup(analysisID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queueID, ok := s.queueIDs[analysisID]
	return queueID, ok
}

func (s *Service) forget(analysisID string) {
	s.mu.Lock()
	delete(s.queueIDs, analysisID)
	s.mu.Unlock()
}

func (s *Service) publishQueueGauges() {
	if s.Queue == nil {
		return
	}
	metrics.SetQueueDepth(s.Queue.Depth())
	metrics.SetQueueActive(s.Queue.Active())
}

func logFields(ctx context.Context, analysisID, userID string, extra map[string]any) map[string]any {
	fields := map[string]any{
		"analysis_id": analysisID,
		"user_id":     userID,
	}
	if requestID := requestIDFromContext(ctx); requestID != "" {
		fields["request_id"] = requestID
	}
	for k, v := range extra {
		fields[k] = v
	}
	return fields
}

func toResultMap(result insight.InsightResult) (map[string]any, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
