package insight

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mathrand "math/rand"
	"sync"
	"time"
)

const progressInterval = time.Second

// Callbacks receive the lifecycle notifications for one queued analysis.
// Exactly one of OnComplete and OnError fires per executed entry; a pending
// entry removed via Cancel receives neither. OnStart fires when the entry
// leaves the pending list. OnProgress is optional and purely cosmetic.
type Callbacks struct {
	OnStart    func()
	OnProgress func(percent int)
	OnComplete func(result InsightResult)
	OnError    func(err *Error)
}

type entry struct {
	id  string
	req AnalysisRequest
	cb  Callbacks
}

// Queue serializes analysis requests against the model backend. Entries run
// in strict FIFO arrival order with at most maxConcurrent in flight; a
// failure never stalls the queue. The zero value is not usable; construct
// with NewQueue and inject it from the composition root.
type Queue struct {
	analyzer *Analyzer

	mu            sync.Mutex
	pending       []*entry
	active        int
	maxConcurrent int
	closed        bool

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewQueue constructs a queue over the given analyzer. maxConcurrent values
// below 1 are clamped to 1; the default is deliberately low because the
// upstream backend serializes compute-bound inference.
func NewQueue(analyzer *Analyzer, maxConcurrent int) *Queue {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		analyzer:      analyzer,
		maxConcurrent: maxConcurrent,
		baseCtx:       ctx,
		cancel:        cancel,
	}
}

// Enqueue appends a pending entry and returns its opaque id immediately.
// Validation happens at execution time, surfacing through OnError.
func (q *Queue) Enqueue(req AnalysisRequest, cb Callbacks) string {
	e := &entry{id: newEntryID(), req: req, cb: cb}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		if cb.OnError != nil {
			go cb.OnError(NewTransportError("queue is shut down", nil))
		}
		return e.id
	}
	q.pending = append(q.pending, e)
	q.dispatchLocked()
	q.mu.Unlock()

	return e.id
}

// Cancel removes a still-pending entry before it starts executing and
// reports whether removal occurred. An in-flight entry cannot be canceled
// here; its gateway timeout bounds it instead. No callback fires for a
// successfully canceled entry.
func (q *Queue) Cancel(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.pending {
		if e.id == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Depth returns the number of pending entries.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Active returns the number of in-flight entries.
func (q *Queue) Active() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

// Close shuts the queue down. Pending entries resolve with a transport
// error, in-flight entries are canceled through their context and also
// resolve through OnError; Close returns once every entry has received its
// terminal callback.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.wg.Wait()
		return
	}
	q.closed = true
	drained := q.pending
	q.pending = nil
	q.mu.Unlock()

	q.cancel()
	for _, e := range drained {
		if e.cb.OnError != nil {
			e.cb.OnError(NewTransportError("queue is shut down", nil))
		}
	}
	q.wg.Wait()
}

// dispatchLocked pulls head entries into execution while slots are free.
// Callers must hold q.mu.
func (q *Queue) dispatchLocked() {
	for !q.closed && q.active < q.maxConcurrent && len(q.pending) > 0 {
		e := q.pending[0]
		q.pending = q.pending[1:]
		q.active++
		q.wg.Add(1)
		go q.execute(e)
	}
}

func (q *Queue) execute(e *entry) {
	defer q.wg.Done()

	if e.cb.OnStart != nil {
		e.cb.OnStart()
	}

	stopProgress := q.startProgress(e)

	result, err := q.analyzer.Analyze(q.baseCtx, e.req)

	// The progress timer must be stopped before the terminal callback so no
	// progress tick can arrive after completion.
	stopProgress()

	if err != nil {
		if e.cb.OnError != nil {
			e.cb.OnError(wrapError(err))
		}
	} else if e.cb.OnComplete != nil {
		e.cb.OnComplete(result)
	}

	q.mu.Lock()
	q.active--
	q.dispatchLocked()
	q.mu.Unlock()
}

// startProgress emits synthetic progress increments of 5-25 points every
// second while the entry is in flight. The cumulative total is capped below
// 100 so the caller's UI keeps the final jump for actual completion. The
// returned stop function blocks until the timer goroutine has exited.
func (q *Queue) startProgress(e *entry) func() {
	if e.cb.OnProgress == nil {
		return func() {}
	}

	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()

		cumulative := 0
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				step := 5 + mathrand.Intn(21) // 5..25
				if cumulative+step > 95 {
					step = 95 - cumulative
				}
				if step <= 0 {
					continue
				}
				cumulative += step
				e.cb.OnProgress(step)
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}

func newEntryID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
