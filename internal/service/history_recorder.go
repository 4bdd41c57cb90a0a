package service

import (
	"context"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/diagnosis"
	"github.com/dmehra2102/prod-golang-projects/medassist/pkg/metrics"
	"go.uber.org/zap"
)

// HistoryRecorder persists diagnosis records off the request path with a
// single worker. Writes are best effort: a full buffer drops the record.
type HistoryRecorder struct {
	repo    diagnosis.Repository
	log     *zap.Logger
	metrics *metrics.Collector
	entries chan *diagnosis.Record
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

const historyWriteTimeout = 5 * time.Second

func NewHistoryRecorder(repo diagnosis.Repository, bufferSize int, m *metrics.Collector, log *zap.Logger) *HistoryRecorder {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	r := &HistoryRecorder{
		repo:    repo,
		log:     log,
		metrics: m,
		entries: make(chan *diagnosis.Record, bufferSize),
		done:    make(chan struct{}),
	}
	go r.worker()
	return r
}

// RecordAsync enqueues a record and reports whether it was accepted.
func (r *HistoryRecorder) RecordAsync(rec *diagnosis.Record) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.log.Warn("history recorder stopped, dropping record", zap.String("patient_id", rec.PatientID))
		return false
	}

	select {
	case r.entries <- rec:
		return true
	default:
		r.metrics.HistoryBufferDropped.Inc()
		r.log.Warn("history buffer full, dropping record",
			zap.String("patient_id", rec.PatientID),
			zap.String("diagnosis", rec.Diagnosis),
		)
		return false
	}
}

// Shutdown stops accepting records and waits for the queue to drain or ctx to end.
func (r *HistoryRecorder) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.entries)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		r.log.Warn("history recorder shutdown timed out; some records may be lost")
		return ctx.Err()
	}
}

func (r *HistoryRecorder) worker() {
	defer close(r.done)
	for rec := range r.entries {
		ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
		if err := r.repo.Create(ctx, rec); err != nil {
			r.log.Error("failed to persist diagnosis record",
				zap.String("patient_id", rec.PatientID),
				zap.Error(err),
			)
		} else {
			r.metrics.HistoryEntriesTotal.Inc()
		}
		cancel()
	}
}
