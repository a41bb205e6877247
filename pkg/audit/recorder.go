package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"switchboard-ai/hermes/pkg/config"
)

// Recorder writes audit records asynchronously so that recording never
// blocks a chat completion request. Records are enqueued on a buffered
// channel and drained by a background worker; when the buffer is full the
// record is dropped and counted rather than stalling the request path.
type Recorder struct {
	storage    Storage
	cfg        config.RecorderConfig
	recordChan chan *Record
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
	dropped    atomic.Int64
	logger     *slog.Logger
}

// NewRecorder creates a recorder backed by the given storage and starts its
// background worker.
func NewRecorder(storage Storage, cfg config.RecorderConfig, logger *slog.Logger) *Recorder {
	if cfg.AsyncBuffer <= 0 {
		cfg.AsyncBuffer = 1000
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		storage:    storage,
		cfg:        cfg,
		recordChan: make(chan *Record, cfg.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     logger.With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder started",
		"async_buffer", cfg.AsyncBuffer,
		"write_timeout", cfg.WriteTimeout,
	)

	return r
}

// Record enqueues an audit record for writing. It fills in the record ID and
// recorded time, returns immediately, and never blocks on storage. A full
// buffer drops the record.
func (r *Recorder) Record(record *Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.RecordedTime.IsZero() {
		record.RecordedTime = time.Now()
	}

	select {
	case <-r.done:
		return NewRecorderError(record.ID, context.Canceled)
	default:
	}

	select {
	case r.recordChan <- record:
		return nil
	default:
		r.dropped.Add(1)
		r.logger.Warn("audit buffer full, dropping record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"dropped_total", r.dropped.Load(),
		)
		return NewRecorderError(record.ID, context.DeadlineExceeded)
	}
}

// Dropped returns the number of records dropped because the buffer was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops the recorder, drains buffered records to storage, and waits
// for the worker to finish.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
	return nil
}

// worker drains the record channel and writes to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					r.logger.Debug("audit channel drained")
					return
				}
			}
		}
	}
}

func (r *Recorder) writeRecord(record *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store audit record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"error", err,
		)
		return
	}

	r.logger.Debug("audit record stored",
		"record_id", record.ID,
		"request_id", record.RequestID,
		"provider", record.Provider,
		"status", record.StatusCode,
	)
}
