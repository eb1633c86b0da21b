package journal

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"fastplanner/anvil/pkg/config"
)

// Record is the journal entry written for a handled proxy request. It carries
// metadata only: request and response bodies are never journaled.
type Record struct {
	// ID is a UUIDv4 assigned when the record is enqueued.
	ID string

	// Timestamp is when the request finished handling.
	Timestamp time.Time

	// RequestID is the per-request correlation ID from the middleware chain.
	RequestID string

	// ClientKey identifies the caller for rate-limiting purposes.
	ClientKey string

	// RouteName is the resolved service route ("NOAA", "AWC", ...), or empty
	// when no route matched.
	RouteName string

	// Method is the inbound HTTP method.
	Method string

	// UpstreamURL is the fully assembled outbound URL, empty when the request
	// was rejected before forwarding.
	UpstreamURL string

	// StatusCode is the status returned to the caller.
	StatusCode int

	// Outcome classifies how the request concluded: a forwarder outcome
	// ("success", "timeout", "network_error") or a pre-forward rejection
	// ("route_not_found", "rate_limit_exceeded", "missing_path_parameter").
	Outcome string

	// DurationMillis is the total handling time in milliseconds.
	DurationMillis int64
}

// Storage persists journal records.
type Storage interface {
	// Save persists a single record.
	Save(ctx context.Context, rec *Record) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// DeleteOlderThan removes records with a timestamp before cutoff and
	// returns the number deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases resources held by the backend.
	Close() error
}

// Recorder enqueues journal records onto a bounded channel drained by a
// single writer goroutine. Enqueueing never blocks the request path: when the
// buffer is full the record is dropped and counted.
type Recorder struct {
	storage      Storage
	bufferSize   int
	writeTimeout time.Duration
	recordCh     chan *Record
	done         chan struct{}
	wg           sync.WaitGroup
	closeOnce    sync.Once
	dropped      atomic.Int64
	logger       *slog.Logger
}

// NewRecorder creates a recorder writing to the provided storage backend and
// starts its writer goroutine. Buffer size and write timeout come from cfg;
// zero values fall back to the package defaults.
func NewRecorder(storage Storage, cfg *config.JournalConfig) *Recorder {
	bufferSize := config.DefaultJournalBufferSize
	writeTimeout := config.DefaultJournalWriteTimeout
	if cfg != nil {
		if cfg.BufferSize > 0 {
			bufferSize = cfg.BufferSize
		}
		if cfg.WriteTimeout > 0 {
			writeTimeout = cfg.WriteTimeout
		}
	}

	r := &Recorder{
		storage:      storage,
		bufferSize:   bufferSize,
		writeTimeout: writeTimeout,
		recordCh:     make(chan *Record, bufferSize),
		done:         make(chan struct{}),
		logger:       slog.Default().With("component", "journal.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("journal recorder started",
		"buffer_size", bufferSize,
		"write_timeout", writeTimeout,
	)

	return r
}

// Record enqueues a record for asynchronous writing. It assigns the record's
// ID and timestamp when unset, and returns false when the buffer is full and
// the record was dropped.
func (r *Recorder) Record(rec *Record) bool {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	select {
	case r.recordCh <- rec:
		return true
	default:
		dropped := r.dropped.Add(1)
		r.logger.Warn("journal buffer full, dropping record",
			"record_id", rec.ID,
			"request_id", rec.RequestID,
			"dropped_total", dropped,
		)
		return false
	}
}

// Dropped returns the number of records dropped because the buffer was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops accepting work, drains the buffer to storage, and waits for the
// writer goroutine to exit. The storage backend is not closed; that is the
// caller's responsibility.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
	return nil
}

// worker drains the record channel and writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case rec := <-r.recordCh:
			r.writeRecord(rec)

		case <-r.done:
			pending := len(r.recordCh)
			if pending > 0 {
				r.logger.Info("draining journal buffer before shutdown",
					"pending_count", pending,
				)
			}
			for {
				select {
				case rec := <-r.recordCh:
					r.writeRecord(rec)
				default:
					return
				}
			}
		}
	}
}

// writeRecord writes a single record to storage with a bounded timeout.
func (r *Recorder) writeRecord(rec *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	start := time.Now()

	if err := r.storage.Save(ctx, rec); err != nil {
		r.logger.Error("failed to store journal record",
			"record_id", rec.ID,
			"request_id", rec.RequestID,
			"error", err,
		)
		return
	}

	if elapsed := time.Since(start); elapsed > r.writeTimeout/2 {
		r.logger.Warn("slow journal write",
			"record_id", rec.ID,
			"duration_ms", elapsed.Milliseconds(),
		)
	}
}
