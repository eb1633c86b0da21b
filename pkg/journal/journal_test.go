package journal

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"fastplanner/anvil/pkg/config"
)

// stubStorage is an in-memory Storage for tests. Save can be gated to hold
// the writer goroutine, or forced to fail.
type stubStorage struct {
	mu       sync.Mutex
	records  []*Record
	failNext int

	// saveGate, when non-nil, blocks Save until the channel is closed.
	saveGate chan struct{}
	// saveStarted, when non-nil, receives one signal per Save call entry.
	saveStarted chan struct{}

	lastCutoff  time.Time
	deleteCount int64
	deleteErr   error
}

func (s *stubStorage) Save(ctx context.Context, rec *Record) error {
	if s.saveStarted != nil {
		s.saveStarted <- struct{}{}
	}
	if s.saveGate != nil {
		<-s.saveGate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext > 0 {
		s.failNext--
		return fmt.Errorf("storage unavailable")
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *stubStorage) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.records)), nil
}

func (s *stubStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCutoff = cutoff
	return s.deleteCount, s.deleteErr
}

func (s *stubStorage) Close() error { return nil }

func (s *stubStorage) saved() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}


// waitForSaved polls until the stub holds want records or the deadline hits.
func waitForSaved(t *testing.T, store *stubStorage, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if store.saved() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("stored %d records, want %d", store.saved(), want)
}

func testJournalConfig(bufferSize int) *config.JournalConfig {
	return &config.JournalConfig{
		Enabled:      true,
		BufferSize:   bufferSize,
		WriteTimeout: time.Second,
	}
}

// ============================================================
// Recorder
// ============================================================

func TestRecorder_AssignsIDAndTimestamp(t *testing.T) {
	store := &stubStorage{}
	recorder := NewRecorder(store, testJournalConfig(8))
	defer recorder.Close()

	rec := &Record{RouteName: "NOAA", Method: "GET", StatusCode: 200, Outcome: "success"}
	if !recorder.Record(rec) {
		t.Fatal("Record() returned false with empty buffer")
	}

	if rec.ID == "" {
		t.Error("Record() did not assign an ID")
	}
	if _, err := uuid.Parse(rec.ID); err != nil {
		t.Errorf("assigned ID %q is not a UUID: %v", rec.ID, err)
	}
	if rec.Timestamp.IsZero() {
		t.Error("Record() did not assign a timestamp")
	}
}

func TestRecorder_PreservesCallerIDAndTimestamp(t *testing.T) {
	store := &stubStorage{}
	recorder := NewRecorder(store, testJournalConfig(8))
	defer recorder.Close()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := &Record{ID: "fixed-id", Timestamp: ts}
	recorder.Record(rec)

	if rec.ID != "fixed-id" {
		t.Errorf("ID overwritten to %q", rec.ID)
	}
	if !rec.Timestamp.Equal(ts) {
		t.Errorf("timestamp overwritten to %v", rec.Timestamp)
	}
}

func TestRecorder_WritesRecordsToStorage(t *testing.T) {
	store := &stubStorage{}
	recorder := NewRecorder(store, testJournalConfig(8))
	defer recorder.Close()

	for i := 0; i < 3; i++ {
		recorder.Record(&Record{RouteName: "AWC", Method: "GET", StatusCode: 200, Outcome: "success"})
	}

	waitForSaved(t, store, 3)

	if got := recorder.Dropped(); got != 0 {
		t.Errorf("Dropped() = %d, want 0", got)
	}
}

func TestRecorder_DropsWhenBufferFull(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan struct{}, 1)
	store := &stubStorage{saveGate: gate, saveStarted: started}

	recorder := NewRecorder(store, testJournalConfig(1))

	// First record is picked up by the worker, which blocks in Save.
	recorder.Record(&Record{RequestID: "first"})
	<-started

	// Second record fills the single-slot buffer.
	if !recorder.Record(&Record{RequestID: "second"}) {
		t.Fatal("second record should fit in the buffer")
	}

	// Third record has nowhere to go.
	if recorder.Record(&Record{RequestID: "third"}) {
		t.Error("third record should have been dropped")
	}
	if got := recorder.Dropped(); got != 1 {
		t.Errorf("Dropped() = %d, want 1", got)
	}

	// Unblock storage; Close drains the buffered record.
	close(gate)
	if err := recorder.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	if got := store.saved(); got != 2 {
		t.Errorf("stored %d records, want 2", got)
	}
}

func TestRecorder_CloseDrainsBuffer(t *testing.T) {
	store := &stubStorage{}
	recorder := NewRecorder(store, testJournalConfig(16))

	for i := 0; i < 10; i++ {
		recorder.Record(&Record{StatusCode: 200, Outcome: "success"})
	}

	if err := recorder.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	if got := store.saved(); got != 10 {
		t.Errorf("stored %d records after Close, want 10", got)
	}
}

func TestRecorder_CloseIsIdempotent(t *testing.T) {
	recorder := NewRecorder(&stubStorage{}, testJournalConfig(4))

	if err := recorder.Close(); err != nil {
		t.Fatalf("first Close() failed: %v", err)
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("second Close() failed: %v", err)
	}
}

func TestRecorder_SurvivesStorageErrors(t *testing.T) {
	store := &stubStorage{failNext: 1}
	recorder := NewRecorder(store, testJournalConfig(8))
	defer recorder.Close()

	// The first write fails; the worker must keep draining.
	recorder.Record(&Record{RequestID: "lost"})
	recorder.Record(&Record{RequestID: "kept"})

	waitForSaved(t, store, 1)

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.records[0].RequestID != "kept" {
		t.Errorf("stored record = %q, want %q", store.records[0].RequestID, "kept")
	}
}

func TestRecorder_NilConfigUsesDefaults(t *testing.T) {
	recorder := NewRecorder(&stubStorage{}, nil)
	defer recorder.Close()

	if recorder.bufferSize != config.DefaultJournalBufferSize {
		t.Errorf("bufferSize = %d, want %d", recorder.bufferSize, config.DefaultJournalBufferSize)
	}
	if recorder.writeTimeout != config.DefaultJournalWriteTimeout {
		t.Errorf("writeTimeout = %v, want %v", recorder.writeTimeout, config.DefaultJournalWriteTimeout)
	}
}
