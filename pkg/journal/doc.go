// Package journal provides an optional asynchronous request journal backed
// by SQLite.
//
// Records are metadata-only summaries of handled proxy requests. The Recorder
// enqueues them onto a bounded channel drained by a single writer goroutine;
// when the buffer is full, records are dropped rather than blocking the
// request path. A cron-scheduled Pruner enforces the retention period.
//
// The journal is disabled by default. When disabled, no recorder goroutine
// runs and no database file is created; callers hold a nil *Recorder and
// skip it.
package journal
