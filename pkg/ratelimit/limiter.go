package ratelimit

import (
	"hash/fnv"
	"sync"
	"time"
)

const (
	// DefaultWindow is the sliding window size applied when none is
	// configured.
	DefaultWindow = 900 * time.Second

	// DefaultMaxRequests is the per-client ceiling within the window.
	DefaultMaxRequests = 1000

	// DefaultSweepInterval is how often the background sweep removes
	// clients whose windows have gone stale.
	DefaultSweepInterval = 5 * time.Minute

	// defaultShardCount bounds lock contention between distinct clients.
	// Must be a power of two is not required; shard choice is hash modulo.
	defaultShardCount = 32
)

// Config configures a Limiter. Zero values fall back to the defaults above;
// MaxRequests is the exception, where an explicit 0 means "reject
// everything" and only a negative value selects the default.
type Config struct {
	// Window is the sliding window size.
	Window time.Duration

	// MaxRequests is the per-client request ceiling within Window.
	// 0 rejects all requests; negative selects DefaultMaxRequests.
	MaxRequests int

	// SweepInterval is how often stale client entries are removed in the
	// background. 0 selects the default; negative disables the sweep.
	SweepInterval time.Duration

	// ShardCount is the number of independently locked window shards.
	// 0 selects the default.
	ShardCount int
}

// Snapshot is a point-in-time view of limiter state, taken without
// mutation. Window lengths are reported as stored; entries outside the
// window that no prune has visited yet are included, exactly as the live
// table holds them.
type Snapshot struct {
	// ActiveClients is the number of tracked client keys.
	ActiveClients int

	// TotalRecorded is the sum of all window lengths.
	TotalRecorded int
}

// shard is one independently locked slice of the client table. All
// operations for a given client key land on the same shard, which is what
// makes the check-and-record decision atomic per key.
type shard struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

// Limiter enforces a per-client sliding-window rate limit. State lives
// entirely in memory and is torn down with the process.
//
// The limiter is safe for concurrent use. Requests for the same client key
// serialize on that key's shard; requests for different keys proceed in
// parallel on distinct shards.
type Limiter struct {
	window      time.Duration
	maxRequests int
	shards      []*shard

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Limiter and, unless the sweep is disabled, starts its
// background sweep goroutine. Callers own the limiter's lifecycle and must
// Close it to stop the sweep.
func New(cfg Config) *Limiter {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.MaxRequests < 0 {
		cfg.MaxRequests = DefaultMaxRequests
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.ShardCount <= 0 {
		cfg.ShardCount = defaultShardCount
	}

	l := &Limiter{
		window:      cfg.Window,
		maxRequests: cfg.MaxRequests,
		shards:      make([]*shard, cfg.ShardCount),
		done:        make(chan struct{}),
	}
	for i := range l.shards {
		l.shards[i] = &shard{windows: make(map[string][]time.Time)}
	}

	if cfg.SweepInterval > 0 {
		go l.sweepLoop(cfg.SweepInterval)
	}

	return l
}

// CheckAndRecord prunes the client's window to entries newer than
// now-window, rejects without recording when the pruned length has reached
// the ceiling, and otherwise records now and accepts. The prune, the
// decision, and the append happen under one lock, so two racing requests
// for the same key can never both claim the last remaining slot.
func (l *Limiter) CheckAndRecord(clientKey string, now time.Time) bool {
	s := l.shardFor(clientKey)
	cutoff := now.Add(-l.window)

	s.mu.Lock()
	defer s.mu.Unlock()

	window := s.windows[clientKey]
	kept := window[:0]
	for _, ts := range window {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.maxRequests {
		// Keep the pruned window; the rejected request is not recorded.
		if len(kept) == 0 && len(window) == 0 {
			// maxRequests == 0 with an unseen key: do not allocate an entry.
			return false
		}
		s.windows[clientKey] = kept
		return false
	}

	s.windows[clientKey] = append(kept, now)
	return true
}

// Snapshot reports the current client count and the sum of all window
// lengths without mutating any window.
func (l *Limiter) Snapshot() Snapshot {
	var snap Snapshot
	for _, s := range l.shards {
		s.mu.Lock()
		snap.ActiveClients += len(s.windows)
		for _, window := range s.windows {
			snap.TotalRecorded += len(window)
		}
		s.mu.Unlock()
	}
	return snap
}

// Window returns the configured sliding window size.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// MaxRequests returns the configured per-client ceiling.
func (l *Limiter) MaxRequests() int {
	return l.maxRequests
}

// Close stops the background sweep. The limiter remains usable for checks
// afterwards; only the sweep stops.
func (l *Limiter) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}

// sweepLoop periodically removes entries that a prune would remove anyway:
// stale timestamps and clients whose windows emptied. It never influences
// accept/reject outcomes, it only bounds memory under churning client
// populations.
func (l *Limiter) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep(time.Now())
		case <-l.done:
			return
		}
	}
}

// sweep prunes every window against now and drops empty clients.
func (l *Limiter) sweep(now time.Time) {
	cutoff := now.Add(-l.window)
	for _, s := range l.shards {
		s.mu.Lock()
		for key, window := range s.windows {
			kept := window[:0]
			for _, ts := range window {
				if ts.After(cutoff) {
					kept = append(kept, ts)
				}
			}
			if len(kept) == 0 {
				delete(s.windows, key)
				continue
			}
			s.windows[key] = kept
		}
		s.mu.Unlock()
	}
}

// shardFor hashes the client key onto its shard. FNV-1a keeps the mapping
// stable and cheap; the same key always lands on the same shard.
func (l *Limiter) shardFor(clientKey string) *shard {
	h := fnv.New32a()
	h.Write([]byte(clientKey))
	return l.shards[h.Sum32()%uint32(len(l.shards))]
}
