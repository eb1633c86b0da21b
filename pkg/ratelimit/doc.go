// Package ratelimit implements the per-client sliding-window rate limiter.
//
// Each client key owns an ordered window of request timestamps. A request is
// admitted by pruning entries older than the window, comparing the pruned
// length against the ceiling, and appending the new timestamp, all under one
// lock, so the decision and the record are atomic per key. Two requests
// racing for the last slot can never both win.
//
// The client table is sharded: a key always lands on the same shard, and
// distinct keys on distinct shards never contend. A background sweep removes
// clients whose windows have gone entirely stale; it only discards entries a
// prune would discard anyway and never affects admission decisions.
//
// State is in-memory only and is lost on restart. That is intentional: the
// limiter protects upstream quotas within a process lifetime, it is not an
// accounting system.
package ratelimit
