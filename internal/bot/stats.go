package bot

import "sync/atomic"

// Stats tracks poll-loop counters using atomic operations, so the gateway
// can read a snapshot from its own goroutine without locking.
type Stats struct {
	updates      atomic.Int64
	commands     atomic.Int64
	inline       atomic.Int64
	pollErrors   atomic.Int64
	lastUpdateID atomic.Int64
}

// RecordUpdate records one fetched update.
func (s *Stats) RecordUpdate(updateID int64) {
	s.updates.Add(1)
	s.lastUpdateID.Store(updateID)
}

// RecordCommand records one dispatched command.
func (s *Stats) RecordCommand() {
	s.commands.Add(1)
}

// RecordInline records one dispatched inline query.
func (s *Stats) RecordInline() {
	s.inline.Add(1)
}

// RecordPollError records one failed poll iteration.
func (s *Stats) RecordPollError() {
	s.pollErrors.Add(1)
}

// Snapshot returns a consistent point-in-time view of the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Updates:       s.updates.Load(),
		Commands:      s.commands.Load(),
		InlineQueries: s.inline.Load(),
		PollErrors:    s.pollErrors.Load(),
		LastUpdateID:  s.lastUpdateID.Load(),
	}
}

// StatsSnapshot is a serializable point-in-time counters view.
type StatsSnapshot struct {
	Updates       int64 `json:"updates"`
	Commands      int64 `json:"commands"`
	InlineQueries int64 `json:"inline_queries"`
	PollErrors    int64 `json:"poll_errors"`
	LastUpdateID  int64 `json:"last_update_id"`
}
