// Package devtools records dispatch history for inspection and replay.
//
// A Recorder is dispatch middleware that keeps the most recent events in a
// bounded ring. Recorded history can be exported as JSON, summarised per
// event type, or replayed into another dispatcher to rebuild state from a
// fresh registry.
package devtools
