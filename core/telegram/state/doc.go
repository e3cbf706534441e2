// Package state keeps per-user conversation sessions in memory.
// Sessions are plain values: the store knows nothing about the flow that owns them,
// so an idle sweep can drop stale entries by timestamp alone.
package state
