// Package tasks implements the background operations of the artist tracker.
//
// [SyncEngine] couples the network clients to the stores: it fetches artist
// snapshots and reconciles them into storage, and it keeps the stored OAuth
// credential fresh. Both operations are idempotent and take no arguments
// beyond construction, so the HTTP layer and the scheduler share them.
//
// [Scheduler] invokes the engine on fixed intervals. Every tick is a
// self-contained work item with its own bounded context; ticks share no
// mutable state, and a failed cycle is logged and retried on the next tick.
// The design assumes a single scheduler instance per store; there is no
// distributed locking.
package tasks
