// Package journal implements the write path of an append-only event journal.
//
// Events are submitted individually and coalesced by a bounded queue into
// batches that are written in one transaction each. The journal also
// deletes events up to a sequence number, reports the highest sequence
// number of a stream, and replays a stream in order.
//
// Architecture:
//
//	WriteMessages ──► serialize ──► writeQueue ──► persister ──► store
//	                                (coalesce)     (tx per batch)
//
//	Delete / HighestSequenceNr / Replay / Update ─────────────► store
//
// The queue never blocks callers. When it is full the write fails at once
// with QueueOverflow; retrying is left to the caller. Batches may commit out
// of order when Parallelism > 1.
package journal
