// Package serializer converts events to and from journal rows.
//
// The journal treats payloads as opaque bytes plus a manifest. Serializer is
// the seam where a host plugs in its own encoding; JSON is the built-in
// implementation, writing payloads as canonical JSON.
package serializer

import (
	"fmt"

	"github.com/roach88/journal/internal/store"
)

// Event is a deserialized journal entry.
type Event struct {
	PersistenceID string
	SequenceNr    int64
	Payload       any
	Manifest      string
	Tags          []string
	WriterUUID    string
	Timestamp     int64

	// Ordering is the global insert position. Set on replay only.
	Ordering int64
}

// Serializer converts between events and journal rows.
// Implementations must be safe for concurrent use.
type Serializer interface {
	Serialize(ev Event) (store.JournalRow, error)
	Deserialize(row store.JournalRow) (Event, error)
}

// DefaultManifest is written when an event carries no manifest.
const DefaultManifest = "json"

// JSON serializes payloads as canonical JSON (see Marshal).
// Payloads are limited to strings, integers, booleans, arrays and objects.
type JSON struct{}

var _ Serializer = JSON{}

// Serialize implements Serializer.
func (JSON) Serialize(ev Event) (store.JournalRow, error) {
	msg, err := Marshal(ev.Payload)
	if err != nil {
		return store.JournalRow{}, fmt.Errorf("serialize %s@%d: %w", ev.PersistenceID, ev.SequenceNr, err)
	}

	manifest := ev.Manifest
	if manifest == "" {
		manifest = DefaultManifest
	}

	row := store.JournalRow{
		PersistenceID: ev.PersistenceID,
		SequenceNr:    ev.SequenceNr,
		Tags:          ev.Tags,
		Message:       msg,
		Manifest:      manifest,
		WriterUUID:    ev.WriterUUID,
		Timestamp:     ev.Timestamp,
	}
	if err := row.Validate(); err != nil {
		return store.JournalRow{}, fmt.Errorf("serialize: %w", err)
	}
	return row, nil
}

// Deserialize implements Serializer.
func (JSON) Deserialize(row store.JournalRow) (Event, error) {
	payload, err := Unmarshal(row.Message)
	if err != nil {
		return Event{}, fmt.Errorf("deserialize %s@%d: %w", row.PersistenceID, row.SequenceNr, err)
	}
	return Event{
		PersistenceID: row.PersistenceID,
		SequenceNr:    row.SequenceNr,
		Payload:       payload,
		Manifest:      row.Manifest,
		Tags:          row.Tags,
		WriterUUID:    row.WriterUUID,
		Timestamp:     row.Timestamp,
		Ordering:      row.Ordering,
	}, nil
}
