package store

import (
	"fmt"
	"strings"
)

// TagSeparator joins tags in the tags column.
const TagSeparator = ";"

// JournalRow is one persisted event.
//
// Ordering is assigned by the database at insert time and is ignored on
// write. (PersistenceID, SequenceNr) is unique.
type JournalRow struct {
	Ordering      int64
	PersistenceID string
	SequenceNr    int64
	Deleted       bool
	Tags          []string
	Message       []byte
	Manifest      string
	WriterUUID    string
	Timestamp     int64
}

// MetadataRow records the deletion high-water mark for a persistence id.
type MetadataRow struct {
	PersistenceID string
	SequenceNr    int64
}

// journalColumns lists the writable journal columns in insert order.
var journalColumns = []string{
	"persistence_id",
	"sequence_number",
	"deleted",
	"tags",
	"message",
	"manifest",
	"writer_uuid",
	"written_at",
}

// Validate checks the row invariants that the schema cannot express.
func (r JournalRow) Validate() error {
	if r.PersistenceID == "" {
		return fmt.Errorf("persistence id is empty")
	}
	if r.SequenceNr <= 0 {
		return fmt.Errorf("sequence number %d for %q must be positive", r.SequenceNr, r.PersistenceID)
	}
	for _, tag := range r.Tags {
		if tag == "" {
			return fmt.Errorf("empty tag on %q @ %d", r.PersistenceID, r.SequenceNr)
		}
		if strings.Contains(tag, TagSeparator) {
			return fmt.Errorf("tag %q contains separator %q", tag, TagSeparator)
		}
	}
	return nil
}

// values returns the column values in journalColumns order.
func (r JournalRow) values() []any {
	msg := r.Message
	if msg == nil {
		msg = []byte{}
	}
	return []any{
		r.PersistenceID,
		r.SequenceNr,
		r.Deleted,
		encodeTags(r.Tags),
		msg,
		r.Manifest,
		r.WriterUUID,
		r.Timestamp,
	}
}

func encodeTags(tags []string) string {
	return strings.Join(tags, TagSeparator)
}

func decodeTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, TagSeparator)
}
