package journal

import (
	"errors"
	"fmt"

	"github.com/roach88/journal/internal/store"
)

// Error is a failure reported by the journal.
//
// Write, delete and update outcomes are either nil or an *Error; the storage
// or serialization cause is available through errors.Unwrap.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// PersistenceID identifies the affected stream, when known.
	PersistenceID string

	// Err is the underlying cause (optional).
	Err error
}

// ErrorCode categorizes journal errors.
type ErrorCode string

const (
	// ErrCodeQueueOverflow indicates the write queue was full at enqueue.
	// The caller must retry or shed load.
	ErrCodeQueueOverflow ErrorCode = "QUEUE_OVERFLOW"

	// ErrCodeQueueClosed indicates the write queue has been shut down.
	ErrCodeQueueClosed ErrorCode = "QUEUE_CLOSED"

	// ErrCodeSerialization indicates an event could not be serialized or
	// a row could not be deserialized.
	ErrCodeSerialization ErrorCode = "SERIALIZATION_FAILED"

	// ErrCodePersist indicates a batch write failed. Applies to every
	// caller merged into the batch.
	ErrCodePersist ErrorCode = "PERSIST_FAILED"

	// ErrCodeDelete indicates a delete transaction failed and was rolled back.
	ErrCodeDelete ErrorCode = "DELETE_FAILED"

	// ErrCodeRollback indicates a rollback attempt failed. Only ever logged.
	ErrCodeRollback ErrorCode = "ROLLBACK_FAILED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.PersistenceID != "" {
		msg += fmt.Sprintf(" (persistence_id=%s)", e.PersistenceID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var je *Error
	if errors.As(err, &je) {
		return je.Code == code
	}
	return false
}

// IsQueueOverflow reports whether err is a queue overflow.
func IsQueueOverflow(err error) bool { return hasCode(err, ErrCodeQueueOverflow) }

// IsQueueClosed reports whether err is a closed-queue rejection.
func IsQueueClosed(err error) bool { return hasCode(err, ErrCodeQueueClosed) }

// IsSerializationFailure reports whether err is a (de)serialization failure.
func IsSerializationFailure(err error) bool { return hasCode(err, ErrCodeSerialization) }

// IsPersistFailure reports whether err is a failed batch write.
func IsPersistFailure(err error) bool { return hasCode(err, ErrCodePersist) }

// IsDeleteFailure reports whether err is a failed delete.
func IsDeleteFailure(err error) bool { return hasCode(err, ErrCodeDelete) }

func newQueueOverflowError(bufferSize int) *Error {
	return &Error{
		Code:    ErrCodeQueueOverflow,
		Message: fmt.Sprintf("failed to enqueue journal row batch write, the queue buffer was full (%d elements)", bufferSize),
	}
}

func newQueueClosedError() *Error {
	return &Error{
		Code:    ErrCodeQueueClosed,
		Message: "failed to enqueue journal row batch write, the queue was closed",
	}
}

func newSerializationError(persistenceID string, err error) *Error {
	return &Error{
		Code:          ErrCodeSerialization,
		Message:       "failed to serialize event",
		PersistenceID: persistenceID,
		Err:           err,
	}
}

func newDeserializationError(row store.JournalRow, err error) *Error {
	return &Error{
		Code:          ErrCodeSerialization,
		Message:       fmt.Sprintf("failed to deserialize row at sequence nr %d", row.SequenceNr),
		PersistenceID: row.PersistenceID,
		Err:           err,
	}
}

func newPersistError(rows int, err error) *Error {
	return &Error{
		Code:    ErrCodePersist,
		Message: fmt.Sprintf("failed to write journal row batch (%d rows)", rows),
		Err:     err,
	}
}

func newDeleteError(persistenceID string, maxSeqNr int64, err error) *Error {
	return &Error{
		Code:          ErrCodeDelete,
		Message:       fmt.Sprintf("failed to delete up to sequence nr %d", maxSeqNr),
		PersistenceID: persistenceID,
		Err:           err,
	}
}

func newRollbackError(err error) *Error {
	return &Error{
		Code:    ErrCodeRollback,
		Message: "rollback failed",
		Err:     err,
	}
}
