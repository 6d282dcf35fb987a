package storage

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Factory is a function type that creates a new storage backend.
// This is used to abstract the creation of the backend from its consumers.
type Factory func() Storage

// Storage is the capability contract of every backend. Data is organized in
// named tables that are created implicitly on first access, so no method ever
// fails because a table has never been touched: reading from an unknown table
// behaves like reading from an empty one.
type Storage interface {
	// Get returns the current value for a key. The boolean indicates whether the key was found.
	Get(table, key string) (value Value, found bool, err error)
	// Set inserts or overwrites a key. If the key existed, the previous value is returned
	// and replaced is true.
	Set(table, key string, value Value) (prev Value, replaced bool, err error)
	// Contains reports whether a key exists in the table.
	Contains(table, key string) (found bool, err error)
	// Delete removes a key. If the key existed, the removed value is returned and found is true.
	Delete(table, key string) (prev Value, found bool, err error)
	// GetAll returns a snapshot of all pairs in the table. The order is unspecified.
	GetAll(table string) (pairs []Kvpair, err error)
	// GetIter returns a lazy sequence over the pairs of the table. Every call produces a
	// new sequence; whether it reflects mutations made during iteration is backend specific.
	GetIter(table string) (seq iter.Seq[Kvpair], err error)
}

// Info holds metadata about a storage backend.
// It is not guaranteed that all fields are filled in or that the information is up-to-date!
type Info struct {
	Backend   string      `json:"backend"`
	Tables    int         `json:"tables"`
	Keys      int         `json:"keys"`
	SizeBytes int         `json:"size_bytes"`
	Metadata  interface{} `json:"metadata"`
}

// InfoProvider is implemented by backends that can report statistics about themselves.
type InfoProvider interface {
	GetInfo() (info Info)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message
}

// Error implements the error interface.
func (e *Error) Error() string {
	if prefix := e.Code.messagePrefix(); prefix != "" {
		return prefix + e.Msg
	}
	return fmt.Sprintf("Unknown error (code %d): %s", e.Code, e.Msg)
}

// ParseError rebuilds an Error from a code and the text produced by Error(),
// e.g. after the message has been sent over the wire.
func ParseError(code RetCode, message string) *Error {
	return NewError(code, strings.TrimPrefix(message, code.messagePrefix()))
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// NewNotFoundError reports a key that is absent from a table
func NewNotFoundError(table, key string) *Error {
	return NewError(RetCNotFound, fmt.Sprintf("for table: %s, key: %s", table, key))
}

// NewInvalidCommandError reports a malformed request
func NewInvalidCommandError(format string, args ...any) *Error {
	return NewError(RetCInvalidCommand, fmt.Sprintf(format, args...))
}

// NewInternalError reports an unexpected code path
func NewInternalError(format string, args ...any) *Error {
	return NewError(RetCInternalError, fmt.Sprintf(format, args...))
}

// NewStorageError reports a failure of the backend itself
func NewStorageError(format string, args ...any) *Error {
	return NewError(RetCStorageError, fmt.Sprintf(format, args...))
}

// CodeOf extracts the RetCode of an error. Errors that are not (or do not wrap)
// an *Error are reported as RetCInternalError, nil as RetCSuccess.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return RetCInternalError
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess        RetCode = iota // 0: Command executed successfully.
	RetCNotFound                      // 1: The requested key does not exist.
	RetCInvalidCommand                // 2: The request is malformed or incomplete.
	RetCInternalError                 // 3: An unexpected code path was reached.
	RetCStorageError                  // 4: The backend reported a failure.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCNotFound:
		return "NotFound"
	case RetCInvalidCommand:
		return "InvalidCommand"
	case RetCInternalError:
		return "InternalError"
	case RetCStorageError:
		return "StorageError"
	default:
		return "Unknown"
	}
}

func (c RetCode) messagePrefix() string {
	switch c {
	case RetCNotFound:
		return "Not found "
	case RetCInvalidCommand:
		return "Invalid command: "
	case RetCInternalError:
		return "Internal error: "
	case RetCStorageError:
		return "Storage error: "
	default:
		return ""
	}
}
