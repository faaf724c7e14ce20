package store

import (
	"errors"
	"fmt"
)

// Error is returned by every store operation that fails.
//
// Error includes the table and, for file operations, the path involved.
// Err carries the underlying cause when the failure wraps a lower-level one.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Table is the name of the table involved.
	Table string

	// Path is the file involved (Serialize/Deserialize only).
	Path string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeDuplicateTable indicates CreateTable on a type that already has a table.
	ErrCodeDuplicateTable ErrorCode = "DUPLICATE_TABLE"

	// ErrCodeTableNotFound indicates an operation on a type that was never created.
	ErrCodeTableNotFound ErrorCode = "TABLE_NOT_FOUND"

	// ErrCodeInsertion indicates the insert factory failed.
	ErrCodeInsertion ErrorCode = "INSERTION"

	// ErrCodeIO indicates a file could not be read or written.
	ErrCodeIO ErrorCode = "IO"

	// ErrCodeSerialization indicates a table could not be encoded.
	ErrCodeSerialization ErrorCode = "SERIALIZATION"

	// ErrCodeDeserialization indicates a table file could not be decoded.
	ErrCodeDeserialization ErrorCode = "DESERIALIZATION"
)

var messages = map[ErrorCode]string{
	ErrCodeDuplicateTable:  "table already exists",
	ErrCodeTableNotFound:   "table not found",
	ErrCodeInsertion:       "insert failed",
	ErrCodeIO:              "file input-output failed",
	ErrCodeSerialization:   "serialization failed",
	ErrCodeDeserialization: "deserialization failed",
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s (table=%s)", e.Code, messages[e.Code], e.Table)
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s (table=%s, path=%s)", e.Code, messages[e.Code], e.Table, e.Path)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsDuplicateTable returns true if err is a duplicate table error.
func IsDuplicateTable(err error) bool { return CodeOf(err) == ErrCodeDuplicateTable }

// IsTableNotFound returns true if err is a table not found error.
func IsTableNotFound(err error) bool { return CodeOf(err) == ErrCodeTableNotFound }

// IsInsertion returns true if err is an insertion error.
func IsInsertion(err error) bool { return CodeOf(err) == ErrCodeInsertion }

// IsIO returns true if err is a file input-output error.
func IsIO(err error) bool { return CodeOf(err) == ErrCodeIO }

// IsSerialization returns true if err is a serialization error.
func IsSerialization(err error) bool { return CodeOf(err) == ErrCodeSerialization }

// IsDeserialization returns true if err is a deserialization error.
func IsDeserialization(err error) bool { return CodeOf(err) == ErrCodeDeserialization }

func newError(code ErrorCode, table string, cause error) *Error {
	return &Error{Code: code, Table: table, Err: cause}
}

func newFileError(code ErrorCode, table, path string, cause error) *Error {
	return &Error{Code: code, Table: table, Path: path, Err: cause}
}
