package engine

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes engine failures.
type ErrorCode string

const (
	// CodeNotFound indicates a requested invoice id or path is absent.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeItemNotFound indicates a line-item id is absent within the
	// focal document.
	CodeItemNotFound ErrorCode = "ITEM_NOT_FOUND"

	// CodeNoFocalDocument indicates a mutation was attempted with
	// nothing loaded.
	CodeNoFocalDocument ErrorCode = "NO_FOCAL_DOCUMENT"

	// CodeNothingToUndo indicates the undo stack is empty.
	CodeNothingToUndo ErrorCode = "NOTHING_TO_UNDO"

	// CodeNothingToRedo indicates the redo stack is empty.
	CodeNothingToRedo ErrorCode = "NOTHING_TO_REDO"

	// CodeSerialization indicates a malformed stored or incoming payload.
	CodeSerialization ErrorCode = "SERIALIZATION"

	// CodeIO indicates a blob read/write/create failure.
	CodeIO ErrorCode = "IO"
)

// Error is a typed engine failure.
//
// Every public operation returns one of these on failure; none are
// retried internally. ID and ItemID identify the affected invoice and
// line item where applicable.
type Error struct {
	Code    ErrorCode
	Message string
	ID      string
	ItemID  string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.ID != "" && e.ItemID != "":
		return fmt.Sprintf("%s: %s (invoice=%s, item=%s)", e.Code, e.Message, e.ID, e.ItemID)
	case e.ID != "":
		return fmt.Sprintf("%s: %s (invoice=%s)", e.Code, e.Message, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf extracts the engine error code from err, or "" if err is not an
// engine Error.
func CodeOf(err error) ErrorCode {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// IsNotFound reports whether err is a NOT_FOUND engine error.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// IsItemNotFound reports whether err is an ITEM_NOT_FOUND engine error.
func IsItemNotFound(err error) bool { return CodeOf(err) == CodeItemNotFound }

// IsNoFocalDocument reports whether err is a NO_FOCAL_DOCUMENT engine error.
func IsNoFocalDocument(err error) bool { return CodeOf(err) == CodeNoFocalDocument }

// IsNothingToUndo reports whether err is a NOTHING_TO_UNDO engine error.
func IsNothingToUndo(err error) bool { return CodeOf(err) == CodeNothingToUndo }

// IsNothingToRedo reports whether err is a NOTHING_TO_REDO engine error.
func IsNothingToRedo(err error) bool { return CodeOf(err) == CodeNothingToRedo }

func errNotFound(id string, cause error) *Error {
	return &Error{Code: CodeNotFound, Message: "invoice not found", ID: id, Err: cause}
}

func errItemNotFound(id, itemID string) *Error {
	return &Error{Code: CodeItemNotFound, Message: "line item not found", ID: id, ItemID: itemID}
}

func errNoFocalDocument() *Error {
	return &Error{Code: CodeNoFocalDocument, Message: "no invoice currently loaded"}
}

func errNothingToUndo() *Error {
	return &Error{Code: CodeNothingToUndo, Message: "nothing to undo"}
}

func errNothingToRedo() *Error {
	return &Error{Code: CodeNothingToRedo, Message: "nothing to redo"}
}

func errIO(msg string, id string, cause error) *Error {
	return &Error{Code: CodeIO, Message: msg, ID: id, Err: cause}
}
