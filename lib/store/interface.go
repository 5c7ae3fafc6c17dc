package store

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Backend names the storage mechanism behind an IStore
type Backend string

const (
	BackendSession Backend = "session" // Session scoped storage on a db.KVDB
	BackendCookie  Backend = "cookie"  // Cookies of the current document
)

// IStore is the generic interface for persisting small values across page loads.
// Values are either plain text or JSON structured data, see Encode and Decode.
// All write operations return only an error (nil on success),
// while read operations return the requested data along with an error (nil on success).
// Errors returned by implementations are of type *Error.
type IStore interface {
	// Get returns the value for a key. The boolean return value indicates whether a value for the key was found.
	// A payload starting with '{' is returned as map[string]any, every other payload as string.
	Get(key string) (value any, loaded bool, err error)
	// Set persists a value under key. Strings are stored verbatim, other values as JSON.
	// Setting an empty key is a no-op.
	Set(key string, value any) (err error)
	// Remove deletes the value for key. Removing an empty or missing key is a no-op.
	Remove(key string) (err error)
	// Backend reports which mechanism persists the values.
	Backend() Backend
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new store Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by underlying database.
	RetCInvalidOperation                    // 3: Invalid operation.
	RetCMalformedValue                      // 4: Persisted payload can not be decoded.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCMalformedValue:
		return "MalformedValue"
	default:
		return "Unknown"
	}
}

// IsCode reports whether err is a *Error carrying code
func IsCode(err error, code RetCode) bool {
	var storeErr *Error
	if !errors.As(err, &storeErr) {
		return false
	}
	return storeErr.Code == code
}
