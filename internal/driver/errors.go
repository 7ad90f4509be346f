package driver

import (
	"errors"
	"fmt"
)

// Stage identifies the connection phase in which a native call failed.
type Stage string

const (
	StageInit  Stage = "init"
	StageAuth  Stage = "auth"
	StageQuery Stage = "query"
	StageStart Stage = "start"
)

var (
	// ErrUnsupportedEnvironment means the host OS cannot run the vendor
	// driver at all.
	ErrUnsupportedEnvironment = errors.New("nexusedge: operating system not supported by the native driver")

	// ErrDriverLoad means the driver artifact or one of its exported
	// symbols could not be resolved.
	ErrDriverLoad = errors.New("nexusedge: could not load native driver")

	// ErrAuthenticationFailed means the vendor authentication window
	// reported failure.
	ErrAuthenticationFailed = errors.New("nexusedge: device authentication failed")

	// ErrQueryFailed means a device or channel info query returned falsy.
	ErrQueryFailed = errors.New("nexusedge: device query failed")
)

// AuthRequiredCode is the Init return value signalling that the device needs
// the vendor authentication window before it can be used.
const AuthRequiredCode = -6

// codeMessages maps the absolute value of a native return code to a
// human-readable reason. The order is fixed by the driver protocol.
var codeMessages = []string{
	"OK",
	"No valid Device",
	"Memory allocation failure (Channel info)",
	"False information from device",
	"Could not start device",
	"Could not start Data collection thread",
	"Could not start the Device with the specified serial number",
	"Could not load the Generic Device driver properly",
}

// CodeMessage resolves a native return code against the fixed table.
// Out-of-range codes fall back to an unknown-error message rather than
// indexing out of bounds.
func CodeMessage(code int) string {
	idx := code
	if idx < 0 {
		idx = -idx
	}
	if idx >= len(codeMessages) {
		return fmt.Sprintf("Unknown error (code %d)", code)
	}
	return codeMessages[idx]
}

// ConnectionError reports a failed native call together with the raw code
// and the stage of the connection sequence it interrupted.
type ConnectionError struct {
	Code    int
	Message string
	Stage   Stage
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("nexusedge: %s failed: %s (code %d)", e.Stage, e.Message, e.Code)
}

// NewConnectionError builds a ConnectionError from a raw native return
// code. Code carries the table index, i.e. the absolute value.
func NewConnectionError(stage Stage, ret int) *ConnectionError {
	code := ret
	if code < 0 {
		code = -code
	}
	return &ConnectionError{Code: code, Message: CodeMessage(ret), Stage: stage}
}
