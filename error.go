package vcr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrFormat is matched by every *FormatError.
	ErrFormat = errors.New("vcr: malformed cassette")
	// ErrReplayMismatch is matched by every *MismatchError.
	ErrReplayMismatch = errors.New("vcr: no recorded interaction matches request")
	// ErrHook is matched by every *HookError.
	ErrHook = errors.New("vcr: redaction hook failed")
	// ErrClosed is returned when an Engine or Store is used after Close.
	ErrClosed = errors.New("vcr: cassette closed")
)

// IOError reports a failure to open, create, read or write a cassette file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("vcr: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// FormatError reports cassette content that does not have the expected
// structure. Line is the 1-based line of the offending YAML node, or 0 if
// it is not known.
type FormatError struct {
	Path string
	Line int
	Msg  string
	Err  error
}

func (e *FormatError) Error() string {
	s := "vcr: malformed cassette"
	if e.Path != "" {
		s += " " + e.Path
	}
	if e.Line > 0 {
		s += fmt.Sprintf(" (line %d)", e.Line)
	}
	s += ": " + e.Msg
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// MismatchError is returned in replay mode when no unconsumed recorded
// interaction matches a request. Exhausted is true if some interaction did
// match but all such interactions have already been replayed.
type MismatchError struct {
	Request   Request
	Exhausted bool
}

func (e *MismatchError) Error() string {
	if e.Exhausted {
		return fmt.Sprintf("vcr: recorded interactions for %s %s already replayed", e.Request.Method, e.Request.URL)
	}
	return fmt.Sprintf("vcr: no recorded interaction for %s %s", e.Request.Method, e.Request.URL)
}

func (e *MismatchError) Is(target error) bool { return target == ErrReplayMismatch }

// HookError wraps an error returned, or a panic raised, by a redaction hook.
// Stage is "request" or "response".
type HookError struct {
	Stage string
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("vcr: %s hook: %v", e.Stage, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

func (e *HookError) Is(target error) bool { return target == ErrHook }

// Error is an error that may be returned by RoundTripper, and thus by the
// *http.Client returned by NewClient. It can be used to differentiate an
// error encountered when replaying or saving an interaction versus errors
// returned by the http package, such as for URL or network errors.
type Error struct {
	// Request is the *http.Request that was being processed when the error
	// occurred.
	Request *http.Request
	// Response is the *http.Response that was being processed when the error
	// occurred. It is nil unless the error occurred while saving a live
	// response.
	Response *http.Response
	// Err is the underlying error, usually one of the error types above.
	Err error
}

func (r *Error) Error() string {
	return r.Err.Error()
}

func (r *Error) Unwrap() error { return r.Err }
