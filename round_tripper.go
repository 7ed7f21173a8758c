package vcr

import (
	"context"
	"errors"
	"net/http"
)

// RoundTripper adapts an Engine to the http.RoundTripper interface. In
// ModeRecord requests are forwarded to Transport; in ModeReplay Transport is
// never used.
type RoundTripper struct {
	// Engine records or replays each request.
	*Engine
	// Transport is used to process HTTP requests in ModeRecord. If nil,
	// http.DefaultTransport is used.
	Transport http.RoundTripper
}

// RoundTrip implements http.RoundTripper. Errors from the cassette engine
// are returned as *Error; errors from Transport are returned unchanged.
func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	recorded, err := NewRequest(req)
	if err != nil {
		return nil, &Error{Request: req, Err: err}
	}

	var (
		liveRes *http.Response
		liveErr error
	)
	live := func(context.Context, Request) (Response, error) {
		liveRes, liveErr = r.transport().RoundTrip(req)
		if liveErr != nil {
			return Response{}, liveErr
		}
		return NewResponse(liveRes)
	}

	res, err := r.Engine.Handle(req.Context(), recorded, live)
	switch {
	case liveErr != nil:
		return nil, liveErr
	case err != nil && liveRes != nil:
		// The live response was read but could not be saved.
		return nil, &Error{Request: req, Response: liveRes, Err: err}
	case err != nil:
		return nil, &Error{Request: req, Err: err}
	case liveRes != nil:
		return liveRes, nil
	}
	return res.HTTP(req), nil
}

func (r *RoundTripper) transport() http.RoundTripper {
	if r.Transport != nil {
		return r.Transport
	}
	return http.DefaultTransport
}

// NewClient returns an *http.Client whose requests are recorded to, or
// replayed from, the cassette at path. The Engine is returned so that the
// caller can register hooks and Close it when done.
func NewClient(mode Mode, path string, opts ...Option) (*http.Client, *Engine, error) {
	engine, err := Open(mode, path, opts...)
	if err != nil {
		return nil, nil, err
	}
	return &http.Client{Transport: &RoundTripper{Engine: engine}}, engine, nil
}

// IsReplayMismatch reports whether err, as returned by an *http.Client
// using a RoundTripper, means no recorded interaction matched the request.
func IsReplayMismatch(err error) bool {
	return errors.Is(err, ErrReplayMismatch)
}
