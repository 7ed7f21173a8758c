package vcr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Mode selects whether an Engine records live traffic or replays a cassette.
type Mode int

const (
	// ModeRecord sends requests to the live server and appends each
	// exchange to the cassette.
	ModeRecord Mode = iota
	// ModeReplay answers requests from the cassette without network access.
	ModeReplay
)

func (m Mode) String() string {
	switch m {
	case ModeRecord:
		return "record"
	case ModeReplay:
		return "replay"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses "record" or "replay". "play" is accepted for replay.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "record":
		return ModeRecord, nil
	case "replay", "play":
		return ModeReplay, nil
	}
	return 0, fmt.Errorf("vcr: unknown mode %q", s)
}

// A LiveFunc performs a request against the real server. It is only called
// in ModeRecord.
type LiveFunc func(ctx context.Context, req Request) (Response, error)

// An Engine records or replays the interactions of one cassette. Its mode is
// fixed when it is opened. An Engine is safe for concurrent use.
type Engine struct {
	mode    Mode
	store   *Store
	matcher Matcher
	logger  *slog.Logger

	mu            sync.RWMutex
	requestHooks  []RequestHook
	responseHooks []ResponseHook
}

// Open returns an Engine for the cassette at path. Opening for replay reads
// the whole cassette; opening for record creates the file if it is missing.
// Errors are *IOError or *FormatError.
func Open(mode Mode, path string, opts ...Option) (*Engine, error) {
	if mode != ModeRecord && mode != ModeReplay {
		return nil, fmt.Errorf("vcr: invalid mode %v", mode)
	}
	o := options{logger: slog.Default().With("component", "vcr")}
	for _, opt := range opts {
		opt(&o)
	}
	store, err := OpenStore(path, mode)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		mode:          mode,
		store:         store,
		matcher:       o.matcher,
		logger:        o.logger.With("cassette", store.Path(), "mode", mode.String()),
		requestHooks:  o.requestHooks,
		responseHooks: o.responseHooks,
	}
	e.logger.Debug("cassette opened", "interactions", len(store.Interactions()))
	return e, nil
}

// Mode returns the Engine's mode.
func (e *Engine) Mode() Mode { return e.mode }

// Path returns the absolute path of the cassette file.
func (e *Engine) Path() string { return e.store.Path() }

// Interactions returns a copy of the cassette's interactions as currently
// held in memory.
func (e *Engine) Interactions() []Interaction { return e.store.Interactions() }

// ModifyRequest registers a hook applied to requests before they are
// recorded. Hooks run in registration order and never in ModeReplay.
func (e *Engine) ModifyRequest(hook RequestHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requestHooks = append(e.requestHooks, hook)
}

// ModifyResponse registers a hook applied to responses before they are
// recorded.
func (e *Engine) ModifyResponse(hook ResponseHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.responseHooks = append(e.responseHooks, hook)
}

// Handle answers req.
//
// In ModeReplay the earliest unconsumed matching interaction is returned and
// marked consumed; live is not called. If nothing matches, a *MismatchError
// is returned and the cassette state is unchanged.
//
// In ModeRecord live is called with a copy of req. The exchange is passed
// through the registered hooks and appended to the cassette, and the
// response exactly as live returned it is handed back. If the hooks or the
// append fail, that response is still returned together with the error.
func (e *Engine) Handle(ctx context.Context, req Request, live LiveFunc) (Response, error) {
	switch e.mode {
	case ModeReplay:
		return e.replay(req)
	default:
		return e.record(ctx, req, live)
	}
}

func (e *Engine) replay(req Request) (Response, error) {
	in, err := e.store.Lookup(req, e.matcher)
	if err != nil {
		var mismatch *MismatchError
		if errors.As(err, &mismatch) {
			e.logger.Warn("no recorded interaction for request",
				"method", req.Method, "url", req.URL, "exhausted", mismatch.Exhausted)
		}
		return Response{}, err
	}
	e.logger.Debug("replayed interaction", "method", req.Method, "url", req.URL, "status", in.Response.Status)
	return in.Response, nil
}

func (e *Engine) record(ctx context.Context, req Request, live LiveFunc) (Response, error) {
	if e.store.isClosed() {
		return Response{}, ErrClosed
	}
	if live == nil {
		return Response{}, errors.New("vcr: record mode requires a live function")
	}
	captured := req.Clone()
	res, err := live(ctx, req.Clone())
	if err != nil {
		return Response{}, err
	}

	e.mu.RLock()
	reqHooks, resHooks := e.requestHooks, e.responseHooks
	e.mu.RUnlock()

	persistReq, err := applyRequestHooks(reqHooks, captured)
	if err != nil {
		e.logger.Warn("interaction not recorded", "method", req.Method, "url", req.URL, "error", err)
		return res, err
	}
	persistRes, err := applyResponseHooks(resHooks, res)
	if err != nil {
		e.logger.Warn("interaction not recorded", "method", req.Method, "url", req.URL, "error", err)
		return res, err
	}
	if err := e.store.Append(Interaction{Request: persistReq, Response: persistRes}); err != nil {
		return res, err
	}
	e.logger.Debug("recorded interaction", "method", req.Method, "url", req.URL, "status", res.Status)
	return res, nil
}

// Close ends the session. Every recorded interaction is already durable in
// the cassette file when Close returns, and later calls to Handle fail with
// ErrClosed.
func (e *Engine) Close() error {
	if err := e.store.Close(); err != nil {
		return err
	}
	e.logger.Debug("cassette closed")
	return nil
}
