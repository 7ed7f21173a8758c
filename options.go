package vcr

import "log/slog"

type options struct {
	logger        *slog.Logger
	matcher       Matcher
	requestHooks  []RequestHook
	responseHooks []ResponseHook
}

// An Option configures an Engine.
type Option func(*options)

// WithLogger sets the logger used by the Engine. By default it logs to
// slog.Default() with a component attribute of "vcr".
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMatcher replaces the function that decides whether a live request
// corresponds to a recorded one. DefaultMatch is used otherwise.
func WithMatcher(match MatchFunc) Option {
	return func(o *options) { o.matcher.Match = match }
}

// WithReplayReuse lets a recorded interaction be replayed any number of
// times instead of once.
func WithReplayReuse() Option {
	return func(o *options) { o.matcher.Reuse = true }
}

// WithRequestHook registers a hook applied to requests before they are
// recorded. It is equivalent to calling Engine.ModifyRequest after Open.
func WithRequestHook(hook RequestHook) Option {
	return func(o *options) { o.requestHooks = append(o.requestHooks, hook) }
}

// WithResponseHook registers a hook applied to responses before they are
// recorded.
func WithResponseHook(hook ResponseHook) Option {
	return func(o *options) { o.responseHooks = append(o.responseHooks, hook) }
}
