package vcr

import "strings"

// StringSet implements a set of string values.
type StringSet map[string]struct{}

// NewStringSet returns a new set initialized with optional values.
func NewStringSet(args ...string) StringSet {
	ss := make(StringSet, len(args))
	ss.Add(args...)
	return ss
}

// Add adds the provided value(s) to the set.
func (ss StringSet) Add(args ...string) {
	for i := range args {
		ss[args[i]] = struct{}{}
	}
}

// Del removes the provided value(s) from the set.
func (ss StringSet) Del(args ...string) {
	for i := range args {
		delete(ss, args[i])
	}
}

// hasFold reports whether the set contains name, ignoring case.
func (ss StringSet) hasFold(name string) bool {
	if _, ok := ss[name]; ok {
		return true
	}
	for k := range ss {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// DefaultSensitiveHeaders returns the headers that commonly carry
// credentials.
func DefaultSensitiveHeaders() StringSet {
	return NewStringSet(
		"Authorization",
		"Cookie",
		"Proxy-Authorization",
		"Set-Cookie",
		"X-Api-Key",
	)
}

// RedactRequestHeaders returns a RequestHook that replaces every value of
// the named headers with replacement. Headers that are absent stay absent.
func RedactRequestHeaders(names StringSet, replacement string) RequestHook {
	return func(req Request) (Request, error) {
		req.Header = redactHeader(req.Header, names, replacement)
		return req, nil
	}
}

// RedactResponseHeaders is the ResponseHook counterpart of
// RedactRequestHeaders.
func RedactResponseHeaders(names StringSet, replacement string) ResponseHook {
	return func(res Response) (Response, error) {
		res.Header = redactHeader(res.Header, names, replacement)
		return res, nil
	}
}

func redactHeader(h Header, names StringSet, replacement string) Header {
	for i := range h {
		if !names.hasFold(h[i].Name) {
			continue
		}
		for j := range h[i].Values {
			h[i].Values[j] = replacement
		}
	}
	return h
}
