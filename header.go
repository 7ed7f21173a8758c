package vcr

import (
	"net/http"
	"sort"
	"strings"
)

// A HeaderField is one header name together with all of its values, in the
// order they were added.
type HeaderField struct {
	Name   string
	Values []string
}

// Header is an ordered set of header fields. Names are compared without
// regard to case, and the spelling used when a name is first added is the
// one that is kept. Unlike http.Header, iteration order is stable, so a
// Header always serializes the same way.
type Header []HeaderField

// HeaderFromHTTP converts an http.Header. Because http.Header is a map,
// names are sorted to give a deterministic order.
func HeaderFromHTTP(h http.Header) Header {
	if len(h) == 0 {
		return nil
	}
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make(Header, 0, len(names))
	for _, name := range names {
		out = out.Add(name, h[name]...)
	}
	return out
}

func (h Header) index(name string) int {
	for i := range h {
		if strings.EqualFold(h[i].Name, name) {
			return i
		}
	}
	return -1
}

// Add appends values to the named field, creating it at the end of the
// Header if it does not exist yet. The updated Header is returned; h itself
// is not modified.
func (h Header) Add(name string, values ...string) Header {
	if i := h.index(name); i >= 0 {
		return h.with(i, append(append([]string(nil), h[i].Values...), values...))
	}
	return append(h[:len(h):len(h)], HeaderField{Name: name, Values: append([]string(nil), values...)})
}

// Set replaces all values of the named field. An existing field keeps its
// position. Like Add, Set returns a new Header and leaves h unchanged.
func (h Header) Set(name string, values ...string) Header {
	if i := h.index(name); i >= 0 {
		return h.with(i, append([]string(nil), values...))
	}
	return h.Add(name, values...)
}

// with returns a copy of h whose i'th field holds values.
func (h Header) with(i int, values []string) Header {
	out := make(Header, len(h))
	copy(out, h)
	out[i].Values = values
	return out
}

// Del removes the named field.
func (h Header) Del(name string) Header {
	if i := h.index(name); i >= 0 {
		return append(h[:i:i], h[i+1:]...)
	}
	return h
}

// Get returns the first value of the named field, or "".
func (h Header) Get(name string) string {
	if i := h.index(name); i >= 0 && len(h[i].Values) > 0 {
		return h[i].Values[0]
	}
	return ""
}

// Values returns all values of the named field.
func (h Header) Values(name string) []string {
	if i := h.index(name); i >= 0 {
		return h[i].Values
	}
	return nil
}

// Has reports whether the named field is present.
func (h Header) Has(name string) bool {
	return h.index(name) >= 0
}

// Clone returns a deep copy of h.
func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	out := make(Header, len(h))
	for i, f := range h {
		out[i] = HeaderField{Name: f.Name, Values: append([]string(nil), f.Values...)}
	}
	return out
}

// Equal reports whether h and o hold the same fields in the same order.
// Names are compared without regard to case; values must match exactly.
func (h Header) Equal(o Header) bool {
	if len(h) != len(o) {
		return false
	}
	for i := range h {
		if !strings.EqualFold(h[i].Name, o[i].Name) || len(h[i].Values) != len(o[i].Values) {
			return false
		}
		for j := range h[i].Values {
			if h[i].Values[j] != o[i].Values[j] {
				return false
			}
		}
	}
	return true
}

// HTTP converts h to an http.Header. Names are canonicalized by
// http.Header.Add.
func (h Header) HTTP() http.Header {
	out := make(http.Header, len(h))
	for _, f := range h {
		for _, v := range f.Values {
			out.Add(f.Name, v)
		}
	}
	return out
}
