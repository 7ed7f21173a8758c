package vcr

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderOrderAndCase(t *testing.T) {
	var h Header
	h = h.Add("X-B", "1")
	h = h.Add("x-a", "2")
	h = h.Add("x-b", "3")

	assert.Equal(t, Header{
		{Name: "X-B", Values: []string{"1", "3"}},
		{Name: "x-a", Values: []string{"2"}},
	}, h)
	assert.Equal(t, "1", h.Get("X-b"))
	assert.True(t, h.Has("X-A"))

	h = h.Set("x-B", "4")
	assert.Equal(t, "X-B", h[0].Name, "Set keeps the position and spelling")
	assert.Equal(t, []string{"4"}, h.Values("x-b"))

	h = h.Del("X-B")
	assert.False(t, h.Has("x-b"))
	assert.Equal(t, "", h.Get("missing"))
}

func TestHeaderCloneIsDeep(t *testing.T) {
	h := Header{{Name: "A", Values: []string{"1"}}}
	c := h.Clone()
	c[0].Values[0] = "2"
	assert.Equal(t, "1", h.Get("A"))
	assert.True(t, Header(nil).Equal(Header{}))
	assert.False(t, h.Equal(c))
}

func TestHeaderAddAndSetLeaveReceiver(t *testing.T) {
	h := Header{{Name: "A", Values: []string{"1"}}}
	alias := h

	added := h.Add("a", "2")
	set := h.Set("A", "3")
	assert.Equal(t, []string{"1"}, h.Values("A"))
	assert.Equal(t, []string{"1"}, alias.Values("A"))
	assert.Equal(t, []string{"1", "2"}, added.Values("A"))
	assert.Equal(t, []string{"3"}, set.Values("A"))

	// Spare capacity is not shared between results.
	base := make(Header, 1, 4)
	base[0] = HeaderField{Name: "A", Values: []string{"1"}}
	b := base.Add("B", "x")
	c := base.Add("C", "y")
	assert.True(t, b.Has("B"))
	assert.False(t, b.Has("C"))
	assert.True(t, c.Has("C"))
	assert.Len(t, base, 1)
}

func TestHeaderHTTPConversion(t *testing.T) {
	src := http.Header{"B": {"2"}, "A": {"1", "1b"}}
	h := HeaderFromHTTP(src)
	assert.Equal(t, "A", h[0].Name, "names are sorted")
	assert.Equal(t, "B", h[1].Name)
	assert.Equal(t, src, h.HTTP())
}
