package vcr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactHeaders(t *testing.T) {
	req := Request{Header: Header{
		{Name: "authorization", Values: []string{"Bearer a", "Bearer b"}},
		{Name: "Accept", Values: []string{"*/*"}},
	}}
	out, err := applyRequestHooks([]RequestHook{RedactRequestHeaders(DefaultSensitiveHeaders(), "***")}, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"***", "***"}, out.Header.Values("Authorization"))
	assert.Equal(t, "*/*", out.Header.Get("Accept"))
	assert.Equal(t, "Bearer a", req.Header.Get("Authorization"), "hooks work on a copy")
	assert.False(t, out.Header.Has("Cookie"))

	names := NewStringSet("X-Trace")
	names.Add("X-Span")
	names.Del("X-Trace")
	res := Response{Header: Header{
		{Name: "X-Trace", Values: []string{"t"}},
		{Name: "x-span", Values: []string{"s"}},
	}}
	redacted, err := applyResponseHooks([]ResponseHook{RedactResponseHeaders(names, "")}, res)
	require.NoError(t, err)
	assert.Equal(t, "t", redacted.Header.Get("X-Trace"))
	assert.Equal(t, []string{""}, redacted.Header.Values("X-Span"))
}

func TestHooksRunInOrder(t *testing.T) {
	appendTo := func(s string) RequestHook {
		return func(r Request) (Request, error) {
			r.Body = append(r.Body, s...)
			return r, nil
		}
	}
	out, err := applyRequestHooks([]RequestHook{appendTo("a"), appendTo("b")}, Request{})
	require.NoError(t, err)
	assert.Equal(t, "ab", string(out.Body))
}
