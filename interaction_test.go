package vcr

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestRestoresBody(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "http://example.com/a?b=c", strings.NewReader("payload"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/plain")

	rec, err := NewRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "POST", rec.Method)
	assert.Equal(t, "http://example.com/a?b=c", rec.URL)
	assert.Equal(t, "text/plain", rec.Header.Get("content-type"))
	assert.Equal(t, []byte("payload"), rec.Body)

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))
	again, err := req.GetBody()
	require.NoError(t, err)
	body, err = io.ReadAll(again)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))
}

func TestNewRequestWithoutBody(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.com/", nil)
	require.NoError(t, err)
	rec, err := NewRequest(req)
	require.NoError(t, err)
	assert.Empty(t, rec.Body)
}

func TestResponseHTTP(t *testing.T) {
	version := "HTTP/2.0"
	res := Response{
		Status:  http.StatusTeapot,
		Version: &version,
		Header:  Header{{Name: "x-tea", Values: []string{"earl grey"}}},
		Body:    []byte("short and stout"),
	}
	req, _ := http.NewRequest(http.MethodGet, "http://example.com/", nil)

	out := res.HTTP(req)
	assert.Equal(t, "418 I'm a teapot", out.Status)
	assert.Equal(t, 2, out.ProtoMajor)
	assert.Equal(t, "earl grey", out.Header.Get("X-Tea"))
	assert.Equal(t, int64(15), out.ContentLength)
	assert.Same(t, req, out.Request)
	body, err := io.ReadAll(out.Body)
	require.NoError(t, err)
	assert.Equal(t, "short and stout", string(body))

	back, err := NewResponse(out)
	require.NoError(t, err)
	assert.True(t, res.Equal(back))

	res.Version = nil
	assert.Equal(t, "HTTP/1.1", res.HTTP(req).Proto)
}

func TestInteractionCloneAndEqual(t *testing.T) {
	version := "HTTP/1.1"
	in := Interaction{
		Request:  Request{Method: "GET", URL: "u", Body: []byte("a")},
		Response: Response{Status: 200, Version: &version, Body: []byte("b")},
	}
	c := in.Clone()
	require.True(t, in.Equal(c))
	c.Response.Body[0] = 'x'
	*c.Response.Version = "HTTP/2.0"
	assert.Equal(t, []byte("b"), in.Response.Body)
	assert.Equal(t, "HTTP/1.1", *in.Response.Version)
	assert.False(t, in.Equal(c))

	empty := Request{Method: "GET", URL: "u", Body: []byte{}}
	assert.True(t, empty.Equal(Request{Method: "GET", URL: "u"}))
}
