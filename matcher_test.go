package vcr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcherFind(t *testing.T) {
	get := Request{Method: "GET", URL: "http://example.com/a"}
	post := Request{Method: "POST", URL: "http://example.com/a", Body: []byte("x")}
	recorded := []Interaction{
		{Request: get, Response: Response{Status: 1}},
		{Request: post, Response: Response{Status: 2}},
		{Request: get, Response: Response{Status: 3}},
	}
	m := Matcher{}

	assert.Equal(t, 0, m.Find(get, recorded, nil))
	assert.Equal(t, 2, m.Find(get, recorded, []bool{true}))
	assert.Equal(t, NoMatch, m.Find(get, recorded, []bool{true, false, true}))
	assert.Equal(t, 1, m.Find(post, recorded, nil))

	lower := get
	lower.Method = "get"
	assert.Equal(t, NoMatch, m.Find(lower, recorded, nil), "method is case-sensitive")

	query := get
	query.URL += "?"
	assert.Equal(t, NoMatch, m.Find(query, recorded, nil))

	emptyBody := post
	emptyBody.Body = nil
	assert.Equal(t, NoMatch, m.Find(emptyBody, recorded, nil))
}

func TestMatcherIgnoresHeaders(t *testing.T) {
	recorded := []Interaction{{
		Request: Request{
			Method: "GET",
			URL:    "http://example.com/",
			Header: Header{{Name: "Date", Values: []string{"Fri, 28 May 2021 00:44:58 GMT"}}},
		},
	}}
	a := Request{Method: "GET", URL: "http://example.com/", Header: Header{{Name: "Authorization", Values: []string{"a"}}}}
	b := Request{Method: "GET", URL: "http://example.com/"}

	m := Matcher{}
	assert.Equal(t, 0, m.Find(a, recorded, nil))
	assert.Equal(t, 0, m.Find(b, recorded, nil))
}

func TestMatcherReuse(t *testing.T) {
	req := Request{Method: "GET", URL: "http://example.com/"}
	recorded := []Interaction{{Request: req}, {Request: req}}
	m := Matcher{Reuse: true}
	assert.Equal(t, 0, m.Find(req, recorded, []bool{true, true}))
}

func TestMatcherExhausted(t *testing.T) {
	req := Request{Method: "GET", URL: "http://example.com/"}
	recorded := []Interaction{{Request: req}}
	m := Matcher{}
	assert.True(t, m.Exhausted(req, recorded))
	assert.False(t, m.Exhausted(Request{Method: "HEAD", URL: req.URL}, recorded))
	assert.False(t, m.Exhausted(req, nil))
}
