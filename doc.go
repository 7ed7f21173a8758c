/*
Package vcr records HTTP interactions to cassette files and replays them.

It is primarily intended to give tests of packages that call external HTTP
services repeatable, offline responses. A cassette is a YAML file holding the
requests that were sent and the responses that came back, in the order they
completed. The format is intended to be simple, so that cassettes may be
reviewed in diffs and edited by hand.

An Engine is opened in one of two modes, fixed for its lifetime:

	ModeRecord  requests go to the live server; each exchange is appended
	            to the cassette
	ModeReplay  requests are answered from the cassette; the network is
	            never used

In ModeReplay a request matches a recorded one when the method, the full URL
(query string included) and the body are identical. Headers are ignored.
Each recorded interaction is replayed once, in recording order, so a test
that makes the same request several times sees the recorded responses in
turn. A request with nothing left to match fails with an error that
satisfies errors.Is(err, ErrReplayMismatch).

Request and response hooks registered with ModifyRequest and ModifyResponse
rewrite what is saved, for example to scrub credentials. They never change
what the code under test sees.

Cassette files look like this; bodies are base64:

	- request:
	    method: GET
	    url: http://localhost:8000/v1/view_something
	    headers:
	      Content-Type:
	        - application/json
	    body: ""
	- response:
	    status: 200
	    version: HTTP/1.1
	    headers:
	      Content-Type:
	        - application/json
	    body: W3NvbWV0aGluZ10=

Several engines may record to the same cassette concurrently, for example
from parallel subtests; appends are serialized per file and none are lost.

A simple example use case may look something like this:

	client, engine, err := vcr.NewClient(vcr.ModeReplay, "testdata/widgets.yml")
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()
	res, err := client.Get("http://example.com/see-widgets")
*/
package vcr
