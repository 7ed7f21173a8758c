package vcr

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// A Request is the recorded form of an HTTP request. URL is the absolute
// request URL, including any query string.
type Request struct {
	Method string
	URL    string
	Header Header
	Body   []byte
}

// A Response is the recorded form of an HTTP response. Version holds the
// protocol version, such as "HTTP/1.1", and is nil when it is unknown.
type Response struct {
	Status  int
	Version *string
	Header  Header
	Body    []byte
}

// An Interaction is one completed exchange: a request and the response the
// server returned for it.
type Interaction struct {
	Request  Request
	Response Response
}

// NewRequest returns a Request populated from req. The request body is read
// and replaced, so req may still be sent afterwards.
func NewRequest(req *http.Request) (Request, error) {
	body, err := drainBody(&req.Body)
	if err != nil {
		return Request{}, err
	}
	if req.Body != nil && req.Body != http.NoBody {
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	}
	return Request{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: HeaderFromHTTP(req.Header),
		Body:   body,
	}, nil
}

// NewResponse returns a Response populated from res. The response body is
// read and replaced.
func NewResponse(res *http.Response) (Response, error) {
	body, err := drainBody(&res.Body)
	if err != nil {
		return Response{}, err
	}
	var version *string
	if res.Proto != "" {
		proto := res.Proto
		version = &proto
	}
	return Response{
		Status:  res.StatusCode,
		Version: version,
		Header:  HeaderFromHTTP(res.Header),
		Body:    body,
	}, nil
}

func drainBody(rc *io.ReadCloser) ([]byte, error) {
	if *rc == nil || *rc == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(*rc)
	(*rc).Close()
	if err != nil {
		return nil, err
	}
	*rc = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// HTTP returns a new *http.Response built from r, answering req.
func (r Response) HTTP(req *http.Request) *http.Response {
	proto, major, minor := "HTTP/1.1", 1, 1
	if r.Version != nil {
		if ma, mi, ok := http.ParseHTTPVersion(*r.Version); ok {
			proto, major, minor = *r.Version, ma, mi
		}
	}
	body := bytes.Clone(r.Body)
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", r.Status, http.StatusText(r.Status)),
		StatusCode:    r.Status,
		Proto:         proto,
		ProtoMajor:    major,
		ProtoMinor:    minor,
		Header:        r.Header.HTTP(),
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

// Clone returns a deep copy of r.
func (r Request) Clone() Request {
	r.Header = r.Header.Clone()
	r.Body = bytes.Clone(r.Body)
	return r
}

// Clone returns a deep copy of r.
func (r Response) Clone() Response {
	if r.Version != nil {
		v := *r.Version
		r.Version = &v
	}
	r.Header = r.Header.Clone()
	r.Body = bytes.Clone(r.Body)
	return r
}

// Clone returns a deep copy of i.
func (i Interaction) Clone() Interaction {
	return Interaction{Request: i.Request.Clone(), Response: i.Response.Clone()}
}

// Equal reports whether r and o are the same request. A nil body equals an
// empty one.
func (r Request) Equal(o Request) bool {
	return r.Method == o.Method && r.URL == o.URL &&
		r.Header.Equal(o.Header) && bytes.Equal(r.Body, o.Body)
}

// Equal reports whether r and o are the same response.
func (r Response) Equal(o Response) bool {
	if (r.Version == nil) != (o.Version == nil) {
		return false
	}
	if r.Version != nil && *r.Version != *o.Version {
		return false
	}
	return r.Status == o.Status && r.Header.Equal(o.Header) && bytes.Equal(r.Body, o.Body)
}

// Equal reports whether i and o hold equal requests and responses.
func (i Interaction) Equal(o Interaction) bool {
	return i.Request.Equal(o.Request) && i.Response.Equal(o.Response)
}
