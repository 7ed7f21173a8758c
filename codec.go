package vcr

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Keys used in the cassette document. Each interaction is stored as two
// consecutive entries of the top-level sequence:
//
//	- request:
//	    method: GET
//	    url: http://localhost:8000/v1/view_something
//	    headers:
//	      content-type:
//	        - application/json
//	    body: ""
//	- response:
//	    status: 200
//	    version: null
//	    headers: {}
//	    body: W3NvbWV0aGluZ10=
//
// Bodies are base64 so that arbitrary bytes survive a round trip.
const (
	requestKey  = "request"
	responseKey = "response"

	methodKey  = "method"
	urlKey     = "url"
	statusKey  = "status"
	versionKey = "version"
	headersKey = "headers"
	bodyKey    = "body"
)

// Encode serializes interactions as a cassette document.
func Encode(interactions []Interaction) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.SequenceNode}
	for _, in := range interactions {
		root.Content = append(root.Content,
			entryNode(requestKey, requestNode(in.Request)),
			entryNode(responseKey, responseNode(in.Response)),
		)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("vcr: encode cassette: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("vcr: encode cassette: %w", err)
	}
	return buf.Bytes(), nil
}

func entryNode(key string, value *yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{strNode(key), value}}
}

func requestNode(r Request) *yaml.Node {
	return mapNode(
		methodKey, strNode(r.Method),
		urlKey, strNode(r.URL),
		headersKey, headerNode(r.Header),
		bodyKey, strNode(base64.StdEncoding.EncodeToString(r.Body)),
	)
}

func responseNode(r Response) *yaml.Node {
	version := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	if r.Version != nil {
		version = strNode(*r.Version)
	}
	return mapNode(
		statusKey, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(r.Status)},
		versionKey, version,
		headersKey, headerNode(r.Header),
		bodyKey, strNode(base64.StdEncoding.EncodeToString(r.Body)),
	)
}

func headerNode(h Header) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range h {
		values := &yaml.Node{Kind: yaml.SequenceNode}
		for _, v := range f.Values {
			values.Content = append(values.Content, strNode(v))
		}
		n.Content = append(n.Content, strNode(f.Name), values)
	}
	return n
}

func mapNode(kv ...any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i < len(kv); i += 2 {
		n.Content = append(n.Content, strNode(kv[i].(string)), kv[i+1].(*yaml.Node))
	}
	return n
}

// strNode returns a string scalar. Text that is not valid UTF-8 cannot be
// written as a YAML string, so it is left untagged and the encoder emits it
// as !!binary.
func strNode(s string) *yaml.Node {
	if !utf8.ValidString(s) {
		return &yaml.Node{Kind: yaml.ScalarNode, Value: s}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// scalarValue returns the string held by a scalar node, decoding !!binary
// scalars.
func scalarValue(n *yaml.Node) (string, error) {
	if n.Tag != "!!binary" {
		return n.Value, nil
	}
	b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
	if err != nil {
		return "", &FormatError{Line: n.Line, Msg: "invalid !!binary value", Err: err}
	}
	return string(b), nil
}

// Decode parses a cassette document. Empty input decodes to an empty
// cassette. Any structural problem, including a request without a
// following response or a second YAML document after a "---" separator,
// yields a *FormatError.
func Decode(data []byte) ([]Interaction, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &FormatError{Msg: "invalid YAML", Err: err}
	}
	for {
		var extra yaml.Node
		err := dec.Decode(&extra)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &FormatError{Msg: "invalid YAML", Err: err}
		}
		// A bare trailing "---" yields an empty document.
		if len(extra.Content) > 0 && !isNull(resolve(extra.Content[0])) {
			return nil, formatErr(&extra, "multiple YAML documents")
		}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := resolve(doc.Content[0])
	if isNull(root) {
		return nil, nil
	}
	if root.Kind != yaml.SequenceNode {
		return nil, formatErr(root, "top level must be a sequence of request and response entries")
	}
	if len(root.Content)%2 != 0 {
		last := root.Content[len(root.Content)-1]
		return nil, formatErr(last, "odd number of entries: request without a response")
	}

	interactions := make([]Interaction, 0, len(root.Content)/2)
	for i := 0; i < len(root.Content); i += 2 {
		reqNode, err := entryValue(root.Content[i], requestKey)
		if err != nil {
			return nil, err
		}
		resNode, err := entryValue(root.Content[i+1], responseKey)
		if err != nil {
			return nil, err
		}
		req, err := decodeRequest(reqNode)
		if err != nil {
			return nil, err
		}
		res, err := decodeResponse(resNode)
		if err != nil {
			return nil, err
		}
		interactions = append(interactions, Interaction{Request: req, Response: res})
	}
	return interactions, nil
}

func entryValue(n *yaml.Node, want string) (*yaml.Node, error) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return nil, formatErr(n, fmt.Sprintf("expected a single-key %q entry", want))
	}
	if key := n.Content[0].Value; key != want {
		return nil, formatErr(n, fmt.Sprintf("expected %q entry, found %q", want, key))
	}
	v := resolve(n.Content[1])
	if v.Kind != yaml.MappingNode {
		return nil, formatErr(v, fmt.Sprintf("%s must be a mapping", want))
	}
	return v, nil
}

func fields(n *yaml.Node) map[string]*yaml.Node {
	m := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		m[n.Content[i].Value] = resolve(n.Content[i+1])
	}
	return m
}

func decodeRequest(n *yaml.Node) (Request, error) {
	f := fields(n)
	var (
		req Request
		err error
	)
	if req.Method, err = requiredScalar(n, f, methodKey); err != nil {
		return Request{}, err
	}
	if req.URL, err = requiredScalar(n, f, urlKey); err != nil {
		return Request{}, err
	}
	if req.Header, err = decodeHeader(f[headersKey]); err != nil {
		return Request{}, err
	}
	if req.Body, err = decodeBody(f[bodyKey]); err != nil {
		return Request{}, err
	}
	return req, nil
}

func decodeResponse(n *yaml.Node) (Response, error) {
	f := fields(n)
	var res Response
	status, err := requiredScalar(n, f, statusKey)
	if err != nil {
		return Response{}, err
	}
	if res.Status, err = strconv.Atoi(status); err != nil {
		return Response{}, formatErr(f[statusKey], "status must be an integer")
	}
	if v, ok := f[versionKey]; ok && !isNull(v) {
		if v.Kind != yaml.ScalarNode {
			return Response{}, formatErr(v, "version must be a string or null")
		}
		version, err := scalarValue(v)
		if err != nil {
			return Response{}, err
		}
		res.Version = &version
	}
	if res.Header, err = decodeHeader(f[headersKey]); err != nil {
		return Response{}, err
	}
	if res.Body, err = decodeBody(f[bodyKey]); err != nil {
		return Response{}, err
	}
	return res, nil
}

func requiredScalar(parent *yaml.Node, f map[string]*yaml.Node, key string) (string, error) {
	v, ok := f[key]
	if !ok || isNull(v) {
		return "", formatErr(parent, fmt.Sprintf("missing %q", key))
	}
	if v.Kind != yaml.ScalarNode {
		return "", formatErr(v, fmt.Sprintf("%q must be a scalar", key))
	}
	return scalarValue(v)
}

// decodeHeader accepts a mapping of names to lists of values. A single
// scalar value is accepted in place of a one-element list.
func decodeHeader(n *yaml.Node) (Header, error) {
	if n == nil || isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, formatErr(n, "headers must be a mapping")
	}
	var h Header
	for i := 0; i+1 < len(n.Content); i += 2 {
		name, err := scalarValue(n.Content[i])
		if err != nil {
			return nil, err
		}
		v := resolve(n.Content[i+1])
		switch {
		case isNull(v):
			h = h.Add(name)
		case v.Kind == yaml.ScalarNode:
			value, err := scalarValue(v)
			if err != nil {
				return nil, err
			}
			h = h.Add(name, value)
		case v.Kind == yaml.SequenceNode:
			values := make([]string, 0, len(v.Content))
			for _, item := range v.Content {
				item = resolve(item)
				if item.Kind != yaml.ScalarNode {
					return nil, formatErr(item, fmt.Sprintf("header %q values must be strings", name))
				}
				value, err := scalarValue(item)
				if err != nil {
					return nil, err
				}
				values = append(values, value)
			}
			h = h.Add(name, values...)
		default:
			return nil, formatErr(v, fmt.Sprintf("header %q must be a list of strings", name))
		}
	}
	return h, nil
}

func decodeBody(n *yaml.Node) ([]byte, error) {
	if n == nil || isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.ScalarNode {
		return nil, formatErr(n, "body must be a base64 string")
	}
	// Hand-edited bodies may be wrapped across lines.
	s := strings.Join(strings.Fields(n.Value), "")
	if s == "" {
		return nil, nil
	}
	body, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &FormatError{Line: n.Line, Msg: "body is not valid base64", Err: err}
	}
	return body, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func formatErr(n *yaml.Node, msg string) *FormatError {
	return &FormatError{Line: n.Line, Msg: msg}
}
