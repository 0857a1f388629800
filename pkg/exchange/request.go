package exchange

import (
	"fmt"
	"strconv"
)

// Request is an HTTP request as seen by a test plan.
type Request struct {
	Method string
	Path   string
	Body   string
	Header Header
}

// NewRequest builds a Request.
func NewRequest(method, path, body string, header Header) *Request {
	return &Request{Method: method, Path: path, Body: body, Header: header}
}

// String renders the request for diagnostics, e.g.
// Request{method=POST, path=/api/, body="hi", headers={H1=[v1]}}.
func (r *Request) String() string {
	if r == nil {
		return "Request{<nil>}"
	}
	return fmt.Sprintf("Request{method=%s, path=%s, body=%s, headers=%s}",
		r.Method, r.Path, strconv.Quote(r.Body), r.Header)
}
