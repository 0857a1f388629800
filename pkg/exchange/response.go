package exchange

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrInvalidResponse is returned when a response option is out of range.
var ErrInvalidResponse = errors.New("invalid response")

// Response is an immutable HTTP response specification.
type Response struct {
	status int
	body   string
	header Header
	delay  time.Duration
}

// ResponseOption configures a Response.
type ResponseOption func(*responseSpec)

type responseSpec struct {
	status int
	body   string
	header Header
	delay  time.Duration
	err    error
}

func (s *responseSpec) fail(format string, args ...any) {
	if s.err == nil {
		s.err = fmt.Errorf("%w: %s", ErrInvalidResponse, fmt.Sprintf(format, args...))
	}
}

// WithStatus sets the status code, which must be a three-digit HTTP code.
func WithStatus(code int) ResponseOption {
	return func(s *responseSpec) {
		if code < 100 || code > 999 {
			s.fail("status code must be between 100 and 999, got %d", code)
			return
		}
		s.status = code
	}
}

// WithBody sets the response body.
func WithBody(body string) ResponseOption {
	return func(s *responseSpec) {
		s.body = body
	}
}

// WithHeader appends values to a header. Calling it again with the same name
// appends further values.
func WithHeader(name string, values ...string) ResponseOption {
	return func(s *responseSpec) {
		if strings.TrimSpace(name) == "" {
			s.fail("header name must not be blank")
			return
		}
		s.header = s.header.with(name, values...)
	}
}

// WithDelay sets how long the server waits before sending the response.
func WithDelay(d time.Duration) ResponseOption {
	return func(s *responseSpec) {
		if d < 0 {
			s.fail("delay must not be negative, got %s", d)
			return
		}
		s.delay = d
	}
}

// NewResponse builds a Response. Defaults: 200, empty body, no headers, no delay.
func NewResponse(opts ...ResponseOption) (*Response, error) {
	spec := responseSpec{status: http.StatusOK}
	for _, opt := range opts {
		opt(&spec)
	}
	if spec.err != nil {
		return nil, spec.err
	}
	return &Response{
		status: spec.status,
		body:   spec.body,
		header: spec.header,
		delay:  spec.delay,
	}, nil
}

// MustResponse is like NewResponse but panics on error.
func MustResponse(opts ...ResponseOption) *Response {
	r, err := NewResponse(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int { return r.status }

// Body returns the body.
func (r *Response) Body() string { return r.body }

// Header returns the response header.
func (r *Response) Header() Header { return r.header }

// Delay returns the delay before the response is sent.
func (r *Response) Delay() time.Duration { return r.delay }

// String renders the response for logs.
func (r *Response) String() string {
	return fmt.Sprintf("Response{status=%d, body=%q, headers=%s, delay=%s}", r.status, r.body, r.header, r.delay)
}
