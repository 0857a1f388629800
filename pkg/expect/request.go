package expect

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/getmockd/httpspy/pkg/exchange"
)

type checkKind int

const (
	checkAttribute checkKind = iota
	checkHeader
	checkHeaderAt
	checkWithoutHeader
	checkStrictHeaders
)

// Deriver extracts one attribute from a request. ok is false when the
// attribute is absent.
type Deriver func(req *exchange.Request) (value string, ok bool)

type check struct {
	kind   checkKind
	label  string
	name   string
	index  int
	derive Deriver
	value  Value
}

// Request is a predicate over a whole request: the conjunction of its checks.
// The zero Request matches every request.
type Request struct {
	checks []check
	strict bool
	err    error
}

// CheckResult is the outcome of one check of a Request.
type CheckResult struct {
	Description string
	Matched     bool
	Mismatch    string
	Err         error
}

// Evaluation is the full, non-short-circuited result of a Request against one
// request.
type Evaluation struct {
	Matched bool
	Checks  []CheckResult
	Err     error
}

// Passed returns the number of checks that matched.
func (e Evaluation) Passed() int {
	n := 0
	for _, c := range e.Checks {
		if c.Matched {
			n++
		}
	}
	return n
}

// Failures returns the checks that did not match.
func (e Evaluation) Failures() []CheckResult {
	var out []CheckResult
	for _, c := range e.Checks {
		if !c.Matched {
			out = append(out, c)
		}
	}
	return out
}

// AnyRequest returns an expectation that matches every request.
func AnyRequest() Request { return Request{} }

func (r Request) with(c check) Request {
	r.checks = append(slices.Clone(r.checks), c)
	return r
}

func (r Request) fail(err error) Request {
	if r.err == nil {
		r.err = err
	}
	return r
}

// Err returns the first builder misuse recorded on r, if any.
func (r Request) Err() error { return r.err }

// Method binds v to the request method.
func (r Request) Method(v Value) Request {
	return r.with(check{kind: checkAttribute, label: "method", derive: deriveMethod, value: v})
}

// Path binds v to the request path.
func (r Request) Path(v Value) Request {
	return r.with(check{kind: checkAttribute, label: "path", derive: derivePath, value: v})
}

// Body binds v to the request body.
func (r Request) Body(v Value) Request {
	return r.with(check{kind: checkAttribute, label: "body", derive: deriveBody, value: v})
}

// Attribute binds v to a value derived from the request by derive.
func (r Request) Attribute(label string, derive Deriver, v Value) Request {
	if derive == nil {
		return r.fail(invalid("attribute %q has no deriver", label))
	}
	if strings.TrimSpace(label) == "" {
		return r.fail(invalid("attribute label must not be blank"))
	}
	return r.with(check{kind: checkAttribute, label: label, derive: derive, value: v})
}

// HasHeader requires the header to be present with any value.
func (r Request) HasHeader(name string) Request {
	return r.Header(name, Any())
}

// Header requires the header to be present with at least one value matching v.
func (r Request) Header(name string, v Value) Request {
	if strings.TrimSpace(name) == "" {
		return r.fail(invalid("header name must not be blank"))
	}
	return r.with(check{kind: checkHeader, name: name, value: v})
}

// HeaderAt requires the header value at index to match v.
func (r Request) HeaderAt(name string, index int, v Value) Request {
	if strings.TrimSpace(name) == "" {
		return r.fail(invalid("header name must not be blank"))
	}
	if index < 0 {
		return r.fail(invalid("header %q value index must not be negative, got %d", name, index))
	}
	return r.with(check{kind: checkHeaderAt, name: name, index: index, value: v})
}

// WithoutHeader requires the header to be absent.
func (r Request) WithoutHeader(name string) Request {
	if strings.TrimSpace(name) == "" {
		return r.fail(invalid("header name must not be blank"))
	}
	return r.with(check{kind: checkWithoutHeader, name: name})
}

// StrictHeaders requires the request's header names to be exactly those
// referenced by Header, HasHeader and HeaderAt, in any order.
func (r Request) StrictHeaders() Request {
	r.strict = true
	return r
}

// referencedHeaders returns the sorted set of header names this expectation
// checks for presence or value.
func (r Request) referencedHeaders() []string {
	var names []string
	for _, c := range r.checks {
		if (c.kind == checkHeader || c.kind == checkHeaderAt) && !slices.Contains(names, c.name) {
			names = append(names, c.name)
		}
	}
	slices.Sort(names)
	return names
}

func (r Request) allChecks() []check {
	if !r.strict {
		return r.checks
	}
	return append(slices.Clone(r.checks), check{kind: checkStrictHeaders})
}

// Matches reports whether req satisfies every check. A structural comparison
// failure is returned as an error and counts as no match.
func (r Request) Matches(req *exchange.Request) (bool, error) {
	for _, c := range r.allChecks() {
		res := r.run(c, req)
		if res.Err != nil {
			return false, res.Err
		}
		if !res.Matched {
			return false, nil
		}
	}
	return true, nil
}

// Evaluate runs every check against req without short-circuiting.
func (r Request) Evaluate(req *exchange.Request) Evaluation {
	checks := r.allChecks()
	ev := Evaluation{Matched: true, Checks: make([]CheckResult, 0, len(checks))}
	var errs []error
	for _, c := range checks {
		res := r.run(c, req)
		if !res.Matched {
			ev.Matched = false
		}
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
		ev.Checks = append(ev.Checks, res)
	}
	ev.Err = errors.Join(errs...)
	return ev
}

// Describe returns the conjunction of check descriptions.
func (r Request) Describe() string {
	checks := r.allChecks()
	if len(checks) == 0 {
		return "any request"
	}
	parts := make([]string, len(checks))
	for i, c := range checks {
		parts[i] = r.describe(c)
	}
	return strings.Join(parts, " and ")
}

// DescribeMismatch lists every failing check for req, one per line.
func (r Request) DescribeMismatch(req *exchange.Request) string {
	failures := r.Evaluate(req).Failures()
	lines := make([]string, len(failures))
	for i, f := range failures {
		lines[i] = f.Description + " " + f.Mismatch
	}
	return strings.Join(lines, "\n")
}

// String implements fmt.Stringer.
func (r Request) String() string { return r.Describe() }

func (r Request) describe(c check) string {
	switch c.kind {
	case checkAttribute:
		return "[" + c.label + " : " + c.value.Describe() + "]"
	case checkHeader:
		return "[header " + c.name + " : " + c.value.Describe() + "]"
	case checkHeaderAt:
		return "[header " + c.name + " - value index " + strconv.Itoa(c.index) + " : " + c.value.Describe() + "]"
	case checkWithoutHeader:
		return "[without header : " + strconv.Quote(c.name) + "]"
	case checkStrictHeaders:
		return "[strict headers : [" + strings.Join(r.referencedHeaders(), " ") + "]]"
	}
	return "[unknown check]"
}

func (r Request) run(c check, req *exchange.Request) CheckResult {
	res := CheckResult{Description: r.describe(c)}

	switch c.kind {
	case checkAttribute:
		actual, ok := c.derive(req)
		if !ok {
			res.Mismatch = "was absent"
			return res
		}
		res.fromValue(c.value, actual)

	case checkHeader:
		values := req.Header.Values(c.name)
		if !req.Header.Has(c.name) {
			res.Mismatch = "was no such header: " + c.name
			return res
		}
		for _, got := range values {
			ok, err := c.value.Matches(got)
			if err != nil {
				res.Err = err
				res.Mismatch = "could not be compared: " + err.Error()
				return res
			}
			if ok {
				res.Matched = true
				return res
			}
		}
		if len(values) == 1 {
			res.Mismatch = c.value.DescribeMismatch(values[0])
			return res
		}
		res.Mismatch = "was [" + strings.Join(values, " ") + "]"

	case checkHeaderAt:
		if !req.Header.Has(c.name) {
			res.Mismatch = "was no such header: " + c.name
			return res
		}
		values := req.Header.Values(c.name)
		if c.index >= len(values) {
			res.Mismatch = "was no value at index " + strconv.Itoa(c.index) + ": [" + strings.Join(values, " ") + "]"
			return res
		}
		res.fromValue(c.value, values[c.index])

	case checkWithoutHeader:
		if req.Header.Has(c.name) {
			res.Mismatch = "was " + c.name + ": [" + strings.Join(req.Header.Values(c.name), " ") + "]"
			return res
		}
		res.Matched = true

	case checkStrictHeaders:
		got := req.Header.Names()
		slices.Sort(got)
		got = slices.Compact(got)
		if slices.Equal(got, r.referencedHeaders()) {
			res.Matched = true
			return res
		}
		res.Mismatch = "was " + req.Header.String()
	}
	return res
}

func (res *CheckResult) fromValue(v Value, actual string) {
	ok, err := v.Matches(actual)
	switch {
	case err != nil:
		res.Err = err
		res.Mismatch = "could not be compared: " + err.Error()
	case ok:
		res.Matched = true
	default:
		res.Mismatch = v.DescribeMismatch(actual)
	}
}

func deriveMethod(req *exchange.Request) (string, bool) { return req.Method, true }
func derivePath(req *exchange.Request) (string, bool)   { return req.Path, true }
func deriveBody(req *exchange.Request) (string, bool)   { return req.Body, true }
