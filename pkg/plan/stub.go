package plan

import (
	"fmt"
	"slices"

	"github.com/getmockd/httpspy/internal/storage"
	"github.com/getmockd/httpspy/pkg/exchange"
	"github.com/getmockd/httpspy/pkg/expect"
)

// Stub answers each request with the response of the first matching
// expectation, in declaration order.
type Stub struct {
	entries []Entry

	interactions storage.Log[Interaction]
	unmatched    storage.Log[*exchange.Request]
	failures     storage.Log[error]
}

var (
	_ Plan            = (*Stub)(nil)
	_ OutcomeResolver = (*Stub)(nil)
	_ Recorder        = (*Stub)(nil)
)

// NewStub builds a Stub from entries. Earlier entries take priority.
func NewStub(entries ...Entry) (*Stub, error) {
	if err := validateEntries(entries); err != nil {
		return nil, err
	}
	return &Stub{entries: slices.Clone(entries)}, nil
}

// Resolve returns the response of the first expectation matching req. An
// expectation that cannot be evaluated counts as not matching and is
// reported by Verify. Unmatched requests get a 500 diagnostic.
func (s *Stub) Resolve(req *exchange.Request) *exchange.Response {
	resp, _ := s.ResolveOutcome(req)
	return resp
}

// ResolveOutcome is Resolve, also reporting the recorded outcome.
func (s *Stub) ResolveOutcome(req *exchange.Request) (*exchange.Response, Outcome) {
	for i, e := range s.entries {
		ok, err := e.Expectation.Matches(req)
		if err != nil {
			s.failures.Append(fmt.Errorf("expectation #%d could not be evaluated against %s: %w", i, req, err))
			continue
		}
		if ok {
			o := Outcome{Kind: OutcomeMatched, Index: i}
			s.interactions.Append(Interaction{Request: req, Outcome: o})
			return e.Response, o
		}
	}

	o := Outcome{Kind: OutcomeUnmatched, Index: -1}
	s.interactions.Append(Interaction{Request: req, Outcome: o})
	s.unmatched.Append(req)
	return diagnostic("Unmatched request: " + req.String()), o
}

// Verify fails when any request went unmatched. It also fails when every
// request matched but some entry raised a structural error while being
// scanned, such as an XML body expectation meeting a non-XML request; the
// report then lists those entries under "Stub expectations could not be
// evaluated:".
func (s *Stub) Verify() error {
	unmatched := s.unmatched.Snapshot()
	title := "Unmatched requests received:"
	if len(unmatched) == 0 {
		title = "Stub expectations could not be evaluated:"
	}
	r := NewReport(title)

	for _, req := range unmatched {
		f := Finding{Position: -1, Request: req, Message: req.String()}
		if idx, ev, ok := s.nearestMiss(req); ok {
			f.Details = append(f.Details, fmt.Sprintf("nearest expectation #%d: %s", idx, s.entries[idx].Expectation.Describe()))
			for _, c := range ev.Failures() {
				f.Details = append(f.Details, c.Description+" "+c.Mismatch)
			}
		}
		r.Add(f)
	}
	for _, err := range s.failures.Snapshot() {
		r.AddError(err)
	}

	return r.Err()
}

// nearestMiss returns the entry whose expectation passed the most checks
// for req. Ties go to the earlier entry.
func (s *Stub) nearestMiss(req *exchange.Request) (int, expect.Evaluation, bool) {
	best := -1
	var bestEval expect.Evaluation
	for i, e := range s.entries {
		ev := e.Expectation.Evaluate(req)
		if len(ev.Checks) == 0 {
			continue
		}
		if best < 0 || ev.Passed() > bestEval.Passed() {
			best, bestEval = i, ev
		}
	}
	return best, bestEval, best >= 0
}

// Reset clears the recorded interactions and unmatched requests.
func (s *Stub) Reset() {
	s.interactions.Clear()
	s.unmatched.Clear()
	s.failures.Clear()
}

// Multithreaded returns true.
func (s *Stub) Multithreaded() bool { return true }

// Len returns the number of expectations.
func (s *Stub) Len() int { return len(s.entries) }

// Interactions returns a snapshot of every resolved request.
func (s *Stub) Interactions() []Interaction { return s.interactions.Snapshot() }

// Unmatched returns a snapshot of the unmatched requests.
func (s *Stub) Unmatched() []*exchange.Request { return s.unmatched.Snapshot() }
