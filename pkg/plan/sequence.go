package plan

import (
	"fmt"
	"slices"
	"sync"

	"github.com/getmockd/httpspy/pkg/exchange"
)

// Sequence returns responses in declaration order, one per request.
//
// The response at position i is returned to the i-th request whether or not
// that request matches expectation i; mismatches are reported by Verify.
type Sequence struct {
	entries []Entry

	// mu publishes the log to the verifying goroutine. It does not make
	// the order of concurrent callers meaningful.
	mu  sync.Mutex
	log []Interaction
}

var (
	_ Plan            = (*Sequence)(nil)
	_ OutcomeResolver = (*Sequence)(nil)
	_ Recorder        = (*Sequence)(nil)
)

// NewSequence builds a Sequence from entries.
func NewSequence(entries ...Entry) (*Sequence, error) {
	if err := validateEntries(entries); err != nil {
		return nil, err
	}
	return &Sequence{entries: slices.Clone(entries)}, nil
}

// Resolve records req and returns the next response in order. Once every
// response has been used it returns a 500 diagnostic.
func (s *Sequence) Resolve(req *exchange.Request) *exchange.Response {
	resp, _ := s.ResolveOutcome(req)
	return resp
}

// ResolveOutcome is Resolve, also reporting the recorded outcome.
func (s *Sequence) ResolveOutcome(req *exchange.Request) (*exchange.Response, Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := len(s.log)
	if pos < len(s.entries) {
		o := Outcome{Kind: OutcomePositional, Index: pos}
		s.log = append(s.log, Interaction{Request: req, Outcome: o})
		return s.entries[pos].Response, o
	}

	o := Outcome{Kind: OutcomeExhausted, Index: pos}
	s.log = append(s.log, Interaction{Request: req, Outcome: o})
	return diagnostic(fmt.Sprintf("No responses anymore: expected %d requests, received %d; actual request: %s",
		len(s.entries), len(s.log), req)), o
}

// Verify checks the request count, then each request against the
// expectation at its position.
func (s *Sequence) Verify() error {
	log := s.Interactions()
	r := NewReport("Sequence verification failed:")

	if len(log) != len(s.entries) {
		r.Add(Finding{
			Position: -1,
			Message: fmt.Sprintf("count mismatch: expected %d requests, received %d",
				len(s.entries), len(log)),
		})
	}

	for i := range min(len(log), len(s.entries)) {
		req := log[i].Request
		exp := s.entries[i].Expectation
		ev := exp.Evaluate(req)
		if ev.Matched {
			continue
		}
		f := Finding{
			Position: i,
			Request:  req,
			Message:  fmt.Sprintf("request #%d should match expectation %s", i, exp.Describe()),
		}
		for _, c := range ev.Failures() {
			f.Details = append(f.Details, c.Description+" "+c.Mismatch)
		}
		f.Details = append(f.Details, "actual: "+req.String())
		r.Add(f)
		if ev.Err != nil {
			r.errs = append(r.errs, ev.Err)
		}
	}

	return r.Err()
}

// Reset clears the log, making every response available again.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = nil
}

// Multithreaded returns false.
func (s *Sequence) Multithreaded() bool { return false }

// Len returns the number of expectations.
func (s *Sequence) Len() int { return len(s.entries) }

// Interactions returns a snapshot of the recorded interactions.
func (s *Sequence) Interactions() []Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.log)
}
