package plan

import (
	"errors"
	"strings"

	"github.com/getmockd/httpspy/pkg/exchange"
)

// ErrVerification is matched by every *VerificationError.
var ErrVerification = errors.New("verification failed")

// Finding is one problem discovered by Verify.
type Finding struct {
	// Position is the request position, or -1 when not tied to one.
	Position int
	Request  *exchange.Request
	Message  string
	Details  []string
}

// Report accumulates findings during one Verify call.
type Report struct {
	title    string
	findings []Finding
	errs     []error
}

// NewReport returns an empty report whose error text starts with title.
func NewReport(title string) *Report {
	return &Report{title: title}
}

// Add records a finding.
func (r *Report) Add(f Finding) {
	r.findings = append(r.findings, f)
}

// AddError records an evaluation error, such as a structural comparison
// failure, as a finding and keeps it for errors.Is.
func (r *Report) AddError(err error) {
	r.errs = append(r.errs, err)
	r.findings = append(r.findings, Finding{Position: -1, Message: err.Error()})
}

// Findings returns the recorded findings.
func (r *Report) Findings() []Finding {
	return r.findings
}

// Err returns nil for an empty report, otherwise a *VerificationError.
func (r *Report) Err() error {
	if len(r.findings) == 0 {
		return nil
	}
	return &VerificationError{Title: r.title, Findings: r.findings, Errs: r.errs}
}

// VerificationError aggregates every problem found by one Verify call.
type VerificationError struct {
	Title    string
	Findings []Finding
	Errs     []error
}

func (e *VerificationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Title)
	for _, f := range e.Findings {
		b.WriteByte('\n')
		b.WriteString(f.Message)
		for _, d := range f.Details {
			for line := range strings.SplitSeq(d, "\n") {
				b.WriteString("\n  ")
				b.WriteString(line)
			}
		}
	}
	return b.String()
}

// Is reports ErrVerification equivalence.
func (e *VerificationError) Is(target error) bool { return target == ErrVerification }

// Unwrap exposes the evaluation errors collected during verification.
func (e *VerificationError) Unwrap() []error { return e.Errs }
