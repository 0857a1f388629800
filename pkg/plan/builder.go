package plan

import (
	"fmt"
	"slices"

	"github.com/getmockd/httpspy/pkg/exchange"
	"github.com/getmockd/httpspy/pkg/expect"
)

// builder holds entries and the first error hit while adding them. Every
// method returns a new value.
type builder struct {
	entries []Entry
	err     error
}

func (b builder) add(n int, exp expect.Request, resp *exchange.Response, err error) builder {
	if b.err != nil {
		return b
	}
	switch {
	case err != nil:
		b.err = fmt.Errorf("%w: entry #%d: %w", ErrInvalidPlan, len(b.entries), err)
		return b
	case n <= 0:
		b.err = fmt.Errorf("%w: entry #%d: repeat count must be positive, got %d", ErrInvalidPlan, len(b.entries), n)
		return b
	}
	entries := slices.Clone(b.entries)
	for range n {
		entries = append(entries, Entry{Expectation: exp, Response: resp})
	}
	b.entries = entries
	return b
}

// SequenceBuilder assembles a Sequence. The zero value is ready to use.
type SequenceBuilder struct {
	b builder
}

// NewSequenceBuilder returns an empty SequenceBuilder.
func NewSequenceBuilder() SequenceBuilder { return SequenceBuilder{} }

// Expect appends an expectation answered by a response built from opts.
func (sb SequenceBuilder) Expect(exp expect.Request, opts ...exchange.ResponseOption) SequenceBuilder {
	return sb.ExpectTimes(1, exp, opts...)
}

// ExpectTimes appends n identical entries sharing one response.
func (sb SequenceBuilder) ExpectTimes(n int, exp expect.Request, opts ...exchange.ResponseOption) SequenceBuilder {
	resp, err := exchange.NewResponse(opts...)
	sb.b = sb.b.add(n, exp, resp, err)
	return sb
}

// ExpectResponse appends an expectation answered by resp.
func (sb SequenceBuilder) ExpectResponse(exp expect.Request, resp *exchange.Response) SequenceBuilder {
	sb.b = sb.b.add(1, exp, resp, nil)
	return sb
}

// Build returns the Sequence, or the first error recorded while building.
func (sb SequenceBuilder) Build() (*Sequence, error) {
	if sb.b.err != nil {
		return nil, sb.b.err
	}
	return NewSequence(sb.b.entries...)
}

// StubBuilder assembles a Stub. The zero value is ready to use.
type StubBuilder struct {
	b builder
}

// NewStubBuilder returns an empty StubBuilder.
func NewStubBuilder() StubBuilder { return StubBuilder{} }

// Expect appends an expectation answered by a response built from opts.
// Earlier expectations take priority.
func (sb StubBuilder) Expect(exp expect.Request, opts ...exchange.ResponseOption) StubBuilder {
	resp, err := exchange.NewResponse(opts...)
	sb.b = sb.b.add(1, exp, resp, err)
	return sb
}

// ExpectResponse appends an expectation answered by resp.
func (sb StubBuilder) ExpectResponse(exp expect.Request, resp *exchange.Response) StubBuilder {
	sb.b = sb.b.add(1, exp, resp, nil)
	return sb
}

// Build returns the Stub, or the first error recorded while building.
func (sb StubBuilder) Build() (*Stub, error) {
	if sb.b.err != nil {
		return nil, sb.b.err
	}
	return NewStub(sb.b.entries...)
}
