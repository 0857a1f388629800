package plan

import (
	"testing"

	"github.com/getmockd/httpspy/pkg/exchange"
	"github.com/getmockd/httpspy/pkg/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func req(method, path, body string, headers ...exchange.HeaderField) *exchange.Request {
	return exchange.NewRequest(method, path, body, exchange.MakeHeader(headers...))
}

func TestSequence_AllExpectedRequestsInOrder(t *testing.T) {
	seq, err := NewSequenceBuilder().
		Expect(expect.AnyRequest().Method(expect.Equal("POST")).Body(expect.Equal("one")), exchange.WithBody("R1")).
		Expect(expect.AnyRequest().Method(expect.Equal("GET")), exchange.WithStatus(204)).
		Build()
	require.NoError(t, err)

	r1 := seq.Resolve(req("POST", "/", "one"))
	r2 := seq.Resolve(req("GET", "/", ""))

	assert.Equal(t, "R1", r1.Body())
	assert.Equal(t, 204, r2.StatusCode())
	assert.NoError(t, seq.Verify())
	assert.False(t, seq.Multithreaded())
}

func TestSequence_ExtraRequestGetsDiagnostic(t *testing.T) {
	seq, err := NewSequenceBuilder().
		Expect(expect.AnyRequest(), exchange.WithBody("R1")).
		Expect(expect.AnyRequest(), exchange.WithBody("R2")).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "R1", seq.Resolve(req("GET", "/a", "")).Body())
	assert.Equal(t, "R2", seq.Resolve(req("GET", "/b", "")).Body())

	third := seq.Resolve(req("GET", "/c", "third"))
	assert.Equal(t, 500, third.StatusCode())
	assert.Contains(t, third.Body(), "No responses anymore")
	assert.Contains(t, third.Body(), "expected 2 requests, received 3")
	assert.Contains(t, third.Body(), "path=/c")

	err = seq.Verify()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVerification)
	assert.Contains(t, err.Error(), "expected 2 requests, received 3")

	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Findings, 1)
}

func TestSequence_FewerRequestsThanExpected(t *testing.T) {
	seq, err := NewSequenceBuilder().
		ExpectTimes(3, expect.AnyRequest(), exchange.WithBody("same")).
		Build()
	require.NoError(t, err)

	seq.Resolve(req("GET", "/", ""))

	err = seq.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 3 requests, received 1")
}

func TestSequence_ResponsesArePositional(t *testing.T) {
	seq, err := NewSequenceBuilder().
		Expect(expect.AnyRequest().Body(expect.Equal("first")), exchange.WithBody("R1")).
		Expect(expect.AnyRequest().Body(expect.Equal("second")), exchange.WithBody("R2")).
		Build()
	require.NoError(t, err)

	// Out of order: responses still follow position, not content.
	assert.Equal(t, "R1", seq.Resolve(req("POST", "/", "second")).Body())
	assert.Equal(t, "R2", seq.Resolve(req("POST", "/", "first")).Body())

	err = seq.Verify()
	require.Error(t, err)

	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Findings, 2, "every positional mismatch is reported")
	assert.Equal(t, 0, verr.Findings[0].Position)
	assert.Equal(t, 1, verr.Findings[1].Position)
	assert.Contains(t, err.Error(), `request #0 should match expectation [body : "first"]`)
	assert.Contains(t, err.Error(), `[body : "first"] was "second"`)
	assert.Contains(t, err.Error(), `request #1 should match expectation [body : "second"]`)
}

func TestSequence_CountAndContentMismatchesTogether(t *testing.T) {
	seq, err := NewSequenceBuilder().
		Expect(expect.AnyRequest().Method(expect.Equal("GET")), exchange.WithBody("R1")).
		Build()
	require.NoError(t, err)

	seq.Resolve(req("POST", "/", ""))
	seq.Resolve(req("GET", "/", ""))

	var verr *VerificationError
	require.ErrorAs(t, seq.Verify(), &verr)
	require.Len(t, verr.Findings, 2)
	assert.Equal(t, -1, verr.Findings[0].Position)
	assert.Equal(t, 0, verr.Findings[1].Position)
}

func TestSequence_StructuralErrorIsDistinguishable(t *testing.T) {
	seq, err := NewSequenceBuilder().
		Expect(expect.AnyRequest().Body(expect.EqualXML("<a/>"))).
		Build()
	require.NoError(t, err)

	seq.Resolve(req("POST", "/", "not xml"))

	err = seq.Verify()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVerification)
	assert.ErrorIs(t, err, expect.ErrStructural)
}

func TestSequence_ResetIsIdempotent(t *testing.T) {
	seq, err := NewSequenceBuilder().
		Expect(expect.AnyRequest().Method(expect.Equal("GET")), exchange.WithBody("R1")).
		Build()
	require.NoError(t, err)

	run := func() (string, error) {
		body := seq.Resolve(req("GET", "/", "")).Body()
		return body, seq.Verify()
	}

	body1, err1 := run()
	seq.Reset()
	body2, err2 := run()

	assert.Equal(t, body1, body2)
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Empty(t, func() []Interaction { seq.Reset(); return seq.Interactions() }())
}

func TestSequence_Interactions(t *testing.T) {
	seq, err := NewSequence(Entry{Expectation: expect.AnyRequest(), Response: exchange.MustResponse()})
	require.NoError(t, err)

	seq.Resolve(req("GET", "/1", ""))
	seq.Resolve(req("GET", "/2", ""))

	got := seq.Interactions()
	require.Len(t, got, 2)
	assert.Equal(t, Outcome{Kind: OutcomePositional, Index: 0}, got[0].Outcome)
	assert.Equal(t, Outcome{Kind: OutcomeExhausted, Index: 1}, got[1].Outcome)
	assert.Equal(t, "/2", got[1].Request.Path)
	assert.Equal(t, "exhausted", got[1].Outcome.String())
	assert.Equal(t, "positional #0", got[0].Outcome.String())
}
