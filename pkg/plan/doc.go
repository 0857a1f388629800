// Package plan implements test plans: the strategies that choose a response
// for each incoming request and later judge the recorded traffic.
//
// Two variants are provided:
//
//   - Sequence: responses are returned strictly in declaration order, one per
//     request, without looking at the request. Verify then checks the count
//     and that request #i matched expectation #i. Requires a single serving
//     goroutine, since ordering is meaningless otherwise.
//   - Stub: every request is matched against the expectations in declaration
//     order and the first match wins. Unmatched requests are logged and
//     reported by Verify. Safe for concurrent use.
//
// Resolve never fails for ordinary mismatches. When no response is
// available it returns a 500 diagnostic response so the caller observes a
// real HTTP failure, and the problem surfaces at Verify as a single
// *VerificationError.
package plan
