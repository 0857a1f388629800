// Package expect describes the requests a test expects to receive.
//
// A Value is a named predicate over one string: a method, a path, a body or
// a header value. A Request combines Values bound to request attributes, with
// optional header constraints, into a predicate over a whole exchange.Request.
//
//	exp := expect.AnyRequest().
//	    Method(expect.Equal("POST")).
//	    Path(expect.MustGlob("/orders/**")).
//	    Body(expect.EqualJSON(`{"id": 1}`)).
//	    Header("Content-Type", expect.EqualFold("application/json"))
//
// Every value is immutable and safe for concurrent use. Builder methods on
// Request return a new Request.
//
// Structural comparisons (XML, JSON, JSONPath) report unparsable input as a
// *StructuralError rather than a mismatch.
package expect
