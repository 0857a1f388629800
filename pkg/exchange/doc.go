// Package exchange defines the request and response values that flow between
// the HTTP listener and a test plan.
//
// Both values are immutable once built. A Request is captured from the wire
// by the spy server; a Response is declared by the test author and may be
// shared by many interactions (for example when the same response is
// returned to the next N requests).
//
//	resp, err := exchange.NewResponse(
//	    exchange.WithStatus(201),
//	    exchange.WithBody(`{"id":1}`),
//	    exchange.WithHeader("Content-Type", "application/json"),
//	    exchange.WithDelay(50*time.Millisecond),
//	)
//
// This is a leaf package with no internal dependencies.
package exchange
