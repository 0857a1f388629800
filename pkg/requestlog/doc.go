// Package requestlog captures the request/response pairs served by a spy for
// inspection and debugging.
//
// It is distinct from operational logging, which uses log/slog, and from the
// interaction log a test plan keeps for verification: the history records
// what actually went over the wire, including requests outside the path
// prefix and exchanges aborted during a delay.
//
//	store := requestlog.NewMemoryStore(500)
//	store.Log(&requestlog.Entry{Method: "GET", Path: "/spy/", ResponseStatus: 200})
//	for _, e := range store.List(&requestlog.Filter{Outcome: "unmatched"}) {
//	    fmt.Println(e.ID, e.Path)
//	}
package requestlog
