// Package spy runs an HTTP test double: a local listener that hands every
// request under its path prefix to an installed test plan, writes the
// plan's response and later verifies the recorded traffic.
//
// Typical use in a test:
//
//	stub, _ := plan.NewStubBuilder().
//	    Expect(expect.AnyRequest().Method(expect.Equal("GET")), exchange.WithBody("pong")).
//	    Build()
//
//	s, _ := spy.New(spy.Config{Host: "localhost", Path: "/api", ServiceThreads: 4})
//	_ = s.Install(stub)
//	_ = s.Start(ctx)
//	defer s.Stop()
//
//	// drive the system under test against s.URL() ...
//
//	spy.MustVerify(t, s)
//
// Requests are served by at most ServiceThreads concurrent workers. A plan
// that is not multithreaded (a Sequence) may only be combined with a single
// worker. Response delays are abandoned when the spy stops or the client goes
// away, and the exchange is then aborted rather than answered.
package spy
