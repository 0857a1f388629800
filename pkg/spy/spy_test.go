package spy

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/getmockd/httpspy/pkg/exchange"
	"github.com/getmockd/httpspy/pkg/expect"
	"github.com/getmockd/httpspy/pkg/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/http2"
)

// ============================================================================
// Helpers
// ============================================================================

func startSpy(t *testing.T, cfg Config) *Spy {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func send(t *testing.T, method, url, body string, header http.Header) (int, http.Header, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	for name, values := range header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header, string(data)
}

func mustStub(t *testing.T, sb plan.StubBuilder) *plan.Stub {
	t.Helper()
	stub, err := sb.Build()
	require.NoError(t, err)
	return stub
}

func mustSequence(t *testing.T, sb plan.SequenceBuilder) *plan.Sequence {
	t.Helper()
	seq, err := sb.Build()
	require.NoError(t, err)
	return seq
}

// ============================================================================
// Configuration
// ============================================================================

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "/"},
		{in: "/", want: "/"},
		{in: "api", want: "/api/"},
		{in: "/api", want: "/api/"},
		{in: "api/", want: "/api/"},
		{in: "/api/v1/", want: "/api/v1/"},
		{in: "a b", wantErr: true},
		{in: " ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizePath(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "negative port", cfg: Config{Port: -1}},
		{name: "port too large", cfg: Config{Port: 70000}},
		{name: "negative threads", cfg: Config{ServiceThreads: -2}},
		{name: "path with whitespace", cfg: Config{Path: "bad path"}},
		{name: "negative read timeout", cfg: Config{ReadTimeout: -time.Second}},
		{name: "blank host", cfg: Config{Host: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	s, err := New(Config{Path: "api"})
	require.NoError(t, err)

	cfg := s.Config()
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, "/api/", cfg.Path)
	assert.Equal(t, 1, cfg.ServiceThreads)
	assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)
	assert.Empty(t, s.URL(), "stopped spy has no URL")
}

// ============================================================================
// Plan and thread rules
// ============================================================================

func TestInstall_Twice(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)

	stub := mustStub(t, plan.NewStubBuilder().Expect(expect.AnyRequest()))
	require.NoError(t, s.Install(stub))
	require.ErrorIs(t, s.Install(stub), ErrPlanAlreadySet)

	s.Reset()
	require.NoError(t, s.Install(stub), "install after reset")
}

func TestInstall_Nil(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)
	require.ErrorIs(t, s.Install(nil), ErrInvalidConfig)
}

func TestVerify_NoPlan(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)
	require.ErrorIs(t, s.Verify(), ErrNoPlan)
}

func TestThreads_SequenceConflict(t *testing.T) {
	seq := mustSequence(t, plan.NewSequenceBuilder().Expect(expect.AnyRequest()))

	t.Run("threads first", func(t *testing.T) {
		s, err := New(Config{ServiceThreads: 2})
		require.NoError(t, err)
		require.ErrorIs(t, s.Install(seq), ErrThreadsPlanConflict)
	})

	t.Run("plan first", func(t *testing.T) {
		s, err := New(Config{})
		require.NoError(t, err)
		require.NoError(t, s.Install(seq))
		require.ErrorIs(t, s.SetServiceThreads(2), ErrThreadsPlanConflict)
		require.NoError(t, s.SetServiceThreads(1))
	})

	t.Run("stub allows many threads", func(t *testing.T) {
		s, err := New(Config{ServiceThreads: 4})
		require.NoError(t, err)
		require.NoError(t, s.Install(mustStub(t, plan.NewStubBuilder().Expect(expect.AnyRequest()))))
		assert.Equal(t, 4, s.ServiceThreads())
	})
}

func TestSetServiceThreads(t *testing.T) {
	s, err := New(Config{Port: 0})
	require.NoError(t, err)

	require.ErrorIs(t, s.SetServiceThreads(0), ErrInvalidConfig)
	require.NoError(t, s.SetServiceThreads(3))
	assert.Equal(t, 3, s.ServiceThreads())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()
	require.ErrorIs(t, s.SetServiceThreads(2), ErrAlreadyStarted)
}

func TestStart_Twice(t *testing.T) {
	s := startSpy(t, Config{})
	require.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop(), "second stop is a no-op")
}

// ============================================================================
// Serving
// ============================================================================

func TestServe_StubScenario(t *testing.T) {
	s := startSpy(t, Config{})
	stub := mustStub(t, plan.NewStubBuilder().
		Expect(expect.AnyRequest().Body(expect.Equal("Hello")), exchange.WithBody("First")).
		Expect(expect.AnyRequest().Method(expect.Equal("GET")), exchange.WithBody("Second")))
	require.NoError(t, s.Install(stub))

	status, _, body := send(t, "POST", s.URL()+"x", "Hello", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, "First", body)

	status, _, body = send(t, "GET", s.URL()+"x", "Bye", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, "Second", body)

	require.NoError(t, s.Verify())

	status, _, body = send(t, "PUT", s.URL()+"x", "Bye", nil)
	assert.Equal(t, 500, status)
	assert.Contains(t, body, "Unmatched request")

	err := s.Verify()
	require.ErrorIs(t, err, plan.ErrVerification)
	assert.Contains(t, err.Error(), "method=PUT")

	entries := s.History().List(nil)
	require.Len(t, entries, 3)
	assert.Equal(t, "unmatched", entries[0].Outcome, "history is newest first")
	assert.Equal(t, "matched #0", entries[2].Outcome)
}

func TestServe_SequenceScenario(t *testing.T) {
	s := startSpy(t, Config{Path: "/svc"})
	seq := mustSequence(t, plan.NewSequenceBuilder().
		Expect(expect.AnyRequest().Path(expect.Equal("/svc/one")), exchange.WithStatus(201), exchange.WithBody("1")).
		Expect(expect.AnyRequest().Path(expect.Equal("/svc/two")), exchange.WithBody("2")))
	require.NoError(t, s.Install(seq))

	status, _, body := send(t, "GET", s.URL()+"one", "", nil)
	assert.Equal(t, 201, status)
	assert.Equal(t, "1", body)

	// Responses are positional even when the expectation does not match.
	status, _, body = send(t, "GET", s.URL()+"wrong", "", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, "2", body)

	err := s.Verify()
	require.ErrorIs(t, err, plan.ErrVerification)
	assert.Contains(t, err.Error(), "request #1 should match expectation")

	status, _, body = send(t, "GET", s.URL()+"three", "", nil)
	assert.Equal(t, 500, status)
	assert.Contains(t, body, "No responses anymore: expected 2 requests, received 3")
}

func TestServe_HeaderRoundTrip(t *testing.T) {
	s := startSpy(t, Config{})
	stub := mustStub(t, plan.NewStubBuilder().
		Expect(expect.AnyRequest().HeaderAt("X-Tag", 1, expect.Equal("two")),
			exchange.WithHeader("X-Multi", "a", "b"),
			exchange.WithHeader("X-Single", "c")))
	require.NoError(t, s.Install(stub))

	status, header, _ := send(t, "GET", s.URL(), "", http.Header{"X-Tag": {"one", "two"}})
	require.Equal(t, 200, status)
	assert.Equal(t, []string{"a,b"}, header.Values("X-Multi"))
	assert.Equal(t, "c", header.Get("X-Single"))
	MustVerify(t, s)
}

func TestServe_OutsidePrefix(t *testing.T) {
	s := startSpy(t, Config{Path: "/api/"})
	require.NoError(t, s.Install(mustStub(t, plan.NewStubBuilder().Expect(expect.AnyRequest()))))

	status, _, _ := send(t, "GET", "http://"+s.Addr()+"/other", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	stub, _ := s.Plan()
	assert.Empty(t, stub.(plan.Recorder).Interactions(), "requests outside the prefix never reach the plan")
	assert.Equal(t, 1, s.History().Count())
}

func TestServe_NoPlan(t *testing.T) {
	s := startSpy(t, Config{})

	status, _, body := send(t, "GET", s.URL(), "", nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, body, "test plan is not set")
}

func TestServe_BodyTooLarge(t *testing.T) {
	s := startSpy(t, Config{MaxBodyBytes: 4})
	require.NoError(t, s.Install(mustStub(t, plan.NewStubBuilder().Expect(expect.AnyRequest()))))

	status, _, _ := send(t, "POST", s.URL(), "hello world", nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
}

func TestServe_ConcurrentStub(t *testing.T) {
	s := startSpy(t, Config{ServiceThreads: 4})
	stub := mustStub(t, plan.NewStubBuilder().Expect(expect.AnyRequest(), exchange.WithBody("ok")))
	require.NoError(t, s.Install(stub))

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Go(func() {
			resp, err := http.Get(s.URL())
			if assert.NoError(t, err) {
				resp.Body.Close()
				assert.Equal(t, 200, resp.StatusCode)
			}
		})
	}
	wg.Wait()

	assert.Len(t, stub.Interactions(), n)
	require.NoError(t, s.Verify())
}

func TestServe_Delay(t *testing.T) {
	s := startSpy(t, Config{})
	stub := mustStub(t, plan.NewStubBuilder().
		Expect(expect.AnyRequest(), exchange.WithDelay(50*time.Millisecond), exchange.WithBody("late")))
	require.NoError(t, s.Install(stub))

	start := time.Now()
	status, _, body := send(t, "GET", s.URL(), "", nil)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, 200, status)
	assert.Equal(t, "late", body)
}

func TestStop_InterruptsDelay(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	stub := mustStub(t, plan.NewStubBuilder().Expect(expect.AnyRequest(), exchange.WithDelay(time.Minute)))
	require.NoError(t, s.Install(stub))

	errc := make(chan error, 1)
	go func() {
		resp, err := http.Get(s.URL())
		if err == nil {
			resp.Body.Close()
		}
		errc <- err
	}()

	require.Eventually(t, func() bool { return len(stub.Interactions()) == 1 }, 5*time.Second, 10*time.Millisecond)

	start := time.Now()
	require.NoError(t, s.Stop())
	assert.Less(t, time.Since(start), 5*time.Second)

	select {
	case err := <-errc:
		require.Error(t, err, "client sees the aborted exchange")
	case <-time.After(5 * time.Second):
		t.Fatal("client still waiting after stop")
	}

	entries := s.History().List(nil)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Error, "response delay interrupted")
}

func TestServe_H2C(t *testing.T) {
	s := startSpy(t, Config{H2C: true})
	require.NoError(t, s.Install(mustStub(t, plan.NewStubBuilder().Expect(expect.AnyRequest(), exchange.WithBody("h2")))))

	client := &http.Client{Transport: &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
	}}

	resp, err := client.Get(s.URL())
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.ProtoMajor)
	assert.Equal(t, "h2", string(data))
}

func TestServeHTTP_WithoutListener(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)
	require.NoError(t, s.Install(mustStub(t, plan.NewStubBuilder().
		Expect(expect.AnyRequest().Method(expect.Equal("GET")), exchange.WithStatus(204)))))

	rec := newRecorder()
	r, err := http.NewRequest("GET", "/anything", nil)
	require.NoError(t, err)
	s.ServeHTTP(rec, r)
	assert.Equal(t, 204, rec.status)
}

// ============================================================================
// Reset
// ============================================================================

func TestReset(t *testing.T) {
	s := startSpy(t, Config{})
	stub := mustStub(t, plan.NewStubBuilder().Expect(expect.AnyRequest()))
	require.NoError(t, s.Install(stub))

	send(t, "GET", s.URL(), "", nil)
	require.Len(t, stub.Interactions(), 1)

	s.Reset()
	assert.Empty(t, stub.Interactions())
	assert.Zero(t, s.History().Count())
	_, ok := s.Plan()
	assert.False(t, ok)
	assert.True(t, s.Running(), "reset keeps the listener")
}
