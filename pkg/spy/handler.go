package spy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/getmockd/httpspy/pkg/exchange"
	"github.com/getmockd/httpspy/pkg/httputil"
	"github.com/getmockd/httpspy/pkg/plan"
	"github.com/getmockd/httpspy/pkg/requestlog"
)

// ServeHTTP resolves r against the installed plan.
func (s *Spy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entry := &requestlog.Entry{
		Timestamp:   start,
		Method:      r.Method,
		Path:        r.URL.Path,
		QueryString: r.URL.RawQuery,
		Headers:     r.Header.Clone(),
		RemoteAddr:  r.RemoteAddr,
	}
	// Deferred so aborted exchanges are recorded too.
	defer func() {
		entry.DurationMs = int(time.Since(start).Milliseconds())
		s.history.Log(entry)
	}()

	if !s.inPrefix(r.URL.Path) {
		entry.ResponseStatus = http.StatusNotFound
		httputil.WriteNotFound(w, "outside_prefix", "path "+r.URL.Path+" is outside "+s.prefix)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		entry.ResponseStatus = status
		entry.Error = err.Error()
		httputil.WriteError(w, status, "read_body", err.Error())
		return
	}
	entry.Body = string(body)

	workers := s.workerPool()
	if err := workers.Acquire(r.Context(), 1); err != nil {
		entry.Error = "client went away while waiting for a service thread"
		return
	}
	defer workers.Release(1)

	p, ok := s.Plan()
	if !ok {
		s.log.Error("request received with no test plan installed", "method", r.Method, "path", r.URL.Path)
		entry.ResponseStatus = http.StatusInternalServerError
		entry.Error = ErrNoPlan.Error()
		httputil.WriteText(w, http.StatusInternalServerError, ErrNoPlan.Error())
		return
	}

	req := exchange.NewRequest(r.Method, r.URL.Path, entry.Body, exchange.HeaderFromHTTP(r.Header))
	resp, outcome := resolve(p, req)
	entry.Outcome = outcome
	s.logOutcome(req, resp, outcome)

	if err := s.delay(r.Context(), resp.Delay()); err != nil {
		s.log.Error("response delay interrupted", "method", req.Method, "path", req.Path, "error", err)
		entry.Error = err.Error()
		panic(http.ErrAbortHandler)
	}

	writeResponse(w, resp)
	entry.ResponseStatus = resp.StatusCode()
	entry.ResponseBody = resp.Body()
}

func (s *Spy) inPrefix(path string) bool {
	if s.prefix == "/" {
		return true
	}
	return strings.HasPrefix(path, s.prefix) || path == strings.TrimSuffix(s.prefix, "/")
}

func (s *Spy) delay(reqCtx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancelCause(reqCtx)
	defer cancel(nil)
	stopCtx := s.stopContext()
	unregister := context.AfterFunc(stopCtx, func() { cancel(context.Cause(stopCtx)) })
	defer unregister()
	return Wait(ctx, d)
}

func resolve(p plan.Plan, req *exchange.Request) (*exchange.Response, string) {
	if r, ok := p.(plan.OutcomeResolver); ok {
		resp, o := r.ResolveOutcome(req)
		return resp, o.String()
	}
	return p.Resolve(req), ""
}

func (s *Spy) logOutcome(req *exchange.Request, resp *exchange.Response, outcome string) {
	switch outcome {
	case plan.OutcomeUnmatched.String(), plan.OutcomeExhausted.String():
		s.log.Warn("request not covered by the test plan",
			"method", req.Method, "path", req.Path, "outcome", outcome, "status", resp.StatusCode())
	default:
		s.log.Debug("request resolved",
			"method", req.Method, "path", req.Path, "outcome", outcome, "status", resp.StatusCode())
	}
}

// writeResponse writes resp. Multiple values of one header are sent as a
// single comma-joined value.
func writeResponse(w http.ResponseWriter, resp *exchange.Response) {
	h := w.Header()
	for _, f := range resp.Header().Fields() {
		h.Set(f.Name, strings.Join(f.Values, ","))
	}
	w.WriteHeader(resp.StatusCode())
	_, _ = io.WriteString(w, resp.Body())
}
