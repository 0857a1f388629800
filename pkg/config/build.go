package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/getmockd/httpspy/pkg/exchange"
	"github.com/getmockd/httpspy/pkg/expect"
	"github.com/getmockd/httpspy/pkg/plan"
	"github.com/getmockd/httpspy/pkg/spy"
)

// Validate checks what the schema cannot: plan-kind rules, durations and
// matcher construction.
func (f *File) Validate() error {
	var errs []error
	if f.Plan == nil {
		return fmt.Errorf("%w: plan is required", ErrInvalidPlanFile)
	}
	switch f.Plan.Kind {
	case KindSequence, KindStub:
	default:
		errs = append(errs, fmt.Errorf("plan.kind: unknown kind %q", f.Plan.Kind))
	}
	if len(f.Plan.Expectations) == 0 {
		errs = append(errs, errors.New("plan.expectations: at least one expectation is required"))
	}
	for i, e := range f.Plan.Expectations {
		path := fmt.Sprintf("plan.expectations[%d]", i)
		if e.Times < 0 {
			errs = append(errs, fmt.Errorf("%s.times: must be positive", path))
		}
		if e.Times > 1 && f.Plan.Kind == KindStub {
			errs = append(errs, fmt.Errorf("%s.times: only sequences repeat expectations", path))
		}
		if _, err := e.Request.Expectation(); err != nil {
			errs = append(errs, fmt.Errorf("%s.request: %w", path, err))
		}
		if _, err := e.Response.Options(); err != nil {
			errs = append(errs, fmt.Errorf("%s.response: %w", path, err))
		}
	}
	if f.Server != nil {
		if _, err := f.SpyConfig(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPlanFile, errors.Join(errs...))
	}
	return nil
}

// BuildPlan converts the plan section into a plan.Plan.
func (f *File) BuildPlan() (plan.Plan, error) {
	if f.Plan == nil {
		return nil, fmt.Errorf("%w: plan is required", ErrInvalidPlanFile)
	}

	switch f.Plan.Kind {
	case KindSequence:
		b := plan.NewSequenceBuilder()
		for _, e := range f.Plan.Expectations {
			exp, opts, err := e.parts()
			if err != nil {
				return nil, err
			}
			b = b.ExpectTimes(max(e.Times, 1), exp, opts...)
		}
		seq, err := b.Build()
		if err != nil {
			return nil, err
		}
		return seq, nil
	case KindStub:
		b := plan.NewStubBuilder()
		for _, e := range f.Plan.Expectations {
			exp, opts, err := e.parts()
			if err != nil {
				return nil, err
			}
			b = b.Expect(exp, opts...)
		}
		stub, err := b.Build()
		if err != nil {
			return nil, err
		}
		return stub, nil
	}
	return nil, fmt.Errorf("%w: unknown plan kind %q", ErrInvalidPlanFile, f.Plan.Kind)
}

// SpyConfig converts the server section into a spy.Config. A missing
// section yields the defaults.
func (f *File) SpyConfig() (spy.Config, error) {
	cfg := spy.DefaultConfig()
	s := f.Server
	if s == nil {
		return cfg, nil
	}

	if s.Host != "" {
		cfg.Host = s.Host
	}
	cfg.Port = s.Port
	if s.Path != "" {
		cfg.Path = s.Path
	}
	if s.Threads != 0 {
		cfg.ServiceThreads = s.Threads
	}
	cfg.H2C = s.H2C
	if s.MaxBodyBytes != 0 {
		cfg.MaxBodyBytes = s.MaxBodyBytes
	}

	for _, d := range []struct {
		name string
		src  string
		dst  *time.Duration
	}{
		{"server.readTimeout", s.ReadTimeout, &cfg.ReadTimeout},
		{"server.writeTimeout", s.WriteTimeout, &cfg.WriteTimeout},
		{"server.shutdownTimeout", s.ShutdownTimeout, &cfg.ShutdownTimeout},
	} {
		if d.src == "" {
			continue
		}
		v, err := time.ParseDuration(d.src)
		if err != nil {
			return spy.Config{}, fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return spy.Config{}, fmt.Errorf("server: %w", err)
	}
	return cfg, nil
}

func (e ExpectationSpec) parts() (expect.Request, []exchange.ResponseOption, error) {
	exp, err := e.Request.Expectation()
	if err != nil {
		return expect.Request{}, nil, fmt.Errorf("%w: %w", ErrInvalidPlanFile, err)
	}
	opts, err := e.Response.Options()
	if err != nil {
		return expect.Request{}, nil, fmt.Errorf("%w: %w", ErrInvalidPlanFile, err)
	}
	return exp, opts, nil
}

// Expectation builds the request expectation. A nil spec matches any request.
func (r *RequestSpec) Expectation() (expect.Request, error) {
	exp := expect.AnyRequest()
	if r == nil {
		return exp, nil
	}

	for _, c := range []struct {
		name string
		m    *Matcher
		add  func(expect.Request, expect.Value) expect.Request
	}{
		{"method", r.Method, expect.Request.Method},
		{"path", r.Path, expect.Request.Path},
		{"body", r.Body, expect.Request.Body},
	} {
		if c.m == nil {
			continue
		}
		v, err := c.m.Value()
		if err != nil {
			return expect.Request{}, fmt.Errorf("%s: %w", c.name, err)
		}
		exp = c.add(exp, v)
	}

	for i, h := range r.Headers {
		switch {
		case h.Value == nil && h.Index == nil:
			exp = exp.HasHeader(h.Name)
		default:
			v := expect.Any()
			if h.Value != nil {
				var err error
				if v, err = h.Value.Value(); err != nil {
					return expect.Request{}, fmt.Errorf("headers[%d]: %w", i, err)
				}
			}
			if h.Index != nil {
				exp = exp.HeaderAt(h.Name, *h.Index, v)
			} else {
				exp = exp.Header(h.Name, v)
			}
		}
	}
	for _, name := range r.WithoutHeaders {
		exp = exp.WithoutHeader(name)
	}
	if r.StrictHeaders {
		exp = exp.StrictHeaders()
	}
	return exp, exp.Err()
}

// Options converts the response spec into response options. Header names
// are applied in sorted order.
func (r *ResponseSpec) Options() ([]exchange.ResponseOption, error) {
	if r == nil {
		return nil, nil
	}
	var opts []exchange.ResponseOption
	if r.Status != 0 {
		opts = append(opts, exchange.WithStatus(r.Status))
	}
	if r.Body != "" {
		opts = append(opts, exchange.WithBody(r.Body))
	}
	names := make([]string, 0, len(r.Headers))
	for name := range r.Headers {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		opts = append(opts, exchange.WithHeader(name, r.Headers[name]...))
	}
	if r.Delay != "" {
		d, err := time.ParseDuration(r.Delay)
		if err != nil {
			return nil, fmt.Errorf("delay: %w", err)
		}
		opts = append(opts, exchange.WithDelay(d))
	}

	if _, err := exchange.NewResponse(opts...); err != nil {
		return nil, err
	}
	return opts, nil
}

// Value builds the value expectation.
func (m *Matcher) Value() (expect.Value, error) {
	if m == nil {
		return expect.Any(), nil
	}
	if n := m.count(); n != 1 {
		return expect.Value{}, fmt.Errorf("matcher must set exactly one field, got %d", n)
	}

	switch {
	case m.Equals != nil:
		return expect.Equal(*m.Equals), nil
	case m.EqualsIgnoreCase != nil:
		return expect.EqualFold(*m.EqualsIgnoreCase), nil
	case m.XML != nil:
		return expect.EqualXML(*m.XML), nil
	case m.JSON != nil:
		return expect.EqualJSON(*m.JSON), nil
	case m.Contains != nil:
		return expect.Contains(*m.Contains), nil
	case m.Prefix != nil:
		return expect.HasPrefix(*m.Prefix), nil
	case m.Regex != nil:
		return expect.Regexp(*m.Regex)
	case m.Glob != nil:
		return expect.Glob(*m.Glob)
	case m.Expr != nil:
		return expect.Expr(*m.Expr)
	case m.JSONPath != nil:
		v, err := m.JSONPath.Value.Value()
		if err != nil {
			return expect.Value{}, fmt.Errorf("jsonPath.value: %w", err)
		}
		return expect.JSONPath(m.JSONPath.Path, v)
	case m.Not != nil:
		v, err := m.Not.Value()
		if err != nil {
			return expect.Value{}, fmt.Errorf("not: %w", err)
		}
		return expect.Not(v), nil
	case m.AllOf != nil:
		vs, err := values("allOf", m.AllOf)
		return expect.AllOf(vs...), err
	case m.AnyOf != nil:
		vs, err := values("anyOf", m.AnyOf)
		return expect.AnyOf(vs...), err
	}
	return expect.Any(), nil
}

func values(name string, ms []*Matcher) ([]expect.Value, error) {
	vs := make([]expect.Value, len(ms))
	for i, m := range ms {
		v, err := m.Value()
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		vs[i] = v
	}
	return vs, nil
}

func (m *Matcher) count() int {
	n := 0
	for _, set := range []bool{
		m.Equals != nil, m.EqualsIgnoreCase != nil, m.XML != nil, m.JSON != nil,
		m.Contains != nil, m.Prefix != nil, m.Regex != nil, m.Glob != nil,
		m.Expr != nil, m.JSONPath != nil, m.Not != nil, m.AllOf != nil,
		m.AnyOf != nil, m.Any,
	} {
		if set {
			n++
		}
	}
	return n
}
