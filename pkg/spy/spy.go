package spy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/getmockd/httpspy/pkg/logging"
	"github.com/getmockd/httpspy/pkg/plan"
	"github.com/getmockd/httpspy/pkg/requestlog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/semaphore"
)

var errStopped = errors.New("spy stopped")

// Spy is an HTTP test double serving one installed plan.
type Spy struct {
	cfg     Config
	prefix  string
	log     *slog.Logger
	history requestlog.Store

	mu      sync.RWMutex
	plan    plan.Plan
	threads int
	workers *semaphore.Weighted

	running  bool
	server   *http.Server
	listener net.Listener
	stopCtx  context.Context
	stop     context.CancelCauseFunc
	done     chan struct{}
}

// Option configures a Spy.
type Option func(*Spy)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Spy) {
		if log != nil {
			s.log = log
		}
	}
}

// WithHistory replaces the default in-memory request history.
func WithHistory(store requestlog.Store) Option {
	return func(s *Spy) {
		if store != nil {
			s.history = store
		}
	}
}

// New creates a stopped Spy. Zero fields of cfg take their defaults.
func New(cfg Config, opts ...Option) (*Spy, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	prefix, _ := NormalizePath(cfg.Path)
	cfg.Path = prefix

	s := &Spy{
		cfg:     cfg,
		prefix:  prefix,
		log:     logging.Nop(),
		threads: cfg.ServiceThreads,
		workers: semaphore.NewWeighted(int64(cfg.ServiceThreads)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		s.history = requestlog.NewMemoryStore(cfg.MaxHistory)
	}
	s.log = s.log.With("component", "spy")
	return s, nil
}

// Config returns the effective configuration.
func (s *Spy) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := s.cfg
	cfg.ServiceThreads = s.threads
	return cfg
}

// SetServiceThreads sets how many requests may be resolved at once. It
// cannot change while the spy is running.
func (s *Spy) SetServiceThreads(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: service threads must be positive, got %d", ErrInvalidConfig, n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("%w: service threads cannot change while serving", ErrAlreadyStarted)
	}
	if n > 1 && s.plan != nil && !s.plan.Multithreaded() {
		return fmt.Errorf("%w: %d threads requested", ErrThreadsPlanConflict, n)
	}
	s.threads = n
	s.workers = semaphore.NewWeighted(int64(n))
	return nil
}

// ServiceThreads returns the configured worker count.
func (s *Spy) ServiceThreads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threads
}

// Install sets the plan. A second Install without Reset fails.
func (s *Spy) Install(p plan.Plan) error {
	if p == nil {
		return fmt.Errorf("%w: plan must not be nil", ErrInvalidConfig)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan != nil {
		return ErrPlanAlreadySet
	}
	if s.threads > 1 && !p.Multithreaded() {
		return fmt.Errorf("%w: spy has %d threads", ErrThreadsPlanConflict, s.threads)
	}
	s.plan = p
	s.log.Debug("test plan installed", "plan", fmt.Sprintf("%T", p))
	return nil
}

// Plan returns the installed plan.
func (s *Spy) Plan() (plan.Plan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan, s.plan != nil
}

// Verify verifies the installed plan. Call it once all traffic has completed.
func (s *Spy) Verify() error {
	p, ok := s.Plan()
	if !ok {
		return ErrNoPlan
	}
	return p.Verify()
}

// Reset removes the installed plan, clearing its interactions, and empties
// the request history. The listener keeps running.
func (s *Spy) Reset() {
	s.mu.Lock()
	p := s.plan
	s.plan = nil
	s.mu.Unlock()

	if p != nil {
		p.Reset()
	}
	s.history.Clear()
}

// History returns the request history.
func (s *Spy) History() requestlog.Store {
	return s.history
}

// Start binds the listener and begins serving in the background.
func (s *Spy) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyStarted
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	var handler http.Handler = s
	if s.cfg.H2C {
		handler = h2c.NewHandler(s, &http2.Server{})
	}

	s.stopCtx, s.stop = context.WithCancelCause(context.Background())
	s.listener = ln
	s.server = &http.Server{
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}
	s.done = make(chan struct{})

	srv, done := s.server, s.done
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("spy server error", "error", err)
		}
	}()

	s.running = true
	s.log.Info("spy started", "url", s.urlLocked(), "threads", s.threads, "h2c", s.cfg.H2C)
	return nil
}

// Stop interrupts pending response delays and shuts the listener down,
// waiting at most ShutdownTimeout for in-flight requests.
func (s *Spy) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	srv, stop, done := s.server, s.stop, s.done
	s.mu.Unlock()

	// Handlers take the read lock, so shut down without holding it.
	stop(errStopped)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	var err error
	if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
		err = fmt.Errorf("spy shutdown: %w", shutdownErr)
		_ = srv.Close()
	}
	<-done

	s.log.Info("spy stopped")
	return err
}

// Running reports whether the spy is serving.
func (s *Spy) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the bound host:port, or "" when stopped.
func (s *Spy) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return ""
	}
	return s.listener.Addr().String()
}

// URL returns the base URL including the path prefix, or "" when stopped.
func (s *Spy) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.urlLocked()
}

func (s *Spy) urlLocked() string {
	if !s.running {
		return ""
	}
	return "http://" + s.listener.Addr().String() + s.prefix
}

// stopContext returns the context canceled by Stop, or a never-canceled
// context when the spy is driven directly through ServeHTTP.
func (s *Spy) stopContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopCtx == nil {
		return context.Background()
	}
	return s.stopCtx
}

func (s *Spy) workerPool() *semaphore.Weighted {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workers
}
