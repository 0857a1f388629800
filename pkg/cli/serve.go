package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getmockd/httpspy/pkg/config"
	"github.com/getmockd/httpspy/pkg/logging"
	"github.com/getmockd/httpspy/pkg/spy"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	planFile  string
	host      string
	port      int
	path      string
	threads   int
	h2c       bool
	duration  time.Duration
	logLevel  string
	logFormat string
	logFile   string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve --plan FILE",
		Short: "Serve a test plan, then verify it on shutdown",
		Long: `Serve starts a spy from a plan file and prints its URL. It runs until
interrupted (SIGINT or SIGTERM) or until --duration elapses, then stops the
spy and verifies the plan. Verification failures are printed and the command
exits with status 1.

Flags override the plan file's server section.`,
		Example: `  # Serve until Ctrl-C
  httpspy serve --plan plan.yaml

  # Serve on a fixed port for 30 seconds with debug logging
  httpspy serve --plan plan.yaml --port 8089 --duration 30s --log-level debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.planFile, "plan", "p", "", "Plan file (YAML or JSON)")
	f.StringVar(&opts.host, "host", spy.DefaultHost, "Interface to listen on")
	f.IntVar(&opts.port, "port", envInt(EnvPort, 0), "Port to listen on; 0 picks a free port (env "+EnvPort+")")
	f.StringVar(&opts.path, "path", "/", "Path prefix served by the plan")
	f.IntVar(&opts.threads, "threads", spy.DefaultServiceThreads, "Requests resolved concurrently (stub plans only)")
	f.BoolVar(&opts.h2c, "h2c", false, "Also accept cleartext HTTP/2")
	f.DurationVar(&opts.duration, "duration", 0, "Stop after this long; 0 waits for a signal")
	f.StringVar(&opts.logLevel, "log-level", envString(EnvLogLevel, "info"), "Log level: debug, info, warn, error (env "+EnvLogLevel+")")
	f.StringVar(&opts.logFormat, "log-format", envString(EnvLogFormat, "text"), "Log format: text or json (env "+EnvLogFormat+")")
	f.StringVar(&opts.logFile, "log-file", "", "Also write JSON logs to this file")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	file, err := config.LoadFromFile(opts.planFile)
	if err != nil {
		return err
	}
	cfg, err := file.SpyConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cmd, opts, &cfg)

	p, err := file.BuildPlan()
	if err != nil {
		return err
	}

	log, closeLog, err := serveLogger(cmd.ErrOrStderr(), opts)
	if err != nil {
		return err
	}
	defer closeLog()

	s, err := spy.New(cfg, spy.WithLogger(log))
	if err != nil {
		return err
	}
	if err := s.Install(p); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	if err := s.Start(ctx); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "httpspy listening on %s\n", s.URL())

	<-ctx.Done()
	if err := s.Stop(); err != nil {
		log.Warn("spy did not stop cleanly", "error", err)
	}

	if err := s.Verify(); err != nil {
		fmt.Fprintf(out, "FAIL\n%v\n", err)
		return errReported
	}
	fmt.Fprintln(out, "PASS")
	return nil
}

// applyServeFlags lets explicit flags and environment defaults override the
// plan file's server section.
func applyServeFlags(cmd *cobra.Command, opts *serveOptions, cfg *spy.Config) {
	f := cmd.Flags()
	if f.Changed("host") {
		cfg.Host = opts.host
	}
	if f.Changed("port") || os.Getenv(EnvPort) != "" {
		cfg.Port = opts.port
	}
	if f.Changed("path") {
		cfg.Path = opts.path
	}
	if f.Changed("threads") {
		cfg.ServiceThreads = opts.threads
	}
	if f.Changed("h2c") {
		cfg.H2C = opts.h2c
	}
}

func serveLogger(stderr io.Writer, opts *serveOptions) (*slog.Logger, func(), error) {
	level := logging.ParseLevel(opts.logLevel)
	handler := logging.Handler(logging.Config{
		Level:  level,
		Format: logging.ParseFormat(opts.logFormat),
		Output: stderr,
	})
	if opts.logFile == "" {
		return slog.New(handler), func() {}, nil
	}

	f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	fileHandler := logging.Handler(logging.Config{Level: level, Format: logging.FormatJSON, Output: f})
	return slog.New(logging.Tee(handler, fileHandler)), func() { _ = f.Close() }, nil
}
