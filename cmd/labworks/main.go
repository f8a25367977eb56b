// Command labworks runs the lab bench: a demonstration of the validated
// records, fixture seeding, report archival and the HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"labworks/internal/adapters/bench"
	"labworks/internal/blob"
	"labworks/internal/core"
	"labworks/internal/seed"
	"labworks/pkg/domain"
)

var exitFunc = os.Exit

const usage = `usage: labworks <command> [flags]

commands:
  demo                 print the demonstration records
  seed [-file path]    load a fixture into the configured store
  archive [-key key]   write the bench report to the configured blob store
  serve [-addr :8080]  run the HTTP API
`

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprint(stderr, usage)
		return 2
	}
	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "demo":
		err = runDemo(rest, stdout, stderr)
	case "seed":
		err = runSeed(rest, stdout, stderr)
	case "archive":
		err = runArchive(rest, stdout, stderr)
	case "serve":
		err = runServe(rest, stderr)
	case "help", "-h", "-help", "--help":
		_, _ = fmt.Fprint(stdout, usage)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n%s", cmd, usage)
		return 2
	}
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	var ue usageError
	if errors.As(err, &ue) {
		return 2
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "labworks %s: %v\n", cmd, err)
		return 1
	}
	return 0
}

type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError{err}
	}
	if fs.NArg() > 0 {
		_, _ = fmt.Fprintf(fs.Output(), "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return usageError{fmt.Errorf("unexpected arguments")}
	}
	return nil
}

// newLogger builds the text logger; LABWORKS_LOG_LEVEL picks the level.
func newLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("LABWORKS_LOG_LEVEL"))); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

type auditLog struct{ logger *slog.Logger }

func (a auditLog) Record(_ context.Context, e core.AuditEntry) {
	a.logger.Info("audit",
		"op", e.Operation,
		"entity", e.Entity,
		"action", e.Action,
		"id", e.EntityID,
		"status", e.Status,
		"error", e.Error,
		"duration", e.Duration,
	)
}

// benchEnv bundles a service with the resources it holds.
type benchEnv struct {
	svc      *core.Service
	registry *prometheus.Registry
	close    func() error
}

// openBench opens the configured store and wires logging, audit and
// metrics into a service. LABWORKS_TRACE=1 writes spans to stderr.
func openBench(stderr io.Writer) (*benchEnv, error) {
	logger := newLogger(stderr)
	store, err := core.OpenPersistentStore(core.NewDefaultRulesEngine())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	prom, err := core.NewPrometheusMetricsRecorder(reg)
	if err != nil {
		if c, ok := store.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}
	opts := []core.ServiceOption{
		core.WithLogger(logger),
		core.WithAuditRecorder(auditLog{logger: logger}),
		core.WithMetricsRecorder(core.MultiMetricsRecorder{prom, core.NewExpvarMetricsRecorder("")}),
	}
	if v := os.Getenv("LABWORKS_TRACE"); v == "1" || strings.EqualFold(v, "true") {
		opts = append(opts, core.WithTracer(core.NewJSONTracer(stderr)))
	}
	env := &benchEnv{
		svc:      core.NewService(store, opts...),
		registry: reg,
		close:    func() error { return nil },
	}
	if c, ok := store.(io.Closer); ok {
		env.close = c.Close
	}
	return env, nil
}

func runDemo(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	b, err := seed.Decode(seed.Default())
	if err != nil {
		return err
	}
	w := &lineWriter{w: stdout}
	for _, k := range b.Keyboards {
		w.println(k)
	}
	for _, s := range b.Samples {
		w.println(s)
		if err := s.AddWater(5); err != nil {
			return err
		}
		w.println(s)
	}
	for _, c := range b.Coffees {
		w.println(c)
		c.SetNotifier(domain.WriterNotifier{W: stdout})
		if c.NeedMilk() {
			if err := c.AddMilk(50); err != nil {
				return err
			}
		}
		if c.NeedSugar() {
			if err := c.AddSugar(10); err != nil {
				return err
			}
		}
		w.println(c)
	}
	for _, p := range b.Plants {
		w.println(p)
	}
	for _, a := range b.Araucarias {
		w.println(a)
		if err := a.Watering(0.4, true); err != nil {
			return err
		}
		w.println(a)
	}
	for _, f := range b.Fittonias {
		w.println(f)
		if err := f.AddFertilizer(0.2); err != nil {
			return err
		}
		w.println(f)
	}

	empty := domain.NewLibrary()
	w.printf("empty library next id: %d\n", empty.NextBookID())
	lib, err := b.Library()
	if err != nil {
		return err
	}
	w.println(lib)
	w.printf("next id: %d\n", lib.NextBookID())
	if idx, err := lib.IndexByBookID(1); err == nil {
		w.printf("index of book 1: %d\n", idx)
	}
	return w.err
}

type lineWriter struct {
	w   io.Writer
	err error
}

func (l *lineWriter) println(v any) {
	if l.err == nil {
		_, l.err = fmt.Fprintln(l.w, v)
	}
}

func (l *lineWriter) printf(format string, args ...any) {
	if l.err == nil {
		_, l.err = fmt.Fprintf(l.w, format, args...)
	}
}

func runSeed(args []string, stdout, stderr io.Writer) (err error) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "fixture path (.yaml or .json); the embedded fixture when empty")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	fx := seed.Default()
	if *file != "" {
		if fx, err = seed.Load(*file); err != nil {
			return err
		}
	}
	env, err := openBench(stderr)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, env.close()) }()

	sum, err := seed.Apply(context.Background(), env.svc, fx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "seeded %d records\n", sum.Total())
	return err
}

func runArchive(args []string, stdout, stderr io.Writer) (err error) {
	fs := flag.NewFlagSet("archive", flag.ContinueOnError)
	fs.SetOutput(stderr)
	key := fs.String("key", "", "blob key; reports/bench-<timestamp>.md when empty")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	ctx := context.Background()
	store, err := blob.Open(ctx)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	env, err := openBench(stderr)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, env.close()) }()

	info, err := env.svc.ArchiveReport(ctx, store, *key)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "archived %s (%d bytes)\n", info.Key, info.Size)
	return err
}

func runServe(args []string, stderr io.Writer) (err error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", ":8080", "listen address")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	env, err := openBench(stderr)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, env.close()) }()

	logger := newLogger(stderr)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           bench.NewRouter(env.svc, bench.Options{Gatherer: env.registry, Logger: logger}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("serving bench api", "addr", *addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
