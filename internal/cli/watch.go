package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/fetchqb/internal/catalog"
	"github.com/roach88/fetchqb/internal/metrics"
	"github.com/roach88/fetchqb/internal/session"
	"github.com/roach88/fetchqb/internal/watch"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	MetricsAddr string
	Debounce    time.Duration
	Once        bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Reload a FetchXML file into an editing session on every save",
		Long: `Load a FetchXML file into an editing session and print the canonical
document each time the session emits. The file is reloaded whenever it
is written, and editors that save through a rename are followed.

When a catalog is configured, the fields of the document's entity are
handed to the session after each load.

Examples:
  fetchqb watch query.xml
  fetchqb watch query.xml --metrics-addr :9464
  fetchqb watch query.xml --once --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 0, "quiet period before reloading (default from watch-debounce)")
	cmd.Flags().BoolVar(&opts.Once, "once", false, "load the file once and exit")

	return cmd
}

// changePrinter writes session changes to w. Emissions may arrive from the
// watcher goroutine, so writes are serialized.
type changePrinter struct {
	mu     sync.Mutex
	w      io.Writer
	format string
}

func (p *changePrinter) print(change session.Change) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.format == "json" {
		_ = json.NewEncoder(p.w).Encode(CLIResponse{Status: "ok", Data: change})
		return
	}
	if change.Recovered {
		fmt.Fprintf(p.w, "-- %d (recovered)\n%s\n", change.Seq, change.XML)
		return
	}
	fmt.Fprintf(p.w, "-- %d\n%s\n", change.Seq, change.XML)
}

func runWatch(opts *WatchOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg := opts.settings()
	logger := opts.log()

	var cat *catalog.Catalog
	if cfg.Catalog != "" {
		var err error
		cat, err = catalog.Load(cfg.Catalog)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeCatalogFailed, fmt.Sprintf("loading catalog %s", cfg.Catalog), err)
		}
	}

	collector := metrics.NewCollector(nil)
	printer := &changePrinter{w: formatter.Writer, format: formatter.Format}
	sess := session.New(printer.print,
		session.WithLogger(logger),
		session.WithRecorder(collector),
		session.WithEntityPlaceholder(cfg.EntityPlaceholder),
		session.WithPreserveWildcards(cfg.PreserveWildcards),
	)

	reload := func(ctx context.Context) error {
		return reloadSession(ctx, sess, cat, path, logger)
	}

	if opts.Once {
		if err := reload(cmd.Context()); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("reading %s", path), err)
		}
		return nil
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = cfg.WatchDebounce
	}
	w, err := watch.New(path, watch.WithDebounce(debounce), watch.WithLogger(logger))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("watching %s", path), err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.MetricsAddr != "" {
		stop, err := serveMetrics(opts.MetricsAddr, collector, logger)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("listening on %s", opts.MetricsAddr), err)
		}
		defer stop()
	}

	if err := reload(ctx); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("initial load failed")
	}
	formatter.VerboseLog("Watching %s", w.Path())

	if err := w.Watch(ctx, reload); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("watching %s", path), err)
	}
	return nil
}

// reloadSession reads path into sess and emits the result. A document that
// cannot be decoded still emits, as the reset session's empty query.
func reloadSession(ctx context.Context, sess *session.Session, cat *catalog.Catalog, path string, logger zerolog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := sess.Load(string(data)); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("document rejected")
	}

	if cat != nil && sess.EntityName() != "" {
		meta, err := cat.FieldsFor(ctx, sess.EntityName())
		if err == nil {
			sess.SetFields(catalog.Descriptors(meta))
			return nil
		}
		logger.Debug().Err(err).Str("entity", sess.EntityName()).Msg("no catalog fields")
	}

	sess.Refresh()
	return nil
}

// serveMetrics serves the collector on addr until the returned function is
// called.
func serveMetrics(addr string, collector *metrics.Collector, logger zerolog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	logger.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
