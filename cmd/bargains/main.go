package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/go-bargains/browse"
	"github.com/aluiziolira/go-bargains/config"
	"github.com/aluiziolira/go-bargains/loader"
	"github.com/aluiziolira/go-bargains/models"
	"github.com/aluiziolira/go-bargains/pipeline"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}

	source := flag.String("source", "", "Dataset URL or CSV file path (overrides BARGAINS_DATASET_URL/FILE)")
	filter := flag.String("filter", "", "Filter query, e.g. category=dairy&min_discount=20&sort=savings")
	pages := flag.Int("pages", 0, "Additional pages to reveal after the first")
	pageSize := flag.Int("page-size", cfg.PageSize, "Products per page")
	topN := flag.Int("top", cfg.TopN, "Entries in the top deals and biggest savings lists")
	outputFile := flag.String("output", cfg.OutputFile, "Export the filtered result to this file")
	outputFormat := flag.String("format", cfg.OutputFormat, "Export format: csv, json, or dual")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", cfg.Verbose, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	applySource(cfg, *source)
	cfg.PageSize = *pageSize
	cfg.TopN = *topN
	cfg.OutputFile = *outputFile
	cfg.OutputFormat = strings.ToLower(*outputFormat)
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("loading catalog",
		slog.String("url", cfg.DatasetURL),
		slog.String("file", cfg.DatasetFile),
	)
	products, result, l, err := loader.Load(ctx, cfg)
	if err != nil {
		// A failed load still yields a usable, empty catalog.
		slog.Error("loading catalog failed, continuing with an empty catalog", slog.Any("error", err))
		products = nil
	}

	registry := prometheus.NewRegistry()
	if l != nil {
		registry = l.Metrics.Registry
	}
	metricsServer := startMetricsServer(cfg.MetricsAddr, registry)

	session, err := browse.NewSession(products, browse.Options{
		PageSize:     cfg.PageSize,
		AdvanceDelay: cfg.AdvanceDelay,
		TopN:         cfg.TopN,
		CacheSize:    cacheSize(cfg.CacheSize),
		Locale:       cfg.Locale,
		Logger:       logger,
		Metrics:      browse.NewMetrics(registry),
	})
	if err != nil {
		slog.Error("creating session", slog.Any("error", err))
		os.Exit(1)
	}

	if *filter != "" {
		values, err := url.ParseQuery(strings.TrimPrefix(*filter, "?"))
		if err != nil {
			slog.Error("invalid filter query", slog.Any("error", err))
			os.Exit(1)
		}
		spec, err := browse.ParseSpec(values, session.Spec())
		if err != nil {
			slog.Error("invalid filter", slog.Any("error", err))
			os.Exit(1)
		}
		session.SetSpec(spec)
	}

	for i := 0; i < *pages; i++ {
		if ctx.Err() != nil {
			break
		}
		if !session.RequestAdvance() {
			break
		}
		session.Wait()
	}

	p := newPrinter(os.Stdout, cfg.Locale)
	if result != nil {
		p.loadSummary(result)
	}
	p.overview(session.Overview())
	p.page(session)

	if cfg.OutputFile != "" {
		if err := export(cfg.OutputFormat, cfg.OutputFile, session.Result()); err != nil {
			slog.Error("export failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}
}

// applySource routes a -source value to the URL or file setting.
func applySource(cfg *config.Config, source string) {
	source = strings.TrimSpace(source)
	if source == "" {
		return
	}
	if strings.Contains(source, "://") {
		cfg.DatasetURL = source
		cfg.DatasetFile = ""
		return
	}
	cfg.DatasetFile = source
}

// cacheSize maps the configured size onto browse.Options, where zero means
// the default and negative disables caching.
func cacheSize(configured int) int {
	if configured == 0 {
		return -1
	}
	return configured
}

func startMetricsServer(addr string, registry *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil
	}
	server := &http.Server{
		Addr:    addr,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	slog.Info("metrics server enabled", slog.String("addr", addr))
	return server
}

func export(format, filename string, products []models.Product) error {
	writer, err := pipeline.NewWriter(format, filename)
	if err != nil {
		return err
	}

	written, err := pipeline.Export(writer, products, pipeline.DefaultBatchSize)
	if err == nil && written > 0 {
		err = writer.Validate()
	}
	if closeErr := writer.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	slog.Info("result exported",
		slog.String("file", filename),
		slog.String("format", format),
		slog.Int("products", written),
	)
	return nil
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
