// Package loader fetches the catalog dataset and hands it to the parser.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/aluiziolira/go-bargains/config"
	"github.com/aluiziolira/go-bargains/models"
	"github.com/aluiziolira/go-bargains/parser"
	"github.com/gocolly/colly/v2"
)

// Loader downloads the dataset with a colly collector and retries transient
// failures with capped exponential backoff.
type Loader struct {
	cfg       *config.Config
	collector *colly.Collector
	transport *contextTransport
	Metrics   *Metrics
}

// New builds a loader for cfg.DatasetURL.
func New(cfg *config.Config) (*Loader, error) {
	parsed, err := url.Parse(cfg.DatasetURL)
	if err != nil {
		return nil, fmt.Errorf("parse dataset url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("dataset url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(cfg.MaxBodySize),
	)
	collector.SetRequestTimeout(cfg.Timeout)

	transport := newContextTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})
	collector.WithTransport(transport)

	return &Loader{
		cfg:       cfg,
		collector: collector,
		transport: transport,
		Metrics:   NewMetrics(),
	}, nil
}

// WithTransport replaces the round tripper used for dataset requests.
// Context cancellation still applies to requests sent through it.
func (l *Loader) WithTransport(rt http.RoundTripper) {
	l.transport.base = rt
}

// Fetch downloads and parses the dataset. The returned LoadResult is always
// non-nil and describes every attempt, including failed ones.
func (l *Loader) Fetch(ctx context.Context) ([]models.Product, *models.LoadResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := &models.LoadResult{
		Source:       l.cfg.DatasetURL,
		StartTime:    time.Now(),
		ErrorsByType: make(map[string]int),
	}
	defer func() { result.EndTime = time.Now() }()

	for attempt := 1; ; attempt++ {
		result.Attempts = attempt

		body, err := l.fetchOnce(ctx)
		if err == nil {
			parsed, err := parser.ParseProducts(bytes.NewReader(body))
			if err != nil {
				err = ErrParse{Err: err}
				result.ErrorsByType[errorTypeLabel(err)]++
				l.Metrics.IncError(errorTypeLabel(err))
				return nil, result, fmt.Errorf("parse dataset: %w", err)
			}
			result.RowCount = parsed.Rows
			result.SkippedRows = parsed.Skipped
			l.Metrics.ObserveCatalog(len(parsed.Products), parsed.Skipped)
			slog.Debug("dataset loaded",
				slog.String("source", result.Source),
				slog.Int("products", len(parsed.Products)),
				slog.Int("attempts", attempt),
			)
			return parsed.Products, result, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			result.ErrorsByType["canceled"]++
			return nil, result, fmt.Errorf("fetch dataset: %w", ctxErr)
		}

		category := errorTypeLabel(err)
		result.ErrorsByType[category]++
		l.Metrics.IncError(category)
		slog.Error("dataset fetch failed",
			slog.String("url", l.cfg.DatasetURL),
			slog.String("category", category),
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)

		if !retryable(err) || attempt > l.cfg.MaxRetries {
			return nil, result, fmt.Errorf("fetch dataset: %w", err)
		}

		result.RetryCount++
		l.Metrics.IncRetries()
		timer := time.NewTimer(backoff(attempt, l.cfg.RetryBackoff, l.cfg.RetryBackoffMax))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, result, fmt.Errorf("fetch dataset: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// fetchOnce runs a single request on a clone of the collector so callbacks do
// not pile up across attempts. The clone shares the transport, which ties the
// request to ctx.
func (l *Loader) fetchOnce(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, release := l.transport.bind(ctx)
	defer release()
	hdr := http.Header{}
	hdr.Set("User-Agent", l.cfg.UserAgent)
	hdr.Set(attemptHeader, id)

	c := l.collector.Clone()
	var (
		body     []byte
		status   int
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	start := time.Now()
	visitErr := c.Request(http.MethodGet, l.cfg.DatasetURL, nil, nil, hdr)
	l.Metrics.ObserveDuration(time.Since(start))

	if fetchErr == nil {
		fetchErr = visitErr
	}
	if fetchErr != nil {
		l.Metrics.IncRequest("error")
		return nil, classifyError(fetchErr, status)
	}
	l.Metrics.IncRequest("ok")
	return body, nil
}

func backoff(attempt int, base, ceiling time.Duration) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(attempt-1))
	if ceiling > 0 && delay > ceiling {
		delay = ceiling
	}
	return delay
}

// LoadFile parses a dataset from a local CSV file.
func LoadFile(path string) ([]models.Product, *models.LoadResult, error) {
	result := &models.LoadResult{
		Source:       path,
		StartTime:    time.Now(),
		Attempts:     1,
		ErrorsByType: make(map[string]int),
	}
	defer func() { result.EndTime = time.Now() }()

	f, err := os.Open(path)
	if err != nil {
		result.ErrorsByType["file"]++
		return nil, result, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	parsed, err := parser.ParseProducts(f)
	if err != nil {
		err = ErrParse{Err: err}
		result.ErrorsByType[errorTypeLabel(err)]++
		return nil, result, fmt.Errorf("parse dataset: %w", err)
	}
	result.RowCount = parsed.Rows
	result.SkippedRows = parsed.Skipped
	return parsed.Products, result, nil
}

// Load reads the dataset from cfg.DatasetFile when set, otherwise from
// cfg.DatasetURL. The Loader is nil for file sources.
func Load(ctx context.Context, cfg *config.Config) ([]models.Product, *models.LoadResult, *Loader, error) {
	switch {
	case cfg.DatasetFile != "":
		products, result, err := LoadFile(cfg.DatasetFile)
		return products, result, nil, err
	case cfg.DatasetURL != "":
		l, err := New(cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		products, result, err := l.Fetch(ctx)
		return products, result, l, err
	default:
		return nil, nil, nil, ErrNoSource
	}
}
