// Package browse holds the state of one catalog browsing session: the loaded
// dataset, the current filter, the memoised result and its pagination.
package browse

import (
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/aluiziolira/go-bargains/models"
	"github.com/aluiziolira/go-bargains/pagination"
	"github.com/aluiziolira/go-bargains/pipeline"
	"github.com/aluiziolira/go-bargains/stats"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/language"
)

const (
	DefaultTopN      = 12
	DefaultCacheSize = 64
)

// Options configures a Session. Zero values select the defaults.
type Options struct {
	PageSize     int
	AdvanceDelay time.Duration
	TopN         int
	// CacheSize bounds the result cache; a negative value disables it.
	CacheSize int
	Locale    string
	Logger    *slog.Logger
	Metrics   *Metrics
}

// Overview is the whole-catalog dashboard, computed once per dataset.
type Overview struct {
	Categories     []models.CategoryStats
	TopDeals       []models.Product
	BiggestSavings []models.Product
	Summary        models.Summary
}

// Session is safe for concurrent use. Slices it returns are shared snapshots
// and must not be modified.
type Session struct {
	id      string
	topN    int
	lang    language.Tag
	logger  *slog.Logger
	metrics *Metrics
	cache   *lru.Cache[string, []models.Product]
	pager   *pagination.Controller

	mu         sync.RWMutex
	products   []models.Product
	categories []string
	maxPrice   float64
	overview   Overview
	spec       models.FilterSpec
	result     []models.Product
}

// NewSession starts a session over products with the default filter.
func NewSession(products []models.Product, opts Options) (*Session, error) {
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	lang := language.Und
	if opts.Locale != "" {
		if tag, err := language.Parse(opts.Locale); err == nil {
			lang = tag
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.NewString()
	s := &Session{
		id:      id,
		topN:    topN,
		lang:    lang,
		logger:  logger.With(slog.String("session", id)),
		metrics: opts.Metrics,
		pager:   pagination.NewController(opts.PageSize, opts.AdvanceDelay),
		spec:    pipeline.DefaultSpec(),
	}

	cacheSize := opts.CacheSize
	if cacheSize == 0 {
		cacheSize = DefaultCacheSize
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, []models.Product](cacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}

	s.SetProducts(products)
	return s, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// SetProducts replaces the dataset. The price range is widened to
// [0, ceil(max price)], cached results are dropped and pagination restarts.
// An empty dataset keeps the current price range.
func (s *Session) SetProducts(products []models.Product) {
	products = slices.Clone(products)
	overview := Overview{
		Categories:     stats.CategoryStats(products),
		TopDeals:       stats.TopDeals(products, s.topN),
		BiggestSavings: stats.BiggestSavings(products, s.topN),
		Summary:        stats.Summarize(products),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = products
	s.categories = pipeline.Categories(products)
	s.maxPrice = pipeline.MaxPrice(products)
	s.overview = overview
	if len(products) > 0 {
		s.spec.PriceRange = [2]float64{0, math.Ceil(s.maxPrice)}
	}
	if s.cache != nil {
		s.cache.Purge()
	}
	s.runLocked()
	s.pager.Reset()

	s.logger.Info("catalog loaded",
		slog.Int("products", len(products)),
		slog.Int("categories", len(s.categories)),
		slog.Float64("max_price", s.maxPrice),
	)
}

// SetSpec replaces the filter wholesale, recomputes the result and restarts
// pagination.
func (s *Session) SetSpec(spec models.FilterSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spec = spec.Clone()
	s.runLocked()
	s.pager.Reset()
}

func (s *Session) runLocked() {
	key := s.spec.Key()
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.result = cached
			s.metrics.observeRun(true, 0, len(cached))
			s.logger.Debug("filter applied", slog.String("key", key), slog.Bool("cached", true), slog.Int("results", len(cached)))
			return
		}
	}

	start := time.Now()
	result := pipeline.RunLocale(s.products, s.spec, s.lang)
	elapsed := time.Since(start)

	s.result = result
	if s.cache != nil {
		s.cache.Add(key, result)
	}
	s.metrics.observeRun(false, elapsed, len(result))
	s.logger.Debug("filter applied",
		slog.String("key", key),
		slog.Bool("cached", false),
		slog.Int("results", len(result)),
		slog.Duration("elapsed", elapsed),
	)
}

// Spec returns a copy of the current filter.
func (s *Session) Spec() models.FilterSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spec.Clone()
}

// Result returns the full ordered result for the current filter.
func (s *Session) Result() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clip(s.result)
}

// Visible returns the revealed prefix of the result.
func (s *Session) Visible() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pager.Visible(s.result)
}

// Revealed is the number of result positions currently revealed. It may
// exceed the result size.
func (s *Session) Revealed() int {
	return s.pager.Revealed()
}

// HasMore reports whether the result has unrevealed products.
func (s *Session) HasMore() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pager.HasMore(len(s.result))
}

// RequestAdvance asks for the next page. It returns false when the request
// was dropped.
func (s *Session) RequestAdvance() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accepted := s.pager.RequestAdvance(len(s.result))
	s.metrics.observeAdvance(accepted)
	if accepted {
		s.logger.Debug("advance requested", slog.Int("revealed", s.pager.Revealed()), slog.Int("results", len(s.result)))
	}
	return accepted
}

// Wait blocks until a pending advance has settled.
func (s *Session) Wait() {
	s.pager.Wait()
}

// ActiveFilterCount counts the filter dimensions that differ from the
// defaults for the loaded dataset.
func (s *Session) ActiveFilterCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pipeline.ActiveFilterCount(s.spec, s.maxPrice)
}

// Categories returns the distinct categories of the dataset, sorted.
func (s *Session) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

// MaxPrice returns the highest price in the dataset.
func (s *Session) MaxPrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxPrice
}

// Overview returns the dashboard for the loaded dataset.
func (s *Session) Overview() Overview {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overview
}
