package browse

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/aluiziolira/go-bargains/models"
	"github.com/aluiziolira/go-bargains/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// catalog returns n products; every third is discounted and every fourth
// carries a purchase limit. Prices run from 1.25 upwards.
func catalog(n int) []models.Product {
	cats := []string{"dairy", "meat", "bakery"}
	out := make([]models.Product, 0, n)
	for i := 0; i < n; i++ {
		p := models.Product{
			ID:       fmt.Sprintf("p%03d", i),
			Name:     fmt.Sprintf("Item %03d", i),
			Category: cats[i%len(cats)],
			Price:    1.25 + float64(i),
		}
		if i%3 == 0 {
			p.Discount = ptr(10 + i%40)
			p.OriginalPrice = ptr(p.Price * 2)
		}
		if i%4 == 0 {
			p.Limit = "2"
		}
		out = append(out, p)
	}
	return out
}

func newSession(t *testing.T, products []models.Product, opts Options) *Session {
	t.Helper()
	s, err := NewSession(products, opts)
	require.NoError(t, err)
	return s
}

func TestNewSessionCorrectsPriceRange(t *testing.T) {
	s := newSession(t, catalog(72), Options{})

	assert.Equal(t, 72.25, s.MaxPrice())
	assert.Equal(t, [2]float64{0, 73}, s.Spec().PriceRange)
	assert.Len(t, s.Result(), 72)
	assert.Equal(t, 0, s.ActiveFilterCount())
	assert.Equal(t, []string{"bakery", "dairy", "meat"}, s.Categories())
	assert.NotEmpty(t, s.ID())
}

func TestEmptyCatalogKeepsDefaultRange(t *testing.T) {
	s := newSession(t, nil, Options{})

	assert.Equal(t, pipeline.DefaultSpec().PriceRange, s.Spec().PriceRange)
	assert.Empty(t, s.Result())
	assert.Empty(t, s.Visible())
	assert.False(t, s.HasMore())
	assert.False(t, s.RequestAdvance())
	assert.Equal(t, 0, s.Overview().Summary.TotalProducts)
}

func TestPaginationScenario(t *testing.T) {
	s := newSession(t, catalog(72), Options{PageSize: 30})

	assert.Len(t, s.Visible(), 30)
	assert.True(t, s.HasMore())

	require.True(t, s.RequestAdvance())
	s.Wait()
	assert.Len(t, s.Visible(), 60)

	require.True(t, s.RequestAdvance())
	s.Wait()
	assert.Len(t, s.Visible(), 72)
	assert.False(t, s.HasMore())
	assert.False(t, s.RequestAdvance())
}

func TestSetSpecResetsPagination(t *testing.T) {
	s := newSession(t, catalog(72), Options{PageSize: 30})
	require.True(t, s.RequestAdvance())
	s.Wait()
	require.Len(t, s.Visible(), 60)

	spec := s.Spec()
	spec.Categories = []string{"dairy"}
	s.SetSpec(spec)

	assert.Equal(t, 30, s.Revealed())
	assert.Len(t, s.Result(), 24)
	for _, p := range s.Result() {
		assert.Equal(t, "dairy", p.Category)
	}
	assert.Equal(t, 1, s.ActiveFilterCount())
}

func TestSetSpecResetDiscardsPendingAdvance(t *testing.T) {
	s := newSession(t, catalog(72), Options{PageSize: 30, AdvanceDelay: 20 * time.Millisecond})

	require.True(t, s.RequestAdvance())
	s.SetSpec(s.Spec())
	s.Wait()

	assert.Equal(t, 30, s.Revealed())
	assert.True(t, s.RequestAdvance())
	s.Wait()
	assert.Equal(t, 60, s.Revealed())
}

func TestSetSpecIsolatedFromCaller(t *testing.T) {
	s := newSession(t, catalog(12), Options{})
	spec := s.Spec()
	spec.Categories = []string{"meat"}
	s.SetSpec(spec)

	spec.Categories[0] = "dairy"
	assert.Equal(t, []string{"meat"}, s.Spec().Categories)
}

func TestResultCache(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	s := newSession(t, catalog(30), Options{Metrics: metrics})

	spec := s.Spec()
	spec.MinDiscount = 20
	s.SetSpec(spec)
	first := s.Result()

	s.SetSpec(s.Spec())
	second := s.Result()

	assert.Equal(t, first, second)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RunsTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.RunsTotal.WithLabelValues("miss")))
	assert.Equal(t, float64(len(second)), testutil.ToFloat64(metrics.ResultSize))
}

func TestResultCacheKeepsFreeTextSpecsApart(t *testing.T) {
	products := []models.Product{
		{ID: "1", Name: "Alpha", Category: "a", Price: 3},
		{ID: "2", Name: "Beta", Category: "b", Price: 4},
		{ID: "3", Name: "Gamma", Category: "a\x1fb", Price: 40},
	}
	s := newSession(t, products, Options{})

	specs := []models.FilterSpec{
		{Categories: []string{"a\x1fb"}, PriceRange: [2]float64{0, 50}, SortKey: models.SortName},
		{Categories: []string{"a", "b"}, PriceRange: [2]float64{0, 50}, SortKey: models.SortName},
		{Categories: []string{"a|p=0:5|d=0|q="}, PriceRange: [2]float64{0, 50}, SortKey: models.SortName},
		{Categories: []string{"a"}, PriceRange: [2]float64{0, 5}, SearchQuery: "|p=0:50|d=0|q=", SortKey: models.SortName},
		{Categories: []string{"a"}, PriceRange: [2]float64{0, 5}, SortKey: models.SortName},
	}
	for _, spec := range specs {
		s.SetSpec(spec)
		assert.Equal(t, pipeline.Run(products, spec), s.Result(), "spec %q", spec.Key())
	}
	// Second pass is served from the cache.
	for _, spec := range specs {
		s.SetSpec(spec)
		assert.Equal(t, pipeline.Run(products, spec), s.Result(), "cached spec %q", spec.Key())
	}
}

func TestSetProductsPurgesCache(t *testing.T) {
	s := newSession(t, catalog(10), Options{})
	require.Len(t, s.Result(), 10)

	s.SetProducts(catalog(40))

	assert.Len(t, s.Result(), 40)
	assert.Equal(t, [2]float64{0, 41}, s.Spec().PriceRange)
	assert.Equal(t, 40, s.Overview().Summary.TotalProducts)
}

func TestCacheDisabled(t *testing.T) {
	s := newSession(t, catalog(10), Options{CacheSize: -1})
	s.SetSpec(s.Spec())
	assert.Len(t, s.Result(), 10)
}

func TestAdvanceMetrics(t *testing.T) {
	metrics := NewMetrics(nil)
	s := newSession(t, catalog(40), Options{PageSize: 30, Metrics: metrics})

	require.True(t, s.RequestAdvance())
	s.Wait()
	assert.False(t, s.RequestAdvance())

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AdvanceTotal.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AdvanceTotal.WithLabelValues("ignored")))
}

func TestOverview(t *testing.T) {
	s := newSession(t, catalog(72), Options{TopN: 5})
	o := s.Overview()

	require.Len(t, o.TopDeals, 5)
	require.Len(t, o.BiggestSavings, 5)
	for i := 1; i < len(o.TopDeals); i++ {
		assert.GreaterOrEqual(t, *o.TopDeals[i-1].Discount, *o.TopDeals[i].Discount)
	}
	assert.Len(t, o.Categories, 3)
	assert.Equal(t, 72, o.Summary.TotalProducts)
	assert.Equal(t, 24, o.Summary.OnSale)

	// The overview ignores the active filter.
	spec := s.Spec()
	spec.Categories = []string{"bakery"}
	s.SetSpec(spec)
	assert.Equal(t, o, s.Overview())
}

func TestParseSpec(t *testing.T) {
	base := pipeline.DefaultSpec()
	values, err := url.ParseQuery("category=dairy&category=meat&category=&category=bakery&min_price=2.5&max_price=40&min_discount=25&q=milk&sort=PRICE-LOW&has_limit=yes&page=3")
	require.NoError(t, err)

	spec, err := ParseSpec(values, base)
	require.NoError(t, err)

	assert.Equal(t, []string{"dairy", "meat", "bakery"}, spec.Categories)
	assert.Equal(t, [2]float64{2.5, 40}, spec.PriceRange)
	assert.Equal(t, 25, spec.MinDiscount)
	assert.Equal(t, "milk", spec.SearchQuery)
	assert.Equal(t, models.SortPriceLow, spec.SortKey)
	require.NotNil(t, spec.HasLimit)
	assert.True(t, *spec.HasLimit)
}

func TestParseSpecCategoriesAreExact(t *testing.T) {
	products := []models.Product{
		{ID: "1", Name: "Fish & chips", Category: "fish, chips", Price: 9},
		{ID: "2", Name: "Snapper", Category: " seafood", Price: 12},
		{ID: "3", Name: "Chips", Category: "chips", Price: 3},
	}
	values := url.Values{"category": {"fish, chips", " seafood"}, "q": {" chips"}}

	spec, err := ParseSpec(values, pipeline.DefaultSpec())
	require.NoError(t, err)

	assert.Equal(t, []string{"fish, chips", " seafood"}, spec.Categories)
	assert.Equal(t, " chips", spec.SearchQuery)

	spec.SearchQuery = ""
	got := pipeline.Run(products, spec)
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{"1", "2"}, []string{got[0].ID, got[1].ID})
}

func TestParseSpecKeepsBase(t *testing.T) {
	base := pipeline.DefaultSpec()
	base.Categories = []string{"meat"}
	base.HasLimit = ptr(false)

	spec, err := ParseSpec(url.Values{"q": {"steak"}}, base)
	require.NoError(t, err)

	assert.Equal(t, []string{"meat"}, spec.Categories)
	assert.Equal(t, base.PriceRange, spec.PriceRange)
	assert.Equal(t, "steak", spec.SearchQuery)
	require.NotNil(t, spec.HasLimit)
	assert.False(t, *spec.HasLimit)

	spec.Categories[0] = "dairy"
	assert.Equal(t, "meat", base.Categories[0])
}

func TestParseSpecHasLimitAny(t *testing.T) {
	base := pipeline.DefaultSpec()
	base.HasLimit = ptr(true)

	spec, err := ParseSpec(url.Values{"has_limit": {"any"}}, base)
	require.NoError(t, err)
	assert.Nil(t, spec.HasLimit)
}

func TestParseSpecErrors(t *testing.T) {
	base := pipeline.DefaultSpec()

	_, err := ParseSpec(url.Values{"sort": {"popular"}}, base)
	assert.ErrorIs(t, err, ErrInvalidSortKey)

	_, err = ParseSpec(url.Values{"min_discount": {"lots"}}, base)
	assert.Error(t, err)

	_, err = ParseSpec(url.Values{"has_limit": {"maybe"}}, base)
	assert.Error(t, err)
}
