package browse

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-bargains/models"
	"github.com/gorilla/schema"
)

// ErrInvalidSortKey is returned by ParseSpec for an unknown sort value.
var ErrInvalidSortKey = errors.New("browse: invalid sort key")

type specQuery struct {
	Category    []string `schema:"category"`
	MinPrice    *float64 `schema:"min_price"`
	MaxPrice    *float64 `schema:"max_price"`
	MinDiscount *int     `schema:"min_discount"`
	Query       *string  `schema:"q"`
	Sort        *string  `schema:"sort"`
	HasLimit    *string  `schema:"has_limit"`
}

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

// ParseSpec overlays the filter encoded in values onto base. Keys that are
// absent keep the base value. Each category value names one category exactly,
// commas and surrounding spaces included; repeat the key to select several.
// Empty category values are dropped. has_limit accepts a boolean or "any".
func ParseSpec(values url.Values, base models.FilterSpec) (models.FilterSpec, error) {
	var q specQuery
	if err := decoder.Decode(&q, values); err != nil {
		return base, fmt.Errorf("decode filter: %w", err)
	}

	spec := base.Clone()
	if _, ok := values["category"]; ok {
		spec.Categories = nonEmpty(q.Category)
	}
	if q.MinPrice != nil {
		spec.PriceRange[0] = *q.MinPrice
	}
	if q.MaxPrice != nil {
		spec.PriceRange[1] = *q.MaxPrice
	}
	if q.MinDiscount != nil {
		spec.MinDiscount = *q.MinDiscount
	}
	if q.Query != nil {
		spec.SearchQuery = *q.Query
	}
	if q.Sort != nil {
		key := models.SortKey(strings.ToLower(strings.TrimSpace(*q.Sort)))
		if !key.Valid() {
			return base, fmt.Errorf("%w: %q", ErrInvalidSortKey, *q.Sort)
		}
		spec.SortKey = key
	}
	if q.HasLimit != nil {
		limit, err := parseHasLimit(*q.HasLimit)
		if err != nil {
			return base, err
		}
		spec.HasLimit = limit
	}
	return spec, nil
}

func nonEmpty(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func parseHasLimit(raw string) (*bool, error) {
	switch v := strings.ToLower(strings.TrimSpace(raw)); v {
	case "", "any":
		return nil, nil
	case "yes":
		b := true
		return &b, nil
	case "no":
		b := false
		return &b, nil
	default:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("decode filter: has_limit %q: %w", raw, err)
		}
		return &b, nil
	}
}
