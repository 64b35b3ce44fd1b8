package models

import (
	"slices"
	"strconv"
	"strings"
)

// SortKey selects the ordering applied to a filtered result.
type SortKey string

const (
	SortDiscount  SortKey = "discount"
	SortSavings   SortKey = "savings"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortName      SortKey = "name"
)

// SortKeys lists every supported key in display order.
var SortKeys = []SortKey{SortDiscount, SortSavings, SortPriceLow, SortPriceHigh, SortName}

// Valid reports whether k is one of the supported sort keys.
func (k SortKey) Valid() bool {
	return slices.Contains(SortKeys, k)
}

// FilterSpec is the full set of user-chosen filter and sort criteria.
// A spec is treated as a value: callers replace it rather than mutate a
// shared instance.
type FilterSpec struct {
	Categories  []string
	PriceRange  [2]float64
	MinDiscount int
	SearchQuery string
	SortKey     SortKey
	HasLimit    *bool
}

// Clone returns a copy that shares no slices or pointers with s.
func (s FilterSpec) Clone() FilterSpec {
	out := s
	out.Categories = slices.Clone(s.Categories)
	if s.HasLimit != nil {
		v := *s.HasLimit
		out.HasLimit = &v
	}
	return out
}

// Key renders the spec canonically. Category order and duplicates do not
// affect the key. Free-text parts are quoted so that no field can spill into
// the next one.
func (s FilterSpec) Key() string {
	cats := slices.Clone(s.Categories)
	slices.Sort(cats)
	cats = slices.Compact(cats)

	var b strings.Builder
	b.WriteString("c=")
	for i, c := range cats {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(c))
	}
	b.WriteString("|p=")
	b.WriteString(strconv.FormatFloat(s.PriceRange[0], 'g', -1, 64))
	b.WriteByte(':')
	b.WriteString(strconv.FormatFloat(s.PriceRange[1], 'g', -1, 64))
	b.WriteString("|d=")
	b.WriteString(strconv.Itoa(s.MinDiscount))
	b.WriteString("|q=")
	b.WriteString(strconv.Quote(s.SearchQuery))
	b.WriteString("|s=")
	b.WriteString(strconv.Quote(string(s.SortKey)))
	b.WriteString("|l=")
	switch {
	case s.HasLimit == nil:
		b.WriteString("any")
	case *s.HasLimit:
		b.WriteString("yes")
	default:
		b.WriteString("no")
	}
	return b.String()
}
