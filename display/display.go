// Package display holds presentation helpers that sit outside the catalog
// pipeline: money formatting and the category style table.
package display

import (
	"strconv"
	"strings"

	"github.com/aluiziolira/go-bargains/models"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts for one locale.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter builds a formatter for a BCP 47 locale such as "en-NZ".
// Unparsable locales fall back to English.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Currency formats amount with the symbol for code. Unknown codes use the
// catalog default currency.
func (f *Formatter) Currency(amount float64, code string) string {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		unit = currency.MustParseISO(models.DefaultCurrency)
	}
	return f.printer.Sprint(currency.Symbol(unit.Amount(amount)))
}

// Discount renders a discount badge such as "25% OFF". Absent and zero
// discounts render as the empty string.
func Discount(discount *int) string {
	if discount == nil || *discount == 0 {
		return ""
	}
	return strconv.Itoa(*discount) + "% OFF"
}

// Style is the icon and colour key used to present a category.
type Style struct {
	Icon  string
	Color string
}

// DefaultStyle is returned for categories without an entry.
var DefaultStyle = Style{Icon: "box", Color: "gray"}

// Keys are lower-case; misspellings present in the source data get their
// own entries.
var categoryStyles = map[string]Style{
	"alcohol":   {Icon: "wine", Color: "purple"},
	"baby":      {Icon: "baby", Color: "pink"},
	"bakery":    {Icon: "bread", Color: "amber"},
	"beauty":    {Icon: "brush", Color: "rose"},
	"candy":     {Icon: "chocolate", Color: "indigo"},
	"deli":      {Icon: "cheese", Color: "orange"},
	"dairy":     {Icon: "milk", Color: "blue"},
	"diary":     {Icon: "milk", Color: "blue"},
	"drinks":    {Icon: "glass", Color: "purple"},
	"flowers":   {Icon: "flower", Color: "pink"},
	"frozen":    {Icon: "snowflake", Color: "cyan"},
	"household": {Icon: "home", Color: "slate"},
	"meat":      {Icon: "meat", Color: "red"},
	"medecine":  {Icon: "pharmacy", Color: "teal"},
	"medicine":  {Icon: "pharmacy", Color: "teal"},
	"pantry":    {Icon: "flour", Color: "yellow"},
	"pets":      {Icon: "paw", Color: "amber"},
	"produce":   {Icon: "carrot", Color: "green"},
	"seafood":   {Icon: "fish", Color: "sky"},
	"snacks":    {Icon: "popcorn", Color: "yellow"},
	"other":     DefaultStyle,
}

// CategoryStyle looks up the style for a category name, ignoring case and
// surrounding whitespace.
func CategoryStyle(category string) Style {
	if s, ok := categoryStyles[strings.ToLower(strings.TrimSpace(category))]; ok {
		return s
	}
	return DefaultStyle
}
