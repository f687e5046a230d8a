package printing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts, dates and enum labels for a locale
type Formatter struct {
	printer  *message.Printer
	currency string
	title    cases.Caser
}

// NewFormatter builds a formatter. An unparsable locale falls back to English
// and an unknown currency code prints amounts without a code.
func NewFormatter(locale, currencyCode string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	code := ""
	if unit, err := currency.ParseISO(strings.TrimSpace(currencyCode)); err == nil {
		code = unit.String()
	}
	return &Formatter{
		printer:  message.NewPrinter(tag),
		currency: code,
		title:    cases.Title(tag),
	}
}

// Amount formats d with locale digit grouping and two decimals, prefixed by
// the currency code. The integer part goes through the printer as an int64 so
// no float conversion happens.
func (f *Formatter) Amount(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	whole, _ := decimal.NewFromString(intPart)

	out := sign + f.printer.Sprintf("%d", whole.IntPart()) + "." + frac
	if f.currency != "" {
		return f.currency + " " + out
	}
	return out
}

// Date formats t as "07 Apr 2026"
func (f *Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}

// Label turns an enum value such as BANK_TRANSFER into "Bank Transfer"
func (f *Formatter) Label(v string) string {
	return f.title.String(strings.ReplaceAll(strings.ToLower(v), "_", " "))
}
