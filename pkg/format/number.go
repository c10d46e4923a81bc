// Package format renders sizing figures for humans.
package format

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Printer formats numbers with the separators of a locale.
type Printer struct {
	p *message.Printer
}

// NewPrinter returns a printer for a BCP 47 locale. An empty or unknown
// locale falls back to English.
func NewPrinter(locale string) *Printer {
	tag := language.English
	if locale != "" {
		if parsed, err := language.Parse(locale); err == nil {
			tag = parsed
		}
	}
	return &Printer{p: message.NewPrinter(tag)}
}

// Decimal returns value with the given number of decimals and thousands
// separators (e.g., "1,234.57").
func (pr *Printer) Decimal(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	if decimals < 0 {
		decimals = 0
	}
	return pr.p.Sprintf(fmt.Sprintf("%%.%df", decimals), value)
}

// Hours returns an hour figure with two decimals.
func (pr *Printer) Hours(value float64) string {
	return pr.Decimal(value, 2)
}

// FTE returns a full-time-equivalent figure with two decimals.
func (pr *Printer) FTE(value float64) string {
	return pr.Decimal(value, 2)
}

// Headcount returns whole headcounts without decimals and partial ones with
// two.
func (pr *Printer) Headcount(value float64) string {
	if value == math.Trunc(value) {
		return pr.Decimal(value, 0)
	}
	return pr.Decimal(value, 2)
}

// Signed returns a headcount with an explicit sign for gains (e.g., "+2").
func (pr *Printer) Signed(value float64) string {
	if value > 0 {
		return "+" + pr.Headcount(value)
	}
	return pr.Headcount(value)
}
