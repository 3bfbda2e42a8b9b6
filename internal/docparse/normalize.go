package docparse

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CanonicalDateLayout is the single date representation used in stored
// records, e.g. "05-Jan-2024".
const CanonicalDateLayout = "02-Jan-2006"

// dateLayouts are the accepted input formats, tried in order. Source
// documents mix two- and four-digit years, abbreviated-month and numeric
// months, and "-" vs "/" separators.
var dateLayouts = []string{
	"2-Jan-06", "2-Jan-2006", "2/Jan/06", "2/Jan/2006",
	"2-1-06", "2-1-2006", "2/1/06", "2/1/2006",
}

// NormalizeDate reformats a textual date to CanonicalDateLayout. Unparsable
// input is returned unchanged: a cosmetic date should never cost us the
// whole record.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(CanonicalDateLayout)
		}
	}
	return raw
}

// NormalizeAmount parses a textual monetary amount, stripping grouping
// separators. Returns zero when the input cannot be parsed.
func NormalizeAmount(raw string) decimal.Decimal {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
