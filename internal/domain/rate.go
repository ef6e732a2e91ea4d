package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateKeyLayout is the DD.MM.YYYY form the rate provider expects
	DateKeyLayout = "02.01.2006"

	// MaxDays bounds one aggregation window (and is the default when unspecified)
	MaxDays = 10
	MinDays = 1
)

// DefaultCurrencies are always part of a CurrencySet
var DefaultCurrencies = []string{"EUR", "USD"}

// DateKey is a calendar date without time-of-day or zone.
type DateKey struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDateKey takes the calendar date of t in t's own location.
func NewDateKey(t time.Time) DateKey {
	y, m, d := t.Date()
	return DateKey{Year: y, Month: m, Day: d}
}

// ParseDateKey parses the DD.MM.YYYY form.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(DateKeyLayout, s)
	if err != nil {
		return DateKey{}, fmt.Errorf("parse date key %q: %w", s, err)
	}
	return NewDateKey(t), nil
}

// Time returns midnight UTC of the date.
func (k DateKey) Time() time.Time {
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, time.UTC)
}

// Prev returns the previous calendar day.
func (k DateKey) Prev() DateKey {
	return NewDateKey(time.Date(k.Year, k.Month, k.Day-1, 0, 0, 0, 0, time.UTC))
}

func (k DateKey) String() string {
	return k.Time().Format(DateKeyLayout)
}

func (k DateKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *DateKey) UnmarshalText(b []byte) error {
	parsed, err := ParseDateKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ClampDays forces a day count into [MinDays, MaxDays].
func ClampDays(days int) int {
	if days > MaxDays {
		return MaxDays
	}
	if days < MinDays {
		return MinDays
	}
	return days
}

// BuildDateList returns ClampDays(days) keys, starting at ref and stepping back one day each.
func BuildDateList(ref time.Time, days int) []DateKey {
	days = ClampDays(days)
	dates := make([]DateKey, 0, days)
	key := NewDateKey(ref)
	for i := 0; i < days; i++ {
		dates = append(dates, key)
		key = key.Prev()
	}
	return dates
}

// CurrencySet is an ordered, duplicate-free set of uppercase currency codes.
// It always starts with DefaultCurrencies.
type CurrencySet []string

// NewCurrencySet builds a fresh set from user tokens. Empty tokens are ignored.
func NewCurrencySet(tokens ...string) CurrencySet {
	set := make(CurrencySet, 0, len(DefaultCurrencies)+len(tokens))
	set = append(set, DefaultCurrencies...)
	for _, tok := range tokens {
		code := strings.ToUpper(strings.TrimSpace(tok))
		if code == "" || set.Contains(code) {
			continue
		}
		set = append(set, code)
	}
	return set
}

// Contains reports whether code (already uppercase) is in the set.
func (s CurrencySet) Contains(code string) bool {
	for _, c := range s {
		if c == code {
			return true
		}
	}
	return false
}

// QuotedRate is one currency line as reported by the provider.
type QuotedRate struct {
	Currency string
	Sale     decimal.NullDecimal
	Purchase decimal.NullDecimal
}

// Rate is the sale/purchase pair of one currency on one date.
// An invalid NullDecimal is the "unavailable" sentinel.
type Rate struct {
	Sale     decimal.NullDecimal `json:"sale"`
	Purchase decimal.NullDecimal `json:"purchase"`
}

// RateSnapshot maps currency code to its rate for one date.
type RateSnapshot map[string]Rate

// NewRateSnapshot keeps only the quotes whose currency is in the set.
func NewRateSnapshot(quotes []QuotedRate, currencies CurrencySet) RateSnapshot {
	snap := make(RateSnapshot)
	for _, q := range quotes {
		code := strings.ToUpper(q.Currency)
		if !currencies.Contains(code) {
			continue
		}
		snap[code] = Rate{Sale: q.Sale, Purchase: q.Purchase}
	}
	return snap
}

// DatedSnapshot pairs a date with its rates. Rates is empty when the fetch failed.
type DatedSnapshot struct {
	Date  DateKey      `json:"date"`
	Rates RateSnapshot `json:"rates"`
}

// AggregationResult holds one DatedSnapshot per requested date, in date-list order.
type AggregationResult struct {
	Currencies CurrencySet     `json:"currencies"`
	Snapshots  []DatedSnapshot `json:"snapshots"`
}

// RateRow is one (date, currency) line of a rendered result.
type RateRow struct {
	Date     DateKey
	Currency string
	Rate     Rate
}

// Rows flattens the result in date order, then currency-set order.
// Currencies missing from a snapshot produce no row.
func (r AggregationResult) Rows() []RateRow {
	var rows []RateRow
	for _, ds := range r.Snapshots {
		for _, code := range r.Currencies {
			rate, ok := ds.Rates[code]
			if !ok {
				continue
			}
			rows = append(rows, RateRow{Date: ds.Date, Currency: code, Rate: rate})
		}
	}
	return rows
}

// EmptyDates lists dates whose snapshot holds no rates (failed fetch or no matching currency).
func (r AggregationResult) EmptyDates() []DateKey {
	var empty []DateKey
	for _, ds := range r.Snapshots {
		if len(ds.Rates) == 0 {
			empty = append(empty, ds.Date)
		}
	}
	return empty
}

// FormatRate renders a rate value, or "null" when unavailable.
func FormatRate(v decimal.NullDecimal) string {
	if !v.Valid {
		return "null"
	}
	return v.Decimal.String()
}
