package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func TestDateKey_Format(t *testing.T) {
	key := NewDateKey(mustDate(t, "2024-01-05"))
	if key.String() != "05.01.2024" {
		t.Errorf("String() = %q, want %q", key.String(), "05.01.2024")
	}

	parsed, err := ParseDateKey("05.01.2024")
	if err != nil {
		t.Fatalf("ParseDateKey failed: %v", err)
	}
	if parsed != key {
		t.Errorf("ParseDateKey = %+v, want %+v", parsed, key)
	}

	if _, err := ParseDateKey("2024-01-05"); err == nil {
		t.Error("ParseDateKey should reject ISO dates")
	}
}

func TestDateKey_JSON(t *testing.T) {
	key := NewDateKey(mustDate(t, "2024-06-10"))
	b, err := json.Marshal(DatedSnapshot{Date: key})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if got := string(b); got != `{"date":"10.06.2024","rates":null}` {
		t.Errorf("Marshal = %s", got)
	}
}

func TestBuildDateList(t *testing.T) {
	t.Run("clamps to ten entries", func(t *testing.T) {
		dates := BuildDateList(mustDate(t, "2024-06-10"), 15)
		if len(dates) != 10 {
			t.Fatalf("Expected 10 dates, got %d", len(dates))
		}
		if dates[0].String() != "10.06.2024" || dates[9].String() != "01.06.2024" {
			t.Errorf("Unexpected range %s..%s", dates[0], dates[9])
		}
	})

	t.Run("strictly descending by one day", func(t *testing.T) {
		ref := mustDate(t, "2024-03-03") // crosses the leap day
		dates := BuildDateList(ref, 10)
		for i := 1; i < len(dates); i++ {
			diff := dates[i-1].Time().Sub(dates[i].Time())
			if diff != 24*time.Hour {
				t.Errorf("dates[%d]=%s dates[%d]=%s differ by %v", i-1, dates[i-1], i, dates[i], diff)
			}
		}
		if dates[3].String() != "29.02.2024" {
			t.Errorf("Expected leap day at index 3, got %s", dates[3])
		}
	})

	t.Run("crosses year boundary", func(t *testing.T) {
		dates := BuildDateList(mustDate(t, "2024-01-02"), 3)
		want := []string{"02.01.2024", "01.01.2024", "31.12.2023"}
		for i, w := range want {
			if dates[i].String() != w {
				t.Errorf("dates[%d] = %s, want %s", i, dates[i], w)
			}
		}
	})

	t.Run("non-positive becomes one", func(t *testing.T) {
		if got := len(BuildDateList(mustDate(t, "2024-01-02"), 0)); got != 1 {
			t.Errorf("Expected 1 date, got %d", got)
		}
		if got := len(BuildDateList(mustDate(t, "2024-01-02"), -4)); got != 1 {
			t.Errorf("Expected 1 date, got %d", got)
		}
	})

	t.Run("uses the calendar date of the reference location", func(t *testing.T) {
		loc := time.FixedZone("UTC+3", 3*60*60)
		ref := time.Date(2024, 1, 5, 1, 30, 0, 0, loc)
		if got := BuildDateList(ref, 1)[0].String(); got != "05.01.2024" {
			t.Errorf("Expected 05.01.2024, got %s", got)
		}
	})
}

func TestNewCurrencySet(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   CurrencySet
	}{
		{"defaults only", nil, CurrencySet{"EUR", "USD"}},
		{"uppercases additions", []string{"gbp"}, CurrencySet{"EUR", "USD", "GBP"}},
		{"collapses duplicates", []string{"usd", "Jpy", "JPY", "eur"}, CurrencySet{"EUR", "USD", "JPY"}},
		{"ignores blanks", []string{"", "  ", "pln"}, CurrencySet{"EUR", "USD", "PLN"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewCurrencySet(tt.tokens...)
			if len(got) != len(tt.want) {
				t.Fatalf("NewCurrencySet(%v) = %v, want %v", tt.tokens, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("NewCurrencySet(%v) = %v, want %v", tt.tokens, got, tt.want)
				}
			}
		})
	}

	t.Run("fresh set each call", func(t *testing.T) {
		a := NewCurrencySet("chf")
		b := NewCurrencySet()
		if b.Contains("CHF") || len(DefaultCurrencies) != 2 {
			t.Errorf("Currency sets leak between calls: %v %v", a, b)
		}
	})
}

func TestNewRateSnapshot(t *testing.T) {
	quotes := []QuotedRate{
		{Currency: "USD", Sale: decimal.NewNullDecimal(decimal.RequireFromString("41.5")), Purchase: decimal.NewNullDecimal(decimal.RequireFromString("40.9"))},
		{Currency: "EUR", Sale: decimal.NullDecimal{}, Purchase: decimal.NewNullDecimal(decimal.RequireFromString("44.1"))},
		{Currency: "CZK", Sale: decimal.NewNullDecimal(decimal.RequireFromString("1.7"))},
	}

	snap := NewRateSnapshot(quotes, NewCurrencySet())
	if len(snap) != 2 {
		t.Fatalf("Expected 2 currencies, got %d", len(snap))
	}
	if _, ok := snap["CZK"]; ok {
		t.Error("CZK should be filtered out")
	}
	if snap["EUR"].Sale.Valid {
		t.Error("Missing EUR sale rate should be unavailable")
	}
	if FormatRate(snap["EUR"].Sale) != "null" {
		t.Errorf("FormatRate = %q, want null", FormatRate(snap["EUR"].Sale))
	}
	if FormatRate(snap["USD"].Sale) != "41.5" {
		t.Errorf("FormatRate = %q, want 41.5", FormatRate(snap["USD"].Sale))
	}
}

func TestAggregationResult_Rows(t *testing.T) {
	rate := Rate{Sale: decimal.NewNullDecimal(decimal.NewFromInt(1))}
	dates := BuildDateList(mustDate(t, "2024-01-05"), 3)
	res := AggregationResult{
		Currencies: NewCurrencySet("jpy"),
		Snapshots: []DatedSnapshot{
			{Date: dates[0], Rates: RateSnapshot{"JPY": rate, "USD": rate, "EUR": rate}},
			{Date: dates[1], Rates: RateSnapshot{}},
			{Date: dates[2], Rates: RateSnapshot{"USD": rate}},
		},
	}

	rows := res.Rows()
	if len(rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(rows))
	}
	order := []string{"EUR", "USD", "JPY", "USD"}
	for i, code := range order {
		if rows[i].Currency != code {
			t.Errorf("rows[%d].Currency = %s, want %s", i, rows[i].Currency, code)
		}
	}

	empty := res.EmptyDates()
	if len(empty) != 1 || empty[0] != dates[1] {
		t.Errorf("EmptyDates = %v, want [%s]", empty, dates[1])
	}
}
