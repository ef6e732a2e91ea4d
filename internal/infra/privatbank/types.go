package privatbank

import (
	"rates_go/internal/domain"

	"github.com/shopspring/decimal"
)

// archiveResponse represents the PrivatBank archive response for one date.
// Reference: https://api.privatbank.ua/#p24/exchangeArchive
type archiveResponse struct {
	Date            string        `json:"date"`            // DD.MM.YYYY
	Bank            string        `json:"bank"`            // "PB"
	BaseCurrency    int           `json:"baseCurrency"`    // 980
	BaseCurrencyLit string        `json:"baseCurrencyLit"` // "UAH"
	ExchangeRate    []archiveRate `json:"exchangeRate"`
}

// archiveRate is one currency line. PrivatBank omits saleRate/purchaseRate for
// currencies it does not trade, so every rate is nullable.
type archiveRate struct {
	BaseCurrency   string              `json:"baseCurrency"`
	Currency       string              `json:"currency"`
	SaleRateNB     decimal.NullDecimal `json:"saleRateNB"`
	PurchaseRateNB decimal.NullDecimal `json:"purchaseRateNB"`
	SaleRate       decimal.NullDecimal `json:"saleRate"`
	PurchaseRate   decimal.NullDecimal `json:"purchaseRate"`
}

// toQuotes converts the wire format into domain quotes (boundary conversion).
func (r *archiveResponse) toQuotes() []domain.QuotedRate {
	quotes := make([]domain.QuotedRate, 0, len(r.ExchangeRate))
	for _, line := range r.ExchangeRate {
		if line.Currency == "" {
			continue
		}
		quotes = append(quotes, domain.QuotedRate{
			Currency: line.Currency,
			Sale:     line.SaleRate,
			Purchase: line.PurchaseRate,
		})
	}
	return quotes
}
