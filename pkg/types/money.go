package types

import (
	"fmt"
	"strconv"
)

// Money mirrors the commerce platform's money shape: a decimal amount
// rendered as a string plus an ISO currency code.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// Float parses the decimal amount. A malformed amount parses as zero.
func (m Money) Float() float64 {
	value, err := strconv.ParseFloat(m.Amount, 64)
	if err != nil {
		return 0
	}
	return value
}

// IsZero reports whether the money value carries no amount at all.
func (m Money) IsZero() bool {
	return m.Amount == "" && m.CurrencyCode == ""
}

// FormatAmount renders a float the way the platform does: two decimals.
func FormatAmount(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

// FormatMoney renders "CUR 12.34" for display.
func FormatMoney(currency string, value float64) string {
	return fmt.Sprintf("%s %s", currency, FormatAmount(value))
}
