package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency identifies a display currency supported by the storefront.
type Currency string

const (
	// CurrencyUSD is the canonical catalog currency. All stored prices are USD.
	CurrencyUSD Currency = "USD"
	// CurrencyKES is the Kenyan shilling display currency.
	CurrencyKES Currency = "KES"
)

// USDToKESRate is the fixed conversion rate applied when rendering KES prices.
const USDToKESRate = 129.0

var kesPrinter = message.NewPrinter(language.English)

// ParseCurrency normalises a currency code from user input. Empty input
// defaults to USD.
func ParseCurrency(raw string) (Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", string(CurrencyUSD):
		return CurrencyUSD, nil
	case string(CurrencyKES):
		return CurrencyKES, nil
	default:
		return "", fmt.Errorf("domain: unsupported currency %q", raw)
	}
}

// Valid reports whether the currency is one of the supported codes.
func (c Currency) Valid() bool {
	return c == CurrencyUSD || c == CurrencyKES
}

// Symbol returns the prefix used when rendering amounts in this currency.
func (c Currency) Symbol() string {
	if c == CurrencyKES {
		return "KSh"
	}
	return "$"
}

// ConvertPrice converts a canonical USD amount into the display currency.
// KES amounts are rounded to whole shillings.
func ConvertPrice(priceUSD float64, currency Currency) float64 {
	if currency == CurrencyKES {
		return math.Round(priceUSD * USDToKESRate)
	}
	return priceUSD
}

// FormatPrice renders a canonical USD amount for display in the given
// currency. USD keeps the amount as-is ("$89", "$89.5"); KES rounds to whole
// shillings and applies thousands grouping ("KSh 11,481").
func FormatPrice(priceUSD float64, currency Currency) string {
	converted := ConvertPrice(priceUSD, currency)
	if currency == CurrencyKES {
		return kesPrinter.Sprintf("KSh %d", int64(converted))
	}
	return "$" + strconv.FormatFloat(converted, 'f', -1, 64)
}
