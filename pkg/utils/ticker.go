package utils

import (
	"regexp"
	"strings"
)

// tickerAliases maps share classes and retired symbols to the symbol the
// statements provider files under.
var tickerAliases = map[string]string{
	"GOOGL":     "GOOG",
	"GOOGLE":    "GOOG",
	"ALPHABET":  "GOOG",
	"FB":        "META",
	"FACEBOOK":  "META",
	"APPLE":     "AAPL",
	"AMAZON":    "AMZN",
	"MICROSOFT": "MSFT",
	"TESLA":     "TSLA",
	"NVIDIA":    "NVDA",
}

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.\-]{1,10}$`)

// NormalizeTicker upper-cases a user or model supplied ticker, strips a
// leading "$" and resolves aliases.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	ticker = strings.TrimPrefix(ticker, "$")

	if canonical, ok := tickerAliases[ticker]; ok {
		return canonical
	}
	return ticker
}

// ValidTicker reports whether s looks like an exchange ticker symbol.
func ValidTicker(s string) bool {
	return tickerPattern.MatchString(s)
}
