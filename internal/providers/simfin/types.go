package simfin

import (
	"strings"

	"github.com/seenimoa/finchat/pkg/models"
)

// compactCompany is one element of the v3 compact statements response.
type compactCompany struct {
	ID         int64              `json:"id"`
	Name       string             `json:"name"`
	Ticker     string             `json:"ticker"`
	Currency   string             `json:"currency"`
	Statements []compactStatement `json:"statements"`
}

// compactStatement holds a header row and the data rows aligned with it.
type compactStatement struct {
	Statement string   `json:"statement"`
	Columns   []string `json:"columns"`
	Data      [][]any  `json:"data"`
}

// FieldGroup is one display category and the provider columns it shows.
type FieldGroup struct {
	Category string
	Fields   []string
}

var metadataFields = []string{"Report Date", "Publish Date", "Source"}

// layouts declares, per statement, which columns are summarized and how
// they are grouped. Labels match the provider's column names exactly.
var layouts = map[models.StatementType][]FieldGroup{
	models.StatementBalanceSheet: {
		{"Assets", []string{
			"Cash, Cash Equivalents & Short Term Investments",
			"Accounts & Notes Receivable",
			"Inventories",
			"Other Short Term Assets",
			"Total Current Assets",
			"Total Noncurrent Assets",
			"Total Assets",
		}},
		{"Liabilities", []string{
			"Accounts Payable",
			"Short Term Debt",
			"Total Current Liabilities",
			"Long Term Debt",
			"Total Noncurrent Liabilities",
			"Total Liabilities",
		}},
		{"Equity", []string{
			"Common Stock",
			"Retained Earnings",
			"Total Equity",
		}},
		{"Summary", []string{"Total Liabilities & Equity"}},
		{"Metadata", metadataFields},
	},
	models.StatementCashFlow: {
		{"Operating Activities", []string{
			"Change in Working Capital",
			"Net Cash from Operating Activities",
		}},
		{"Investing Activities", []string{
			"Acquisition of Fixed Assets & Intangibles",
			"Net Cash from Investing Activities",
		}},
		{"Financing Activities", []string{
			"Dividends Paid",
			"Cash from (Repayment of) Debt",
			"Net Cash from Financing Activities",
		}},
		{"Net Change", []string{"Net Change in Cash"}},
		{"Metadata", metadataFields},
	},
	models.StatementProfitLoss: {
		{"Income", []string{"Revenue", "Gross Profit"}},
		{"Expenses", []string{"Operating Expenses"}},
		{"Profitability", []string{"Operating Income (Loss)", "Pretax Income (Loss)"}},
		{"Metadata", metadataFields},
	},
	models.StatementDerived: {
		{"Profitability Metrics", []string{
			"EBITDA",
			"Gross Profit Margin",
			"Operating Margin",
			"Net Profit Margin",
			"Return on Equity",
			"Return on Assets",
			"Return On Invested Capital",
		}},
		{"Liquidity Metrics", []string{"Current Ratio"}},
		{"Solvency Metrics", []string{
			"Total Debt",
			"Liabilities to Equity Ratio",
			"Debt Ratio",
		}},
		{"Cash Flow Metrics", []string{
			"Free Cash Flow",
			"Free Cash Flow to Net Income",
			"Cash Return On Invested Capital",
		}},
		{"Other Important Metrics", []string{
			"Piotroski F-Score",
			"Net Debt / EBITDA",
			"Dividend Payout Ratio",
		}},
		{"Metadata", []string{"Report Date"}},
	},
}

// Layout returns the category table for a statement, or nil.
func Layout(st models.StatementType) []FieldGroup {
	return layouts[st]
}

// derivedAmounts are the derived columns that carry currency amounts; the
// rest of the derived statement is ratios and scores.
var derivedAmounts = map[string]bool{
	"EBITDA":         true,
	"Total Debt":     true,
	"Free Cash Flow": true,
}

// monetary reports whether a summarized field is a currency amount.
func monetary(st models.StatementType, category, field string) bool {
	if category == "Metadata" {
		return false
	}
	if st == models.StatementDerived {
		return derivedAmounts[field]
	}
	return true
}

var symbolsByCode = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"INR": "₹",
	"CAD": "C$",
	"AUD": "A$",
}

// currencySymbol maps an ISO 4217 code to its display prefix. Unknown codes
// are shown as the code itself.
func currencySymbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if s, ok := symbolsByCode[code]; ok {
		return s
	}
	return code + " "
}
