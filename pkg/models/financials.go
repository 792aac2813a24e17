package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// StatementType identifies one of the four statement reports fetched per
// company and period.
type StatementType string

const (
	StatementBalanceSheet StatementType = "bs"
	StatementCashFlow     StatementType = "cf"
	StatementProfitLoss   StatementType = "pl"
	StatementDerived      StatementType = "derived"
)

// AllStatements returns the statement types in fetch and display order.
func AllStatements() []StatementType {
	return []StatementType{
		StatementBalanceSheet,
		StatementCashFlow,
		StatementDerived,
		StatementProfitLoss,
	}
}

// Title returns the human-readable statement name.
func (s StatementType) Title() string {
	switch s {
	case StatementBalanceSheet:
		return "Balance Sheet"
	case StatementCashFlow:
		return "Cash Flow"
	case StatementProfitLoss:
		return "Profit Loss"
	case StatementDerived:
		return "Derived"
	}
	return string(s)
}

// ParseStatementType accepts the short statement codes (bs, cf, pl, derived).
func ParseStatementType(s string) (StatementType, error) {
	switch st := StatementType(strings.ToLower(strings.TrimSpace(s))); st {
	case StatementBalanceSheet, StatementCashFlow, StatementProfitLoss, StatementDerived:
		return st, nil
	}
	return "", fmt.Errorf("statement must be one of bs, cf, derived, or pl; got %q", s)
}

// StatementRecord maps a column label to the raw value of one provider row.
type StatementRecord map[string]any

// Field is one labelled, display-formatted value.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Category groups related fields under a heading such as "Assets".
type Category struct {
	Label  string  `json:"label"`
	Fields []Field `json:"fields"`
}

// Summary is the display form of one statement: ordered categories of
// ordered fields. Every declared field is present, either formatted or "N/A".
type Summary struct {
	Statement  StatementType
	categories []Category
}

// NewSummary creates an empty summary for a statement.
func NewSummary(statement StatementType) *Summary {
	return &Summary{Statement: statement}
}

// Add appends a field to category, creating the category on first use.
func (s *Summary) Add(category, label, value string) {
	for i := range s.categories {
		if s.categories[i].Label == category {
			s.categories[i].Fields = append(s.categories[i].Fields, Field{Label: label, Value: value})
			return
		}
	}
	s.categories = append(s.categories, Category{
		Label:  category,
		Fields: []Field{{Label: label, Value: value}},
	})
}

// Categories returns the categories in declaration order.
func (s *Summary) Categories() []Category {
	return s.categories
}

// Get returns the display value of a field.
func (s *Summary) Get(category, label string) (string, bool) {
	for _, c := range s.categories {
		if c.Label != category {
			continue
		}
		for _, f := range c.Fields {
			if f.Label == label {
				return f.Value, true
			}
		}
	}
	return "", false
}

// AsMap flattens the summary into nested maps (order is lost).
func (s *Summary) AsMap() map[string]map[string]string {
	out := make(map[string]map[string]string, len(s.categories))
	for _, c := range s.categories {
		m := make(map[string]string, len(c.Fields))
		for _, f := range c.Fields {
			m[f.Label] = f.Value
		}
		out[c.Label] = m
	}
	return out
}

// MarshalJSON encodes the summary as a nested object keeping declaration order.
func (s *Summary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range s.categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, c.Label); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, f := range c.Fields {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, f.Label); err != nil {
				return nil, err
			}
			v, err := marshalString(f.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalString encodes s without HTML escaping so labels such as
// "Accounts & Notes Receivable" stay readable in the model prompt.
func marshalString(s string) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(b.Bytes(), "\n"), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	k, err := marshalString(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	return nil
}

// Indented returns the summary as 4-space indented JSON.
func (s *Summary) Indented() string {
	raw, err := s.MarshalJSON()
	if err != nil {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// FinancialReport holds all four statement summaries for one company/period.
type FinancialReport struct {
	Ticker     string
	Year       int
	Period     Period
	Statements []*Summary // in AllStatements order
}

// Statement returns the summary for a statement type, or nil.
func (r *FinancialReport) Statement(st StatementType) *Summary {
	for _, s := range r.Statements {
		if s.Statement == st {
			return s
		}
	}
	return nil
}

// Text concatenates the indented JSON of every statement. This is the blob
// handed to the analysis model.
func (r *FinancialReport) Text() string {
	var b strings.Builder
	for _, s := range r.Statements {
		b.WriteString(s.Indented())
		b.WriteString("\n")
	}
	return b.String()
}
