package agent

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestParseReply(t *testing.T) {
	p := ReplyParser{Repair: true, Now: func() time.Time { return fixedNow }}

	tests := []struct {
		name     string
		input    string
		message  string
		ticker   string // "" means nil
		year     int    // 0 means nil
		period   string // "" means nil
		complete bool
	}{
		{
			name:     "complete",
			input:    `{"message": "Thanks!", "data": {"ticker": "AAPL", "year": 2023, "period": "q1"}}`,
			message:  "Thanks!",
			ticker:   "AAPL",
			year:     2023,
			period:   "q1",
			complete: true,
		},
		{
			name:     "surrounding prose",
			input:    "Sure thing:\n```json\n{\"message\": \"One moment\", \"data\": {\"ticker\": \"MSFT\", \"year\": 2022, \"period\": \"fy\"}}\n```",
			message:  "One moment",
			ticker:   "MSFT",
			year:     2022,
			period:   "fy",
			complete: true,
		},
		{
			name:    "nulls",
			input:   `{"message": "Which company?", "data": {"ticker": null, "year": null, "period": null}}`,
			message: "Which company?",
		},
		{
			name:     "year as string and aliases",
			input:    `{"message": "ok", "data": {"ticker": "googl", "year": "2021", "period": "Q3"}}`,
			message:  "ok",
			ticker:   "GOOG",
			year:     2021,
			period:   "q3",
			complete: true,
		},
		{
			name:    "placeholder strings are unset",
			input:   `{"message": "Which company?", "data": {"ticker": "None", "year": "null", "period": "N/A"}}`,
			message: "Which company?",
		},
		{
			name:    "placeholder ticker with known period",
			input:   `{"message": "Which company?", "data": {"ticker": " null ", "year": 2023, "period": "q2"}}`,
			message: "Which company?",
			year:    2023,
			period:  "q2",
		},
		{
			name:    "invalid values dropped",
			input:   `{"message": "ok", "data": {"ticker": "not a ticker!", "year": 1800, "period": "q5"}}`,
			message: "ok",
		},
		{
			name:    "future year dropped",
			input:   `{"message": "ok", "data": {"ticker": "AAPL", "year": 2031, "period": "q1"}}`,
			message: "ok",
			ticker:  "AAPL",
			period:  "q1",
		},
		{
			name:     "trailing commas repaired",
			input:    `{"message": "ok", "data": {"ticker": "AAPL", "year": 2023, "period": "q1",},}`,
			message:  "ok",
			ticker:   "AAPL",
			year:     2023,
			period:   "q1",
			complete: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := p.Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if r.Message != tt.message {
				t.Errorf("message: got %q, want %q", r.Message, tt.message)
			}
			if got := deref(r.Data.Ticker); got != tt.ticker {
				t.Errorf("ticker: got %q, want %q", got, tt.ticker)
			}
			if got := derefInt(r.Data.Year); got != tt.year {
				t.Errorf("year: got %d, want %d", got, tt.year)
			}
			if got := deref(r.Data.Period); got != tt.period {
				t.Errorf("period: got %q, want %q", got, tt.period)
			}
			if r.Data.Complete() != tt.complete {
				t.Errorf("complete: got %v, want %v", r.Data.Complete(), tt.complete)
			}
		})
	}
}

func TestParseReplyErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		repair bool
		reason string
	}{
		{"no braces", "I think you mean Apple.", true, ReasonNoJSON},
		{"reversed braces", "} oops {", true, ReasonNoJSON},
		{"missing data", `{"message": "hello"}`, true, ReasonMissingData},
		{"missing message", `{"data": {"ticker": "AAPL"}}`, true, ReasonMissingMessage},
		{"malformed without repair", `{"message": "ok", "data": {"ticker": "AAPL",},}`, false, ReasonMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReplyParser{Repair: tt.repair}.Parse(tt.input)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if perr.Reason != tt.reason {
				t.Errorf("reason: got %q, want %q", perr.Reason, tt.reason)
			}
			if perr.Raw != tt.input {
				t.Errorf("raw text should be kept, got %q", perr.Raw)
			}
		})
	}
}

func TestParseReplyDefaultRepairs(t *testing.T) {
	r, err := ParseReply(`{message: "ok", data: {ticker: "AAPL", year: 2023, period: "q1"}}`)
	if err != nil {
		t.Fatalf("ParseReply: %v", err)
	}
	if !r.Data.Complete() {
		t.Errorf("expected complete slots, got %+v", r.Data)
	}
}

func TestParseErrorMessage(t *testing.T) {
	e := &ParseError{Reason: ReasonMalformed, Err: errors.New("unexpected end")}
	if got := e.Error(); got != "parse reply: malformed JSON: unexpected end" {
		t.Errorf("got %q", got)
	}
	if got := (&ParseError{Reason: ReasonNoJSON}).Error(); got != "parse reply: no JSON object" {
		t.Errorf("got %q", got)
	}
}

func TestSlotFunction(t *testing.T) {
	fn := SlotFunction()
	if fn.Name == "" {
		t.Fatal("function name should be set")
	}
	b, err := json.Marshal(fn.Parameters)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"required":["message","data"]`, `"type":["string","null"]`, `"type":["integer","null"]`, `"enum":["q1","q2","q3","q4","fy",null]`} {
		if !strings.Contains(s, want) {
			t.Errorf("schema missing %s: %s", want, s)
		}
	}

	// A null period must validate against the enum as well as the type.
	var schema struct {
		Properties struct {
			Data struct {
				Properties struct {
					Period struct {
						Enum []any `json:"enum"`
					} `json:"period"`
				} `json:"properties"`
			} `json:"data"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(b, &schema); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	enum := schema.Properties.Data.Properties.Period.Enum
	if len(enum) == 0 || enum[len(enum)-1] != nil {
		t.Errorf("period enum should accept null, got %v", enum)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
