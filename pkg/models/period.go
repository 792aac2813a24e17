package models

import (
	"fmt"
	"strings"
)

// Period is a reporting interval tag.
type Period string

const (
	PeriodQ1 Period = "q1"
	PeriodQ2 Period = "q2"
	PeriodQ3 Period = "q3"
	PeriodQ4 Period = "q4"
	PeriodFY Period = "fy"
	PeriodH1 Period = "h1"
	PeriodH2 Period = "h2"
	Period9M Period = "9m"
)

var validPeriods = map[Period]bool{
	PeriodQ1: true, PeriodQ2: true, PeriodQ3: true, PeriodQ4: true,
	PeriodFY: true, PeriodH1: true, PeriodH2: true, Period9M: true,
}

// ParsePeriod lower-cases and validates a period tag.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !validPeriods[p] {
		return "", fmt.Errorf("invalid period %q (want q1, q2, q3, q4 or fy)", s)
	}
	return p, nil
}

// Slots is the transient object the dialogue fills in from model replies.
// A nil field has not been supplied yet.
type Slots struct {
	Ticker *string `json:"ticker"`
	Year   *int    `json:"year"`
	Period *string `json:"period"`
}

// Complete reports whether all three slots hold a non-empty value.
func (s Slots) Complete() bool {
	return s.Ticker != nil && *s.Ticker != "" &&
		s.Year != nil && *s.Year != 0 &&
		s.Period != nil && *s.Period != ""
}

// Missing lists the slot names that are still empty.
func (s Slots) Missing() []string {
	var out []string
	if s.Ticker == nil || *s.Ticker == "" {
		out = append(out, "ticker")
	}
	if s.Year == nil || *s.Year == 0 {
		out = append(out, "year")
	}
	if s.Period == nil || *s.Period == "" {
		out = append(out, "period")
	}
	return out
}

// Request is a completed slot triple.
type Request struct {
	Ticker string
	Year   int
	Period Period
}

func (r Request) String() string {
	return fmt.Sprintf("%s %d %s", r.Ticker, r.Year, r.Period)
}
