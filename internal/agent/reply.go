package agent

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/seenimoa/finchat/internal/agent/prompts"
	"github.com/seenimoa/finchat/internal/llm"
	"github.com/seenimoa/finchat/pkg/models"
	"github.com/seenimoa/finchat/pkg/utils"
)

// Parse failure reasons.
const (
	ReasonNoJSON         = "no JSON object"
	ReasonMalformed      = "malformed JSON"
	ReasonMissingMessage = "missing message"
	ReasonMissingData    = "missing data object"
)

// ParseError reports a model reply that does not hold the expected
// {"message": ..., "data": {...}} object.
type ParseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse reply: %s: %v", e.Reason, e.Err)
	}
	return "parse reply: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// Reply is a decoded slot-filling reply.
type Reply struct {
	Message string
	Data    models.Slots
}

type wireReply struct {
	Message *string   `json:"message"`
	Data    *wireData `json:"data"`
}

type wireData struct {
	Ticker *string         `json:"ticker"`
	Year   json.RawMessage `json:"year"`
	Period *string         `json:"period"`
}

// ReplyParser decodes model replies. With Repair set, malformed JSON is
// passed through json-repair and then HJSON before giving up.
type ReplyParser struct {
	Repair bool
	Now    func() time.Time
}

// ParseReply decodes text with repair enabled.
func ParseReply(text string) (*Reply, error) {
	return ReplyParser{Repair: true}.Parse(text)
}

// Parse extracts the substring between the first "{" and the last "}" of
// text and decodes it. Every failure is a *ParseError.
func (p ReplyParser) Parse(text string) (*Reply, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, &ParseError{Reason: ReasonNoJSON, Raw: text}
	}
	candidate := text[start : end+1]

	var w wireReply
	err := json.Unmarshal([]byte(candidate), &w)
	if err != nil && p.Repair {
		w, err = repairReply(candidate, err)
	}
	if err != nil {
		return nil, &ParseError{Reason: ReasonMalformed, Raw: text, Err: err}
	}
	if w.Message == nil {
		return nil, &ParseError{Reason: ReasonMissingMessage, Raw: text}
	}
	if w.Data == nil {
		return nil, &ParseError{Reason: ReasonMissingData, Raw: text}
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return &Reply{Message: *w.Message, Data: w.Data.slots(now())}, nil
}

// repairReply tries json-repair, then HJSON. The original decode error is
// returned when both fail.
func repairReply(candidate string, cause error) (wireReply, error) {
	var w wireReply
	if repaired, err := jsonrepair.RepairJSON(candidate); err == nil {
		if err := json.Unmarshal([]byte(repaired), &w); err == nil && w.Message != nil && w.Data != nil {
			log.Debug().Str("stage", "json-repair").Msg("repaired model reply")
			return w, nil
		}
	}

	var generic interface{}
	if err := hjson.Unmarshal([]byte(candidate), &generic); err == nil {
		if b, err := json.Marshal(generic); err == nil {
			w = wireReply{}
			if err := json.Unmarshal(b, &w); err == nil {
				log.Debug().Str("stage", "hjson").Msg("repaired model reply")
				return w, nil
			}
		}
	}
	return wireReply{}, cause
}

// slots normalizes the decoded values. Values that cannot be valid are
// treated as not yet supplied so the model asks for them again.
func (d *wireData) slots(now time.Time) models.Slots {
	var s models.Slots

	if d.Ticker != nil && !placeholder(*d.Ticker) {
		ticker := utils.NormalizeTicker(*d.Ticker)
		switch {
		case ticker == "":
		case utils.ValidTicker(ticker):
			s.Ticker = &ticker
		default:
			log.Warn().Str("ticker", *d.Ticker).Msg("ignoring invalid ticker in model reply")
		}
	}

	if year, ok := decodeYear(d.Year); ok {
		if err := utils.ValidateFiscalYear(year, now); err != nil {
			log.Warn().Err(err).Msg("ignoring year in model reply")
		} else {
			s.Year = &year
		}
	}

	if d.Period != nil && !placeholder(*d.Period) {
		if p, err := models.ParsePeriod(*d.Period); err != nil {
			log.Warn().Err(err).Msg("ignoring period in model reply")
		} else {
			period := string(p)
			s.Period = &period
		}
	}
	return s
}

// placeholder reports whether a model wrote a stand-in for "not known yet"
// as a string instead of using null.
func placeholder(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "none", "null", "nil", "n/a", "unknown":
		return true
	}
	return false
}

// decodeYear accepts a JSON number or a numeric string.
func decodeYear(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f), f == float64(int(f))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if placeholder(s) {
			return 0, false
		}
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, true
		}
	}
	log.Warn().Str("year", string(raw)).Msg("ignoring non-numeric year in model reply")
	return 0, false
}

// SlotFunction describes the reply object as a function-call directive, for
// backends that can be forced to answer in that shape.
func SlotFunction() *llm.FunctionDef {
	data := llm.ObjectSchema("Analysis request collected so far", map[string]*llm.JSONSchema{
		"ticker": llm.OrNull(llm.StringProp("Stock ticker symbol, e.g. AAPL")),
		"year":   llm.OrNull(llm.IntProp("Fiscal year, e.g. 2023")),
		"period": llm.OrNull(llm.EnumProp("Reporting period", "q1", "q2", "q3", "q4", "fy")),
	}, "ticker", "year", "period")

	return &llm.FunctionDef{
		Name:        prompts.SlotFunctionName,
		Description: "Reply to the user and record the ticker, year and period gathered so far.",
		Parameters: llm.ObjectSchema("", map[string]*llm.JSONSchema{
			"message": llm.StringProp("Message shown to the user"),
			"data":    data,
		}, "message", "data"),
	}
}
