// Package agent runs the slot-filling conversation that collects a ticker,
// fiscal year and period, and the analysis request that follows it.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/seenimoa/finchat/internal/agent/prompts"
	"github.com/seenimoa/finchat/internal/llm"
	"github.com/seenimoa/finchat/pkg/models"
)

// ErrTooManyFailedParses ends a dialogue whose model keeps replying with
// unparseable text.
var ErrTooManyFailedParses = errors.New("too many consecutive unparseable replies")

// Console is the user-facing side of a dialogue.
type Console interface {
	Say(text string)
	// Ask shows prompt and reads one line. io.EOF ends the dialogue.
	Ask(prompt string) (string, error)
}

// Analyzer runs the analysis for a completed request.
type Analyzer interface {
	Analyze(ctx context.Context, req models.Request) (*Analysis, error)
}

// State is the dialogue state.
type State int

const (
	StateCollecting State = iota
	StateDone
)

func (s State) String() string {
	switch s {
	case StateCollecting:
		return "COLLECTING"
	case StateDone:
		return "DONE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DialogueOptions configures the slot-filling requests.
type DialogueOptions struct {
	Model       string
	Temperature float64
	// HistoryWindow caps the messages sent per request; 0 sends everything.
	HistoryWindow int
	// MaxFailedParses ends the dialogue after that many consecutive
	// unparseable replies; 0 never gives up.
	MaxFailedParses int
	Repair          bool
	// UseFunction asks the backend to answer through SlotFunction.
	UseFunction bool
	Now         func() time.Time
}

// Dialogue collects ticker, year and period from the user through the
// model, then hands each completed request to the Analyzer.
type Dialogue struct {
	chat     llm.Chatter
	analyzer Analyzer
	console  Console
	opts     DialogueOptions
	parser   ReplyParser
	memory   *Memory
	session  string
	state    State
	slots    models.Slots
	failed   int
	analyses int
}

// NewDialogue creates a dialogue seeded with the slot-filling system prompt.
func NewDialogue(chat llm.Chatter, analyzer Analyzer, console Console, opts DialogueOptions) *Dialogue {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Dialogue{
		chat:     chat,
		analyzer: analyzer,
		console:  console,
		opts:     opts,
		parser:   ReplyParser{Repair: opts.Repair, Now: opts.Now},
		memory:   NewMemory(prompts.SlotFillingSystemPrompt(opts.Now())),
		session:  uuid.NewString(),
		state:    StateCollecting,
	}
}

// Session returns the dialogue's session id.
func (d *Dialogue) Session() string { return d.session }

// State returns the current state.
func (d *Dialogue) State() State { return d.state }

// Slots returns the slots decoded from the latest parseable reply.
func (d *Dialogue) Slots() models.Slots { return d.slots }

// History returns a copy of the conversation so far.
func (d *Dialogue) History() []llm.Message { return d.memory.Messages() }

// Analyses returns how many analyses the dialogue has run.
func (d *Dialogue) Analyses() int { return d.analyses }

// Run drives the conversation until the user exits. A user exit (or end
// of input) returns nil; model, provider and analysis errors are returned.
func (d *Dialogue) Run(ctx context.Context) error {
	logger := log.With().Str("session", d.session).Logger()
	logger.Info().Msg("dialogue started")

	d.console.Say(prompts.Greeting)
	first, quit, err := d.ask(prompts.OpeningQuestion)
	if err != nil || quit {
		return err
	}
	d.memory.Add(llm.UserMessage(first))

	for d.state == StateCollecting {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp, err := d.chat.Chat(ctx, d.memory.Messages(), d.chatOptions())
		if err != nil {
			return fmt.Errorf("chat: %w", err)
		}
		d.memory.Add(llm.AssistantMessage(resp.Content))

		if err := d.step(ctx, resp.Content); err != nil {
			return err
		}
	}
	logger.Info().Int("analyses", d.analyses).Int("messages", d.memory.Size()).Msg("dialogue finished")
	return nil
}

func (d *Dialogue) chatOptions() *llm.ChatOptions {
	opts := &llm.ChatOptions{
		Model:         d.opts.Model,
		Temperature:   d.opts.Temperature,
		HistoryWindow: d.opts.HistoryWindow,
	}
	if d.opts.UseFunction {
		opts.Function = SlotFunction()
	}
	return opts
}

// step handles one model reply.
func (d *Dialogue) step(ctx context.Context, content string) error {
	reply, err := d.parser.Parse(content)
	var perr *ParseError
	if errors.As(err, &perr) {
		d.failed++
		log.Warn().Str("session", d.session).Str("reason", perr.Reason).Int("failed", d.failed).Msg("unparseable model reply")
		d.console.Say(content)
		d.console.Say(prompts.Apology)
		d.memory.Add(llm.UserMessage(prompts.Corrective))
		if d.opts.MaxFailedParses > 0 && d.failed > d.opts.MaxFailedParses {
			d.state = StateDone
			return fmt.Errorf("%w (%d)", ErrTooManyFailedParses, d.failed)
		}
		return nil
	}
	if err != nil {
		return err
	}
	d.failed = 0
	d.slots = reply.Data

	if !reply.Data.Complete() {
		log.Debug().Str("session", d.session).Strs("missing", reply.Data.Missing()).Msg("slots incomplete")
		answer, quit, err := d.ask(reply.Message)
		if err != nil || quit {
			return err
		}
		d.memory.Add(llm.UserMessage(answer))
		return nil
	}

	d.console.Say(reply.Message)
	req := models.Request{
		Ticker: *reply.Data.Ticker,
		Year:   *reply.Data.Year,
		Period: models.Period(*reply.Data.Period),
	}
	log.Info().Str("session", d.session).Str("ticker", req.Ticker).Int("year", req.Year).Str("period", string(req.Period)).Msg("slots complete")

	analysis, err := d.analyzer.Analyze(ctx, req)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", req, err)
	}
	d.analyses++
	d.console.Say(prompts.AssistantPrefix + analysis.Narrative)

	_, quit, err := d.ask(prompts.AnotherStock)
	if err != nil || quit {
		return err
	}
	d.slots = models.Slots{}
	d.memory.Add(llm.UserMessage(prompts.AnotherStockAck))
	return nil
}

// ask reads one answer. quit is true when the user typed exit or input
// ended, in which case the goodbye has been shown and the dialogue is done.
func (d *Dialogue) ask(prompt string) (answer string, quit bool, err error) {
	answer, err = d.console.Ask(prompt)
	if errors.Is(err, io.EOF) {
		d.finish()
		return "", true, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read input: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if strings.EqualFold(answer, prompts.ExitCommand) {
		d.finish()
		return "", true, nil
	}
	return answer, false, nil
}

func (d *Dialogue) finish() {
	d.console.Say(prompts.Goodbye)
	d.state = StateDone
}
