package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/seenimoa/finchat/internal/agent/prompts"
	"github.com/seenimoa/finchat/internal/config"
	"github.com/seenimoa/finchat/pkg/models"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	categoryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	messageStyle = lipgloss.NewStyle()

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)
)

func styleFor(text string) lipgloss.Style {
	switch {
	case text == prompts.Apology:
		return errorStyle
	case strings.HasPrefix(text, prompts.AssistantPrefix):
		return assistantStyle
	default:
		return messageStyle
	}
}

// RenderStatement formats one statement summary as an indented list of
// categories and fields.
func RenderStatement(s *models.Summary) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(s.Statement.Title()))
	sb.WriteString("\n")
	width := 0
	for _, c := range s.Categories() {
		for _, f := range c.Fields {
			if len(f.Label) > width {
				width = len(f.Label)
			}
		}
	}
	for _, c := range s.Categories() {
		sb.WriteString("  " + categoryStyle.Render(c.Label) + "\n")
		for _, f := range c.Fields {
			pad := strings.Repeat(" ", width-len(f.Label))
			fmt.Fprintf(&sb, "    %s%s  %s\n", labelStyle.Render(f.Label), pad, f.Value)
		}
	}
	return sb.String()
}

// PrintReport writes every statement in r.
func PrintReport(w io.Writer, r *models.FinancialReport) {
	header := fmt.Sprintf("%s %d %s", r.Ticker, r.Year, strings.ToUpper(string(r.Period)))
	fmt.Fprintln(w, titleStyle.Render(header))
	for _, s := range r.Statements {
		fmt.Fprintln(w, RenderStatement(s))
	}
}

// PrintKeyStatus writes the masked credential table used by the status
// command.
func PrintKeyStatus(w io.Writer, keys []config.KeyStatus) {
	fmt.Fprintln(w, titleStyle.Render("Credentials"))
	for _, k := range keys {
		state := errorStyle.Render("missing")
		if k.IsSet {
			state = okStyle.Render("set")
		}
		line := fmt.Sprintf("  %-16s %s", k.Name, state)
		if k.IsSet {
			line += fmt.Sprintf("  %s (%s)", k.Masked, k.Source)
		}
		fmt.Fprintln(w, line)
	}
}

// PrintCheck writes one health-check line.
func PrintCheck(w io.Writer, name string, err error) {
	if err != nil {
		fmt.Fprintf(w, "  %-16s %s  %v\n", name, errorStyle.Render("unreachable"), err)
		return
	}
	fmt.Fprintf(w, "  %-16s %s\n", name, okStyle.Render("ok"))
}

// Error formats err for the terminal.
func Error(err error) string {
	return errorStyle.Render("Error: ") + err.Error()
}
