// Package report renders a completed analysis as Markdown, HTML or plain
// text and writes it to disk.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/seenimoa/finchat/internal/agent"
	"github.com/seenimoa/finchat/pkg/models"
	"github.com/seenimoa/finchat/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Configuration
// ════════════════════════════════════════════════════════════════════

// ReportFormat specifies the output format.
type ReportFormat string

const (
	FormatMarkdown ReportFormat = "markdown"
	FormatHTML     ReportFormat = "html"
	FormatText     ReportFormat = "text"
)

// FormatForPath picks the format from a file extension. Anything that is
// not .html, .htm or .txt is written as Markdown.
func FormatForPath(path string) ReportFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML
	case ".txt":
		return FormatText
	default:
		return FormatMarkdown
	}
}

// ReportConfig controls report generation behaviour.
type ReportConfig struct {
	Format ReportFormat
	Title  string // default: "<TICKER> <YEAR> <PERIOD> Financial Analysis"
	Author string
	Now    func() time.Time
}

// DefaultReportConfig returns sensible defaults.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Format: FormatMarkdown,
		Author: "finchat",
		Now:    time.Now,
	}
}

func (rc ReportConfig) title(req models.Request) string {
	if rc.Title != "" {
		return rc.Title
	}
	return fmt.Sprintf("%s %d %s Financial Analysis", req.Ticker, req.Year, strings.ToUpper(string(req.Period)))
}

func (rc ReportConfig) generatedAt() string {
	now := time.Now
	if rc.Now != nil {
		now = rc.Now
	}
	return utils.FormatTimestamp(now())
}

// ════════════════════════════════════════════════════════════════════
// Generate Report
// ════════════════════════════════════════════════════════════════════

// Generate renders a in cfg.Format.
func Generate(a *agent.Analysis, cfg ReportConfig) (string, error) {
	switch cfg.Format {
	case FormatHTML:
		return GenerateHTML(a, cfg)
	case FormatText:
		return GenerateText(a, cfg)
	case FormatMarkdown, "":
		return GenerateMarkdown(a, cfg)
	default:
		return "", fmt.Errorf("unknown report format %q", cfg.Format)
	}
}

// GenerateMarkdown renders statement tables, the narrative and any
// headline sources as Markdown.
func GenerateMarkdown(a *agent.Analysis, cfg ReportConfig) (string, error) {
	if a == nil {
		return "", fmt.Errorf("analysis is nil")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", cfg.title(a.Request))
	fmt.Fprintf(&sb, "_Generated %s", cfg.generatedAt())
	if cfg.Author != "" {
		fmt.Fprintf(&sb, " by %s", cfg.Author)
	}
	if a.Model != "" {
		fmt.Fprintf(&sb, " using %s", a.Model)
	}
	sb.WriteString("_\n\n")

	sb.WriteString("## Analysis\n\n")
	sb.WriteString(CleanMarkdown(a.Narrative))
	sb.WriteString("\n\n")

	if a.Report != nil {
		for _, s := range a.Report.Statements {
			writeStatementTable(&sb, s)
		}
	}

	if len(a.Sources) > 0 {
		sb.WriteString("## Sources\n\n")
		for _, src := range a.Sources {
			fmt.Fprintf(&sb, "- [%s](%s)", escapeLinkText(src.Title), src.URL)
			if src.Source != "" {
				fmt.Fprintf(&sb, " (%s)", src.Source)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n\n")
	sb.WriteString("_AI-generated for educational purposes. Not financial advice. Do your own research._\n")
	return sb.String(), nil
}

func writeStatementTable(sb *strings.Builder, s *models.Summary) {
	if s == nil {
		return
	}
	fmt.Fprintf(sb, "## %s\n\n", s.Statement.Title())
	for _, c := range s.Categories() {
		fmt.Fprintf(sb, "### %s\n\n", c.Label)
		sb.WriteString("| Field | Value |\n|---|---:|\n")
		for _, f := range c.Fields {
			fmt.Fprintf(sb, "| %s | %s |\n", escapeCell(f.Label), escapeCell(f.Value))
		}
		sb.WriteString("\n")
	}
}

// GenerateHTML renders the Markdown report to a standalone HTML page.
func GenerateHTML(a *agent.Analysis, cfg ReportConfig) (string, error) {
	md, err := GenerateMarkdown(a, cfg)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	gm := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := gm.Convert([]byte(md), &body); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}

	tmpl, err := template.New("report").Parse(ReportTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	data := struct {
		Title string
		Body  template.HTML
	}{
		Title: cfg.title(a.Request),
		Body:  template.HTML(body.String()),
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// GenerateText generates a plain-text report (terminal / CLI friendly).
func GenerateText(a *agent.Analysis, cfg ReportConfig) (string, error) {
	if a == nil {
		return "", fmt.Errorf("analysis is nil")
	}

	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", cfg.title(a.Request)))
	sb.WriteString(fmt.Sprintf("  Generated: %s", cfg.generatedAt()))
	if a.Duration > 0 {
		sb.WriteString(fmt.Sprintf(" | Took: %s", FormatDuration(a.Duration)))
	}
	sb.WriteString("\n" + line + "\n")

	if a.Report != nil {
		for _, s := range a.Report.Statements {
			if s == nil {
				continue
			}
			sb.WriteString(fmt.Sprintf("\n  ■ %s\n", strings.ToUpper(s.Statement.Title())))
			for _, c := range s.Categories() {
				sb.WriteString(fmt.Sprintf("    %s\n", c.Label))
				for _, f := range c.Fields {
					sb.WriteString(fmt.Sprintf("      %-40s %s\n", f.Label, f.Value))
				}
			}
			sb.WriteString(thinLine + "\n")
		}
	}

	sb.WriteString("\n  ■ ANALYSIS\n\n")
	sb.WriteString(strings.TrimSpace(a.Narrative))
	sb.WriteString("\n")

	if len(a.Sources) > 0 {
		sb.WriteString(thinLine + "\n")
		sb.WriteString("\n  ■ SOURCES\n")
		for _, src := range a.Sources {
			sb.WriteString(fmt.Sprintf("    - %s\n      %s\n", src.Title, src.URL))
		}
	}

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  Disclaimer: This report is AI-generated for educational purposes.\n")
	sb.WriteString("  Not financial advice. Always do your own research.\n")
	sb.WriteString(line + "\n")
	return sb.String(), nil
}

// Write renders a in the format implied by path and writes it, creating
// parent directories as needed.
func Write(path string, a *agent.Analysis, cfg ReportConfig) error {
	cfg.Format = FormatForPath(path)
	out, err := Generate(a, cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

// CleanMarkdown strips an outer code fence that models sometimes wrap
// their whole answer in.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)
	if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") && len(cleaned) >= 6 {
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func escapeLinkText(s string) string {
	r := strings.NewReplacer("[", `\[`, "]", `\]`)
	return r.Replace(s)
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
