package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dkoosis/difftest/pkg/pattern"
	"github.com/mattn/go-runewidth"
)

// Terminal renders patterns as styled terminal output via lipgloss.
type Terminal struct {
	theme Theme
	width int
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width}
}

// Render formats all patterns for terminal display.
func (t *Terminal) Render(patterns []pattern.Pattern) string {
	var sections []string
	for _, p := range patterns {
		s := t.renderOne(p)
		if s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n")
}

func (t *Terminal) renderOne(p pattern.Pattern) string {
	switch v := p.(type) {
	case *pattern.Summary:
		return t.renderSummary(v)
	case *pattern.Leaderboard:
		return t.renderLeaderboard(v)
	case *pattern.TestTable:
		return t.renderTestTable(v)
	case *pattern.Comparison:
		return t.renderComparison(v)
	default:
		return ""
	}
}

func (t *Terminal) renderSummary(s *pattern.Summary) string {
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Bold.Render(s.Label))
		sb.WriteString("\n")
	}
	for _, m := range s.Metrics {
		sb.WriteString("  ")
		icon, style := t.iconStyle(m.Kind)
		sb.WriteString(style.Render(icon + " " + m.Label + ": " + m.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderLeaderboard(l *pattern.Leaderboard) string {
	if len(l.Items) == 0 {
		return ""
	}
	var sb strings.Builder
	if l.Label != "" {
		header := l.Label
		if l.TotalCount > len(l.Items) {
			header += fmt.Sprintf(" (top %d of %d)", len(l.Items), l.TotalCount)
		}
		sb.WriteString(t.theme.Bold.Render(header))
		sb.WriteString("\n")
	}

	maxName, maxMetric := 0, 0
	for _, item := range l.Items {
		maxName = max(maxName, runewidth.StringWidth(item.Name))
		maxMetric = max(maxMetric, runewidth.StringWidth(item.Metric))
	}
	maxName = min(maxName, t.width/2)

	for _, item := range l.Items {
		sb.WriteString("  ")
		if l.ShowRank {
			sb.WriteString(t.theme.Muted.Render(fmt.Sprintf("%2d. ", item.Rank)))
		}
		name := runewidth.Truncate(item.Name, maxName, "...")
		sb.WriteString(t.theme.Primary.Render(runewidth.FillRight(name, maxName)))
		sb.WriteString("  ")
		sb.WriteString(t.theme.Warning.Render(runewidth.FillLeft(item.Metric, maxMetric)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderTestTable(tt *pattern.TestTable) string {
	if len(tt.Results) == 0 {
		return ""
	}
	var sb strings.Builder
	if tt.Label != "" {
		sb.WriteString(t.theme.Bold.Render(tt.Label))
		sb.WriteString("\n")
	}

	maxName, maxOutcome, maxDur := 0, 0, 0
	for _, r := range tt.Results {
		maxName = max(maxName, runewidth.StringWidth(r.Name))
		maxOutcome = max(maxOutcome, runewidth.StringWidth(r.Outcome))
		maxDur = max(maxDur, runewidth.StringWidth(r.Duration))
	}
	maxName = min(maxName, t.width*3/4)

	for _, r := range tt.Results {
		sb.WriteString("  ")
		icon, style := t.statusIconStyle(r.Status)
		sb.WriteString(style.Render(icon + " "))

		name := runewidth.Truncate(r.Name, maxName, "...")
		sb.WriteString(runewidth.FillRight(name, maxName))

		if r.Outcome != "" {
			sb.WriteString("  ")
			sb.WriteString(style.Render(runewidth.FillRight(r.Outcome, maxOutcome)))
		}
		if r.Duration != "" {
			sb.WriteString("  ")
			sb.WriteString(t.theme.Muted.Render(runewidth.FillLeft(r.Duration, maxDur)))
		}

		if r.Details != "" {
			for _, line := range strings.Split(r.Details, "\n") {
				sb.WriteString("\n    ")
				sb.WriteString(t.theme.Muted.Render(line))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderComparison(c *pattern.Comparison) string {
	if len(c.Changes) == 0 {
		return ""
	}
	var sb strings.Builder
	if c.Label != "" {
		sb.WriteString(t.theme.Bold.Render(c.Label))
		sb.WriteString("\n")
	}
	for _, item := range c.Changes {
		sb.WriteString("  ")
		sb.WriteString(item.Label + ": ")
		sb.WriteString(t.theme.Muted.Render(item.Before + " → " + item.After))
		sb.WriteString(" ")

		// Fewer failures is good news.
		var arrow string
		var style lipgloss.Style
		switch {
		case item.Change > 0:
			arrow = "↑"
			style = t.theme.Error
		case item.Change < 0:
			arrow = "↓"
			style = t.theme.Success
		default:
			arrow = "="
			style = t.theme.Muted
		}
		abs := item.Change
		if abs < 0 {
			abs = -abs
		}
		sb.WriteString(style.Render(fmt.Sprintf("%s %g%s", arrow, abs, item.Unit)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) iconStyle(kind string) (string, lipgloss.Style) {
	switch kind {
	case "success":
		return t.theme.Icons.Pass, t.theme.Success
	case "error":
		return t.theme.Icons.Fail, t.theme.Error
	case "warning":
		return t.theme.Icons.Warn, t.theme.Warning
	default:
		return t.theme.Icons.Info, t.theme.Primary
	}
}

func (t *Terminal) statusIconStyle(status string) (string, lipgloss.Style) {
	switch status {
	case pattern.StatusPass:
		return t.theme.Icons.Pass, t.theme.Success
	case pattern.StatusFail:
		return t.theme.Icons.Fail, t.theme.Error
	case pattern.StatusSkip:
		return t.theme.Icons.Warn, t.theme.Warning
	default:
		return t.theme.Icons.Info, t.theme.Muted
	}
}
