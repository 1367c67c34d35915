package render

import (
	"fmt"
	"strings"

	"github.com/dkoosis/difftest/pkg/pattern"
)

const maxDetailLines = 3

// LLM renders patterns as terse plain text optimized for AI consumption.
// Zero ANSI codes, SCOPE line first, failures before passes.
type LLM struct{}

// NewLLM creates an LLM renderer.
func NewLLM() *LLM {
	return &LLM{}
}

// Render formats all patterns for LLM consumption.
func (l *LLM) Render(patterns []pattern.Pattern) string {
	var sb strings.Builder
	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.Summary:
			l.renderSummary(&sb, v)
		case *pattern.TestTable:
			l.renderTable(&sb, v)
		case *pattern.Comparison:
			l.renderComparison(&sb, v)
		case *pattern.Leaderboard:
			l.renderLeaderboard(&sb, v)
		}
	}
	return sb.String()
}

func (l *LLM) renderSummary(sb *strings.Builder, s *pattern.Summary) {
	if s.Kind == pattern.SummaryKindRun {
		sb.WriteString("SCOPE: " + s.Label + "\n")
	} else if s.Label != "" {
		sb.WriteString("\n" + s.Label + "\n")
	}
	for _, m := range s.Metrics {
		sb.WriteString("  " + m.Label + ": " + m.Value + "\n")
	}
}

func (l *LLM) renderTable(sb *strings.Builder, t *pattern.TestTable) {
	if len(t.Results) == 0 {
		return
	}
	sb.WriteString("\n" + t.Label + "\n")

	// Failures first, keeping the table's own order within each group.
	ordered := make([]pattern.TestTableItem, 0, len(t.Results))
	for _, item := range t.Results {
		if item.Status == pattern.StatusFail {
			ordered = append(ordered, item)
		}
	}
	for _, item := range t.Results {
		if item.Status != pattern.StatusFail {
			ordered = append(ordered, item)
		}
	}

	for _, item := range ordered {
		var meta []string
		if item.Outcome != "" {
			meta = append(meta, item.Outcome)
		}
		if item.Duration != "" {
			meta = append(meta, item.Duration)
		}
		suffix := ""
		if len(meta) > 0 {
			suffix = " (" + strings.Join(meta, ", ") + ")"
		}
		sb.WriteString(fmt.Sprintf("  %s %s%s\n", strings.ToUpper(statusWord(item.Status)), item.Name, suffix))

		if item.Details != "" {
			lines := strings.Split(item.Details, "\n")
			for _, line := range lines[:min(len(lines), maxDetailLines)] {
				sb.WriteString("    " + line + "\n")
			}
			if len(lines) > maxDetailLines {
				sb.WriteString(fmt.Sprintf("    ... (%d more lines)\n", len(lines)-maxDetailLines))
			}
		}
	}
}

func (l *LLM) renderComparison(sb *strings.Builder, c *pattern.Comparison) {
	if len(c.Changes) == 0 {
		return
	}
	sb.WriteString("\n" + c.Label + "\n")
	for _, item := range c.Changes {
		sb.WriteString(fmt.Sprintf("  %s: %s -> %s\n", item.Label, item.Before, item.After))
	}
}

func (l *LLM) renderLeaderboard(sb *strings.Builder, lb *pattern.Leaderboard) {
	if len(lb.Items) == 0 {
		return
	}
	sb.WriteString("\n" + lb.Label + "\n")
	for _, item := range lb.Items {
		sb.WriteString(fmt.Sprintf("  %s %s\n", item.Name, item.Metric))
	}
}

func statusWord(status string) string {
	switch status {
	case pattern.StatusFail, pattern.StatusSkip:
		return status
	default:
		return pattern.StatusPass
	}
}
