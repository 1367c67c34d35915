// Package render turns run patterns into terminal, plain-text, or JSON output.
package render

import "github.com/dkoosis/difftest/pkg/pattern"

// Renderer converts patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}
