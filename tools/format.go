package tools

import (
	"fmt"
	"strings"

	"github.com/lexandro/storycheck/catalog"
)

// FormatComponentResults formats component search results as human-readable text.
func FormatComponentResults(results []catalog.Component, nameOnly bool) string {
	if len(results) == 0 {
		return "No components matched."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d components:\n\n", len(results)))

	for _, component := range results {
		if nameOnly {
			builder.WriteString(component.SourcePath)
			builder.WriteString("\n")
			continue
		}
		builder.WriteString(fmt.Sprintf("  %s  (%s, container %s)\n",
			component.SourcePath,
			component.Language,
			component.Container,
		))
	}

	return builder.String()
}
