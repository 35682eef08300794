package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/lexandro/storycheck/stories"
)

// colorScheme defines the console colors of the text report.
// Red: missing stories and failure
// Green: success
// Yellow: warnings and hints
// Cyan: labels
type colorScheme struct {
	fail    *color.Color
	success *color.Color
	warn    *color.Color
	label   *color.Color
}

func newColorScheme(enabled bool) *colorScheme {
	scheme := &colorScheme{
		fail:    color.New(color.FgRed),
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{scheme.fail, scheme.success, scheme.warn, scheme.label} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return scheme
}

// TextOptions configures the text renderer.
type TextOptions struct {
	Color bool
	// Verbose also lists orphan stories.
	Verbose bool
	// StoryExtensions are listed in the naming reminder (default stories.DefaultExtensions).
	StoryExtensions []string
}

// WriteText renders the human-readable report. The text is not a stable
// machine format; use WriteJSON for that.
func WriteText(w io.Writer, r *Report, opts TextOptions) error {
	scheme := newColorScheme(opts.Color)
	ew := &errWriter{w: w}

	ew.printf("🔍 Checking for missing story files...\n\n")

	if r.Empty() {
		root := r.Root
		if root == "" {
			root = "."
		}
		ew.printf("%s\n", scheme.warn.Sprintf("⚠️  No component files found in %s.", root))
		return ew.err
	}

	for _, item := range r.Missing() {
		ew.printf("%s\n", scheme.fail.Sprintf("❌ Missing story for: %s", item.DisplayPath))
		for _, suggestion := range item.Suggestions {
			ew.printf("   %s\n", scheme.warn.Sprintf("did you mean %s?", suggestion))
		}
	}

	if opts.Verbose {
		for _, orphan := range r.OrphanStories {
			ew.printf("%s\n", scheme.warn.Sprintf("⚠️  Story without component: %s", orphan))
		}
	}

	ew.printf("\n📊 Summary:\n")
	ew.printf("   %s %d\n", scheme.label.Sprint("Total components:"), r.TotalComponents)
	ew.printf("   %s %d\n", scheme.label.Sprint("Missing stories:"), r.MissingCount)

	if !r.Passed {
		ew.printf("\n%s\n", scheme.fail.Sprint("❌ Story check failed! Please create story files for all components."))
		ew.printf("\nExpected story file naming convention:\n")
		ew.printf("   %s\n", namingConvention(opts.StoryExtensions))
		return ew.err
	}

	ew.printf("\n%s\n", scheme.success.Sprint("✅ All components have story files!"))
	return ew.err
}

func namingConvention(extensions []string) string {
	if len(extensions) == 0 {
		extensions = stories.DefaultExtensions
	}
	convention := "ComponentName.stories" + extensions[0]
	if len(extensions) > 1 {
		convention += " (or " + strings.Join(extensions[1:], ", ") + ")"
	}
	return convention
}

// WriteJSON renders the report as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// errWriter keeps the first write error so rendering code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
