package naming

import (
	"path"
	"strings"
)

// StoryMarker is the substring that identifies a story file.
const StoryMarker = ".stories."

// IndexBaseName is the base name of barrel files, which are never components.
const IndexBaseName = "index"

// TestMarkers are the substrings that identify test files.
var TestMarkers = []string{".test.", ".spec."}

// DefaultComponentExtensions are the accepted component extensions: markup
// components (.tsx) and embedded-markup components (.jsx).
var DefaultComponentExtensions = []string{".tsx", ".jsx"}

// FileEntry is a file name split into its parts.
type FileEntry struct {
	Name      string // Full file name, including extension
	Extension string // Extension with leading dot, empty if none
	BaseName  string // Name minus Extension
}

// ParseFileEntry splits a file name into name, extension and base name.
func ParseFileEntry(fileName string) FileEntry {
	ext := path.Ext(fileName)
	// Dotfiles like ".tsx" have no extension.
	if ext == fileName {
		ext = ""
	}
	return FileEntry{
		Name:      fileName,
		Extension: ext,
		BaseName:  strings.TrimSuffix(fileName, ext),
	}
}

// Rule is a named exclusion predicate over a file entry.
type Rule struct {
	Name  string
	Match func(entry FileEntry) bool
}

// ExclusionRules lists every convention that disqualifies a file from being
// a component. A file matching any rule is excluded.
var ExclusionRules = []Rule{
	{Name: "story", Match: func(e FileEntry) bool { return IsStory(e.Name) }},
	{Name: "test", Match: func(e FileEntry) bool { return IsTest(e.Name) }},
	{Name: "index", Match: func(e FileEntry) bool { return IsIndex(e.Name) }},
}

// IsStory reports whether the file name carries the story marker.
func IsStory(fileName string) bool {
	return strings.Contains(fileName, StoryMarker)
}

// IsTest reports whether the file name carries a test marker.
func IsTest(fileName string) bool {
	for _, marker := range TestMarkers {
		if strings.Contains(fileName, marker) {
			return true
		}
	}
	return false
}

// IsIndex reports whether the file's base name is exactly "index".
func IsIndex(fileName string) bool {
	return ParseFileEntry(fileName).BaseName == IndexBaseName
}

// Classification is the outcome of classifying one file name.
type Classification struct {
	Checkable bool
	Story     bool
	Test      bool
	Index     bool
}

// Excluded reports whether any exclusion rule matched.
func (c Classification) Excluded() bool {
	return c.Story || c.Test || c.Index
}

// Classifier decides which files are checkable components.
type Classifier struct {
	extensions map[string]bool
}

// NewClassifier creates a classifier accepting the given extensions.
// Extensions without a leading dot get one. An empty list means the defaults.
func NewClassifier(extensions []string) *Classifier {
	if len(extensions) == 0 {
		extensions = DefaultComponentExtensions
	}
	c := &Classifier{extensions: make(map[string]bool, len(extensions))}
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.extensions[ext] = true
	}
	return c
}

// DefaultClassifier accepts .tsx and .jsx components.
var DefaultClassifier = NewClassifier(nil)

// Classify applies the naming conventions to a single file name.
func (c *Classifier) Classify(fileName string) Classification {
	entry := ParseFileEntry(fileName)

	var result Classification
	for _, rule := range ExclusionRules {
		if !rule.Match(entry) {
			continue
		}
		switch rule.Name {
		case "story":
			result.Story = true
		case "test":
			result.Test = true
		case "index":
			result.Index = true
		}
	}

	result.Checkable = c.extensions[entry.Extension] && !result.Excluded()
	return result
}

// IsCheckable is shorthand for Classify(fileName).Checkable.
func (c *Classifier) IsCheckable(fileName string) bool {
	return c.Classify(fileName).Checkable
}

// Classify classifies a file name with the default classifier.
func Classify(fileName string) Classification {
	return DefaultClassifier.Classify(fileName)
}

// StoryComponentName returns the component a story file documents, i.e. the
// part of the name before the story marker. ok is false for non-story files.
func StoryComponentName(fileName string) (name string, ok bool) {
	idx := strings.Index(fileName, StoryMarker)
	if idx < 0 {
		return "", false
	}
	return fileName[:idx], true
}
