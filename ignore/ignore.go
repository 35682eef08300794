package ignore

import (
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// IgnoreFileName is the project-specific ignore file, read alongside .gitignore.
const IgnoreFileName = ".storycheckignore"

// Matcher decides which directories the locator skips.
// It combines the optional default directory names, .gitignore rules,
// .storycheckignore rules, and custom doublestar patterns.
// Thread-safe: Reload() acquires a write lock, ShouldSkipDir() acquires a read lock.
type Matcher struct {
	mu               sync.RWMutex
	fsys             fs.FS
	skipDefaultDirs  bool
	respectGitignore bool
	gitIgnore        gitignore.GitIgnore
	projectIgnore    gitignore.GitIgnore
	customPatterns   []string
}

// MatcherOptions configures the ignore matcher.
// SkipDefaultDirs skips DefaultIgnoredDirs anywhere in the tree.
type MatcherOptions struct {
	CustomPatterns   []string
	RespectGitignore bool
	SkipDefaultDirs  bool
}

// NewMatcher creates a matcher over the scan root. Ignore files are read from the
// root of fsys. Invalid custom patterns are reported by ValidatePatterns, not here.
func NewMatcher(fsys fs.FS, options MatcherOptions) *Matcher {
	matcher := &Matcher{
		fsys:             fsys,
		skipDefaultDirs:  options.SkipDefaultDirs,
		respectGitignore: options.RespectGitignore,
		customPatterns:   normalizePatterns(options.CustomPatterns),
	}
	matcher.Reload()
	return matcher
}

// ValidatePatterns returns the first pattern that is not a valid doublestar glob.
func ValidatePatterns(patterns []string) (string, bool) {
	for _, pattern := range normalizePatterns(patterns) {
		if !doublestar.ValidatePattern(pattern) {
			return pattern, false
		}
	}
	return "", true
}

// ShouldSkipDir returns true if the directory at relPath (slash separated,
// relative to the scan root) should not be traversed.
func (m *Matcher) ShouldSkipDir(relPath string) bool {
	if relPath == "." || relPath == "" {
		return false
	}

	if m.skipDefaultDirs && IsDefaultIgnoredDir(path.Base(relPath)) {
		return true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.gitIgnore != nil {
		match := m.gitIgnore.Relative(relPath, true)
		if match != nil && match.Ignore() {
			return true
		}
	}

	if m.projectIgnore != nil {
		match := m.projectIgnore.Relative(relPath, true)
		if match != nil && match.Ignore() {
			return true
		}
	}

	return m.matchesCustomPatterns(relPath)
}

// matchesCustomPatterns checks the relative path and its base name against the
// user-provided exclude patterns.
func (m *Matcher) matchesCustomPatterns(relPath string) bool {
	baseName := path.Base(relPath)
	for _, pattern := range m.customPatterns {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, baseName); err == nil && matched {
			return true
		}
	}
	return false
}

// Reload re-reads .gitignore and .storycheckignore from the scan root.
func (m *Matcher) Reload() {
	var newGitIgnore gitignore.GitIgnore
	if m.respectGitignore {
		newGitIgnore = loadIgnoreFile(m.fsys, ".gitignore")
	}
	newProjectIgnore := loadIgnoreFile(m.fsys, IgnoreFileName)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gitIgnore = newGitIgnore
	m.projectIgnore = newProjectIgnore
}

// loadIgnoreFile reads an ignore file from fsys. A missing file yields nil.
func loadIgnoreFile(fsys fs.FS, name string) gitignore.GitIgnore {
	f, err := fsys.Open(name)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, ".", nil)
}

func normalizePatterns(patterns []string) []string {
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(strings.ReplaceAll(pattern, "\\", "/"))
		pattern = strings.TrimSuffix(pattern, "/")
		if pattern != "" {
			result = append(result, pattern)
		}
	}
	return result
}
