package ignore

// DefaultIgnoredDirs are VCS and dependency directory names skipped when
// MatcherOptions.SkipDefaultDirs is set.
var DefaultIgnoredDirs = []string{
	".git",
	".svn",
	".hg",
	"node_modules",
}

// IsDefaultIgnoredDir reports whether a directory name is one of DefaultIgnoredDirs.
func IsDefaultIgnoredDir(name string) bool {
	for _, dir := range DefaultIgnoredDirs {
		if name == dir {
			return true
		}
	}
	return false
}
