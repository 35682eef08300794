package naming

import (
	"path"
	"strings"
)

// ExtensionToLanguage maps component-family extensions (without dot) to language names.
var ExtensionToLanguage = map[string]string{
	"ts": "TypeScript", "tsx": "TypeScript", "mts": "TypeScript", "cts": "TypeScript",
	"js": "JavaScript", "jsx": "JavaScript", "mjs": "JavaScript", "cjs": "JavaScript",
	"vue": "Vue", "svelte": "Svelte",
}

// DetectLanguage returns the language of a component or story file based on its extension.
// Returns "Unknown" if the extension is not recognized.
func DetectLanguage(filePath string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filePath), "."))
	if lang, ok := ExtensionToLanguage[ext]; ok {
		return lang
	}
	return "Unknown"
}
