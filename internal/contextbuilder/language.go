package contextbuilder

import (
	"path/filepath"
	"strings"
)

// fenceHints maps file extensions to markdown code-fence language tags.
var fenceHints = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".html": "html",
	".css":  "css",
	".json": "json",
	".md":   "markdown",
	".rs":   "rust",
	".go":   "go",
	".java": "java",
	".cpp":  "cpp",
	".c":    "c",
	".sh":   "bash",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
	".xml":  "xml",
	".sql":  "sql",
}

// FenceHint returns the code-fence language tag for a filename, or "" when
// the extension is unknown.
func FenceHint(filename string) string {
	return fenceHints[strings.ToLower(filepath.Ext(filename))]
}
