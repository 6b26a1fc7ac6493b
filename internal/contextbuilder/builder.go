// Package contextbuilder assembles a bounded textual snapshot of a project
// directory (tree, README, selected files) for injection into a chat prompt.
package contextbuilder

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DefaultMaxFileSize is the largest file embedded verbatim (100 KB); larger
// files degrade to a size placeholder.
const DefaultMaxFileSize int64 = 100_000

// DefaultTreeDepth and DefaultScanDepth bound directory recursion.
const (
	DefaultTreeDepth = 3
	DefaultScanDepth = 5
)

// DefaultIgnores are path components pruned from the directory tree.
var DefaultIgnores = []string{
	"__pycache__", ".git", ".venv", "venv", "node_modules",
	".pytest_cache", ".mypy_cache", ".idea", ".vscode", "dist", "build",
}

// DefaultScanIgnores extends DefaultIgnores with patterns excluded when
// listing project files.
var DefaultScanIgnores = append([]string{
	".env", ".DS_Store", "*.pyc", "*.pkl", "*.parquet",
	"*.h5", "*.hdf5", "*.npy", "*.npz", "*.bin", "*.db", "*.sqlite",
}, DefaultIgnores...)

// Builder reads project files rooted at a single directory. All relative
// paths are resolved against the root and rejected if they escape it.
type Builder struct {
	root string
}

// New creates a Builder for the given project root. An empty root defaults to
// the current working directory. The root must be an existing directory.
func New(root string) (*Builder, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("contextbuilder: getwd: %w", err)
		}
		root = wd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("contextbuilder: resolve root: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("contextbuilder: project root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("contextbuilder: project root %s is not a directory", abs)
	}

	return &Builder{root: abs}, nil
}

// Root returns the resolved absolute project root.
func (b *Builder) Root() string { return b.root }

// contains reports whether the absolute path lies inside the project root.
// It compares resolved path components rather than string prefixes, so a
// sibling directory sharing a name prefix with the root is rejected.
func (b *Builder) contains(path string) bool {
	rel, err := filepath.Rel(b.root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Readme returns the contents of README.md at the project root. The second
// return value is false when the file is missing or unreadable; neither case
// is an error.
func (b *Builder) Readme() (string, bool) {
	path := filepath.Join(b.root, "README.md")
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("contextbuilder: reading README.md: %v", err)
		}
		return "", false
	}
	if !utf8.Valid(data) {
		log.Printf("contextbuilder: README.md is not valid UTF-8, skipping")
		return "", false
	}
	return string(data), true
}

// ReadFile reads a file by path relative to the project root. It returns
// false when the path escapes the root, the file is missing or binary, or
// the content is not valid text.
func (b *Builder) ReadFile(relPath string) (string, bool) {
	full := filepath.Clean(filepath.Join(b.root, relPath))
	if !b.contains(full) {
		return "", false
	}

	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}

	if IsBinary(full) {
		return "", false
	}

	data, err := os.ReadFile(full)
	if err != nil {
		log.Printf("contextbuilder: reading %s: %v", relPath, err)
		return "", false
	}
	if !utf8.Valid(data) {
		// Decode failure degrades silently, same as binary content.
		return "", false
	}
	return string(data), true
}

// ContextOptions controls what BuildContext assembles. Zero-valued bounds
// fall back to the package defaults.
type ContextOptions struct {
	SelectedFiles   []string
	IncludeReadme   bool
	IncludeTree     bool
	IncludeAllFiles bool
	MaxFileSize     int64
	ScanDepth       int
}

// BuildContext assembles the project context string: directory tree, README,
// then file sections, in that order. Per-file problems degrade to
// placeholders and never fail the whole build.
func (b *Builder) BuildContext(opts ContextOptions) string {
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var parts []string

	if opts.IncludeTree {
		tree := b.Tree(DefaultTreeDepth, DefaultIgnores)
		parts = append(parts, "## Project Structure\n```\n"+tree+"\n```\n")
	}

	if opts.IncludeReadme {
		if readme, ok := b.Readme(); ok {
			parts = append(parts, "## README.md\n```markdown\n"+readme+"\n```\n")
		}
	}

	files := opts.SelectedFiles
	if opts.IncludeAllFiles && len(files) == 0 {
		scanDepth := opts.ScanDepth
		if scanDepth <= 0 {
			scanDepth = DefaultScanDepth
		}
		files = b.ListFiles(scanDepth, DefaultScanIgnores, true)
	}

	if len(files) > 0 {
		parts = append(parts, "## Selected Files\n")
		var skippedBinary []string
		for _, relPath := range files {
			content, ok := b.ReadFile(relPath)
			full := filepath.Clean(filepath.Join(b.root, relPath))
			if !ok {
				if info, err := os.Stat(full); err == nil && info.Mode().IsRegular() && IsBinary(full) {
					skippedBinary = append(skippedBinary, relPath)
					continue
				}
				parts = append(parts, fmt.Sprintf("### %s\n```\n[File not found or could not be read]\n```\n", relPath))
				continue
			}

			if info, err := os.Stat(full); err == nil && info.Size() > maxSize {
				parts = append(parts, fmt.Sprintf("### %s\n```\n[File too large: %d bytes, skipped]\n```\n", relPath, info.Size()))
				continue
			}

			lang := FenceHint(relPath)
			parts = append(parts, fmt.Sprintf("### %s\n```%s\n%s\n```\n", relPath, lang, content))
		}

		if len(skippedBinary) > 0 {
			names := skippedBinary
			suffix := ""
			if len(names) > 5 {
				names = names[:5]
				suffix = "..."
			}
			parts = append(parts, fmt.Sprintf("\n*Note: %d binary file(s) skipped: %s%s*\n",
				len(skippedBinary), strings.Join(names, ", "), suffix))
		}
	}

	return strings.Join(parts, "\n")
}
