package contextbuilder

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ignored reports whether any component of relPath matches an ignore
// pattern. Patterns containing '*' are matched as globs against the final
// path segment; everything else is an exact component match.
func ignored(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	parts := strings.Split(normalized, "/")
	base := parts[len(parts)-1]

	for _, pattern := range patterns {
		if strings.Contains(pattern, "*") {
			if matched, err := doublestar.Match(pattern, base); err == nil && matched {
				return true
			}
			continue
		}
		for _, part := range parts {
			if part == pattern {
				return true
			}
		}
	}
	return false
}

// Tree renders an ASCII tree of the project, pruning ignored components and
// stopping at maxDepth. The first line is the absolute project root.
func (b *Builder) Tree(maxDepth int, ignore []string) string {
	if ignore == nil {
		ignore = DefaultIgnores
	}

	lines := []string{b.root}
	b.walkTree(b.root, "", 0, maxDepth, ignore, &lines)
	return strings.Join(lines, "\n")
}

func (b *Builder) walkTree(dir, prefix string, depth, maxDepth int, ignore []string, lines *[]string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// Unreadable directories are simply omitted.
		return
	}

	var kept []os.DirEntry
	for _, e := range entries {
		rel, err := filepath.Rel(b.root, filepath.Join(dir, e.Name()))
		if err != nil || ignored(rel, ignore) {
			continue
		}
		kept = append(kept, e)
	}

	// Files first, then directories, each group by name.
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].IsDir() != kept[j].IsDir() {
			return !kept[i].IsDir()
		}
		return kept[i].Name() < kept[j].Name()
	})

	for i, e := range kept {
		last := i == len(kept)-1
		glyph := "├── "
		if last {
			glyph = "└── "
		}
		*lines = append(*lines, prefix+glyph+e.Name())

		if e.IsDir() && depth < maxDepth {
			childPrefix := prefix + "│   "
			if last {
				childPrefix = prefix + "    "
			}
			b.walkTree(filepath.Join(dir, e.Name()), childPrefix, depth+1, maxDepth, ignore, lines)
		}
	}
}

// ListFiles returns the relative paths of all files under the root, sorted
// lexicographically, honoring ignore patterns and the depth limit. With
// textOnly set, binary files are excluded.
func (b *Builder) ListFiles(maxDepth int, ignore []string, textOnly bool) []string {
	if ignore == nil {
		ignore = DefaultScanIgnores
	}

	var files []string
	b.scanDir(b.root, 0, maxDepth, ignore, textOnly, &files)
	sort.Strings(files)
	return files
}

func (b *Builder) scanDir(dir string, depth, maxDepth int, ignore []string, textOnly bool, files *[]string) {
	if depth > maxDepth {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		rel, err := filepath.Rel(b.root, full)
		if err != nil || ignored(rel, ignore) {
			continue
		}

		if e.IsDir() {
			b.scanDir(full, depth+1, maxDepth, ignore, textOnly, files)
			continue
		}
		if !e.Type().IsRegular() {
			continue
		}
		if textOnly && IsBinary(full) {
			continue
		}
		*files = append(*files, filepath.ToSlash(rel))
	}
}
