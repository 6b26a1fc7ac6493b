package contextbuilder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFile creates a file (and parent directories) under root.
func writeFile(t *testing.T, root, relPath string, content []byte) {
	t.Helper()
	full := filepath.Join(root, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", relPath, err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", relPath, err)
	}
}

func newBuilder(t *testing.T, root string) *Builder {
	t.Helper()
	b, err := New(root)
	if err != nil {
		t.Fatalf("New(%s): %v", root, err)
	}
	return b
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected error for missing project root")
	}
}

func TestNew_FileAsRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plain.txt", []byte("x"))

	_, err := New(filepath.Join(dir, "plain.txt"))
	if err == nil {
		t.Fatal("expected error when root is a regular file")
	}
}

func TestReadme_Missing(t *testing.T) {
	b := newBuilder(t, t.TempDir())
	if _, ok := b.Readme(); ok {
		t.Error("expected absent README")
	}
}

func TestReadme_Present(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "README.md", []byte("# Hello\n"))

	b := newBuilder(t, dir)
	readme, ok := b.Readme()
	if !ok {
		t.Fatal("expected README to be found")
	}
	if readme != "# Hello\n" {
		t.Errorf("unexpected README content: %q", readme)
	}
}

func TestTree_IgnoredComponentsPruned(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".git/config", []byte("x"))
	writeFile(t, dir, "node_modules/pkg/index.js", []byte("x"))
	writeFile(t, dir, "src/main.go", []byte("package main"))

	b := newBuilder(t, dir)
	tree := b.Tree(DefaultTreeDepth, nil)

	for _, banned := range []string{".git", "node_modules", "config", "index.js"} {
		if strings.Contains(tree, banned) {
			t.Errorf("tree contains ignored entry %q:\n%s", banned, tree)
		}
	}
	if !strings.Contains(tree, "main.go") {
		t.Errorf("tree missing main.go:\n%s", tree)
	}
}

func TestTree_OrderingAndGlyphs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zz.txt", []byte("x"))
	writeFile(t, dir, "aa/inner.txt", []byte("x"))

	b := newBuilder(t, dir)
	lines := strings.Split(b.Tree(DefaultTreeDepth, nil), "\n")

	if lines[0] != b.Root() {
		t.Errorf("first line should be the root path, got %q", lines[0])
	}
	// Files sort before directories: zz.txt precedes aa even though a < z.
	if lines[1] != "├── zz.txt" {
		t.Errorf("expected zz.txt first, got %q", lines[1])
	}
	if lines[2] != "└── aa" {
		t.Errorf("expected aa last at top level, got %q", lines[2])
	}
	if lines[3] != "    └── inner.txt" {
		t.Errorf("expected indented inner.txt, got %q", lines[3])
	}
}

func TestTree_MaxDepth(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a/b/c/d/deep.txt", []byte("x"))

	b := newBuilder(t, dir)
	tree := b.Tree(1, nil)

	if !strings.Contains(tree, "└── b") {
		t.Errorf("depth-1 tree should include b:\n%s", tree)
	}
	if strings.Contains(tree, "deep.txt") {
		t.Errorf("depth-1 tree should not reach deep.txt:\n%s", tree)
	}
}

func TestListFiles_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.go", []byte("package b"))
	writeFile(t, dir, "a.go", []byte("package a"))
	writeFile(t, dir, "cache.pyc", []byte("x"))
	writeFile(t, dir, ".git/HEAD", []byte("ref"))
	writeFile(t, dir, "sub/c.txt", []byte("text"))

	b := newBuilder(t, dir)
	files := b.ListFiles(DefaultScanDepth, nil, true)

	want := []string{"a.go", "b.go", "sub/c.txt"}
	if len(files) != len(want) {
		t.Fatalf("expected %v, got %v", want, files)
	}
	for i, f := range want {
		if files[i] != f {
			t.Errorf("files[%d] = %q, want %q", i, files[i], f)
		}
	}
}

func TestListFiles_ExcludesBinary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.raw", []byte{0x00, 0x01, 0x02, 0xff})
	writeFile(t, dir, "notes.txt", []byte("plain text"))

	b := newBuilder(t, dir)
	files := b.ListFiles(DefaultScanDepth, nil, true)

	if len(files) != 1 || files[0] != "notes.txt" {
		t.Errorf("expected only notes.txt, got %v", files)
	}
}

func TestIsBinary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "image.png", []byte("not really an image"))
	writeFile(t, dir, "nul.dat", []byte("abc\x00def"))
	writeFile(t, dir, "control.dat", []byte{1, 2, 3, 4, 'a'})
	writeFile(t, dir, "text.txt", []byte("hello\n\tworld\r\n"))

	cases := []struct {
		name string
		want bool
	}{
		{"image.png", true}, // extension match, content irrelevant
		{"nul.dat", true},
		{"control.dat", true}, // 4 of 5 bytes are control characters
		{"text.txt", false},
	}
	for _, tc := range cases {
		got := IsBinary(filepath.Join(dir, tc.name))
		if got != tc.want {
			t.Errorf("IsBinary(%s) = %v, want %v", tc.name, got, tc.want)
		}
		// Classification is deterministic.
		if again := IsBinary(filepath.Join(dir, tc.name)); again != got {
			t.Errorf("IsBinary(%s) not deterministic", tc.name)
		}
	}
}

func TestReadFile_PathEscape(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "proj")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, parent, "secret.txt", []byte("secret"))
	// Sibling directory sharing the root's name as a prefix.
	writeFile(t, parent, "proj-evil/leak.txt", []byte("leak"))
	writeFile(t, root, "ok.txt", []byte("fine"))

	b := newBuilder(t, root)

	if _, ok := b.ReadFile("../secret.txt"); ok {
		t.Error("read escaped the project root via ..")
	}
	if _, ok := b.ReadFile("../proj-evil/leak.txt"); ok {
		t.Error("read escaped into a prefix-sharing sibling directory")
	}
	if content, ok := b.ReadFile("ok.txt"); !ok || content != "fine" {
		t.Errorf("expected ok.txt to read, got ok=%v content=%q", ok, content)
	}
}

func TestReadFile_MissingAndBinary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blob.zip", []byte("zipzip"))

	b := newBuilder(t, dir)
	if _, ok := b.ReadFile("nope.txt"); ok {
		t.Error("expected absent result for missing file")
	}
	if _, ok := b.ReadFile("blob.zip"); ok {
		t.Error("expected absent result for binary file")
	}
}

func TestBuildContext_SectionOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "README.md", []byte("readme body"))
	writeFile(t, dir, "main.go", []byte("package main"))

	b := newBuilder(t, dir)
	out := b.BuildContext(ContextOptions{
		SelectedFiles: []string{"main.go"},
		IncludeReadme: true,
		IncludeTree:   true,
	})

	treeIdx := strings.Index(out, "## Project Structure")
	readmeIdx := strings.Index(out, "## README.md")
	filesIdx := strings.Index(out, "## Selected Files")
	if treeIdx < 0 || readmeIdx < 0 || filesIdx < 0 {
		t.Fatalf("missing section:\n%s", out)
	}
	if !(treeIdx < readmeIdx && readmeIdx < filesIdx) {
		t.Errorf("sections out of order: tree=%d readme=%d files=%d", treeIdx, readmeIdx, filesIdx)
	}
	if !strings.Contains(out, "```go\npackage main\n```") {
		t.Errorf("expected fenced go block:\n%s", out)
	}
}

func TestBuildContext_SizePlaceholder(t *testing.T) {
	dir := t.TempDir()
	big := strings.Repeat("A", 200)
	writeFile(t, dir, "big.txt", []byte(big))

	b := newBuilder(t, dir)
	out := b.BuildContext(ContextOptions{
		SelectedFiles: []string{"big.txt"},
		MaxFileSize:   100,
	})

	if !strings.Contains(out, "[File too large: 200 bytes, skipped]") {
		t.Errorf("expected size placeholder:\n%s", out)
	}
	if strings.Contains(out, big) {
		t.Error("oversized file content leaked into context")
	}
}

func TestBuildContext_NotFoundPlaceholder(t *testing.T) {
	b := newBuilder(t, t.TempDir())
	out := b.BuildContext(ContextOptions{SelectedFiles: []string{"ghost.txt"}})

	if !strings.Contains(out, "### ghost.txt") ||
		!strings.Contains(out, "[File not found or could not be read]") {
		t.Errorf("expected not-found placeholder:\n%s", out)
	}
}

func TestBuildContext_BinarySkippedNote(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.png", []byte("x"))
	writeFile(t, dir, "b.zip", []byte("x"))

	b := newBuilder(t, dir)
	out := b.BuildContext(ContextOptions{SelectedFiles: []string{"a.png", "b.zip"}})

	if !strings.Contains(out, "2 binary file(s) skipped") {
		t.Errorf("expected binary skip note:\n%s", out)
	}
	if !strings.Contains(out, "a.png, b.zip") {
		t.Errorf("expected skipped names listed:\n%s", out)
	}
}

func TestBuildContext_AllFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.go", []byte("package one"))
	writeFile(t, dir, "two.py", []byte("print('hi')"))
	writeFile(t, dir, "skip.png", []byte("x"))

	b := newBuilder(t, dir)
	out := b.BuildContext(ContextOptions{IncludeAllFiles: true})

	if !strings.Contains(out, "### one.go") || !strings.Contains(out, "### two.py") {
		t.Errorf("expected all text files included:\n%s", out)
	}
	if strings.Contains(out, "### skip.png") {
		t.Errorf("binary file should not get a section:\n%s", out)
	}
}

func TestBuildContext_AllFilesScanDepth(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.go", []byte("package top"))
	writeFile(t, dir, "pkg/one.go", []byte("package one"))
	writeFile(t, dir, "pkg/inner/deep.go", []byte("package deep"))

	b := newBuilder(t, dir)
	out := b.BuildContext(ContextOptions{IncludeAllFiles: true, ScanDepth: 1})

	if !strings.Contains(out, "### top.go") || !strings.Contains(out, "### pkg/one.go") {
		t.Errorf("expected files within the depth limit:\n%s", out)
	}
	if strings.Contains(out, "deep.go") {
		t.Errorf("files beyond the scan depth should be excluded:\n%s", out)
	}
}

func TestFenceHint(t *testing.T) {
	cases := map[string]string{
		"app.py":      "python",
		"script.SH":   "bash",
		"conf.yml":    "yaml",
		"weird.xyz":   "",
		"no-ext-file": "",
	}
	for name, want := range cases {
		if got := FenceHint(name); got != want {
			t.Errorf("FenceHint(%s) = %q, want %q", name, got, want)
		}
	}
}
