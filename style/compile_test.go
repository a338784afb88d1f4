package style

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeSource(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func Test_ParseSyntaxPolicy(t *testing.T) {
	tests := []struct {
		value    string
		expected SyntaxPolicy
		wantErr  bool
	}{
		{"", SyntaxNever, false},
		{"never", SyntaxNever, false},
		{"Extension", SyntaxByExtension, false},
		{"always", SyntaxNever, true},
	}
	for _, tt := range tests {
		got, err := ParseSyntaxPolicy(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSyntaxPolicy(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
		if got != tt.expected {
			t.Errorf("ParseSyntaxPolicy(%q) = %v, want %v", tt.value, got, tt.expected)
		}
	}
}

func Test_IncludeDirs(t *testing.T) {
	got := IncludeDirs("/r/a/x.scss", []string{"/r/b/y.scss", "/r/a/z.scss", "/r/c/w.css", "/r/b/v.scss"})
	want := []string{"/r/a", "/r/b", "/r/c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func Test_LibSass_CompressedOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "base.scss", `
/* banner */
$primary: #ff0000;

.button {
  color: $primary;

  &:hover {
    color: darken($primary, 10%);
  }
}
`)

	css, err := NewLibSass(LibSassOptions{}).Compile(path, []string{path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	trimmed := strings.TrimSpace(css)
	if trimmed == "" {
		t.Fatal("expected non-empty CSS")
	}
	if strings.Contains(trimmed, "/*") {
		t.Errorf("expected comments to be stripped, got %q", trimmed)
	}
	if strings.ContainsAny(trimmed, "\n\t") || strings.Contains(trimmed, ": ") {
		t.Errorf("expected compressed output, got %q", trimmed)
	}
	if !strings.Contains(trimmed, ".button:hover{") {
		t.Errorf("expected nested selector to be flattened, got %q", trimmed)
	}
}

func Test_LibSass_Precision(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "grid.scss", ".col { width: (10px / 3); }\n")

	css, err := NewLibSass(LibSassOptions{}).Compile(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(css, "3.333px") || strings.Contains(css, "3.3333") {
		t.Errorf("expected 3 digits of precision, got %q", css)
	}
}

func Test_LibSass_ResolvesImportAcrossBatch(t *testing.T) {
	dir := t.TempDir()
	b := writeSource(t, dir, "lib/b.scss", ".b { color: blue; }\n")
	a := writeSource(t, dir, "app/a.scss", "@import \"b\";\n.a { color: red; }\n")

	css, err := NewLibSass(LibSassOptions{}).Compile(a, []string{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(css, ".b{color:blue}") || !strings.Contains(css, ".a{color:red}") {
		t.Errorf("expected merged output, got %q", css)
	}
}

func Test_LibSass_ResolvesPartialImport(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "_mixins.scss", "@mixin pad { padding: 1px; }\n")
	a := writeSource(t, dir, "a.scss", "@import \"mixins\";\n.a { @include pad; }\n")

	css, err := NewLibSass(LibSassOptions{}).Compile(a, []string{a})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(css, ".a{padding:1px}") {
		t.Errorf("expected mixin to be applied, got %q", css)
	}
}

func Test_LibSass_SyntaxError(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "broken.scss", ".broken { color: red;\n")

	_, err := NewLibSass(LibSassOptions{}).Compile(path, []string{path})
	if err == nil {
		t.Fatal("expected syntax error")
	}
	if !strings.Contains(err.Error(), "broken.scss") {
		t.Errorf("expected error to mention the file, got %v", err)
	}
}

func Test_LibSass_UnresolvedImport(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.scss", "@import \"missing\";\n")

	if _, err := NewLibSass(LibSassOptions{}).Compile(path, []string{path}); err == nil {
		t.Fatal("expected unresolved import error")
	}
}

func Test_LibSass_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.scss")
	if _, err := NewLibSass(LibSassOptions{}).Compile(path, nil); err == nil {
		t.Fatal("expected read error")
	}
}

func Test_LibSass_BinaryContent(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "blob.css", "\x00\x01\x02")

	_, err := NewLibSass(LibSassOptions{}).Compile(path, nil)
	if !errors.Is(err, ErrBinaryContent) {
		t.Errorf("expected ErrBinaryContent, got %v", err)
	}
}

func Test_LibSass_IndentedSyntaxPolicy(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "legacy.sass", ".legacy\n  color: red\n")

	// SCSS parsing of indented input is not expected to produce the rule
	neverCSS, neverErr := NewLibSass(LibSassOptions{IndentedSyntax: SyntaxNever}).Compile(path, nil)
	if neverErr == nil && strings.Contains(neverCSS, ".legacy{color:red}") {
		t.Errorf("expected indented syntax to be ignored, got %q", neverCSS)
	}

	css, err := NewLibSass(LibSassOptions{IndentedSyntax: SyntaxByExtension}).Compile(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(css, ".legacy{color:red}") {
		t.Errorf("expected indented syntax to compile, got %q", css)
	}
}
