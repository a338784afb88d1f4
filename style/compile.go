package style

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bep/golibsass/libsass"
)

// DefaultPrecision is the number of digits kept after the decimal point.
const DefaultPrecision = 3

// SyntaxPolicy controls when the indented (.sass) syntax parser is enabled.
type SyntaxPolicy int

const (
	// SyntaxNever parses every source as SCSS, including .sass files.
	SyntaxNever SyntaxPolicy = iota
	// SyntaxByExtension enables indented parsing for .sass files only.
	SyntaxByExtension
)

// ParseSyntaxPolicy maps "never" or "extension" to a SyntaxPolicy.
func ParseSyntaxPolicy(value string) (SyntaxPolicy, error) {
	switch strings.ToLower(value) {
	case "", "never":
		return SyntaxNever, nil
	case "extension":
		return SyntaxByExtension, nil
	default:
		return SyntaxNever, fmt.Errorf("unknown sass syntax policy %q (want never|extension)", value)
	}
}

func (p SyntaxPolicy) String() string {
	if p == SyntaxByExtension {
		return "extension"
	}
	return "never"
}

// ErrBinaryContent is returned for sources that look like binary data.
var ErrBinaryContent = errors.New("binary content")

// Compiler turns one stylesheet source into CSS.
// includePaths is the list of eligible files in the batch.
type Compiler interface {
	Compile(path string, includePaths []string) (string, error)
}

// LibSassOptions configures LibSass. Output is always compressed.
type LibSassOptions struct {
	Precision      int
	IndentedSyntax SyntaxPolicy
}

// LibSass compiles stylesheets with libsass.
type LibSass struct {
	precision      int
	indentedSyntax SyntaxPolicy
}

// NewLibSass creates a libsass-backed compiler.
func NewLibSass(options LibSassOptions) *LibSass {
	if options.Precision <= 0 {
		options.Precision = DefaultPrecision
	}
	return &LibSass{
		precision:      options.Precision,
		indentedSyntax: options.IndentedSyntax,
	}
}

// Compile reads path and transpiles it. Imports resolve against the file's own
// directory followed by the directories of every file in includePaths.
func (c *LibSass) Compile(path string, includePaths []string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if isBinaryContent(source) {
		return "", fmt.Errorf("compiling %s: %w", path, ErrBinaryContent)
	}

	transpiler, err := libsass.New(libsass.Options{
		OutputStyle:  libsass.CompressedStyle,
		Precision:    c.precision,
		IncludePaths: IncludeDirs(path, includePaths),
		SassSyntax:   c.indentedSyntax == SyntaxByExtension && DetectSyntax(path) == "Sass",
	})
	if err != nil {
		return "", fmt.Errorf("creating transpiler for %s: %w", path, err)
	}

	result, err := transpiler.Execute(string(source))
	if err != nil {
		return "", fmt.Errorf("compiling %s: %w", path, err)
	}
	return result.CSS, nil
}

// IncludeDirs returns the unique directories of path and includePaths, with
// path's own directory first.
func IncludeDirs(path string, includePaths []string) []string {
	seen := make(map[string]bool, len(includePaths)+1)
	dirs := make([]string, 0, len(includePaths)+1)
	for _, p := range append([]string{path}, includePaths...) {
		dir := filepath.Dir(p)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

// isBinaryContent checks the first 512 bytes for a NUL byte.
func isBinaryContent(data []byte) bool {
	checkSize := min(len(data), 512)
	for i := 0; i < checkSize; i++ {
		if data[i] == 0 {
			return true
		}
	}
	return false
}
