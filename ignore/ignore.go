package ignore

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	gitignore "github.com/denormal/go-gitignore"
)

// IgnoreFileName is the ignore-file looked up at the source root.
const IgnoreFileName = ".gitignore"

// Rules wraps the parsed .gitignore of a source root.
// Unlike a lenient matcher, loading is strict: a missing, unreadable or
// unparsable file is reported as an error so the caller can fall back.
type Rules struct {
	rootDir   string
	gitIgnore gitignore.GitIgnore
}

// LoadRules reads and parses <rootDir>/.gitignore.
// Patterns the parser cannot handle, including ones that make it panic,
// are reported as parse errors.
func LoadRules(rootDir string) (rules *Rules, err error) {
	filePath := filepath.Join(rootDir, IgnoreFileName)

	// ReadFile (rather than Open) so that a directory named .gitignore fails here
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}

	// go-gitignore panics on some patterns, e.g. a lone "/"
	defer func() {
		if p := recover(); p != nil {
			rules, err = nil, fmt.Errorf("parsing %s: %v", filePath, p)
		}
	}()

	var parseErr error
	gi := gitignore.New(bytes.NewReader(data), rootDir, func(e gitignore.Error) bool {
		if parseErr == nil {
			parseErr = e
		}
		return false
	})
	if parseErr != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, parseErr)
	}
	if gi == nil {
		return nil, fmt.Errorf("parsing %s: no rules produced", filePath)
	}

	return &Rules{rootDir: rootDir, gitIgnore: gi}, nil
}

// Ignored reports whether the absolute path is excluded by the rules.
// Relative() is used so the path does not need to exist on disk.
func (r *Rules) Ignored(absolutePath string, isDir bool) bool {
	relativePath, err := filepath.Rel(r.rootDir, absolutePath)
	if err != nil {
		relativePath = absolutePath
	}
	relativePath = filepath.ToSlash(relativePath)
	if relativePath == "." {
		return false
	}

	match := r.gitIgnore.Relative(relativePath, isDir)
	return match != nil && match.Ignore()
}
