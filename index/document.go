package index

import "time"

// Entry is one compiled stylesheet held in the cache.
type Entry struct {
	Key          string    // Normalized cache key
	SourcePath   string    // Absolute source file path
	RelativePath string    // Source path relative to the root (forward slashes)
	Syntax       string    // CSS, SCSS or Sass
	CSS          string    // Compiled, compressed CSS
	Digest       uint64    // xxhash64 of CSS
	SizeBytes    int64     // len(CSS)
	CompiledAt   time.Time // When the pass compiled it
}
