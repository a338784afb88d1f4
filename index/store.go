package index

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
)

// Store is the process-wide cache of compiled stylesheets, keyed by normalized key.
// Readers take the read lock; a compile pass swaps the whole map under the write
// lock, so readers see either the previous or the new snapshot.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]*Entry
	sortedKeys []string
	generation uint64
	updatedAt  time.Time
}

// ReplaceStats summarizes one Replace call.
type ReplaceStats struct {
	Entries    int
	Collisions []string // keys written more than once, in order of first collision
	Generation uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		entries:    make(map[string]*Entry),
		sortedKeys: make([]string, 0),
	}
}

// NewEntry builds an Entry and computes its digest and size.
func NewEntry(key string, sourcePath string, relativePath string, syntax string, css string) *Entry {
	return &Entry{
		Key:          key,
		SourcePath:   sourcePath,
		RelativePath: relativePath,
		Syntax:       syntax,
		CSS:          css,
		Digest:       xxhash.Sum64String(css),
		SizeBytes:    int64(len(css)),
		CompiledAt:   time.Now(),
	}
}

// ETag returns a quoted strong validator derived from the digest.
func (e *Entry) ETag() string {
	return fmt.Sprintf("%q", fmt.Sprintf("%016x", e.Digest))
}

// Replace swaps in a new snapshot built from entries. Entries are applied in
// order; when two share a key the later one wins.
func (s *Store) Replace(entries []*Entry) ReplaceStats {
	next := make(map[string]*Entry, len(entries))
	var collisions []string
	for _, entry := range entries {
		if _, exists := next[entry.Key]; exists {
			collisions = append(collisions, entry.Key)
		}
		next[entry.Key] = entry
	}

	keys := make([]string, 0, len(next))
	for key := range next {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = next
	s.sortedKeys = keys
	s.generation++
	s.updatedAt = time.Now()

	return ReplaceStats{
		Entries:    len(next),
		Collisions: collisions,
		Generation: s.generation,
	}
}

// Get returns the compiled CSS for key. A missing key means "not compiled".
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return "", false
	}
	return entry.CSS, true
}

// Entry returns the full entry for key, or nil if not found.
func (s *Store) Entry(key string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[key]
}

// Keys returns all keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, len(s.sortedKeys))
	copy(keys, s.sortedKeys)
	return keys
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// TotalSizeBytes returns the total size of all compiled CSS.
func (s *Store) TotalSizeBytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totalSize int64
	for _, entry := range s.entries {
		totalSize += entry.SizeBytes
	}
	return totalSize
}

// SyntaxCounts returns a map of source syntax -> entry count.
func (s *Store) SyntaxCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, entry := range s.entries {
		counts[entry.Syntax]++
	}
	return counts
}

// Generation returns how many snapshots have been installed.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// UpdatedAt returns when the current snapshot was installed.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// KeySearchResult holds an entry matched by a key glob.
type KeySearchResult struct {
	Entry *Entry
}

// SearchByGlob returns entries whose key matches a doublestar glob pattern.
// The namespace separator ':' acts as the path separator, so "components:**"
// matches every key below components.
func (s *Store) SearchByGlob(pattern string, maxResults int) ([]KeySearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if maxResults <= 0 {
		maxResults = 50
	}

	globPattern := keyToGlobPath(pattern)
	if !doublestar.ValidatePattern(globPattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	var results []KeySearchResult
	for _, key := range s.sortedKeys {
		if len(results) >= maxResults {
			break
		}
		matched, err := doublestar.Match(globPattern, keyToGlobPath(key))
		if err != nil || !matched {
			continue
		}
		results = append(results, KeySearchResult{Entry: s.entries[key]})
	}

	return results, nil
}

func keyToGlobPath(key string) string {
	return strings.ReplaceAll(key, ":", "/")
}
