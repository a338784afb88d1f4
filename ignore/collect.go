package ignore

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// FallbackMount prefixes source roots that cannot be canonicalized.
const FallbackMount = "/srv"

// ResolveRoot canonicalizes a source root. When that fails the root is
// re-anchored under FallbackMount and fellBack is true; it never errors.
func ResolveRoot(root string) (resolved string, fellBack bool) {
	absolutePath, err := filepath.Abs(root)
	if err == nil {
		absolutePath, err = filepath.EvalSymlinks(absolutePath)
	}
	if err != nil {
		return filepath.Join(FallbackMount, filepath.Clean(root)), true
	}
	return absolutePath, false
}

// Tier identifies which collection strategy produced a candidate list.
type Tier int

const (
	TierIgnoreFile Tier = iota
	TierFullWalk
)

func (t Tier) String() string {
	switch t {
	case TierIgnoreFile:
		return "ignore-file"
	case TierFullWalk:
		return "full-walk"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Strategy is one tier of the collection fallback chain.
// Collect returns an error when the tier cannot produce a trustworthy listing.
type Strategy struct {
	Tier    Tier
	Collect func(rootDir string) ([]string, error)
}

// DefaultStrategies tries the .gitignore-aware walk first and falls back to
// listing every file under the root.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Tier: TierIgnoreFile, Collect: CollectWithIgnoreFile},
		{Tier: TierFullWalk, Collect: CollectAll},
	}
}

// Collector discovers candidate file paths under a source root.
type Collector struct {
	Strategies []Strategy
}

// NewCollector creates a collector using DefaultStrategies.
func NewCollector() *Collector {
	return &Collector{Strategies: DefaultStrategies()}
}

// Collect runs the strategies in order and returns the paths of the first one
// that succeeds. If every strategy fails the result is empty, never an error.
func (c *Collector) Collect(rootDir string) ([]string, Tier) {
	last := TierFullWalk
	for _, strategy := range c.Strategies {
		last = strategy.Tier
		paths, err := strategy.Collect(rootDir)
		if err != nil {
			continue
		}
		sort.Strings(paths)
		return paths, strategy.Tier
	}
	return nil, last
}

// CollectWithIgnoreFile walks rootDir honoring <rootDir>/.gitignore.
// A missing or malformed ignore-file, or any traversal error, fails the tier.
func CollectWithIgnoreFile(rootDir string) ([]string, error) {
	rules, err := LoadRules(rootDir)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == rootDir {
				return nil
			}
			if d.Name() == ".git" || rules.Ignored(path, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if rules.Ignored(path, false) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", rootDir, err)
	}
	return paths, nil
}

// CollectAll lists every file under rootDir. Unreadable subdirectories are
// skipped; it never fails.
func CollectAll(rootDir string) ([]string, error) {
	var paths []string
	collectDir(rootDir, &paths)
	return paths, nil
}

func collectDir(dir string, paths *[]string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			collectDir(path, paths)
			continue
		}
		*paths = append(*paths, path)
	}
}
