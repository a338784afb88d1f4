// Package pass runs compile passes: collect candidate files under a source
// root, keep the eligible stylesheets, compile them, derive cache keys and
// install the result as one snapshot.
package pass

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/lexandro/stylecache-mcp/ignore"
	"github.com/lexandro/stylecache-mcp/index"
	"github.com/lexandro/stylecache-mcp/style"
)

// DefaultWorkers is the size of the compile worker pool.
const DefaultWorkers = 8

// Options configures a Runner.
type Options struct {
	Root            string
	Workers         int
	ConventionalDir string   // see style.KeyPolicy
	StripExtensions []string // see style.KeyPolicy
	Collector       *ignore.Collector
	Compiler        style.Compiler
	Store           *index.Store
	CSSIndex        *index.CSSIndex // optional
	Logger          *slog.Logger
}

// Runner executes compile passes. At most one pass writes at a time.
type Runner struct {
	mu              sync.Mutex // serializes passes
	root            string
	workers         int
	conventionalDir string
	stripExtensions []string
	collector       *ignore.Collector
	compiler        style.Compiler
	store           *index.Store
	cssIndex        *index.CSSIndex
	logger          *slog.Logger

	lastMu  sync.RWMutex // guards last and hasLast, never held during a pass
	last    Result
	hasLast bool
}

// Failure records one file that could not be compiled.
type Failure struct {
	Path string
	Err  error
}

// Snapshot is the output of Build: entries ordered by source path.
type Snapshot struct {
	Root         string
	RootFellBack bool
	Tier         ignore.Tier
	Candidates   int
	Eligible     []string
	Entries      []*index.Entry
	Failures     []Failure
	Fingerprint  uint64
}

// Result summarizes a completed pass.
type Result struct {
	Root         string
	RootFellBack bool
	Tier         ignore.Tier
	Candidates   int
	Eligible     int
	Compiled     int
	Failed       int
	Collisions   []string
	Entries      int
	TotalSize    int64
	Generation   uint64
	Fingerprint  uint64
	Duration     time.Duration
	FinishedAt   time.Time
}

// NewRunner creates a Runner, filling in defaults for unset options.
func NewRunner(options Options) *Runner {
	if options.Workers <= 0 {
		options.Workers = DefaultWorkers
	}
	if options.Collector == nil {
		options.Collector = ignore.NewCollector()
	}
	if options.Compiler == nil {
		options.Compiler = style.NewLibSass(style.LibSassOptions{})
	}
	if options.Store == nil {
		options.Store = index.NewStore()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.ConventionalDir == "" {
		options.ConventionalDir = style.DefaultConventionalDir
	}
	if options.StripExtensions == nil {
		options.StripExtensions = style.DefaultStripExtensions
	}
	return &Runner{
		root:            options.Root,
		workers:         options.Workers,
		conventionalDir: options.ConventionalDir,
		stripExtensions: options.StripExtensions,
		collector:       options.Collector,
		compiler:        options.Compiler,
		store:           options.Store,
		cssIndex:        options.CSSIndex,
		logger:          options.Logger,
	}
}

// Store returns the cache the runner populates.
func (r *Runner) Store() *index.Store {
	return r.store
}

// LastResult returns the most recent pass result, if any. It does not wait
// for a pass in progress.
func (r *Runner) LastResult() (Result, bool) {
	r.lastMu.RLock()
	defer r.lastMu.RUnlock()
	return r.last, r.hasLast
}

// Run performs one full pass and installs its snapshot.
func (r *Runner) Run() Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := time.Now()
	return r.runLocked(r.Build(), start)
}

// RunIfChanged performs a pass only when the fingerprint of the stylesheet
// sources differs from the previous pass. Partials count, since edits to them
// change the output of the files importing them. The bool reports whether a pass ran.
// The listing that is fingerprinted is the one that gets compiled.
func (r *Runner) RunIfChanged() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	resolved, fellBack := r.resolveRoot()
	paths, tier := r.collect(resolved)
	fingerprint := Fingerprint(fingerprintInputs(paths))

	last, hasLast := r.LastResult()
	if hasLast && fingerprint == last.Fingerprint {
		return last, false
	}
	snapshot := r.build(resolved, fellBack, paths, tier)
	snapshot.Fingerprint = fingerprint
	return r.runLocked(snapshot, start), true
}

func (r *Runner) runLocked(snapshot Snapshot, start time.Time) Result {
	stats := r.store.Replace(snapshot.Entries)
	for _, key := range stats.Collisions {
		r.logger.Warn("cache key collision, keeping the last compiled source", "key", key)
	}

	if r.cssIndex != nil {
		if err := r.cssIndex.Replace(snapshot.Entries); err != nil {
			r.logger.Warn("failed to rebuild css search index", "error", err)
		}
	}

	var totalSize int64
	for _, entry := range snapshot.Entries {
		totalSize += entry.SizeBytes
	}

	result := Result{
		Root:         snapshot.Root,
		RootFellBack: snapshot.RootFellBack,
		Tier:         snapshot.Tier,
		Candidates:   snapshot.Candidates,
		Eligible:     len(snapshot.Eligible),
		Compiled:     len(snapshot.Entries),
		Failed:       len(snapshot.Failures),
		Collisions:   stats.Collisions,
		Entries:      stats.Entries,
		TotalSize:    totalSize,
		Generation:   stats.Generation,
		Fingerprint:  snapshot.Fingerprint,
		Duration:     time.Since(start),
		FinishedAt:   time.Now(),
	}
	r.lastMu.Lock()
	r.last = result
	r.hasLast = true
	r.lastMu.Unlock()

	r.logger.Info("compile pass complete",
		"root", result.Root,
		"tier", result.Tier.String(),
		"candidates", result.Candidates,
		"eligible", result.Eligible,
		"compiled", result.Compiled,
		"failed", result.Failed,
		"collisions", len(result.Collisions),
		"generation", result.Generation,
	)
	return result
}

// Build collects, filters, compiles and keys every eligible file under the
// runner's root without touching the store.
func (r *Runner) Build() Snapshot {
	resolved, fellBack := r.resolveRoot()
	paths, tier := r.collect(resolved)
	snapshot := r.build(resolved, fellBack, paths, tier)
	snapshot.Fingerprint = Fingerprint(fingerprintInputs(paths))
	return snapshot
}

func (r *Runner) resolveRoot() (string, bool) {
	resolved, fellBack := ignore.ResolveRoot(r.root)
	if fellBack {
		r.logger.Debug("source root could not be canonicalized, using fallback", "root", r.root, "resolved", resolved)
	}
	return resolved, fellBack
}

func (r *Runner) collect(resolved string) ([]string, ignore.Tier) {
	paths, tier := r.collector.Collect(resolved)
	if tier != ignore.TierIgnoreFile {
		r.logger.Debug("ignore-file unavailable, listing every file", "root", resolved, "tier", tier.String())
	}
	return paths, tier
}

// build filters, compiles and keys an already collected listing.
func (r *Runner) build(resolved string, fellBack bool, paths []string, tier ignore.Tier) Snapshot {
	eligible := style.FilterEligible(paths)
	sort.Strings(eligible)

	policy := style.NewKeyPolicy(resolved)
	policy.ConventionalDir = r.conventionalDir
	policy.StripExtensions = r.stripExtensions

	entries, failures := r.compileAll(resolved, eligible, policy)
	for _, failure := range failures {
		r.logger.Warn("failed to compile stylesheet", "path", failure.Path, "error", failure.Err)
	}

	return Snapshot{
		Root:         resolved,
		RootFellBack: fellBack,
		Tier:         tier,
		Candidates:   len(paths),
		Eligible:     eligible,
		Entries:      entries,
		Failures:     failures,
	}
}

// compileAll compiles eligible files on a bounded worker pool. Results are
// returned in the order of eligible, so later paths win key collisions.
func (r *Runner) compileAll(root string, eligible []string, policy style.KeyPolicy) ([]*index.Entry, []Failure) {
	type compileResult struct {
		entry *index.Entry
		err   error
	}
	results := make([]compileResult, len(eligible))

	jobs := make(chan int, 100)
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				path := eligible[job]
				css, err := r.compiler.Compile(path, eligible)
				if err != nil {
					results[job] = compileResult{err: err}
					continue
				}
				results[job] = compileResult{entry: index.NewEntry(
					policy.Normalize(path),
					path,
					relativePath(root, path),
					style.DetectSyntax(path),
					css,
				)}
			}
		}()
	}
	for i := range eligible {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var entries []*index.Entry
	var failures []Failure
	for i, result := range results {
		if result.err != nil {
			failures = append(failures, Failure{Path: eligible[i], Err: result.err})
			continue
		}
		entries = append(entries, result.entry)
	}
	return entries, failures
}

// Fingerprint hashes the path, size and modification time of every file.
// Unreadable files contribute only their path.
func Fingerprint(paths []string) uint64 {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	digest := xxhash.New()
	for _, path := range sorted {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(digest, "%s\n", path)
			continue
		}
		fmt.Fprintf(digest, "%s\x00%d\x00%d\n", path, info.Size(), info.ModTime().UnixNano())
	}
	return digest.Sum64()
}

// fingerprintInputs keeps the candidates that can affect compiled output:
// stylesheets (partials included) and the ignore-file.
func fingerprintInputs(paths []string) []string {
	inputs := make([]string, 0, len(paths))
	for _, path := range paths {
		if style.IsStylesheet(path) || filepath.Base(path) == ignore.IgnoreFileName {
			inputs = append(inputs, path)
		}
	}
	return inputs
}

func relativePath(root string, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
