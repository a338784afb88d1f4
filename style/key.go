package style

import (
	"path/filepath"
	"strings"
)

// NamespaceSeparator joins path segments in a cache key.
const NamespaceSeparator = ":"

// DefaultConventionalDir is the subdirectory name stripped from relative paths.
const DefaultConventionalDir = "styles"

// DefaultStripExtensions lists the extensions removed from keys by default.
// Only .scss is stripped, so base.css and base.scss get distinct keys.
var DefaultStripExtensions = []string{".scss"}

// KeyRule is one named step of key normalization.
type KeyRule struct {
	Name  string
	Apply func(string) string
}

// KeyPolicy derives flat, namespaced cache keys from absolute source paths.
type KeyPolicy struct {
	Root            string   // resolved source root
	ConventionalDir string   // relative prefix to strip, default "styles"
	StripExtensions []string // trailing extensions to strip, default DefaultStripExtensions
}

// NewKeyPolicy creates a policy for root with the default settings.
func NewKeyPolicy(root string) KeyPolicy {
	return KeyPolicy{
		Root:            root,
		ConventionalDir: DefaultConventionalDir,
		StripExtensions: DefaultStripExtensions,
	}
}

// Rules returns the ordered normalization rules for this policy.
func (p KeyPolicy) Rules() []KeyRule {
	return []KeyRule{
		{Name: "strip-root", Apply: p.stripRoot},
		{Name: "strip-conventional-dir", Apply: p.stripConventionalDir},
		{Name: "strip-leading", Apply: stripLeading},
		{Name: "strip-extension", Apply: p.stripExtension},
		{Name: "namespace", Apply: namespace},
	}
}

// Normalize applies every rule in order. Distinct paths may share a key.
func (p KeyPolicy) Normalize(path string) string {
	key := path
	for _, rule := range p.Rules() {
		key = rule.Apply(key)
	}
	return key
}

func (p KeyPolicy) stripRoot(path string) string {
	if p.Root == "" {
		return path
	}
	return strings.TrimPrefix(path, p.Root)
}

func (p KeyPolicy) stripConventionalDir(path string) string {
	if p.ConventionalDir == "" {
		return path
	}
	slashed := filepath.ToSlash(path)
	for _, prefix := range []string{"./" + p.ConventionalDir + "/", "/" + p.ConventionalDir + "/"} {
		if strings.HasPrefix(slashed, prefix) {
			return path[len(prefix):]
		}
	}
	return path
}

func stripLeading(path string) string {
	return strings.TrimLeft(path, "./"+string(filepath.Separator))
}

func (p KeyPolicy) stripExtension(path string) string {
	for _, ext := range p.StripExtensions {
		if ext != "" && strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext)
		}
	}
	return path
}

func namespace(path string) string {
	key := strings.ReplaceAll(path, "/", NamespaceSeparator)
	if filepath.Separator != '/' {
		key = strings.ReplaceAll(key, string(filepath.Separator), NamespaceSeparator)
	}
	return key
}
