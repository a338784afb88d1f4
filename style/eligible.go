package style

import (
	"path/filepath"
	"strings"
)

// PartialPrefix marks include-only fragments that are never compiled directly.
const PartialPrefix = "_"

// Extensions are the recognized stylesheet source extensions.
var Extensions = []string{".css", ".scss", ".sass"}

// extensionToSyntax maps stylesheet extensions (without dot) to syntax names.
var extensionToSyntax = map[string]string{
	"css":  "CSS",
	"scss": "SCSS",
	"sass": "Sass",
}

// IsEligible reports whether a candidate is a directly compilable stylesheet.
func IsEligible(path string) bool {
	if strings.HasPrefix(filepath.Base(path), PartialPrefix) {
		return false
	}
	return IsStylesheet(path)
}

// IsStylesheet reports whether path has a stylesheet extension, partials included.
func IsStylesheet(path string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// FilterEligible returns the eligible subset of paths, preserving order.
func FilterEligible(paths []string) []string {
	eligible := make([]string, 0, len(paths))
	for _, path := range paths {
		if IsEligible(path) {
			eligible = append(eligible, path)
		}
	}
	return eligible
}

// DetectSyntax returns the stylesheet syntax name for a path, or "Unknown".
func DetectSyntax(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if syntax, ok := extensionToSyntax[ext]; ok {
		return syntax
	}
	return "Unknown"
}
