package models

import (
	"path/filepath"
	"strings"
)

type DiscoveredModule struct {
	Path    string
	RelPath string
	HasMock bool
	HasTest bool
}

// Companion suffix pair, e.g. ".mock" and ".test".
type Suffixes struct {
	Mock string
	Test string
}

var excludedInfixes = []string{".test.", ".spec.", ".mock.", ".d."}

// IsSourceModule reports whether path is a module that may own companions.
func IsSourceModule(path string, extensions []string) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if !hasExtension(ext, extensions) {
		return false
	}
	for _, infix := range excludedInfixes {
		if strings.Contains(base, infix) {
			return false
		}
	}
	return true
}

func hasExtension(ext string, extensions []string) bool {
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// CompanionPath maps foo.ts to foo<suffix>.ts.
func CompanionPath(source, suffix string) string {
	ext := filepath.Ext(source)
	return strings.TrimSuffix(source, ext) + suffix + ext
}

// SourcePath maps foo<suffix>.ts back to foo.ts. The second result is false
// when path is not a companion with that suffix.
func SourcePath(companion, suffix string) (string, bool) {
	ext := filepath.Ext(companion)
	stem := strings.TrimSuffix(companion, ext)
	if !strings.HasSuffix(stem, suffix) {
		return "", false
	}
	return strings.TrimSuffix(stem, suffix) + ext, true
}
