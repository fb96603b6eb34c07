package models

// DependencyInfo describes one aliased, value-level import of a module.
type DependencyInfo struct {
	OriginalImportPath string
	MockImportPath     string
	ImportedNames      []string
}
