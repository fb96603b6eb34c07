package resolver

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/tristendillon/tsmock/core/ast"
	"github.com/tristendillon/tsmock/core/config"
	"github.com/tristendillon/tsmock/core/logger"
	"github.com/tristendillon/tsmock/core/models"
)

const indexName = "index"

// Resolver maps module locations and aliased import specifiers to their
// canonical and mock specifiers.
type Resolver struct {
	fs          afero.Fs
	projectRoot string
	domain      config.Domain
	mockSuffix  string
}

func NewResolver(fs afero.Fs, projectRoot string, domain config.Domain, mockSuffix string) *Resolver {
	return &Resolver{
		fs:          fs,
		projectRoot: filepath.Clean(projectRoot),
		domain:      domain,
		mockSuffix:  mockSuffix,
	}
}

// OwnPath returns the import specifier other modules use for modulePath,
// e.g. <root>/domain/user/service.ts -> @sdv/domain/user/service.
func (r *Resolver) OwnPath(modulePath string) (string, error) {
	domainRoot := filepath.Join(r.projectRoot, r.domain.Root)
	rel, err := filepath.Rel(domainRoot, filepath.Clean(modulePath))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.WithHintf(
			errors.Wrapf(models.ErrOwnPathUndeterminable, "%s", modulePath),
			"modules must live under %s", domainRoot,
		)
	}

	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	rel = strings.TrimSuffix(rel, "/"+indexName)
	return strings.TrimSuffix(r.domain.ImportPrefix, "/") + "/" + rel, nil
}

// MockPath returns the mock-equivalent of an aliased import specifier.
// Targets that do not exist yet are resolved from the specifier's shape.
func (r *Resolver) MockPath(specifier string) (string, error) {
	prefix := r.domain.Alias + "/"
	if !strings.HasPrefix(specifier, prefix) {
		return "", errors.Wrapf(models.ErrUnresolvableDependency, "%s is not under alias %s", specifier, r.domain.Alias)
	}

	base := filepath.Join(r.projectRoot, r.domain.AliasRoot)
	target := filepath.Join(base, filepath.FromSlash(strings.TrimPrefix(specifier, prefix)))
	if rel, err := filepath.Rel(base, target); err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.Wrapf(models.ErrUnresolvableDependency, "%s escapes the alias root", specifier)
	}

	// a file wins over a same-named directory, as in TS module resolution
	if !strings.HasSuffix(specifier, "/") {
		file, spec, err := r.findFile(target, specifier)
		if err != nil {
			return "", errors.Mark(errors.Wrapf(err, "failed to resolve %s", specifier), models.ErrUnresolvableDependency)
		}
		if file != "" {
			return r.fromFile(file, spec)
		}
	}

	info, err := r.stat(target)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "failed to resolve %s", specifier), models.ErrUnresolvableDependency)
	}
	if info != nil && info.IsDir() {
		return strings.TrimSuffix(specifier, "/") + "/" + r.indexMock(), nil
	}

	logger.Debug("Dependency %s does not exist yet, guessing mock path from its shape", specifier)
	return r.fallback(specifier), nil
}

// findFile locates the source file a specifier addresses. When the specifier
// already carries an extension, the returned specifier has it stripped.
func (r *Resolver) findFile(target, specifier string) (string, string, error) {
	for _, ext := range r.domain.Extensions {
		info, err := r.stat(target + ext)
		if err != nil {
			return "", "", err
		}
		if info != nil && !info.IsDir() {
			return target + ext, specifier, nil
		}
	}

	if ext := filepath.Ext(target); r.isExtension(ext) {
		info, err := r.stat(target)
		if err != nil {
			return "", "", err
		}
		if info != nil && !info.IsDir() {
			return target, strings.TrimSuffix(specifier, ext), nil
		}
	}
	return "", "", nil
}

func (r *Resolver) fromFile(file, specifier string) (string, error) {
	dir := filepath.Dir(file)
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

	if name == indexName {
		if strings.HasSuffix(specifier, "/"+indexName) {
			return specifier + r.mockSuffix, nil
		}
		return specifier + "/" + r.indexMock(), nil
	}

	sibling, err := r.anyExtension(filepath.Join(dir, name+r.mockSuffix))
	if err != nil {
		return "", err
	}
	if sibling {
		return specifier + r.mockSuffix, nil
	}

	nested, err := r.anyExtension(filepath.Join(dir, name, r.indexMock()))
	if err != nil {
		return "", err
	}
	if nested {
		return specifier + "/" + r.indexMock(), nil
	}

	return specifier + r.mockSuffix, nil
}

func (r *Resolver) fallback(specifier string) string {
	switch {
	case strings.HasSuffix(specifier, "/"+indexName):
		return specifier + r.mockSuffix
	case strings.HasSuffix(specifier, "/"):
		return specifier + r.indexMock()
	default:
		return specifier + r.mockSuffix
	}
}

// Dependencies lists the value-level imports of m that go through the
// domain alias, with their mock specifiers. Unresolvable imports are skipped.
func (r *Resolver) Dependencies(m *ast.Module) []models.DependencyInfo {
	prefix := r.domain.Alias + "/"
	var deps []models.DependencyInfo

	for _, imp := range m.Imports() {
		if imp.Modifiers().Has(ast.TypeOnly) || !strings.HasPrefix(imp.Source(), prefix) {
			continue
		}

		var names []string
		for _, spec := range imp.Children() {
			if spec.Modifiers().Any(ast.TypeOnly | ast.Default | ast.Namespace) {
				continue
			}
			names = append(names, spec.Name())
		}
		if len(names) == 0 {
			continue
		}

		mockPath, err := r.MockPath(imp.Source())
		if err != nil {
			logger.Warn("Skipping dependency %s: %v", imp.Source(), err)
			continue
		}
		deps = append(deps, models.DependencyInfo{
			OriginalImportPath: imp.Source(),
			MockImportPath:     mockPath,
			ImportedNames:      names,
		})
	}
	return deps
}

func (r *Resolver) indexMock() string {
	return indexName + r.mockSuffix
}

func (r *Resolver) isExtension(ext string) bool {
	for _, e := range r.domain.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (r *Resolver) anyExtension(stem string) (bool, error) {
	for _, ext := range r.domain.Extensions {
		info, err := r.stat(stem + ext)
		if err != nil {
			return false, err
		}
		if info != nil && !info.IsDir() {
			return true, nil
		}
	}
	return false, nil
}

// stat returns nil info and nil error when path does not exist.
func (r *Resolver) stat(path string) (os.FileInfo, error) {
	info, err := r.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
			return nil, nil
		}
		return nil, err
	}
	return info, nil
}
