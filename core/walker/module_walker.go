package walker

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/tristendillon/tsmock/core/config"
	"github.com/tristendillon/tsmock/core/logger"
	"github.com/tristendillon/tsmock/core/models"
)

type ModuleWalker interface {
	Walk(projectRoot string) ([]models.DiscoveredModule, error)
}

type ModuleWalkerImpl struct {
	fs       afero.Fs
	domain   config.Domain
	suffixes models.Suffixes
	Exclude  []string
}

func NewModuleWalker(fs afero.Fs, cfg *config.Config) *ModuleWalkerImpl {
	return &ModuleWalkerImpl{
		fs:       fs,
		domain:   cfg.Domain,
		suffixes: models.Suffixes{Mock: cfg.Mock.Suffix, Test: cfg.Test.Suffix},
		Exclude:  cfg.Watch.Exclude,
	}
}

// Walk lists every source module under the domain root of projectRoot, in
// lexical order, noting which companions already exist.
func (w *ModuleWalkerImpl) Walk(projectRoot string) ([]models.DiscoveredModule, error) {
	root := filepath.Join(projectRoot, w.domain.Root)
	if ok, _ := afero.DirExists(w.fs, root); !ok {
		return nil, errors.WithHintf(
			errors.Newf("domain root %s does not exist", root),
			"set domain.root in %s.%s", config.FileName, config.FileType,
		)
	}

	var discovered []models.DiscoveredModule
	err := afero.Walk(w.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if relPath != "." && w.excluded(relPath) {
				logger.Debug("Excluding directory: %s", path)
				return filepath.SkipDir
			}
			return nil
		}

		if !models.IsSourceModule(path, w.domain.Extensions) {
			return nil
		}

		module := models.DiscoveredModule{
			Path:    path,
			RelPath: filepath.ToSlash(relPath),
			HasMock: w.exists(models.CompanionPath(path, w.suffixes.Mock)),
			HasTest: w.exists(models.CompanionPath(path, w.suffixes.Test)),
		}
		logger.Debug("Discovered module: %s (mock: %t, test: %t)", module.RelPath, module.HasMock, module.HasTest)
		discovered = append(discovered, module)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk %s", root)
	}
	return discovered, nil
}

func (w *ModuleWalkerImpl) excluded(relPath string) bool {
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		for _, ex := range w.Exclude {
			if part == ex {
				return true
			}
		}
	}
	return false
}

func (w *ModuleWalkerImpl) exists(path string) bool {
	ok, _ := afero.Exists(w.fs, path)
	return ok
}
