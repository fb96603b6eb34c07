package generator

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/tristendillon/tsmock/core/ast"
	"github.com/tristendillon/tsmock/core/codegen"
	"github.com/tristendillon/tsmock/core/config"
	"github.com/tristendillon/tsmock/core/extractor"
	"github.com/tristendillon/tsmock/core/logger"
	"github.com/tristendillon/tsmock/core/models"
	"github.com/tristendillon/tsmock/core/resolver"
	"github.com/tristendillon/tsmock/core/synchronizer"
	"github.com/tristendillon/tsmock/core/template_engine"
	"github.com/tristendillon/tsmock/core/walker"
)

// CompanionGenerator runs one complete mock or test synchronization per call:
// read, parse, extract, plan, apply and write.
type CompanionGenerator struct {
	fs        afero.Fs
	cfg       *config.Config
	parser    *ast.Parser
	extractor *extractor.Extractor
	mocks     *synchronizer.MockSynchronizer
	tests     *synchronizer.TestSynchronizer
	Walker    *walker.ModuleWalkerImpl
}

func NewCompanionGenerator(fs afero.Fs, cfg *config.Config) *CompanionGenerator {
	engine := template_engine.NewTemplateEngine(fs)
	return &CompanionGenerator{
		fs:        fs,
		cfg:       cfg,
		parser:    ast.NewParser(),
		extractor: extractor.NewExtractor(cfg.Mock.OfferingBase),
		mocks:     synchronizer.NewMockSynchronizer(codegen.NewMockGenerator(engine, cfg.Mock)),
		tests:     synchronizer.NewTestSynchronizer(codegen.NewTestGenerator(engine, cfg.Test)),
		Walker:    walker.NewModuleWalker(fs, cfg),
	}
}

// source is everything known about the module a companion belongs to.
type source struct {
	module   *ast.Module
	resolver *resolver.Resolver
}

// SyncMock creates or updates the mock companion of path. path may name
// either the source module or its mock file.
func (g *CompanionGenerator) SyncMock(ctx context.Context, path string) models.Result {
	src, companion := g.pair(path, g.cfg.Mock.Suffix)
	result := models.Result{Source: src, Companion: companion, Kind: models.MockCompanion}
	logger.Debug("Mock requested for %s", path)

	s, err := g.load(ctx, src)
	if err != nil {
		return failed(result, err)
	}

	items := g.extractor.Extract(s.module)
	if len(items) == 0 {
		logger.Info("%s has no exported classes or functions, nothing to mock", src)
		result.Outcome = models.NoOp
		result.Err = models.ErrNoExports
		return result
	}
	logger.Debugw("Extracted", "source", src, "items", extractor.ExportedNames(items))

	existing, err := g.readCompanion(ctx, companion)
	if err != nil {
		return failed(result, err)
	}

	var ownPath string
	if existing == nil {
		logger.Debug("NoMockFile: %s", companion)
		if ownPath, err = s.resolver.OwnPath(src); err != nil {
			return failed(result, err)
		}
	} else {
		logger.Debug("MockFileExists: %s", companion)
	}

	plan, err := g.mocks.Plan(items, ownPath, existing)
	if err != nil {
		return failed(result, err)
	}
	return g.commit(result, existing, plan)
}

// SyncTest creates the test companion of path, or adds the mock directives
// an existing one lacks. path may name either the source module or its test
// file.
func (g *CompanionGenerator) SyncTest(ctx context.Context, path string) models.Result {
	return g.syncTest(ctx, path, false)
}

// syncTest with skipEmpty declines to scaffold a test for a module that
// exports nothing and imports no mocked dependencies.
func (g *CompanionGenerator) syncTest(ctx context.Context, path string, skipEmpty bool) models.Result {
	src, companion := g.pair(path, g.cfg.Test.Suffix)
	result := models.Result{Source: src, Companion: companion, Kind: models.TestCompanion}
	logger.Debug("Test requested for %s", path)

	s, err := g.load(ctx, src)
	if err != nil {
		return failed(result, err)
	}

	names := extractor.ExportedNames(g.extractor.Extract(s.module))
	deps := s.resolver.Dependencies(s.module)
	logger.Debug("%s: %d exported name(s), %d mocked dependencies", src, len(names), len(deps))

	existing, err := g.readCompanion(ctx, companion)
	if err != nil {
		return failed(result, err)
	}

	var ownPath string
	if existing == nil {
		if skipEmpty && len(names) == 0 && len(deps) == 0 {
			logger.Debug("%s has nothing to test, not scaffolding %s", src, companion)
			result.Outcome = models.NoOp
			result.Err = models.ErrNoExports
			return result
		}
		logger.Debug("NoTestFile: %s", companion)
		if ownPath, err = s.resolver.OwnPath(src); err != nil {
			return failed(result, err)
		}
	} else {
		logger.Debug("TestFileExists: %s", companion)
	}

	plan, err := g.tests.Plan(ownPath, names, deps, existing)
	if err != nil {
		return failed(result, err)
	}
	return g.commit(result, existing, plan)
}

// Sync runs both synchronizations for one source module.
func (g *CompanionGenerator) Sync(ctx context.Context, path string) []models.Result {
	return []models.Result{g.SyncMock(ctx, path), g.SyncTest(ctx, path)}
}

// SyncExisting re-synchronizes only the companions of path that already
// exist. It never creates files.
func (g *CompanionGenerator) SyncExisting(ctx context.Context, path string) []models.Result {
	var results []models.Result
	if g.exists(models.CompanionPath(path, g.cfg.Mock.Suffix)) {
		results = append(results, g.SyncMock(ctx, path))
	}
	if g.exists(models.CompanionPath(path, g.cfg.Test.Suffix)) {
		results = append(results, g.SyncTest(ctx, path))
	}
	return results
}

// SyncAll synchronizes the companions of every source module under the
// domain root of projectRoot. With existingOnly set, only companions that
// already exist are touched; otherwise missing ones are created, except test
// scaffolds for modules with nothing to test. It stops early only when ctx is
// done.
func (g *CompanionGenerator) SyncAll(ctx context.Context, projectRoot string, existingOnly bool) ([]models.Result, error) {
	modules, err := g.Walker.Walk(projectRoot)
	if err != nil {
		return nil, err
	}
	logger.Infow("Synchronizing modules", "count", len(modules), "existingOnly", existingOnly)

	var results []models.Result
	for _, m := range modules {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if m.HasMock || !existingOnly {
			results = append(results, g.SyncMock(ctx, m.Path))
		}
		if m.HasTest || !existingOnly {
			results = append(results, g.syncTest(ctx, m.Path, true))
		}
	}
	return results, nil
}

// pair maps path to its (source, companion) pair for suffix.
func (g *CompanionGenerator) pair(path, suffix string) (string, string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if src, ok := models.SourcePath(path, suffix); ok {
		return src, path
	}
	return path, models.CompanionPath(path, suffix)
}

func (g *CompanionGenerator) load(ctx context.Context, path string) (*source, error) {
	if !models.IsSourceModule(path, g.cfg.Domain.Extensions) {
		return nil, errors.WithHintf(
			errors.Wrapf(models.ErrUnsupportedFile, "%s", path),
			"expected a %v module that is not a test, spec, mock or declaration file", g.cfg.Domain.Extensions,
		)
	}

	root, ok := config.FindProjectRoot(g.fs, filepath.Dir(path), g.cfg.Domain.Root)
	if !ok {
		return nil, errors.WithHintf(
			errors.Wrapf(models.ErrOwnPathUndeterminable, "no %s directory above %s", g.cfg.Domain.Root, path),
			"set domain.root in %s.%s", config.FileName, config.FileType,
		)
	}

	content, err := afero.ReadFile(g.fs, path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to read %s", path), models.ErrSourceUnreadable)
	}

	module, err := g.parser.Parse(ctx, path, content)
	if err != nil {
		return nil, errors.Mark(err, models.ErrSourceUnreadable)
	}
	if module.HasErrors {
		logger.Warn("%s has syntax errors; unparseable members are skipped", path)
	}

	return &source{
		module:   module,
		resolver: resolver.NewResolver(g.fs, root, g.cfg.Domain, g.cfg.Mock.Suffix),
	}, nil
}

// readCompanion returns nil when the companion does not exist yet.
func (g *CompanionGenerator) readCompanion(ctx context.Context, path string) (*ast.Module, error) {
	content, err := afero.ReadFile(g.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Mark(errors.Wrapf(err, "failed to read %s", path), models.ErrCompanionUnreadable)
	}
	module, err := g.parser.Parse(ctx, path, content)
	if err != nil {
		return nil, errors.Mark(err, models.ErrCompanionUnreadable)
	}
	return module, nil
}

func (g *CompanionGenerator) commit(result models.Result, existing *ast.Module, plan *synchronizer.Plan) models.Result {
	if plan.Empty() {
		result.Outcome = models.NoOp
		logger.Info("%s is up to date", result.Companion)
		return result
	}

	content := plan.Content
	if !plan.Create {
		var err error
		if content, err = synchronizer.Apply(existing.Source, plan.Edits); err != nil {
			return failed(result, err)
		}
	}

	if err := g.write(result.Companion, content); err != nil {
		return failed(result, err)
	}

	result.Changed = plan.Changed
	result.Outcome = models.Updated
	if plan.Create {
		result.Outcome = models.Created
	}
	logger.Infow("Synchronized", "companion", result.Companion, "outcome", result.Outcome.String(), "added", result.Changed)
	return result
}

// write replaces path in one rename so a failed write never leaves a
// partially updated companion behind.
func (g *CompanionGenerator) write(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(g.fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		g.fs.Remove(tmpName)
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := tmp.Close(); err != nil {
		g.fs.Remove(tmpName)
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := g.fs.Chmod(tmpName, 0o644); err != nil {
		logger.Debug("Could not chmod %s: %v", tmpName, err)
	}
	if err := g.fs.Rename(tmpName, path); err != nil {
		g.fs.Remove(tmpName)
		return errors.Wrapf(err, "failed to replace %s", path)
	}
	return nil
}

func (g *CompanionGenerator) exists(path string) bool {
	ok, _ := afero.Exists(g.fs, path)
	return ok
}

func failed(result models.Result, err error) models.Result {
	result.Outcome = models.Failed
	result.Err = err
	logger.Error("%s: %v", result.Companion, err)
	return result
}
