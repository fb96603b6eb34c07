package codegen

import (
	"github.com/tristendillon/tsmock/core/config"
	"github.com/tristendillon/tsmock/core/models"
	"github.com/tristendillon/tsmock/core/template_engine"
)

type TestGenerator struct {
	engine *template_engine.TemplateEngine
	cfg    config.Test
}

func NewTestGenerator(engine *template_engine.TemplateEngine, cfg config.Test) *TestGenerator {
	return &TestGenerator{engine: engine, cfg: cfg}
}

type specData struct {
	OwnPath      string
	Names        []string
	Directives   string
	Dependencies []models.DependencyInfo
}

type directivesData struct {
	Directive string
	Paths     []string
}

// DirectivePaths returns the distinct mock paths of deps in first-seen order.
func DirectivePaths(deps []models.DependencyInfo) []string {
	seen := make(map[string]bool, len(deps))
	paths := make([]string, 0, len(deps))
	for _, dep := range deps {
		if seen[dep.MockImportPath] {
			continue
		}
		seen[dep.MockImportPath] = true
		paths = append(paths, dep.MockImportPath)
	}
	return paths
}

// RenderFile renders a new test file for a module exporting names.
func (g *TestGenerator) RenderFile(ownPath string, names []string, deps []models.DependencyInfo) (string, error) {
	directives, err := g.RenderDirectives(DirectivePaths(deps))
	if err != nil {
		return "", err
	}
	out, err := g.engine.Render(template_engine.TEMPLATES.TEST.SPEC, specData{
		OwnPath:      ownPath,
		Names:        names,
		Directives:   directives,
		Dependencies: deps,
	})
	if err != nil {
		return "", err
	}
	return out + "\n", nil
}

// RenderDirectives renders one activation line per path, each ending in a
// newline except the last.
func (g *TestGenerator) RenderDirectives(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", nil
	}
	return g.engine.Render(template_engine.TEMPLATES.TEST.DIRECTIVES, directivesData{
		Directive: g.cfg.Directive,
		Paths:     paths,
	})
}

func (g *TestGenerator) Directive() string {
	return g.cfg.Directive
}
