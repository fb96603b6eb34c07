package template_engine

import (
	"bytes"
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/tristendillon/tsmock/core/logger"
	"github.com/tristendillon/tsmock/core/shared"
)

const templateRoot = "templates"

//go:embed all:templates
var TemplateFS embed.FS

type TemplateRef struct {
	Path  string
	IsDir bool
}

func (tr TemplateRef) IsFile() bool {
	return !tr.IsDir
}

func (tr TemplateRef) IsDirectory() bool {
	return tr.IsDir
}

type TemplateEngine struct {
	fs      afero.Fs
	funcMap template.FuncMap

	mu     sync.Mutex
	parsed map[string]*template.Template
}

func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"join":  strings.Join,
		"kebab": shared.ToKebabCase,
	}
}

// NewTemplateEngine renders embedded templates and writes output through fs.
func NewTemplateEngine(fs afero.Fs) *TemplateEngine {
	return &TemplateEngine{
		fs:      fs,
		funcMap: defaultFuncMap(),
		parsed:  make(map[string]*template.Template),
	}
}

// AddFuncs must be called before the first Render.
func (te *TemplateEngine) AddFuncs(funcs template.FuncMap) {
	for name, fn := range funcs {
		te.funcMap[name] = fn
	}
}

func (te *TemplateEngine) load(templatePath string) (*template.Template, error) {
	te.mu.Lock()
	defer te.mu.Unlock()

	if tmpl, ok := te.parsed[templatePath]; ok {
		return tmpl, nil
	}

	content, err := TemplateFS.ReadFile(templatePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read template file %s", templatePath)
	}

	tmpl, err := template.New(path.Base(templatePath)).Funcs(te.funcMap).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse template %s", templatePath)
	}
	te.parsed[templatePath] = tmpl
	return tmpl, nil
}

// Render executes a file template and returns its output without trailing
// newlines.
func (te *TemplateEngine) Render(templateRef TemplateRef, data interface{}) (string, error) {
	if templateRef.IsDirectory() {
		return "", errors.Newf("cannot render directory reference: %s", templateRef.Path)
	}

	templatePath := path.Join(templateRoot, templateRef.Path)
	tmpl, err := te.load(templatePath)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "failed to execute template %s", templateRef.Path)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func (te *TemplateEngine) GenerateFolder(templateRef TemplateRef, outputDir string, data interface{}) error {
	if templateRef.IsFile() {
		return errors.Newf("cannot generate folder from file reference: %s", templateRef.Path)
	}

	templateDir := path.Join(templateRoot, templateRef.Path)
	logger.Debug("Generating folder from template reference: %s", templateDir)

	return fs.WalkDir(TemplateFS, templateDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if p == templateDir {
			return nil
		}

		relPath := strings.TrimPrefix(p, templateDir+"/")
		outputPath := filepath.Join(outputDir, filepath.FromSlash(relPath))

		if d.IsDir() {
			return te.fs.MkdirAll(outputPath, os.ModePerm)
		}

		logger.Debug("Generating file from path: %s", p)
		return te.generateFileFromPath(p, outputPath, data)
	})
}

func (te *TemplateEngine) generateFileFromPath(templatePath, outputPath string, data interface{}) error {
	if err := te.fs.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	if !strings.HasSuffix(templatePath, ".tmpl") {
		content, err := TemplateFS.ReadFile(templatePath)
		if err != nil {
			return errors.Wrapf(err, "failed to read template file %s", templatePath)
		}
		return afero.WriteFile(te.fs, outputPath, content, 0o644)
	}

	tmpl, err := te.load(templatePath)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return errors.Wrapf(err, "failed to execute template %s", templatePath)
	}

	outputPath = strings.TrimSuffix(outputPath, ".tmpl")
	if err := afero.WriteFile(te.fs, outputPath, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "failed to create output file %s", outputPath)
	}
	return nil
}

func (te *TemplateEngine) ListTemplates(templateRef TemplateRef) ([]string, error) {
	if templateRef.IsFile() {
		return []string{templateRef.Path}, nil
	}

	var templates []string
	templateDir := path.Join(templateRoot, templateRef.Path)

	err := fs.WalkDir(TemplateFS, templateDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			templates = append(templates, strings.TrimPrefix(p, templateRoot+"/"))
		}

		return nil
	})

	return templates, err
}

func (te *TemplateEngine) ValidateTemplate(templateRef TemplateRef) error {
	templatePath := path.Join(templateRoot, templateRef.Path)

	info, err := fs.Stat(TemplateFS, templatePath)
	if err != nil {
		return errors.Newf("template not found: %s", templateRef.Path)
	}

	if info.IsDir() != templateRef.IsDirectory() {
		return errors.Newf("template reference type mismatch for %s: expected dir=%t, got dir=%t",
			templateRef.Path, templateRef.IsDirectory(), info.IsDir())
	}

	return nil
}
