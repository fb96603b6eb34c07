package codegen

import (
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"
	"github.com/tristendillon/tsmock/core/config"
	"github.com/tristendillon/tsmock/core/models"
	"github.com/tristendillon/tsmock/core/template_engine"
)

const mockNameSuffix = "Mock"

// MockName is the binding a mock of name is declared under.
func MockName(name string) string {
	return name + mockNameSuffix
}

// StreamValue returns the type argument of a generic stream type, or "any".
func StreamValue(typeText string) string {
	start := strings.Index(typeText, "<")
	end := strings.LastIndex(typeText, ">")
	if start == -1 || end <= start {
		return "any"
	}
	return typeText[start+1 : end]
}

type MockGenerator struct {
	engine *template_engine.TemplateEngine
	cfg    config.Mock
}

func NewMockGenerator(engine *template_engine.TemplateEngine, cfg config.Mock) *MockGenerator {
	engine.AddFuncs(template.FuncMap{"streamValue": StreamValue})
	return &MockGenerator{engine: engine, cfg: cfg}
}

func (g *MockGenerator) IsOffering(c *models.ClassItem) bool {
	return c.ParentClassName != "" && c.ParentClassName == g.cfg.OfferingBase
}

type headerData struct {
	OwnPath             string
	ClassNames          []string
	FunctionNames       []string
	NeedsStream         bool
	StreamType          string
	StreamImport        string
	Factory             string
	FactoryImport       string
	HasOffering         bool
	OfferingBase        string
	OfferingMockImport  string
	OfferingTypesImport string
}

type classData struct {
	Mock         string
	Class        string
	PublicType   string
	Factory      string
	Signature    string
	Args         string
	OfferingBase string
	Members      string
}

type membersData struct {
	Class      string
	MockFn     string
	StreamType string
	Properties []models.Property
	Methods    []string
}

type functionData struct {
	Mock     string
	MockFn   string
	Function string
}

// RenderFile renders a complete mock file for items.
func (g *MockGenerator) RenderFile(items []models.ExportedItem, ownPath string) (string, error) {
	header, err := g.RenderHeader(items, ownPath)
	if err != nil {
		return "", err
	}
	blocks, err := g.RenderItems(items)
	if err != nil {
		return "", err
	}
	return header + "\n\n" + strings.Join(blocks, "\n\n") + "\n", nil
}

func (g *MockGenerator) RenderHeader(items []models.ExportedItem, ownPath string) (string, error) {
	data := headerData{
		OwnPath:             ownPath,
		StreamType:          g.cfg.StreamType,
		StreamImport:        g.cfg.StreamImport,
		Factory:             g.cfg.Factory,
		OfferingBase:        g.cfg.OfferingBase,
		OfferingMockImport:  g.cfg.OfferingMockImport,
		OfferingTypesImport: g.cfg.OfferingTypesImport,
	}
	for _, item := range items {
		switch it := item.(type) {
		case *models.ClassItem:
			data.ClassNames = append(data.ClassNames, it.Name)
			if g.IsOffering(it) {
				data.HasOffering = true
				continue
			}
			for _, p := range it.Properties {
				data.NeedsStream = data.NeedsStream || p.IsObservableStream
			}
		case *models.FunctionItem:
			data.FunctionNames = append(data.FunctionNames, it.Name)
		}
	}
	if len(data.ClassNames) > 0 {
		data.FactoryImport = g.cfg.FactoryImport
	}
	return g.engine.Render(template_engine.TEMPLATES.MOCK.HEADER, data)
}

func (g *MockGenerator) RenderItems(items []models.ExportedItem) ([]string, error) {
	blocks := make([]string, 0, len(items))
	for _, item := range items {
		block, err := g.RenderItem(item)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// RenderItem renders the mock block for one item, including its re-export.
func (g *MockGenerator) RenderItem(item models.ExportedItem) (string, error) {
	switch it := item.(type) {
	case *models.FunctionItem:
		return g.engine.Render(template_engine.TEMPLATES.MOCK.FUNCTION, functionData{
			Mock:     MockName(it.Name),
			MockFn:   g.cfg.Function,
			Function: it.Name,
		})
	case *models.ClassItem:
		data := classData{
			Mock:         MockName(it.Name),
			Class:        it.Name,
			PublicType:   g.cfg.PublicType,
			Factory:      g.cfg.Factory,
			Signature:    it.ConstructorSignature(),
			Args:         it.ConstructorArgs(),
			OfferingBase: g.cfg.OfferingBase,
		}
		if g.IsOffering(it) {
			return g.engine.Render(template_engine.TEMPLATES.MOCK.OFFERING, data)
		}
		members, err := g.RenderMembers(it, it.Properties, it.Methods)
		if err != nil {
			return "", err
		}
		data.Members = members
		return g.engine.Render(template_engine.TEMPLATES.MOCK.CLASS, data)
	default:
		return "", errors.Newf("unknown exported item %T", item)
	}
}

// RenderMembers renders stand-ins for the given subset of class's members.
// The result has no trailing newline and is empty when there is nothing to
// render.
func (g *MockGenerator) RenderMembers(class *models.ClassItem, props []models.Property, methods []string) (string, error) {
	if len(props) == 0 && len(methods) == 0 {
		return "", nil
	}
	return g.engine.Render(template_engine.TEMPLATES.MOCK.MEMBERS, membersData{
		Class:      class.Name,
		MockFn:     g.cfg.Function,
		StreamType: g.cfg.StreamType,
		Properties: props,
		Methods:    methods,
	})
}
