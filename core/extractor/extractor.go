package extractor

import (
	"strings"

	"github.com/tristendillon/tsmock/core/ast"
	"github.com/tristendillon/tsmock/core/logger"
	"github.com/tristendillon/tsmock/core/models"
)

const defaultType = "any"

type Extractor struct {
	offeringBase string
}

func NewExtractor(offeringBase string) *Extractor {
	return &Extractor{offeringBase: offeringBase}
}

// Extract returns the exported classes and functions of m in source order.
// Items reachable through several export forms are reported once.
func (e *Extractor) Extract(m *ast.Module) []models.ExportedItem {
	var items []models.ExportedItem
	seen := make(map[string]bool)

	add := func(d ast.Node) {
		item := e.classify(d)
		if item == nil || seen[item.ItemName()] {
			return
		}
		seen[item.ItemName()] = true
		items = append(items, item)
	}

	for _, d := range m.Decls {
		switch d.Kind() {
		case ast.TypeAlias, ast.Interface, ast.Enum:
			continue
		case ast.ExportList:
			if d.Source() != "" || d.Modifiers().Has(ast.TypeOnly) {
				continue
			}
			for _, spec := range d.Children() {
				if spec.Modifiers().Has(ast.TypeOnly) {
					continue
				}
				target, ok := m.Lookup(spec.Name())
				if !ok {
					logger.Debug("Export %s in %s has no local declaration", spec.Name(), m.Path)
					continue
				}
				add(target)
			}
		default:
			if d.Modifiers().Has(ast.Exported) && !d.Modifiers().Has(ast.TypeOnly) {
				add(d)
			}
		}
	}
	return items
}

func (e *Extractor) classify(d ast.Node) models.ExportedItem {
	if d.Name() == "" {
		return nil
	}
	switch d.Kind() {
	case ast.Class:
		return e.class(d)
	case ast.Function:
		return &models.FunctionItem{Name: d.Name()}
	case ast.Variable:
		if d.Modifiers().Has(ast.FunctionValue) {
			return &models.FunctionItem{Name: d.Name()}
		}
	}
	return nil
}

func (e *Extractor) class(d ast.Node) *models.ClassItem {
	item := &models.ClassItem{Name: d.Name(), ParentClassName: d.BaseClass()}
	offering := item.ParentClassName != "" && item.ParentClassName == e.offeringBase
	members := make(map[string]bool)

	for _, member := range d.Children() {
		if member.Kind() == ast.Constructor {
			item.ConstructorParams = params(member)
			continue
		}
		if offering || member.Name() == "" || members[member.Name()] {
			continue
		}
		if member.Modifiers().Any(ast.Static | ast.Private | ast.Protected) {
			continue
		}

		switch member.Kind() {
		case ast.Field, ast.Getter:
			item.Properties = append(item.Properties, property(member))
		case ast.Method:
			item.Methods = append(item.Methods, member.Name())
		default:
			continue
		}
		members[member.Name()] = true
	}
	return item
}

func property(n ast.Node) models.Property {
	typeText := n.TypeText()
	if typeText == "" {
		typeText = defaultType
	}
	return models.Property{
		Name:               n.Name(),
		TypeText:           typeText,
		IsObservableStream: IsObservable(typeText),
	}
}

func params(ctor ast.Node) []models.Param {
	out := make([]models.Param, 0, len(ctor.Children()))
	for _, p := range ctor.Children() {
		typeText := p.TypeText()
		if typeText == "" {
			typeText = defaultType
		}
		out = append(out, models.Param{
			Name:     p.Name(),
			TypeText: typeText,
			Optional: p.Modifiers().Has(ast.Optional),
		})
	}
	return out
}

// IsObservable reports whether typeText names an Observable, bare or qualified.
func IsObservable(typeText string) bool {
	return strings.HasPrefix(typeText, "Observable<") || strings.Contains(typeText, ".Observable<")
}

func ExportedNames(items []models.ExportedItem) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.ItemName())
	}
	return names
}
