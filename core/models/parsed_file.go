package models

import "strings"

type ItemKind int

const (
	FunctionKind ItemKind = iota
	ClassKind
)

// ExportedItem is either a *FunctionItem or a *ClassItem.
type ExportedItem interface {
	ItemName() string
	Kind() ItemKind
}

type FunctionItem struct {
	Name string
}

func (f *FunctionItem) ItemName() string { return f.Name }
func (f *FunctionItem) Kind() ItemKind   { return FunctionKind }

type Property struct {
	Name               string
	TypeText           string
	IsObservableStream bool
}

type Param struct {
	Name     string
	TypeText string
	Optional bool
}

type ClassItem struct {
	Name              string
	ParentClassName   string
	Methods           []string
	Properties        []Property
	ConstructorParams []Param
}

func (c *ClassItem) ItemName() string { return c.Name }
func (c *ClassItem) Kind() ItemKind   { return ClassKind }

// ConstructorSignature renders the parameter list as "a: string, b?: number".
func (c *ClassItem) ConstructorSignature() string {
	parts := make([]string, 0, len(c.ConstructorParams))
	for _, p := range c.ConstructorParams {
		typeText := p.TypeText
		if typeText == "" {
			typeText = "any"
		}
		name := p.Name
		if p.Optional {
			name += "?"
		}
		parts = append(parts, name+": "+typeText)
	}
	return strings.Join(parts, ", ")
}

func (c *ClassItem) ConstructorArgs() string {
	names := make([]string, 0, len(c.ConstructorParams))
	for _, p := range c.ConstructorParams {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

// MemberNames returns properties then methods, in extraction order.
func (c *ClassItem) MemberNames() []string {
	names := make([]string, 0, len(c.Properties)+len(c.Methods))
	for _, p := range c.Properties {
		names = append(names, p.Name)
	}
	return append(names, c.Methods...)
}
