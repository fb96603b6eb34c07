package ast

type Kind int

const (
	Unknown Kind = iota
	Import
	ImportSpecifier
	ExportList
	ExportSpecifier
	Class
	Function
	Variable
	TypeAlias
	Interface
	Enum
	Field
	Method
	Getter
	Setter
	Constructor
	Parameter
	Call
)

var kindNames = map[Kind]string{
	Unknown:         "unknown",
	Import:          "import",
	ImportSpecifier: "import-specifier",
	ExportList:      "export-list",
	ExportSpecifier: "export-specifier",
	Class:           "class",
	Function:        "function",
	Variable:        "variable",
	TypeAlias:       "type-alias",
	Interface:       "interface",
	Enum:            "enum",
	Field:           "field",
	Method:          "method",
	Getter:          "getter",
	Setter:          "setter",
	Constructor:     "constructor",
	Parameter:       "parameter",
	Call:            "call",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[Unknown]
}

type Modifiers uint16

const (
	Exported Modifiers = 1 << iota
	Default
	Static
	Private
	Protected
	Readonly
	TypeOnly
	Abstract
	Ambient
	FunctionValue
	Optional
	Namespace
)

// Has reports whether every flag in f is set.
func (m Modifiers) Has(f Modifiers) bool { return m&f == f }

// Any reports whether at least one flag in f is set.
func (m Modifiers) Any(f Modifiers) bool { return m&f != 0 }

// Span is a half-open byte range into the module source.
type Span struct {
	Start int
	End   int
}

// Node is a read-only view of one declaration, member, parameter or
// import/export specifier.
//
// Name is the declared identifier (for calls, the callee text). Source is the
// module specifier of an import or re-export, or the first string argument of
// a call. TypeText is the annotation of a field, parameter or variable, or the
// return type of a function, method or getter. Children holds class members,
// parameters, or specifiers depending on Kind.
type Node interface {
	Kind() Kind
	Name() string
	Alias() string
	Source() string
	Modifiers() Modifiers
	TypeText() string
	BaseClass() string
	Children() []Node
	Span() Span
	// BodyEnd is the offset of a class body's closing brace, or -1.
	BodyEnd() int
}

type decl struct {
	kind      Kind
	name      string
	alias     string
	source    string
	mods      Modifiers
	typeText  string
	baseClass string
	children  []Node
	span      Span
	bodyEnd   int
}

func (d *decl) Kind() Kind           { return d.kind }
func (d *decl) Name() string         { return d.name }
func (d *decl) Alias() string        { return d.alias }
func (d *decl) Source() string       { return d.source }
func (d *decl) Modifiers() Modifiers { return d.mods }
func (d *decl) TypeText() string     { return d.typeText }
func (d *decl) BaseClass() string    { return d.baseClass }
func (d *decl) Children() []Node     { return d.children }
func (d *decl) Span() Span           { return d.span }
func (d *decl) BodyEnd() int         { return d.bodyEnd }

// Module is the parsed top level of one file.
type Module struct {
	Path      string
	Source    []byte
	Decls     []Node
	HasErrors bool

	index map[string]Node
}

var indexedKinds = map[Kind]bool{
	Class:     true,
	Function:  true,
	Variable:  true,
	TypeAlias: true,
	Interface: true,
	Enum:      true,
}

func (m *Module) buildIndex() {
	m.index = make(map[string]Node, len(m.Decls))
	for _, d := range m.Decls {
		if !indexedKinds[d.Kind()] || d.Name() == "" {
			continue
		}
		if _, seen := m.index[d.Name()]; !seen {
			m.index[d.Name()] = d
		}
	}
}

// Lookup returns the first top-level declaration named name.
func (m *Module) Lookup(name string) (Node, bool) {
	if m.index == nil {
		m.buildIndex()
	}
	n, ok := m.index[name]
	return n, ok
}

// Calls returns top-level call statements whose callee is callee.
func (m *Module) Calls(callee string) []Node {
	var calls []Node
	for _, d := range m.Decls {
		if d.Kind() == Call && d.Name() == callee {
			calls = append(calls, d)
		}
	}
	return calls
}

// Imports returns top-level import declarations in source order.
func (m *Module) Imports() []Node {
	var imports []Node
	for _, d := range m.Decls {
		if d.Kind() == Import {
			imports = append(imports, d)
		}
	}
	return imports
}
