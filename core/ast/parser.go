package ast

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Parser turns TypeScript sources into Modules. Safe for concurrent use.
type Parser struct {
	mu  sync.Mutex
	ts  *sitter.Parser
	tsx *sitter.Parser
}

func NewParser() *Parser {
	ts := sitter.NewParser()
	ts.SetLanguage(typescript.GetLanguage())
	tsxParser := sitter.NewParser()
	tsxParser.SetLanguage(tsx.GetLanguage())
	return &Parser{ts: ts, tsx: tsxParser}
}

func (p *Parser) Parse(ctx context.Context, path string, src []byte) (*Module, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	parser := p.ts
	if strings.EqualFold(filepath.Ext(path), ".tsx") {
		parser = p.tsx
	}

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	b := &builder{src: src}
	m := &Module{Path: path, Source: src, HasErrors: root.HasError()}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		m.Decls = append(m.Decls, b.topLevel(root.NamedChild(i), 0)...)
	}
	m.buildIndex()
	return m, nil
}

type builder struct {
	src []byte
}

var functionValues = map[string]bool{
	"arrow_function":      true,
	"function":            true,
	"function_expression": true,
	"generator_function":  true,
}

func (b *builder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(b.src)
}

func (b *builder) span(n *sitter.Node) Span {
	return Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func (b *builder) topLevel(n *sitter.Node, mods Modifiers) []Node {
	switch n.Type() {
	case "import_statement":
		return []Node{b.importDecl(n)}
	case "export_statement":
		return b.exportStatement(n)
	case "class_declaration", "class":
		return []Node{b.class(n, mods)}
	case "abstract_class_declaration":
		return []Node{b.class(n, mods|Abstract)}
	case "function_declaration", "generator_function_declaration", "function_signature":
		return []Node{b.function(n, mods)}
	case "lexical_declaration", "variable_declaration":
		return b.variables(n, mods)
	case "type_alias_declaration":
		return []Node{b.named(n, TypeAlias, mods)}
	case "interface_declaration":
		return []Node{b.named(n, Interface, mods)}
	case "enum_declaration":
		return []Node{b.named(n, Enum, mods)}
	case "ambient_declaration":
		var out []Node
		for i := 0; i < int(n.NamedChildCount()); i++ {
			out = append(out, b.topLevel(n.NamedChild(i), mods|Ambient)...)
		}
		return out
	case "expression_statement":
		if call := n.NamedChild(0); call != nil && call.Type() == "call_expression" {
			return []Node{b.call(call)}
		}
	}
	return nil
}

func (b *builder) named(n *sitter.Node, kind Kind, mods Modifiers) *decl {
	return &decl{
		kind:    kind,
		name:    b.text(n.ChildByFieldName("name")),
		mods:    mods,
		span:    b.span(n),
		bodyEnd: -1,
	}
}

func (b *builder) importDecl(n *sitter.Node) *decl {
	d := &decl{
		kind:    Import,
		source:  unquote(b.text(n.ChildByFieldName("source"))),
		span:    b.span(n),
		bodyEnd: -1,
	}
	if hasToken(n, "type") {
		d.mods |= TypeOnly
	}

	clause := firstNamedOfType(n, "import_clause")
	if clause == nil {
		return d
	}
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		c := clause.NamedChild(i)
		switch c.Type() {
		case "identifier":
			d.children = append(d.children, b.specifier(ImportSpecifier, c, b.text(c), "", Default))
		case "namespace_import":
			id := firstNamedOfType(c, "identifier")
			d.children = append(d.children, b.specifier(ImportSpecifier, c, b.text(id), "", Namespace))
		case "named_imports":
			d.children = append(d.children, b.specifiers(ImportSpecifier, c, "import_specifier")...)
		}
	}
	return d
}

func (b *builder) specifier(kind Kind, n *sitter.Node, name, alias string, mods Modifiers) *decl {
	return &decl{kind: kind, name: name, alias: alias, mods: mods, span: b.span(n), bodyEnd: -1}
}

func (b *builder) specifiers(kind Kind, list *sitter.Node, specType string) []Node {
	var out []Node
	for i := 0; i < int(list.NamedChildCount()); i++ {
		s := list.NamedChild(i)
		if s.Type() != specType {
			continue
		}
		var mods Modifiers
		if hasToken(s, "type") {
			mods |= TypeOnly
		}
		name := b.text(s.ChildByFieldName("name"))
		alias := b.text(s.ChildByFieldName("alias"))
		out = append(out, b.specifier(kind, s, name, alias, mods))
	}
	return out
}

func (b *builder) exportStatement(n *sitter.Node) []Node {
	mods := Exported
	if hasToken(n, "default") {
		mods |= Default
	}
	if hasToken(n, "type") {
		mods |= TypeOnly
	}

	if declaration := n.ChildByFieldName("declaration"); declaration != nil {
		return b.topLevel(declaration, mods)
	}
	if value := n.ChildByFieldName("value"); value != nil && value.Type() == "class" {
		if value.ChildByFieldName("name") != nil {
			return []Node{b.class(value, mods)}
		}
		return nil
	}

	clause := firstNamedOfType(n, "export_clause")
	if clause == nil {
		return nil
	}
	return []Node{&decl{
		kind:     ExportList,
		source:   unquote(b.text(n.ChildByFieldName("source"))),
		mods:     mods,
		children: b.specifiers(ExportSpecifier, clause, "export_specifier"),
		span:     b.span(n),
		bodyEnd:  -1,
	}}
}

func (b *builder) class(n *sitter.Node, mods Modifiers) *decl {
	d := b.named(n, Class, mods)
	d.baseClass = b.baseClass(n)

	body := n.ChildByFieldName("body")
	if body == nil {
		return d
	}
	d.bodyEnd = int(body.EndByte())
	for i := int(body.ChildCount()) - 1; i >= 0; i-- {
		c := body.Child(i)
		if c.Type() == "}" && !c.IsMissing() {
			d.bodyEnd = int(c.StartByte())
			break
		}
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		if member := b.member(body.NamedChild(i)); member != nil {
			d.children = append(d.children, member)
		}
	}
	return d
}

func (b *builder) baseClass(n *sitter.Node) string {
	heritage := firstNamedOfType(n, "class_heritage")
	if heritage == nil {
		return ""
	}
	extends := firstNamedOfType(heritage, "extends_clause")
	if extends == nil || extends.NamedChildCount() == 0 {
		return ""
	}
	ref := b.text(extends.NamedChild(0))
	if i := strings.IndexAny(ref, "<("); i >= 0 {
		ref = ref[:i]
	}
	if i := strings.LastIndex(ref, "."); i >= 0 {
		ref = ref[i+1:]
	}
	return strings.TrimSpace(ref)
}

func (b *builder) member(n *sitter.Node) *decl {
	switch n.Type() {
	case "method_definition", "method_signature", "abstract_method_signature":
	case "public_field_definition":
		d := b.memberHead(n, Field)
		d.typeText = b.annotation(n.ChildByFieldName("type"))
		return d
	default:
		return nil
	}

	kind := Method
	switch {
	case hasToken(n, "get"):
		kind = Getter
	case hasToken(n, "set"):
		kind = Setter
	}
	d := b.memberHead(n, kind)
	if d.name == "constructor" {
		d.kind = Constructor
	}
	d.children = b.params(n.ChildByFieldName("parameters"))
	d.typeText = b.annotation(n.ChildByFieldName("return_type"))
	return d
}

// memberHead reads the name and modifiers shared by fields and methods.
func (b *builder) memberHead(n *sitter.Node, kind Kind) *decl {
	d := &decl{kind: kind, span: b.span(n), bodyEnd: -1}
	if name := n.ChildByFieldName("name"); name != nil {
		switch name.Type() {
		case "computed_property_name":
		case "private_property_identifier":
			d.name = b.text(name)
			d.mods |= Private
		default:
			d.name = unquote(b.text(name))
		}
	}
	d.mods |= b.accessibility(n)
	if hasToken(n, "static") {
		d.mods |= Static
	}
	if hasToken(n, "readonly") {
		d.mods |= Readonly
	}
	if hasToken(n, "abstract") {
		d.mods |= Abstract
	}
	if hasToken(n, "?") {
		d.mods |= Optional
	}
	return d
}

func (b *builder) accessibility(n *sitter.Node) Modifiers {
	m := firstNamedOfType(n, "accessibility_modifier")
	switch b.text(m) {
	case "private":
		return Private
	case "protected":
		return Protected
	}
	return 0
}

func (b *builder) params(n *sitter.Node) []Node {
	if n == nil {
		return nil
	}
	var out []Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		p := n.NamedChild(i)
		if p.Type() != "required_parameter" && p.Type() != "optional_parameter" {
			continue
		}
		name := b.text(p.ChildByFieldName("pattern"))
		if name == "" || name == "this" {
			continue
		}
		d := &decl{
			kind:     Parameter,
			name:     name,
			mods:     b.accessibility(p),
			typeText: b.annotation(p.ChildByFieldName("type")),
			span:     b.span(p),
			bodyEnd:  -1,
		}
		if p.Type() == "optional_parameter" {
			d.mods |= Optional
		}
		out = append(out, d)
	}
	return out
}

func (b *builder) annotation(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	if n.Type() == "type_annotation" && n.NamedChildCount() > 0 {
		return b.text(n.NamedChild(0))
	}
	return strings.TrimSpace(strings.TrimPrefix(b.text(n), ":"))
}

func (b *builder) function(n *sitter.Node, mods Modifiers) *decl {
	d := b.named(n, Function, mods)
	d.children = b.params(n.ChildByFieldName("parameters"))
	d.typeText = b.annotation(n.ChildByFieldName("return_type"))
	return d
}

func (b *builder) variables(n *sitter.Node, mods Modifiers) []Node {
	var out []Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		v := n.NamedChild(i)
		if v.Type() != "variable_declarator" {
			continue
		}
		name := v.ChildByFieldName("name")
		if name == nil || name.Type() != "identifier" {
			continue
		}
		d := &decl{
			kind:     Variable,
			name:     b.text(name),
			mods:     mods,
			typeText: b.annotation(v.ChildByFieldName("type")),
			span:     b.span(v),
			bodyEnd:  -1,
		}
		if value := v.ChildByFieldName("value"); value != nil && functionValues[value.Type()] {
			d.mods |= FunctionValue
		}
		out = append(out, d)
	}
	return out
}

func (b *builder) call(n *sitter.Node) *decl {
	d := &decl{
		kind:    Call,
		name:    b.text(n.ChildByFieldName("function")),
		span:    b.span(n),
		bodyEnd: -1,
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			arg := args.NamedChild(i)
			if arg.Type() == "string" || arg.Type() == "template_string" {
				d.source = unquote(b.text(arg))
				break
			}
		}
	}
	return d
}

func hasToken(n *sitter.Node, token string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if !c.IsNamed() && c.Type() == token {
			return true
		}
	}
	return false
}

func firstNamedOfType(n *sitter.Node, typ string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

func unquote(s string) string {
	if len(s) >= 2 && strings.ContainsRune("'\"`", rune(s[0])) && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
