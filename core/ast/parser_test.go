package ast

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, path, src string) *Module {
	t.Helper()
	m, err := NewParser().Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)
	return m
}

func TestParseClassMembers(t *testing.T) {
	src := `import { Observable } from 'rxjs'

export class Foo extends Base<string> {
    public readonly name: string
    static instances = 0
    private secret = 1
    #hidden = 2
    stream$: Observable<number>

    constructor(id: string, opts?: Options) {
        super()
    }

    get size(): number { return 1 }
    set size(v: number) {}
    bar(): void {}
    protected helper() {}
    static create(): Foo { return new Foo('x') }
}
`
	m := parse(t, "foo.ts", src)
	require.False(t, m.HasErrors)

	cls, ok := m.Lookup("Foo")
	require.True(t, ok)
	assert.Equal(t, Class, cls.Kind())
	assert.True(t, cls.Modifiers().Has(Exported))
	assert.Equal(t, "Base", cls.BaseClass())
	assert.Equal(t, "}", src[cls.BodyEnd():cls.BodyEnd()+1])
	assert.Equal(t, strings.LastIndex(src, "}"), cls.BodyEnd())

	members := map[string][]Node{}
	for _, c := range cls.Children() {
		members[c.Name()] = append(members[c.Name()], c)
	}

	name := members["name"][0]
	assert.Equal(t, Field, name.Kind())
	assert.Equal(t, "string", name.TypeText())
	assert.True(t, name.Modifiers().Has(Readonly))

	assert.True(t, members["instances"][0].Modifiers().Has(Static))
	assert.True(t, members["secret"][0].Modifiers().Has(Private))
	assert.True(t, members["#hidden"][0].Modifiers().Has(Private))
	assert.Equal(t, "Observable<number>", members["stream$"][0].TypeText())

	ctor := members["constructor"][0]
	assert.Equal(t, Constructor, ctor.Kind())
	require.Len(t, ctor.Children(), 2)
	assert.Equal(t, "id", ctor.Children()[0].Name())
	assert.Equal(t, "string", ctor.Children()[0].TypeText())
	assert.True(t, ctor.Children()[1].Modifiers().Has(Optional))

	require.Len(t, members["size"], 2)
	assert.Equal(t, Getter, members["size"][0].Kind())
	assert.Equal(t, "number", members["size"][0].TypeText())
	assert.Equal(t, Setter, members["size"][1].Kind())

	assert.Equal(t, Method, members["bar"][0].Kind())
	assert.True(t, members["helper"][0].Modifiers().Has(Protected))
	assert.True(t, members["create"][0].Modifiers().Has(Static))
}

func TestParseImports(t *testing.T) {
	src := `import type { A } from '@sdv/domain/a'
import { B, type C, D as E } from "@sdv/domain/b"
import F, * as G from '@sdv/domain/f'
import './side-effect'
`
	m := parse(t, "x.ts", src)
	imports := m.Imports()
	require.Len(t, imports, 4)

	assert.True(t, imports[0].Modifiers().Has(TypeOnly))
	assert.Equal(t, "@sdv/domain/a", imports[0].Source())

	b := imports[1]
	assert.False(t, b.Modifiers().Has(TypeOnly))
	assert.Equal(t, "@sdv/domain/b", b.Source())
	require.Len(t, b.Children(), 3)
	assert.Equal(t, "B", b.Children()[0].Name())
	assert.True(t, b.Children()[1].Modifiers().Has(TypeOnly))
	assert.Equal(t, "D", b.Children()[2].Name())
	assert.Equal(t, "E", b.Children()[2].Alias())

	f := imports[2]
	require.Len(t, f.Children(), 2)
	assert.True(t, f.Children()[0].Modifiers().Has(Default))
	assert.True(t, f.Children()[1].Modifiers().Has(Namespace))
	assert.Equal(t, "G", f.Children()[1].Name())

	assert.Empty(t, imports[3].Children())
	assert.Equal(t, "./side-effect", imports[3].Source())
}

func TestParseExportsAndVariables(t *testing.T) {
	src := `const handler = async (x: number) => x
const value = 42
function local() {}
export const make = function () {}, other = 1
export type Id = string
export interface Shape {}
export { handler, value as renamed }
export type { Shape as S }
export { thing } from './thing'
declare function ambient(): void
`
	m := parse(t, "x.ts", src)

	handler, ok := m.Lookup("handler")
	require.True(t, ok)
	assert.True(t, handler.Modifiers().Has(FunctionValue))
	assert.False(t, handler.Modifiers().Has(Exported))

	value, _ := m.Lookup("value")
	assert.False(t, value.Modifiers().Has(FunctionValue))

	factory, _ := m.Lookup("make")
	assert.True(t, factory.Modifiers().Has(Exported|FunctionValue))
	other, _ := m.Lookup("other")
	assert.True(t, other.Modifiers().Has(Exported))
	assert.False(t, other.Modifiers().Has(FunctionValue))

	id, _ := m.Lookup("Id")
	assert.Equal(t, TypeAlias, id.Kind())
	shape, _ := m.Lookup("Shape")
	assert.Equal(t, Interface, shape.Kind())

	var lists []Node
	for _, d := range m.Decls {
		if d.Kind() == ExportList {
			lists = append(lists, d)
		}
	}
	require.Len(t, lists, 3)
	assert.Equal(t, "handler", lists[0].Children()[0].Name())
	assert.Equal(t, "renamed", lists[0].Children()[1].Alias())
	assert.True(t, lists[1].Modifiers().Has(TypeOnly))
	assert.Equal(t, "./thing", lists[2].Source())

	ambient, ok := m.Lookup("ambient")
	require.True(t, ok)
	assert.True(t, ambient.Modifiers().Has(Ambient))
}

func TestParseCalls(t *testing.T) {
	src := `import { a } from './a'

jest.useExtendedMock('@sdv/domain/a/index.mock')
jest.useExtendedMock("@sdv/domain/b.mock")
describe('a', () => {})
`
	m := parse(t, "a.test.ts", src)
	calls := m.Calls("jest.useExtendedMock")
	require.Len(t, calls, 2)
	assert.Equal(t, "@sdv/domain/a/index.mock", calls[0].Source())
	assert.Equal(t, "@sdv/domain/b.mock", calls[1].Source())
	assert.Len(t, m.Calls("describe"), 1)
}

func TestParseTSX(t *testing.T) {
	src := `export const View = () => <div className="x" />
`
	m := parse(t, "view.tsx", src)
	assert.False(t, m.HasErrors)
	view, ok := m.Lookup("View")
	require.True(t, ok)
	assert.True(t, view.Modifiers().Has(Exported|FunctionValue))
}

func TestParseReportsSyntaxErrors(t *testing.T) {
	m := parse(t, "broken.mock.ts", "class FooMock {\n    readonly bar =\n")
	assert.True(t, m.HasErrors)
}
