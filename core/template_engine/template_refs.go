package template_engine

type mockTemplates struct {
	HEADER   TemplateRef
	CLASS    TemplateRef
	OFFERING TemplateRef
	FUNCTION TemplateRef
	MEMBERS  TemplateRef
}

type testTemplates struct {
	SPEC       TemplateRef
	DIRECTIVES TemplateRef
}

type componentTemplates struct {
	Ref TemplateRef
}

var TEMPLATES = struct {
	MOCK      mockTemplates
	TEST      testTemplates
	COMPONENT componentTemplates
}{
	MOCK: mockTemplates{
		HEADER:   TemplateRef{Path: "mock/header.ts.tmpl"},
		CLASS:    TemplateRef{Path: "mock/class.ts.tmpl"},
		OFFERING: TemplateRef{Path: "mock/offering.ts.tmpl"},
		FUNCTION: TemplateRef{Path: "mock/function.ts.tmpl"},
		MEMBERS:  TemplateRef{Path: "mock/members.ts.tmpl"},
	},
	TEST: testTemplates{
		SPEC:       TemplateRef{Path: "test/spec.ts.tmpl"},
		DIRECTIVES: TemplateRef{Path: "test/directives.ts.tmpl"},
	},
	COMPONENT: componentTemplates{
		Ref: TemplateRef{Path: "component", IsDir: true},
	},
}
