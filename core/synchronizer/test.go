package synchronizer

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/tristendillon/tsmock/core/ast"
	"github.com/tristendillon/tsmock/core/codegen"
	"github.com/tristendillon/tsmock/core/logger"
	"github.com/tristendillon/tsmock/core/models"
)

type TestSynchronizer struct {
	gen *codegen.TestGenerator
}

func NewTestSynchronizer(gen *codegen.TestGenerator) *TestSynchronizer {
	return &TestSynchronizer{gen: gen}
}

// Plan computes a new test file when existing is nil. Otherwise it adds the
// activation directives existing lacks; imports are never added on update.
func (s *TestSynchronizer) Plan(ownPath string, names []string, deps []models.DependencyInfo, existing *ast.Module) (*Plan, error) {
	if existing == nil {
		content, err := s.gen.RenderFile(ownPath, names, deps)
		if err != nil {
			return nil, errors.Wrap(err, "failed to render test file")
		}
		return &Plan{Create: true, Content: []byte(content), Changed: len(codegen.DirectivePaths(deps))}, nil
	}
	if existing.HasErrors {
		return nil, errors.WithHint(
			errors.Wrapf(models.ErrMalformedCompanion, "%s", existing.Path),
			"fix the syntax errors in the test file and run again",
		)
	}

	directives := existing.Calls(s.gen.Directive())
	present := make(map[string]bool, len(directives))
	for _, d := range directives {
		present[d.Source()] = true
	}

	var missing []string
	for _, p := range codegen.DirectivePaths(deps) {
		if !present[p] {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return &Plan{}, nil
	}

	text, err := s.gen.RenderDirectives(missing)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render directives")
	}
	text += "\n"
	logger.Debug("Adding %d directive(s) to %s", len(missing), existing.Path)

	edit := directiveEdit(existing, directives, text)
	return &Plan{Edits: []Edit{edit}, Changed: len(missing)}, nil
}

// directiveEdit places text after the last directive, else after the first
// import block, else at the start of the file.
func directiveEdit(m *ast.Module, directives []ast.Node, text string) Edit {
	src := m.Source

	if len(directives) > 0 {
		end := directives[len(directives)-1].Span().End
		if nl := bytes.IndexByte(src[end:], '\n'); nl >= 0 {
			return Edit{Offset: end + nl + 1, Text: text}
		}
		return Edit{Offset: len(src), Text: "\n" + text}
	}

	if imports := m.Imports(); len(imports) > 0 {
		end := importBlockEnd(src, imports)
		if nl := bytes.IndexByte(src[end:], '\n'); nl >= 0 {
			return Edit{Offset: end + nl + 1, Text: "\n" + text}
		}
		return Edit{Offset: len(src), Text: "\n\n" + text}
	}

	if len(src) > 0 {
		text += "\n"
	}
	return Edit{Offset: 0, Text: text}
}

// importBlockEnd returns the end offset of the run of imports that starts
// with the first one and is not interrupted by a blank line or other code.
func importBlockEnd(src []byte, imports []ast.Node) int {
	end := imports[0].Span().End
	for _, imp := range imports[1:] {
		gap := src[end:imp.Span().Start]
		if len(bytes.TrimSpace(gap)) != 0 || bytes.Count(gap, []byte("\n")) > 1 {
			break
		}
		end = imp.Span().End
	}
	return end
}
