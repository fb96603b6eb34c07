package synchronizer

import (
	"bytes"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tristendillon/tsmock/core/ast"
	"github.com/tristendillon/tsmock/core/codegen"
	"github.com/tristendillon/tsmock/core/logger"
	"github.com/tristendillon/tsmock/core/models"
)

type MockSynchronizer struct {
	gen *codegen.MockGenerator
}

func NewMockSynchronizer(gen *codegen.MockGenerator) *MockSynchronizer {
	return &MockSynchronizer{gen: gen}
}

// Plan computes the content of a new mock file when existing is nil, or the
// additive edits that bring existing up to date with items.
func (s *MockSynchronizer) Plan(items []models.ExportedItem, ownPath string, existing *ast.Module) (*Plan, error) {
	if existing == nil {
		content, err := s.gen.RenderFile(items, ownPath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to render mock file")
		}
		return &Plan{Create: true, Content: []byte(content), Changed: len(items)}, nil
	}
	if existing.HasErrors {
		return nil, errors.WithHint(
			errors.Wrapf(models.ErrMalformedCompanion, "%s", existing.Path),
			"fix the syntax errors in the mock file and run again",
		)
	}

	plan := &Plan{}
	var appended []string

	for _, item := range items {
		mockName := codegen.MockName(item.ItemName())
		node, found := existing.Lookup(mockName)

		switch it := item.(type) {
		case *models.ClassItem:
			if !found {
				block, err := s.gen.RenderItem(it)
				if err != nil {
					return nil, errors.Wrapf(err, "failed to render mock for %s", it.Name)
				}
				logger.Debug("Appending mock class %s", mockName)
				appended = append(appended, block)
				continue
			}
			if node.Kind() != ast.Class {
				logger.Warn("%s in %s is a %s, not a class; leaving it alone", mockName, existing.Path, node.Kind())
				continue
			}
			edit, err := s.missingMembers(it, node, existing.Source)
			if err != nil {
				return nil, err
			}
			if edit != nil {
				plan.Edits = append(plan.Edits, *edit)
				plan.Changed++
			}

		case *models.FunctionItem:
			if found {
				continue
			}
			block, err := s.gen.RenderItem(it)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to render mock for %s", it.Name)
			}
			logger.Debug("Appending mock function %s", mockName)
			appended = append(appended, block)
		}
	}

	if len(appended) > 0 {
		src := existing.Source
		plan.Edits = append(plan.Edits, Edit{
			Offset: len(src),
			Text:   appendSeparator(src) + strings.Join(appended, "\n\n") + "\n",
		})
		plan.Changed += len(appended)
	}
	return plan, nil
}

// missingMembers returns the splice adding stand-ins for members of item that
// mock does not declare yet, or nil when nothing is missing.
func (s *MockSynchronizer) missingMembers(item *models.ClassItem, mock ast.Node, src []byte) (*Edit, error) {
	declared := make(map[string]bool, len(mock.Children()))
	for _, member := range mock.Children() {
		declared[member.Name()] = true
	}

	var props []models.Property
	for _, p := range item.Properties {
		if !declared[p.Name] {
			props = append(props, p)
		}
	}
	var methods []string
	for _, m := range item.Methods {
		if !declared[m] {
			methods = append(methods, m)
		}
	}
	if len(props) == 0 && len(methods) == 0 {
		return nil, nil
	}

	brace := mock.BodyEnd()
	if brace < 0 || brace > len(src) {
		return nil, errors.Wrapf(models.ErrMalformedCompanion, "class %s has no body", mock.Name())
	}
	members, err := s.gen.RenderMembers(item, props, methods)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to render members for %s", item.Name)
	}
	logger.Debug("Adding %d member(s) to %s", len(props)+len(methods), mock.Name())

	text := "\n" + members + "\n"
	lineStart := bytes.LastIndexByte(src[:brace], '\n') + 1
	if len(bytes.TrimSpace(src[lineStart:brace])) == 0 {
		// empty body: no blank line after the opening brace
		if bytes.HasSuffix(bytes.TrimRight(src[:lineStart], " \t\r\n"), []byte("{")) {
			text = members + "\n"
		}
		return &Edit{Offset: lineStart, Text: text}, nil
	}
	return &Edit{Offset: brace, Text: text}, nil
}

// appendSeparator leaves exactly one blank line between src and appended code.
func appendSeparator(src []byte) string {
	switch {
	case len(bytes.TrimSpace(src)) == 0:
		return ""
	case bytes.HasSuffix(src, []byte("\n\n")):
		return ""
	case bytes.HasSuffix(src, []byte("\n")):
		return "\n"
	default:
		return "\n\n"
	}
}
