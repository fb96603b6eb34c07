package synchronizer

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// Edit inserts Text at byte Offset of the original content.
type Edit struct {
	Offset int
	Text   string
}

// Apply performs every edit against src in one pass. Offsets refer to the
// original src; edits sharing an offset are inserted in listing order.
func Apply(src []byte, edits []Edit) ([]byte, error) {
	type indexed struct {
		Edit
		index int
	}
	ordered := make([]indexed, len(edits))
	for i, e := range edits {
		if e.Offset < 0 || e.Offset > len(src) {
			return nil, errors.Newf("edit %d offset %d out of range [0,%d]", i, e.Offset, len(src))
		}
		ordered[i] = indexed{Edit: e, index: i}
	}
	sort.SliceStable(ordered, func(a, b int) bool {
		if ordered[a].Offset != ordered[b].Offset {
			return ordered[a].Offset > ordered[b].Offset
		}
		return ordered[a].index > ordered[b].index
	})

	size := len(src)
	for _, e := range edits {
		size += len(e.Text)
	}
	out := append(make([]byte, 0, size), src...)
	for _, e := range ordered {
		out = append(out[:e.Offset], append([]byte(e.Text), out[e.Offset:]...)...)
	}
	return out, nil
}

// Plan is the outcome of synchronizing one companion file: either full
// Content for a new file or Edits against the existing one. Changed counts
// the items or directives added.
type Plan struct {
	Create  bool
	Content []byte
	Edits   []Edit
	Changed int
}

func (p *Plan) Empty() bool {
	return !p.Create && len(p.Edits) == 0
}
