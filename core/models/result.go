package models

import "fmt"

type CompanionKind int

const (
	MockCompanion CompanionKind = iota
	TestCompanion
)

func (k CompanionKind) String() string {
	switch k {
	case MockCompanion:
		return "mock"
	case TestCompanion:
		return "test"
	default:
		return "unknown"
	}
}

type Outcome int

const (
	Created Outcome = iota
	Updated
	NoOp
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case NoOp:
		return "no-op"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of synchronizing one companion file. Changed counts
// the items (mock) or directives (test) that were added.
type Result struct {
	Source    string
	Companion string
	Kind      CompanionKind
	Outcome   Outcome
	Changed   int
	Err       error
}

func (r Result) String() string {
	switch r.Outcome {
	case Updated:
		return fmt.Sprintf("%s %s: updated(%d)", r.Kind, r.Companion, r.Changed)
	case Failed:
		return fmt.Sprintf("%s %s: failed: %v", r.Kind, r.Companion, r.Err)
	default:
		return fmt.Sprintf("%s %s: %s", r.Kind, r.Companion, r.Outcome)
	}
}
