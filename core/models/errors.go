package models

import "github.com/cockroachdb/errors"

var (
	ErrNoExports              = errors.New("no exported classes or functions")
	ErrUnresolvableDependency = errors.New("unresolvable dependency path")
	ErrCompanionUnreadable    = errors.New("companion file unreadable")
	ErrMalformedCompanion     = errors.New("malformed existing companion file")
	ErrOwnPathUndeterminable  = errors.New("module lies outside the domain root")
	ErrSourceUnreadable       = errors.New("source module unreadable")
	ErrUnsupportedFile        = errors.New("unsupported file")
	ErrConfig                 = errors.New("invalid configuration")
)
