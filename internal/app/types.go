package app

import (
	"errors"

	"github.com/ben-ranford/phpext/internal/config"
)

const (
	KindUsage   = "UsageError"
	KindConfig  = "ConfigError"
	KindCatalog = "CatalogError"
	KindGeneric = "Error"
)

var (
	ErrNoPaths   = errors.New("no input files or directories given")
	ErrNoResults = errors.New("no results")
)

type Request struct {
	Paths      []string
	ConfigPath string
	// WorkDir is where default config files are looked up.
	WorkDir string
	Verbose bool
	// Overrides holds the settings given on the command line. They take
	// precedence over the config file.
	Overrides config.File
}

func DefaultRequest() Request {
	return Request{WorkDir: "."}
}

// Error carries the kind the command line reports for a failure.
type Error struct {
	kind string
	err  error
}

func newError(kind string, err error) *Error {
	return &Error{kind: kind, err: err}
}

func (e *Error) Error() string {
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Kind() string {
	return e.kind
}
