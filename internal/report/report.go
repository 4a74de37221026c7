// Package report renders the extensions a scan depends on.
package report

import (
	"errors"
	"fmt"
	"strings"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

const SchemaVersion = "1.0.0"

var ErrUnknownFormat = errors.New("unknown format")

func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(FormatText):
		return FormatText, nil
	case string(FormatJSON):
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, value)
	}
}

type Report struct {
	SchemaVersion string         `json:"schemaVersion"`
	PHPVersion    string         `json:"phpVersion"`
	Paths         []string       `json:"paths"`
	FilesScanned  int            `json:"filesScanned"`
	Extensions    []Extension    `json:"extensions"`
	Catalogs      []string       `json:"catalogs,omitempty"`
	Cache         *CacheMetadata `json:"cache,omitempty"`
}

type Extension struct {
	Name    string      `json:"name"`
	Builtin bool        `json:"builtin"`
	Symbols []SymbolUse `json:"symbols,omitempty"`
}

// SymbolUse is one place an extension's symbol is referenced.
type SymbolUse struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
	Module string `json:"-"`
}

type CacheMetadata struct {
	Path   string `json:"path"`
	Hits   int    `json:"hits"`
	Misses int    `json:"misses"`
	Writes int    `json:"writes"`
}

// Builtins reports whether an extension is always present.
type Builtins interface {
	Has(name string) bool
}

// Build lays out modules, already in output order, with their builtin flag
// and the symbol uses that attributed them.
func Build(modules []string, builtins Builtins, uses []SymbolUse) Report {
	byModule := make(map[string][]SymbolUse, len(modules))
	for _, use := range uses {
		byModule[use.Module] = append(byModule[use.Module], use)
	}
	extensions := make([]Extension, 0, len(modules))
	for _, name := range modules {
		extensions = append(extensions, Extension{
			Name:    name,
			Builtin: builtins != nil && builtins.Has(name),
			Symbols: byModule[name],
		})
	}
	return Report{
		SchemaVersion: SchemaVersion,
		Paths:         []string{},
		Extensions:    extensions,
	}
}

// Empty reports whether no extension was found.
func (r Report) Empty() bool {
	return len(r.Extensions) == 0
}
