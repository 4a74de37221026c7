// Package catalog resolves PHP function and class names to the extension that
// provides them, using a static symbol catalog in place of runtime reflection.
package catalog

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ben-ranford/phpext/internal/safeio"
)

//go:embed data/php.yml
var embeddedCatalog []byte

const embeddedCatalogName = "data/php.yml"

var (
	ErrInvalidCatalog    = errors.New("invalid catalog")
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_\x80-\xff][A-Za-z0-9_\x80-\xff]*$`)

type document struct {
	Builtins   []builtinEntry   `yaml:"builtins" toml:"builtins" json:"builtins"`
	Extensions []extensionEntry `yaml:"extensions" toml:"extensions" json:"extensions"`
}

type builtinEntry struct {
	Name  string `yaml:"name" toml:"name" json:"name"`
	Since string `yaml:"since" toml:"since" json:"since"`
}

type extensionEntry struct {
	Name      string   `yaml:"name" toml:"name" json:"name"`
	Functions []string `yaml:"functions" toml:"functions" json:"functions"`
	Classes   []string `yaml:"classes" toml:"classes" json:"classes"`
}

// Catalog maps lower-cased symbol names to extension names.
type Catalog struct {
	functions  map[string]string
	classes    map[string]string
	extensions map[string]struct{}
	builtins   map[string]Version
	sources    []string
	digest     string
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Load()
}

// Load returns the embedded catalog with each file in paths layered over it in
// order. A later layer takes ownership of any symbol it lists.
func Load(paths ...string) (*Catalog, error) {
	c := &Catalog{
		functions:  make(map[string]string),
		classes:    make(map[string]string),
		extensions: make(map[string]struct{}),
		builtins:   make(map[string]Version),
	}
	hasher := sha256.New()
	if err := c.apply(embeddedCatalogName, embeddedCatalog); err != nil {
		return nil, err
	}
	hasher.Write(embeddedCatalog)
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		data, err := safeio.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		if err := c.apply(path, data); err != nil {
			return nil, err
		}
		hasher.Write([]byte{0})
		hasher.Write(data)
	}
	c.digest = hex.EncodeToString(hasher.Sum(nil))
	return c, nil
}

func (c *Catalog) apply(source string, data []byte) error {
	doc, err := decode(source, data)
	if err != nil {
		return err
	}
	functions := make(map[string]string)
	classes := make(map[string]string)
	for _, ext := range doc.Extensions {
		name := strings.TrimSpace(ext.Name)
		if name == "" {
			return fmt.Errorf("%w: %s: extension without a name", ErrInvalidCatalog, source)
		}
		if err := collectSymbols(source, name, "function", ext.Functions, functions); err != nil {
			return err
		}
		if err := collectSymbols(source, name, "class", ext.Classes, classes); err != nil {
			return err
		}
		c.extensions[name] = struct{}{}
	}
	for _, entry := range doc.Builtins {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return fmt.Errorf("%w: %s: builtin without a name", ErrInvalidCatalog, source)
		}
		since := Version{}
		if strings.TrimSpace(entry.Since) != "" {
			since, err = ParseVersion(entry.Since)
			if err != nil {
				return fmt.Errorf("%w: %s: builtin %s: %v", ErrInvalidCatalog, source, name, err)
			}
		}
		c.builtins[name] = since
	}
	for key, ext := range functions {
		c.functions[key] = ext
	}
	for key, ext := range classes {
		c.classes[key] = ext
	}
	c.sources = append(c.sources, source)
	return nil
}

func collectSymbols(source, ext, kind string, names []string, into map[string]string) error {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if !identifierPattern.MatchString(name) {
			return fmt.Errorf("%w: %s: %s %q in %s is not a valid identifier", ErrInvalidCatalog, source, kind, name, ext)
		}
		key := strings.ToLower(name)
		if owner, ok := into[key]; ok && owner != ext {
			return fmt.Errorf("%w: %s: %s %s listed under both %s and %s", ErrInvalidCatalog, source, kind, name, owner, ext)
		}
		into[key] = ext
	}
	return nil
}

func decode(source string, data []byte) (document, error) {
	var doc document
	switch ext := strings.ToLower(filepath.Ext(source)); ext {
	case ".yml", ".yaml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&doc); err != nil {
			return document{}, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, source, err)
		}
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&doc); err != nil {
			return document{}, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, source, err)
		}
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&doc); err != nil {
			return document{}, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, source, err)
		}
	default:
		return document{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, source)
	}
	return doc, nil
}

// ResolveFunction returns the extension defining the global function name.
func (c *Catalog) ResolveFunction(name string) (string, bool) {
	return lookup(c.functions, name)
}

// ResolveClass returns the extension defining the class, interface, trait or
// enum name.
func (c *Catalog) ResolveClass(name string) (string, bool) {
	return lookup(c.classes, name)
}

func lookup(table map[string]string, name string) (string, bool) {
	if !identifierPattern.MatchString(name) {
		return "", false
	}
	ext, ok := table[strings.ToLower(name)]
	return ext, ok
}

// Extensions lists every extension named by the loaded layers.
func (c *Catalog) Extensions() []string {
	names := make([]string, 0, len(c.extensions))
	for name := range c.extensions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sources lists the loaded layers, embedded catalog first.
func (c *Catalog) Sources() []string {
	return append([]string(nil), c.sources...)
}

// Digest identifies the combined catalog content.
func (c *Catalog) Digest() string {
	return c.digest
}

// Size returns the number of function and class entries.
func (c *Catalog) Size() (functions int, classes int) {
	return len(c.functions), len(c.classes)
}
