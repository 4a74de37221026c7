package catalog

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ben-ranford/phpext/internal/testutil"
)

func mustDefault(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default()
	if err != nil {
		t.Fatalf("load embedded catalog: %v", err)
	}
	return c
}

func TestDefaultResolvesKnownSymbols(t *testing.T) {
	c := mustDefault(t)
	functions := map[string]string{
		"strlen":      "Core",
		"md5":         "standard",
		"hash":        "hash",
		"json_encode": "json",
		"preg_match":  "pcre",
		"mb_strlen":   "mbstring",
		"curl_init":   "curl",
		"random_int":  "random",
	}
	for name, want := range functions {
		if got, ok := c.ResolveFunction(name); !ok || got != want {
			t.Errorf("ResolveFunction(%q) = %q, %v; want %q", name, got, ok, want)
		}
	}
	classes := map[string]string{
		"ArrayObject": "SPL",
		"DateTime":    "date",
		"PDO":         "PDO",
		"Exception":   "Core",
	}
	for name, want := range classes {
		if got, ok := c.ResolveClass(name); !ok || got != want {
			t.Errorf("ResolveClass(%q) = %q, %v; want %q", name, got, ok, want)
		}
	}
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	c := mustDefault(t)
	if got, ok := c.ResolveFunction("MD5"); !ok || got != "standard" {
		t.Fatalf("expected MD5 to resolve to standard, got %q %v", got, ok)
	}
	if got, ok := c.ResolveClass("arrayobject"); !ok || got != "SPL" {
		t.Fatalf("expected arrayobject to resolve to SPL, got %q %v", got, ok)
	}
}

func TestResolveUnknownAndInvalidNames(t *testing.T) {
	c := mustDefault(t)
	for _, name := range []string{"my_helper", "", "1abc", `\strlen`, "md5()", "Foo\\Bar"} {
		if _, ok := c.ResolveFunction(name); ok {
			t.Errorf("expected %q not to resolve as a function", name)
		}
		if _, ok := c.ResolveClass(name); ok {
			t.Errorf("expected %q not to resolve as a class", name)
		}
	}
}

func TestFunctionsAndClassesAreSeparateNamespaces(t *testing.T) {
	c := mustDefault(t)
	if _, ok := c.ResolveClass("md5"); ok {
		t.Fatalf("md5 is not a class")
	}
	if _, ok := c.ResolveFunction("ArrayObject"); ok {
		t.Fatalf("ArrayObject is not a function")
	}
}

func TestDefaultMetadata(t *testing.T) {
	c := mustDefault(t)
	functions, classes := c.Size()
	if functions < 1000 || classes < 100 {
		t.Fatalf("embedded catalog looks truncated: %d functions, %d classes", functions, classes)
	}
	if got := c.Sources(); len(got) != 1 || got[0] != embeddedCatalogName {
		t.Fatalf("unexpected sources: %v", got)
	}
	if len(c.Digest()) != 64 {
		t.Fatalf("expected sha256 hex digest, got %q", c.Digest())
	}
	other := mustDefault(t)
	if other.Digest() != c.Digest() {
		t.Fatalf("digest must be stable across loads")
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := testutil.WriteTempFile(t, "acme.yml", `
extensions:
  - name: acme
    functions: [acme_connect, md5]
    classes: [AcmeClient]
builtins:
  - name: acme
    since: "8.4"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load overlay: %v", err)
	}
	if got, _ := c.ResolveFunction("acme_connect"); got != "acme" {
		t.Fatalf("expected overlay function, got %q", got)
	}
	if got, _ := c.ResolveFunction("md5"); got != "acme" {
		t.Fatalf("later layer should take ownership of md5, got %q", got)
	}
	if got, _ := c.ResolveClass("acmeclient"); got != "acme" {
		t.Fatalf("expected overlay class, got %q", got)
	}
	if c.Builtins(Version{Major: 8, Minor: 3}).Has("acme") {
		t.Fatalf("acme should not be builtin before 8.4")
	}
	if !c.Builtins(Version{Major: 8, Minor: 4}).Has("acme") {
		t.Fatalf("acme should be builtin from 8.4")
	}
	if c.Digest() == mustDefault(t).Digest() {
		t.Fatalf("overlay must change the digest")
	}
	if got := c.Sources(); len(got) != 2 || got[1] != path {
		t.Fatalf("unexpected sources: %v", got)
	}
}

func TestLoadTOMLOverlay(t *testing.T) {
	path := testutil.WriteTempFile(t, "acme.toml", `
[[extensions]]
name = "acme"
functions = ["acme_connect"]
classes = ["AcmeClient"]
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load overlay: %v", err)
	}
	if got, _ := c.ResolveClass("AcmeClient"); got != "acme" {
		t.Fatalf("expected overlay class, got %q", got)
	}
	if got, _ := c.ResolveFunction("strlen"); got != "Core" {
		t.Fatalf("embedded entries must survive an overlay, got %q", got)
	}
}

func TestLoadJSONOverlay(t *testing.T) {
	path := testutil.WriteTempFile(t, "acme.json", `{"extensions":[{"name":"acme","functions":["acme_connect"]}]}`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load overlay: %v", err)
	}
	if got, _ := c.ResolveFunction("ACME_CONNECT"); got != "acme" {
		t.Fatalf("expected overlay function, got %q", got)
	}
	found := false
	for _, name := range c.Extensions() {
		if name == "acme" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected acme in extensions %v", c.Extensions())
	}
}

func TestLoadRejectsBadOverlays(t *testing.T) {
	tests := map[string]struct {
		file    string
		content string
		want    error
	}{
		"unknown yaml field":   {file: "bad.yml", content: "extension: []\n", want: ErrInvalidCatalog},
		"unknown toml field":   {file: "bad.toml", content: "mods = 1\n", want: ErrInvalidCatalog},
		"unknown json field":   {file: "bad.json", content: `{"exts":[]}`, want: ErrInvalidCatalog},
		"unnamed extension":    {file: "bad.yml", content: "extensions:\n  - functions: [f]\n", want: ErrInvalidCatalog},
		"invalid identifier":   {file: "bad.yml", content: "extensions:\n  - name: x\n    functions: [\"a-b\"]\n", want: ErrInvalidCatalog},
		"duplicate in a layer": {file: "bad.yml", content: "extensions:\n  - name: a\n    functions: [f]\n  - name: b\n    functions: [F]\n", want: ErrInvalidCatalog},
		"bad builtin version":  {file: "bad.yml", content: "builtins:\n  - name: x\n    since: eight\n", want: ErrInvalidCatalog},
		"unsupported format":   {file: "bad.ini", content: "x=1\n", want: ErrUnsupportedFormat},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			path := testutil.WriteTempFile(t, tc.file, tc.content)
			if _, err := Load(path); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadMissingOverlay(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatalf("expected error for missing overlay")
	}
}

func TestLoadSkipsBlankPaths(t *testing.T) {
	c, err := Load("", "  ")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Sources()) != 1 {
		t.Fatalf("blank paths should be ignored, got %v", c.Sources())
	}
}
