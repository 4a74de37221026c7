package report

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

type builtinSet map[string]bool

func (b builtinSet) Has(name string) bool { return b[name] }

func sampleReport() Report {
	r := Build(
		[]string{"date", "json2", "mbstring", "SPL"},
		builtinSet{"date": true, "SPL": true},
		[]SymbolUse{
			{Name: "DateTime", Kind: "class", File: "src/a.php", Line: 3, Module: "date"},
			{Name: "mb_strlen", Kind: "function", File: "src/b.php", Line: 9, Module: "mbstring"},
			{Name: "ArrayObject", Kind: "class", File: "src/b.php", Line: 12, Module: "SPL"},
		},
	)
	r.PHPVersion = "8.3"
	r.Paths = []string{"src"}
	r.FilesScanned = 2
	return r
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]Format{"": FormatText, "text": FormatText, " JSON ": FormatJSON} {
		got, err := ParseFormat(input)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", input, got, err, want)
		}
	}
	if _, err := ParseFormat("table"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestFormatTextAnnotatesBuiltins(t *testing.T) {
	output, err := NewFormatter().Format(sampleReport(), FormatText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "date (builtin)\njson2\nmbstring\nSPL (builtin)\n"
	if output != want {
		t.Fatalf("unexpected output:\n%s", output)
	}
}

func TestFormatTextEmpty(t *testing.T) {
	output, err := NewFormatter().Format(Build(nil, nil, nil), FormatText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output != "" {
		t.Fatalf("expected no output, got %q", output)
	}
}

func TestFormatJSON(t *testing.T) {
	output, err := NewFormatter().Format(sampleReport(), FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Extensions) != 4 || !decoded.Extensions[0].Builtin || decoded.Extensions[1].Builtin {
		t.Fatalf("unexpected extensions: %#v", decoded.Extensions)
	}
	if len(decoded.Extensions[2].Symbols) != 1 || decoded.Extensions[2].Symbols[0].Name != "mb_strlen" {
		t.Fatalf("expected mb_strlen evidence under mbstring, got %#v", decoded.Extensions[2])
	}
	if strings.Contains(output, `"Module"`) || strings.Contains(output, `"module"`) {
		t.Fatalf("symbol module must not be serialized twice")
	}
}

func TestFormatJSONEmptyUsesArrays(t *testing.T) {
	output, err := NewFormatter().Format(Report{SchemaVersion: SchemaVersion}, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, `"extensions": []`) || !strings.Contains(output, `"paths": []`) {
		t.Fatalf("expected empty arrays, got %s", output)
	}
}

func TestFormatUnknown(t *testing.T) {
	if _, err := NewFormatter().Format(Report{}, Format("xml")); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestBuildGroupsSymbolsByModule(t *testing.T) {
	r := sampleReport()
	if !r.Extensions[0].Builtin || r.Extensions[0].Symbols[0].File != "src/a.php" {
		t.Fatalf("unexpected date entry: %#v", r.Extensions[0])
	}
	if r.Extensions[1].Symbols != nil {
		t.Fatalf("json2 has no evidence, got %#v", r.Extensions[1].Symbols)
	}
	if r.Empty() {
		t.Fatalf("report should not be empty")
	}
	if !Build(nil, nil, nil).Empty() {
		t.Fatalf("report without modules should be empty")
	}
}
