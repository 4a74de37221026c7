package token

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"
)

// wholeNodes are emitted as a single item; nothing inside them is tokenized.
var wholeNodes = map[string]Category{
	"variable_name":            Variable,
	"string":                   StringLiteral,
	"encapsed_string":          StringLiteral,
	"heredoc":                  StringLiteral,
	"nowdoc":                   StringLiteral,
	"shell_command_expression": StringLiteral,
	"comment":                  Comment,
	"text":                     InlineHTML,
	"integer":                  NumberLiteral,
	"float":                    NumberLiteral,
	"php_tag":                  OpenTag,
	"cast_type":                Keyword,
	"primitive_type":           Identifier,
}

// namespacedNodes are emitted whole only when they carry a namespace
// separator; a bare name inside them stays an identifier.
var namespacedNodes = map[string]struct{}{
	"qualified_name": {},
	"namespace_name": {},
	"relative_name":  {},
}

var operatorLeaves = map[string]Category{
	"->":       ObjectOperator,
	"?->":      NullsafeObjectOperator,
	"::":       DoubleColon,
	"function": FunctionKeyword,
}

var identifierLeaves = map[string]struct{}{
	"name":    {},
	"boolean": {},
	"null":    {},
}

// Tokenizer turns PHP source into a token stream using the tree-sitter PHP
// grammar.
type Tokenizer struct {
	lang *sitter.Language
}

func NewTokenizer() *Tokenizer {
	return &Tokenizer{lang: php.GetLanguage()}
}

// Tokenize parses src and flattens the syntax tree into tokens in source
// order. Gaps between leaves are emitted as Whitespace items.
func (t *Tokenizer) Tokenize(ctx context.Context, src []byte) ([]Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(src) == 0 {
		return nil, nil
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(t.lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse php source: %w", err)
	}
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree")
	}
	defer tree.Close()

	f := flattener{src: src, line: 1}
	f.walk(tree.RootNode())
	f.gap(len(src))
	return f.tokens, nil
}

type flattener struct {
	src    []byte
	pos    int
	line   int
	tokens []Token
}

func (f *flattener) walk(node *sitter.Node) {
	if node == nil || node.IsMissing() {
		return
	}
	kind := node.Type()
	if cat, ok := wholeNodes[kind]; ok {
		f.item(node, cat)
		return
	}
	if _, ok := namespacedNodes[kind]; ok && strings.Contains(f.text(node), `\`) {
		f.item(node, QualifiedName)
		return
	}
	count := int(node.ChildCount())
	if count == 0 {
		f.leaf(node)
		return
	}
	for i := 0; i < count; i++ {
		f.walk(node.Child(i))
	}
}

func (f *flattener) leaf(node *sitter.Node) {
	if node.StartByte() == node.EndByte() {
		return
	}
	kind := node.Type()
	if node.IsNamed() {
		if _, ok := identifierLeaves[kind]; ok {
			f.item(node, Identifier)
			return
		}
		f.fragment(node)
		return
	}
	if cat, ok := operatorLeaves[kind]; ok {
		f.item(node, cat)
		return
	}
	if isWord(kind) {
		f.item(node, Keyword)
		return
	}
	f.fragment(node)
}

func (f *flattener) item(node *sitter.Node, cat Category) {
	start := int(node.StartByte())
	f.gap(start)
	f.tokens = append(f.tokens, Item{
		Cat:    cat,
		Value:  f.text(node),
		Offset: start,
		Line:   int(node.StartPoint().Row) + 1,
	})
	f.advance(node)
}

func (f *flattener) fragment(node *sitter.Node) {
	f.gap(int(node.StartByte()))
	f.tokens = append(f.tokens, Fragment(f.text(node)))
	f.advance(node)
}

func (f *flattener) advance(node *sitter.Node) {
	f.pos = int(node.EndByte())
	f.line = int(node.EndPoint().Row) + 1
}

// gap emits the source between the last token and end.
func (f *flattener) gap(end int) {
	if end <= f.pos || end > len(f.src) {
		return
	}
	text := string(f.src[f.pos:end])
	if strings.TrimSpace(text) == "" {
		f.tokens = append(f.tokens, Item{
			Cat:    Whitespace,
			Value:  text,
			Offset: f.pos,
			Line:   f.line,
		})
	} else {
		f.tokens = append(f.tokens, Fragment(text))
	}
	f.line += strings.Count(text, "\n")
	f.pos = end
}

func (f *flattener) text(node *sitter.Node) string {
	return string(f.src[node.StartByte():node.EndByte()])
}

func isWord(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if (r < 'a' || r > 'z') && r != '_' {
			return false
		}
	}
	return true
}
