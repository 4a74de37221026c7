// Package token holds the token model shared by the tokenizer and the symbol
// classifier: a token is either a plain fragment or a tagged item.
package token

// Category is the syntactic tag attached to an Item.
type Category string

const (
	Identifier             Category = "identifier"
	Whitespace             Category = "whitespace"
	ObjectOperator         Category = "object-operator"
	NullsafeObjectOperator Category = "nullsafe-object-operator"
	DoubleColon            Category = "double-colon"
	FunctionKeyword        Category = "function-keyword"
	Keyword                Category = "keyword"
	Variable               Category = "variable"
	QualifiedName          Category = "qualified-name"
	StringLiteral          Category = "string"
	NumberLiteral          Category = "number"
	Comment                Category = "comment"
	InlineHTML             Category = "inline-html"
	OpenTag                Category = "open-tag"
)

// Token is one lexical unit. The only implementations are Fragment and Item.
type Token interface {
	Text() string
	// Category reports the item's tag; fragments report false.
	Category() (Category, bool)
	isToken()
}

// Fragment is an untagged token whose literal text is its identity, e.g. "(".
type Fragment string

func (f Fragment) Text() string {
	return string(f)
}

func (Fragment) Category() (Category, bool) {
	return "", false
}

func (Fragment) isToken() {}

// Item is a tagged token.
type Item struct {
	Cat    Category
	Value  string
	Offset int
	Line   int
}

func (i Item) Text() string {
	return i.Value
}

func (i Item) Category() (Category, bool) {
	return i.Cat, true
}

func (Item) isToken() {}

// Line returns the 1-based source line of tok, or 0 for fragments.
func Line(tok Token) int {
	if item, ok := tok.(Item); ok {
		return item.Line
	}
	return 0
}

// Is reports whether tok is an item tagged with cat.
func Is(tok Token, cat Category) bool {
	got, ok := tok.Category()
	return ok && got == cat
}
