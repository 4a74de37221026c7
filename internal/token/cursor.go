package token

import "errors"

// ErrNotFound is returned when a seek runs off either end of the stream.
var ErrNotFound = errors.New("token not found")

// Direction is the step applied to the index on each seek iteration.
type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

// Cursor finds significant tokens around a position in an immutable stream.
type Cursor struct {
	tokens []Token
	ignore map[Category]struct{}
}

// NewCursor returns a cursor over tokens that skips items tagged with any of
// ignore. With no ignore categories given it skips Whitespace.
func NewCursor(tokens []Token, ignore ...Category) *Cursor {
	if len(ignore) == 0 {
		ignore = []Category{Whitespace}
	}
	set := make(map[Category]struct{}, len(ignore))
	for _, cat := range ignore {
		set[cat] = struct{}{}
	}
	return &Cursor{tokens: tokens, ignore: set}
}

// Len returns the stream length.
func (c *Cursor) Len() int {
	return len(c.tokens)
}

// At returns the token at index i.
func (c *Cursor) At(i int) Token {
	return c.tokens[i]
}

// Seek walks from start in dir and returns the first token that is not
// ignorable along with its index.
func (c *Cursor) Seek(start int, dir Direction) (Token, int, error) {
	if dir != Forward && dir != Backward {
		return nil, -1, errors.New("invalid seek direction")
	}
	for i := start; i >= 0 && i < len(c.tokens); i += int(dir) {
		if !c.ignorable(c.tokens[i]) {
			return c.tokens[i], i, nil
		}
	}
	return nil, -1, ErrNotFound
}

// Next returns the first significant token after index i.
func (c *Cursor) Next(i int) (Token, error) {
	tok, _, err := c.Seek(i+1, Forward)
	return tok, err
}

// Prev returns the first significant token before index i.
func (c *Cursor) Prev(i int) (Token, error) {
	tok, _, err := c.Seek(i-1, Backward)
	return tok, err
}

func (c *Cursor) ignorable(tok Token) bool {
	cat, ok := tok.Category()
	if !ok {
		return false
	}
	_, skip := c.ignore[cat]
	return skip
}
