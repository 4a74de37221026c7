// Package classify decides which identifiers in a PHP token stream refer to
// functions or classes provided by runtime extensions.
package classify

import (
	"log/slog"

	"github.com/ben-ranford/phpext/internal/deps"
	"github.com/ben-ranford/phpext/internal/token"
)

// Resolver maps a confirmed symbol to the extension that defines it.
type Resolver interface {
	ResolveFunction(name string) (string, bool)
	ResolveClass(name string) (string, bool)
}

// Kind says whether a symbol was used as a function or a class.
type Kind string

const (
	KindFunction Kind = "function"
	KindClass    Kind = "class"
)

// Symbol is one identifier attributed to an extension.
type Symbol struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Module string `json:"module"`
	Line   int    `json:"line,omitempty"`
}

// Result is what a single token stream depends on.
type Result struct {
	Modules deps.Set
	Symbols []Symbol
}

// memberContext precedes names that are not standalone references: method
// and property access, static access, and function declarations.
var memberContext = []token.Pattern{
	token.Exact(token.ObjectOperator, "->"),
	token.Exact(token.NullsafeObjectOperator, "?->"),
	token.Kind(token.DoubleColon),
	token.Kind(token.FunctionKeyword),
}

// Classifier finds extension symbols in a token stream.
type Classifier struct {
	resolver Resolver
	logger   *slog.Logger
}

// New returns a classifier resolving through resolver. A nil logger discards.
func New(resolver Resolver, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Classifier{resolver: resolver, logger: logger}
}

// step tries one classification of the identifier at index i. It reports how
// many positions the scan should advance when it succeeds.
type step func(s *pass, i int, name string) (int, bool)

// Order matters: a name that is both a function and a class counts as a
// function.
var steps = []step{
	(*pass).tryFunction,
	(*pass).tryClass,
	(*pass).tryConstant,
}

type pass struct {
	*Classifier
	cursor *token.Cursor
	result *Result
}

// Classify walks tokens and returns the extensions they reference.
func (c *Classifier) Classify(tokens []token.Token) Result {
	result := Result{Modules: deps.NewSet()}
	s := &pass{
		Classifier: c,
		cursor:     token.NewCursor(tokens),
		result:     &result,
	}
	for i := 0; i < len(tokens); {
		i += s.classifyAt(i)
	}
	return result
}

func (s *pass) classifyAt(i int) int {
	tok := s.cursor.At(i)
	if !token.Is(tok, token.Identifier) {
		return 1
	}
	name := tok.Text()
	for _, try := range steps {
		if advance, ok := try(s, i, name); ok {
			return advance
		}
	}
	return 1
}

func (s *pass) tryFunction(i int, name string) (int, bool) {
	next, err := s.cursor.Next(i)
	if err != nil || !token.Matches(next, token.Literal("(")) {
		return 0, false
	}
	if s.inMemberContext(i) {
		return 0, false
	}
	module, ok := s.resolver.ResolveFunction(name)
	if !ok || module == "" {
		return 0, false
	}
	s.record(i, name, KindFunction, module)
	return 1, true
}

func (s *pass) tryClass(i int, name string) (int, bool) {
	if s.inMemberContext(i) {
		return 0, false
	}
	module, ok := s.resolver.ResolveClass(name)
	if !ok || module == "" {
		return 0, false
	}
	s.record(i, name, KindClass, module)
	return 1, true
}

// tryConstant declines: built-in constants are not catalogued. A lookup added
// here must reject member context the same way the other steps do.
func (s *pass) tryConstant(int, string) (int, bool) {
	return 0, false
}

// inMemberContext reports whether the significant token before i marks the
// name as a member, a static member or a declaration. Running off the start
// of the stream counts as member context.
func (s *pass) inMemberContext(i int) bool {
	prev, err := s.cursor.Prev(i)
	if err != nil {
		return true
	}
	return token.MatchesAny(prev, memberContext...)
}

func (s *pass) record(i int, name string, kind Kind, module string) {
	line := token.Line(s.cursor.At(i))
	s.result.Modules.Add(module)
	s.result.Symbols = append(s.result.Symbols, Symbol{
		Name:   name,
		Kind:   kind,
		Module: module,
		Line:   line,
	})
	s.logger.Debug("resolved symbol", "name", name, "kind", kind, "module", module, "line", line)
}
