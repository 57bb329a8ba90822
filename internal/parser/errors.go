package parser

import (
	"fmt"

	"github.com/hek-lang/hek/internal/token"
)

// ParseError is spec.md §7 category 2: an unexpected token, including
// a missing closing delimiter. It carries the offending token (kind +
// payload) and the tokenizer's line so the driver can format it.
type ParseError struct {
	Token   token.Token
	Line    int
	Context string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: unexpected %s while parsing %s", e.Line, e.Token.String(), e.Context)
}
