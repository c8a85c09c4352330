/*
 * Syntax Tokenizer Runtime - Token
 *
 * This file defines the token value produced by the tokenizer. Tokens are
 * plain data: a parser switches on Kind, diagnostics use the location
 * scalars, and Text carries the matched (or handler-substituted) substring.
 */

package lexer

import "fmt"

// Token is an immutable value produced per successful scan. All location
// scalars are copied out of the engine when the token is constructed, so a
// token stays valid after the engine moves on.
//
// Lines are 1-based, columns are 0-based. Offsets are byte offsets into the
// scanned source with 0 <= StartOffset <= EndOffset <= len(source).
type Token struct {
	Kind int    // numeric classification resolved through the table's type map
	Text string // exact matched substring, or synthetic text set by a handler

	StartOffset int
	EndOffset   int
	StartLine   int
	EndLine     int
	StartColumn int
	EndColumn   int
}

// String returns a compact representation for debugging and test failures.
func (t Token) String() string {
	return fmt.Sprintf("Token{Kind: %d, Text: %q, Loc: %d-%d (%d:%d-%d:%d)}",
		t.Kind, t.Text, t.StartOffset, t.EndOffset,
		t.StartLine, t.StartColumn, t.EndLine, t.EndColumn)
}
