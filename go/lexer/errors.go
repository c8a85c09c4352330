/*
 * Syntax Tokenizer Runtime - Error Handling
 *
 * This file implements the single lexical failure mode: the unexpected-token
 * error raised when no rule of the active start condition matches at the
 * cursor. The error carries the offending character, its line and column,
 * and renders the offending source line with a caret marker under the
 * column, so hosting parsers can report it without terminating the process.
 */

package lexer

import (
	"fmt"
	"strings"
)

// UnexpectedTokenError reports a character no rule of the current start
// condition could match. It is fatal to the scan in progress: the engine
// does not skip, retry, or resume past it.
type UnexpectedTokenError struct {
	Char     string // the offending character (one rune)
	Line     int    // 1-based line of the offending character
	Column   int    // 0-based column of the offending character
	LineText string // full text of the offending source line
}

// Error renders the offending line with a caret under the column, followed
// by the classic "Unexpected token" message with line:column location.
func (e *UnexpectedTokenError) Error() string {
	pad := strings.Repeat(" ", e.Column)
	return fmt.Sprintf("\n\n%s\n%s^\n\nUnexpected token: %q at %d:%d.",
		e.LineText, pad, e.Char, e.Line, e.Column)
}

// sourceLine extracts the full text of a 1-based line from the source.
// Out-of-range lines yield an empty string rather than failing, since the
// error path must never fail itself.
func sourceLine(source string, line int) string {
	if line < 1 {
		return ""
	}
	rest := source
	for i := 1; ; i++ {
		nl := strings.IndexByte(rest, '\n')
		if i == line {
			if nl < 0 {
				return rest
			}
			return rest[:nl]
		}
		if nl < 0 {
			return ""
		}
		rest = rest[nl+1:]
	}
}
