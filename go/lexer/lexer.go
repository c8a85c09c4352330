/*
 * Syntax Tokenizer Runtime - Core Tokenizer Implementation
 *
 * This file implements the tokenizer engine that parsers generated by the
 * Syntax tool link against. The engine executes a static rule table against
 * an immutable source string: it keeps a cursor with running line/column
 * bookkeeping, a stack of start conditions selecting which rules are active,
 * and produces one classified token per NextToken call until the reserved
 * end-of-stream token.
 *
 * One engine instance advances strictly sequentially and is not safe for
 * concurrent use; the rule table is read-only and may be shared, so callers
 * needing parallel tokenization create one engine per stream.
 */

package lexer

import (
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"
)

// Lexer is the tokenizer engine. Create one with New, bind a source with
// Init, then call NextToken until HasMoreTokens reports false. The same
// instance is reusable across many sources: Init resets all scan state while
// keeping the rule table.
type Lexer struct {
	table  *Table
	logger *slog.Logger

	// Scan state, reset by Init.
	source string
	cursor int
	states []string

	// Running location counters. Lines are 1-based, columns 0-based;
	// lineBegin is the byte offset where the current line starts.
	currentLine   int
	currentColumn int
	lineBegin     int

	// Location of the most recent match, captured before its handler runs.
	tokenStartOffset int
	tokenEndOffset   int
	tokenStartLine   int
	tokenEndLine     int
	tokenStartColumn int
	tokenEndColumn   int

	// Matched text for the current rule. Handlers may replace it with
	// synthetic text via SetText; such text is not backed by the source
	// buffer, so the engine retains it in synthetic until the next Init.
	yytext    string
	synthetic []string

	// Token-type names queued by a handler, drained before scanning resumes.
	queue []string
}

// Option configures a Lexer at construction time.
type Option func(*Lexer)

// WithLogger installs a logger for debug-level scan tracing. The default
// logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lexer) {
		l.logger = logger
	}
}

// New creates a tokenizer engine executing the given rule table. The engine
// holds no source yet; call Init before NextToken.
func New(table *Table, opts ...Option) (*Lexer, error) {
	if table == nil {
		return nil, fmt.Errorf("lexer: nil rule table")
	}
	l := &Lexer{
		table:  table,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.Init("")
	return l, nil
}

// Init binds a new source string and resets all scan state: the cursor, the
// line/column counters, the start-condition stack, the pending token queue,
// and the synthetic-text retention. The rule table is untouched, so one
// engine can scan successive inputs without rebuilding it.
func (l *Lexer) Init(source string) *Lexer {
	l.source = source
	l.cursor = 0
	l.states = l.states[:0]
	l.states = append(l.states, DefaultState)

	l.currentLine = 1
	l.currentColumn = 0
	l.lineBegin = 0

	l.tokenStartOffset = 0
	l.tokenEndOffset = 0
	l.tokenStartLine = 0
	l.tokenEndLine = 0
	l.tokenStartColumn = 0
	l.tokenEndColumn = 0

	l.yytext = ""
	l.synthetic = nil
	l.queue = l.queue[:0]

	return l
}

// HasMoreTokens reports whether NextToken still has a token to produce.
// The position exactly at end-of-source still counts: the end-of-stream
// token is produced there, and only emitting it moves the cursor one past
// the end.
func (l *Lexer) HasMoreTokens() bool {
	return l.cursor <= len(l.source)
}

// IsEOF reports whether the cursor sits exactly at end-of-source, i.e. the
// single step at which the end-of-stream token is about to be produced.
func (l *Lexer) IsEOF() bool {
	return l.cursor == len(l.source)
}

// NextToken returns the next token from the source.
//
// Rules of the current start condition are tried in table order against the
// unconsumed suffix; the first rule matching at the cursor wins, never the
// longest match. The winning rule's handler decides the token-type name to
// emit, or returns the empty string to discard the match and keep scanning.
// At end-of-source the reserved end-of-stream token is returned, repeatedly
// on further calls. A character no rule matches yields an
// *UnexpectedTokenError and the scan cannot be resumed past it.
func (l *Lexer) NextToken() (Token, error) {
	for {
		// Token types queued by a handler are emitted before any further
		// scanning, each reusing the location of the match that queued them.
		if len(l.queue) > 0 {
			name := l.queue[0]
			l.queue = l.queue[1:]
			return l.emit(name), nil
		}

		if !l.HasMoreTokens() {
			return l.eofToken(), nil
		}

		rest := l.source[l.cursor:]
		state := l.CurrentState()
		indices, ok := l.table.RulesFor(state)
		if !ok {
			// A start condition absent from the table can only get on the
			// stack through a handler naming a state the generator never
			// emitted rules for.
			panic(fmt.Sprintf("lexer: no rules for start condition %q", state))
		}

		matched, idx, ok := l.matchRule(rest, indices)
		if !ok {
			if l.IsEOF() {
				l.cursor++
				return l.eofToken(), nil
			}
			char, _ := utf8.DecodeRuneInString(rest)
			return Token{}, &UnexpectedTokenError{
				Char:     string(char),
				Line:     l.currentLine,
				Column:   l.currentColumn,
				LineText: sourceLine(l.source, l.currentLine),
			}
		}

		l.captureLocation(matched)
		l.cursor += len(matched)
		if len(matched) == 0 {
			// Guarantee forward progress on patterns matching the empty
			// string.
			l.cursor++
		}

		l.yytext = matched
		name := l.table.rules[idx].Handler(l)
		if name == "" {
			l.logger.Debug("match discarded",
				"rule", idx, "state", state, "text", matched)
			continue
		}
		return l.emit(name), nil
	}
}

// matchRule tries the given rules in priority order against the unconsumed
// suffix and returns the first match found at the cursor.
func (l *Lexer) matchRule(rest string, indices []int) (string, int, bool) {
	for _, idx := range indices {
		loc := l.table.compiled[idx].FindStringIndex(rest)
		if loc == nil {
			continue
		}
		return rest[:loc[1]], idx, true
	}
	return "", 0, false
}

// captureLocation records the location of a match before its handler runs,
// updating the running line/column counters for any newlines the matched
// text contains.
func (l *Lexer) captureLocation(matched string) {
	l.tokenStartOffset = l.cursor
	l.tokenStartLine = l.currentLine
	l.tokenStartColumn = l.tokenStartOffset - l.lineBegin

	for i := 0; i < len(matched); i++ {
		if matched[i] == '\n' {
			l.currentLine++
			l.lineBegin = l.tokenStartOffset + i + 1
		}
	}

	l.tokenEndOffset = l.cursor + len(matched)
	l.tokenEndLine = l.currentLine
	l.tokenEndColumn = l.tokenEndOffset - l.lineBegin
	l.currentColumn = l.tokenEndColumn
}

// emit constructs a token of the given type name from the captured location
// state and the current matched (or synthetic) text.
func (l *Lexer) emit(name string) Token {
	token := Token{
		Kind:        l.table.kindOrPanic(name),
		Text:        l.yytext,
		StartOffset: l.tokenStartOffset,
		EndOffset:   l.tokenEndOffset,
		StartLine:   l.tokenStartLine,
		EndLine:     l.tokenEndLine,
		StartColumn: l.tokenStartColumn,
		EndColumn:   l.tokenEndColumn,
	}
	l.logger.Debug("token emitted",
		"type", name, "kind", token.Kind, "text", token.Text,
		"line", token.StartLine, "column", token.StartColumn)
	return token
}

// eofToken constructs the reserved end-of-stream token at the end of the
// source.
func (l *Lexer) eofToken() Token {
	end := len(l.source)
	return Token{
		Kind:        l.table.kindOrPanic(l.table.eofType),
		Text:        "",
		StartOffset: end,
		EndOffset:   end,
		StartLine:   l.currentLine,
		EndLine:     l.currentLine,
		StartColumn: l.currentColumn,
		EndColumn:   l.currentColumn,
	}
}

// Text returns the text matched by the current rule. Inside a handler this
// is the matched substring unless the handler already replaced it.
func (l *Lexer) Text() string {
	return l.yytext
}

// SetText replaces the matched text with synthetic text constructed by a
// handler. The engine retains synthetic strings until the next Init, so a
// token referencing one never outlives its backing storage.
func (l *Lexer) SetText(text string) {
	l.synthetic = append(l.synthetic, text)
	l.yytext = text
}

// EnqueueTypes queues additional token types to emit from the current match
// before scanning resumes. Each queued token reuses the current match's text
// and location.
func (l *Lexer) EnqueueTypes(names ...string) {
	l.queue = append(l.queue, names...)
}

// PushState enters a start condition, pushing it on the state stack. The
// return value allows chaining.
func (l *Lexer) PushState(state string) *Lexer {
	l.states = append(l.states, state)
	l.logger.Debug("state pushed", "state", state, "depth", len(l.states))
	return l
}

// Begin is an alias for PushState, matching the classic lex naming.
func (l *Lexer) Begin(state string) *Lexer {
	return l.PushState(state)
}

// PopState leaves the current start condition and returns it. Popping an
// empty stack is tolerated and yields DefaultState.
func (l *Lexer) PopState() string {
	if len(l.states) == 0 {
		return DefaultState
	}
	top := l.states[len(l.states)-1]
	l.states = l.states[:len(l.states)-1]
	l.logger.Debug("state popped", "state", top, "depth", len(l.states))
	return top
}

// CurrentState returns the active start condition: the top of the state
// stack, or DefaultState if the stack is empty.
func (l *Lexer) CurrentState() string {
	if len(l.states) == 0 {
		return DefaultState
	}
	return l.states[len(l.states)-1]
}

// String returns a string representation of the engine for debugging.
func (l *Lexer) String() string {
	return fmt.Sprintf("Lexer{Cursor: %d/%d, Line: %d, Column: %d, State: %s}",
		l.cursor, len(l.source), l.currentLine, l.currentColumn, l.CurrentState())
}
