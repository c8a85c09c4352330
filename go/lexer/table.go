/*
 * Syntax Tokenizer Runtime - Rule Table
 *
 * This file implements the static rule table the tokenizer executes: an
 * ordered list of anchored patterns, the subset and order of rules active in
 * each start condition, the semantic-action handler bound to each rule, and
 * the mapping from token-type names to the numeric kinds a generated parser
 * switches on.
 *
 * Tables are produced offline by the Syntax tool's grammar analysis; this
 * runtime only validates and executes them. A table is built once, is
 * read-only afterwards, and may be shared by any number of Lexer instances.
 * There is deliberately no process-wide table state.
 */

package lexer

import (
	"fmt"
	"regexp"
)

// DefaultState is the bottom start condition every scan begins in, and the
// state reported when the state stack underflows.
const DefaultState = "INITIAL"

// Handler is the semantic action bound to a rule. It receives the engine so
// it can inspect the matched text, substitute synthetic text, drive the
// start-condition stack, or queue extra token types. It returns the
// token-type name to emit, or the empty string to discard the match and
// keep scanning.
type Handler func(*Lexer) string

// Rule pairs a pattern with its semantic action. Pattern is a regular
// expression in RE2 syntax; the table compiles it anchored to the cursor,
// so a rule can only ever match at the current scan position.
type Rule struct {
	Pattern string
	Handler Handler
}

// Table is the static rule table. Rule order inside a start condition is
// priority order: the first rule whose pattern matches at the cursor wins,
// even when a later rule would match a longer span.
type Table struct {
	rules      []Rule
	compiled   []*regexp.Regexp
	stateRules map[string][]int
	tokenKinds map[string]int
	eofType    string
}

// NewTable builds and validates a rule table.
//
// stateRules maps each start-condition name to the ordered rule indices
// active in it and must contain DefaultState. tokenKinds maps every
// token-type name the table can emit to a small non-negative kind, and must
// contain eofType, the reserved end-of-stream type name.
//
// Validation failures are configuration defects in the generated table, so
// they are reported eagerly here rather than surfacing mid-scan.
func NewTable(rules []Rule, stateRules map[string][]int, tokenKinds map[string]int, eofType string) (*Table, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("lexer: table has no rules")
	}

	compiled := make([]*regexp.Regexp, len(rules))
	for i, rule := range rules {
		if rule.Handler == nil {
			return nil, fmt.Errorf("lexer: rule %d (%q) has no handler", i, rule.Pattern)
		}
		// Anchor with \A so matching is "match at the cursor", never
		// "search anywhere in the remainder".
		re, err := regexp.Compile(`\A(?:` + rule.Pattern + `)`)
		if err != nil {
			return nil, fmt.Errorf("lexer: rule %d: invalid pattern %q: %w", i, rule.Pattern, err)
		}
		compiled[i] = re
	}

	if _, ok := stateRules[DefaultState]; !ok {
		return nil, fmt.Errorf("lexer: start conditions must include %q", DefaultState)
	}
	for state, indices := range stateRules {
		if len(indices) == 0 {
			return nil, fmt.Errorf("lexer: start condition %q has no rules", state)
		}
		for _, idx := range indices {
			if idx < 0 || idx >= len(rules) {
				return nil, fmt.Errorf("lexer: start condition %q references rule %d, table has %d rules",
					state, idx, len(rules))
			}
		}
	}

	if eofType == "" {
		return nil, fmt.Errorf("lexer: end-of-stream token type name is empty")
	}
	for name, kind := range tokenKinds {
		if kind < 0 {
			return nil, fmt.Errorf("lexer: token type %q has negative kind %d", name, kind)
		}
	}
	if _, ok := tokenKinds[eofType]; !ok {
		return nil, fmt.Errorf("lexer: end-of-stream token type %q has no kind mapping", eofType)
	}

	// Copy the maps so later caller mutation cannot corrupt a live table.
	states := make(map[string][]int, len(stateRules))
	for state, indices := range stateRules {
		states[state] = append([]int(nil), indices...)
	}
	kinds := make(map[string]int, len(tokenKinds))
	for name, kind := range tokenKinds {
		kinds[name] = kind
	}

	return &Table{
		rules:      append([]Rule(nil), rules...),
		compiled:   compiled,
		stateRules: states,
		tokenKinds: kinds,
		eofType:    eofType,
	}, nil
}

// KindOf resolves a token-type name to its numeric kind.
func (t *Table) KindOf(name string) (int, bool) {
	kind, ok := t.tokenKinds[name]
	return kind, ok
}

// EOFType returns the reserved end-of-stream token-type name.
func (t *Table) EOFType() string {
	return t.eofType
}

// RulesFor returns the ordered rule indices active in a start condition.
func (t *Table) RulesFor(state string) ([]int, bool) {
	indices, ok := t.stateRules[state]
	return indices, ok
}

// kindOrPanic resolves a token-type name, treating a missing mapping as an
// assertion failure: a handler returning an unmapped name is a defect in the
// generated table, not a runtime parse error.
func (t *Table) kindOrPanic(name string) int {
	kind, ok := t.tokenKinds[name]
	if !ok {
		panic(fmt.Sprintf("lexer: token type %q has no kind mapping in the rule table", name))
	}
	return kind
}
