/*
 * Syntax Tokenizer Runtime - Rule Table Definitions
 *
 * This file implements the serialized rule-table format the offline grammar
 * analysis emits for the tokenizer runtime: the ordered patterns, the rule
 * subsets per start condition, and the token-type kind numbering, as one
 * YAML document.
 *
 * Simple semantic actions (emit a fixed type, skip, enter or leave a start
 * condition) are expressed inline in the definition; anything needing code
 * names a handler the hosting parser registers before building the table.
 */

package tabledef

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/DmitrySoshnikov/syntax/go/lexer"
)

// DefaultEOFType is the end-of-stream token-type name the generator emits
// when a definition does not name one.
const DefaultEOFType = "$"

// Registry maps handler names referenced by a definition to the semantic
// actions the hosting parser supplies.
type Registry map[string]lexer.Handler

// Definition is the serialized rule table.
type Definition struct {
	// Rules in table order; order inside a start condition is priority order.
	Rules []RuleDef `yaml:"rules"`

	// StartConditions maps each start-condition name to the ordered rule
	// indices active in it. When omitted, every rule is active in INITIAL.
	StartConditions map[string][]int `yaml:"startConditions,omitempty"`

	// TokenKinds maps token-type names to the numeric kinds the generated
	// parser switches on, including the end-of-stream type.
	TokenKinds map[string]int `yaml:"tokens"`

	// EOFType names the reserved end-of-stream token type; defaults to "$".
	EOFType string `yaml:"eofType,omitempty"`
}

// RuleDef is one serialized rule. Exactly one result action applies: emit
// Token, or Skip. Begin and Pop switch the start condition before the result
// action and may accompany either; a rule with only Begin or Pop skips.
// Handler defers the whole action to registered code and excludes the
// inline fields.
type RuleDef struct {
	Pattern string `yaml:"pattern"`

	Token   string `yaml:"token,omitempty"`
	Skip    bool   `yaml:"skip,omitempty"`
	Begin   string `yaml:"begin,omitempty"`
	Pop     bool   `yaml:"pop,omitempty"`
	Handler string `yaml:"handler,omitempty"`
}

// Parse decodes a serialized rule table. Unknown fields are rejected so a
// table emitted by a newer generator fails loudly instead of silently
// dropping actions.
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("tabledef: decoding rule table: %w", err)
	}
	return &def, nil
}

// Build resolves the definition's actions against the registry and
// constructs the executable rule table.
func (d *Definition) Build(registry Registry) (*lexer.Table, error) {
	rules := make([]lexer.Rule, len(d.Rules))
	for i, rd := range d.Rules {
		handler, err := rd.action(registry)
		if err != nil {
			return nil, fmt.Errorf("tabledef: rule %d (%q): %w", i, rd.Pattern, err)
		}
		rules[i] = lexer.Rule{Pattern: rd.Pattern, Handler: handler}
	}

	states := d.StartConditions
	if len(states) == 0 {
		all := make([]int, len(d.Rules))
		for i := range all {
			all[i] = i
		}
		states = map[string][]int{lexer.DefaultState: all}
	}

	eofType := d.EOFType
	if eofType == "" {
		eofType = DefaultEOFType
	}

	table, err := lexer.NewTable(rules, states, d.TokenKinds, eofType)
	if err != nil {
		return nil, fmt.Errorf("tabledef: %w", err)
	}
	return table, nil
}

// action resolves a rule's serialized action to a handler.
func (rd RuleDef) action(registry Registry) (lexer.Handler, error) {
	if rd.Handler != "" {
		if rd.Token != "" || rd.Skip || rd.Begin != "" || rd.Pop {
			return nil, fmt.Errorf("handler %q excludes inline actions", rd.Handler)
		}
		handler, ok := registry[rd.Handler]
		if !ok {
			return nil, fmt.Errorf("handler %q is not registered", rd.Handler)
		}
		return handler, nil
	}

	if rd.Token == "" && !rd.Skip && rd.Begin == "" && !rd.Pop {
		return nil, fmt.Errorf("rule has no action")
	}
	if rd.Token != "" && rd.Skip {
		return nil, fmt.Errorf("token %q conflicts with skip", rd.Token)
	}
	if rd.Begin != "" && rd.Pop {
		return nil, fmt.Errorf("begin %q conflicts with pop", rd.Begin)
	}

	begin, pop, token := rd.Begin, rd.Pop, rd.Token
	return func(l *lexer.Lexer) string {
		if begin != "" {
			l.Begin(begin)
		}
		if pop {
			l.PopState()
		}
		return token
	}, nil
}
