/*
 * Syntax Tokenizer Runtime - Rule Table Definition Tests
 *
 * Parsing and building serialized rule tables: inline actions, registered
 * handlers, defaulted start conditions, and rejection of malformed
 * definitions.
 */

package tabledef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DmitrySoshnikov/syntax/go/lexer"
)

const calcDefinition = `
rules:
  - pattern: '\s+'
    skip: true
  - pattern: '\d+'
    token: NUMBER
  - pattern: '\+'
    token: '+'
  - pattern: '\*'
    token: '*'
tokens:
  '$': 0
  NUMBER: 1
  '+': 2
  '*': 3
`

// scanAll drains an engine up to and including the end-of-stream token.
func scanAll(t *testing.T, l *lexer.Lexer) []lexer.Token {
	t.Helper()

	var tokens []lexer.Token
	for {
		token, err := l.NextToken()
		require.NoError(t, err)
		tokens = append(tokens, token)
		if !l.HasMoreTokens() {
			return tokens
		}
	}
}

func TestParseAndBuildCalcTable(t *testing.T) {
	def, err := Parse([]byte(calcDefinition))
	require.NoError(t, err)
	require.Len(t, def.Rules, 4)

	table, err := def.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultEOFType, table.EOFType())

	// Start conditions were omitted: every rule is active in INITIAL.
	indices, ok := table.RulesFor(lexer.DefaultState)
	require.True(t, ok)
	assert.Equal(t, []int{0, 1, 2, 3}, indices)

	l, err := lexer.New(table)
	require.NoError(t, err)

	tokens := scanAll(t, l.Init("2 + 2 * 2"))
	require.Len(t, tokens, 6)

	texts := make([]string, 0, len(tokens))
	kinds := make([]int, 0, len(tokens))
	for _, token := range tokens {
		texts = append(texts, token.Text)
		kinds = append(kinds, token.Kind)
	}
	assert.Equal(t, []string{"2", "+", "2", "*", "2", ""}, texts)
	assert.Equal(t, []int{1, 2, 1, 3, 1, 0}, kinds)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`
rules:
  - pattern: 'x'
    tokn: OOPS
tokens:
  '$': 0
`))
	require.Error(t, err)
}

func TestBuildStartConditions(t *testing.T) {
	def, err := Parse([]byte(`
rules:
  - pattern: '"'
    begin: STRING
  - pattern: '[a-z]+'
    token: WORD
  - pattern: '[^"]+'
    token: CHARS
  - pattern: '"'
    pop: true
startConditions:
  INITIAL: [0, 1]
  STRING: [2, 3]
tokens:
  '$': 0
  WORD: 1
  CHARS: 2
`))
	require.NoError(t, err)

	table, err := def.Build(nil)
	require.NoError(t, err)

	l, err := lexer.New(table)
	require.NoError(t, err)

	tokens := scanAll(t, l.Init(`ab"cd"ef`))
	require.Len(t, tokens, 4)
	assert.Equal(t, "ab", tokens[0].Text)
	assert.Equal(t, 1, tokens[0].Kind)
	assert.Equal(t, "cd", tokens[1].Text)
	assert.Equal(t, 2, tokens[1].Kind)
	assert.Equal(t, "ef", tokens[2].Text)
	assert.Equal(t, 1, tokens[2].Kind)
	assert.Equal(t, 0, tokens[3].Kind)
}

func TestBuildRegisteredHandler(t *testing.T) {
	def, err := Parse([]byte(`
rules:
  - pattern: '\d+'
    handler: number
tokens:
  '$': 0
  NUMBER: 1
`))
	require.NoError(t, err)

	registry := Registry{
		"number": func(l *lexer.Lexer) string {
			l.SetText("#" + l.Text())
			return "NUMBER"
		},
	}
	table, err := def.Build(registry)
	require.NoError(t, err)

	l, err := lexer.New(table)
	require.NoError(t, err)

	token, err := l.Init("42").NextToken()
	require.NoError(t, err)
	assert.Equal(t, "#42", token.Text)
	assert.Equal(t, 1, token.Kind)
}

func TestBuildCustomEOFType(t *testing.T) {
	def, err := Parse([]byte(`
rules:
  - pattern: '\d+'
    token: NUMBER
tokens:
  EOF: 0
  NUMBER: 1
eofType: EOF
`))
	require.NoError(t, err)

	table, err := def.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, "EOF", table.EOFType())
}

// A begin action may also emit a token: the state switches first, then the
// token goes out.
func TestBuildBeginWithToken(t *testing.T) {
	def, err := Parse([]byte(`
rules:
  - pattern: '/\*'
    begin: COMMENT
    token: COMMENT_OPEN
  - pattern: '[^*]+'
    skip: true
  - pattern: '\*/'
    pop: true
    token: COMMENT_CLOSE
startConditions:
  INITIAL: [0]
  COMMENT: [1, 2]
tokens:
  '$': 0
  COMMENT_OPEN: 1
  COMMENT_CLOSE: 2
`))
	require.NoError(t, err)

	table, err := def.Build(nil)
	require.NoError(t, err)

	l, err := lexer.New(table)
	require.NoError(t, err)

	tokens := scanAll(t, l.Init("/* note */"))
	require.Len(t, tokens, 3)
	assert.Equal(t, 1, tokens[0].Kind)
	assert.Equal(t, 2, tokens[1].Kind)
	assert.Equal(t, lexer.DefaultState, l.CurrentState())
}

func TestBuildRejectsMalformedRules(t *testing.T) {
	tests := []struct {
		name    string
		rule    string
		errText string
	}{
		{
			name:    "no action",
			rule:    "  - pattern: 'x'",
			errText: "no action",
		},
		{
			name: "token conflicts with skip",
			rule: `  - pattern: 'x'
    token: X
    skip: true`,
			errText: "conflicts with skip",
		},
		{
			name: "begin conflicts with pop",
			rule: `  - pattern: 'x'
    begin: S
    pop: true`,
			errText: "conflicts with pop",
		},
		{
			name: "handler excludes inline actions",
			rule: `  - pattern: 'x'
    handler: h
    token: X`,
			errText: "excludes inline actions",
		},
		{
			name: "unregistered handler",
			rule: `  - pattern: 'x'
    handler: nope`,
			errText: "not registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := Parse([]byte("rules:\n" + tt.rule + "\ntokens:\n  '$': 0\n"))
			require.NoError(t, err)

			_, err = def.Build(Registry{"h": func(*lexer.Lexer) string { return "X" }})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

// Table-level defects surface through Build as well.
func TestBuildPropagatesTableValidation(t *testing.T) {
	def, err := Parse([]byte(`
rules:
  - pattern: '['
    token: X
tokens:
  '$': 0
  X: 1
`))
	require.NoError(t, err)

	_, err = def.Build(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}
