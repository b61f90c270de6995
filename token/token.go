// Package token defines the tokens produced by the PAL lexer.
package token

import "fmt"

// Type describes the type of a token as a string.
type Type string

// Token types.
const (
	// ILLEGAL carries a lexer error; Literal holds the message.
	ILLEGAL Type = "ILLEGAL"

	// EOL marks the end of a statement. Consecutive newlines in the
	// source collapse into a single EOL token.
	EOL Type = "EOL"
	EOF Type = "EOF"

	// Identifiers and literals
	IDENT  Type = "IDENT"
	NUM    Type = "NUM"
	HEX    Type = "HEX"
	BIN    Type = "BIN"
	STRING Type = "STRING"
	PATH   Type = "PATH"

	// Operators
	ASSIGN    Type = "="
	QUESTION  Type = "?"
	MINUS     Type = "-"
	BANG      Type = "!"
	CARET     Type = "^"
	PLUS      Type = "+"
	PIPE      Type = "|"
	EQ        Type = "=="
	NOT_EQ    Type = "!="
	LT        Type = "<"
	GT        Type = ">"
	LT_EQUALS Type = "<="
	GT_EQUALS Type = ">="

	// Delimiters
	COMMA    Type = ","
	DOT      Type = "."
	LPAREN   Type = "("
	RPAREN   Type = ")"
	LBRACKET Type = "["
	RBRACKET Type = "]"
	LBRACE   Type = "{"
	RBRACE   Type = "}"

	// Keywords
	VAR       Type = "VAR"
	FUNC      Type = "FUNC"
	ITER      Type = "ITER"
	NAMESPACE Type = "NAMESPACE"
	FOR       Type = "FOR"
	FOREACH   Type = "FOREACH"
	WAIT      Type = "WAIT"
	RETURN    Type = "RETURN"
	TRUE      Type = "TRUE"
	FALSE     Type = "FALSE"
	VOID      Type = "VOID"

	// Instrument action keywords
	SURVEY   Type = "SURVEY"   // Scan
	SEGMENT  Type = "SEGMENT"  // Cluster
	FILTER   Type = "FILTER"   // filter
	INTERACT Type = "INTERACT" // Mark
	MANAGE   Type = "MANAGE"   // Tighten
	DEEPSCAN Type = "DEEPSCAN" // Search

	// Correction keywords
	DRIFT    Type = "DRIFT"
	EMISSION Type = "EMISSION"
	FOCUS    Type = "FOCUS"

	// Algorithm keywords
	MANHATTAN Type = "MANHATTAN"
	EUCLIDEAN Type = "EUCLIDEAN"
	MINKOWSKI Type = "MINKOWSKI"
)

// Token is one token as emitted by the lexer. Literal holds the matched
// text with string and path quotes stripped. Line and Column are 1-based
// and refer to the token's first character.
type Token struct {
	Type    Type
	Literal string
	Line    int
	Column  int
}

// Position renders the token's source position as "line:column".
func (t Token) Position() string {
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}

// keywords maps PAL's reserved words to their token types. Lookups are
// case-sensitive.
var keywords = map[string]Type{
	"var":       VAR,
	"func":      FUNC,
	"iter":      ITER,
	"namespace": NAMESPACE,
	"for":       FOR,
	"foreach":   FOREACH,
	"wait":      WAIT,
	"return":    RETURN,
	"true":      TRUE,
	"false":     FALSE,
	"void":      VOID,
	"Scan":      SURVEY,
	"Cluster":   SEGMENT,
	"filter":    FILTER,
	"Mark":      INTERACT,
	"Tighten":   MANAGE,
	"Search":    DEEPSCAN,
	"drift":     DRIFT,
	"emission":  EMISSION,
	"focus":     FOCUS,
	"Manhattan": MANHATTAN,
	"Euclidean": EUCLIDEAN,
	"Minkowski": MINKOWSKI,
}

// LookupIdentifier checks our keywords map for the given identifier and
// returns the keyword type, or IDENT.
func LookupIdentifier(identifier string) Type {
	if t, ok := keywords[identifier]; ok {
		return t
	}
	return IDENT
}
