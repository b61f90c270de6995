// Package lexer provides a scanner that turns PAL source code into tokens.
//
// The scanner works a character at a time and never raises: malformed
// input is reported as ILLEGAL tokens whose Literal holds the message,
// leaving error presentation to the compiler.
package lexer

import (
	"fmt"
	"unicode"

	"github.com/probelab/pal/token"
)

// Lexer scans PAL source code and emits one token per NextToken call.
type Lexer struct {
	source []rune
	pos    int
	line   int
	column int
}

// New returns a Lexer positioned at the start of the given source.
func New(source string) *Lexer {
	return &Lexer{source: []rune(source), line: 1}
}

// Tokenize scans the entire source and returns the token slice,
// including the trailing EOF token.
func Tokenize(source string) []token.Token {
	l := New(source)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

// NextToken returns the next token in the source. Runs of newlines
// collapse into a single EOL token positioned at the last newline of
// the run. After the source is exhausted every call returns EOF.
func (l *Lexer) NextToken() token.Token {
	if eol, ok := l.skipSpace(); ok {
		return eol
	}
	if l.finished() {
		// A trailing newline already moved l.line past the last line of
		// text, so only bump it when the cursor sits mid-line.
		line := l.line
		if l.column > 0 {
			line++
		}
		return token.Token{Type: token.EOF, Line: line, Column: 0}
	}
	ch := l.read()
	line, column := l.line, l.column
	switch {
	case isWordStart(ch):
		return l.word(ch, line, column)
	case isDigit(ch):
		return l.number(ch, line, column)
	case ch == '"':
		return l.delimited(token.STRING, '"', "Unterminated string", line, column)
	case ch == '\'':
		return l.delimited(token.PATH, '\'', "Unterminated path", line, column)
	case ch == '\\':
		return l.baseNumber(line, column)
	}
	return l.symbol(ch, line, column)
}

func (l *Lexer) finished() bool {
	return l.pos >= len(l.source)
}

// read consumes one character, advancing the column counter.
func (l *Lexer) read() rune {
	ch := l.source[l.pos]
	l.pos++
	l.column++
	return ch
}

// peek looks at the next character without consuming it. Returns 0 at
// the end of the source.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

// skipSpace consumes spaces, carriage returns, tabs, and newlines. A
// tab counts as four columns. If any newlines were consumed the
// collapsed EOL token is returned with ok set.
func (l *Lexer) skipSpace() (eol token.Token, ok bool) {
	for !l.finished() {
		switch l.peek() {
		case ' ', '\r':
			l.read()
		case '\t':
			l.read()
			l.column += 3
		case '\n':
			l.read()
			eol = token.Token{Type: token.EOL, Literal: "\n", Line: l.line, Column: l.column}
			ok = true
			l.line++
			l.column = 0
		default:
			return eol, ok
		}
	}
	return eol, ok
}

func (l *Lexer) word(start rune, line, column int) token.Token {
	letters := []rune{start}
	for isWordPart(l.peek()) {
		letters = append(letters, l.read())
	}
	literal := string(letters)
	return token.Token{
		Type:    token.LookupIdentifier(literal),
		Literal: literal,
		Line:    line,
		Column:  column,
	}
}

// number scans a decimal literal with at most one fraction point. The
// point is consumed even when no digits follow it, so "3." is a single
// NUM token.
func (l *Lexer) number(start rune, line, column int) token.Token {
	digits := []rune{start}
	dot := false
	for {
		ch := l.peek()
		if isDigit(ch) || (ch == '.' && !dot) {
			if ch == '.' {
				dot = true
			}
			digits = append(digits, l.read())
			continue
		}
		break
	}
	return token.Token{Type: token.NUM, Literal: string(digits), Line: line, Column: column}
}

// baseNumber scans a hex or binary literal after its leading backslash.
// The Literal carries the digits only; the compiler converts them.
func (l *Lexer) baseNumber(line, column int) token.Token {
	var kind token.Type
	var allowed func(rune) bool
	switch l.peek() {
	case 'x', 'X':
		kind, allowed = token.HEX, isHexDigit
	case 'b', 'B':
		kind, allowed = token.BIN, isBinDigit
	default:
		return l.illegal(fmt.Sprintf("Unknown symbol '%c'", '\\'), line, column)
	}
	l.read()
	var digits []rune
	for allowed(l.peek()) {
		digits = append(digits, l.read())
	}
	if len(digits) == 0 {
		return l.illegal("Expected numerical literal", line, column)
	}
	return token.Token{Type: kind, Literal: string(digits), Line: line, Column: column}
}

// delimited scans a string or path literal up to the closing delimiter.
// There are no escape sequences. Newlines inside the literal are kept
// and advance the line counter.
func (l *Lexer) delimited(kind token.Type, match rune, unterminated string, line, column int) token.Token {
	var letters []rune
	for !l.finished() && l.peek() != match {
		ch := l.read()
		if ch == '\n' {
			l.line++
			l.column = 0
		}
		letters = append(letters, ch)
	}
	if l.finished() {
		return l.illegal(unterminated, line, column)
	}
	l.read()
	return token.Token{Type: kind, Literal: string(letters), Line: line, Column: column}
}

// symbol matches operator and delimiter tokens, longest first.
func (l *Lexer) symbol(ch rune, line, column int) token.Token {
	var kind token.Type
	switch ch {
	case '=':
		kind = token.ASSIGN
		if l.peek() == '=' {
			l.read()
			kind = token.EQ
		}
	case '!':
		kind = token.BANG
		if l.peek() == '=' {
			l.read()
			kind = token.NOT_EQ
		}
	case '<':
		kind = token.LT
		if l.peek() == '=' {
			l.read()
			kind = token.LT_EQUALS
		}
	case '>':
		kind = token.GT
		if l.peek() == '=' {
			l.read()
			kind = token.GT_EQUALS
		}
	case ',':
		kind = token.COMMA
	case '.':
		kind = token.DOT
	case '?':
		kind = token.QUESTION
	case '(':
		kind = token.LPAREN
	case ')':
		kind = token.RPAREN
	case '[':
		kind = token.LBRACKET
	case ']':
		kind = token.RBRACKET
	case '{':
		kind = token.LBRACE
	case '}':
		kind = token.RBRACE
	case '-':
		kind = token.MINUS
	case '^':
		kind = token.CARET
	case '+':
		kind = token.PLUS
	case '|':
		kind = token.PIPE
	default:
		return l.illegal(fmt.Sprintf("Unknown symbol '%c'", ch), line, column)
	}
	return token.Token{Type: kind, Literal: string(kind), Line: line, Column: column}
}

func (l *Lexer) illegal(message string, line, column int) token.Token {
	return token.Token{Type: token.ILLEGAL, Literal: message, Line: line, Column: column}
}

func isWordStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isWordPart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isBinDigit(ch rune) bool {
	return ch == '0' || ch == '1'
}
