package compiler

import (
	"fmt"
	"strconv"

	"github.com/probelab/pal/errors"
	"github.com/probelab/pal/object"
	"github.com/probelab/pal/op"
	"github.com/probelab/pal/token"
)

// precedence orders the binding powers of the grammar, lowest first.
// Assignment is only recognized while parsing at the assign level or
// below, which is how "a + b = c" gets rejected.
type precedence int

const (
	precNone precedence = iota
	precDeclaration
	precStatement
	precGroup
	precAssign
	precComparison
	precTerm
	precExponent
	precPrefix
	precCall
)

// A prefixParser compiles a token that begins an expression. The
// canAssign flag carries whether an assignment target is legal at this
// binding power.
type prefixParser func(c *compiler, tok token.Token, canAssign bool)

// An infixParser compiles a token that continues an expression, with
// the left operand already compiled onto the stack.
type infixParser func(c *compiler, tok token.Token, canAssign bool)

type infixEntry struct {
	parse infixParser
	prec  precedence
}

var (
	prefixParsers map[token.Type]prefixParser
	infixParsers  map[token.Type]infixEntry
)

// The rule tables are filled at init time: the parse functions recurse
// through expression back into the tables.
func init() {
	prefixParsers = map[token.Type]prefixParser{
		token.NUM:       parseNumber,
		token.HEX:       parseNumber,
		token.BIN:       parseNumber,
		token.STRING:    parseString,
		token.PATH:      parsePath,
		token.IDENT:     parseIdent,
		token.MINUS:     parseUnary,
		token.BANG:      parseUnary,
		token.LPAREN:    parseGroup,
		token.LBRACKET:  parseList,
		token.TRUE:      parseLiteral,
		token.FALSE:     parseLiteral,
		token.VOID:      parseLiteral,
		token.DRIFT:     parseCorrection,
		token.EMISSION:  parseCorrection,
		token.FOCUS:     parseCorrection,
		token.MANHATTAN: parseAlgorithm,
		token.EUCLIDEAN: parseAlgorithm,
		token.MINKOWSKI: parseAlgorithm,
	}
	infixParsers = map[token.Type]infixEntry{
		token.CARET:     {parseBinary, precExponent},
		token.MINUS:     {parseBinary, precTerm},
		token.PLUS:      {parseBinary, precTerm},
		token.PIPE:      {parseBinary, precTerm},
		token.EQ:        {parseBinary, precComparison},
		token.NOT_EQ:    {parseBinary, precComparison},
		token.LT:        {parseBinary, precComparison},
		token.GT:        {parseBinary, precComparison},
		token.LT_EQUALS: {parseBinary, precComparison},
		token.GT_EQUALS: {parseBinary, precComparison},
		token.QUESTION:  {parseOutput, precPrefix},
		token.LPAREN:    {parseCall, precCall},
		token.DOT:       {parseField, precCall},
	}
}

func infixPrecedence(t token.Type) precedence {
	if entry, ok := infixParsers[t]; ok {
		return entry.prec
	}
	return precNone
}

// expression compiles an expression whose operators all bind tighter
// than p. The entry token supplies the prefix rule; infix rules then
// extend the expression while their precedence beats p.
func (c *compiler) expression(p precedence) {
	tok := c.advance()
	if tok.Type == token.ILLEGAL {
		c.errorAt(tok, scanErrorCode(tok.Literal), tok.Literal)
		return
	}
	if tok.Type == token.EOF || tok.Type == token.EOL {
		c.errorAt(tok, errors.ErrUnexpectedToken, "Expected expression")
		return
	}
	prefix, ok := prefixParsers[tok.Type]
	if !ok {
		c.errorAt(tok, errors.ErrUnknownExpression,
			fmt.Sprintf("Unknown expression '%s'", displayName(tok)))
		return
	}
	canAssign := p <= precAssign
	prefix(c, tok, canAssign)
	for p < infixPrecedence(c.peek().Type) {
		tok = c.advance()
		infixParsers[tok.Type].parse(c, tok, canAssign)
		if canAssign && c.match(token.ASSIGN) {
			c.errorAtPrevious(errors.ErrInvalidAssignment, "Invalid assignment target")
		}
	}
}

// scanErrorCode classifies a scan diagnostic carried by an illegal
// token.
func scanErrorCode(message string) errors.ErrorCode {
	switch message {
	case "Unterminated string":
		return errors.ErrUnterminatedString
	case "Unterminated path":
		return errors.ErrUnterminatedPath
	case "Expected numerical literal":
		return errors.ErrMalformedNumber
	default:
		return errors.ErrUnknownSymbol
	}
}

func parseNumber(c *compiler, tok token.Token, _ bool) {
	var value float64
	switch tok.Type {
	case token.HEX:
		n, _ := strconv.ParseUint(tok.Literal, 16, 64)
		value = float64(n)
	case token.BIN:
		n, _ := strconv.ParseUint(tok.Literal, 2, 64)
		value = float64(n)
	default:
		value, _ = strconv.ParseFloat(tok.Literal, 64)
	}
	c.emitConstant(object.NewNumber(value))
}

func parseString(c *compiler, tok token.Token, _ bool) {
	c.emitConstant(object.NewString(tok.Literal))
}

func parsePath(c *compiler, tok token.Token, _ bool) {
	c.emitConstant(object.NewPath(tok.Literal))
}

func parseCorrection(c *compiler, tok token.Token, _ bool) {
	c.emitConstant(object.NewCorrection(tok.Literal))
}

func parseAlgorithm(c *compiler, tok token.Token, _ bool) {
	c.emitConstant(object.NewAlgorithm(tok.Literal))
}

func parseLiteral(c *compiler, tok token.Token, _ bool) {
	switch tok.Type {
	case token.TRUE:
		c.emit(op.True)
	case token.FALSE:
		c.emit(op.False)
	case token.VOID:
		c.emit(op.Null)
	}
}

// parseUnary compiles the operand at prefix precedence, so unary
// operators bind tighter than any binary operator.
func parseUnary(c *compiler, tok token.Token, _ bool) {
	c.expression(precPrefix)
	if tok.Type == token.MINUS {
		c.emit(op.Negate)
	} else {
		c.emit(op.Invert)
	}
}

func parseGroup(c *compiler, tok token.Token, _ bool) {
	c.expression(precNone)
	c.consume(token.RPAREN, errors.ErrUnclosedBlock, "Expected ')' to end grouping")
}

// parseList loads an empty array constant and appends each element to
// the loaded copy as it is compiled.
func parseList(c *compiler, tok token.Token, _ bool) {
	index := c.addConstant(object.NewArray())
	c.emit(op.Constant, op.Code(index))
	for !c.match(token.RBRACKET) {
		c.expression(precNone)
		c.emit(op.DefElem, op.Code(index))
		if !c.check(token.RBRACKET) {
			c.consume(token.COMMA, errors.ErrMissingSeparator, "Expected ',' between elements")
		}
		if c.check(token.EOF) {
			break
		}
	}
}

func parseIdent(c *compiler, tok token.Token, canAssign bool) {
	c.namedVariable(tok, canAssign)
}

// namedVariable compiles a read of the named variable, or a write when
// an assignment follows and is legal here.
func (c *compiler) namedVariable(tok token.Token, canAssign bool) {
	get, set := op.GetLocal, op.SetLocal
	operand := c.resolveLocal(tok)
	if operand == -1 {
		operand = c.addConstant(object.NewString(tok.Literal))
		get, set = op.GetGlobal, op.SetGlobal
	}
	if canAssign && c.match(token.ASSIGN) {
		c.expression(precNone)
		c.emit(set, op.Code(operand))
	} else {
		c.emit(get, op.Code(operand))
	}
}

// parseBinary compiles the right operand at the operator's own
// precedence, making every binary operator left associative.
func parseBinary(c *compiler, tok token.Token, _ bool) {
	c.expression(infixPrecedence(tok.Type))
	switch tok.Type {
	case token.CARET:
		c.emit(op.Power)
	case token.PLUS:
		c.emit(op.Add)
	case token.MINUS:
		c.emit(op.Sub)
	case token.PIPE:
		c.emit(op.Mix)
	case token.EQ:
		c.emit(op.Equal)
	case token.NOT_EQ:
		c.emit(op.Equal, op.Invert)
	case token.LT:
		c.emit(op.Less)
	case token.GT:
		c.emit(op.More)
	case token.LT_EQUALS:
		c.emit(op.More, op.Invert)
	case token.GT_EQUALS:
		c.emit(op.Less, op.Invert)
	}
}

// parseOutput prints the value on the stack top without consuming it,
// so the printed expression can keep composing.
func parseOutput(c *compiler, tok token.Token, _ bool) {
	c.emit(op.Print)
}

func parseCall(c *compiler, tok token.Token, _ bool) {
	count := 0
	for !c.match(token.RPAREN) {
		c.expression(precNone)
		count++
		if !c.check(token.RPAREN) {
			c.consume(token.COMMA, errors.ErrMissingSeparator, "Expected ',' between arguments")
		}
		if c.check(token.EOF) {
			break
		}
	}
	c.emit(op.Call, op.Code(count))
}

func parseField(c *compiler, tok token.Token, _ bool) {
	name := c.consume(token.IDENT, errors.ErrUnexpectedToken, "Expected field name")
	c.emit(op.GetField, op.Code(c.addConstant(object.NewString(name.Literal))))
}

// displayNames carry the names the language has always used for its
// tokens in diagnostics.
var displayNames = map[token.Type]string{
	token.ILLEGAL:   "PAL_ERR",
	token.EOL:       "PAL_EOL",
	token.EOF:       "PAL_EOF",
	token.IDENT:     "PAL_IDENTIFIER",
	token.NUM:       "PAL_NUM",
	token.HEX:       "PAL_HEX",
	token.BIN:       "PAL_BIN",
	token.STRING:    "PAL_STRING",
	token.PATH:      "PAL_PATH",
	token.ASSIGN:    "PAL_ASSIGN",
	token.QUESTION:  "PAL_OUTPUT",
	token.MINUS:     "PAL_NEG",
	token.BANG:      "PAL_INV",
	token.CARET:     "PAL_POW",
	token.PLUS:      "PAL_PLUS",
	token.PIPE:      "PAL_COMBINE",
	token.EQ:        "PAL_EQ",
	token.NOT_EQ:    "PAL_NEQ",
	token.LT:        "PAL_LT",
	token.GT:        "PAL_GT",
	token.LT_EQUALS: "PAL_LTE",
	token.GT_EQUALS: "PAL_GTE",
	token.COMMA:     "PAL_SEPARATE",
	token.DOT:       "PAL_ACCESS",
	token.LPAREN:    "PAL_START_CALL",
	token.RPAREN:    "PAL_END_CALL",
	token.LBRACKET:  "PAL_START_LIST",
	token.RBRACKET:  "PAL_END_LIST",
	token.LBRACE:    "PAL_START_BLOCK",
	token.RBRACE:    "PAL_END_BLOCK",
	token.SURVEY:    "PAL_KEYWORD_SURVEY",
	token.SEGMENT:   "PAL_KEYWORD_SEGMENT",
	token.FILTER:    "PAL_KEYWORD_FILTER",
	token.INTERACT:  "PAL_KEYWORD_INTERACT",
	token.MANAGE:    "PAL_KEYWORD_MANAGE",
	token.DEEPSCAN:  "PAL_KEYWORD_SCAN",
	token.DRIFT:     "PAL_KEYWORD_D_CORRECT",
	token.EMISSION:  "PAL_KEYWORD_E_CORRECT",
	token.FOCUS:     "PAL_KEYWORD_F_CORRECT",
	token.MANHATTAN: "PAL_KEYWORD_L1_NORM",
	token.EUCLIDEAN: "PAL_KEYWORD_L2_NORM",
	token.MINKOWSKI: "PAL_KEYWORD_LP_NORM",
	token.TRUE:      "PAL_KEYWORD_ON",
	token.FALSE:     "PAL_KEYWORD_OFF",
	token.VOID:      "PAL_KEYWORD_NULL",
	token.VAR:       "PAL_KEYWORD_VAR_DEF",
	token.FUNC:      "PAL_KEYWORD_FUNC_DEF",
	token.ITER:      "PAL_KEYWORD_GEN_DEF",
	token.NAMESPACE: "PAL_KEYWORD_ENUM_DEF",
	token.FOR:       "PAL_KEYWORD_LOOP_RANGE",
	token.FOREACH:   "PAL_KEYWORD_LOOP_ITER",
	token.WAIT:      "PAL_KEYWORD_DELAY",
	token.RETURN:    "PAL_KEYWORD_EXIT",
}

func displayName(tok token.Token) string {
	if name, ok := displayNames[tok.Type]; ok {
		return name
	}
	return "PAL_" + string(tok.Type)
}
