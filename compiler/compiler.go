// Package compiler translates PAL source into bytecode in a single
// pass, with no syntax tree in between.
//
// # Single-Pass Strategy
//
// The compiler is a Pratt parser whose rules emit bytecode while they
// consume tokens: the read position in the token stream and the write
// position in the chunk advance together. Control flow is stitched up
// with placeholder jumps. A forward jump is emitted with operand
// Placeholder and recorded by index; once the target offset is known
// the operand is patched to the distance. Backward jumps know their
// target when emitted, so they need no patching.
//
// # Variable Scopes
//
// Script-level variables are globals, compiled to name lookups against
// the machine's global table. Everything declared inside a block or a
// function body is a local, resolved at compile time to a stack slot.
// Each function under compilation tracks its declared locals in order;
// resolving a name walks that list backward so the innermost
// declaration wins. Slot 0 of every call frame holds the callee, which
// is why user locals start at slot 1. A local is marked uninitialized
// while its own initializer compiles, which is how "var x = x" gets
// caught.
//
// # Error Recovery
//
// A syntax error records a diagnostic and switches the compiler into
// panic mode, which suppresses further diagnostics until the next
// statement boundary. Parsing itself continues, so a single run can
// report several distinct errors. The collected diagnostics are merged
// into one error value when Compile returns.
package compiler

import (
	"fmt"

	"github.com/probelab/pal/bytecode"
	"github.com/probelab/pal/errors"
	"github.com/probelab/pal/lexer"
	"github.com/probelab/pal/object"
	"github.com/probelab/pal/op"
	"github.com/probelab/pal/token"
)

// Placeholder fills the operand of a forward jump until its target is
// known. Every placeholder is patched before compilation returns.
const Placeholder = op.Code(0xFFFF)

type config struct {
	filename string
}

// Option is a configuration function used with Compile.
type Option func(*config)

// WithFilename attaches a filename to compile errors, for diagnostics.
func WithFilename(name string) Option {
	return func(cfg *config) {
		cfg.filename = name
	}
}

// Compile translates PAL source into the bytecode function for its top
// level script. On failure the returned error wraps one
// *errors.CompileError per reported diagnostic.
func Compile(source string, opts ...Option) (*bytecode.Function, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &compiler{
		tokens:  lexer.Tokenize(source),
		current: newFuncScope(nil, scriptFunc, ""),
	}
	for !c.check(token.EOF) {
		c.buffer()
		c.declaration()
	}
	fn := c.pop()
	if c.errs.HasErrors() {
		c.errs.AttachSource(cfg.filename, source)
		return nil, c.errs.ToError()
	}
	return fn, nil
}

type funcKind int

const (
	scriptFunc funcKind = iota
	functionFunc
	generatorFunc
)

// local is one declared local variable. Its slot is its index in the
// scope's locals list. Depth -1 marks a variable whose initializer is
// still being compiled.
type local struct {
	name  string
	depth int
}

// funcScope is the per-function compile state: the chunk being emitted
// into, the locals declared so far, and the current block depth.
// Scopes form a stack through enclosing while nested declarations
// compile.
type funcScope struct {
	enclosing *funcScope
	kind      funcKind
	name      string
	arity     int
	chunk     *bytecode.Chunk
	locals    []local
	depth     int
}

func newFuncScope(enclosing *funcScope, kind funcKind, name string) *funcScope {
	fs := &funcScope{
		enclosing: enclosing,
		kind:      kind,
		name:      name,
		chunk:     bytecode.NewChunk(),
	}
	// Slot 0 of every frame belongs to the callee.
	fs.locals = append(fs.locals, local{})
	if kind != scriptFunc {
		fs.depth = 1
	}
	return fs
}

// mark flags the most recent local as initialized. At script depth
// there are no locals to mark.
func (fs *funcScope) mark() {
	if fs.depth == 0 {
		return
	}
	fs.locals[len(fs.locals)-1].depth = fs.depth
}

type compiler struct {
	tokens    []token.Token
	pos       int
	current   *funcScope
	errs      errors.CompileErrors
	panicMode bool
}

// at reads the token at index i. Out-of-range reads resolve to the
// final token, which the lexer guarantees is EOF.
func (c *compiler) at(i int) token.Token {
	if i < 0 || i >= len(c.tokens) {
		return c.tokens[len(c.tokens)-1]
	}
	return c.tokens[i]
}

func (c *compiler) peek() token.Token {
	return c.at(c.pos)
}

func (c *compiler) previous() token.Token {
	return c.at(c.pos - 1)
}

func (c *compiler) advance() token.Token {
	c.pos++
	return c.previous()
}

func (c *compiler) check(t token.Type) bool {
	return c.peek().Type == t
}

func (c *compiler) match(t token.Type) bool {
	if c.check(t) {
		c.advance()
		return true
	}
	return false
}

// consume advances past a token of the wanted type, or reports message
// at the current token and leaves it unconsumed.
func (c *compiler) consume(t token.Type, code errors.ErrorCode, message string) token.Token {
	if c.check(t) {
		return c.advance()
	}
	c.errorAtCurrent(code, message)
	return c.peek()
}

// buffer skips over any run of newline tokens.
func (c *compiler) buffer() {
	for c.check(token.EOL) {
		c.advance()
	}
}

func (c *compiler) errorAt(tok token.Token, code errors.ErrorCode, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.errs.Add(&errors.CompileError{
		Code:    code,
		Message: message,
		Line:    tok.Line,
		Column:  tok.Column,
		AtEnd:   tok.Type == token.EOF,
	})
}

func (c *compiler) errorAtCurrent(code errors.ErrorCode, message string) {
	c.errorAt(c.peek(), code, message)
}

func (c *compiler) errorAtPrevious(code errors.ErrorCode, message string) {
	c.errorAt(c.previous(), code, message)
}

// sync discards tokens until a statement boundary so that parsing can
// resume after a syntax error.
func (c *compiler) sync() {
	c.panicMode = false
	for !c.check(token.EOF) {
		if c.previous().Type == token.EOL {
			return
		}
		switch c.peek().Type {
		case token.SURVEY, token.SEGMENT, token.FILTER, token.INTERACT,
			token.MANAGE, token.DEEPSCAN, token.VAR, token.FUNC,
			token.ITER, token.FOR, token.FOREACH, token.WAIT,
			token.RETURN:
			return
		}
		c.advance()
	}
}

func (c *compiler) chunk() *bytecode.Chunk {
	return c.current.chunk
}

// emit writes cells to the current chunk, tagged with the location of
// the token just consumed.
func (c *compiler) emit(cells ...op.Code) {
	prev := c.previous()
	loc := bytecode.SourceLocation{Line: prev.Line, Column: prev.Column}
	for _, cell := range cells {
		c.chunk().Write(cell, loc)
	}
}

func (c *compiler) addConstant(value object.Value) int {
	return c.chunk().AddConstant(value)
}

// emitConstant adds value to the pool and emits the load for it.
func (c *compiler) emitConstant(value object.Value) {
	c.emit(op.Constant, op.Code(c.addConstant(value)))
}

// emitJump emits a forward jump with a placeholder operand and returns
// the operand's index for patchJump.
func (c *compiler) emitJump(instruction op.Code) int {
	c.emit(instruction, Placeholder)
	return c.chunk().Len() - 1
}

// patchJump points the jump operand at index to the current end of the
// chunk. The machine resolves forward targets as operand+2 cells past
// the opcode, measured from the opcode itself, which is index-1 here.
func (c *compiler) patchJump(index int) {
	c.chunk().SetAt(index, op.Code(c.chunk().Len()-index-1))
}

// emitLoop emits a backward jump to the chunk offset start.
func (c *compiler) emitLoop(start int) {
	c.emit(op.Loop, op.Code(c.chunk().Len()-start+2))
}

// emitReturn emits the implicit result for a bare or implicit return.
func (c *compiler) emitReturn(instruction op.Code) {
	c.emit(op.Null, instruction)
}

// pop finishes the function under compilation, appends its implicit
// return, and resumes the enclosing scope. A generator's implicit end
// is a plain return, which the machine reads as exhaustion.
func (c *compiler) pop() *bytecode.Function {
	if c.current.kind == generatorFunc {
		c.emit(op.Return)
	} else {
		c.emitReturn(op.Return)
	}
	fn := bytecode.NewFunction(c.current.name, c.current.arity, c.current.chunk)
	c.current = c.current.enclosing
	return fn
}

func (c *compiler) beginScope() {
	c.current.depth++
}

// endScope drops the scope's locals, emitting one POP per slot.
func (c *compiler) endScope() {
	c.current.depth--
	for len(c.current.locals) > 0 &&
		c.current.locals[len(c.current.locals)-1].depth > c.current.depth {
		c.emit(op.Pop)
		c.current.locals = c.current.locals[:len(c.current.locals)-1]
	}
}

// declareVariable records the name just consumed as a new local. At
// script depth globals are late bound, so there is nothing to declare.
func (c *compiler) declareVariable() {
	if c.current.depth == 0 {
		return
	}
	name := c.previous()
	for i := len(c.current.locals) - 1; i >= 0; i-- {
		l := c.current.locals[i]
		if l.depth != -1 && l.depth < c.current.depth {
			break
		}
		if l.name == name.Literal {
			c.errorAtPrevious(errors.ErrDuplicateVariable,
				fmt.Sprintf("Already a variable called '%s' in this scope", name.Literal))
		}
	}
	c.current.locals = append(c.current.locals, local{name: name.Literal, depth: -1})
}

// parseVariable consumes a variable name and declares it, returning
// the constant pool index of the name for globals and 0 for locals.
func (c *compiler) parseVariable(message string) int {
	name := c.consume(token.IDENT, errors.ErrUnexpectedToken, message)
	c.declareVariable()
	if c.current.depth > 0 {
		return 0
	}
	return c.addConstant(object.NewString(name.Literal))
}

// defineVariable makes the declared variable visible: locals become
// readable, globals are bound by name.
func (c *compiler) defineVariable(nameConstant int) {
	if c.current.depth > 0 {
		c.current.mark()
		return
	}
	c.emit(op.DefGlobal, op.Code(nameConstant))
}

// resolveLocal finds the slot of a local by name, walking the declared
// locals innermost first. Returns -1 when the name is not a local.
func (c *compiler) resolveLocal(tok token.Token) int {
	for i := len(c.current.locals) - 1; i >= 0; i-- {
		l := c.current.locals[i]
		if l.name == tok.Literal {
			if l.depth == -1 {
				c.errorAtPrevious(errors.ErrSelfReference,
					"Cannot read local variable in its own initializer")
			}
			return i
		}
	}
	return -1
}

// declaration compiles one statement and its terminating newline,
// then resynchronizes if the statement left the compiler panicking.
func (c *compiler) declaration() {
	c.statement()
	if !c.check(token.EOF) {
		c.consume(token.EOL, errors.ErrMissingSeparator, `Expected a '\n' between statements`)
	}
	if c.panicMode {
		c.sync()
	}
}

func (c *compiler) statement() {
	switch c.peek().Type {
	case token.VAR:
		c.advance()
		c.varDeclaration()
	case token.FOR:
		c.advance()
		c.forStatement()
	case token.FOREACH:
		c.advance()
		c.foreachStatement()
	case token.FUNC:
		c.advance()
		c.funcDeclaration(functionFunc)
	case token.ITER:
		c.advance()
		c.funcDeclaration(generatorFunc)
	case token.NAMESPACE:
		c.advance()
		c.enumDeclaration()
	case token.WAIT:
		c.advance()
		c.waitStatement()
	case token.RETURN:
		c.advance()
		c.returnStatement()
	case token.SURVEY:
		c.advance()
		c.emit(op.Scan)
	case token.SEGMENT:
		c.advance()
		c.emit(op.Cluster)
	case token.FILTER:
		c.advance()
		c.emit(op.Filter)
	case token.INTERACT:
		c.advance()
		c.emit(op.Mark)
	case token.MANAGE:
		c.advance()
		c.emit(op.Tighten)
	case token.DEEPSCAN:
		c.advance()
		c.emit(op.Search)
	default:
		c.expression(precNone)
		c.emit(op.Pop)
	}
}

// block compiles statements up to the closing brace. The brace must
// sit on its own line; buffer keeps blank lines from reading as empty
// statements.
func (c *compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.buffer()
		if c.check(token.RBRACE) || c.check(token.EOF) {
			break
		}
		c.declaration()
	}
	c.consume(token.RBRACE, errors.ErrUnclosedBlock, "Expected '}' to end a block")
}

func (c *compiler) varDeclaration() {
	nameConstant := c.parseVariable("Expected variable name")
	c.consume(token.ASSIGN, errors.ErrUnexpectedToken, "Expected '=' to assign values to variables")
	c.expression(precNone)
	c.defineVariable(nameConstant)
}

// loopInit compiles the mandatory "var name = expr" clause shared by
// both loop forms. The variable is a local of the loop's scope.
func (c *compiler) loopInit() {
	c.consume(token.VAR, errors.ErrUnexpectedToken, "Expected 'var' for the loop variable")
	nameConstant := c.parseVariable("Expected loop variable name")
	c.consume(token.ASSIGN, errors.ErrUnexpectedToken, "Expected '=' to assign values to variables")
	c.expression(precNone)
	c.defineVariable(nameConstant)
}

func (c *compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, errors.ErrUnexpectedToken, "Expected '(' to start loop clauses")
	c.loopInit()
	c.consume(token.COMMA, errors.ErrMissingSeparator, "Expected ',' between clauses")

	start := c.chunk().Len()
	c.expression(precNone)
	c.consume(token.COMMA, errors.ErrMissingSeparator, "Expected ',' between clauses")
	exit := c.emitJump(op.FalseyJump)
	c.emit(op.Pop)

	// The increment clause compiles before the body but runs after it,
	// so the body is entered by jumping over the increment and each
	// iteration loops back to it.
	body := c.emitJump(op.AlwaysJump)
	increment := c.chunk().Len()
	c.expression(precNone)
	c.emit(op.Pop)
	c.consume(token.RPAREN, errors.ErrUnclosedBlock, "Expected ')' to end loop clauses")
	c.emitLoop(start)
	c.patchJump(body)

	c.consume(token.LBRACE, errors.ErrUnexpectedToken, "Expected '{' to begin a loop")
	c.block()
	c.emitLoop(increment)
	c.patchJump(exit)
	// The exit jump lands with the loop condition still on the stack.
	c.emit(op.Pop)
	c.endScope()
}

func (c *compiler) foreachStatement() {
	c.beginScope()
	c.consume(token.LPAREN, errors.ErrUnexpectedToken, "Expected '(' to start loop clauses")
	c.loopInit()
	// The loop variable was declared last, so it owns the top slot.
	slot := len(c.current.locals) - 1
	advance := c.chunk().Len()
	c.emit(op.Advance)
	c.emit(op.SetLocal, op.Code(slot))
	c.consume(token.RPAREN, errors.ErrUnclosedBlock, "Expected ')' to end loop clauses")
	c.consume(token.LBRACE, errors.ErrUnexpectedToken, "Expected '{' to begin a loop")
	c.block()
	c.emitLoop(advance)
	c.endScope()
}

func (c *compiler) funcDeclaration(kind funcKind) {
	if c.current.kind != scriptFunc {
		if kind == generatorFunc {
			c.errorAtPrevious(errors.ErrNestedDefinition, "Generator nesting is not supported")
		} else {
			c.errorAtPrevious(errors.ErrNestedDefinition, "Function nesting is not supported")
		}
		return
	}
	nameMessage := "Expected function name"
	if kind == generatorFunc {
		nameMessage = "Expected generator name"
	}
	nameConstant := c.parseVariable(nameMessage)
	c.current.mark()
	c.compileFunction(kind)
	c.defineVariable(nameConstant)
}

// compileFunction compiles a parameter list and body in a fresh scope,
// then loads the finished object as a constant in the enclosing chunk.
func (c *compiler) compileFunction(kind funcKind) {
	c.current = newFuncScope(c.current, kind, c.previous().Literal)
	c.consume(token.LPAREN, errors.ErrUnexpectedToken, "Expected '(' to start parameter definition")
	for !c.match(token.RPAREN) {
		c.current.arity++
		c.defineVariable(c.parseVariable("Expected parameter name"))
		if !c.check(token.RPAREN) {
			c.consume(token.COMMA, errors.ErrMissingSeparator, "Expected ',' between parameters")
		}
		if c.check(token.EOF) {
			break
		}
	}
	c.consume(token.LBRACE, errors.ErrUnexpectedToken, "Expected '{' to begin function block")
	c.block()
	fn := c.pop()
	if kind == generatorFunc {
		c.emitConstant(object.NewGenerator(fn))
	} else {
		c.emitConstant(object.NewFunction(fn))
	}
}

func (c *compiler) enumDeclaration() {
	if c.current.kind != scriptFunc {
		c.errorAtPrevious(errors.ErrNestedDefinition, "Enumeration nesting is not supported")
	}
	name := c.consume(token.IDENT, errors.ErrUnexpectedToken, "Expected enum name")
	nameConstant := c.addConstant(object.NewString(name.Literal))
	c.declareVariable()
	c.emit(op.Enum, op.Code(nameConstant))
	c.defineVariable(nameConstant)
	// Field definitions consume the enumeration from the stack top, so
	// read the freshly bound variable back.
	c.namedVariable(name, false)
	c.consume(token.LBRACE, errors.ErrUnexpectedToken, "Expected '{' to start enumeration definition")
	for !c.match(token.RBRACE) {
		c.buffer()
		member := c.consume(token.IDENT, errors.ErrUnexpectedToken, "Expected member name")
		c.emit(op.DefField, op.Code(c.addConstant(object.NewString(member.Literal))))
		c.buffer()
		if !c.check(token.RBRACE) {
			c.consume(token.COMMA, errors.ErrMissingSeparator, "Expected ',' between members")
		}
		if c.check(token.EOF) {
			break
		}
	}
	c.emit(op.Pop)
}

func (c *compiler) waitStatement() {
	c.expression(precNone)
	c.emit(op.Sleep)
}

func (c *compiler) returnStatement() {
	if c.current.kind == scriptFunc {
		c.errorAtPrevious(errors.ErrStrayReturn, "Can only return from inside functions")
		return
	}
	instruction := op.Return
	if c.current.kind == generatorFunc {
		instruction = op.Yield
	}
	if c.check(token.EOL) {
		c.emitReturn(instruction)
	} else {
		c.expression(precNone)
		c.emit(instruction)
	}
}
