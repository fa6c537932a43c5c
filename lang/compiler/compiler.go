// Package compiler implements Cave's single-pass compiler: a Pratt
// precedence-climbing parser that emits bytecode directly into a
// value.Chunk as it parses, with no intermediate syntax tree.
package compiler

import (
	"fmt"
	"strconv"

	"github.com/cave-lang/cave/lang/scanner"
	"github.com/cave-lang/cave/lang/token"
	"github.com/cave-lang/cave/lang/value"
	"golang.org/x/exp/slices"
)

// ObjectSink receives every heap object the compiler allocates (interned
// strings, compiled function objects) so the caller — normally a VM — can
// link it into its own object list for eventual teardown.
type ObjectSink func(value.Object)

type functionType int

const (
	typeScript functionType = iota
	typeFunction
)

// Local is a compile-time record of a stack-resident variable: its name
// and the scope depth it was declared at. depth is -1 while the variable's
// initializer is still being compiled, so self-reference can be detected.
type Local struct {
	name  string
	depth int
}

type loopCtx struct {
	start         int // backward continue target, or -1 if deferred (do-while)
	scopeDepth    int // scope depth outside the loop body
	breaks        []int
	continueJumps []int // only populated when start == -1
}

// Compiler holds the per-function compilation state: the function object
// being built, its locals, current scope depth, and active loop contexts
// for break/continue resolution.
type Compiler struct {
	function *value.ObjFunction
	typ      functionType

	locals     []Local
	scopeDepth int

	loops                      []*loopCtx
	breakCount, continueCount int
}

// precedence is Cave's operator precedence ladder, ascending.
type precedence int

const (
	precNone precedence = iota
	precAssignment
	precConditional
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
	precPrimary
)

type parseFn func(p *Parser, canAssign bool)

type parseRule struct {
	prefix parseFn
	infix  parseFn
	prec   precedence
}

var rules = func() map[token.Token]parseRule {
	r := make(map[token.Token]parseRule)
	r[token.LPAREN] = parseRule{(*Parser).grouping, (*Parser).call, precCall}
	r[token.LBRACK] = parseRule{nil, (*Parser).index, precCall}
	r[token.MINUS] = parseRule{(*Parser).unary, (*Parser).binary, precTerm}
	r[token.PLUS] = parseRule{nil, (*Parser).binary, precTerm}
	r[token.SLASH] = parseRule{nil, (*Parser).binary, precFactor}
	r[token.STAR] = parseRule{nil, (*Parser).binary, precFactor}
	r[token.PERCENT] = parseRule{nil, (*Parser).binary, precFactor}
	r[token.BANG] = parseRule{(*Parser).unary, nil, precNone}
	r[token.BANG_EQ] = parseRule{nil, (*Parser).binary, precEquality}
	r[token.EQ_EQ] = parseRule{nil, (*Parser).binary, precEquality}
	r[token.GT] = parseRule{nil, (*Parser).binary, precComparison}
	r[token.GE] = parseRule{nil, (*Parser).binary, precComparison}
	r[token.LT] = parseRule{nil, (*Parser).binary, precComparison}
	r[token.LE] = parseRule{nil, (*Parser).binary, precComparison}
	r[token.NUMBER] = parseRule{(*Parser).number, nil, precNone}
	r[token.STRING] = parseRule{(*Parser).stringLiteral, nil, precNone}
	r[token.IDENT] = parseRule{(*Parser).variable, nil, precNone}
	r[token.NIL] = parseRule{(*Parser).literal, nil, precNone}
	r[token.TRUE] = parseRule{(*Parser).literal, nil, precNone}
	r[token.FALSE] = parseRule{(*Parser).literal, nil, precNone}
	r[token.AND] = parseRule{nil, (*Parser).and_, precAnd}
	r[token.OR] = parseRule{nil, (*Parser).or_, precOr}
	r[token.QUESTION] = parseRule{nil, (*Parser).conditional, precConditional}
	for _, t := range []token.Token{token.CASE, token.DEFAULT, token.SUPER, token.THIS} {
		r[t] = parseRule{(*Parser).reservedExpr, nil, precNone}
	}
	return r
}()

func ruleFor(t token.Token) parseRule { return rules[t] }

// Parser drives one compile from a byte source through to a finished
// value.ObjFunction, tracking the usual had_error/panic_mode pair plus a
// pointer to whichever Compiler (function) is currently being built.
type Parser struct {
	sc        *scanner.Scanner
	cur, prev scanner.Tok

	hadError  bool
	panicMode bool
	errs      ErrorList

	strs  *value.Strings
	track ObjectSink

	cc *Compiler
}

func newParser(source []byte, strs *value.Strings, track ObjectSink) *Parser {
	return &Parser{sc: scanner.New(source), strs: strs, track: track}
}

// Compile compiles a whole Cave program into its implicit top-level
// script function.
func Compile(source []byte, strs *value.Strings, track ObjectSink) (*value.ObjFunction, error) {
	p := newParser(source, strs, track)
	fn := value.NewObjFunction()
	p.cc = &Compiler{function: fn, typ: typeScript, locals: []Local{{depth: 0}}}

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}
	p.emitOp(value.OpNil)
	p.emitOp(value.OpReturn)

	if err := p.errs.Err(); err != nil {
		return nil, err
	}
	return fn, nil
}

// CompileExpression compiles a single expression into a function of arity
// 2 whose locals pre-declare slot 1 as "frame" and slot 2 as "index",
// terminated by EXTRACT. It backs the host's runtime_compile hook.
func CompileExpression(source []byte, strs *value.Strings, track ObjectSink) (*value.ObjFunction, error) {
	p := newParser(source, strs, track)
	fn := value.NewObjFunction()
	fn.Arity = 2
	p.cc = &Compiler{
		function: fn,
		typ:      typeFunction,
		locals: []Local{
			{depth: 0},
			{name: "frame", depth: 0},
			{name: "index", depth: 0},
		},
	}

	p.advance()
	p.expression()
	p.emitOp(value.OpExtract)
	if !p.match(token.EOF) {
		p.errorAtCurrent("Expect end of expression.")
	}

	if err := p.errs.Err(); err != nil {
		return nil, err
	}
	return fn, nil
}

func (p *Parser) chunk() *value.Chunk { return p.cc.function.Chunk }
func (p *Parser) prevLine() int       { return p.prev.Line }

// --- token stream helpers ---

func (p *Parser) advance() {
	p.prev = p.cur
	for {
		p.cur = p.sc.Scan()
		if p.cur.Type != token.ILLEGAL {
			return
		}
		p.errorAtCurrent(p.cur.Message)
	}
}

func (p *Parser) check(t token.Token) bool { return p.cur.Type == t }

func (p *Parser) match(t token.Token) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(t token.Token, msg string) {
	if p.check(t) {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

func isCompoundAssign(t token.Token) bool {
	switch t {
	case token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ, token.PERCENT_EQ:
		return true
	}
	return false
}

func compoundOp(t token.Token) value.Opcode {
	switch t {
	case token.PLUS_EQ:
		return value.OpAdd
	case token.MINUS_EQ:
		return value.OpSubtract
	case token.STAR_EQ:
		return value.OpMultiply
	case token.SLASH_EQ:
		return value.OpDivide
	case token.PERCENT_EQ:
		return value.OpMod
	}
	panic("compiler: not a compound-assignment token")
}

// --- error reporting ---

func (p *Parser) errorAt(tok scanner.Tok, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true
	var where string
	switch {
	case tok.Type == token.EOF:
		where = " at end"
	case tok.Type != token.ILLEGAL:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	p.errs.add(Error{Line: tok.Line, Where: where, Message: msg})
}

func (p *Parser) errorAtCurrent(msg string) { p.errorAt(p.cur, msg) }
func (p *Parser) error(msg string)          { p.errorAt(p.prev, msg) }

var syncTokens = []token.Token{
	token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.SWITCH,
	token.WHILE, token.PRINT, token.RETURN, token.BREAK, token.CONTINUE,
}

func (p *Parser) synchronize() {
	p.panicMode = false
	for p.cur.Type != token.EOF {
		if p.prev.Type == token.SEMI {
			return
		}
		if slices.Contains(syncTokens, p.cur.Type) {
			return
		}
		p.advance()
	}
}

// --- emission helpers ---

func (p *Parser) emitOp(op value.Opcode) { p.chunk().WriteOp(op, p.prevLine()) }

func (p *Parser) emitIndexed(short, long value.Opcode, idx int, line int) {
	switch {
	case idx <= 0xFF:
		p.chunk().WriteOp(short, line)
		p.chunk().Write(byte(idx), line)
	case idx <= 0xFFFFFF:
		p.chunk().WriteOp(long, line)
		p.chunk().Write(byte(idx>>16), line)
		p.chunk().Write(byte(idx>>8), line)
		p.chunk().Write(byte(idx), line)
	default:
		p.error("Too many constants in one chunk.")
	}
}

func (p *Parser) emitConstant(v value.Value) {
	idx := p.chunk().AddConstant(v)
	p.emitIndexed(value.OpConstant, value.OpConstantLong, idx, p.prevLine())
}

func (p *Parser) emitPopN(n int) {
	line := p.prevLine()
	p.chunk().WriteOp(value.OpPopN, line)
	p.chunk().Write(byte(n>>16), line)
	p.chunk().Write(byte(n>>8), line)
	p.chunk().Write(byte(n), line)
}

func (p *Parser) emitJump(op value.Opcode) int {
	line := p.prevLine()
	loc := len(p.chunk().Code)
	p.chunk().WriteOp(op, line)
	p.chunk().Write(0xFF, line)
	p.chunk().Write(0xFF, line)
	return loc
}

func (p *Parser) emitJumpNPop(n int) int {
	line := p.prevLine()
	loc := len(p.chunk().Code)
	p.chunk().WriteOp(value.OpJumpNPop, line)
	p.chunk().Write(byte(n>>16), line)
	p.chunk().Write(byte(n>>8), line)
	p.chunk().Write(byte(n), line)
	p.chunk().Write(0xFF, line)
	p.chunk().Write(0xFF, line)
	return loc
}

// patchJump fills in the forward-distance placeholder at loc with the
// distance from the end of the instruction to the current end of the
// chunk. JUMP_NPOP carries an extra 24-bit pop-count field before its
// 16-bit distance, so its overhead is 6 bytes instead of 3.
func (p *Parser) patchJump(loc int) {
	code := p.chunk().Code
	op := value.Opcode(code[loc])
	at, overhead := loc+1, 3
	if op == value.OpJumpNPop {
		at, overhead = loc+4, 6
	}
	dist := len(code) - loc - overhead
	if dist > 0xFFFF {
		p.error("Too much code to jump over.")
		return
	}
	code[at] = byte(dist >> 8)
	code[at+1] = byte(dist)
}

func (p *Parser) emitLoop(start int) {
	line := p.prevLine()
	p.chunk().WriteOp(value.OpLoop, line)
	offset := len(p.chunk().Code) - start + 2
	if offset > 0xFFFF {
		p.error("Loop body too large.")
		offset = 0
	}
	p.chunk().Write(byte(offset>>8), line)
	p.chunk().Write(byte(offset), line)
}

func (p *Parser) emitLoopIfTrue(start int) {
	line := p.prevLine()
	p.chunk().WriteOp(value.OpLoopIfTrue, line)
	offset := len(p.chunk().Code) - start + 2
	if offset > 0xFFFF {
		p.error("Loop body too large.")
		offset = 0
	}
	p.chunk().Write(byte(offset>>8), line)
	p.chunk().Write(byte(offset), line)
}

// --- name / string interning ---

func (p *Parser) internString(chars []byte) *value.ObjString {
	var onNew func(*value.ObjString)
	if p.track != nil {
		onNew = func(s *value.ObjString) { p.track(s) }
	}
	return p.strs.Intern(chars, onNew)
}

func (p *Parser) identifierConstant(name []byte) int {
	return p.chunk().AddConstant(value.FromObject(p.internString(name)))
}

func stripQuote(lexeme []byte) []byte {
	if len(lexeme) < 2 {
		return nil
	}
	return lexeme[1 : len(lexeme)-1]
}

// --- scopes & variables ---

func (p *Parser) beginScope() { p.cc.scopeDepth++ }

func (p *Parser) endScope() {
	p.cc.scopeDepth--
	n := 0
	for len(p.cc.locals) > 0 && p.cc.locals[len(p.cc.locals)-1].depth > p.cc.scopeDepth {
		n++
		p.cc.locals = p.cc.locals[:len(p.cc.locals)-1]
	}
	switch {
	case n == 1:
		p.emitOp(value.OpPop)
	case n > 1:
		p.emitPopN(n)
	}
}

func (p *Parser) countLocalsAbove(depth int) int {
	n := 0
	for i := len(p.cc.locals) - 1; i >= 0 && p.cc.locals[i].depth > depth; i-- {
		n++
	}
	return n
}

func (cc *Compiler) resolveLocal(name string) int {
	for i := len(cc.locals) - 1; i >= 0; i-- {
		if cc.locals[i].name == name {
			return i
		}
	}
	return -1
}

func (p *Parser) addLocal(name string) {
	const maxLocals = 16384 // matches the VM's fixed-size value stack
	if len(p.cc.locals) >= maxLocals {
		p.error("Too many local variables in function.")
		return
	}
	p.cc.locals = append(p.cc.locals, Local{name: name, depth: -1})
}

func (p *Parser) declareVariable() {
	if p.cc.scopeDepth == 0 {
		return
	}
	name := string(p.prev.Lexeme)
	for i := len(p.cc.locals) - 1; i >= 0; i-- {
		l := p.cc.locals[i]
		if l.depth != -1 && l.depth < p.cc.scopeDepth {
			break
		}
		if l.name == name {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

func (p *Parser) markInitialized() {
	if p.cc.scopeDepth == 0 {
		return
	}
	p.cc.locals[len(p.cc.locals)-1].depth = p.cc.scopeDepth
}

func (p *Parser) parseVariable(errMsg string) int {
	p.consume(token.IDENT, errMsg)
	p.declareVariable()
	if p.cc.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.prev.Lexeme)
}

func (p *Parser) defineVariable(global int) {
	if p.cc.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitIndexed(value.OpDefineGlobal, value.OpDefineGlobalLong, global, p.prevLine())
}

// --- expressions ---

func (p *Parser) expression() { p.parsePrecedence(precAssignment) }

func (p *Parser) parsePrecedence(prec precedence) {
	p.advance()
	rule := ruleFor(p.prev.Type)
	if rule.prefix == nil {
		p.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	rule.prefix(p, canAssign)

	for prec <= ruleFor(p.cur.Type).prec {
		p.advance()
		infix := ruleFor(p.prev.Type).infix
		infix(p, canAssign)
	}

	if canAssign && (p.check(token.EQ) || isCompoundAssign(p.cur.Type)) {
		p.errorAtCurrent("Invalid assignment target.")
	}
}

func (p *Parser) number(bool) {
	n, err := strconv.ParseFloat(string(p.prev.Lexeme), 64)
	if err != nil {
		p.error("Invalid number literal.")
		return
	}
	p.emitConstant(value.Number(n))
}

func (p *Parser) literal(bool) {
	switch p.prev.Type {
	case token.NIL:
		p.emitOp(value.OpNil)
	case token.TRUE:
		p.emitOp(value.OpTrue)
	case token.FALSE:
		p.emitOp(value.OpFalse)
	}
}

func (p *Parser) grouping(bool) {
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after expression.")
}

func (p *Parser) unary(bool) {
	opType := p.prev.Type
	p.parsePrecedence(precUnary)
	switch opType {
	case token.MINUS:
		p.emitOp(value.OpNegate)
	case token.BANG:
		p.emitOp(value.OpNot)
	}
}

func (p *Parser) binary(bool) {
	opType := p.prev.Type
	rule := ruleFor(opType)
	p.parsePrecedence(rule.prec + 1)
	switch opType {
	case token.PLUS:
		p.emitOp(value.OpAdd)
	case token.MINUS:
		p.emitOp(value.OpSubtract)
	case token.STAR:
		p.emitOp(value.OpMultiply)
	case token.SLASH:
		p.emitOp(value.OpDivide)
	case token.PERCENT:
		p.emitOp(value.OpMod)
	case token.EQ_EQ:
		p.emitOp(value.OpEqual)
	case token.BANG_EQ:
		p.emitOp(value.OpNotEqual)
	case token.GT:
		p.emitOp(value.OpGreater)
	case token.GE:
		p.emitOp(value.OpGreaterEqual)
	case token.LT:
		p.emitOp(value.OpLess)
	case token.LE:
		p.emitOp(value.OpLessEqual)
	}
}

func (p *Parser) and_(bool) {
	endJump := p.emitJump(value.OpJumpIfFalse)
	p.emitOp(value.OpPop)
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

func (p *Parser) or_(bool) {
	elseJump := p.emitJump(value.OpJumpIfFalse)
	endJump := p.emitJump(value.OpJump)
	p.patchJump(elseJump)
	p.emitOp(value.OpPop)
	p.parsePrecedence(precOr)
	p.patchJump(endJump)
}

func (p *Parser) conditional(bool) {
	thenJump := p.emitJump(value.OpJumpIfFalse)
	p.emitOp(value.OpPop)
	p.expression()
	p.consume(token.COLON, "Expect ':' after then-branch of conditional expression.")
	elseJump := p.emitJump(value.OpJump)
	p.patchJump(thenJump)
	p.emitOp(value.OpPop)
	p.parsePrecedence(precConditional)
	p.patchJump(elseJump)
}

func (p *Parser) call(bool) {
	argc := p.argumentList()
	p.emitOp(value.OpCall)
	p.chunk().Write(byte(argc), p.prevLine())
}

func (p *Parser) argumentList() int {
	argc := 0
	if !p.check(token.RPAREN) {
		for {
			p.expression()
			if argc == 255 {
				p.error("Can't have more than 255 arguments.")
			}
			argc++
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after arguments.")
	return argc
}

func (p *Parser) parseSliceComponent() {
	if p.check(token.COLON) || p.check(token.RBRACK) {
		p.emitOp(value.OpNil)
	} else {
		p.expression()
	}
}

func (p *Parser) index(bool) {
	if p.check(token.COLON) {
		p.emitOp(value.OpNil)
	} else {
		p.expression()
		if p.match(token.RBRACK) {
			p.emitOp(value.OpIndex)
			return
		}
	}
	p.consume(token.COLON, "Expect ':' in slice expression.")
	p.parseSliceComponent()
	if p.match(token.COLON) {
		p.parseSliceComponent()
		p.consume(token.RBRACK, "Expect ']' after slice.")
		p.emitOp(value.OpIndexRangeInterval)
		return
	}
	p.consume(token.RBRACK, "Expect ']' after slice.")
	p.emitOp(value.OpIndexRange)
}

func (p *Parser) stringLiteral(bool) {
	p.emitConstant(value.FromObject(p.internString(stripQuote(p.prev.Lexeme))))
	for p.check(token.DOLLAR_BRACE) {
		p.advance()
		p.expression()
		p.emitOp(value.OpInterpolateStr)
		p.consume(token.RBRACE, "Expect '}' after interpolated expression.")
		if !p.check(token.STRING) {
			break
		}
		p.advance()
		p.emitConstant(value.FromObject(p.internString(stripQuote(p.prev.Lexeme))))
		p.emitOp(value.OpInterpolateStr)
	}
}

func (p *Parser) namedVariable(tok scanner.Tok, canAssign bool) {
	name := string(tok.Lexeme)
	var getOp, getOpLong, setOp, setOpLong value.Opcode
	arg := p.cc.resolveLocal(name)
	if arg != -1 {
		if p.cc.locals[arg].depth == -1 {
			p.error("Can't read local variable in its own initializer.")
		}
		getOp, getOpLong = value.OpGetLocal, value.OpGetLocalLong
		setOp, setOpLong = value.OpSetLocal, value.OpSetLocalLong
	} else {
		arg = p.identifierConstant(tok.Lexeme)
		getOp, getOpLong = value.OpGetGlobal, value.OpGetGlobalLong
		setOp, setOpLong = value.OpSetGlobal, value.OpSetGlobalLong
	}

	switch {
	case canAssign && p.match(token.EQ):
		p.expression()
		p.emitIndexed(setOp, setOpLong, arg, p.prevLine())
	case canAssign && isCompoundAssign(p.cur.Type):
		op := compoundOp(p.cur.Type)
		p.advance()
		p.emitIndexed(getOp, getOpLong, arg, p.prevLine())
		p.expression()
		p.emitOp(op)
		p.emitIndexed(setOp, setOpLong, arg, p.prevLine())
	default:
		p.emitIndexed(getOp, getOpLong, arg, p.prevLine())
	}
}

func (p *Parser) variable(canAssign bool) { p.namedVariable(p.prev, canAssign) }

func (p *Parser) reservedExpr(bool) {
	p.error(fmt.Sprintf("%s is reserved, not implemented.", p.prev.Type))
}

// --- statements ---

func (p *Parser) declaration() {
	switch {
	case p.match(token.VAR):
		p.varDeclaration()
	case p.match(token.FUN):
		p.funDeclaration()
	default:
		p.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
}

func (p *Parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")
	if p.match(token.EQ) {
		p.expression()
	} else {
		p.emitOp(value.OpNil)
	}
	p.consume(token.SEMI, "Expect ';' after variable declaration.")
	p.defineVariable(global)
}

func (p *Parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	p.markInitialized()
	p.function(typeFunction)
	p.defineVariable(global)
}

func (p *Parser) function(typ functionType) {
	outer := p.cc
	fn := value.NewObjFunction()
	if typ == typeFunction {
		fn.Name = p.internString(p.prev.Lexeme)
	}
	p.cc = &Compiler{function: fn, typ: typ, locals: []Local{{depth: 0}}}
	p.beginScope()

	p.consume(token.LPAREN, "Expect '(' after function name.")
	if !p.check(token.RPAREN) {
		for {
			p.cc.function.Arity++
			if p.cc.function.Arity > 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConst := p.parseVariable("Expect parameter name.")
			p.defineVariable(paramConst)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after parameters.")
	p.consume(token.LBRACE, "Expect '{' before function body.")
	p.block()
	p.emitOp(value.OpNil)
	p.emitOp(value.OpReturn)

	p.cc = outer
	if p.track != nil {
		p.track(fn)
	}
	p.emitConstant(value.FromObject(fn))
}

func (p *Parser) block() {
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RBRACE, "Expect '}' after block.")
}

func (p *Parser) statement() {
	switch {
	case p.match(token.PRINT):
		p.printStatement()
	case p.match(token.IF):
		p.ifStatement()
	case p.match(token.WHILE):
		p.whileStatement()
	case p.match(token.DO):
		p.doStatement()
	case p.match(token.FOR):
		p.forStatement()
	case p.match(token.RETURN):
		p.returnStatement()
	case p.match(token.BREAK):
		p.breakStatement()
	case p.match(token.CONTINUE):
		p.continueStatement()
	case p.match(token.LBRACE):
		p.beginScope()
		p.block()
		p.endScope()
	case p.match(token.CLASS):
		p.error("class is reserved, not implemented.")
	case p.match(token.SWITCH):
		p.error("switch is reserved, not implemented.")
	case p.match(token.DEL):
		p.error("del is reserved, not implemented.")
	default:
		p.expressionStatement()
	}
}

func (p *Parser) printStatement() {
	p.expression()
	p.consume(token.SEMI, "Expect ';' after value.")
	p.emitOp(value.OpPrint)
}

func (p *Parser) expressionStatement() {
	p.expression()
	p.consume(token.SEMI, "Expect ';' after expression.")
	p.emitOp(value.OpPop)
}

func (p *Parser) ifStatement() {
	p.consume(token.LPAREN, "Expect '(' after 'if'.")
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := p.emitJump(value.OpJumpIfFalse)
	p.emitOp(value.OpPop)
	p.statement()
	var endJumps []int
	endJumps = append(endJumps, p.emitJump(value.OpJump))
	p.patchJump(thenJump)
	p.emitOp(value.OpPop)

	for p.match(token.ELIF) {
		p.consume(token.LPAREN, "Expect '(' after 'elif'.")
		p.expression()
		p.consume(token.RPAREN, "Expect ')' after condition.")
		tj := p.emitJump(value.OpJumpIfFalse)
		p.emitOp(value.OpPop)
		p.statement()
		endJumps = append(endJumps, p.emitJump(value.OpJump))
		p.patchJump(tj)
		p.emitOp(value.OpPop)
	}

	if p.match(token.ELSE) {
		p.statement()
	}
	for _, j := range endJumps {
		p.patchJump(j)
	}
}

func (p *Parser) whileStatement() {
	loopStart := len(p.chunk().Code)
	p.consume(token.LPAREN, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := p.emitJump(value.OpJumpIfFalse)
	p.emitOp(value.OpPop)

	loop := &loopCtx{start: loopStart, scopeDepth: p.cc.scopeDepth}
	p.cc.loops = append(p.cc.loops, loop)
	p.statement()
	p.emitLoop(loopStart)
	p.cc.loops = p.cc.loops[:len(p.cc.loops)-1]

	p.patchJump(exitJump)
	p.emitOp(value.OpPop)
	for _, b := range loop.breaks {
		p.patchJump(b)
	}
}

func (p *Parser) doStatement() {
	bodyStart := len(p.chunk().Code)
	loop := &loopCtx{start: -1, scopeDepth: p.cc.scopeDepth}
	p.cc.loops = append(p.cc.loops, loop)
	p.statement()

	for _, j := range loop.continueJumps {
		p.patchJump(j)
	}
	p.consume(token.WHILE, "Expect 'while' after 'do' body.")
	p.consume(token.LPAREN, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")
	p.consume(token.SEMI, "Expect ';' after do-while statement.")
	p.emitLoopIfTrue(bodyStart)

	p.cc.loops = p.cc.loops[:len(p.cc.loops)-1]
	for _, b := range loop.breaks {
		p.patchJump(b)
	}
}

func (p *Parser) forStatement() {
	p.beginScope()
	p.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case p.match(token.SEMI):
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := len(p.chunk().Code)
	exitJump := -1
	if !p.check(token.SEMI) {
		p.expression()
		p.consume(token.SEMI, "Expect ';' after loop condition.")
		exitJump = p.emitJump(value.OpJumpIfFalse)
		p.emitOp(value.OpPop)
	} else {
		p.advance()
	}

	if !p.check(token.RPAREN) {
		bodyJump := p.emitJump(value.OpJump)
		incrementStart := len(p.chunk().Code)
		p.expression()
		p.emitOp(value.OpPop)
		p.consume(token.RPAREN, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.patchJump(bodyJump)
	} else {
		p.advance()
	}

	loop := &loopCtx{start: loopStart, scopeDepth: p.cc.scopeDepth}
	p.cc.loops = append(p.cc.loops, loop)
	p.statement()
	p.emitLoop(loopStart)
	p.cc.loops = p.cc.loops[:len(p.cc.loops)-1]

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(value.OpPop)
	}
	for _, b := range loop.breaks {
		p.patchJump(b)
	}
	p.endScope()
}

func (p *Parser) breakStatement() {
	if len(p.cc.loops) == 0 {
		p.error("Can't use 'break' outside of a loop.")
		p.consume(token.SEMI, "Expect ';' after 'break'.")
		return
	}
	p.cc.breakCount++
	if p.cc.breakCount > 256 {
		p.error("Too many break statements in one function.")
	}
	loop := p.cc.loops[len(p.cc.loops)-1]
	n := p.countLocalsAbove(loop.scopeDepth)
	var j int
	if n > 0 {
		j = p.emitJumpNPop(n)
	} else {
		j = p.emitJump(value.OpJump)
	}
	loop.breaks = append(loop.breaks, j)
	p.consume(token.SEMI, "Expect ';' after 'break'.")
}

func (p *Parser) continueStatement() {
	if len(p.cc.loops) == 0 {
		p.error("Can't use 'continue' outside of a loop.")
		p.consume(token.SEMI, "Expect ';' after 'continue'.")
		return
	}
	p.cc.continueCount++
	if p.cc.continueCount > 256 {
		p.error("Too many continue statements in one function.")
	}
	loop := p.cc.loops[len(p.cc.loops)-1]
	n := p.countLocalsAbove(loop.scopeDepth)
	switch {
	case n == 1:
		p.emitOp(value.OpPop)
	case n > 1:
		p.emitPopN(n)
	}
	if loop.start >= 0 {
		p.emitLoop(loop.start)
	} else {
		loop.continueJumps = append(loop.continueJumps, p.emitJump(value.OpJump))
	}
	p.consume(token.SEMI, "Expect ';' after 'continue'.")
}

func (p *Parser) returnStatement() {
	if p.cc.typ == typeScript {
		p.error("Can't return from top-level code.")
	}
	if p.match(token.SEMI) {
		p.emitOp(value.OpNil)
		p.emitOp(value.OpReturn)
		return
	}
	p.expression()
	p.consume(token.SEMI, "Expect ';' after return value.")
	p.emitOp(value.OpReturn)
}
