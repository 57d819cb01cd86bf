// Package surfparse implements a recursive-descent parser over the
// surface language's token stream, in the error-accumulating style of
// the teacher's internal/parser package (p.Errors() rather than
// panicking on the first bad token).
package surfparse

import (
	"fmt"

	"github.com/cwbudde/cpst/internal/cpserr"
	"github.com/cwbudde/cpst/internal/surfast"
	"github.com/cwbudde/cpst/internal/surflex"
	"github.com/cwbudde/cpst/internal/surftoken"
)

// Parser consumes a flat token slice and builds a surfast.Module.
type Parser struct {
	file   string
	source string
	toks   []surftoken.Token
	pos    int
	errors []*cpserr.Diagnostic
}

// New tokenizes src with surflex and returns a Parser ready to parse it.
func New(file, src string) *Parser {
	lx := surflex.New(src, surflex.WithFile(file))
	toks := lx.Tokenize()
	return &Parser{
		file:   file,
		source: src,
		toks:   toks,
		errors: append([]*cpserr.Diagnostic{}, lx.Errors()...),
	}
}

// Errors returns every ParseError diagnostic accumulated while parsing.
func (p *Parser) Errors() []*cpserr.Diagnostic {
	return p.errors
}

func (p *Parser) cur() surftoken.Token {
	if p.pos >= len(p.toks) {
		return surftoken.Token{Kind: surftoken.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) surftoken.Token {
	if p.pos+n >= len(p.toks) {
		return surftoken.Token{Kind: surftoken.EOF}
	}
	return p.toks[p.pos+n]
}

func (p *Parser) at(kind surftoken.Kind) bool {
	return p.cur().Kind == kind
}

func (p *Parser) advance() surftoken.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) expect(kind surftoken.Kind) surftoken.Token {
	if p.at(kind) {
		return p.advance()
	}
	t := p.cur()
	p.errorf(t.Pos, "expected %s, got %s %q", kind, t.Kind, t.Literal)
	return t
}

func (p *Parser) errorf(pos surftoken.Position, format string, args ...any) {
	p.errors = append(p.errors, cpserr.NewParse(p.file, p.source, fmt.Sprintf(format, args...), pos))
}

// skipNewlines consumes any run of stray NEWLINE tokens, which can
// appear between top-level statements.
func (p *Parser) skipNewlines() {
	for p.at(surftoken.NEWLINE) {
		p.advance()
	}
}

// ParseModule parses the entire token stream into a Module.
func (p *Parser) ParseModule() *surfast.Module {
	p.skipNewlines()
	var body []surfast.Stmt
	for !p.at(surftoken.EOF) {
		body = append(body, p.parseStmt())
		p.skipNewlines()
	}
	return surfast.NewModule(body)
}

func (p *Parser) parseBlock() []surfast.Stmt {
	p.expect(surftoken.NEWLINE)
	p.expect(surftoken.INDENT)
	var stmts []surfast.Stmt
	p.skipNewlines()
	for !p.at(surftoken.DEDENT) && !p.at(surftoken.EOF) {
		stmts = append(stmts, p.parseStmt())
		p.skipNewlines()
	}
	p.expect(surftoken.DEDENT)
	return stmts
}

func (p *Parser) parseStmt() surfast.Stmt {
	switch p.cur().Kind {
	case surftoken.AT:
		return p.parseDecoratedDef()
	case surftoken.DEF:
		return p.parseFunctionDef(nil)
	case surftoken.IF:
		return p.parseIf()
	case surftoken.WHILE:
		return p.parseWhile()
	case surftoken.FOR:
		return p.parseFor()
	case surftoken.RETURN:
		return p.parseReturn()
	case surftoken.IMPORT:
		return p.parseImport()
	case surftoken.CLASS:
		return p.parseClassDef()
	case surftoken.TRY:
		return p.parseTry()
	case surftoken.WITH:
		return p.parseWith()
	case surftoken.PRINT:
		return p.parsePrint()
	case surftoken.PASS:
		pos := p.advance().Pos
		p.expect(surftoken.NEWLINE)
		return surfast.NewPass(pos)
	case surftoken.GLOBAL, surftoken.NONLOCAL:
		return p.parseGlobalNonlocal()
	default:
		if p.at(surftoken.NAME) && p.cur().Literal == "from" && p.peek(1).Kind == surftoken.NAME {
			return p.parseImport()
		}
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseGlobalNonlocal() surfast.Stmt {
	// Not part of the core transformed grammar; the statement's raw text
	// is kept in an Import node so it round-trips verbatim without
	// needing a dedicated node.
	pos := p.cur().Pos
	kw := p.advance().Literal
	names := []string{p.expect(surftoken.NAME).Literal}
	for p.at(surftoken.COMMA) {
		p.advance()
		names = append(names, p.expect(surftoken.NAME).Literal)
	}
	p.expect(surftoken.NEWLINE)
	raw := kw
	for i, n := range names {
		if i == 0 {
			raw += " " + n
		} else {
			raw += ", " + n
		}
	}
	return surfast.NewImport(pos, raw)
}

func (p *Parser) parseDecoratedDef() surfast.Stmt {
	var decs []surfast.Decorator
	for p.at(surftoken.AT) {
		pos := p.advance().Pos
		name := p.expect(surftoken.NAME).Literal
		p.expect(surftoken.NEWLINE)
		decs = append(decs, surfast.Decorator{Name: name, Pos_: pos})
	}
	return p.parseFunctionDef(decs)
}

func (p *Parser) parseFunctionDef(decs []surfast.Decorator) surfast.Stmt {
	pos := p.expect(surftoken.DEF).Pos
	name := p.expect(surftoken.NAME).Literal
	p.expect(surftoken.LPAREN)
	var formals []string
	for !p.at(surftoken.RPAREN) && !p.at(surftoken.EOF) {
		formals = append(formals, p.expect(surftoken.NAME).Literal)
		if p.at(surftoken.COMMA) {
			p.advance()
		}
	}
	p.expect(surftoken.RPAREN)
	p.expect(surftoken.COLON)
	body := p.parseBlock()
	return surfast.NewFunctionDef(pos, name, formals, decs, body)
}

func (p *Parser) parseIf() surfast.Stmt {
	pos := p.expect(surftoken.IF).Pos
	test := p.parseExpr()
	p.expect(surftoken.COLON)
	body := p.parseBlock()
	var orelse []surfast.Stmt
	switch p.cur().Kind {
	case surftoken.ELIF:
		// desugar `elif` into a nested if inside the else branch.
		orelse = []surfast.Stmt{p.parseElif()}
	case surftoken.ELSE:
		p.advance()
		p.expect(surftoken.COLON)
		orelse = p.parseBlock()
	}
	return surfast.NewIf(pos, test, body, orelse)
}

func (p *Parser) parseElif() surfast.Stmt {
	pos := p.expect(surftoken.ELIF).Pos
	test := p.parseExpr()
	p.expect(surftoken.COLON)
	body := p.parseBlock()
	var orelse []surfast.Stmt
	switch p.cur().Kind {
	case surftoken.ELIF:
		orelse = []surfast.Stmt{p.parseElif()}
	case surftoken.ELSE:
		p.advance()
		p.expect(surftoken.COLON)
		orelse = p.parseBlock()
	}
	return surfast.NewIf(pos, test, body, orelse)
}

func (p *Parser) parseWhile() surfast.Stmt {
	pos := p.expect(surftoken.WHILE).Pos
	test := p.parseExpr()
	p.expect(surftoken.COLON)
	body := p.parseBlock()
	var orelse []surfast.Stmt
	if p.at(surftoken.ELSE) {
		p.advance()
		p.expect(surftoken.COLON)
		orelse = p.parseBlock()
	}
	return surfast.NewWhile(pos, test, body, orelse)
}

func (p *Parser) parseFor() surfast.Stmt {
	pos := p.expect(surftoken.FOR).Pos
	target := p.parseAtomTrailer()
	p.expect(surftoken.IN)
	iter := p.parseExpr()
	p.expect(surftoken.COLON)
	body := p.parseBlock()
	var orelse []surfast.Stmt
	if p.at(surftoken.ELSE) {
		p.advance()
		p.expect(surftoken.COLON)
		orelse = p.parseBlock()
	}
	return surfast.NewFor(pos, target, iter, body, orelse)
}

func (p *Parser) parseReturn() surfast.Stmt {
	pos := p.expect(surftoken.RETURN).Pos
	var value surfast.Expr
	if !p.at(surftoken.NEWLINE) {
		value = p.parseExpr()
	}
	p.expect(surftoken.NEWLINE)
	return surfast.NewReturn(pos, value)
}

func (p *Parser) parseImport() surfast.Stmt {
	pos := p.cur().Pos
	var raw string
	for !p.at(surftoken.NEWLINE) && !p.at(surftoken.EOF) {
		if raw != "" {
			raw += " "
		}
		raw += p.advance().Literal
	}
	p.expect(surftoken.NEWLINE)
	return surfast.NewImport(pos, raw)
}

func (p *Parser) parsePrint() surfast.Stmt {
	pos := p.expect(surftoken.PRINT).Pos
	var args []surfast.Expr
	if p.at(surftoken.LPAREN) {
		p.advance()
		for !p.at(surftoken.RPAREN) && !p.at(surftoken.EOF) {
			args = append(args, p.parseExpr())
			if p.at(surftoken.COMMA) {
				p.advance()
			}
		}
		p.expect(surftoken.RPAREN)
	} else {
		args = append(args, p.parseExpr())
		for p.at(surftoken.COMMA) {
			p.advance()
			args = append(args, p.parseExpr())
		}
	}
	p.expect(surftoken.NEWLINE)
	return surfast.NewPrint(pos, args)
}

func (p *Parser) parseClassDef() surfast.Stmt {
	pos := p.expect(surftoken.CLASS).Pos
	name := p.expect(surftoken.NAME).Literal
	var bases []string
	if p.at(surftoken.LPAREN) {
		p.advance()
		for !p.at(surftoken.RPAREN) && !p.at(surftoken.EOF) {
			bases = append(bases, p.expect(surftoken.NAME).Literal)
			if p.at(surftoken.COMMA) {
				p.advance()
			}
		}
		p.expect(surftoken.RPAREN)
	}
	p.expect(surftoken.COLON)
	body := p.parseBlock()
	return surfast.NewClassDef(pos, name, bases, body)
}

func (p *Parser) parseTry() surfast.Stmt {
	pos := p.expect(surftoken.TRY).Pos
	p.expect(surftoken.COLON)
	body := p.parseBlock()
	var handlers []surfast.TryHandler
	for p.at(surftoken.EXCEPT) {
		p.advance()
		var typ, as string
		if !p.at(surftoken.COLON) {
			typ = p.expect(surftoken.NAME).Literal
			if p.at(surftoken.NAME) && p.cur().Literal == "as" {
				p.advance()
				as = p.expect(surftoken.NAME).Literal
			}
		}
		p.expect(surftoken.COLON)
		hbody := p.parseBlock()
		handlers = append(handlers, surfast.TryHandler{ExceptionType: typ, Name: as, Body: hbody})
	}
	var orelse, finally []surfast.Stmt
	if p.at(surftoken.ELSE) {
		p.advance()
		p.expect(surftoken.COLON)
		orelse = p.parseBlock()
	}
	if p.at(surftoken.FINALLY) {
		p.advance()
		p.expect(surftoken.COLON)
		finally = p.parseBlock()
	}
	return surfast.NewTry(pos, body, handlers, orelse, finally)
}

func (p *Parser) parseWith() surfast.Stmt {
	pos := p.expect(surftoken.WITH).Pos
	ctx := p.parseExpr()
	var as string
	if p.at(surftoken.NAME) && p.cur().Literal == "as" {
		p.advance()
		as = p.expect(surftoken.NAME).Literal
	}
	p.expect(surftoken.COLON)
	body := p.parseBlock()
	return surfast.NewWith(pos, ctx, as, body)
}

// parseExprOrAssignStmt handles both `target = value` and a bare
// expression statement, and promotes comma-separated targets to a
// TupleAssign (always Verbatim; spec.md excludes destructuring).
func (p *Parser) parseExprOrAssignStmt() surfast.Stmt {
	pos := p.cur().Pos
	first := p.parseExpr()

	if p.at(surftoken.COMMA) {
		targets := []surfast.Expr{first}
		for p.at(surftoken.COMMA) {
			p.advance()
			targets = append(targets, p.parseExpr())
		}
		p.expect(surftoken.ASSIGN)
		value := p.parseExpr()
		p.expect(surftoken.NEWLINE)
		return surfast.NewTupleAssign(pos, targets, value)
	}

	if p.at(surftoken.ASSIGN) {
		p.advance()
		value := p.parseExpr()
		p.expect(surftoken.NEWLINE)
		if !isAssignable(first) {
			p.errorf(pos, "invalid assignment target %s", first)
		}
		return surfast.NewAssign(pos, first, value)
	}

	p.expect(surftoken.NEWLINE)
	return surfast.NewExprStmt(pos, first)
}

func isAssignable(e surfast.Expr) bool {
	switch e.Kind() {
	case surfast.KindName, surfast.KindAttribute:
		return true
	default:
		return false
	}
}

// ---- expression grammar (precedence climbing) ----

func (p *Parser) parseExpr() surfast.Expr {
	return p.parseOr()
}

func (p *Parser) parseOr() surfast.Expr {
	left := p.parseAnd()
	if !p.at(surftoken.OR) {
		return left
	}
	values := []surfast.Expr{left}
	pos := left.Pos()
	for p.at(surftoken.OR) {
		p.advance()
		values = append(values, p.parseAnd())
	}
	return surfast.NewBoolOp(pos, values, surftoken.OR)
}

func (p *Parser) parseAnd() surfast.Expr {
	left := p.parseNot()
	if !p.at(surftoken.AND) {
		return left
	}
	values := []surfast.Expr{left}
	pos := left.Pos()
	for p.at(surftoken.AND) {
		p.advance()
		values = append(values, p.parseNot())
	}
	return surfast.NewBoolOp(pos, values, surftoken.AND)
}

func (p *Parser) parseNot() surfast.Expr {
	if p.at(surftoken.NOT) {
		pos := p.advance().Pos
		return surfast.NewUnaryOp(pos, p.parseNot(), surftoken.NOT)
	}
	return p.parseComparison()
}

var compareOps = map[surftoken.Kind]bool{
	surftoken.EQ: true, surftoken.NOTEQ: true, surftoken.LT: true, surftoken.LTE: true,
	surftoken.GT: true, surftoken.GTE: true, surftoken.IN: true, surftoken.IS: true,
}

func (p *Parser) parseComparison() surfast.Expr {
	left := p.parseBitOr()
	if !compareOps[p.cur().Kind] {
		return left
	}
	operands := []surfast.Expr{left}
	var ops []surftoken.Kind
	pos := left.Pos()
	for compareOps[p.cur().Kind] {
		ops = append(ops, p.advance().Kind)
		operands = append(operands, p.parseBitOr())
	}
	return surfast.NewCompare(pos, operands, ops)
}

func (p *Parser) parseBitOr() surfast.Expr {
	left := p.parseBitXor()
	for p.at(surftoken.PIPE) {
		op := p.advance()
		right := p.parseBitXor()
		left = surfast.NewBinOp(op.Pos, left, right, op.Kind)
	}
	return left
}

func (p *Parser) parseBitXor() surfast.Expr {
	left := p.parseBitAnd()
	for p.at(surftoken.CARET) {
		op := p.advance()
		right := p.parseBitAnd()
		left = surfast.NewBinOp(op.Pos, left, right, op.Kind)
	}
	return left
}

func (p *Parser) parseBitAnd() surfast.Expr {
	left := p.parseShift()
	for p.at(surftoken.AMP) {
		op := p.advance()
		right := p.parseShift()
		left = surfast.NewBinOp(op.Pos, left, right, op.Kind)
	}
	return left
}

func (p *Parser) parseShift() surfast.Expr {
	left := p.parseAdditive()
	for p.at(surftoken.LSHIFT) || p.at(surftoken.RSHIFT) {
		op := p.advance()
		right := p.parseAdditive()
		left = surfast.NewBinOp(op.Pos, left, right, op.Kind)
	}
	return left
}

func (p *Parser) parseAdditive() surfast.Expr {
	left := p.parseTerm()
	for p.at(surftoken.PLUS) || p.at(surftoken.MINUS) {
		op := p.advance()
		right := p.parseTerm()
		left = surfast.NewBinOp(op.Pos, left, right, op.Kind)
	}
	return left
}

func (p *Parser) parseTerm() surfast.Expr {
	left := p.parseUnary()
	for p.at(surftoken.STAR) || p.at(surftoken.SLASH) || p.at(surftoken.DSLASH) || p.at(surftoken.PERCENT) {
		op := p.advance()
		right := p.parseUnary()
		left = surfast.NewBinOp(op.Pos, left, right, op.Kind)
	}
	return left
}

func (p *Parser) parseUnary() surfast.Expr {
	if p.at(surftoken.MINUS) || p.at(surftoken.PLUS) {
		op := p.advance()
		return surfast.NewUnaryOp(op.Pos, p.parseUnary(), op.Kind)
	}
	return p.parsePower()
}

func (p *Parser) parsePower() surfast.Expr {
	left := p.parseAtomTrailer()
	if p.at(surftoken.DSTAR) {
		op := p.advance()
		right := p.parseUnary()
		return surfast.NewBinOp(op.Pos, left, right, op.Kind)
	}
	return left
}

func (p *Parser) parseAtomTrailer() surfast.Expr {
	expr := p.parseAtom()
	for {
		switch p.cur().Kind {
		case surftoken.DOT:
			p.advance()
			name := p.expect(surftoken.NAME)
			expr = surfast.NewAttribute(name.Pos, expr, name.Literal)
		case surftoken.LPAREN:
			pos := p.advance().Pos
			var args []surfast.Expr
			for !p.at(surftoken.RPAREN) && !p.at(surftoken.EOF) {
				args = append(args, p.parseExpr())
				if p.at(surftoken.COMMA) {
					p.advance()
				}
			}
			p.expect(surftoken.RPAREN)
			expr = surfast.NewCall(pos, expr, args)
		case surftoken.LBRACKET:
			pos := p.advance().Pos
			index := p.parseExpr()
			p.expect(surftoken.RBRACKET)
			expr = surfast.NewSubscript(pos, expr, index)
		default:
			return expr
		}
	}
}

func (p *Parser) parseAtom() surfast.Expr {
	t := p.cur()
	switch t.Kind {
	case surftoken.NAME:
		p.advance()
		return surfast.NewName(t.Pos, t.Literal)
	case surftoken.NUMBER:
		p.advance()
		return surfast.NewNum(t.Pos, t.Literal)
	case surftoken.STRING:
		p.advance()
		return surfast.NewStr(t.Pos, t.Literal)
	case surftoken.TRUE, surftoken.FALSE, surftoken.NONE:
		p.advance()
		return surfast.NewName(t.Pos, t.Literal)
	case surftoken.LPAREN:
		p.advance()
		expr := p.parseExpr()
		p.expect(surftoken.RPAREN)
		return expr
	default:
		p.errorf(t.Pos, "unexpected token %s %q in expression", t.Kind, t.Literal)
		p.advance()
		return surfast.NewName(t.Pos, "<error>")
	}
}
