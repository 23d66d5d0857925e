// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dsl

import "strconv"

// Parser builds a Fragment from a token stream, using simple recursive
// descent with a precedence table for binary operators. It never panics on
// malformed input: syntax errors are recorded on the ErrorHandler and
// parsing continues from the current token. It does not skip ahead to a
// statement boundary, so one mistake can produce follow-on diagnostics.
type Parser struct {
	sc   *Scanner
	errs *ErrorHandler
}

// Parse scans and parses src as one named code fragment.
func Parse(src, name string, errs *ErrorHandler) *Fragment {
	p := &Parser{sc: NewScanner(src, name, errs), errs: errs}
	list := p.parseStmtList(EOF)
	return &Fragment{Name: name, List: list}
}

func (p *Parser) errorf(pos Position, format string, args ...any) {
	p.errs.Errorf(pos, format, args...)
}

func (p *Parser) expect(k Kind) Token {
	t := p.sc.Next()
	if t.Kind != k {
		p.errorf(t.Pos, "%w: expected %v, got %v %q", ErrSyntax, k, t.Kind, t.Text)
	}
	return t
}

// parseStmtList reads statements until it sees `until` (RBRACE for a
// block, EOF for a top-level fragment).
func (p *Parser) parseStmtList(until Kind) []Stmt {
	var list []Stmt
	for {
		t := p.sc.Peek()
		if t.Kind == until || t.Kind == EOF {
			return list
		}
		s := p.parseStmt()
		if s != nil {
			list = append(list, s)
		}
	}
}

func (p *Parser) parseBlock() *BlockStmt {
	open := p.expect(LBRACE)
	list := p.parseStmtList(RBRACE)
	p.expect(RBRACE)
	return &BlockStmt{base: base{open.Pos}, List: list}
}

func (p *Parser) parseStmt() Stmt {
	t := p.sc.Peek()
	switch t.Kind {
	case LBRACE:
		return p.parseBlock()
	case KwIf:
		return p.parseIf()
	case KwFor:
		return p.parseFor()
	case KwWhile:
		return p.parseWhile()
	case KwReturn:
		return p.parseReturn()
	case KwVar:
		return p.parseVarDecl()
	case SEMI:
		p.sc.Next()
		return nil
	default:
		return p.parseSimpleStmt(true)
	}
}

// parseSimpleStmt parses an expression statement; requireSemi controls
// whether a trailing ';' is mandatory (it is optional in for-loop clauses).
func (p *Parser) parseSimpleStmt(requireSemi bool) Stmt {
	x := p.parseExpr()
	if requireSemi {
		p.expect(SEMI)
	}
	return &ExprStmt{base: base{x.Pos()}, X: x}
}

func (p *Parser) parseVarDecl() Stmt {
	kw := p.expect(KwVar)
	nameTok := p.expect(IDENT)
	typeTok := p.expect(IDENT)
	decl := &VarDecl{base: base{kw.Pos}, Name: nameTok.Text, Type: typeTok.Text}
	if p.sc.Peek().Kind == ASSIGN {
		p.sc.Next()
		decl.Init = p.parseExpr()
	}
	p.expect(SEMI)
	return decl
}

func (p *Parser) parseIf() Stmt {
	kw := p.expect(KwIf)
	p.expect(LPAREN)
	cond := p.parseExpr()
	p.expect(RPAREN)
	body := p.parseBlock()
	stmt := &IfStmt{base: base{kw.Pos}, Cond: cond, Body: body}
	if p.sc.Peek().Kind == KwElse {
		p.sc.Next()
		if p.sc.Peek().Kind == KwIf {
			stmt.Else = p.parseIf()
		} else {
			stmt.Else = p.parseBlock()
		}
	}
	return stmt
}

func (p *Parser) parseWhile() Stmt {
	kw := p.expect(KwWhile)
	p.expect(LPAREN)
	cond := p.parseExpr()
	p.expect(RPAREN)
	body := p.parseBlock()
	return &WhileStmt{base: base{kw.Pos}, Cond: cond, Body: body}
}

func (p *Parser) parseFor() Stmt {
	kw := p.expect(KwFor)
	p.expect(LPAREN)
	var initS Stmt
	if p.sc.Peek().Kind != SEMI {
		initS = p.parseSimpleStmtNoSemi()
	}
	p.expect(SEMI)
	var cond Expr
	if p.sc.Peek().Kind != SEMI {
		cond = p.parseExpr()
	}
	p.expect(SEMI)
	var post Stmt
	if p.sc.Peek().Kind != RPAREN {
		post = p.parseSimpleStmtNoSemi()
	}
	p.expect(RPAREN)
	body := p.parseBlock()
	return &ForStmt{base: base{kw.Pos}, Init: initS, Cond: cond, Post: post, Body: body}
}

func (p *Parser) parseSimpleStmtNoSemi() Stmt {
	if p.sc.Peek().Kind == KwVar {
		p.sc.Next() // swallow 'var'; for-clause decls reuse the same shape minus the trailing ';'
		nameTok := p.expect(IDENT)
		typeTok := p.expect(IDENT)
		decl := &VarDecl{base: base{nameTok.Pos}, Name: nameTok.Text, Type: typeTok.Text}
		if p.sc.Peek().Kind == ASSIGN {
			p.sc.Next()
			decl.Init = p.parseExpr()
		}
		return decl
	}
	return p.parseSimpleStmt(false)
}

func (p *Parser) parseReturn() Stmt {
	kw := p.expect(KwReturn)
	stmt := &ReturnStmt{base: base{kw.Pos}}
	if p.sc.Peek().Kind != SEMI {
		stmt.Result = p.parseExpr()
	}
	p.expect(SEMI)
	return stmt
}

// parseExpr is the entry point for expression parsing: assignment has the
// lowest precedence, followed by the ternary conditional.
func (p *Parser) parseExpr() Expr {
	return p.parseAssign()
}

var assignOps = map[Kind]bool{
	ASSIGN: true, PLUS_ASSIGN: true, MINUS_ASSIGN: true, STAR_ASSIGN: true, SLASH_ASSIGN: true,
}

func (p *Parser) parseAssign() Expr {
	lhs := p.parseTernary()
	if op := p.sc.Peek(); assignOps[op.Kind] {
		p.sc.Next()
		rhs := p.parseAssign()
		return &AssignExpr{base: base{lhs.Pos()}, Op: op.Kind, Lhs: lhs, Rhs: rhs}
	}
	return lhs
}

func (p *Parser) parseTernary() Expr {
	cond := p.parseBinary(1)
	if p.sc.Peek().Kind == QUESTION {
		p.sc.Next()
		x := p.parseAssign()
		p.expect(COLON)
		y := p.parseAssign()
		return &CondExpr{base: base{cond.Pos()}, Cond: cond, X: x, Y: y}
	}
	return cond
}

// precedence assigns a binding strength to each binary operator; higher
// binds tighter. Level 0 is "not a binary operator".
func precedence(k Kind) int {
	switch k {
	case LOR:
		return 1
	case LAND:
		return 2
	case BITOR:
		return 3
	case BITXOR:
		return 4
	case BITAND:
		return 5
	case EQ, NE:
		return 6
	case LT, LE, GT, GE:
		return 7
	case SHL, SHR:
		return 8
	case PLUS, MINUS:
		return 9
	case STAR, SLASH, PERCENT:
		return 10
	default:
		return 0
	}
}

func (p *Parser) parseBinary(minPrec int) Expr {
	x := p.parseUnary()
	for {
		op := p.sc.Peek()
		prec := precedence(op.Kind)
		if prec == 0 || prec < minPrec {
			return x
		}
		p.sc.Next()
		y := p.parseBinary(prec + 1)
		x = &BinaryExpr{base: base{x.Pos()}, Op: op.Kind, X: x, Y: y}
	}
}

func (p *Parser) parseUnary() Expr {
	t := p.sc.Peek()
	switch t.Kind {
	case MINUS, NOT, BITXOR:
		p.sc.Next()
		x := p.parseUnary()
		return &UnaryExpr{base: base{t.Pos}, Op: t.Kind, X: x}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() Expr {
	x := p.parsePrimary()
	for {
		t := p.sc.Peek()
		switch t.Kind {
		case DOT:
			p.sc.Next()
			sel := p.expect(IDENT)
			x = &SelectorExpr{base: base{x.Pos()}, X: x, Sel: sel.Text}
		case LBRACKET:
			p.sc.Next()
			idx := p.parseExpr()
			p.expect(RBRACKET)
			x = &IndexExpr{base: base{x.Pos()}, X: x, Index: idx}
		case INCR, DECR:
			p.sc.Next()
			x = &IncDecExpr{base: base{x.Pos()}, Op: t.Kind, X: x}
		default:
			return x
		}
	}
}

func (p *Parser) parsePrimary() Expr {
	t := p.sc.Next()
	switch t.Kind {
	case IDENT:
		if p.sc.Peek().Kind == LPAREN {
			return p.parseCall(t)
		}
		return &Ident{base: base{t.Pos}, Name: t.Text}
	case SIGIL:
		return &SigilRef{base: base{t.Pos}, Name: t.Text}
	case INT:
		v, err := strconv.ParseInt(t.Text, 0, 64)
		if err != nil {
			p.errorf(t.Pos, "%w: malformed integer literal %q", ErrSyntax, t.Text)
		}
		return &IntLit{base: base{t.Pos}, Text: t.Text, Value: v}
	case FLOAT:
		v, err := strconv.ParseFloat(t.Text, 64)
		if err != nil {
			p.errorf(t.Pos, "%w: malformed float literal %q", ErrSyntax, t.Text)
		}
		return &FloatLit{base: base{t.Pos}, Text: t.Text, Value: v}
	case STRING:
		s, err := strconv.Unquote(t.Text)
		if err != nil {
			s = t.Text
		}
		return &StringLit{base: base{t.Pos}, Value: s}
	case KwTrue:
		return &BoolLit{base: base{t.Pos}, Value: true}
	case KwFalse:
		return &BoolLit{base: base{t.Pos}, Value: false}
	case LPAREN:
		x := p.parseExpr()
		p.expect(RPAREN)
		return &ParenExpr{base: base{t.Pos}, X: x}
	case MINUS, NOT, BITXOR:
		x := p.parseUnary()
		return &UnaryExpr{base: base{t.Pos}, Op: t.Kind, X: x}
	default:
		p.errorf(t.Pos, "%w: unexpected token %v %q", ErrSyntax, t.Kind, t.Text)
		return &Ident{base: base{t.Pos}, Name: ""}
	}
}

func (p *Parser) parseCall(fn Token) Expr {
	p.expect(LPAREN)
	var args []Expr
	if p.sc.Peek().Kind != RPAREN {
		args = append(args, p.parseExpr())
		for p.sc.Peek().Kind == COMMA {
			p.sc.Next()
			args = append(args, p.parseExpr())
		}
	}
	p.expect(RPAREN)
	return &CallExpr{base: base{fn.Pos}, Fun: fn.Text, Args: args}
}
