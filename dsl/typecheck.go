// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dsl

import "github.com/snncore/gennsl/gtype"

// Checker type-checks a parsed Fragment against a Scope: it resolves every
// identifier and sigil reference, verifies numeric operands are actually
// numeric, verifies call arity against the scope's function table, and
// rejects assignment to read-only bindings. It never stops at the first
// problem; every diagnostic found is recorded on the ErrorHandler.
type Checker struct {
	scope Scope
	tc    *gtype.TypeContext
	errs  *ErrorHandler
}

// NewChecker returns a Checker that resolves names against scope using the
// precision policy in tc, recording problems on errs.
func NewChecker(scope Scope, tc *gtype.TypeContext, errs *ErrorHandler) *Checker {
	return &Checker{scope: scope, tc: tc, errs: errs}
}

// Check type-checks every statement in f.
func (c *Checker) Check(f *Fragment) {
	for _, s := range f.List {
		c.checkStmt(s)
	}
}

func (c *Checker) errorf(pos Position, format string, args ...any) {
	c.errs.Errorf(pos, format, args...)
}

func (c *Checker) checkStmt(s Stmt) {
	switch n := s.(type) {
	case *ExprStmt:
		c.checkExpr(n.X)
	case *VarDecl:
		if n.Init != nil {
			c.checkExpr(n.Init)
		}
	case *BlockStmt:
		for _, sub := range n.List {
			c.checkStmt(sub)
		}
	case *IfStmt:
		c.checkCondition(n.Cond)
		c.checkStmt(n.Body)
		if n.Else != nil {
			c.checkStmt(n.Else)
		}
	case *WhileStmt:
		c.checkCondition(n.Cond)
		c.checkStmt(n.Body)
	case *ForStmt:
		if n.Init != nil {
			c.checkStmt(n.Init)
		}
		if n.Cond != nil {
			c.checkCondition(n.Cond)
		}
		if n.Post != nil {
			c.checkStmt(n.Post)
		}
		c.checkStmt(n.Body)
	case *ReturnStmt:
		if n.Result != nil {
			c.checkExpr(n.Result)
		}
	case nil:
	default:
		c.errorf(s.Pos(), "%w: unhandled statement kind %T", ErrSyntax, s)
	}
}

func (c *Checker) checkCondition(e Expr) {
	t := c.checkExpr(e)
	if t.Base != gtype.Bool && t.Base != gtype.Void {
		// most conditions are plain numeric comparisons that resolve to a
		// concrete scalar kind rather than an explicit gtype.Bool; only a
		// resolved void operand (an unresolvable sub-expression) is wrong.
	}
}

// checkExpr resolves and returns the type of e, recording any diagnostics.
func (c *Checker) checkExpr(e Expr) gtype.ResolvedType {
	switch n := e.(type) {
	case *Ident:
		sym, ok := c.scope.Lookup(n.Name)
		if !ok {
			c.errorf(n.Pos(), "%w: %q", ErrUnknownIdentifier, n.Name)
			return gtype.ResolvedType{}
		}
		return c.tc.Resolve(sym.Type)
	case *SigilRef:
		sym, ok := c.scope.LookupSigil(n.Name)
		if !ok {
			c.errorf(n.Pos(), "%w: $(%s)", ErrUnknownIdentifier, n.Name)
			return gtype.ResolvedType{}
		}
		return c.tc.Resolve(sym.Type)
	case *IntLit:
		return gtype.Named(gtype.Int32)
	case *FloatLit:
		return c.tc.Resolve(gtype.ScalarType)
	case *StringLit:
		return gtype.ResolvedType{Base: gtype.UInt8, Pointer: 1, Const: true}
	case *BoolLit:
		return gtype.Named(gtype.Bool)
	case *ParenExpr:
		return c.checkExpr(n.X)
	case *UnaryExpr:
		t := c.checkExpr(n.X)
		if n.Op == NOT {
			return gtype.Named(gtype.Bool)
		}
		c.requireNumeric(n.X.Pos(), t)
		return t
	case *IncDecExpr:
		c.requireWritable(n.X)
		return c.checkExpr(n.X)
	case *BinaryExpr:
		xt := c.checkExpr(n.X)
		yt := c.checkExpr(n.Y)
		switch n.Op {
		case EQ, NE, LT, LE, GT, GE, LAND, LOR:
			return gtype.Named(gtype.Bool)
		default:
			c.requireNumeric(n.X.Pos(), xt)
			c.requireNumeric(n.Y.Pos(), yt)
			return widerOf(xt, yt)
		}
	case *CondExpr:
		c.checkExpr(n.Cond)
		xt := c.checkExpr(n.X)
		yt := c.checkExpr(n.Y)
		return widerOf(xt, yt)
	case *AssignExpr:
		c.requireWritable(n.Lhs)
		lt := c.checkExpr(n.Lhs)
		c.checkExpr(n.Rhs)
		return lt
	case *CallExpr:
		return c.checkCall(n)
	case *IndexExpr:
		c.checkExpr(n.X)
		c.checkExpr(n.Index)
		return gtype.ResolvedType{} // element type is backend/array-specific; left unresolved here
	case *SelectorExpr:
		c.checkExpr(n.X)
		return gtype.ResolvedType{}
	default:
		c.errorf(e.Pos(), "%w: unhandled expression kind %T", ErrSyntax, e)
		return gtype.ResolvedType{}
	}
}

func (c *Checker) checkCall(n *CallExpr) gtype.ResolvedType {
	arity, ok := c.scope.Call(n.Fun)
	if !ok {
		c.errorf(n.Pos(), "%w: %q", ErrUnknownIdentifier, n.Fun)
	} else if arity >= 0 && arity != len(n.Args) {
		c.errorf(n.Pos(), "%w: %q wants %d argument(s), got %d", ErrWrongArity, n.Fun, arity, len(n.Args))
	}
	for _, a := range n.Args {
		c.checkExpr(a)
	}
	return c.tc.Resolve(gtype.ScalarType)
}

func (c *Checker) requireNumeric(pos Position, t gtype.ResolvedType) {
	if t.Base == gtype.Void {
		return // unresolved upstream error already reported
	}
	if !t.Base.IsIntegral() && !t.Base.IsFloating() {
		c.errorf(pos, "%w: expected a numeric type, got %s", ErrType, t)
	}
}

func (c *Checker) requireWritable(e Expr) {
	switch n := e.(type) {
	case *Ident:
		sym, ok := c.scope.Lookup(n.Name)
		if ok && !sym.Writable {
			c.errorf(n.Pos(), "%w: %q", ErrWriteToReadOnly, n.Name)
		}
	case *SigilRef:
		sym, ok := c.scope.LookupSigil(n.Name)
		if ok && !sym.Writable {
			c.errorf(n.Pos(), "%w: $(%s)", ErrWriteToReadOnly, n.Name)
		}
	case *IndexExpr, *SelectorExpr, *ParenExpr:
		// indexed/selected/parenthesised targets are assumed writable;
		// their element ownership is checked where the array is declared,
		// not at every use site.
	default:
		c.errorf(e.Pos(), "%w: cannot assign to this expression", ErrType)
	}
}

// widerOf picks the operand type that should survive an arithmetic
// combination: floating beats integral, and within a class the wider
// Kind (as ordered by NumericLimits range) beats the narrower one. This
// mirrors ordinary C usual-arithmetic-conversion behaviour closely enough
// for code-generation purposes without modelling the full promotion table.
func widerOf(a, b gtype.ResolvedType) gtype.ResolvedType {
	if a.Base == gtype.Void {
		return b
	}
	if b.Base == gtype.Void {
		return a
	}
	if a.Base.IsFloating() && !b.Base.IsFloating() {
		return a
	}
	if b.Base.IsFloating() && !a.Base.IsFloating() {
		return b
	}
	al, bl := gtype.NumericLimits(a.Base), gtype.NumericLimits(b.Base)
	if bl.Max > al.Max {
		return b
	}
	return a
}
