// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dsl

import (
	"fmt"
	"strings"

	"github.com/snncore/gennsl/snnbool"
)

// Printer renders a type-checked Fragment back out as backend target
// source. Every Ident and SigilRef is replaced with whatever text the
// Scope says it should expand to (a field access on a merged-group
// struct, a positional substitution for a $(0)-style event-code
// parameter, or just the bare name when the scope has nothing special
// to say) — this is the step that turns environment-relative DSL source
// into a self-contained C-like statement a backend can compile.
type Printer struct {
	scope  Scope
	indent int
	buf    strings.Builder
}

// NewPrinter returns a Printer resolving identifiers against scope.
func NewPrinter(scope Scope) *Printer {
	return &Printer{scope: scope}
}

// Print renders every statement of f in order and returns the result.
func (p *Printer) Print(f *Fragment) string {
	p.buf.Reset()
	for _, s := range f.List {
		p.writeStmt(s)
	}
	return p.buf.String()
}

func (p *Printer) writeIndent() {
	p.buf.WriteString(strings.Repeat("    ", p.indent))
}

func (p *Printer) writeStmt(s Stmt) {
	switch n := s.(type) {
	case *ExprStmt:
		p.writeIndent()
		p.writeExpr(n.X)
		p.buf.WriteString(";\n")
	case *VarDecl:
		p.writeIndent()
		fmt.Fprintf(&p.buf, "%s %s", n.Type, n.Name)
		if n.Init != nil {
			p.buf.WriteString(" = ")
			p.writeExpr(n.Init)
		}
		p.buf.WriteString(";\n")
	case *BlockStmt:
		p.writeBlock(n)
	case *IfStmt:
		p.writeIndent()
		p.buf.WriteString("if (")
		p.writeExpr(n.Cond)
		p.buf.WriteString(") ")
		p.writeBlockInline(n.Body)
		if n.Else != nil {
			p.buf.WriteString(" else ")
			switch e := n.Else.(type) {
			case *IfStmt:
				p.writeElseIf(e)
			case *BlockStmt:
				p.writeBlockInline(e)
			}
		} else {
			p.buf.WriteString("\n")
		}
	case *WhileStmt:
		p.writeIndent()
		p.buf.WriteString("while (")
		p.writeExpr(n.Cond)
		p.buf.WriteString(") ")
		p.writeBlockInline(n.Body)
		p.buf.WriteString("\n")
	case *ForStmt:
		p.writeIndent()
		p.buf.WriteString("for (")
		p.writeSimple(n.Init)
		p.buf.WriteString("; ")
		if n.Cond != nil {
			p.writeExpr(n.Cond)
		}
		p.buf.WriteString("; ")
		p.writeSimple(n.Post)
		p.buf.WriteString(") ")
		p.writeBlockInline(n.Body)
		p.buf.WriteString("\n")
	case *ReturnStmt:
		p.writeIndent()
		p.buf.WriteString("return")
		if n.Result != nil {
			p.buf.WriteString(" ")
			p.writeExpr(n.Result)
		}
		p.buf.WriteString(";\n")
	}
}

// writeElseIf prints a chained "else if" without an intervening newline,
// matching how the teacher corpus's own formatted C output reads.
func (p *Printer) writeElseIf(n *IfStmt) {
	p.buf.WriteString("if (")
	p.writeExpr(n.Cond)
	p.buf.WriteString(") ")
	p.writeBlockInline(n.Body)
	if n.Else != nil {
		p.buf.WriteString(" else ")
		switch e := n.Else.(type) {
		case *IfStmt:
			p.writeElseIf(e)
		case *BlockStmt:
			p.writeBlockInline(e)
		}
	} else {
		p.buf.WriteString("\n")
	}
}

func (p *Printer) writeSimple(s Stmt) {
	switch n := s.(type) {
	case *ExprStmt:
		p.writeExpr(n.X)
	case *VarDecl:
		fmt.Fprintf(&p.buf, "%s %s", n.Type, n.Name)
		if n.Init != nil {
			p.buf.WriteString(" = ")
			p.writeExpr(n.Init)
		}
	}
}

func (p *Printer) writeBlock(n *BlockStmt) {
	p.writeIndent()
	p.writeBlockInline(n)
	p.buf.WriteString("\n")
}

func (p *Printer) writeBlockInline(n *BlockStmt) {
	p.buf.WriteString("{\n")
	p.indent++
	for _, s := range n.List {
		p.writeStmt(s)
	}
	p.indent--
	p.writeIndent()
	p.buf.WriteString("}")
}

func (p *Printer) writeExpr(e Expr) {
	switch n := e.(type) {
	case *Ident:
		p.buf.WriteString(p.expandIdent(n.Name))
	case *SigilRef:
		p.buf.WriteString(p.expandSigil(n.Name))
	case *IntLit:
		p.buf.WriteString(n.Text)
	case *FloatLit:
		p.buf.WriteString(n.Text)
	case *StringLit:
		fmt.Fprintf(&p.buf, "%q", n.Value)
	case *BoolLit:
		p.buf.WriteString(snnbool.FromBool(n.Value).String())
	case *ParenExpr:
		p.buf.WriteString("(")
		p.writeExpr(n.X)
		p.buf.WriteString(")")
	case *UnaryExpr:
		p.buf.WriteString(n.Op.String())
		p.writeExpr(n.X)
	case *IncDecExpr:
		p.writeExpr(n.X)
		p.buf.WriteString(n.Op.String())
	case *BinaryExpr:
		p.writeExpr(n.X)
		p.buf.WriteString(" ")
		p.buf.WriteString(n.Op.String())
		p.buf.WriteString(" ")
		p.writeExpr(n.Y)
	case *CondExpr:
		p.writeExpr(n.Cond)
		p.buf.WriteString(" ? ")
		p.writeExpr(n.X)
		p.buf.WriteString(" : ")
		p.writeExpr(n.Y)
	case *AssignExpr:
		p.writeExpr(n.Lhs)
		p.buf.WriteString(" ")
		p.buf.WriteString(n.Op.String())
		p.buf.WriteString(" ")
		p.writeExpr(n.Rhs)
	case *CallExpr:
		p.buf.WriteString(n.Fun)
		p.buf.WriteString("(")
		for i, a := range n.Args {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.writeExpr(a)
		}
		p.buf.WriteString(")")
	case *IndexExpr:
		p.writeExpr(n.X)
		p.buf.WriteString("[")
		p.writeExpr(n.Index)
		p.buf.WriteString("]")
	case *SelectorExpr:
		p.writeExpr(n.X)
		p.buf.WriteString(".")
		p.buf.WriteString(n.Sel)
	}
}

func (p *Printer) expandIdent(name string) string {
	if sym, ok := p.scope.Lookup(name); ok && sym.Expand != "" {
		return sym.Expand
	}
	return name
}

func (p *Printer) expandSigil(name string) string {
	if sym, ok := p.scope.LookupSigil(name); ok && sym.Expand != "" {
		return sym.Expand
	}
	return fmt.Sprintf("$(%s)", name)
}
