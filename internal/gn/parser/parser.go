// Package parser implements a recursive-descent parser for GN build files,
// producing the node shapes fixed by the parser adapter contract (internal/gn/ast).
//
// Grounded on the recursive-descent/precedence-climbing shape of
// carrion-lsp's internal/carrion/parser, simplified for GN's much smaller
// grammar (no indentation-sensitive blocks, no classes/functions) and
// adapted to recover from a broken statement by skipping to the next
// plausible statement boundary rather than aborting: parse-error nodes
// are carried through so analysis never aborts on broken input.
package parser

import (
	"fmt"

	"github.com/gnlang/gnls/internal/gn/ast"
	"github.com/gnlang/gnls/internal/gn/lexer"
	"github.com/gnlang/gnls/internal/gn/token"
)

// Parse tokenizes and parses a complete GN source buffer into a top-level
// Block. It never returns an error: unrecoverable syntax is represented as
// ast.ErrorStatement nodes within the returned tree.
func Parse(src string) *ast.Block {
	p := &parser{lex: lexer.New(src), src: src}
	p.next()
	p.next()
	return p.parseBlockBody(len(src))
}

type parser struct {
	lex *lexer.Lexer
	src string

	cur  token.Token
	peek token.Token
}

func (p *parser) next() {
	p.cur = p.peek
	p.peek = p.lex.Next()
}

// parseBlockBody parses statements until RBRACE or EOF, where fallbackEnd is
// the span end to use if the block runs off the end of input.
func (p *parser) parseBlockBody(fallbackEnd int) *ast.Block {
	start := p.cur.Start
	block := &ast.Block{Sp: ast.Span{Start: start, End: fallbackEnd}}
	for p.cur.Kind != token.EOF && p.cur.Kind != token.RBRACE {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}
	block.Sp.End = p.cur.End
	return block
}

func (p *parser) parseBracedBlock() *ast.Block {
	if p.cur.Kind != token.LBRACE {
		return &ast.Block{Sp: ast.Span{Start: p.cur.Start, End: p.cur.Start}}
	}
	start := p.cur.Start
	p.next() // consume {
	inner := p.parseBlockBody(p.cur.End)
	inner.Sp.Start = start
	if p.cur.Kind == token.RBRACE {
		inner.Sp.End = p.cur.End
		p.next()
	}
	return inner
}

func (p *parser) parseStatement() ast.Statement {
	switch p.cur.Kind {
	case token.IF:
		return p.parseCondition()
	case token.RBRACE, token.EOF:
		return nil
	default:
		return p.parseSimpleStatement()
	}
}

func (p *parser) parseCondition() *ast.Condition {
	start := p.cur.Start
	p.next() // consume 'if'
	if p.cur.Kind != token.LPAREN {
		return p.errorStatementAsCondition(start, "expected ( after if")
	}
	p.next()
	cond := p.parseExpr(lowest)
	if p.cur.Kind == token.RPAREN {
		p.next()
	}
	then := p.parseBracedBlock()
	c := &ast.Condition{Cond: cond, Then: then, Sp: ast.Span{Start: start, End: then.Sp.End}}
	if p.cur.Kind == token.ELSE {
		p.next()
		if p.cur.Kind == token.IF {
			elseCond := p.parseCondition()
			c.Else = elseCond
			c.Sp.End = elseCond.Sp.End
		} else {
			elseBlock := p.parseBracedBlock()
			c.Else = elseBlock
			c.Sp.End = elseBlock.Sp.End
		}
	}
	return c
}

func (p *parser) errorStatementAsCondition(start int, msg string) *ast.Condition {
	// Malformed if-statement: recover by wrapping in a Condition with an
	// empty body so the rest of the enclosing block keeps parsing.
	p.skipToStatementBoundary()
	return &ast.Condition{
		Cond: &ast.ErrorStatement{Message: msg, Sp: ast.Span{Start: start, End: p.cur.Start}},
		Then: &ast.Block{Sp: ast.Span{Start: p.cur.Start, End: p.cur.Start}},
		Sp:   ast.Span{Start: start, End: p.cur.Start},
	}
}

// parseSimpleStatement parses either an Assignment or a Call (a bare
// expression statement that is neither is reported as an ErrorStatement).
func (p *parser) parseSimpleStatement() ast.Statement {
	start := p.cur.Start
	comments := p.cur.Comments

	expr := p.parseExpr(lowest)

	switch p.cur.Kind {
	case token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN:
		lv, ok := expr.(ast.LValue)
		if !ok {
			p.skipToStatementBoundary()
			return &ast.ErrorStatement{Message: "left-hand side is not assignable", Sp: ast.Span{Start: start, End: p.cur.Start}}
		}
		op := p.cur.Kind
		p.next()
		rv := p.parseExpr(lowest)
		return &ast.Assignment{LValue: lv, Op: op, RValue: rv, Comments: comments, Sp: ast.Span{Start: start, End: rv.Span().End}}
	default:
		if call, ok := expr.(*ast.Call); ok {
			return call
		}
		if es, ok := expr.(*ast.ErrorStatement); ok {
			p.skipToStatementBoundary()
			return es
		}
		end := p.cur.Start
		p.skipToStatementBoundary()
		return &ast.ErrorStatement{Message: "expected assignment or call statement", Sp: ast.Span{Start: start, End: end}}
	}
}

// skipToStatementBoundary advances until the next token plausibly starts a
// new statement, so a broken statement never poisons the rest of the file.
func (p *parser) skipToStatementBoundary() {
	for p.cur.Kind != token.EOF && p.cur.Kind != token.RBRACE {
		if p.cur.Kind == token.IDENT || p.cur.Kind == token.IF {
			return
		}
		p.next()
	}
}

// Operator precedence, lowest to highest.
const (
	lowest int = iota
	orPrec
	andPrec
	equalityPrec
	relationalPrec
	additivePrec
	unaryPrec
)

func precedenceOf(k token.Kind) int {
	switch k {
	case token.OR:
		return orPrec
	case token.AND:
		return andPrec
	case token.EQ, token.NOT_EQ:
		return equalityPrec
	case token.LT, token.GT, token.LTE, token.GTE:
		return relationalPrec
	case token.PLUS, token.MINUS:
		return additivePrec
	default:
		return lowest
	}
}

func (p *parser) parseExpr(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		prec := precedenceOf(p.cur.Kind)
		if prec <= minPrec || prec == lowest {
			break
		}
		op := p.cur.Kind
		start := left.Span().Start
		p.next()
		right := p.parseExpr(prec)
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Sp: ast.Span{Start: start, End: right.Span().End}}
	}
	return left
}

func (p *parser) parseUnary() ast.Expr {
	if p.cur.Kind == token.NOT || p.cur.Kind == token.MINUS {
		start := p.cur.Start
		op := p.cur.Kind
		p.next()
		operand := p.parseExpr(unaryPrec)
		return &ast.UnaryExpr{Op: op, Operand: operand, Sp: ast.Span{Start: start, End: operand.Span().End}}
	}
	return p.parsePostfix(p.parsePrimary())
}

// parsePostfix handles `[index]` and `.member` chains on top of a parsed
// primary, producing ArrayAccess/ScopeAccess nodes that double as LValues.
func (p *parser) parsePostfix(base ast.Expr) ast.Expr {
	for {
		switch p.cur.Kind {
		case token.LBRACKET:
			lv, ok := base.(ast.LValue)
			if !ok {
				return base
			}
			start := base.Span().Start
			p.next()
			index := p.parseExpr(lowest)
			end := p.cur.End
			if p.cur.Kind == token.RBRACKET {
				p.next()
			}
			base = &ast.ArrayAccess{Array: lv, Index: index, Sp: ast.Span{Start: start, End: end}}
		case token.DOT:
			lv, ok := base.(ast.LValue)
			if !ok {
				return base
			}
			start := base.Span().Start
			p.next()
			if p.cur.Kind != token.IDENT {
				return base
			}
			member := &ast.Identifier{Name: p.cur.Literal, Sp: ast.Span{Start: p.cur.Start, End: p.cur.End}}
			end := p.cur.End
			p.next()
			base = &ast.ScopeAccess{Scope: lv, Member: member, Sp: ast.Span{Start: start, End: end}}
		default:
			return base
		}
	}
}

func (p *parser) parsePrimary() ast.Expr {
	switch p.cur.Kind {
	case token.INT:
		lit := p.cur.Literal
		sp := ast.Span{Start: p.cur.Start, End: p.cur.End}
		var v int64
		fmt.Sscanf(lit, "%d", &v)
		p.next()
		return &ast.IntegerLiteral{Value: v, Sp: sp}
	case token.STRING:
		raw := p.cur.Literal
		sp := ast.Span{Start: p.cur.Start, End: p.cur.End}
		p.next()
		return &ast.StringLiteral{Raw: raw, Value: decodeString(raw), Sp: sp}
	case token.TRUE:
		sp := ast.Span{Start: p.cur.Start, End: p.cur.End}
		p.next()
		return &ast.Identifier{Name: "true", Sp: sp}
	case token.FALSE:
		sp := ast.Span{Start: p.cur.Start, End: p.cur.End}
		p.next()
		return &ast.Identifier{Name: "false", Sp: sp}
	case token.IDENT:
		return p.parseIdentOrCall()
	case token.LBRACKET:
		return p.parseList()
	case token.LBRACE:
		return p.parseBracedBlock()
	case token.LPAREN:
		start := p.cur.Start
		p.next()
		inner := p.parseExpr(lowest)
		end := p.cur.End
		if p.cur.Kind == token.RPAREN {
			p.next()
		}
		return &ast.ParenExpr{Inner: inner, Sp: ast.Span{Start: start, End: end}}
	default:
		start := p.cur.Start
		msg := fmt.Sprintf("unexpected token %s", p.cur.Kind)
		p.next()
		return &ast.ErrorStatement{Message: msg, Sp: ast.Span{Start: start, End: p.cur.Start}}
	}
}

func (p *parser) parseIdentOrCall() ast.Expr {
	name := p.cur.Literal
	sp := ast.Span{Start: p.cur.Start, End: p.cur.End}
	comments := p.cur.Comments
	ident := &ast.Identifier{Name: name, Sp: sp}
	p.next()
	if p.cur.Kind != token.LPAREN {
		return ident
	}
	p.next() // consume (
	var args []ast.Expr
	for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
		args = append(args, p.parseExpr(lowest))
		if p.cur.Kind == token.COMMA {
			p.next()
			continue
		}
		break
	}
	end := p.cur.End
	if p.cur.Kind == token.RPAREN {
		p.next()
	}
	call := &ast.Call{Function: ident, Args: args, Comments: comments, Sp: ast.Span{Start: ident.Sp.Start, End: end}}
	if p.cur.Kind == token.LBRACE {
		body := p.parseBracedBlock()
		call.Body = body
		call.Sp.End = body.Sp.End
	}
	return call
}

func (p *parser) parseList() *ast.ListExpr {
	start := p.cur.Start
	p.next() // consume [
	var elems []ast.Expr
	for p.cur.Kind != token.RBRACKET && p.cur.Kind != token.EOF {
		elems = append(elems, p.parseExpr(lowest))
		if p.cur.Kind == token.COMMA {
			p.next()
			continue
		}
		break
	}
	end := p.cur.End
	if p.cur.Kind == token.RBRACKET {
		p.next()
	}
	return &ast.ListExpr{Elements: elems, Sp: ast.Span{Start: start, End: end}}
}

// decodeString strips the surrounding quotes and unescapes \" and \\.
// Interpolation markers ($var, ${var}) are left as literal text: this
// engine never evaluates them.
func decodeString(raw string) string {
	if len(raw) < 2 {
		return ""
	}
	body := raw[1 : len(raw)-1]
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			default:
				out = append(out, body[i])
			}
			continue
		}
		out = append(out, body[i])
	}
	return string(out)
}
