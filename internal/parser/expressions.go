package parser

import (
	"strconv"
	"strings"

	"github.com/tj-mc/tilde-sub001/internal/ast"
	"github.com/tj-mc/tilde-sub001/internal/token"
)

// The expression grammar is a fixed precedence ladder:
//
//	or > and > comparison > addition > multiplication > primary
//
// Calls are primaries: a head identifier consumes space-separated
// arguments until a terminator, `is`, or a binary operator.
func (p *Parser) parseExpression() ast.Expression {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expression {
	expr := p.parseAnd()
	if expr == nil {
		return nil
	}

	for p.curIs(token.OR) {
		opTok := p.cur()
		p.advance()
		right := p.parseAnd()
		if right == nil {
			return nil
		}
		expr = &ast.BinaryExpr{Token: opTok, Operator: "or", Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) parseAnd() ast.Expression {
	expr := p.parseComparison()
	if expr == nil {
		return nil
	}

	for p.curIs(token.AND) {
		opTok := p.cur()
		p.advance()
		right := p.parseComparison()
		if right == nil {
			return nil
		}
		expr = &ast.BinaryExpr{Token: opTok, Operator: "and", Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) parseComparison() ast.Expression {
	expr := p.parseAddition()
	if expr == nil {
		return nil
	}

	for {
		switch p.cur().Type {
		case token.LT, token.LT_EQ, token.GT, token.GT_EQ, token.EQ, token.NOT_EQ:
			opTok := p.cur()
			p.advance()
			right := p.parseAddition()
			if right == nil {
				return nil
			}
			expr = &ast.BinaryExpr{Token: opTok, Operator: opTok.Literal, Left: expr, Right: right}
		default:
			return expr
		}
	}
}

func (p *Parser) parseAddition() ast.Expression {
	expr := p.parseMultiplication()
	if expr == nil {
		return nil
	}

	for p.curIs(token.PLUS) || p.curIs(token.MINUS) {
		opTok := p.cur()
		p.advance()
		right := p.parseMultiplication()
		if right == nil {
			return nil
		}
		expr = &ast.BinaryExpr{Token: opTok, Operator: opTok.Literal, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) parseMultiplication() ast.Expression {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}

	for p.curIs(token.ASTERISK) || p.curIs(token.SLASH) || p.curIs(token.BACKSLASH) || p.curIs(token.PERCENT) {
		opTok := p.cur()
		p.advance()
		right := p.parsePrimary()
		if right == nil {
			return nil
		}
		expr = &ast.BinaryExpr{Token: opTok, Operator: opTok.Literal, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case token.NUMBER:
		p.advance()
		return p.numberLiteral(tok)

	case token.STRING:
		p.advance()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}

	case token.INTERP:
		p.advance()
		return p.parseInterpolatedString(tok)

	case token.TRUE, token.FALSE:
		p.advance()
		return &ast.BooleanLiteral{Token: tok, Value: tok.Type == token.TRUE}

	case token.NULL:
		p.advance()
		return &ast.NullLiteral{Token: tok}

	case token.PIPE:
		return p.parseAnonymousFn()

	case token.VARIABLE:
		p.advance()
		return p.parsePropertyChain(&ast.Variable{Token: tok, Name: tok.Literal})

	case token.IDENT:
		return p.parseCallHead()

	case token.LPAREN:
		p.advance()
		expr := p.parseExpression()
		if expr == nil {
			return nil
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return expr

	case token.LBRACE:
		return p.parseObjectLiteral()

	case token.LBRACKET:
		return p.parseListLiteral()

	default:
		p.addError("unexpected token %s", tok.Type)
		return nil
	}
}

// parseCallHead parses `name arg arg ...`. A parenthesized argument is a
// full grouped expression; if a binary operator follows it, the argument
// list stops there so `double (1 + 2) * 3` multiplies the call result.
func (p *Parser) parseCallHead() *ast.CallExpr {
	nameTok := p.cur()
	call := &ast.CallExpr{Token: nameTok, Name: nameTok.Literal}
	p.advance()

	for !p.isExpressionTerminator() && !p.curIs(token.IS) && !p.isBinaryOperator(p.cur().Type) {
		if p.curIs(token.LPAREN) {
			p.advance()
			arg := p.parseExpression()
			if arg == nil {
				return nil
			}
			if !p.expect(token.RPAREN) {
				return nil
			}
			call.Args = append(call.Args, arg)
			if p.isBinaryOperator(p.cur().Type) {
				break
			}
			continue
		}

		arg := p.parseCallArgument()
		if arg == nil {
			return nil
		}
		call.Args = append(call.Args, arg)
	}

	return call
}

// parseCallArgument parses one space-separated argument. Unlike a full
// expression, a bare identifier here is a function reference and binary
// operators are not consumed, so `map ~xs double` gets two arguments.
func (p *Parser) parseCallArgument() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case token.NUMBER:
		p.advance()
		return p.numberLiteral(tok)

	case token.STRING:
		p.advance()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}

	case token.INTERP:
		p.advance()
		return p.parseInterpolatedString(tok)

	case token.TRUE, token.FALSE:
		p.advance()
		return &ast.BooleanLiteral{Token: tok, Value: tok.Type == token.TRUE}

	case token.NULL:
		p.advance()
		return &ast.NullLiteral{Token: tok}

	case token.PIPE:
		return p.parseAnonymousFn()

	case token.VARIABLE:
		p.advance()
		return p.parsePropertyChain(&ast.Variable{Token: tok, Name: tok.Literal})

	case token.IDENT:
		p.advance()
		return &ast.CallExpr{Token: tok, Name: tok.Literal, IsRef: true}

	case token.LBRACE:
		return p.parseObjectLiteral()

	case token.LBRACKET:
		return p.parseListLiteral()

	default:
		p.addError("unexpected token in argument position: %s", tok.Type)
		return nil
	}
}

func (p *Parser) parsePropertyChain(base ast.Expression) ast.Expression {
	expr := base
	for p.curIs(token.PERIOD) {
		dotTok := p.cur()
		p.advance()
		key := p.parsePropertyKey()
		if key == nil {
			return nil
		}
		expr = &ast.PropertyAccess{Token: dotTok, Base: expr, Key: key}
	}
	return expr
}

func (p *Parser) numberLiteral(tok token.Token) ast.Expression {
	value, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.addError("could not parse %q as number", tok.Literal)
		return nil
	}
	return &ast.NumberLiteral{
		Token:      tok,
		Value:      value,
		HadDecimal: strings.Contains(tok.Literal, "."),
	}
}

// parseInterpolatedString splits an INTERP literal into text and
// expression parts. The lexer keeps the backticks; each backtick span
// must hold a variable reference, optionally with a dotted path.
func (p *Parser) parseInterpolatedString(tok token.Token) ast.Expression {
	result := &ast.InterpolatedString{Token: tok}
	raw := tok.Literal

	for len(raw) > 0 {
		tick := strings.IndexByte(raw, '`')
		if tick < 0 {
			result.Parts = append(result.Parts, ast.InterpPart{Text: raw})
			break
		}
		if tick > 0 {
			result.Parts = append(result.Parts, ast.InterpPart{Text: raw[:tick]})
		}
		raw = raw[tick+1:]

		end := strings.IndexByte(raw, '`')
		if end < 0 {
			p.addError("unterminated interpolation in string")
			return nil
		}
		expr := p.parseInterpSpan(tok, raw[:end])
		if expr == nil {
			return nil
		}
		result.Parts = append(result.Parts, ast.InterpPart{Expr: expr})
		raw = raw[end+1:]
	}

	return result
}

func (p *Parser) parseInterpSpan(tok token.Token, span string) ast.Expression {
	if !strings.HasPrefix(span, "~") || len(span) < 2 {
		p.addError("interpolation must reference a variable, got %q", span)
		return nil
	}

	segments := strings.Split(span[1:], ".")
	var expr ast.Expression = &ast.Variable{Token: tok, Name: segments[0]}
	for _, seg := range segments[1:] {
		if seg == "" {
			p.addError("empty property in interpolation %q", span)
			return nil
		}
		var key ast.Expression
		if value, err := strconv.ParseFloat(seg, 64); err == nil {
			key = &ast.NumberLiteral{Token: tok, Value: value}
		} else {
			key = &ast.StringLiteral{Token: tok, Value: seg}
		}
		expr = &ast.PropertyAccess{Token: tok, Base: expr, Key: key}
	}
	return expr
}

// parseAnonymousFn parses `|~p1 ~p2 (expr)|`.
func (p *Parser) parseAnonymousFn() ast.Expression {
	pipeTok := p.cur()
	if !p.expect(token.PIPE) {
		return nil
	}

	var params []string
	for p.curIs(token.VARIABLE) {
		params = append(params, p.cur().Literal)
		p.advance()
	}
	if len(params) == 0 {
		p.addError("anonymous function must have at least one parameter")
		return nil
	}
	if !p.curIs(token.LPAREN) {
		p.addError("expected ( to open anonymous function body, got %s", p.cur().Type)
		return nil
	}
	p.advance()

	body := p.parseExpression()
	if body == nil {
		return nil
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	if !p.expect(token.PIPE) {
		return nil
	}

	return &ast.AnonymousFn{Token: pipeTok, Params: params, Body: body}
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	braceTok := p.cur()
	p.advance()
	p.skipNewlines()

	obj := &ast.ObjectLiteral{Token: braceTok}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		var key string
		switch p.cur().Type {
		case token.IDENT, token.STRING:
			key = p.cur().Literal
		default:
			p.addError("expected object key, got %s", p.cur().Type)
			return nil
		}
		p.advance()

		if !p.expect(token.COLON) {
			return nil
		}

		value := p.parseExpression()
		if value == nil {
			return nil
		}
		obj.Keys = append(obj.Keys, key)
		obj.Values = append(obj.Values, value)

		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.advance()
			p.skipNewlines()
		} else if !p.curIs(token.RBRACE) {
			p.addError("expected , or } in object literal, got %s", p.cur().Type)
			return nil
		}
	}

	if !p.expect(token.RBRACE) {
		return nil
	}
	return obj
}

func (p *Parser) parseListLiteral() ast.Expression {
	bracketTok := p.cur()
	p.advance()
	p.skipNewlines()

	list := &ast.ListLiteral{Token: bracketTok}
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		element := p.parseExpression()
		if element == nil {
			return nil
		}
		list.Elements = append(list.Elements, element)

		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.advance()
			p.skipNewlines()
		} else if !p.curIs(token.RBRACKET) {
			p.addError("expected , or ] in list literal, got %s", p.cur().Type)
			return nil
		}
	}

	if !p.expect(token.RBRACKET) {
		return nil
	}
	return list
}
