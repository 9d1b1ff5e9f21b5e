package parser

import (
	"fmt"

	"github.com/tj-mc/tilde-sub001/internal/ast"
	"github.com/tj-mc/tilde-sub001/internal/lexer"
	"github.com/tj-mc/tilde-sub001/internal/token"
	"github.com/tj-mc/tilde-sub001/internal/util"
)

// Parser turns a token stream into an AST. It is a recursive-descent
// parser over a materialized token slice, which makes backtracking for
// the property-assignment ambiguity a simple position reset.
type Parser struct {
	src    string
	tokens []token.Token
	pos    int
	errors []string
}

func New(src string) *Parser {
	l := lexer.New(src)
	return &Parser{
		src:    src,
		tokens: l.Tokens(),
		errors: []string{},
	}
}

func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) addError(message string, args ...interface{}) {
	line, col := util.GetLineAndColumn(p.src, p.cur().Position)
	m := fmt.Sprintf(message, args...)
	p.errors = append(p.errors, fmt.Sprintf("[%3d:%2d] %s", line, col, m))
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() token.Token {
	if p.pos+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) curIs(t token.TokenType) bool {
	return p.cur().Type == t
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *Parser) expect(t token.TokenType) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	p.addError("expected %s, got %s", t, p.cur().Type)
	return false
}

func (p *Parser) skipNewlines() {
	for p.curIs(token.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) isBinaryOperator(t token.TokenType) bool {
	switch t {
	case token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.BACKSLASH,
		token.PERCENT, token.LT, token.LT_EQ, token.GT, token.GT_EQ,
		token.EQ, token.NOT_EQ:
		return true
	}
	return false
}

// isExpressionTerminator reports whether the current token ends a
// space-separated argument list.
func (p *Parser) isExpressionTerminator() bool {
	switch p.cur().Type {
	case token.NEWLINE, token.EOF, token.RPAREN, token.RBRACKET, token.RBRACE,
		token.COMMA, token.COLON, token.ELSE, token.RESCUE:
		return true
	}
	return false
}

// ParseProgram parses until EOF or the first error. There is no error
// recovery: the first structural violation aborts the whole parse.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curIs(token.EOF) {
		p.skipNewlines()
		if p.curIs(token.EOF) {
			break
		}
		stmt := p.parseStatement()
		if len(p.errors) > 0 {
			return program
		}
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.skipNewlines()
	}

	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case token.VARIABLE:
		return p.parseVariableStatement()
	case token.IF:
		return p.parseIf()
	case token.LOOP:
		return p.parseLoop()
	case token.FOREACH:
		return p.parseForEach()
	case token.BREAKLOOP:
		stmt := &ast.BreakLoop{Token: p.cur()}
		p.advance()
		return stmt
	case token.ACTION:
		return p.parseActionDef()
	case token.GIVE:
		return p.parseGive()
	case token.ATTEMPT:
		return p.parseAttempt()
	case token.LPAREN:
		return p.parseBlock()
	default:
		return p.parseExpressionStatement()
	}
}

// parseVariableStatement handles every statement form led by a ~variable:
// assignment, up/down, property assignment, function chain, or a plain
// expression such as `~x + 1`.
func (p *Parser) parseVariableStatement() ast.Statement {
	varTok := p.cur()
	name := varTok.Literal
	startPos := p.pos
	p.advance()

	switch p.cur().Type {
	case token.IS:
		p.advance()
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		return &ast.Assignment{Token: varTok, Name: name, Value: value}

	case token.UP, token.DOWN:
		down := p.curIs(token.DOWN)
		p.advance()
		amount := p.parseExpression()
		if amount == nil {
			return nil
		}
		return &ast.IncDec{Token: varTok, Name: name, Delta: amount, Down: down}

	case token.COLON:
		p.advance()
		return p.parseFunctionChain(varTok, name)

	case token.PERIOD:
		if stmt := p.parsePropertyAssignment(varTok, name); stmt != nil {
			return stmt
		}
		// Not an assignment after all. Rewind to the variable and parse
		// the whole thing as an expression.
		p.pos = startPos
		return p.parseExpressionStatement()

	default:
		p.pos = startPos
		return p.parseExpressionStatement()
	}
}

// parsePropertyAssignment tries `~var.key[.key...] is expr`. It returns
// nil when no `is` follows the property chain, leaving the caller to
// backtrack.
func (p *Parser) parsePropertyAssignment(varTok token.Token, name string) ast.Statement {
	saved := p.pos
	var target ast.Expression = &ast.Variable{Token: varTok, Name: name}

	for p.curIs(token.PERIOD) {
		dotTok := p.cur()
		p.advance()
		key := p.parsePropertyKey()
		if key == nil {
			p.pos = saved
			return nil
		}
		access := &ast.PropertyAccess{Token: dotTok, Base: target, Key: key}
		target = access

		if p.curIs(token.IS) {
			p.advance()
			value := p.parseExpression()
			if value == nil {
				return nil
			}
			return &ast.PropertyAssignment{Token: varTok, Target: access, Value: value}
		}
	}

	p.pos = saved
	return nil
}

func (p *Parser) parsePropertyKey() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case token.IDENT:
		p.advance()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}
	case token.NUMBER:
		p.advance()
		return p.numberLiteral(tok)
	case token.VARIABLE:
		p.advance()
		return &ast.Variable{Token: tok, Name: tok.Literal}
	default:
		p.addError("expected property name or number after '.', got %s", tok.Type)
		return nil
	}
}

func (p *Parser) parseIf() ast.Statement {
	ifTok := p.cur()
	p.advance()

	condition := p.parseExpression()
	if condition == nil {
		return nil
	}
	p.skipNewlines()

	consequence := p.parseBlock()
	if consequence == nil {
		return nil
	}

	stmt := &ast.If{Token: ifTok, Condition: condition, Consequence: consequence}

	p.skipNewlines()
	if p.curIs(token.ELSE) {
		p.advance()
		p.skipNewlines()
		if p.curIs(token.IF) {
			stmt.Alternative = p.parseIf()
		} else {
			stmt.Alternative = p.parseBlock()
		}
	}

	return stmt
}

func (p *Parser) parseLoop() ast.Statement {
	loopTok := p.cur()
	p.advance()
	p.skipNewlines()

	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.Loop{Token: loopTok, Body: body}
}

func (p *Parser) parseForEach() ast.Statement {
	feTok := p.cur()
	p.advance()

	if !p.curIs(token.VARIABLE) {
		p.addError("expected variable after 'for-each'")
		return nil
	}
	valueName := p.cur().Literal
	p.advance()

	indexName := ""
	if p.curIs(token.VARIABLE) {
		indexName = p.cur().Literal
		p.advance()
	}
	if p.curIs(token.VARIABLE) {
		p.addError("for-each expects at most 2 variables")
		return nil
	}

	if !p.expect(token.IN) {
		return nil
	}

	iterable := p.parseExpression()
	if iterable == nil {
		return nil
	}
	p.skipNewlines()

	body := p.parseBlock()
	if body == nil {
		return nil
	}

	return &ast.ForEach{
		Token:     feTok,
		ValueName: valueName,
		IndexName: indexName,
		Iterable:  iterable,
		Body:      body,
	}
}

// parseFunctionChain parses the step lines after `~name:`. Steps are
// identifier-led lines; the chain ends at the first line that starts
// with anything else.
func (p *Parser) parseFunctionChain(varTok token.Token, name string) ast.Statement {
	chain := &ast.FunctionChain{Token: varTok, Name: name}

	p.skipNewlines()
	for p.curIs(token.IDENT) {
		step := p.parseCallHead()
		if step == nil {
			return nil
		}
		chain.Steps = append(chain.Steps, step)
		if !p.curIs(token.NEWLINE) && !p.curIs(token.EOF) {
			p.addError("unexpected %s after chain step", p.cur().Type)
			return nil
		}
		p.skipNewlines()
	}

	if len(chain.Steps) == 0 {
		p.addError("function chain needs at least one step")
		return nil
	}
	return chain
}

func (p *Parser) parseActionDef() ast.Statement {
	actionTok := p.cur()
	p.advance()

	if !p.curIs(token.IDENT) {
		p.addError("expected action name after 'action'")
		return nil
	}
	name := p.cur().Literal
	p.advance()

	var params []string
	for p.curIs(token.VARIABLE) {
		params = append(params, p.cur().Literal)
		p.advance()
	}
	p.skipNewlines()

	body := p.parseBlock()
	if body == nil {
		return nil
	}

	return &ast.ActionDef{Token: actionTok, Name: name, Params: params, Body: body}
}

func (p *Parser) parseGive() ast.Statement {
	giveTok := p.cur()
	p.advance()

	stmt := &ast.Give{Token: giveTok}
	if !p.isExpressionTerminator() {
		stmt.Value = p.parseExpression()
	}
	return stmt
}

func (p *Parser) parseAttempt() ast.Statement {
	attemptTok := p.cur()
	p.advance()
	p.skipNewlines()

	body := p.parseBlock()
	if body == nil {
		return nil
	}

	p.skipNewlines()
	if !p.expect(token.RESCUE) {
		return nil
	}

	errName := ""
	if p.curIs(token.VARIABLE) {
		errName = p.cur().Literal
		p.advance()
	}
	p.skipNewlines()

	rescue := p.parseBlock()
	if rescue == nil {
		return nil
	}

	return &ast.Attempt{Token: attemptTok, Body: body, ErrName: errName, Rescue: rescue}
}

func (p *Parser) parseBlock() *ast.Block {
	lpTok := p.cur()
	if !p.expect(token.LPAREN) {
		return nil
	}
	p.skipNewlines()

	block := &ast.Block{Token: lpTok}
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		p.skipNewlines()
		if p.curIs(token.RPAREN) {
			break
		}
		stmt := p.parseStatement()
		if len(p.errors) > 0 {
			return nil
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.skipNewlines()
	}

	if !p.expect(token.RPAREN) {
		return nil
	}
	return block
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.cur()
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	return &ast.ExpressionStatement{Token: tok, Expression: expr}
}
