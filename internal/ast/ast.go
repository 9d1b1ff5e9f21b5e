package ast

import (
	"strconv"
	"strings"

	"github.com/tj-mc/tilde-sub001/internal/token"
)

type Node interface {
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) String() string {
	var out strings.Builder
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// Block is a parenthesized statement list, the body of every control construct.
type Block struct {
	Token      token.Token // the ( token
	Statements []Statement
}

func (b *Block) statementNode() {}
func (b *Block) String() string {
	var out strings.Builder
	out.WriteString("(")
	for i, s := range b.Statements {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(s.String())
	}
	out.WriteString(")")
	return out.String()
}

// Assignment is `~name is <expr>`.
type Assignment struct {
	Token token.Token // the ~name token
	Name  string
	Value Expression
}

func (a *Assignment) statementNode() {}
func (a *Assignment) String() string {
	return "~" + a.Name + " is " + a.Value.String()
}

// PropertyAssignment is `~obj.path.to.key is <expr>`.
type PropertyAssignment struct {
	Token  token.Token
	Target *PropertyAccess
	Value  Expression
}

func (pa *PropertyAssignment) statementNode() {}
func (pa *PropertyAssignment) String() string {
	return pa.Target.String() + " is " + pa.Value.String()
}

type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode() {}
func (es *ExpressionStatement) String() string {
	if es.Expression == nil {
		return ""
	}
	return es.Expression.String()
}

// If covers `if <cond> ( ... )` with an optional else block or else-if chain.
// Alternative is either a *Block or another *If.
type If struct {
	Token       token.Token
	Condition   Expression
	Consequence *Block
	Alternative Statement
}

func (i *If) statementNode() {}
func (i *If) String() string {
	var out strings.Builder
	out.WriteString("if ")
	out.WriteString(i.Condition.String())
	out.WriteString(" ")
	out.WriteString(i.Consequence.String())
	if i.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(i.Alternative.String())
	}
	return out.String()
}

type Loop struct {
	Token token.Token
	Body  *Block
}

func (l *Loop) statementNode() {}
func (l *Loop) String() string { return "loop " + l.Body.String() }

type BreakLoop struct {
	Token token.Token
}

func (b *BreakLoop) statementNode() {}
func (b *BreakLoop) String() string { return "break-loop" }

// ForEach is `for-each ~v [~i] in <expr> ( ... )`. IndexName is empty when
// only one loop variable was given.
type ForEach struct {
	Token     token.Token
	ValueName string
	IndexName string
	Iterable  Expression
	Body      *Block
}

func (fe *ForEach) statementNode() {}
func (fe *ForEach) String() string {
	var out strings.Builder
	out.WriteString("for-each ~")
	out.WriteString(fe.ValueName)
	if fe.IndexName != "" {
		out.WriteString(" ~")
		out.WriteString(fe.IndexName)
	}
	out.WriteString(" in ")
	out.WriteString(fe.Iterable.String())
	out.WriteString(" ")
	out.WriteString(fe.Body.String())
	return out.String()
}

// FunctionChain is `~name:` followed by step lines. Each step after the first
// receives the previous step's result as its implicit first argument.
type FunctionChain struct {
	Token token.Token
	Name  string
	Steps []*CallExpr
}

func (fc *FunctionChain) statementNode() {}
func (fc *FunctionChain) String() string {
	var out strings.Builder
	out.WriteString("~")
	out.WriteString(fc.Name)
	out.WriteString(":")
	for _, step := range fc.Steps {
		out.WriteString("\n  ")
		out.WriteString(step.String())
	}
	return out.String()
}

// ActionDef is `action name ~p1 ~p2 ( ... )`.
type ActionDef struct {
	Token  token.Token
	Name   string
	Params []string
	Body   *Block
}

func (ad *ActionDef) statementNode() {}
func (ad *ActionDef) String() string {
	var out strings.Builder
	out.WriteString("action ")
	out.WriteString(ad.Name)
	for _, p := range ad.Params {
		out.WriteString(" ~")
		out.WriteString(p)
	}
	out.WriteString(" ")
	out.WriteString(ad.Body.String())
	return out.String()
}

// Give returns early from an action. Value may be nil (`give` alone).
type Give struct {
	Token token.Token
	Value Expression
}

func (g *Give) statementNode() {}
func (g *Give) String() string {
	if g.Value == nil {
		return "give"
	}
	return "give " + g.Value.String()
}

// Attempt is `attempt ( ... ) rescue [~err] ( ... )`.
type Attempt struct {
	Token   token.Token
	Body    *Block
	ErrName string
	Rescue  *Block
}

func (a *Attempt) statementNode() {}
func (a *Attempt) String() string {
	var out strings.Builder
	out.WriteString("attempt ")
	out.WriteString(a.Body.String())
	out.WriteString(" rescue ")
	if a.ErrName != "" {
		out.WriteString("~")
		out.WriteString(a.ErrName)
		out.WriteString(" ")
	}
	out.WriteString(a.Rescue.String())
	return out.String()
}

// IncDec is `~n up <expr>` or `~n down <expr>`.
type IncDec struct {
	Token token.Token
	Name  string
	Delta Expression
	Down  bool
}

func (id *IncDec) statementNode() {}
func (id *IncDec) String() string {
	op := "up"
	if id.Down {
		op = "down"
	}
	return "~" + id.Name + " " + op + " " + id.Delta.String()
}

type NumberLiteral struct {
	Token      token.Token
	Value      float64
	HadDecimal bool
}

func (nl *NumberLiteral) expressionNode() {}
func (nl *NumberLiteral) String() string {
	return strconv.FormatFloat(nl.Value, 'f', -1, 64)
}

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode() {}
func (sl *StringLiteral) String() string  { return strconv.Quote(sl.Value) }

// InterpPart is one segment of an interpolated string: either literal text or
// an embedded expression (a variable or dotted property path).
type InterpPart struct {
	Text string
	Expr Expression
}

type InterpolatedString struct {
	Token token.Token
	Parts []InterpPart
}

func (is *InterpolatedString) expressionNode() {}
func (is *InterpolatedString) String() string {
	var out strings.Builder
	out.WriteString("\"")
	for _, part := range is.Parts {
		if part.Expr != nil {
			out.WriteString("`")
			out.WriteString(part.Expr.String())
			out.WriteString("`")
		} else {
			out.WriteString(part.Text)
		}
	}
	out.WriteString("\"")
	return out.String()
}

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode() {}
func (bl *BooleanLiteral) String() string  { return strconv.FormatBool(bl.Value) }

type NullLiteral struct {
	Token token.Token
}

func (nl *NullLiteral) expressionNode() {}
func (nl *NullLiteral) String() string  { return "null" }

type ListLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (ll *ListLiteral) expressionNode() {}
func (ll *ListLiteral) String() string {
	elements := []string{}
	for _, e := range ll.Elements {
		elements = append(elements, e.String())
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

// ObjectLiteral keeps keys in source order; iteration and display follow it.
type ObjectLiteral struct {
	Token  token.Token
	Keys   []string
	Values []Expression
}

func (ol *ObjectLiteral) expressionNode() {}
func (ol *ObjectLiteral) String() string {
	pairs := []string{}
	for i, k := range ol.Keys {
		pairs = append(pairs, k+": "+ol.Values[i].String())
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

type Variable struct {
	Token token.Token
	Name  string
}

func (v *Variable) expressionNode() {}
func (v *Variable) String() string  { return "~" + v.Name }

// PropertyAccess is `base.key`. Key is a StringLiteral for identifier keys,
// a NumberLiteral for list indices, or a Variable for dynamic keys.
type PropertyAccess struct {
	Token token.Token
	Base  Expression
	Key   Expression
}

func (pa *PropertyAccess) expressionNode() {}
func (pa *PropertyAccess) String() string {
	switch key := pa.Key.(type) {
	case *StringLiteral:
		return pa.Base.String() + "." + key.Value
	default:
		return pa.Base.String() + "." + key.String()
	}
}

type BinaryExpr struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

func (be *BinaryExpr) expressionNode() {}
func (be *BinaryExpr) String() string {
	return "(" + be.Left.String() + " " + be.Operator + " " + be.Right.String() + ")"
}

// CallExpr is a named invocation. IsRef marks a bare identifier in argument
// position, which evaluates to the callable itself instead of invoking it.
type CallExpr struct {
	Token token.Token
	Name  string
	Args  []Expression
	IsRef bool
}

func (ce *CallExpr) expressionNode() {}
func (ce *CallExpr) String() string {
	if len(ce.Args) == 0 {
		return ce.Name
	}
	args := []string{}
	for _, a := range ce.Args {
		args = append(args, a.String())
	}
	return ce.Name + " " + strings.Join(args, " ")
}

// AnonymousFn is `|~p1 ~p2 (expr)|`.
type AnonymousFn struct {
	Token  token.Token
	Params []string
	Body   Expression
}

func (af *AnonymousFn) expressionNode() {}
func (af *AnonymousFn) String() string {
	var out strings.Builder
	out.WriteString("|")
	for _, p := range af.Params {
		out.WriteString("~")
		out.WriteString(p)
		out.WriteString(" ")
	}
	out.WriteString("(")
	out.WriteString(af.Body.String())
	out.WriteString(")|")
	return out.String()
}
