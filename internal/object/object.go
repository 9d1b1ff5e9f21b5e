package object

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/tj-mc/tilde-sub001/internal/ast"
	"github.com/tj-mc/tilde-sub001/internal/music"
	"github.com/tj-mc/tilde-sub001/internal/util"
)

const (
	NULL_OBJ    = "NULL"
	BOOLEAN_OBJ = "BOOLEAN"
	NUMBER_OBJ  = "NUMBER"
	STRING_OBJ  = "STRING"

	LIST_OBJ = "LIST"
	MAP_OBJ  = "OBJECT"

	DATE_OBJ    = "DATE"
	PATTERN_OBJ = "PATTERN"

	ACTION_OBJ  = "ACTION"
	LAMBDA_OBJ  = "LAMBDA"
	BUILTIN_OBJ = "BUILTIN"
	ERROR_OBJ   = "ERROR"

	GIVE_VALUE_OBJ = "GIVE_VALUE"
	BREAK_OBJ      = "BREAK"
)

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
	BREAK = &BreakSignal{}
)

// EvaluatorContext is the bridge between native builtins and the interpreter.
// It gives a builtin access to the pieces of the evaluator it may touch
// without importing the evaluator package.
type EvaluatorContext interface {
	CurrentEnv() *Environment
	ApplyFunction(fn Object, args []Object) Object
	NewError(message string, a ...interface{}) *Error
	Null() *Null
	NativeBoolToBooleanObject(input bool) *Boolean
	GetConfiguration() util.Configuration
	NextHandleID() int64
	Stdout() io.Writer
	Stdin() *bufio.Reader
	Rand() *rand.Rand
	Scheduler() *music.Scheduler
}

type BuiltinFunction func(ctx EvaluatorContext, args ...Object) Object

type ObjectType string

type Object interface {
	Type() ObjectType
	Inspect() string
}

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

type List struct {
	Elements []Object
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string {
	var out bytes.Buffer

	elements := []string{}
	for _, e := range l.Elements {
		elements = append(elements, e.Inspect())
	}

	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")

	return out.String()
}

// Map is the language-level object value. Keys keep insertion order; Put of
// an existing key updates in place without moving it.
type Map struct {
	Keys    []string
	Entries map[string]Object
}

func NewMap() *Map {
	return &Map{Entries: make(map[string]Object)}
}

func (m *Map) Type() ObjectType { return MAP_OBJ }
func (m *Map) Inspect() string {
	var out bytes.Buffer

	pairs := []string{}
	for _, k := range m.Keys {
		pairs = append(pairs, fmt.Sprintf("%s: %s", k, m.Entries[k].Inspect()))
	}

	out.WriteString("{")
	out.WriteString(strings.Join(pairs, ", "))
	out.WriteString("}")

	return out.String()
}

func (m *Map) Put(key string, val Object) *Map {
	if m.Entries == nil {
		m.Entries = make(map[string]Object)
	}
	if _, exists := m.Entries[key]; !exists {
		m.Keys = append(m.Keys, key)
	}
	m.Entries[key] = val
	return m
}

func (m *Map) Get(key string) (Object, bool) {
	val, ok := m.Entries[key]
	return val, ok
}

func (m *Map) Delete(key string) {
	if _, ok := m.Entries[key]; !ok {
		return
	}
	delete(m.Entries, key)
	for i, k := range m.Keys {
		if k == key {
			m.Keys = append(m.Keys[:i], m.Keys[i+1:]...)
			break
		}
	}
}

// Copy returns a shallow copy preserving key order.
func (m *Map) Copy() *Map {
	out := NewMap()
	for _, k := range m.Keys {
		out.Put(k, m.Entries[k])
	}
	return out
}

type Date struct {
	Value time.Time
}

func (d *Date) Type() ObjectType { return DATE_OBJ }
func (d *Date) Inspect() string {
	return d.Value.UTC().Format("2006-01-02T15:04:05Z")
}

type Pattern struct {
	Value *music.Pattern
}

func (p *Pattern) Type() ObjectType { return PATTERN_OBJ }
func (p *Pattern) Inspect() string {
	return fmt.Sprintf("pattern(%q)", p.Value.Notation())
}

// Action is a named callable defined with `action name ~p ( ... )`.
// Env is the definition-time environment; call frames parent to it.
type Action struct {
	Name   string
	Params []string
	Body   *ast.Block
	Env    *Environment
}

func (a *Action) Type() ObjectType { return ACTION_OBJ }
func (a *Action) Inspect() string {
	var out bytes.Buffer
	out.WriteString("action ")
	out.WriteString(a.Name)
	for _, p := range a.Params {
		out.WriteString(" ~")
		out.WriteString(p)
	}
	out.WriteString(" ( ... )")
	return out.String()
}

// Lambda is an anonymous function `|~x (expr)|`. Its body is a single
// expression; the result of evaluating it is the call result.
type Lambda struct {
	Params []string
	Body   ast.Expression
	Env    *Environment
}

func (l *Lambda) Type() ObjectType { return LAMBDA_OBJ }
func (l *Lambda) Inspect() string {
	var out bytes.Buffer
	out.WriteString("|")
	for _, p := range l.Params {
		out.WriteString("~")
		out.WriteString(p)
		out.WriteString(" ")
	}
	out.WriteString("(")
	out.WriteString(l.Body.String())
	out.WriteString(")|")
	return out.String()
}

type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin " + b.Name }

// Error is a first-class language value. It is always falsy and is what
// `attempt`/`rescue` recovers from.
type Error struct {
	Message string
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return "Error: " + e.Message }

// GiveValue wraps an early return from an action body. It never escapes a
// call frame.
type GiveValue struct {
	Value Object
}

func (gv *GiveValue) Type() ObjectType { return GIVE_VALUE_OBJ }
func (gv *GiveValue) Inspect() string  { return gv.Value.Inspect() }

// BreakSignal unwinds to the nearest enclosing loop or for-each.
type BreakSignal struct{}

func (bs *BreakSignal) Type() ObjectType { return BREAK_OBJ }
func (bs *BreakSignal) Inspect() string  { return "break-loop" }

// IsTruthy implements the language truthiness rules: null, false, 0, the
// empty string, the empty list, the empty object, and errors are falsy.
func IsTruthy(obj Object) bool {
	switch obj := obj.(type) {
	case *Null:
		return false
	case *Boolean:
		return obj.Value
	case *Number:
		return obj.Value != 0
	case *String:
		return obj.Value != ""
	case *List:
		return len(obj.Elements) > 0
	case *Map:
		return len(obj.Keys) > 0
	case *Error:
		return false
	default:
		return true
	}
}

// Equals is deep value equality across the language types.
func Equals(a, b Object) bool {
	switch a := a.(type) {
	case *Number:
		b, ok := b.(*Number)
		return ok && a.Value == b.Value
	case *String:
		b, ok := b.(*String)
		return ok && a.Value == b.Value
	case *Boolean:
		b, ok := b.(*Boolean)
		return ok && a.Value == b.Value
	case *Null:
		_, ok := b.(*Null)
		return ok
	case *Date:
		b, ok := b.(*Date)
		return ok && a.Value.Equal(b.Value)
	case *List:
		b, ok := b.(*List)
		if !ok || len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !Equals(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	case *Map:
		b, ok := b.(*Map)
		if !ok || len(a.Keys) != len(b.Keys) {
			return false
		}
		for _, k := range a.Keys {
			bv, ok := b.Entries[k]
			if !ok || !Equals(a.Entries[k], bv) {
				return false
			}
		}
		return true
	case *Error:
		b, ok := b.(*Error)
		return ok && a.Message == b.Message
	default:
		return a == b
	}
}
