package evaluator

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/tj-mc/tilde-sub001/internal/ast"
	"github.com/tj-mc/tilde-sub001/internal/builtins"
	"github.com/tj-mc/tilde-sub001/internal/music"
	"github.com/tj-mc/tilde-sub001/internal/object"
	"github.com/tj-mc/tilde-sub001/internal/util"
)

const maxCallDepth = 100

// Evaluator walks the AST. Runtime failures are *object.Error values that
// propagate up through Eval results until an attempt block catches them or
// the program top level reports them.
type Evaluator struct {
	envStack []*object.Environment
	config   util.Configuration
	stdout   io.Writer
	stdin    *bufio.Reader
	rng      *rand.Rand
	sched    *music.Scheduler

	callDepth int
	handleID  atomic.Int64
}

func New(config util.Configuration) *Evaluator {
	return &Evaluator{
		envStack: []*object.Environment{object.NewEnvironment()},
		config:   config,
		stdout:   os.Stdout,
		stdin:    bufio.NewReader(os.Stdin),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sched:    music.NewScheduler(),
	}
}

func (e *Evaluator) PushEnv(env *object.Environment) {
	e.envStack = append(e.envStack, env)
	slog.Debug("push stack frame",
		slog.Int("stack-size", len(e.envStack)))
}

func (e *Evaluator) PopEnv() {
	if len(e.envStack) <= 1 {
		panic("attempted to pop the global environment")
	}
	e.envStack = e.envStack[:len(e.envStack)-1]
}

func (e *Evaluator) CurrentEnv() *object.Environment {
	return e.envStack[len(e.envStack)-1]
}

func (e *Evaluator) GlobalEnv() *object.Environment {
	return e.envStack[0]
}

func (e *Evaluator) GetConfiguration() util.Configuration {
	return e.config
}

func (e *Evaluator) NextHandleID() int64 {
	return e.handleID.Add(1)
}

func (e *Evaluator) Stdout() io.Writer {
	return e.stdout
}

func (e *Evaluator) Stdin() *bufio.Reader {
	return e.stdin
}

func (e *Evaluator) Rand() *rand.Rand {
	return e.rng
}

func (e *Evaluator) Scheduler() *music.Scheduler {
	return e.sched
}

// SeedRandom replaces the random source, used by the tests.
func (e *Evaluator) SeedRandom(seed int64) {
	e.rng = rand.New(rand.NewSource(seed))
}

// SetOutput redirects say and friends, used by the tests.
func (e *Evaluator) SetOutput(w io.Writer) {
	e.stdout = w
}

func (e *Evaluator) SetInput(r io.Reader) {
	e.stdin = bufio.NewReader(r)
}

func (e *Evaluator) Null() *object.Null {
	return object.NULL
}

func (e *Evaluator) NewError(message string, a ...interface{}) *object.Error {
	return newError(message, a...)
}

func (e *Evaluator) NativeBoolToBooleanObject(input bool) *object.Boolean {
	return nativeBoolToBooleanObject(input)
}

func newError(format string, a ...interface{}) *object.Error {
	return &object.Error{Message: fmt.Sprintf(format, a...)}
}

func nativeBoolToBooleanObject(input bool) *object.Boolean {
	if input {
		return object.TRUE
	}
	return object.FALSE
}

func isError(obj object.Object) bool {
	if obj != nil {
		return obj.Type() == object.ERROR_OBJ
	}
	return false
}

func (e *Evaluator) Eval(node ast.Node) object.Object {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return e.evalProgram(node)

	case *ast.Block:
		return e.evalBlock(node)

	case *ast.ExpressionStatement:
		return e.Eval(node.Expression)

	case *ast.Assignment:
		val := e.Eval(node.Value)
		if isError(val) {
			return val
		}
		e.CurrentEnv().Set(node.Name, val)
		return val

	case *ast.PropertyAssignment:
		return e.evalPropertyAssignment(node)

	case *ast.If:
		return e.evalIf(node)

	case *ast.Loop:
		return e.evalLoop(node)

	case *ast.BreakLoop:
		return object.BREAK

	case *ast.ForEach:
		return e.evalForEach(node)

	case *ast.FunctionChain:
		return e.evalFunctionChain(node)

	case *ast.ActionDef:
		action := &object.Action{
			Name:   node.Name,
			Params: node.Params,
			Body:   node.Body,
			Env:    e.CurrentEnv(),
		}
		e.CurrentEnv().Set(node.Name, action)
		return object.NULL

	case *ast.Give:
		if node.Value == nil {
			return &object.GiveValue{Value: object.NULL}
		}
		val := e.Eval(node.Value)
		if isError(val) {
			return val
		}
		return &object.GiveValue{Value: val}

	case *ast.Attempt:
		return e.evalAttempt(node)

	case *ast.IncDec:
		return e.evalIncDec(node)

	// Expressions
	case *ast.NumberLiteral:
		return &object.Number{Value: node.Value}

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}

	case *ast.InterpolatedString:
		return e.evalInterpolatedString(node)

	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(node.Value)

	case *ast.NullLiteral:
		return object.NULL

	case *ast.ListLiteral:
		elements := e.evalExpressions(node.Elements)
		if len(elements) == 1 && isError(elements[0]) {
			return elements[0]
		}
		return &object.List{Elements: elements}

	case *ast.ObjectLiteral:
		return e.evalObjectLiteral(node)

	case *ast.Variable:
		return e.evalVariable(node)

	case *ast.PropertyAccess:
		return e.evalPropertyAccess(node)

	case *ast.BinaryExpr:
		return e.evalBinaryExpr(node)

	case *ast.CallExpr:
		return e.evalCallExpr(node)

	case *ast.AnonymousFn:
		return &object.Lambda{
			Params: node.Params,
			Body:   node.Body,
			Env:    e.CurrentEnv(),
		}
	}

	return newError("unhandled node %T", node)
}

func (e *Evaluator) evalProgram(program *ast.Program) object.Object {
	var result object.Object = object.NULL

	for _, stmt := range program.Statements {
		result = e.Eval(stmt)
		switch result := result.(type) {
		case *object.Error:
			return result
		case *object.GiveValue:
			return result.Value
		case *object.BreakSignal:
			return object.NULL
		}
	}

	return result
}

// evalBlock runs the statements of one parenthesized block in the current
// environment. Control signals pass through untouched so the enclosing
// construct can react to them.
func (e *Evaluator) evalBlock(block *ast.Block) object.Object {
	var result object.Object = object.NULL

	for _, stmt := range block.Statements {
		result = e.Eval(stmt)
		switch result.(type) {
		case *object.Error, *object.GiveValue, *object.BreakSignal:
			return result
		}
	}

	return result
}

func (e *Evaluator) evalVariable(node *ast.Variable) object.Object {
	if val, ok := e.CurrentEnv().Get(node.Name); ok {
		return val
	}
	return newError("Undefined variable: ~%s", node.Name)
}

func (e *Evaluator) evalIf(node *ast.If) object.Object {
	condition := e.Eval(node.Condition)
	if isError(condition) {
		return condition
	}

	if object.IsTruthy(condition) {
		return e.evalBlock(node.Consequence)
	}
	if node.Alternative != nil {
		return e.Eval(node.Alternative)
	}
	return object.NULL
}

func (e *Evaluator) evalLoop(node *ast.Loop) object.Object {
	for {
		result := e.evalBlock(node.Body)
		switch result.(type) {
		case *object.BreakSignal:
			return object.NULL
		case *object.Error, *object.GiveValue:
			return result
		}
	}
}

// evalForEach iterates a list (value, index) or an object (value, or
// key/value with two variables). The loop variables are transient: any
// shadowed binding in the current frame is restored when the loop exits.
func (e *Evaluator) evalForEach(node *ast.ForEach) object.Object {
	iterable := e.Eval(node.Iterable)
	if isError(iterable) {
		return iterable
	}

	names := []string{node.ValueName}
	if node.IndexName != "" {
		names = append(names, node.IndexName)
	}
	restore := e.saveBindings(names)
	defer restore()

	env := e.CurrentEnv()

	switch iterable := iterable.(type) {
	case *object.List:
		for i, item := range iterable.Elements {
			env.DefineLocal(node.ValueName, item)
			if node.IndexName != "" {
				env.DefineLocal(node.IndexName, &object.Number{Value: float64(i)})
			}
			result := e.evalBlock(node.Body)
			switch result.(type) {
			case *object.BreakSignal:
				return object.NULL
			case *object.Error, *object.GiveValue:
				return result
			}
		}

	case *object.Map:
		for _, key := range iterable.Keys {
			value := iterable.Entries[key]
			if node.IndexName != "" {
				env.DefineLocal(node.ValueName, &object.String{Value: key})
				env.DefineLocal(node.IndexName, value)
			} else {
				env.DefineLocal(node.ValueName, value)
			}
			result := e.evalBlock(node.Body)
			switch result.(type) {
			case *object.BreakSignal:
				return object.NULL
			case *object.Error, *object.GiveValue:
				return result
			}
		}

	default:
		return newError("for-each can only iterate over lists and objects")
	}

	return object.NULL
}

// saveBindings records the local state of the given names and returns a
// function that puts them back, so a transient binding never leaks out of
// its construct.
func (e *Evaluator) saveBindings(names []string) func() {
	env := e.CurrentEnv()
	type saved struct {
		name  string
		value object.Object
		had   bool
	}
	var snapshot []saved
	for _, name := range names {
		value, had := env.GetLocal(name)
		snapshot = append(snapshot, saved{name: name, value: value, had: had})
	}
	return func() {
		for _, s := range snapshot {
			if s.had {
				env.DefineLocal(s.name, s.value)
			} else {
				env.RemoveLocal(s.name)
			}
		}
	}
}

func (e *Evaluator) evalIncDec(node *ast.IncDec) object.Object {
	current, ok := e.CurrentEnv().Get(node.Name)
	if !ok {
		return newError("Undefined variable: ~%s", node.Name)
	}

	amount := e.Eval(node.Delta)
	if isError(amount) {
		return amount
	}

	currentNum, ok1 := current.(*object.Number)
	amountNum, ok2 := amount.(*object.Number)
	if !ok1 || !ok2 {
		verb := "increment"
		if node.Down {
			verb = "decrement"
		}
		return newError("Cannot %s '~%s': both variable and amount must be numbers", verb, node.Name)
	}

	result := currentNum.Value + amountNum.Value
	if node.Down {
		result = currentNum.Value - amountNum.Value
	}
	e.CurrentEnv().Set(node.Name, &object.Number{Value: result})
	return object.NULL
}

func (e *Evaluator) evalAttempt(node *ast.Attempt) object.Object {
	result := e.evalBlock(node.Body)
	err, failed := result.(*object.Error)
	if !failed {
		return result
	}

	var restore func()
	if node.ErrName != "" {
		restore = e.saveBindings([]string{node.ErrName})
		e.CurrentEnv().DefineLocal(node.ErrName, err)
	}

	rescueResult := e.evalBlock(node.Rescue)

	if restore != nil {
		restore()
	}
	// A failure inside rescue propagates unchanged.
	return rescueResult
}

func (e *Evaluator) evalObjectLiteral(node *ast.ObjectLiteral) object.Object {
	m := object.NewMap()
	for i, key := range node.Keys {
		value := e.Eval(node.Values[i])
		if isError(value) {
			return value
		}
		m.Put(key, value)
	}
	return m
}

func (e *Evaluator) evalExpressions(exps []ast.Expression) []object.Object {
	var result []object.Object
	for _, exp := range exps {
		evaluated := e.Eval(exp)
		if isError(evaluated) {
			return []object.Object{evaluated}
		}
		result = append(result, evaluated)
	}
	return result
}

func (e *Evaluator) evalInterpolatedString(node *ast.InterpolatedString) object.Object {
	var out []byte
	for _, part := range node.Parts {
		if part.Expr == nil {
			out = append(out, part.Text...)
			continue
		}
		value := e.Eval(part.Expr)
		if isError(value) {
			return value
		}
		out = append(out, value.Inspect()...)
	}
	return &object.String{Value: string(out)}
}

func (e *Evaluator) evalBinaryExpr(node *ast.BinaryExpr) object.Object {
	// and/or short-circuit and yield the deciding operand, not a coerced
	// boolean.
	switch node.Operator {
	case "and":
		left := e.Eval(node.Left)
		if isError(left) {
			return left
		}
		if !object.IsTruthy(left) {
			return left
		}
		return e.Eval(node.Right)
	case "or":
		left := e.Eval(node.Left)
		if isError(left) {
			return left
		}
		if object.IsTruthy(left) {
			return left
		}
		return e.Eval(node.Right)
	}

	left := e.Eval(node.Left)
	if isError(left) {
		return left
	}
	right := e.Eval(node.Right)
	if isError(right) {
		return right
	}

	switch node.Operator {
	case "==":
		return nativeBoolToBooleanObject(object.Equals(left, right))
	case "!=":
		return nativeBoolToBooleanObject(!object.Equals(left, right))
	}

	if l, ok := left.(*object.Number); ok {
		if r, ok := right.(*object.Number); ok {
			return evalNumberBinaryOp(node.Operator, l.Value, r.Value)
		}
	}
	if l, ok := left.(*object.String); ok {
		if r, ok := right.(*object.String); ok && node.Operator == "+" {
			return &object.String{Value: l.Value + r.Value}
		}
	}

	return newError("Invalid operation: %s %s %s", left.Inspect(), node.Operator, right.Inspect())
}

func evalNumberBinaryOp(operator string, l, r float64) object.Object {
	switch operator {
	case "+":
		return &object.Number{Value: l + r}
	case "-":
		return &object.Number{Value: l - r}
	case "*":
		return &object.Number{Value: l * r}
	case "/":
		if r == 0 {
			return newError("Division by zero")
		}
		return &object.Number{Value: l / r}
	case "\\":
		if r == 0 {
			return newError("Division by zero")
		}
		return &object.Number{Value: math.Floor(l / r)}
	case "%":
		if r == 0 {
			return newError("Modulo by zero")
		}
		return &object.Number{Value: math.Mod(l, r)}
	case "<":
		return nativeBoolToBooleanObject(l < r)
	case "<=":
		return nativeBoolToBooleanObject(l <= r)
	case ">":
		return nativeBoolToBooleanObject(l > r)
	case ">=":
		return nativeBoolToBooleanObject(l >= r)
	}
	return newError("Invalid operation: NUMBER %s NUMBER", operator)
}

// evalCallExpr resolves a name to a callable and either invokes it or, for
// a reference in argument position, returns the callable itself. User
// definitions shadow builtins.
func (e *Evaluator) evalCallExpr(node *ast.CallExpr) object.Object {
	if node.IsRef {
		if fn, ok := e.lookupCallable(node.Name); ok {
			return fn
		}
		return newError("Unknown function: %s", node.Name)
	}

	args := e.evalExpressions(node.Args)
	if len(args) == 1 && isError(args[0]) {
		return args[0]
	}
	return e.invokeNamed(node.Name, args)
}

func (e *Evaluator) lookupCallable(name string) (object.Object, bool) {
	if val, ok := e.CurrentEnv().Get(name); ok {
		switch val.(type) {
		case *object.Action, *object.Lambda, *object.Builtin:
			return val, true
		}
	}
	if builtin := builtins.Lookup(name); builtin != nil {
		return builtin, true
	}
	return nil, false
}

func (e *Evaluator) invokeNamed(name string, args []object.Object) object.Object {
	fn, ok := e.lookupCallable(name)
	if !ok {
		return newError("Unknown function: %s", name)
	}
	return e.ApplyFunction(fn, args)
}

// ApplyFunction invokes a callable value. Action and lambda calls get a new
// frame parented to the callable's captured environment, never the
// caller's.
func (e *Evaluator) ApplyFunction(fnObj object.Object, args []object.Object) object.Object {
	switch fn := fnObj.(type) {
	case *object.Action:
		if e.callDepth >= maxCallDepth {
			return newError("Maximum call depth (%d) exceeded", maxCallDepth)
		}
		if len(args) != len(fn.Params) {
			return newError("Function expects %d arguments, but %d were provided",
				len(fn.Params), len(args))
		}

		env := object.NewEnclosedEnvironment(fn.Env)
		for i, param := range fn.Params {
			env.Define(param, args[i])
		}

		e.callDepth++
		e.PushEnv(env)
		result := e.evalBlock(fn.Body)
		e.PopEnv()
		e.callDepth--

		switch result := result.(type) {
		case *object.GiveValue:
			return result.Value
		case *object.BreakSignal:
			return object.NULL
		default:
			return result
		}

	case *object.Lambda:
		if e.callDepth >= maxCallDepth {
			return newError("Maximum call depth (%d) exceeded", maxCallDepth)
		}
		if len(args) != len(fn.Params) {
			return newError("Anonymous function expects %d arguments, but %d were provided",
				len(fn.Params), len(args))
		}

		env := object.NewEnclosedEnvironment(fn.Env)
		for i, param := range fn.Params {
			env.Define(param, args[i])
		}

		e.callDepth++
		e.PushEnv(env)
		result := e.Eval(fn.Body)
		e.PopEnv()
		e.callDepth--
		return result

	case *object.Builtin:
		return fn.Fn(e, args...)

	default:
		return newError("not a function: %s", fnObj.Type())
	}
}

// evalFunctionChain pipes each step's result into the next step as its
// implicit first argument, then assigns the final result to the chain
// variable.
func (e *Evaluator) evalFunctionChain(node *ast.FunctionChain) object.Object {
	var current object.Object

	for i, step := range node.Steps {
		args := e.evalExpressions(step.Args)
		if len(args) == 1 && isError(args[0]) {
			return args[0]
		}
		if i > 0 {
			args = append([]object.Object{current}, args...)
		}
		current = e.invokeNamed(step.Name, args)
		if isError(current) {
			return current
		}
	}

	e.CurrentEnv().Set(node.Name, current)
	return current
}

func (e *Evaluator) evalPropertyAccess(node *ast.PropertyAccess) object.Object {
	base := e.Eval(node.Base)
	if isError(base) {
		return base
	}

	key := e.Eval(node.Key)
	if isError(key) {
		return key
	}

	switch base := base.(type) {
	case *object.Map:
		name, err := propertyKeyString(key)
		if err != nil {
			return err
		}
		if value, ok := base.Get(name); ok {
			return value
		}
		return object.NULL

	case *object.List:
		index, err := listIndex(key)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(base.Elements) {
			return newError("Index %d out of range for list of length %d", index, len(base.Elements))
		}
		return base.Elements[index]

	case *object.Error:
		name, err := propertyKeyString(key)
		if err != nil {
			return err
		}
		if name == "message" {
			return &object.String{Value: base.Message}
		}
		return object.NULL

	default:
		return newError("Cannot access property on %s", base.Type())
	}
}

func propertyKeyString(key object.Object) (string, *object.Error) {
	switch key := key.(type) {
	case *object.String:
		return key.Value, nil
	case *object.Number:
		return strconv.FormatFloat(key.Value, 'f', -1, 64), nil
	default:
		return "", newError("Invalid property key of type %s", key.Type())
	}
}

func listIndex(key object.Object) (int, *object.Error) {
	switch key := key.(type) {
	case *object.Number:
		return int(key.Value), nil
	case *object.String:
		n, err := strconv.ParseFloat(key.Value, 64)
		if err != nil {
			return 0, newError("List index must be numeric, got string: '%s'", key.Value)
		}
		return int(n), nil
	default:
		return 0, newError("List index must be a number, got %s", key.Type())
	}
}

// evalPropertyAssignment writes through a dotted path, creating
// intermediate objects as needed. Assigning past the end of a list pads it
// with nulls.
func (e *Evaluator) evalPropertyAssignment(node *ast.PropertyAssignment) object.Object {
	value := e.Eval(node.Value)
	if isError(value) {
		return value
	}

	rootVar, keys, err := flattenTarget(node.Target)
	if err != nil {
		return err
	}

	keyObjs := make([]object.Object, len(keys))
	for i, keyExpr := range keys {
		key := e.Eval(keyExpr)
		if isError(key) {
			return key
		}
		keyObjs[i] = key
	}

	root, ok := e.CurrentEnv().Get(rootVar.Name)
	if !ok {
		root = newContainerFor(keyObjs[0])
		e.CurrentEnv().Set(rootVar.Name, root)
	}

	current := root
	for i := 0; i < len(keyObjs)-1; i++ {
		next, err := e.descendOrCreate(current, keyObjs[i], keyObjs[i+1])
		if err != nil {
			return err
		}
		current = next
	}

	if err := setContainerKey(current, keyObjs[len(keyObjs)-1], value); err != nil {
		return err
	}
	return value
}

func flattenTarget(target *ast.PropertyAccess) (*ast.Variable, []ast.Expression, *object.Error) {
	var keys []ast.Expression
	node := ast.Expression(target)
	for {
		access, ok := node.(*ast.PropertyAccess)
		if !ok {
			break
		}
		keys = append([]ast.Expression{access.Key}, keys...)
		node = access.Base
	}
	rootVar, ok := node.(*ast.Variable)
	if !ok {
		return nil, nil, newError("Invalid property assignment target")
	}
	return rootVar, keys, nil
}

func newContainerFor(key object.Object) object.Object {
	if _, isIndex := key.(*object.Number); isIndex {
		return &object.List{}
	}
	return object.NewMap()
}

func (e *Evaluator) descendOrCreate(container, key, nextKey object.Object) (object.Object, *object.Error) {
	switch container := container.(type) {
	case *object.Map:
		name, err := propertyKeyString(key)
		if err != nil {
			return nil, err
		}
		if existing, ok := container.Get(name); ok {
			return existing, nil
		}
		created := newContainerFor(nextKey)
		container.Put(name, created)
		return created, nil

	case *object.List:
		index, err := listIndex(key)
		if err != nil {
			return nil, err
		}
		if index < 0 {
			return nil, newError("Index %d out of range for list of length %d", index, len(container.Elements))
		}
		for len(container.Elements) <= index {
			container.Elements = append(container.Elements, object.NULL)
		}
		if container.Elements[index] == object.NULL {
			container.Elements[index] = newContainerFor(nextKey)
		}
		return container.Elements[index], nil

	default:
		return nil, newError("Cannot set property on %s", container.Type())
	}
}

func setContainerKey(container, key, value object.Object) *object.Error {
	switch container := container.(type) {
	case *object.Map:
		name, err := propertyKeyString(key)
		if err != nil {
			return err
		}
		container.Put(name, value)
		return nil

	case *object.List:
		index, err := listIndex(key)
		if err != nil {
			return err
		}
		if index < 0 {
			return newError("Index %d out of range for list of length %d", index, len(container.Elements))
		}
		for len(container.Elements) <= index {
			container.Elements = append(container.Elements, object.NULL)
		}
		container.Elements[index] = value
		return nil

	default:
		return newError("Cannot set property on %s", container.Type())
	}
}
