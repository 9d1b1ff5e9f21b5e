package builtins

import (
	"strconv"

	"github.com/tj-mc/tilde-sub001/internal/object"
)

func asNumber(ctx object.EvaluatorContext, arg object.Object, fn, what string) (float64, *object.Error) {
	num, ok := arg.(*object.Number)
	if !ok {
		return 0, ctx.NewError("%s %s must be a number", fn, what)
	}
	return num.Value, nil
}

func asString(ctx object.EvaluatorContext, arg object.Object, fn, what string) (string, *object.Error) {
	str, ok := arg.(*object.String)
	if !ok {
		return "", ctx.NewError("%s %s must be a string", fn, what)
	}
	return str.Value, nil
}

func asList(ctx object.EvaluatorContext, arg object.Object, fn, what string) (*object.List, *object.Error) {
	list, ok := arg.(*object.List)
	if !ok {
		return nil, ctx.NewError("%s %s must be a list", fn, what)
	}
	return list, nil
}

func asMap(ctx object.EvaluatorContext, arg object.Object, fn, what string) (*object.Map, *object.Error) {
	m, ok := arg.(*object.Map)
	if !ok {
		return nil, ctx.NewError("%s %s must be an object", fn, what)
	}
	return m, nil
}

func asCallable(ctx object.EvaluatorContext, arg object.Object, fn, what string) (object.Object, *object.Error) {
	switch arg.(type) {
	case *object.Action, *object.Lambda, *object.Builtin:
		return arg, nil
	}
	return nil, ctx.NewError("%s %s must be a function", fn, what)
}

// apply invokes a callable and unwraps nothing: the evaluator already
// normalizes give values and errors.
func apply(ctx object.EvaluatorContext, fn object.Object, args ...object.Object) object.Object {
	return ctx.ApplyFunction(fn, args)
}

func isError(obj object.Object) bool {
	return obj != nil && obj.Type() == object.ERROR_OBJ
}

func number(v float64) *object.Number {
	return &object.Number{Value: v}
}

func str(v string) *object.String {
	return &object.String{Value: v}
}

// formatNumber renders a number the way the language displays it: no
// trailing decimals for whole values.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
