package builtins

import (
	"math"

	"github.com/tj-mc/tilde-sub001/internal/object"
)

func init() {
	register("is-number", typeCheck("is-number", func(o object.Object) bool {
		_, ok := o.(*object.Number)
		return ok
	}))
	register("is-string", typeCheck("is-string", func(o object.Object) bool {
		_, ok := o.(*object.String)
		return ok
	}))
	register("is-boolean", typeCheck("is-boolean", func(o object.Object) bool {
		_, ok := o.(*object.Boolean)
		return ok
	}))
	register("is-list", typeCheck("is-list", func(o object.Object) bool {
		_, ok := o.(*object.List)
		return ok
	}))
	register("is-object", typeCheck("is-object", func(o object.Object) bool {
		_, ok := o.(*object.Map)
		return ok
	}))
	register("is-defined", typeCheck("is-defined", func(o object.Object) bool {
		_, isNull := o.(*object.Null)
		return !isNull
	}))
	register("is-error", typeCheck("is-error", func(o object.Object) bool {
		_, ok := o.(*object.Error)
		return ok
	}))
	register("is-empty", evalIsEmpty)
	register("is-even", numberCheck("is-even", func(v float64) bool {
		return math.Mod(v, 2) == 0
	}))
	register("is-odd", numberCheck("is-odd", func(v float64) bool {
		return math.Mod(v, 2) != 0
	}))
	register("is-positive", numberCheck("is-positive", func(v float64) bool { return v > 0 }))
	register("is-negative", numberCheck("is-negative", func(v float64) bool { return v < 0 }))
	register("is-zero", numberCheck("is-zero", func(v float64) bool { return v == 0 }))
	register("type-of", evalTypeOf)
}

func typeCheck(name string, pred func(object.Object) bool) object.BuiltinFunction {
	return func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
		if len(args) != 1 {
			return ctx.NewError("%s requires exactly 1 argument", name)
		}
		return ctx.NativeBoolToBooleanObject(pred(args[0]))
	}
}

func numberCheck(name string, pred func(float64) bool) object.BuiltinFunction {
	return func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
		if len(args) != 1 {
			return ctx.NewError("%s requires exactly 1 argument (number)", name)
		}
		v, err := asNumber(ctx, args[0], name, "first argument")
		if err != nil {
			return err
		}
		return ctx.NativeBoolToBooleanObject(pred(v))
	}
}

func evalIsEmpty(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("is-empty requires exactly 1 argument")
	}
	switch arg := args[0].(type) {
	case *object.String:
		return ctx.NativeBoolToBooleanObject(arg.Value == "")
	case *object.List:
		return ctx.NativeBoolToBooleanObject(len(arg.Elements) == 0)
	case *object.Map:
		return ctx.NativeBoolToBooleanObject(len(arg.Keys) == 0)
	case *object.Null:
		return ctx.NativeBoolToBooleanObject(true)
	default:
		return ctx.NativeBoolToBooleanObject(false)
	}
}

func evalTypeOf(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("type-of requires exactly 1 argument")
	}
	switch args[0].(type) {
	case *object.Number:
		return str("number")
	case *object.String:
		return str("string")
	case *object.Boolean:
		return str("boolean")
	case *object.List:
		return str("list")
	case *object.Map:
		return str("object")
	case *object.Null:
		return str("null")
	case *object.Date:
		return str("date")
	case *object.Pattern:
		return str("pattern")
	case *object.Action, *object.Lambda, *object.Builtin:
		return str("function")
	case *object.Error:
		return str("error")
	default:
		return str("unknown")
	}
}
