package builtins

import (
	"math"

	"github.com/tj-mc/tilde-sub001/internal/object"
)

func init() {
	register("absolute", unaryMath("absolute", math.Abs))
	register("square-root", evalSquareRoot)
	register("floor", unaryMath("floor", math.Floor))
	register("ceil", unaryMath("ceil", math.Ceil))
	register("round", unaryMath("round", math.Round))
	register("pow", binaryMath("pow", math.Pow))
	register("exp", unaryMath("exp", math.Exp))
	register("log", evalLog)
	register("log10", evalLog10)
	register("sin", unaryMath("sin", math.Sin))
	register("cos", unaryMath("cos", math.Cos))
	register("tan", unaryMath("tan", math.Tan))
	register("asin", unaryMath("asin", math.Asin))
	register("acos", unaryMath("acos", math.Acos))
	register("atan", unaryMath("atan", math.Atan))
	register("atan2", binaryMath("atan2", math.Atan2))
	register("pi", evalPi)
	register("min", evalMin)
	register("max", evalMax)
	register("random", evalRandom)
	register("random-int", evalRandomInt)
}

func unaryMath(name string, fn func(float64) float64) object.BuiltinFunction {
	return func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
		if len(args) != 1 {
			return ctx.NewError("%s requires exactly 1 argument (number)", name)
		}
		v, err := asNumber(ctx, args[0], name, "first argument")
		if err != nil {
			return err
		}
		return number(fn(v))
	}
}

func binaryMath(name string, fn func(float64, float64) float64) object.BuiltinFunction {
	return func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
		if len(args) != 2 {
			return ctx.NewError("%s requires exactly 2 arguments (numbers)", name)
		}
		a, err := asNumber(ctx, args[0], name, "first argument")
		if err != nil {
			return err
		}
		b, err := asNumber(ctx, args[1], name, "second argument")
		if err != nil {
			return err
		}
		return number(fn(a, b))
	}
}

func evalSquareRoot(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("square-root requires exactly 1 argument (number)")
	}
	v, err := asNumber(ctx, args[0], "square-root", "first argument")
	if err != nil {
		return err
	}
	if v < 0 {
		return ctx.NewError("square-root of negative number")
	}
	return number(math.Sqrt(v))
}

func evalLog(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("log requires exactly 1 argument (number)")
	}
	v, err := asNumber(ctx, args[0], "log", "first argument")
	if err != nil {
		return err
	}
	if v <= 0 {
		return ctx.NewError("log requires a positive number")
	}
	return number(math.Log(v))
}

func evalLog10(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("log10 requires exactly 1 argument (number)")
	}
	v, err := asNumber(ctx, args[0], "log10", "first argument")
	if err != nil {
		return err
	}
	if v <= 0 {
		return ctx.NewError("log10 requires a positive number")
	}
	return number(math.Log10(v))
}

func evalPi(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 0 {
		return ctx.NewError("pi takes no arguments")
	}
	return number(math.Pi)
}

func evalMin(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	return extremum(ctx, "min", args, func(a, b float64) bool { return b < a })
}

func evalMax(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	return extremum(ctx, "max", args, func(a, b float64) bool { return b > a })
}

// extremum accepts either a single list of numbers or two-plus number arguments.
func extremum(ctx object.EvaluatorContext, name string, args []object.Object, better func(cur, cand float64) bool) object.Object {
	values := args
	if len(args) == 1 {
		list, err := asList(ctx, args[0], name, "first argument")
		if err != nil {
			return err
		}
		values = list.Elements
	}
	if len(values) == 0 {
		return ctx.NewError("%s requires at least one number", name)
	}
	best, err := asNumber(ctx, values[0], name, "every argument")
	if err != nil {
		return err
	}
	for _, v := range values[1:] {
		n, err := asNumber(ctx, v, name, "every argument")
		if err != nil {
			return err
		}
		if better(best, n) {
			best = n
		}
	}
	return number(best)
}

func evalRandom(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 0 {
		return ctx.NewError("random takes no arguments")
	}
	return number(ctx.Rand().Float64())
}

func evalRandomInt(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("random-int requires exactly 2 arguments (min, max)")
	}
	lo, err := asNumber(ctx, args[0], "random-int", "min")
	if err != nil {
		return err
	}
	hi, err := asNumber(ctx, args[1], "random-int", "max")
	if err != nil {
		return err
	}
	a, b := int(lo), int(hi)
	if a > b {
		return ctx.NewError("random-int min must not exceed max")
	}
	return number(float64(a + ctx.Rand().Intn(b-a+1)))
}
