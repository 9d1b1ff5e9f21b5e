package builtins

import (
	"strings"

	"github.com/tj-mc/tilde-sub001/internal/object"
)

func init() {
	register("split", evalSplit)
	register("join", evalJoin)
	register("trim", evalTrim)
	register("uppercase", evalUppercase)
	register("lowercase", evalLowercase)
	register("replace", evalReplace)
	register("repeat", evalRepeat)
	register("substring", evalSubstring)
	register("starts-with", evalStartsWith)
	register("ends-with", evalEndsWith)
	register("pad-left", evalPadLeft)
	register("pad-right", evalPadRight)
	register("length", evalLength)
}

func evalSplit(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("split requires exactly 2 arguments (string, separator)")
	}
	s, err := asString(ctx, args[0], "split", "first argument")
	if err != nil {
		return err
	}
	sep, err := asString(ctx, args[1], "split", "separator")
	if err != nil {
		return err
	}
	parts := strings.Split(s, sep)
	elements := make([]object.Object, len(parts))
	for i, p := range parts {
		elements[i] = str(p)
	}
	return &object.List{Elements: elements}
}

func evalJoin(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("join requires exactly 2 arguments (list, separator)")
	}
	list, err := asList(ctx, args[0], "join", "first argument")
	if err != nil {
		return err
	}
	sep, err := asString(ctx, args[1], "join", "separator")
	if err != nil {
		return err
	}
	parts := make([]string, len(list.Elements))
	for i, el := range list.Elements {
		if s, ok := el.(*object.String); ok {
			parts[i] = s.Value
		} else {
			parts[i] = el.Inspect()
		}
	}
	return str(strings.Join(parts, sep))
}

func evalTrim(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("trim requires exactly 1 argument (string)")
	}
	s, err := asString(ctx, args[0], "trim", "first argument")
	if err != nil {
		return err
	}
	return str(strings.TrimSpace(s))
}

func evalUppercase(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("uppercase requires exactly 1 argument (string)")
	}
	s, err := asString(ctx, args[0], "uppercase", "first argument")
	if err != nil {
		return err
	}
	return str(strings.ToUpper(s))
}

func evalLowercase(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("lowercase requires exactly 1 argument (string)")
	}
	s, err := asString(ctx, args[0], "lowercase", "first argument")
	if err != nil {
		return err
	}
	return str(strings.ToLower(s))
}

func evalReplace(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 3 {
		return ctx.NewError("replace requires exactly 3 arguments (string, old, new)")
	}
	s, err := asString(ctx, args[0], "replace", "first argument")
	if err != nil {
		return err
	}
	old, err := asString(ctx, args[1], "replace", "second argument")
	if err != nil {
		return err
	}
	by, err := asString(ctx, args[2], "replace", "third argument")
	if err != nil {
		return err
	}
	return str(strings.ReplaceAll(s, old, by))
}

func evalRepeat(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("repeat requires exactly 2 arguments (string, count)")
	}
	s, err := asString(ctx, args[0], "repeat", "first argument")
	if err != nil {
		return err
	}
	count, err := asNumber(ctx, args[1], "repeat", "count")
	if err != nil {
		return err
	}
	if count < 0 {
		return ctx.NewError("repeat count must not be negative")
	}
	return str(strings.Repeat(s, int(count)))
}

func evalSubstring(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) < 2 || len(args) > 3 {
		return ctx.NewError("substring requires 2-3 arguments (string, start, optional end)")
	}
	s, err := asString(ctx, args[0], "substring", "first argument")
	if err != nil {
		return err
	}
	start, err := asNumber(ctx, args[1], "substring", "start")
	if err != nil {
		return err
	}
	runes := []rune(s)
	end := float64(len(runes))
	if len(args) == 3 {
		end, err = asNumber(ctx, args[2], "substring", "end")
		if err != nil {
			return err
		}
	}
	a, b := clampRange(int(start), int(end), len(runes))
	return str(string(runes[a:b]))
}

func evalStartsWith(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("starts-with requires exactly 2 arguments (string, prefix)")
	}
	s, err := asString(ctx, args[0], "starts-with", "first argument")
	if err != nil {
		return err
	}
	prefix, err := asString(ctx, args[1], "starts-with", "prefix")
	if err != nil {
		return err
	}
	return ctx.NativeBoolToBooleanObject(strings.HasPrefix(s, prefix))
}

func evalEndsWith(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("ends-with requires exactly 2 arguments (string, suffix)")
	}
	s, err := asString(ctx, args[0], "ends-with", "first argument")
	if err != nil {
		return err
	}
	suffix, err := asString(ctx, args[1], "ends-with", "suffix")
	if err != nil {
		return err
	}
	return ctx.NativeBoolToBooleanObject(strings.HasSuffix(s, suffix))
}

func padString(s string, width int, pad string, left bool) string {
	if pad == "" {
		return s
	}
	runes := []rune(s)
	padRunes := []rune(pad)
	for len(runes) < width {
		need := width - len(runes)
		chunk := padRunes
		if len(chunk) > need {
			chunk = chunk[:need]
		}
		if left {
			runes = append(append([]rune(nil), chunk...), runes...)
		} else {
			runes = append(runes, chunk...)
		}
	}
	return string(runes)
}

func evalPadLeft(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) < 2 || len(args) > 3 {
		return ctx.NewError("pad-left requires 2-3 arguments (string, width, optional pad)")
	}
	s, err := asString(ctx, args[0], "pad-left", "first argument")
	if err != nil {
		return err
	}
	width, err := asNumber(ctx, args[1], "pad-left", "width")
	if err != nil {
		return err
	}
	pad := " "
	if len(args) == 3 {
		pad, err = asString(ctx, args[2], "pad-left", "pad")
		if err != nil {
			return err
		}
	}
	return str(padString(s, int(width), pad, true))
}

func evalPadRight(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) < 2 || len(args) > 3 {
		return ctx.NewError("pad-right requires 2-3 arguments (string, width, optional pad)")
	}
	s, err := asString(ctx, args[0], "pad-right", "first argument")
	if err != nil {
		return err
	}
	width, err := asNumber(ctx, args[1], "pad-right", "width")
	if err != nil {
		return err
	}
	pad := " "
	if len(args) == 3 {
		pad, err = asString(ctx, args[2], "pad-right", "pad")
		if err != nil {
			return err
		}
	}
	return str(padString(s, int(width), pad, false))
}

func evalLength(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("length requires exactly 1 argument")
	}
	switch arg := args[0].(type) {
	case *object.String:
		return number(float64(len([]rune(arg.Value))))
	case *object.List:
		return number(float64(len(arg.Elements)))
	case *object.Map:
		return number(float64(len(arg.Keys)))
	default:
		return ctx.NewError("length argument must be a string, list, or object")
	}
}
