package builtins

import (
	"strings"
	"time"

	"github.com/tj-mc/tilde-sub001/internal/object"
)

// Dates are first-class values holding a UTC instant. They are always
// truthy and render as ISO timestamps.

func init() {
	register("now", evalNow)
	register("date", evalDate)
	register("date-parse", evalDateParse)
	register("date-format", evalDateFormat)
	register("date-add", evalDateAdd)
	register("date-subtract", evalDateSubtract)
	register("date-diff", evalDateDiff)
	register("date-year", dateField("date-year", func(t time.Time) float64 { return float64(t.Year()) }))
	register("date-month", dateField("date-month", func(t time.Time) float64 { return float64(t.Month()) }))
	register("date-day", dateField("date-day", func(t time.Time) float64 { return float64(t.Day()) }))
	register("date-hour", dateField("date-hour", func(t time.Time) float64 { return float64(t.Hour()) }))
	register("date-minute", dateField("date-minute", func(t time.Time) float64 { return float64(t.Minute()) }))
	register("date-second", dateField("date-second", func(t time.Time) float64 { return float64(t.Second()) }))
	register("date-weekday", evalDateWeekday)
	register("date-before", dateCompare("date-before", func(a, b time.Time) bool { return a.Before(b) }))
	register("date-after", dateCompare("date-after", func(a, b time.Time) bool { return a.After(b) }))
	register("date-equal", dateCompare("date-equal", func(a, b time.Time) bool { return a.Equal(b) }))
}

func dateValue(ctx object.EvaluatorContext, arg object.Object, fn, what string) (time.Time, *object.Error) {
	d, ok := arg.(*object.Date)
	if !ok {
		return time.Time{}, ctx.NewError("%s %s must be a date", fn, what)
	}
	return d.Value, nil
}

func dateOf(t time.Time) *object.Date {
	return &object.Date{Value: t.UTC()}
}

func evalNow(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 0 {
		return ctx.NewError("now takes no arguments")
	}
	return dateOf(time.Now())
}

func evalDate(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 3 && len(args) != 6 {
		return ctx.NewError("date requires 3 or 6 arguments (year month day [hour minute second])")
	}
	parts := make([]int, 6)
	for i, arg := range args {
		v, err := asNumber(ctx, arg, "date", "every argument")
		if err != nil {
			return err
		}
		parts[i] = int(v)
	}
	t := time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0, time.UTC)
	return dateOf(t)
}

var dateParseLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func evalDateParse(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("date-parse requires exactly 1 argument (string)")
	}
	s, err := asString(ctx, args[0], "date-parse", "first argument")
	if err != nil {
		return err
	}
	for _, layout := range dateParseLayouts {
		if t, parseErr := time.Parse(layout, s); parseErr == nil {
			return dateOf(t)
		}
	}
	return ctx.NewError("date-parse could not parse '%s'", s)
}

// formatTokens maps the script-facing format tokens onto Go reference layouts.
// Longer tokens come first so MM is not consumed as two Ms.
var formatTokens = [][2]string{
	{"YYYY", "2006"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

func evalDateFormat(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("date-format requires exactly 2 arguments (date, format)")
	}
	t, err := dateValue(ctx, args[0], "date-format", "first argument")
	if err != nil {
		return err
	}
	format, err := asString(ctx, args[1], "date-format", "format")
	if err != nil {
		return err
	}
	layout := format
	for _, pair := range formatTokens {
		layout = strings.ReplaceAll(layout, pair[0], pair[1])
	}
	return str(t.Format(layout))
}

func unitDuration(ctx object.EvaluatorContext, fn string, amount float64, unit string) (time.Duration, *object.Error) {
	switch unit {
	case "milliseconds":
		return time.Duration(amount * float64(time.Millisecond)), nil
	case "seconds":
		return time.Duration(amount * float64(time.Second)), nil
	case "minutes":
		return time.Duration(amount * float64(time.Minute)), nil
	case "hours":
		return time.Duration(amount * float64(time.Hour)), nil
	case "days":
		return time.Duration(amount * 24 * float64(time.Hour)), nil
	case "weeks":
		return time.Duration(amount * 7 * 24 * float64(time.Hour)), nil
	default:
		return 0, ctx.NewError("%s unit must be one of milliseconds, seconds, minutes, hours, days, weeks", fn)
	}
}

func evalDateAdd(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	return dateShift(ctx, "date-add", 1, args)
}

func evalDateSubtract(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	return dateShift(ctx, "date-subtract", -1, args)
}

func dateShift(ctx object.EvaluatorContext, fn string, sign float64, args []object.Object) object.Object {
	if len(args) != 3 {
		return ctx.NewError("%s requires exactly 3 arguments (date, amount, unit)", fn)
	}
	t, err := dateValue(ctx, args[0], fn, "first argument")
	if err != nil {
		return err
	}
	amount, err := asNumber(ctx, args[1], fn, "amount")
	if err != nil {
		return err
	}
	unit, err := asString(ctx, args[2], fn, "unit")
	if err != nil {
		return err
	}
	d, err := unitDuration(ctx, fn, sign*amount, unit)
	if err != nil {
		return err
	}
	return dateOf(t.Add(d))
}

func evalDateDiff(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 3 {
		return ctx.NewError("date-diff requires exactly 3 arguments (date, date, unit)")
	}
	a, err := dateValue(ctx, args[0], "date-diff", "first argument")
	if err != nil {
		return err
	}
	b, err := dateValue(ctx, args[1], "date-diff", "second argument")
	if err != nil {
		return err
	}
	unit, err := asString(ctx, args[2], "date-diff", "unit")
	if err != nil {
		return err
	}
	one, err := unitDuration(ctx, "date-diff", 1, unit)
	if err != nil {
		return err
	}
	return number(float64(a.Sub(b)) / float64(one))
}

func dateField(name string, field func(time.Time) float64) object.BuiltinFunction {
	return func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
		if len(args) != 1 {
			return ctx.NewError("%s requires exactly 1 argument (date)", name)
		}
		t, err := dateValue(ctx, args[0], name, "first argument")
		if err != nil {
			return err
		}
		return number(field(t))
	}
}

func evalDateWeekday(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("date-weekday requires exactly 1 argument (date)")
	}
	t, err := dateValue(ctx, args[0], "date-weekday", "first argument")
	if err != nil {
		return err
	}
	return str(t.Weekday().String())
}

func dateCompare(name string, cmp func(a, b time.Time) bool) object.BuiltinFunction {
	return func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
		if len(args) != 2 {
			return ctx.NewError("%s requires exactly 2 arguments (dates)", name)
		}
		a, err := dateValue(ctx, args[0], name, "first argument")
		if err != nil {
			return err
		}
		b, err := dateValue(ctx, args[1], name, "second argument")
		if err != nil {
			return err
		}
		return ctx.NativeBoolToBooleanObject(cmp(a, b))
	}
}
