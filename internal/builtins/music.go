package builtins

import (
	"fmt"
	"strings"

	"github.com/tj-mc/tilde-sub001/internal/music"
	"github.com/tj-mc/tilde-sub001/internal/object"
)

func init() {
	register("tempo", evalTempo)
	register("pattern", evalPattern)
	register("pattern-debug", evalPatternDebug)
	register("play", evalPlay)
	register("stop", evalStop)
	register("__scheduler-tick", evalSchedulerTick)
	register("__scheduler-debug", evalSchedulerDebug)
}

func evalTempo(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("tempo requires exactly 1 argument: cpm")
	}
	cpm, err := asNumber(ctx, args[0], "tempo", "cpm")
	if err != nil {
		return err
	}
	if cpm <= 0 {
		return ctx.NewError("tempo must be positive")
	}
	ctx.Scheduler().SetTempo(cpm)
	return str(fmt.Sprintf("Tempo set to %v CPM", formatNumber(cpm)))
}

// evalPattern parses mini-notation into a first-class pattern value, so
// patterns can be built up in variables before being played.
func evalPattern(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("pattern requires exactly 1 argument: notation")
	}
	notation, err := asString(ctx, args[0], "pattern", "notation")
	if err != nil {
		return err
	}
	p, parseErr := music.ParseMiniNotation(notation)
	if parseErr != nil {
		return ctx.NewError("invalid pattern: %s", parseErr)
	}
	return &object.Pattern{Value: p}
}

func evalPatternDebug(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("pattern-debug requires a pattern argument")
	}
	pat, ok := args[0].(*object.Pattern)
	if !ok {
		return ctx.NewError("pattern-debug requires a pattern argument")
	}
	p := pat.Value

	var out strings.Builder
	fmt.Fprintf(&out, "Pattern %q: %d events over %v cycles", p.Notation(), len(p.Events), formatNumber(p.Duration))
	for _, ev := range p.Events {
		fmt.Fprintf(&out, "\n  %.3f %s", ev.Time, ev)
	}
	return str(out.String())
}

func evalPlay(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("play requires exactly 1 argument: pattern")
	}
	pat, ok := args[0].(*object.Pattern)
	if !ok {
		return ctx.NewError("play argument must be a pattern")
	}

	sched := ctx.Scheduler()
	sched.Add(sched.NextPatternName(), pat.Value)
	if !sched.IsPlaying() {
		sched.Start()
	}
	return str("Pattern added to scheduler")
}

func evalStop(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 0 {
		return ctx.NewError("stop takes no arguments")
	}
	ctx.Scheduler().Stop()
	return str("Scheduler stopped")
}

func evalSchedulerTick(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 0 {
		return ctx.NewError("__scheduler-tick takes no arguments")
	}
	events := ctx.Scheduler().Tick()
	if len(events) == 0 {
		return str("No events fired")
	}
	parts := make([]string, len(events))
	for i, ev := range events {
		parts[i] = ev.String()
	}
	return str("Events fired: " + strings.Join(parts, ", "))
}

func evalSchedulerDebug(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 0 {
		return ctx.NewError("__scheduler-debug takes no arguments")
	}
	sched := ctx.Scheduler()
	out := object.NewMap()
	out.Put("playing", ctx.NativeBoolToBooleanObject(sched.IsPlaying()))
	out.Put("tempo", number(sched.Tempo()))
	out.Put("patterns", number(float64(sched.PatternCount())))
	out.Put("time", number(sched.CurrentTime()))
	return out
}
