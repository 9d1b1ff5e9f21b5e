package builtins

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tj-mc/tilde-sub001/internal/object"
)

func init() {
	register("say", evalSay)
	register("ask", evalAsk)
	register("clear", evalClear)
}

// evalSay prints its arguments joined with no separator and returns the line.
func evalSay(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	var out strings.Builder
	for _, arg := range args {
		out.WriteString(arg.Inspect())
	}
	message := out.String()
	fmt.Fprintln(ctx.Stdout(), message)
	return str(message)
}

// evalAsk reads a line from the user. Numeric answers come back as numbers.
func evalAsk(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) > 1 {
		return ctx.NewError("ask requires at most 1 argument (prompt)")
	}
	if len(args) == 1 {
		prompt, err := asString(ctx, args[0], "ask", "prompt")
		if err != nil {
			return err
		}
		fmt.Fprint(ctx.Stdout(), prompt)
	}
	line, readErr := ctx.Stdin().ReadString('\n')
	if readErr != nil && line == "" {
		return ctx.NewError("ask: %s", readErr)
	}
	answer := strings.TrimRight(line, "\r\n")
	if v, parseErr := strconv.ParseFloat(strings.TrimSpace(answer), 64); parseErr == nil && strings.TrimSpace(answer) != "" {
		return number(v)
	}
	return str(answer)
}

func evalClear(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 0 {
		return ctx.NewError("clear takes no arguments")
	}
	fmt.Fprint(ctx.Stdout(), "\033[2J\033[H")
	return ctx.Null()
}
