package builtins

import (
	"bytes"
	"os"
	"os/exec"
	"time"

	"github.com/tj-mc/tilde-sub001/internal/object"
)

func init() {
	register("env", evalEnv)
	register("args", evalArgs)
	register("wait", evalWait)
	register("run", evalRun)
}

func evalEnv(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("env requires exactly 1 argument (name)")
	}
	name, err := asString(ctx, args[0], "env", "name")
	if err != nil {
		return err
	}
	val, ok := os.LookupEnv(name)
	if !ok {
		return ctx.Null()
	}
	return str(val)
}

func evalArgs(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 0 {
		return ctx.NewError("args takes no arguments")
	}
	scriptArgs := ctx.GetConfiguration().ScriptArgs
	elements := make([]object.Object, len(scriptArgs))
	for i, a := range scriptArgs {
		elements[i] = str(a)
	}
	return &object.List{Elements: elements}
}

func evalWait(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("wait requires exactly 1 argument (seconds)")
	}
	seconds, err := asNumber(ctx, args[0], "wait", "seconds")
	if err != nil {
		return err
	}
	if seconds < 0 {
		return ctx.NewError("wait seconds must not be negative")
	}
	time.Sleep(time.Duration(seconds * float64(time.Second)))
	return ctx.Null()
}

// evalRun executes a shell command and reports its output and exit code.
func evalRun(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("run requires exactly 1 argument (command)")
	}
	command, err := asString(ctx, args[0], "run", "command")
	if err != nil {
		return err
	}

	cmd := exec.Command("sh", "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	code := 0
	if runErr := cmd.Run(); runErr != nil {
		exitErr, ok := runErr.(*exec.ExitError)
		if !ok {
			return ctx.NewError("run: %s", runErr)
		}
		code = exitErr.ExitCode()
	}

	out := object.NewMap()
	out.Put("stdout", str(stdout.String()))
	out.Put("stderr", str(stderr.String()))
	out.Put("code", number(float64(code)))
	return out
}
