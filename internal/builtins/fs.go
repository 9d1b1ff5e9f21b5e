package builtins

import (
	"os"

	"github.com/tj-mc/tilde-sub001/internal/object"
)

func init() {
	register("read", evalRead)
	register("write", evalWrite)
	register("append-file", evalAppendFile)
	register("file-exists", evalFileExists)
	register("file-size", evalFileSize)
	register("file-info", evalFileInfo)
	register("delete-file", evalDeleteFile)
	register("list-dir", evalListDir)
	register("dir-exists", evalDirExists)
	register("make-dir", evalMakeDir)
}

func evalRead(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("read requires exactly 1 argument (path)")
	}
	path, err := asString(ctx, args[0], "read", "path")
	if err != nil {
		return err
	}
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return ctx.NewError("read: %s", readErr)
	}
	return str(string(data))
}

func evalWrite(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("write requires exactly 2 arguments (path, content)")
	}
	path, err := asString(ctx, args[0], "write", "path")
	if err != nil {
		return err
	}
	content, err := asString(ctx, args[1], "write", "content")
	if err != nil {
		return err
	}
	if writeErr := os.WriteFile(path, []byte(content), 0o644); writeErr != nil {
		return ctx.NewError("write: %s", writeErr)
	}
	return ctx.NativeBoolToBooleanObject(true)
}

func evalAppendFile(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("append-file requires exactly 2 arguments (path, content)")
	}
	path, err := asString(ctx, args[0], "append-file", "path")
	if err != nil {
		return err
	}
	content, err := asString(ctx, args[1], "append-file", "content")
	if err != nil {
		return err
	}
	f, openErr := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if openErr != nil {
		return ctx.NewError("append-file: %s", openErr)
	}
	defer f.Close()
	if _, writeErr := f.WriteString(content); writeErr != nil {
		return ctx.NewError("append-file: %s", writeErr)
	}
	return ctx.NativeBoolToBooleanObject(true)
}

func evalFileExists(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("file-exists requires exactly 1 argument (path)")
	}
	path, err := asString(ctx, args[0], "file-exists", "path")
	if err != nil {
		return err
	}
	info, statErr := os.Stat(path)
	return ctx.NativeBoolToBooleanObject(statErr == nil && !info.IsDir())
}

func evalFileSize(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("file-size requires exactly 1 argument (path)")
	}
	path, err := asString(ctx, args[0], "file-size", "path")
	if err != nil {
		return err
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		return ctx.NewError("file-size: %s", statErr)
	}
	return number(float64(info.Size()))
}

func evalFileInfo(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("file-info requires exactly 1 argument (path)")
	}
	path, err := asString(ctx, args[0], "file-info", "path")
	if err != nil {
		return err
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		return ctx.NewError("file-info: %s", statErr)
	}
	out := object.NewMap()
	out.Put("name", str(info.Name()))
	out.Put("size", number(float64(info.Size())))
	out.Put("is-dir", ctx.NativeBoolToBooleanObject(info.IsDir()))
	out.Put("modified", number(float64(info.ModTime().UnixMilli())))
	return out
}

func evalDeleteFile(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("delete-file requires exactly 1 argument (path)")
	}
	path, err := asString(ctx, args[0], "delete-file", "path")
	if err != nil {
		return err
	}
	if rmErr := os.Remove(path); rmErr != nil {
		return ctx.NewError("delete-file: %s", rmErr)
	}
	return ctx.NativeBoolToBooleanObject(true)
}

func evalListDir(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("list-dir requires exactly 1 argument (path)")
	}
	path, err := asString(ctx, args[0], "list-dir", "path")
	if err != nil {
		return err
	}
	entries, readErr := os.ReadDir(path)
	if readErr != nil {
		return ctx.NewError("list-dir: %s", readErr)
	}
	elements := make([]object.Object, len(entries))
	for i, entry := range entries {
		elements[i] = str(entry.Name())
	}
	return &object.List{Elements: elements}
}

func evalDirExists(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("dir-exists requires exactly 1 argument (path)")
	}
	path, err := asString(ctx, args[0], "dir-exists", "path")
	if err != nil {
		return err
	}
	info, statErr := os.Stat(path)
	return ctx.NativeBoolToBooleanObject(statErr == nil && info.IsDir())
}

func evalMakeDir(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("make-dir requires exactly 1 argument (path)")
	}
	path, err := asString(ctx, args[0], "make-dir", "path")
	if err != nil {
		return err
	}
	if mkErr := os.MkdirAll(path, 0o755); mkErr != nil {
		return ctx.NewError("make-dir: %s", mkErr)
	}
	return ctx.NativeBoolToBooleanObject(true)
}
