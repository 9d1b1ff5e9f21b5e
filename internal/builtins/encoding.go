package builtins

import (
	"encoding/base64"
	"net/url"

	"github.com/tj-mc/tilde-sub001/internal/object"
)

func init() {
	register("base64-encode", evalBase64Encode)
	register("base64-decode", evalBase64Decode)
	register("url-encode", evalURLEncode)
	register("url-decode", evalURLDecode)
}

func evalBase64Encode(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("base64-encode requires exactly 1 argument (string)")
	}
	s, err := asString(ctx, args[0], "base64-encode", "first argument")
	if err != nil {
		return err
	}
	return str(base64.StdEncoding.EncodeToString([]byte(s)))
}

func evalBase64Decode(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("base64-decode requires exactly 1 argument (string)")
	}
	s, err := asString(ctx, args[0], "base64-decode", "first argument")
	if err != nil {
		return err
	}
	decoded, decodeErr := base64.StdEncoding.DecodeString(s)
	if decodeErr != nil {
		return ctx.NewError("base64-decode: %s", decodeErr)
	}
	return str(string(decoded))
}

func evalURLEncode(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("url-encode requires exactly 1 argument (string)")
	}
	s, err := asString(ctx, args[0], "url-encode", "first argument")
	if err != nil {
		return err
	}
	return str(url.QueryEscape(s))
}

func evalURLDecode(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("url-decode requires exactly 1 argument (string)")
	}
	s, err := asString(ctx, args[0], "url-decode", "first argument")
	if err != nil {
		return err
	}
	decoded, decodeErr := url.QueryUnescape(s)
	if decodeErr != nil {
		return ctx.NewError("url-decode: %s", decodeErr)
	}
	return str(decoded)
}
