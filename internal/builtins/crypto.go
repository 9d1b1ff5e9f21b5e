package builtins

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/tj-mc/tilde-sub001/internal/object"
)

func init() {
	register("hash", hashFunc("hash", func() hash.Hash { return sha256.New() }))
	register("md5", hashFunc("md5", func() hash.Hash { return md5.New() }))
	register("sha1", hashFunc("sha1", func() hash.Hash { return sha1.New() }))
	register("hmac-sha256", evalHmacSHA256)
	register("uuid", evalUUID)
}

func hashFunc(name string, newHash func() hash.Hash) object.BuiltinFunction {
	return func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
		if len(args) != 1 {
			return ctx.NewError("%s requires exactly 1 argument (string)", name)
		}
		s, err := asString(ctx, args[0], name, "first argument")
		if err != nil {
			return err
		}
		h := newHash()
		h.Write([]byte(s))
		return str(hex.EncodeToString(h.Sum(nil)))
	}
}

func evalHmacSHA256(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("hmac-sha256 requires exactly 2 arguments (message, key)")
	}
	msg, err := asString(ctx, args[0], "hmac-sha256", "message")
	if err != nil {
		return err
	}
	key, err := asString(ctx, args[1], "hmac-sha256", "key")
	if err != nil {
		return err
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(msg))
	return str(hex.EncodeToString(mac.Sum(nil)))
}

func evalUUID(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 0 {
		return ctx.NewError("uuid takes no arguments")
	}
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ctx.NewError("uuid: %s", err)
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return str(fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16]))
}
