package builtins

import (
	"strings"

	"github.com/tj-mc/tilde-sub001/internal/object"
)

func init() {
	register("keys", evalKeys)
	register("values", evalValues)
	register("has", evalHas)
	register("merge", evalMerge)
	register("deep-merge", evalDeepMerge)
	register("pick", evalPick)
	register("omit", evalOmit)
	register("object-get", evalObjectGet)
	register("object-set", evalObjectSet)
}

func evalKeys(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("keys requires exactly 1 argument (object)")
	}
	m, err := asMap(ctx, args[0], "keys", "first argument")
	if err != nil {
		return err
	}
	elements := make([]object.Object, len(m.Keys))
	for i, k := range m.Keys {
		elements[i] = str(k)
	}
	return &object.List{Elements: elements}
}

func evalValues(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("values requires exactly 1 argument (object)")
	}
	m, err := asMap(ctx, args[0], "values", "first argument")
	if err != nil {
		return err
	}
	elements := make([]object.Object, len(m.Keys))
	for i, k := range m.Keys {
		elements[i] = m.Entries[k]
	}
	return &object.List{Elements: elements}
}

func evalHas(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("has requires exactly 2 arguments (object, key)")
	}
	m, err := asMap(ctx, args[0], "has", "first argument")
	if err != nil {
		return err
	}
	key, err := asString(ctx, args[1], "has", "key")
	if err != nil {
		return err
	}
	_, ok := m.Get(key)
	return ctx.NativeBoolToBooleanObject(ok)
}

func evalMerge(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) < 2 {
		return ctx.NewError("merge requires at least 2 arguments (objects)")
	}
	out := object.NewMap()
	for _, arg := range args {
		m, err := asMap(ctx, arg, "merge", "every argument")
		if err != nil {
			return err
		}
		for _, k := range m.Keys {
			out.Put(k, m.Entries[k])
		}
	}
	return out
}

func evalDeepMerge(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) < 2 {
		return ctx.NewError("deep-merge requires at least 2 arguments (objects)")
	}
	out := object.NewMap()
	for _, arg := range args {
		m, err := asMap(ctx, arg, "deep-merge", "every argument")
		if err != nil {
			return err
		}
		deepMergeInto(out, m)
	}
	return out
}

func deepMergeInto(dst, src *object.Map) {
	for _, k := range src.Keys {
		incoming := src.Entries[k]
		if existing, ok := dst.Get(k); ok {
			if em, ok := existing.(*object.Map); ok {
				if im, ok := incoming.(*object.Map); ok {
					merged := em.Copy()
					deepMergeInto(merged, im)
					dst.Put(k, merged)
					continue
				}
			}
		}
		dst.Put(k, incoming)
	}
}

func evalPick(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("pick requires exactly 2 arguments (object, keys)")
	}
	m, err := asMap(ctx, args[0], "pick", "first argument")
	if err != nil {
		return err
	}
	keys, err := asList(ctx, args[1], "pick", "keys")
	if err != nil {
		return err
	}
	out := object.NewMap()
	for _, el := range keys.Elements {
		k, err := asString(ctx, el, "pick", "every key")
		if err != nil {
			return err
		}
		if v, ok := m.Get(k); ok {
			out.Put(k, v)
		}
	}
	return out
}

func evalOmit(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("omit requires exactly 2 arguments (object, keys)")
	}
	m, err := asMap(ctx, args[0], "omit", "first argument")
	if err != nil {
		return err
	}
	keys, err := asList(ctx, args[1], "omit", "keys")
	if err != nil {
		return err
	}
	drop := make(map[string]bool, len(keys.Elements))
	for _, el := range keys.Elements {
		k, err := asString(ctx, el, "omit", "every key")
		if err != nil {
			return err
		}
		drop[k] = true
	}
	out := object.NewMap()
	for _, k := range m.Keys {
		if !drop[k] {
			out.Put(k, m.Entries[k])
		}
	}
	return out
}

// evalObjectGet walks a dotted path, returning Null when any segment is missing.
func evalObjectGet(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("object-get requires exactly 2 arguments (object, path)")
	}
	m, err := asMap(ctx, args[0], "object-get", "first argument")
	if err != nil {
		return err
	}
	path, err := asString(ctx, args[1], "object-get", "path")
	if err != nil {
		return err
	}

	var current object.Object = m
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(*object.Map)
		if !ok {
			return ctx.Null()
		}
		current, ok = node.Get(segment)
		if !ok {
			return ctx.Null()
		}
	}
	return current
}

func evalObjectSet(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 3 {
		return ctx.NewError("object-set requires exactly 3 arguments (object, path, value)")
	}
	m, err := asMap(ctx, args[0], "object-set", "first argument")
	if err != nil {
		return err
	}
	path, err := asString(ctx, args[1], "object-set", "path")
	if err != nil {
		return err
	}

	out := m.Copy()
	node := out
	segments := strings.Split(path, ".")
	for _, segment := range segments[:len(segments)-1] {
		next, ok := node.Get(segment)
		child, isMap := next.(*object.Map)
		if !ok || !isMap {
			child = object.NewMap()
		} else {
			child = child.Copy()
		}
		node.Put(segment, child)
		node = child
	}
	node.Put(segments[len(segments)-1], args[2])
	return out
}
