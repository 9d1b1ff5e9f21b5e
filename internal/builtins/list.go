package builtins

import (
	"sort"
	"strings"

	"github.com/tj-mc/tilde-sub001/internal/object"
)

func init() {
	register("map", evalMap)
	register("filter", evalFilter)
	register("reduce", evalReduce)
	register("sort", evalSort)
	register("sort-by", evalSortBy)
	register("reverse", evalReverse)
	register("find", evalFind)
	register("find-index", evalFindIndex)
	register("every", evalEvery)
	register("some", evalSome)
	register("index-of", evalIndexOf)
	register("contains", evalContains)
	register("slice", evalSlice)
	register("concat", evalConcat)
	register("take", evalTake)
	register("drop", evalDrop)
	register("flatten", evalFlatten)
	register("unique", evalUnique)
	register("zip", evalZip)
	register("chunk", evalChunk)
	register("remove", evalRemove)
	register("remove-at", evalRemoveAt)
	register("insert", evalInsert)
	register("set-at", evalSetAt)
	register("pop", evalPop)
	register("shift", evalShift)
	register("unshift", evalUnshift)
	register("append", evalAppend)
	register("first", evalFirst)
	register("last", evalLast)
	register("range", evalRange)
	register("sum", evalSum)
}

func evalMap(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("map requires exactly 2 arguments (list, function)")
	}
	list, err := asList(ctx, args[0], "map", "first argument")
	if err != nil {
		return err
	}
	fn, err := asCallable(ctx, args[1], "map", "second argument")
	if err != nil {
		return err
	}

	result := make([]object.Object, 0, len(list.Elements))
	for _, item := range list.Elements {
		mapped := apply(ctx, fn, item)
		if isError(mapped) {
			return mapped
		}
		result = append(result, mapped)
	}
	return &object.List{Elements: result}
}

func evalFilter(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("filter requires exactly 2 arguments (list, function)")
	}
	list, err := asList(ctx, args[0], "filter", "first argument")
	if err != nil {
		return err
	}
	fn, err := asCallable(ctx, args[1], "filter", "second argument")
	if err != nil {
		return err
	}

	var result []object.Object
	for _, item := range list.Elements {
		keep := apply(ctx, fn, item)
		if isError(keep) {
			return keep
		}
		if object.IsTruthy(keep) {
			result = append(result, item)
		}
	}
	return &object.List{Elements: result}
}

func evalReduce(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 3 {
		return ctx.NewError("reduce requires exactly 3 arguments (list, function, initial)")
	}
	list, err := asList(ctx, args[0], "reduce", "first argument")
	if err != nil {
		return err
	}
	fn, err := asCallable(ctx, args[1], "reduce", "second argument")
	if err != nil {
		return err
	}

	acc := args[2]
	for _, item := range list.Elements {
		acc = apply(ctx, fn, acc, item)
		if isError(acc) {
			return acc
		}
	}
	return acc
}

func evalSort(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("sort requires exactly 1 argument (list)")
	}
	list, err := asList(ctx, args[0], "sort", "first argument")
	if err != nil {
		return err
	}

	elements := append([]object.Object(nil), list.Elements...)
	allNumbers := true
	allStrings := true
	for _, el := range elements {
		if _, ok := el.(*object.Number); !ok {
			allNumbers = false
		}
		if _, ok := el.(*object.String); !ok {
			allStrings = false
		}
	}

	switch {
	case allNumbers:
		sort.Slice(elements, func(i, j int) bool {
			return elements[i].(*object.Number).Value < elements[j].(*object.Number).Value
		})
	case allStrings:
		sort.Slice(elements, func(i, j int) bool {
			return elements[i].(*object.String).Value < elements[j].(*object.String).Value
		})
	default:
		return ctx.NewError("sort requires a list of all numbers or all strings")
	}
	return &object.List{Elements: elements}
}

func evalSortBy(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("sort-by requires exactly 2 arguments (list, function)")
	}
	list, err := asList(ctx, args[0], "sort-by", "first argument")
	if err != nil {
		return err
	}
	fn, err := asCallable(ctx, args[1], "sort-by", "second argument")
	if err != nil {
		return err
	}

	type keyed struct {
		item object.Object
		key  object.Object
	}
	pairs := make([]keyed, len(list.Elements))
	for i, item := range list.Elements {
		key := apply(ctx, fn, item)
		if isError(key) {
			return key
		}
		pairs[i] = keyed{item: item, key: key}
	}

	var sortErr object.Object
	sort.SliceStable(pairs, func(i, j int) bool {
		switch a := pairs[i].key.(type) {
		case *object.Number:
			if b, ok := pairs[j].key.(*object.Number); ok {
				return a.Value < b.Value
			}
		case *object.String:
			if b, ok := pairs[j].key.(*object.String); ok {
				return a.Value < b.Value
			}
		}
		if sortErr == nil {
			sortErr = ctx.NewError("sort-by keys must be all numbers or all strings")
		}
		return false
	})
	if sortErr != nil {
		return sortErr
	}

	elements := make([]object.Object, len(pairs))
	for i, p := range pairs {
		elements[i] = p.item
	}
	return &object.List{Elements: elements}
}

func evalReverse(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("reverse requires exactly 1 argument")
	}
	switch arg := args[0].(type) {
	case *object.List:
		elements := make([]object.Object, len(arg.Elements))
		for i, el := range arg.Elements {
			elements[len(arg.Elements)-1-i] = el
		}
		return &object.List{Elements: elements}
	case *object.String:
		runes := []rune(arg.Value)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return str(string(runes))
	default:
		return ctx.NewError("reverse argument must be a list or string")
	}
}

func evalFind(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("find requires exactly 2 arguments (list, function)")
	}
	list, err := asList(ctx, args[0], "find", "first argument")
	if err != nil {
		return err
	}
	fn, err := asCallable(ctx, args[1], "find", "second argument")
	if err != nil {
		return err
	}

	for _, item := range list.Elements {
		matched := apply(ctx, fn, item)
		if isError(matched) {
			return matched
		}
		if object.IsTruthy(matched) {
			return item
		}
	}
	return ctx.Null()
}

func evalFindIndex(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("find-index requires exactly 2 arguments (list, function)")
	}
	list, err := asList(ctx, args[0], "find-index", "first argument")
	if err != nil {
		return err
	}
	fn, err := asCallable(ctx, args[1], "find-index", "second argument")
	if err != nil {
		return err
	}

	for i, item := range list.Elements {
		matched := apply(ctx, fn, item)
		if isError(matched) {
			return matched
		}
		if object.IsTruthy(matched) {
			return number(float64(i))
		}
	}
	return ctx.Null()
}

func evalEvery(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("every requires exactly 2 arguments (list, function)")
	}
	list, err := asList(ctx, args[0], "every", "first argument")
	if err != nil {
		return err
	}
	fn, err := asCallable(ctx, args[1], "every", "second argument")
	if err != nil {
		return err
	}

	for _, item := range list.Elements {
		matched := apply(ctx, fn, item)
		if isError(matched) {
			return matched
		}
		if !object.IsTruthy(matched) {
			return ctx.NativeBoolToBooleanObject(false)
		}
	}
	return ctx.NativeBoolToBooleanObject(true)
}

func evalSome(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("some requires exactly 2 arguments (list, function)")
	}
	list, err := asList(ctx, args[0], "some", "first argument")
	if err != nil {
		return err
	}
	fn, err := asCallable(ctx, args[1], "some", "second argument")
	if err != nil {
		return err
	}

	for _, item := range list.Elements {
		matched := apply(ctx, fn, item)
		if isError(matched) {
			return matched
		}
		if object.IsTruthy(matched) {
			return ctx.NativeBoolToBooleanObject(true)
		}
	}
	return ctx.NativeBoolToBooleanObject(false)
}

func evalIndexOf(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("index-of requires exactly 2 arguments (list, value)")
	}
	list, err := asList(ctx, args[0], "index-of", "first argument")
	if err != nil {
		return err
	}
	for i, item := range list.Elements {
		if object.Equals(item, args[1]) {
			return number(float64(i))
		}
	}
	return ctx.Null()
}

func evalContains(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("contains requires exactly 2 arguments")
	}
	switch target := args[0].(type) {
	case *object.List:
		for _, item := range target.Elements {
			if object.Equals(item, args[1]) {
				return ctx.NativeBoolToBooleanObject(true)
			}
		}
		return ctx.NativeBoolToBooleanObject(false)
	case *object.String:
		needle, err := asString(ctx, args[1], "contains", "second argument")
		if err != nil {
			return err
		}
		return ctx.NativeBoolToBooleanObject(strings.Contains(target.Value, needle))
	default:
		return ctx.NewError("contains first argument must be a list or string")
	}
}

// clampRange normalizes a [start, end) request against a length.
func clampRange(start, end, length int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if start > end {
		start = end
	}
	return start, end
}

func evalSlice(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) < 2 || len(args) > 3 {
		return ctx.NewError("slice requires 2-3 arguments (list, start, optional end)")
	}
	list, err := asList(ctx, args[0], "slice", "first argument")
	if err != nil {
		return err
	}
	start, err := asNumber(ctx, args[1], "slice", "start")
	if err != nil {
		return err
	}
	end := float64(len(list.Elements))
	if len(args) == 3 {
		end, err = asNumber(ctx, args[2], "slice", "end")
		if err != nil {
			return err
		}
	}
	s, e := clampRange(int(start), int(end), len(list.Elements))
	return &object.List{Elements: append([]object.Object(nil), list.Elements[s:e]...)}
}

func evalConcat(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) < 2 {
		return ctx.NewError("concat requires at least 2 arguments")
	}
	var elements []object.Object
	for _, arg := range args {
		list, err := asList(ctx, arg, "concat", "every argument")
		if err != nil {
			return err
		}
		elements = append(elements, list.Elements...)
	}
	return &object.List{Elements: elements}
}

func evalTake(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("take requires exactly 2 arguments (list, count)")
	}
	list, err := asList(ctx, args[0], "take", "first argument")
	if err != nil {
		return err
	}
	count, err := asNumber(ctx, args[1], "take", "count")
	if err != nil {
		return err
	}
	s, e := clampRange(0, int(count), len(list.Elements))
	return &object.List{Elements: append([]object.Object(nil), list.Elements[s:e]...)}
}

func evalDrop(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("drop requires exactly 2 arguments (list, count)")
	}
	list, err := asList(ctx, args[0], "drop", "first argument")
	if err != nil {
		return err
	}
	count, err := asNumber(ctx, args[1], "drop", "count")
	if err != nil {
		return err
	}
	s, e := clampRange(int(count), len(list.Elements), len(list.Elements))
	return &object.List{Elements: append([]object.Object(nil), list.Elements[s:e]...)}
}

func evalFlatten(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("flatten requires exactly 1 argument (list)")
	}
	list, err := asList(ctx, args[0], "flatten", "first argument")
	if err != nil {
		return err
	}
	var elements []object.Object
	for _, item := range list.Elements {
		if nested, ok := item.(*object.List); ok {
			elements = append(elements, nested.Elements...)
		} else {
			elements = append(elements, item)
		}
	}
	return &object.List{Elements: elements}
}

func evalUnique(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("unique requires exactly 1 argument (list)")
	}
	list, err := asList(ctx, args[0], "unique", "first argument")
	if err != nil {
		return err
	}
	var elements []object.Object
	for _, item := range list.Elements {
		seen := false
		for _, kept := range elements {
			if object.Equals(item, kept) {
				seen = true
				break
			}
		}
		if !seen {
			elements = append(elements, item)
		}
	}
	return &object.List{Elements: elements}
}

func evalZip(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("zip requires exactly 2 arguments (list, list)")
	}
	a, err := asList(ctx, args[0], "zip", "first argument")
	if err != nil {
		return err
	}
	b, err := asList(ctx, args[1], "zip", "second argument")
	if err != nil {
		return err
	}
	n := len(a.Elements)
	if len(b.Elements) < n {
		n = len(b.Elements)
	}
	elements := make([]object.Object, n)
	for i := 0; i < n; i++ {
		elements[i] = &object.List{Elements: []object.Object{a.Elements[i], b.Elements[i]}}
	}
	return &object.List{Elements: elements}
}

func evalChunk(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("chunk requires exactly 2 arguments (list, size)")
	}
	list, err := asList(ctx, args[0], "chunk", "first argument")
	if err != nil {
		return err
	}
	size, err := asNumber(ctx, args[1], "chunk", "size")
	if err != nil {
		return err
	}
	if size < 1 {
		return ctx.NewError("chunk size must be at least 1")
	}
	step := int(size)
	var chunks []object.Object
	for i := 0; i < len(list.Elements); i += step {
		end := i + step
		if end > len(list.Elements) {
			end = len(list.Elements)
		}
		chunks = append(chunks, &object.List{
			Elements: append([]object.Object(nil), list.Elements[i:end]...),
		})
	}
	return &object.List{Elements: chunks}
}

func evalRemove(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("remove requires exactly 2 arguments (list, value)")
	}
	list, err := asList(ctx, args[0], "remove", "first argument")
	if err != nil {
		return err
	}
	var elements []object.Object
	removed := false
	for _, item := range list.Elements {
		if !removed && object.Equals(item, args[1]) {
			removed = true
			continue
		}
		elements = append(elements, item)
	}
	return &object.List{Elements: elements}
}

func evalRemoveAt(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("remove-at requires exactly 2 arguments (list, index)")
	}
	list, err := asList(ctx, args[0], "remove-at", "first argument")
	if err != nil {
		return err
	}
	idx, err := asNumber(ctx, args[1], "remove-at", "index")
	if err != nil {
		return err
	}
	i := int(idx)
	if i < 0 || i >= len(list.Elements) {
		return ctx.NewError("Index %d out of range for list of length %d", i, len(list.Elements))
	}
	elements := append([]object.Object(nil), list.Elements[:i]...)
	elements = append(elements, list.Elements[i+1:]...)
	return &object.List{Elements: elements}
}

func evalInsert(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 3 {
		return ctx.NewError("insert requires exactly 3 arguments (list, index, value)")
	}
	list, err := asList(ctx, args[0], "insert", "first argument")
	if err != nil {
		return err
	}
	idx, err := asNumber(ctx, args[1], "insert", "index")
	if err != nil {
		return err
	}
	i := int(idx)
	if i < 0 || i > len(list.Elements) {
		return ctx.NewError("Index %d out of range for list of length %d", i, len(list.Elements))
	}
	elements := append([]object.Object(nil), list.Elements[:i]...)
	elements = append(elements, args[2])
	elements = append(elements, list.Elements[i:]...)
	return &object.List{Elements: elements}
}

func evalSetAt(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 3 {
		return ctx.NewError("set-at requires exactly 3 arguments (list, index, value)")
	}
	list, err := asList(ctx, args[0], "set-at", "first argument")
	if err != nil {
		return err
	}
	idx, err := asNumber(ctx, args[1], "set-at", "index")
	if err != nil {
		return err
	}
	i := int(idx)
	if i < 0 || i >= len(list.Elements) {
		return ctx.NewError("Index %d out of range for list of length %d", i, len(list.Elements))
	}
	elements := append([]object.Object(nil), list.Elements...)
	elements[i] = args[2]
	return &object.List{Elements: elements}
}

func evalPop(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("pop requires exactly 1 argument (list)")
	}
	list, err := asList(ctx, args[0], "pop", "first argument")
	if err != nil {
		return err
	}
	if len(list.Elements) == 0 {
		return ctx.NewError("pop on empty list")
	}
	return &object.List{Elements: append([]object.Object(nil), list.Elements[:len(list.Elements)-1]...)}
}

func evalShift(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("shift requires exactly 1 argument (list)")
	}
	list, err := asList(ctx, args[0], "shift", "first argument")
	if err != nil {
		return err
	}
	if len(list.Elements) == 0 {
		return ctx.NewError("shift on empty list")
	}
	return &object.List{Elements: append([]object.Object(nil), list.Elements[1:]...)}
}

func evalUnshift(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("unshift requires exactly 2 arguments (list, value)")
	}
	list, err := asList(ctx, args[0], "unshift", "first argument")
	if err != nil {
		return err
	}
	elements := append([]object.Object{args[1]}, list.Elements...)
	return &object.List{Elements: elements}
}

func evalAppend(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("append requires exactly 2 arguments (list, value)")
	}
	list, err := asList(ctx, args[0], "append", "first argument")
	if err != nil {
		return err
	}
	elements := append(append([]object.Object(nil), list.Elements...), args[1])
	return &object.List{Elements: elements}
}

func evalFirst(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("first requires exactly 1 argument (list)")
	}
	list, err := asList(ctx, args[0], "first", "first argument")
	if err != nil {
		return err
	}
	if len(list.Elements) == 0 {
		return ctx.Null()
	}
	return list.Elements[0]
}

func evalLast(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("last requires exactly 1 argument (list)")
	}
	list, err := asList(ctx, args[0], "last", "first argument")
	if err != nil {
		return err
	}
	if len(list.Elements) == 0 {
		return ctx.Null()
	}
	return list.Elements[len(list.Elements)-1]
}

func evalRange(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) < 1 || len(args) > 3 {
		return ctx.NewError("range requires 1-3 arguments (end, or start end, or start end step)")
	}
	nums := make([]float64, len(args))
	for i, arg := range args {
		n, err := asNumber(ctx, arg, "range", "every argument")
		if err != nil {
			return err
		}
		nums[i] = n
	}

	start, end, step := 0.0, 0.0, 1.0
	switch len(nums) {
	case 1:
		end = nums[0]
	case 2:
		start, end = nums[0], nums[1]
	case 3:
		start, end, step = nums[0], nums[1], nums[2]
	}
	if step == 0 {
		return ctx.NewError("range step must not be zero")
	}

	var elements []object.Object
	if step > 0 {
		for v := start; v < end; v += step {
			elements = append(elements, number(v))
		}
	} else {
		for v := start; v > end; v += step {
			elements = append(elements, number(v))
		}
	}
	return &object.List{Elements: elements}
}

func evalSum(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("sum requires exactly 1 argument (list)")
	}
	list, err := asList(ctx, args[0], "sum", "first argument")
	if err != nil {
		return err
	}
	total := 0.0
	for _, item := range list.Elements {
		n, ok := item.(*object.Number)
		if !ok {
			return ctx.NewError("sum requires a list of numbers")
		}
		total += n.Value
	}
	return number(total)
}
