package builtins

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tj-mc/tilde-sub001/internal/object"
)

func init() {
	register("to-json", evalToJSON)
	register("from-json", evalFromJSON)
}

func evalToJSON(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("to-json requires exactly 1 argument")
	}
	var buf bytes.Buffer
	if err := encodeJSON(&buf, args[0]); err != nil {
		return ctx.NewError("to-json: %s", err)
	}
	return str(buf.String())
}

// encodeJSON writes values by hand so map keys keep their insertion order.
func encodeJSON(buf *bytes.Buffer, val object.Object) error {
	switch v := val.(type) {
	case *object.Number:
		buf.WriteString(v.Inspect())
	case *object.String:
		encoded, err := json.Marshal(v.Value)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case *object.Boolean:
		fmt.Fprintf(buf, "%t", v.Value)
	case *object.Null:
		buf.WriteString("null")
	case *object.Date:
		fmt.Fprintf(buf, "%q", v.Inspect())
	case *object.List:
		buf.WriteByte('[')
		for i, el := range v.Elements {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeJSON(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *object.Map:
		buf.WriteByte('{')
		for i, k := range v.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			encoded, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(encoded)
			buf.WriteByte(':')
			if err := encodeJSON(buf, v.Entries[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("cannot serialize %s", val.Type())
	}
	return nil
}

func evalFromJSON(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("from-json requires exactly 1 argument (string)")
	}
	s, err := asString(ctx, args[0], "from-json", "first argument")
	if err != nil {
		return err
	}
	dec := json.NewDecoder(strings.NewReader(s))
	val, decodeErr := decodeJSONValue(ctx, dec)
	if decodeErr != nil {
		return ctx.NewError("from-json: %s", decodeErr)
	}
	return val
}

// decodeJSONValue walks the token stream so object keys keep document order.
func decodeJSONValue(ctx object.EvaluatorContext, dec *json.Decoder) (object.Object, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeJSONToken(ctx, dec, tok)
}

func decodeJSONToken(ctx object.EvaluatorContext, dec *json.Decoder, tok json.Token) (object.Object, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := object.NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string")
				}
				val, err := decodeJSONValue(ctx, dec)
				if err != nil {
					return nil, err
				}
				m.Put(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			var elements []object.Object
			for dec.More() {
				val, err := decodeJSONValue(ctx, dec)
				if err != nil {
					return nil, err
				}
				elements = append(elements, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return &object.List{Elements: elements}, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return str(t), nil
	case float64:
		return number(t), nil
	case bool:
		return ctx.NativeBoolToBooleanObject(t), nil
	case nil:
		return ctx.Null(), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}
