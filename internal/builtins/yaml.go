package builtins

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tj-mc/tilde-sub001/internal/object"
)

func init() {
	register("to-yaml", evalToYAML)
	register("from-yaml", evalFromYAML)
}

func evalToYAML(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("to-yaml requires exactly 1 argument")
	}
	node, err := toYAMLNode(args[0])
	if err != nil {
		return ctx.NewError("to-yaml: %s", err)
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return ctx.NewError("to-yaml: %s", err)
	}
	return str(string(out))
}

// toYAMLNode builds yaml.Node trees directly so map keys keep insertion order.
func toYAMLNode(val object.Object) (*yaml.Node, error) {
	switch v := val.(type) {
	case *object.Number:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: v.Inspect()}, nil
	case *object.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Value}, nil
	case *object.Boolean:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprintf("%t", v.Value)}, nil
	case *object.Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case *object.Date:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Inspect()}, nil
	case *object.List:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, el := range v.Elements {
			child, err := toYAMLNode(el)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case *object.Map:
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range v.Keys {
			child, err := toYAMLNode(v.Entries[k])
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				child)
		}
		return node, nil
	default:
		return nil, fmt.Errorf("cannot serialize %s", val.Type())
	}
}

func evalFromYAML(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("from-yaml requires exactly 1 argument (string)")
	}
	s, err := asString(ctx, args[0], "from-yaml", "first argument")
	if err != nil {
		return err
	}
	var doc yaml.Node
	if unmarshalErr := yaml.Unmarshal([]byte(s), &doc); unmarshalErr != nil {
		return ctx.NewError("from-yaml: %s", unmarshalErr)
	}
	if len(doc.Content) == 0 {
		return ctx.Null()
	}
	val, convErr := fromYAMLNode(ctx, doc.Content[0])
	if convErr != nil {
		return ctx.NewError("from-yaml: %s", convErr)
	}
	return val
}

func fromYAMLNode(ctx object.EvaluatorContext, node *yaml.Node) (object.Object, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!null":
			return ctx.Null(), nil
		case "!!bool":
			return ctx.NativeBoolToBooleanObject(strings.EqualFold(node.Value, "true")), nil
		case "!!int", "!!float":
			v, err := strconv.ParseFloat(node.Value, 64)
			if err != nil {
				return nil, err
			}
			return number(v), nil
		default:
			return str(node.Value), nil
		}
	case yaml.SequenceNode:
		var elements []object.Object
		for _, child := range node.Content {
			val, err := fromYAMLNode(ctx, child)
			if err != nil {
				return nil, err
			}
			elements = append(elements, val)
		}
		return &object.List{Elements: elements}, nil
	case yaml.MappingNode:
		m := object.NewMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			val, err := fromYAMLNode(ctx, node.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Put(node.Content[i].Value, val)
		}
		return m, nil
	case yaml.AliasNode:
		return fromYAMLNode(ctx, node.Alias)
	default:
		return nil, fmt.Errorf("unsupported node kind %d", node.Kind)
	}
}
