package ast

import (
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DecodeYAML parses a YAML document into a Value.
// Mapping order is taken from the yaml.Node tree, so it matches the file.
func DecodeYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, decodeErrorf("yaml", "", "%v", err)
	}
	if doc.Kind == 0 || (doc.Kind == yaml.DocumentNode && len(doc.Content) == 0) {
		return nil, decodeErrorf("yaml", "$", "empty document")
	}
	return fromYAMLNode(&doc, "$")
}

// FromYAMLNode converts an already-parsed yaml.Node.
// Used by callers that embed queries inside larger YAML files.
func FromYAMLNode(n *yaml.Node) (Value, error) {
	if n == nil || n.Kind == 0 {
		return nil, decodeErrorf("yaml", "$", "missing value")
	}
	return fromYAMLNode(n, "$")
}

func fromYAMLNode(n *yaml.Node, path string) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null{}, nil
		}
		return fromYAMLNode(n.Content[0], path)

	case yaml.AliasNode:
		return fromYAMLNode(n.Alias, path)

	case yaml.MappingNode:
		m := make(Map, 0, len(n.Content)/2)
		seen := make(map[string]bool)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode || k.ShortTag() == "!!merge" {
				return nil, yamlError(k, path, "mapping keys must be plain scalars")
			}
			if seen[k.Value] {
				return nil, yamlError(k, path, "duplicate key %q", k.Value)
			}
			seen[k.Value] = true

			val, err := fromYAMLNode(n.Content[i+1], childPath(path, k.Value))
			if err != nil {
				return nil, err
			}
			m = append(m, Pair{Key: k.Value, Value: val})
		}
		return m, nil

	case yaml.SequenceNode:
		l := make(List, 0, len(n.Content))
		for i, item := range n.Content {
			val, err := fromYAMLNode(item, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			l = append(l, val)
		}
		return l, nil

	case yaml.ScalarNode:
		return fromYAMLScalar(n, path)

	default:
		return nil, yamlError(n, path, "unsupported node kind %d", n.Kind)
	}
}

func fromYAMLScalar(n *yaml.Node, path string) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, yamlError(n, path, "%v", err)
		}
		return Bool(b), nil
	case "!!int":
		// Normalises 0x1F, 1_000 and friends to plain decimal text.
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, yamlError(n, path, "%v", err)
		}
		return Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, yamlError(n, path, "%v", err)
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, yamlError(n, path, "non-finite number %q", n.Value)
		}
		return Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	default:
		// !!str, !!timestamp, !!binary: keep the text as written.
		return String(n.Value), nil
	}
}

func yamlError(n *yaml.Node, path, msg string, args ...any) *DecodeError {
	err := decodeErrorf("yaml", path, msg, args...)
	if n != nil {
		err.Line = n.Line
	}
	return err
}
