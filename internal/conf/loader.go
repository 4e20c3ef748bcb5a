package conf

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Load parses a source's text into a tree. Loading is atomic: either the
// complete tree is returned or an error, never a partial result.
//
// Syntax problems are reported as *ParseError with the line and column of
// the offending input. A key defined twice at one nesting level is reported
// as *DuplicateKeyError instead of being silently overwritten.
func Load(src Source) (*Node, error) {
	var raw map[string]interface{}
	md, err := toml.Decode(src.Text, &raw)
	if err != nil {
		return nil, classifyTOMLError(src, err)
	}

	// MetaData records keys in order of appearance; map iteration would
	// scramble them. Build an index so diagnostics keep document order.
	order := make(map[string]int, len(md.Keys()))
	for i, key := range md.Keys() {
		order[strings.Join(key, ".")] = i
	}

	node, err := nodeFromMap(raw, nil, order)
	if err != nil {
		return nil, &ParseError{Source: src.Name, Message: err.Error()}
	}
	return node, nil
}

func nodeFromMap(m map[string]interface{}, prefix Path, order map[string]int) (*Node, error) {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, iok := order[prefix.Child(keys[i]).String()]
		pj, jok := order[prefix.Child(keys[j]).String()]
		if iok && jok {
			return pi < pj
		}
		if iok != jok {
			return iok
		}
		return keys[i] < keys[j]
	})

	node := NewNode()
	for _, key := range keys {
		v, err := valueFromInterface(m[key], prefix.Child(key), order)
		if err != nil {
			return nil, err
		}
		node.Set(key, v)
	}
	return node, nil
}

func valueFromInterface(raw interface{}, path Path, order map[string]int) (Value, error) {
	switch v := raw.(type) {
	case string:
		return StringValue(v), nil
	case int64:
		return IntValue(v), nil
	case int:
		return IntValue(int64(v)), nil
	case float64:
		return FloatValue(v), nil
	case bool:
		return BoolValue(v), nil
	case time.Time:
		return StringValue(v.Format(time.RFC3339)), nil
	case []interface{}:
		items := make([]Value, 0, len(v))
		for _, item := range v {
			iv, err := valueFromInterface(item, path, order)
			if err != nil {
				return Value{}, err
			}
			items = append(items, iv)
		}
		return SeqValue(items), nil
	case []map[string]interface{}:
		// Array of tables.
		items := make([]Value, 0, len(v))
		for _, item := range v {
			child, err := nodeFromMap(item, path, order)
			if err != nil {
				return Value{}, err
			}
			items = append(items, MappingValue(child))
		}
		return SeqValue(items), nil
	case map[string]interface{}:
		child, err := nodeFromMap(v, path, order)
		if err != nil {
			return Value{}, err
		}
		return MappingValue(child), nil
	}
	return Value{}, fmt.Errorf("unsupported value of type %T at %s", raw, path)
}

// classifyTOMLError maps a decoder failure onto the load error taxonomy.
// TOML itself forbids redefining a key, so duplicate keys arrive here as
// parse errors and are told apart by the decoder's message.
func classifyTOMLError(src Source, err error) error {
	var pe toml.ParseError
	if !errors.As(err, &pe) {
		return &ParseError{Source: src.Name, Message: err.Error()}
	}

	line := pe.Position.Line
	col := columnAt(src.Text, pe.Position.Start)
	if strings.Contains(pe.Message, "already") {
		return &DuplicateKeyError{Source: src.Name, Key: pe.LastKey, Line: line}
	}
	return &ParseError{Source: src.Name, Line: line, Column: col, Message: pe.Message}
}

// columnAt computes the 1-based column of a byte offset within text.
func columnAt(text string, offset int) int {
	if offset < 0 || offset > len(text) {
		return 1
	}
	col := 1
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			col = 1
		} else {
			col++
		}
	}
	return col
}
