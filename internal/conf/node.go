package conf

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the shape of a configuration value.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindFloat
	KindBool
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Path is a dotted key path split into segments.
type Path []string

// ParsePath splits a dotted key path, e.g. "tool.ruff.line-length".
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

// Child returns a new Path with key appended. The receiver is not aliased.
func (p Path) Child(key string) Path {
	child := make(Path, 0, len(p)+1)
	child = append(child, p...)
	return append(child, key)
}

// Value is one configuration value: a scalar, a sequence, or a nested Node.
// Exactly one variant is populated, selected by Kind.
type Value struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	bln  bool
	seq  []Value
	node *Node
}

func StringValue(s string) Value { return Value{kind: KindString, str: s} }

func IntValue(i int64) Value { return Value{kind: KindInteger, num: i} }

func FloatValue(f float64) Value { return Value{kind: KindFloat, flt: f} }

func BoolValue(b bool) Value { return Value{kind: KindBool, bln: b} }

func SeqValue(items []Value) Value { return Value{kind: KindSequence, seq: items} }

func MappingValue(n *Node) Value { return Value{kind: KindMapping, node: n} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

func (v Value) AsInt() (int64, bool) { return v.num, v.kind == KindInteger }

func (v Value) AsFloat() (float64, bool) { return v.flt, v.kind == KindFloat }

func (v Value) AsBool() (bool, bool) { return v.bln, v.kind == KindBool }

// Items returns the elements of a sequence value, or nil for other kinds.
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.seq
}

// Mapping returns the nested node of a mapping value, or nil for other kinds.
func (v Value) Mapping() *Node {
	if v.kind != KindMapping {
		return nil
	}
	return v.node
}

// String renders the value the way it would appear in a TOML document.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindInteger:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.bln)
	case KindSequence:
		parts := make([]string, len(v.seq))
		for i, item := range v.seq {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMapping:
		return fmt.Sprintf("{%d keys}", v.node.Len())
	}
	return "<invalid>"
}

func (v Value) clone() Value {
	switch v.kind {
	case KindSequence:
		items := make([]Value, len(v.seq))
		for i, item := range v.seq {
			items[i] = item.clone()
		}
		return Value{kind: KindSequence, seq: items}
	case KindMapping:
		return Value{kind: KindMapping, node: v.node.clone()}
	default:
		return v
	}
}

func (v Value) equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindInteger:
		return v.num == other.num
	case KindFloat:
		return v.flt == other.flt
	case KindBool:
		return v.bln == other.bln
	case KindSequence:
		if len(v.seq) != len(other.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].equal(other.seq[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		return v.node.equal(other.node)
	}
	return false
}

// Node is one mapping level of a configuration tree. Keys are unique within
// a node; insertion order is preserved for diagnostics only.
type Node struct {
	keys    []string
	entries map[string]Value
}

func NewNode() *Node {
	return &Node{entries: make(map[string]Value)}
}

// Set binds key to v. An existing key keeps its position.
func (n *Node) Set(key string, v Value) {
	if _, ok := n.entries[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.entries[key] = v
}

func (n *Node) Get(key string) (Value, bool) {
	v, ok := n.entries[key]
	return v, ok
}

// Keys returns the node's keys in insertion order.
func (n *Node) Keys() []string {
	keys := make([]string, len(n.keys))
	copy(keys, n.keys)
	return keys
}

func (n *Node) Len() int { return len(n.keys) }

// Lookup descends the tree along path and returns the value at its end.
func (n *Node) Lookup(path Path) (Value, bool) {
	if len(path) == 0 {
		return Value{}, false
	}
	cur := n
	for i, seg := range path {
		v, ok := cur.entries[seg]
		if !ok {
			return Value{}, false
		}
		if i == len(path)-1 {
			return v, true
		}
		if v.kind != KindMapping {
			return Value{}, false
		}
		cur = v.node
	}
	return Value{}, false
}

func (n *Node) clone() *Node {
	out := NewNode()
	for _, key := range n.keys {
		out.Set(key, n.entries[key].clone())
	}
	return out
}

func (n *Node) equal(other *Node) bool {
	if len(n.keys) != len(other.keys) {
		return false
	}
	for key, v := range n.entries {
		ov, ok := other.entries[key]
		if !ok || !v.equal(ov) {
			return false
		}
	}
	return true
}

// ToMap converts the tree into plain maps and slices, suitable for encoding.
func (n *Node) ToMap() map[string]interface{} {
	out := make(map[string]interface{}, len(n.keys))
	for _, key := range n.keys {
		out[key] = valueToInterface(n.entries[key])
	}
	return out
}

func valueToInterface(v Value) interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindInteger:
		return v.num
	case KindFloat:
		return v.flt
	case KindBool:
		return v.bln
	case KindSequence:
		items := make([]interface{}, len(v.seq))
		for i, item := range v.seq {
			items[i] = valueToInterface(item)
		}
		return items
	case KindMapping:
		return v.node.ToMap()
	}
	return nil
}
