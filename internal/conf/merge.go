package conf

import "sort"

// Layer pairs a source with its loaded tree.
type Layer struct {
	Source Source
	Tree   *Node
}

// Merged is the single resolved tree produced by layering sources, together
// with a provenance map telling which source won each leaf.
type Merged struct {
	tree *Node
	// prov maps each leaf path to the name of the source whose value won.
	prov map[string]string
	// owner maps every path, mappings included, to the source that
	// established its kind. Used for conflict reporting and diagnostics.
	owner map[string]string
}

func (m *Merged) Tree() *Node { return m.tree }

// Origin reports the source that contributed the value at path.
func (m *Merged) Origin(path string) (string, bool) {
	if name, ok := m.prov[path]; ok {
		return name, true
	}
	name, ok := m.owner[path]
	return name, ok
}

// Provenance returns a copy of the leaf path → winning source map.
func (m *Merged) Provenance() map[string]string {
	out := make(map[string]string, len(m.prov))
	for path, name := range m.prov {
		out[path] = name
	}
	return out
}

// Merge layers the given trees in ascending rank order: later layers
// override earlier ones key by key. Mappings merge recursively; sequences
// are replaced wholesale, because a partially combined rule list (a lint
// "select", say) would mean something neither side wrote. A kind mismatch
// between two sources at one path fails with *TypeConflictError.
func Merge(layers []Layer) (*Merged, error) {
	ordered := make([]Layer, len(layers))
	copy(ordered, layers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Source.Rank < ordered[j].Source.Rank
	})

	m := &Merged{
		tree:  NewNode(),
		prov:  make(map[string]string),
		owner: make(map[string]string),
	}
	for _, layer := range ordered {
		if err := m.overlay(m.tree, layer.Tree, layer.Source.Name, nil); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Merged) overlay(dst, src *Node, name string, prefix Path) error {
	for _, key := range src.Keys() {
		sv, _ := src.Get(key)
		path := prefix.Child(key)
		ps := path.String()

		dv, exists := dst.Get(key)
		if !exists {
			dst.Set(key, sv.clone())
			m.claim(sv, name, path)
			continue
		}

		if dv.Kind() == KindMapping && sv.Kind() == KindMapping {
			// The kind owner stays with whoever introduced the mapping.
			if err := m.overlay(dv.Mapping(), sv.Mapping(), name, path); err != nil {
				return err
			}
			continue
		}
		if dv.Kind() != sv.Kind() {
			return &TypeConflictError{
				Path:    ps,
				SourceA: m.owner[ps],
				KindA:   dv.Kind(),
				SourceB: name,
				KindB:   sv.Kind(),
			}
		}

		dst.Set(key, sv.clone())
		m.owner[ps] = name
		m.prov[ps] = name
	}
	return nil
}

// claim records name as the owner of path and of every path beneath it.
func (m *Merged) claim(v Value, name string, path Path) {
	ps := path.String()
	m.owner[ps] = name
	if v.Kind() == KindMapping {
		node := v.Mapping()
		for _, key := range node.Keys() {
			child, _ := node.Get(key)
			m.claim(child, name, path.Child(key))
		}
		return
	}
	m.prov[ps] = name
}

// WalkLeaves visits every leaf of the merged tree depth-first in key order.
func (m *Merged) WalkLeaves(fn func(path Path, v Value)) {
	var walk func(n *Node, prefix Path)
	walk = func(n *Node, prefix Path) {
		for _, key := range n.Keys() {
			v, _ := n.Get(key)
			path := prefix.Child(key)
			if v.Kind() == KindMapping {
				walk(v.Mapping(), path)
				continue
			}
			fn(path, v)
		}
	}
	walk(m.tree, nil)
}
