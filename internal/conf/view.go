package conf

// View is the immutable, validated facade downstream tooling reads through.
// Consumers never see raw nodes or sources; accessors return the caller's
// default for anything absent and can never fail, because the tree was
// already validated when the view was built. A view is safe for unlimited
// concurrent reads; re-resolution produces a new view while holders of the
// old one keep observing their consistent snapshot.
type View struct {
	merged *Merged
}

// NewView wraps a merged configuration that passed validation. If any
// error-severity issue remains, construction fails with
// *InvalidConfigError carrying the full issue list.
func NewView(m *Merged, issues []Issue) (*View, error) {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return nil, &InvalidConfigError{Issues: issues}
		}
	}
	return &View{merged: m}, nil
}

// Get returns the value at path. The returned value is a copy; mutating
// structures reached through it cannot affect the view.
func (v *View) Get(path string) (Value, bool) {
	val, ok := v.merged.tree.Lookup(ParsePath(path))
	if !ok {
		return Value{}, false
	}
	return val.clone(), true
}

// Walk visits every resolved leaf in diagnostic order, with the name of
// the source that contributed it.
func (v *View) Walk(fn func(path string, val Value, origin string)) {
	v.merged.WalkLeaves(func(path Path, val Value) {
		origin, _ := v.merged.Origin(path.String())
		fn(path.String(), val, origin)
	})
}

// ToMap exports the resolved tree as plain maps and slices, e.g. for
// re-encoding.
func (v *View) ToMap() map[string]interface{} {
	return v.merged.tree.ToMap()
}

// Has reports whether path resolved to a value.
func (v *View) Has(path string) bool {
	_, ok := v.merged.tree.Lookup(ParsePath(path))
	return ok
}

// Origin reports which source the value at path came from.
func (v *View) Origin(path string) (string, bool) {
	return v.merged.Origin(path)
}

func (v *View) GetString(path, def string) string {
	if val, ok := v.merged.tree.Lookup(ParsePath(path)); ok {
		if s, ok := val.AsString(); ok {
			return s
		}
	}
	return def
}

func (v *View) GetInt(path string, def int64) int64 {
	if val, ok := v.merged.tree.Lookup(ParsePath(path)); ok {
		if i, ok := val.AsInt(); ok {
			return i
		}
	}
	return def
}

func (v *View) GetFloat(path string, def float64) float64 {
	if val, ok := v.merged.tree.Lookup(ParsePath(path)); ok {
		if f, ok := val.AsFloat(); ok {
			return f
		}
	}
	return def
}

func (v *View) GetBool(path string, def bool) bool {
	if val, ok := v.merged.tree.Lookup(ParsePath(path)); ok {
		if b, ok := val.AsBool(); ok {
			return b
		}
	}
	return def
}

// GetStringList returns the sequence at path when every element is a
// string, and def otherwise.
func (v *View) GetStringList(path string, def []string) []string {
	val, ok := v.merged.tree.Lookup(ParsePath(path))
	if !ok || val.Kind() != KindSequence {
		return def
	}
	items := val.Items()
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.AsString()
		if !ok {
			return def
		}
		out = append(out, s)
	}
	return out
}
