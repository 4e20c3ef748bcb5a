package conf

import (
	"fmt"
	"strings"
)

// Rule is the validation contract for one dotted key path.
type Rule struct {
	// Kinds lists the accepted value kinds. Empty accepts any kind.
	Kinds []Kind
	// Required marks the key as mandatory in the merged configuration.
	// Ignored on wildcard paths.
	Required bool
	// Default, when non-nil, contributes to the registry's defaults source.
	Default *Value
	// AllowUnknown, on a mapping path, permits children with no rule of
	// their own. Unknown-key tolerance is always this explicit flag, never
	// the mere absence of validation.
	AllowUnknown bool
}

func (r Rule) describe() string {
	var parts []string
	if len(r.Kinds) == 0 {
		parts = append(parts, "any kind")
	} else {
		kinds := make([]string, len(r.Kinds))
		for i, k := range r.Kinds {
			kinds[i] = k.String()
		}
		parts = append(parts, strings.Join(kinds, "|"))
	}
	if r.Required {
		parts = append(parts, "required")
	}
	if r.AllowUnknown {
		parts = append(parts, "allow-unknown")
	}
	if r.Default != nil {
		parts = append(parts, "default "+r.Default.String())
	}
	return strings.Join(parts, ", ")
}

func (r Rule) equal(other Rule) bool {
	if r.Required != other.Required || r.AllowUnknown != other.AllowUnknown {
		return false
	}
	if len(r.Kinds) != len(other.Kinds) {
		return false
	}
	for i := range r.Kinds {
		if r.Kinds[i] != other.Kinds[i] {
			return false
		}
	}
	if (r.Default == nil) != (other.Default == nil) {
		return false
	}
	if r.Default != nil && !r.Default.equal(*other.Default) {
		return false
	}
	return true
}

// Registry holds the schema rules for a tool's configuration namespaces.
// It is an explicitly constructed object, never ambient process state, so
// independent resolutions cannot interfere with each other.
//
// Paths may contain "*" segments matching exactly one key, used for
// dynamically named children such as tool.ruff.lint.per-file-ignores.*.
// Registration order is preserved and drives the validation walk.
type Registry struct {
	order []string
	rules map[string]Rule
}

func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register adds a rule for path. Re-registering an identical rule is a
// no-op; a differing rule for an existing path fails with *SchemaConflict.
func (r *Registry) Register(path string, rule Rule) error {
	if existing, ok := r.rules[path]; ok {
		if existing.equal(rule) {
			return nil
		}
		return &SchemaConflict{Path: path, Existing: existing, Proposed: rule}
	}
	r.order = append(r.order, path)
	r.rules[path] = rule
	return nil
}

// MustRegister is Register for statically known rule sets.
func (r *Registry) MustRegister(path string, rule Rule) {
	if err := r.Register(path, rule); err != nil {
		panic(err)
	}
}

// Lookup returns the rule matching the dotted path: an exact rule if one
// exists, otherwise the first registered wildcard rule whose pattern
// matches. For keys that themselves contain dots (per-file-ignore globs,
// say) use LookupPath, which keeps segment boundaries intact.
func (r *Registry) Lookup(path string) (Rule, bool) {
	return r.LookupPath(ParsePath(path))
}

// LookupPath is Lookup over pre-split segments.
func (r *Registry) LookupPath(path Path) (Rule, bool) {
	if rule, ok := r.rules[path.String()]; ok {
		return rule, true
	}
	for _, pattern := range r.order {
		if !strings.Contains(pattern, "*") {
			continue
		}
		if matchPattern(ParsePath(pattern), path) {
			return r.rules[pattern], true
		}
	}
	return Rule{}, false
}

// index returns the registration position of an exact rule for path, used
// to order the validation walk. Returns false for unregistered paths.
func (r *Registry) index(path string) (int, bool) {
	if _, ok := r.rules[path]; !ok {
		return 0, false
	}
	for i, p := range r.order {
		if p == path {
			return i, true
		}
	}
	return 0, false
}

func matchPattern(pattern, path Path) bool {
	if len(pattern) != len(path) {
		return false
	}
	for i, seg := range pattern {
		if seg != "*" && seg != path[i] {
			return false
		}
	}
	return true
}

// DefaultsSource renders every non-wildcard rule default into a synthetic
// lowest-priority source, so schema defaults flow through the same merge
// and provenance machinery as any other layer.
func (r *Registry) DefaultsSource(rank int) Source {
	var lines []string
	for _, path := range r.order {
		rule := r.rules[path]
		if rule.Default == nil || strings.Contains(path, "*") {
			continue
		}
		if rule.Default.Kind() == KindMapping {
			// Mapping defaults have no TOML literal form; their children
			// carry their own rules and defaults.
			continue
		}
		segments := ParsePath(path)
		quoted := make([]string, len(segments))
		for i, seg := range segments {
			quoted[i] = fmt.Sprintf("%q", seg)
		}
		lines = append(lines, strings.Join(quoted, ".")+" = "+rule.Default.String())
	}
	return Source{Name: "defaults", Rank: rank, Text: strings.Join(lines, "\n")}
}
