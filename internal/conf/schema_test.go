package conf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterIdempotent(t *testing.T) {
	r := NewRegistry()
	rule := Rule{Kinds: []Kind{KindInteger}, Required: true}

	require.NoError(t, r.Register("tool.ruff.line-length", rule))
	require.NoError(t, r.Register("tool.ruff.line-length", rule))

	got, ok := r.Lookup("tool.ruff.line-length")
	require.True(t, ok)
	assert.True(t, got.Required)
}

func TestRegistryRegisterConflict(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("tool.ruff.fix", Rule{Kinds: []Kind{KindBool}}))

	err := r.Register("tool.ruff.fix", Rule{Kinds: []Kind{KindString}})
	var conflict *SchemaConflict
	require.True(t, errors.As(err, &conflict), "expected *SchemaConflict, got %v", err)
	assert.Equal(t, "tool.ruff.fix", conflict.Path)
	assert.Contains(t, conflict.Error(), "boolean")
	assert.Contains(t, conflict.Error(), "string")
}

func TestRegistryLookupWildcard(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("tool.ruff.lint.per-file-ignores.*", Rule{Kinds: []Kind{KindSequence}}))

	rule, ok := r.Lookup("tool.ruff.lint.per-file-ignores.conftest")
	require.True(t, ok)
	assert.Equal(t, []Kind{KindSequence}, rule.Kinds)

	// Keys containing dots keep their segment boundary through LookupPath.
	rule, ok = r.LookupPath(Path{"tool", "ruff", "lint", "per-file-ignores", "tests/*.py"})
	require.True(t, ok)
	assert.Equal(t, []Kind{KindSequence}, rule.Kinds)

	// A wildcard matches exactly one segment.
	_, ok = r.Lookup("tool.ruff.lint.per-file-ignores")
	assert.False(t, ok)
	_, ok = r.Lookup("tool.ruff.lint")
	assert.False(t, ok)
}

func TestRegistryLookupPrefersExact(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("tool.*", Rule{Kinds: []Kind{KindMapping}, AllowUnknown: true}))
	require.NoError(t, r.Register("tool.ruff", Rule{Kinds: []Kind{KindMapping}}))

	rule, ok := r.Lookup("tool.ruff")
	require.True(t, ok)
	assert.False(t, rule.AllowUnknown, "exact rule must beat the wildcard")
}

func TestRegistryDefaultsSource(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("tool.ruff.line-length", Rule{
		Kinds:   []Kind{KindInteger},
		Default: ptr(IntValue(88)),
	}))
	require.NoError(t, r.Register("tool.ruff.lint.select", Rule{
		Kinds:   []Kind{KindSequence},
		Default: ptr(SeqValue([]Value{StringValue("E"), StringValue("F")})),
	}))
	// No literal form; must be skipped.
	require.NoError(t, r.Register("tool.ruff.lint.*", Rule{
		Kinds:   []Kind{KindSequence},
		Default: ptr(SeqValue(nil)),
	}))

	src := r.DefaultsSource(0)
	assert.Equal(t, "defaults", src.Name)

	node, err := Load(src)
	require.NoError(t, err)

	v, ok := node.Lookup(ParsePath("tool.ruff.line-length"))
	require.True(t, ok)
	i, _ := v.AsInt()
	assert.Equal(t, int64(88), i)

	v, ok = node.Lookup(ParsePath("tool.ruff.lint.select"))
	require.True(t, ok)
	assert.Equal(t, KindSequence, v.Kind())
}

func TestBuiltinRegistry(t *testing.T) {
	r := BuiltinRegistry()

	rule, ok := r.Lookup("tool.ruff.line-length")
	require.True(t, ok)
	assert.Equal(t, []Kind{KindInteger}, rule.Kinds)

	rule, ok = r.Lookup("tool.nbstripout")
	require.True(t, ok, "unknown tools must match the tool.* wildcard")
	assert.True(t, rule.AllowUnknown)
}
