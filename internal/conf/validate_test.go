package conf

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMerge(t *testing.T, layers ...Layer) *Merged {
	t.Helper()
	merged, err := Merge(layers)
	require.NoError(t, err)
	return merged
}

func TestValidateCleanConfig(t *testing.T) {
	merged := mustMerge(t, mustLayer(t, "project", `
[tool.ruff]
line-length = 120
fix = true

[tool.ruff.lint]
select = ["E", "F"]
`, 0))

	issues := Validate(merged, BuiltinRegistry())
	assert.Empty(t, issues)
}

func TestValidateUnknownKeyWarns(t *testing.T) {
	merged := mustMerge(t, mustLayer(t, "project", `
[tool.ruff]
lien-length = 120
`, 0))

	issues := Validate(merged, BuiltinRegistry())
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Equal(t, "tool.ruff.lien-length", issues[0].Path)
	assert.Equal(t, "project", issues[0].Source)
}

func TestValidateKindMismatchErrors(t *testing.T) {
	merged := mustMerge(t, mustLayer(t, "project", `
[tool.ruff]
line-length = "eighty-eight"
`, 0))

	issues := Validate(merged, BuiltinRegistry())
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Equal(t, "tool.ruff.line-length", issues[0].Path)
	assert.Contains(t, issues[0].Message, "expected integer, got string")
	assert.Equal(t, "project", issues[0].Source)
}

// TestValidateMissingRequired: a schema requiring tool.ruff.line-length
// against a merge that omits it yields exactly one error referencing that
// path.
func TestValidateMissingRequired(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("tool", Rule{Kinds: []Kind{KindMapping}}))
	require.NoError(t, registry.Register("tool.ruff", Rule{Kinds: []Kind{KindMapping}}))
	require.NoError(t, registry.Register("tool.ruff.line-length", Rule{
		Kinds:    []Kind{KindInteger},
		Required: true,
	}))

	merged := mustMerge(t, mustLayer(t, "project", `
[tool.ruff]
`, 0))

	issues := Validate(merged, registry)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Equal(t, "tool.ruff.line-length", issues[0].Path)
	assert.Equal(t, "required key is missing", issues[0].Message)
	assert.Empty(t, issues[0].Source)
}

// TestValidateAccumulates: every finding is reported in one pass, the way
// lint tooling reports all violations at once.
func TestValidateAccumulates(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("tool", Rule{Kinds: []Kind{KindMapping}}))
	require.NoError(t, registry.Register("tool.ruff", Rule{Kinds: []Kind{KindMapping}}))
	require.NoError(t, registry.Register("tool.ruff.line-length", Rule{Kinds: []Kind{KindInteger}}))
	require.NoError(t, registry.Register("tool.ruff.fix", Rule{Kinds: []Kind{KindBool}, Required: true}))

	merged := mustMerge(t, mustLayer(t, "project", `
[tool.ruff]
line-length = "wide"
mystery = 1
`, 0))

	issues := Validate(merged, registry)
	require.Len(t, issues, 3)

	var errs, warnings int
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			errs++
		} else {
			warnings++
		}
	}
	assert.Equal(t, 2, errs, "kind mismatch and missing required")
	assert.Equal(t, 1, warnings, "unknown key")
}

func TestValidateAllowUnknown(t *testing.T) {
	merged := mustMerge(t, mustLayer(t, "project", `
[tool.pytest.ini_options]
addopts = "-ra"
testpaths = ["tests"]

[tool.nbstripout]
keep-count = true
`, 0))

	issues := Validate(merged, BuiltinRegistry())
	assert.Empty(t, issues, "explicitly tolerated subtrees must not warn")
}

// TestValidateWalkOrder: registered keys come first in registration order,
// unregistered ones after, in document order.
func TestValidateWalkOrder(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("alpha", Rule{Kinds: []Kind{KindBool}}))
	require.NoError(t, registry.Register("omega", Rule{Kinds: []Kind{KindBool}}))

	merged := mustMerge(t, mustLayer(t, "project", `
zulu = 1
omega = "late"
alpha = "early"
yankee = 2
`, 0))

	issues := Validate(merged, registry)
	var paths []string
	for _, issue := range issues {
		paths = append(paths, issue.Path)
	}
	want := []string{"alpha", "omega", "zulu", "yankee"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("walk order mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateDoesNotMutate(t *testing.T) {
	merged := mustMerge(t, mustLayer(t, "project", `
[tool.ruff]
line-length = "bad"
unknown = 1
`, 0))

	before := merged.Tree().ToMap()
	Validate(merged, BuiltinRegistry())
	after := merged.Tree().ToMap()

	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("Validate mutated the merged tree (-before +after):\n%s", diff)
	}
}

func TestIssueString(t *testing.T) {
	withSource := Issue{
		Severity: SeverityWarning,
		Path:     "tool.ruff.bogus",
		Message:  "unknown key",
		Source:   "pyproject.toml",
	}
	assert.Equal(t, "warning: tool.ruff.bogus: unknown key (from pyproject.toml)", withSource.String())

	withoutSource := Issue{
		Severity: SeverityError,
		Path:     "tool.ruff.line-length",
		Message:  "required key is missing",
	}
	assert.Equal(t, "error: tool.ruff.line-length: required key is missing", withoutSource.String())
}

func TestRenderIssues(t *testing.T) {
	issues := []Issue{
		{Severity: SeverityError, Path: "a", Message: "broken", Source: "s1"},
		{Severity: SeverityWarning, Path: "b", Message: "odd", Source: "s2"},
	}

	var buf bytes.Buffer
	RenderIssues(&buf, issues, false)

	want := "error: a: broken (from s1)\nwarning: b: odd (from s2)\n"
	assert.Equal(t, want, buf.String())
}
