package conf

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustLayer(t *testing.T, name, text string, rank int) Layer {
	t.Helper()
	src := LiteralSource(name, text, rank)
	tree, err := Load(src)
	if err != nil {
		t.Fatalf("failed to load %s: %v", name, err)
	}
	return Layer{Source: src, Tree: tree}
}

// TestMergeOverride is the canonical layering scenario: the higher-priority
// source wins key by key, and keys only it defines are added.
func TestMergeOverride(t *testing.T) {
	a := mustLayer(t, "defaults", `
[tool.ruff]
line-length = 88
`, 0)
	b := mustLayer(t, "project", `
[tool.ruff]
line-length = 120

[tool.ruff.lint]
select = ["E", "F"]
`, 1)

	merged, err := Merge([]Layer{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := map[string]interface{}{
		"tool": map[string]interface{}{
			"ruff": map[string]interface{}{
				"line-length": int64(120),
				"lint": map[string]interface{}{
					"select": []interface{}{"E", "F"},
				},
			},
		},
	}
	if diff := cmp.Diff(expected, merged.Tree().ToMap()); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

// TestMergeKeepsNonOverriddenKeys checks that a higher-priority source only
// touches the keys it actually defines.
func TestMergeKeepsNonOverriddenKeys(t *testing.T) {
	a := mustLayer(t, "base", `
[tool.ruff]
line-length = 88
target-version = "py311"
fix = true
`, 0)
	b := mustLayer(t, "override", `
[tool.ruff]
line-length = 100
`, 1)

	merged, err := Merge([]Layer{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := map[string]interface{}{
		"tool": map[string]interface{}{
			"ruff": map[string]interface{}{
				"line-length":    int64(100),
				"target-version": "py311",
				"fix":            true,
			},
		},
	}
	if diff := cmp.Diff(expected, merged.Tree().ToMap()); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

// TestMergeSelfIsIdempotent: merging a source with itself yields the same
// tree as loading it once.
func TestMergeSelfIsIdempotent(t *testing.T) {
	text := `
[tool.ruff]
line-length = 88

[tool.ruff.lint]
select = ["E", "F", "W"]
`
	a := mustLayer(t, "a", text, 0)
	again := mustLayer(t, "a", text, 1)

	merged, err := Merge([]Layer{a, again})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(a.Tree.ToMap(), merged.Tree().ToMap()); diff != "" {
		t.Errorf("merge with self changed the tree (-want +got):\n%s", diff)
	}
}

// TestMergeSequenceReplacedWholesale: sequences are ordered rule lists;
// element-wise union would mean something neither side wrote.
func TestMergeSequenceReplacedWholesale(t *testing.T) {
	a := mustLayer(t, "base", `select = ["E", "F", "W", "I"]`, 0)
	b := mustLayer(t, "override", `select = ["E"]`, 1)

	merged, err := Merge([]Layer{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := map[string]interface{}{
		"select": []interface{}{"E"},
	}
	if diff := cmp.Diff(expected, merged.Tree().ToMap()); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeTypeConflict(t *testing.T) {
	a := mustLayer(t, "base", `
[tool.ruff]
fix = true
`, 0)
	b := mustLayer(t, "override", `
[tool.ruff]
fix = "yes"
`, 1)

	merged, err := Merge([]Layer{a, b})
	if merged != nil {
		t.Error("expected no partial merge on type conflict")
	}

	var conflict *TypeConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *TypeConflictError, got %T: %v", err, err)
	}
	if conflict.Path != "tool.ruff.fix" {
		t.Errorf("expected path tool.ruff.fix, got %q", conflict.Path)
	}
	if conflict.SourceA != "base" || conflict.SourceB != "override" {
		t.Errorf("expected conflict between base and override, got %q and %q",
			conflict.SourceA, conflict.SourceB)
	}
	if conflict.KindA != KindBool || conflict.KindB != KindString {
		t.Errorf("expected boolean vs string, got %s vs %s", conflict.KindA, conflict.KindB)
	}
}

func TestMergeMappingVsScalarConflict(t *testing.T) {
	a := mustLayer(t, "base", `
[tool.ruff.lint]
select = ["E"]
`, 0)
	b := mustLayer(t, "override", `
[tool.ruff]
lint = "strict"
`, 1)

	_, err := Merge([]Layer{a, b})
	var conflict *TypeConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *TypeConflictError, got %T: %v", err, err)
	}
	if conflict.Path != "tool.ruff.lint" {
		t.Errorf("expected path tool.ruff.lint, got %q", conflict.Path)
	}
}

func TestMergeProvenance(t *testing.T) {
	a := mustLayer(t, "defaults", `
[tool.ruff]
line-length = 88
fix = true
`, 0)
	b := mustLayer(t, "project", `
[tool.ruff]
line-length = 120
`, 1)

	merged, err := Merge([]Layer{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := map[string]string{
		"tool.ruff.line-length": "project",
		"tool.ruff.fix":         "defaults",
	}
	if diff := cmp.Diff(expected, merged.Provenance()); diff != "" {
		t.Errorf("provenance mismatch (-want +got):\n%s", diff)
	}

	origin, ok := merged.Origin("tool.ruff.line-length")
	if !ok || origin != "project" {
		t.Errorf("expected origin project, got %q (ok=%v)", origin, ok)
	}
}

// TestMergeSortsByRank: layers are combined by rank, not by argument order.
func TestMergeSortsByRank(t *testing.T) {
	high := mustLayer(t, "high", `line-length = 120`, 5)
	low := mustLayer(t, "low", `line-length = 88`, 1)

	merged, err := Merge([]Layer{high, low})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := merged.Tree().Lookup(ParsePath("line-length"))
	if !ok {
		t.Fatal("line-length missing from merged tree")
	}
	if i, _ := v.AsInt(); i != 120 {
		t.Errorf("expected rank 5 to win with 120, got %d", i)
	}
}

// TestMergeDoesNotAliasInput: mutating the merged tree's source layers must
// not leak into the merged result.
func TestMergeDoesNotAliasInput(t *testing.T) {
	a := mustLayer(t, "a", `
[tool]
name = "ruff"
`, 0)
	merged, err := Merge([]Layer{a})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	toolVal, _ := a.Tree.Get("tool")
	toolVal.Mapping().Set("name", StringValue("mutated"))

	got := merged.Tree().ToMap()
	name := got["tool"].(map[string]interface{})["name"]
	if name != "ruff" {
		t.Errorf("merged tree aliases its input: got %v", name)
	}
}
