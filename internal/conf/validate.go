package conf

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// Severity grades a validation finding. Warnings are surfaced for
// visibility; errors block view construction.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is one finding from validating a merged configuration.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
	// Source names the origin of the offending value. Empty for findings
	// with no originating source, such as a missing required key.
	Source string
}

func (i Issue) String() string {
	if i.Source == "" {
		return fmt.Sprintf("%s: %s: %s", i.Severity, i.Path, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s (from %s)", i.Severity, i.Path, i.Message, i.Source)
}

// Validate checks the merged tree against the registry and returns every
// finding in one pass; it never fails and never short-circuits, so a single
// run reports everything wrong. The walk is depth-first; within a node,
// keys with registered rules come first in registration order, the rest in
// document order. Missing required keys are reported after the walk, in
// registration order.
//
// Validate does not mutate the merged configuration.
func Validate(m *Merged, reg *Registry) []Issue {
	v := &validator{merged: m, registry: reg}
	v.walk(m.tree, nil, false)
	v.missingRequired()
	return v.issues
}

type validator struct {
	merged   *Merged
	registry *Registry
	issues   []Issue
}

func (v *validator) walk(n *Node, prefix Path, tolerated bool) {
	for _, key := range v.orderedKeys(n, prefix) {
		val, _ := n.Get(key)
		path := prefix.Child(key)
		ps := path.String()
		rule, known := v.registry.LookupPath(path)

		if known && len(rule.Kinds) > 0 && !kindAccepted(rule.Kinds, val.Kind()) {
			v.report(SeverityError, ps, fmt.Sprintf("expected %s, got %s",
				kindList(rule.Kinds), val.Kind()))
			// Descending into a value of the wrong shape would only
			// cascade noise from the one real finding.
			continue
		}

		if val.Kind() == KindMapping {
			childTolerated := tolerated
			if known {
				childTolerated = rule.AllowUnknown
			}
			v.walk(val.Mapping(), path, childTolerated)
			continue
		}

		if !known && !tolerated {
			v.report(SeverityWarning, ps, "unknown key")
		}
	}
}

func (v *validator) missingRequired() {
	for _, path := range v.registry.order {
		rule := v.registry.rules[path]
		if !rule.Required || strings.Contains(path, "*") {
			continue
		}
		if _, ok := v.merged.tree.Lookup(ParsePath(path)); !ok {
			v.issues = append(v.issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "required key is missing",
			})
		}
	}
}

func (v *validator) report(sev Severity, path, message string) {
	origin, _ := v.merged.Origin(path)
	v.issues = append(v.issues, Issue{
		Severity: sev,
		Path:     path,
		Message:  message,
		Source:   origin,
	})
}

// orderedKeys sorts a node's keys for the validation walk: registered keys
// first, by registration order, then the remainder in document order.
func (v *validator) orderedKeys(n *Node, prefix Path) []string {
	keys := n.Keys()
	position := make(map[string]int, len(keys))
	for i, key := range keys {
		position[key] = i
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ri, iok := v.registry.index(prefix.Child(keys[i]).String())
		rj, jok := v.registry.index(prefix.Child(keys[j]).String())
		if iok && jok {
			return ri < rj
		}
		if iok != jok {
			return iok
		}
		return position[keys[i]] < position[keys[j]]
	})
	return keys
}

func kindAccepted(kinds []Kind, k Kind) bool {
	for _, accepted := range kinds {
		if accepted == k {
			return true
		}
	}
	return false
}

func kindList(kinds []Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, " or ")
}

// RenderIssues writes one line per issue. With colorize set, severities are
// tinted the way lint tools do: errors red, warnings yellow.
func RenderIssues(w io.Writer, issues []Issue, colorize bool) {
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	for _, issue := range issues {
		line := issue.String()
		if colorize {
			switch issue.Severity {
			case SeverityError:
				line = strings.Replace(line, "error:", red("error")+":", 1)
			case SeverityWarning:
				line = strings.Replace(line, "warning:", yellow("warning")+":", 1)
			}
		}
		fmt.Fprintln(w, line)
	}
}
