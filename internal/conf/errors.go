package conf

import "fmt"

// ParseError reports malformed syntax in a single source. The whole source is
// rejected; no partial tree is produced.
type ParseError struct {
	Source  string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Source, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// DuplicateKeyError reports a key defined twice at the same nesting level
// within one source. Redefinition is rejected instead of silently
// overwriting, so configuration drift surfaces at load time.
type DuplicateKeyError struct {
	Source string
	Key    string
	Line   int
}

func (e *DuplicateKeyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: key %q defined more than once", e.Source, e.Line, e.Key)
	}
	return fmt.Sprintf("%s: key %q defined more than once", e.Source, e.Key)
}

// SchemaConflict reports an attempt to register a rule that disagrees with
// the rule already registered for the same path.
type SchemaConflict struct {
	Path     string
	Existing Rule
	Proposed Rule
}

func (e *SchemaConflict) Error() string {
	return fmt.Sprintf("schema conflict at %q: existing rule (%s) does not match proposed rule (%s)",
		e.Path, e.Existing.describe(), e.Proposed.describe())
}

// TypeConflictError reports two sources that disagree on the kind of value
// at one path. The merge refuses to guess which side wins.
type TypeConflictError struct {
	Path    string
	SourceA string
	KindA   Kind
	SourceB string
	KindB   Kind
}

func (e *TypeConflictError) Error() string {
	return fmt.Sprintf("type conflict at %q: %s has %s, %s has %s",
		e.Path, e.SourceA, e.KindA, e.SourceB, e.KindB)
}

// InvalidConfigError is returned when a view is requested over a merged
// configuration that still has error-severity issues.
type InvalidConfigError struct {
	Issues []Issue
}

func (e *InvalidConfigError) Error() string {
	errs := 0
	for _, issue := range e.Issues {
		if issue.Severity == SeverityError {
			errs++
		}
	}
	return fmt.Sprintf("configuration has %d validation error(s)", errs)
}
