package conf

func ptr(v Value) *Value { return &v }

// BuiltinRegistry declares the pyproject-style namespaces confstack ships
// rules for out of the box: the ruff linter/formatter tables, pytest, and
// the project/build-system metadata tables. Unrecognized tools under
// [tool.*] are tolerated by an explicit wildcard rule so that forward
// compatibility is a stated policy, not a validation gap.
func BuiltinRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister("project", Rule{Kinds: []Kind{KindMapping}, AllowUnknown: true})
	r.MustRegister("project.name", Rule{Kinds: []Kind{KindString}})
	r.MustRegister("project.version", Rule{Kinds: []Kind{KindString}})
	r.MustRegister("project.requires-python", Rule{Kinds: []Kind{KindString}})

	r.MustRegister("build-system", Rule{Kinds: []Kind{KindMapping}})
	r.MustRegister("build-system.requires", Rule{Kinds: []Kind{KindSequence}})
	r.MustRegister("build-system.build-backend", Rule{Kinds: []Kind{KindString}})

	r.MustRegister("tool", Rule{Kinds: []Kind{KindMapping}})

	r.MustRegister("tool.ruff", Rule{Kinds: []Kind{KindMapping}})
	r.MustRegister("tool.ruff.line-length", Rule{
		Kinds:   []Kind{KindInteger},
		Default: ptr(IntValue(88)),
	})
	r.MustRegister("tool.ruff.target-version", Rule{Kinds: []Kind{KindString}})
	r.MustRegister("tool.ruff.fix", Rule{Kinds: []Kind{KindBool}})
	r.MustRegister("tool.ruff.src", Rule{Kinds: []Kind{KindSequence}})
	r.MustRegister("tool.ruff.exclude", Rule{Kinds: []Kind{KindSequence}})

	r.MustRegister("tool.ruff.lint", Rule{Kinds: []Kind{KindMapping}})
	r.MustRegister("tool.ruff.lint.select", Rule{Kinds: []Kind{KindSequence}})
	r.MustRegister("tool.ruff.lint.extend-select", Rule{Kinds: []Kind{KindSequence}})
	r.MustRegister("tool.ruff.lint.ignore", Rule{Kinds: []Kind{KindSequence}})
	r.MustRegister("tool.ruff.lint.fixable", Rule{Kinds: []Kind{KindSequence}})
	r.MustRegister("tool.ruff.lint.unfixable", Rule{Kinds: []Kind{KindSequence}})
	r.MustRegister("tool.ruff.lint.per-file-ignores", Rule{Kinds: []Kind{KindMapping}})
	r.MustRegister("tool.ruff.lint.per-file-ignores.*", Rule{Kinds: []Kind{KindSequence}})

	r.MustRegister("tool.ruff.format", Rule{Kinds: []Kind{KindMapping}})
	r.MustRegister("tool.ruff.format.quote-style", Rule{
		Kinds:   []Kind{KindString},
		Default: ptr(StringValue("double")),
	})
	r.MustRegister("tool.ruff.format.indent-style", Rule{Kinds: []Kind{KindString}})
	r.MustRegister("tool.ruff.format.docstring-code-format", Rule{Kinds: []Kind{KindBool}})
	r.MustRegister("tool.ruff.format.skip-magic-trailing-comma", Rule{Kinds: []Kind{KindBool}})

	r.MustRegister("tool.pytest", Rule{Kinds: []Kind{KindMapping}})
	r.MustRegister("tool.pytest.ini_options", Rule{Kinds: []Kind{KindMapping}, AllowUnknown: true})

	// Tools without dedicated rules are accepted wholesale.
	r.MustRegister("tool.*", Rule{Kinds: []Kind{KindMapping}, AllowUnknown: true})

	return r
}
