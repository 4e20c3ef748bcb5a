package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Source is one origin of configuration text. Sources are immutable once
// constructed; a changed file becomes a new Source on the next resolution.
//
// Rank orders sources for merging: lower ranks are overridden by higher
// ones. By convention built-in defaults sit at the bottom, project files and
// drop-ins in the middle, and the environment on top.
type Source struct {
	Name string
	// Path is set for file-backed sources and used to re-read them on
	// re-resolution. Literal and environment sources leave it empty.
	Path string
	Rank int
	Text string
}

// LiteralSource wraps in-memory configuration text, e.g. embedded defaults.
func LiteralSource(name, text string, rank int) Source {
	return Source{Name: name, Text: text, Rank: rank}
}

// FileSource reads path once and wraps its content.
func FileSource(path string, rank int) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Source{Name: path, Path: path, Rank: rank, Text: string(data)}, nil
}

// DropInSources collects *.toml files from dir in lexicographic order, each
// as its own source with ranks ascending from rank. A missing directory is
// not an error.
func DropInSources(dir string, rank int) ([]Source, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read drop-in directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".toml") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	sources := make([]Source, 0, len(paths))
	for i, path := range paths {
		src, err := FileSource(path, rank+i)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// EnvSource builds a source from environment variables carrying the given
// prefix. The remainder of the variable name maps to a key path: "__"
// separates path segments, "___" encodes a literal underscore within a
// segment, remaining single underscores become hyphens, and segments are
// lowercased. PREFIX_TOOL__RUFF__LINE_LENGTH addresses
// tool.ruff.line-length; PREFIX_TOOL__PYTEST__INI___OPTIONS addresses
// tool.pytest.ini_options. Values are read as TOML scalars or arrays where
// they parse as one, and as plain strings otherwise.
//
// Environment sources are conventionally given the highest rank: an operator
// export beats anything written in a file.
func EnvSource(prefix string, environ []string, rank int) Source {
	var lines []string
	for _, kv := range environ {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) || name == prefix {
			continue
		}
		rest := strings.TrimPrefix(name, prefix)
		// Escaped underscores are set aside before splitting so they
		// survive both the segment split and the hyphen mapping.
		rest = strings.ReplaceAll(rest, "___", "\x00")
		segments := strings.Split(rest, "__")
		quoted := make([]string, len(segments))
		for i, seg := range segments {
			seg = strings.ReplaceAll(strings.ToLower(seg), "_", "-")
			seg = strings.ReplaceAll(seg, "\x00", "_")
			quoted[i] = strconv.Quote(seg)
		}
		lines = append(lines, strings.Join(quoted, ".")+" = "+tomlLiteral(raw))
	}
	// Environment iteration order is unspecified; sort for determinism.
	sort.Strings(lines)
	return Source{Name: "environment", Rank: rank, Text: strings.Join(lines, "\n")}
}

// tomlLiteral returns raw unchanged when it already reads as a TOML value,
// and quoted as a string otherwise, so PREFIX_X=120 stays an integer while
// PREFIX_X=hello becomes "hello".
func tomlLiteral(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		var probe map[string]interface{}
		if _, err := toml.Decode("probe = "+trimmed, &probe); err == nil {
			return trimmed
		}
	}
	return strconv.Quote(raw)
}
