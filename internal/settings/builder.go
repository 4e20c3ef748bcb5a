package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"dario.cat/mergo"
	"git.sr.ht/~spc/go-ini"
	"github.com/caarlos0/env/v11"
)

// builder accumulates settings layers in descending priority: the first
// layer added wins, and mergo only fills fields the earlier layers left
// empty.
type builder struct {
	layers []*Settings
	err    error
}

func newBuilder() *builder {
	return &builder{layers: make([]*Settings, 0, 4)}
}

func (b *builder) build() (*Settings, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occurred during building settings: %w", b.err)
	}

	resolved := new(Settings)
	for _, layer := range b.layers {
		if err := mergo.Merge(resolved, layer); err != nil {
			return nil, fmt.Errorf("error merging settings: %w", err)
		}
	}
	return resolved, nil
}

// withFlags layers values taken from command-line flags. Nil is allowed
// and contributes nothing.
func (b *builder) withFlags(flags *Settings) *builder {
	if flags != nil {
		b.layers = append(b.layers, flags)
	}
	return b
}

func (b *builder) withEnv() *builder {
	envSettings := &Settings{}
	if err := env.ParseWithOptions(envSettings, env.Options{Prefix: "CONFSTACK_"}); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	b.layers = append(b.layers, envSettings)
	return b
}

func (b *builder) withFile(path string) *builder {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			b.err = errors.Join(b.err, err)
		}
		return b
	}

	fileSettings := &Settings{}
	if err := ini.Unmarshal(normalizeINI(data), fileSettings); err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("failed to parse %s: %w", path, err))
		return b
	}
	b.layers = append(b.layers, fileSettings)
	return b
}

// normalizeINI rewrites property lines to the bare key=value form go-ini
// binds tags against; with spaces around the separator it drops the line
// without an error, which would silently lose file-configured settings.
func normalizeINI(data []byte) []byte {
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") ||
			strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "[") {
			lines[i] = trimmed
			continue
		}
		if key, value, ok := strings.Cut(trimmed, "="); ok {
			lines[i] = strings.TrimSpace(key) + "=" + strings.TrimSpace(value)
			continue
		}
		lines[i] = trimmed
	}
	return []byte(strings.Join(lines, "\n"))
}

func (b *builder) withDefaults() *builder {
	b.layers = append(b.layers, defaults())
	return b
}

// Load resolves the tool settings. flags carries values set explicitly on
// the command line and takes the highest priority; pass nil when running
// without flags. filePath overrides the default confstack.ini location
// when non-empty.
func Load(flags *Settings, filePath string) (*Settings, error) {
	if filePath == "" {
		filePath = DefaultFilePath()
	}
	return newBuilder().
		withFlags(flags).
		withEnv().
		withFile(filePath).
		withDefaults().
		build()
}
