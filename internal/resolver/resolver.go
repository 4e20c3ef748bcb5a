// Package resolver drives the conf pipeline: it loads every source, merges,
// validates, and builds the typed view, and can re-run the whole pipeline
// when a file-backed source changes on disk.
package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "git.sr.ht/~spc/go-log"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/confstack/confstack/internal/conf"
)

// debounceDelay coalesces the event bursts editors produce on save.
const debounceDelay = 250 * time.Millisecond

// Resolver re-runs the load/merge/validate pipeline over a fixed set of
// sources. File-backed sources are re-read from disk on every pass;
// everything else keeps its captured text.
type Resolver struct {
	registry   *conf.Registry
	sources    []conf.Source
	dropInDir  string
	dropInRank int
}

func New(registry *conf.Registry, sources []conf.Source) *Resolver {
	return &Resolver{registry: registry, sources: sources}
}

// WithDropIns re-enumerates dir on every pass and layers its *.toml files
// at ranks ascending from rank, so drop-ins added while watching are picked
// up without a restart.
func (r *Resolver) WithDropIns(dir string, rank int) *Resolver {
	r.dropInDir = dir
	r.dropInRank = rank
	return r
}

// Result is the outcome of one resolution pass.
type Result struct {
	// Pass is a unique ID correlating log lines of one pass.
	Pass   string
	View   *conf.View
	Issues []conf.Issue
	Err    error
}

// Resolve runs one full pass. A load or merge failure aborts the pass with
// no partial result; validation issues accumulate, and only error-severity
// issues prevent the view from materializing (the issues are still
// returned alongside the error so callers can render them).
func (r *Resolver) Resolve() (*conf.View, []conf.Issue, error) {
	pass := uuid.NewString()
	log.Debugf("resolution pass %s: %d sources", pass, len(r.sources))

	layers := make([]conf.Layer, 0, len(r.sources))
	for _, src := range r.sources {
		fresh := src
		if src.Path != "" {
			reread, err := conf.FileSource(src.Path, src.Rank)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					// A source that vanished between passes simply drops
					// out of the layering, same as a missing project file.
					log.Debugf("pass %s: source %s is gone, skipping", pass, src.Name)
					continue
				}
				return nil, nil, err
			}
			fresh = reread
		}

		tree, err := conf.Load(fresh)
		if err != nil {
			return nil, nil, err
		}
		layers = append(layers, conf.Layer{Source: fresh, Tree: tree})
	}

	if r.dropInDir != "" {
		dropIns, err := conf.DropInSources(r.dropInDir, r.dropInRank)
		if err != nil {
			return nil, nil, err
		}
		for _, src := range dropIns {
			tree, err := conf.Load(src)
			if err != nil {
				return nil, nil, err
			}
			layers = append(layers, conf.Layer{Source: src, Tree: tree})
		}
	}

	merged, err := conf.Merge(layers)
	if err != nil {
		return nil, nil, err
	}

	issues := conf.Validate(merged, r.registry)
	view, err := conf.NewView(merged, issues)
	if err != nil {
		return nil, issues, err
	}
	log.Debugf("pass %s: resolved, %d issue(s)", pass, len(issues))
	return view, issues, nil
}

// Watch re-resolves whenever a file-backed source changes and hands each
// Result to onChange, starting with one initial pass. Old views handed out
// earlier stay valid snapshots. Watch blocks until ctx is cancelled.
func (r *Resolver) Watch(ctx context.Context, onChange func(Result)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch directories, not files: editors replace files on save, which
	// drops a file-level watch.
	dirs := make(map[string]bool)
	paths := make(map[string]bool)
	for _, src := range r.sources {
		if src.Path == "" {
			continue
		}
		abs, err := filepath.Abs(src.Path)
		if err != nil {
			abs = src.Path
		}
		paths[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	if r.dropInDir != "" {
		if abs, err := filepath.Abs(r.dropInDir); err == nil {
			if _, statErr := os.Stat(abs); statErr == nil {
				dirs[abs] = true
			}
		}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	onChange(r.pass())

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if r.relevant(event, paths) {
				pending = time.After(debounceDelay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("watch error: %v", err)
		case <-pending:
			pending = nil
			onChange(r.pass())
		}
	}
}

func (r *Resolver) pass() Result {
	res := Result{Pass: uuid.NewString()}
	res.View, res.Issues, res.Err = r.Resolve()
	return res
}

func (r *Resolver) relevant(event fsnotify.Event, paths map[string]bool) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Rename) && !event.Op.Has(fsnotify.Remove) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		name = event.Name
	}
	// Any .toml appearing in a watched directory may be a new drop-in.
	return paths[name] || strings.HasSuffix(name, ".toml")
}
