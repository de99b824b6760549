package extension

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/id"
)

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// WithStrict makes LoadAll abort on the first failed extension instead
// of collecting per-extension errors.
func WithStrict(strict bool) LoaderOption {
	return func(ld *Loader) { ld.strict = strict }
}

// LoadResult reports the outcome of loading one extension directory.
type LoadResult struct {
	ID   id.ExtensionID
	Name string
	Dir  string

	// Skipped is set for extensions disabled in their manifest.
	Skipped bool

	// Err is the load failure, nil on success.
	Err error
}

// Loader discovers extension directories and runs their entrypoints.
// Each entrypoint runs at most once per process, even across multiple
// LoadAll calls.
type Loader struct {
	logger *slog.Logger
	strict bool

	mu     sync.Mutex
	loaded map[string]bool
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	ld := &Loader{
		logger: slog.Default(),
		loaded: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// LoadAll loads every extension subdirectory of dir in sorted order.
// One broken extension (bad manifest, missing entrypoint, entrypoint
// error or panic) is reported in its LoadResult and never prevents the
// others — unless the Loader is strict, in which case LoadAll returns
// on the first failure.
func (ld *Loader) LoadAll(ctx context.Context, dir string, apis APIFactory, caps hooks.Capabilities) ([]LoadResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading extensions dir %s: %v", hooks.ErrExtensionLoad, dir, err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)

	results := make([]LoadResult, 0, len(dirs))
	for _, name := range dirs {
		res := ld.loadOne(ctx, filepath.Join(dir, name), apis, caps)
		results = append(results, res)

		if res.Err != nil {
			ld.logger.Error("extension load failed",
				slog.String("dir", res.Dir),
				slog.String("extension", res.Name),
				slog.String("error", res.Err.Error()),
			)
			if ld.strict {
				return results, res.Err
			}
			continue
		}
		if res.Skipped {
			ld.logger.Debug("extension disabled", slog.String("extension", res.Name))
			continue
		}
		ld.logger.Info("extension loaded",
			slog.String("extension", res.Name),
			slog.String("id", res.ID.String()),
		)
	}

	return results, nil
}

func (ld *Loader) loadOne(ctx context.Context, dir string, apis APIFactory, caps hooks.Capabilities) LoadResult {
	res := LoadResult{Dir: dir}

	m, err := ReadManifest(dir)
	if err != nil {
		res.Err = err
		return res
	}
	res.Name = m.Name

	if !m.IsEnabled() {
		res.Skipped = true
		return res
	}

	ep, ok := lookupEntrypoint(m.Entrypoint)
	if !ok {
		res.Err = fmt.Errorf("%w: %q (extension %q)", hooks.ErrEntrypointMissing, m.Entrypoint, m.Name)
		return res
	}

	ld.mu.Lock()
	if ld.loaded[m.Entrypoint] {
		ld.mu.Unlock()
		res.Err = fmt.Errorf("%w: entrypoint %q", hooks.ErrExtensionLoaded, m.Entrypoint)
		return res
	}
	ld.loaded[m.Entrypoint] = true
	ld.mu.Unlock()

	res.ID = id.NewExtensionID()
	res.Err = ld.invoke(ctx, m, ep, apis(m.Name), caps)
	return res
}

// invoke runs an entrypoint, converting panics into load errors so a
// broken extension cannot crash the host.
func (ld *Loader) invoke(ctx context.Context, m *Manifest, ep Entrypoint, api RegistrationAPI, caps hooks.Capabilities) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ld.logger.Error("extension entrypoint panicked",
				slog.String("extension", m.Name),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("%w: panic in entrypoint %q: %v", hooks.ErrExtensionLoad, m.Entrypoint, r)
		}
	}()

	if err := ep(ctx, api, caps); err != nil {
		return fmt.Errorf("%w: entrypoint %q: %v", hooks.ErrExtensionLoad, m.Entrypoint, err)
	}
	return nil
}
