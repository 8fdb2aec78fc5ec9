package mkiso

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

// Registry holds named adapter definitions read from TOML files. Each table
// of a file is one definition:
//
//	[xorriso]
//	command = "xorriso"
//	args = "-as mkisofs -r"
//	label = ["-V"]
//	output = ["-o"]
//
// Files are read in order on every lookup; a later file overrides entries of
// the same name from an earlier one. Missing files are skipped.
type Registry struct {
	sources []string
}

// NewRegistry returns a Registry backed by files.
func NewRegistry(files ...string) *Registry {
	log.Debugf("New adapter registry from files: %v", files)
	return &Registry{sources: files}
}

func (r *Registry) load(ctx context.Context) (map[string]Definition, error) {
	entries := make(map[string]Definition)

	for _, f := range r.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log.Debugf("Loading adapter registry file: %s", f)
		var fileEntries map[string]map[string]interface{}
		if _, err := toml.DecodeFile(f, &fileEntries); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("%w: failed to decode adapter registry file '%s': %v", ErrMalformedAdapter, f, err)
		}

		for name, raw := range fileEntries {
			def, err := DecodeDefinition(raw)
			if err != nil {
				return nil, fmt.Errorf("adapter '%s' in '%s': %w", name, f, err)
			}
			entries[name] = def
		}
	}

	return entries, nil
}

// List returns every definition in the registry by name.
func (r *Registry) List(ctx context.Context) (map[string]Definition, error) {
	entries, err := r.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load adapter registry: %w", err)
	}
	return entries, nil
}

// Names returns the sorted names of all registry entries.
func (r *Registry) Names(ctx context.Context) ([]string, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Resolve works like the package level Resolve, except that a bare name
// which is not bundled is looked up in the registry. Bundled names cannot
// be overridden.
func (r *Registry) Resolve(ctx context.Context, ref string) (Factory, error) {
	if ref == "" || IsPath(ref) || IsBundled(ref) {
		return Resolve(ctx, ref)
	}

	entries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	def, ok := entries[ref]
	if !ok {
		return nil, fmt.Errorf("%w: '%s' is neither bundled %v nor in the adapter registry", ErrAdapterNotFound, ref, Bundled())
	}
	return def.Factory()
}
