package mkiso

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
)

// bundled maps adapter names to their constructors.
var bundled = map[string]Factory{
	"hdiutil":     Hdiutil,
	"mkisofs":     Mkisofs,
	"genisoimage": Genisoimage,
	"xorrisofs":   Xorrisofs,
}

// platformDefaults maps a GOOS value to the name of its default adapter.
var platformDefaults = map[string]string{
	"darwin": "hdiutil",
	"linux":  "mkisofs",
}

// Bundled returns the names of all adapters compiled into this package, in
// lexical order.
func Bundled() []string {
	names := make([]string, 0, len(bundled))
	for name := range bundled {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsBundled reports whether name is a bundled adapter.
func IsBundled(name string) bool {
	_, ok := bundled[name]
	return ok
}

// DefaultAdapterName returns the default adapter name for platform, a GOOS
// value.
func DefaultAdapterName(platform string) (string, bool) {
	name, ok := platformDefaults[platform]
	return name, ok
}

// IsPath reports whether ref refers to a definition file rather than a
// bundled adapter name. Anything with directory structure is a path.
func IsPath(ref string) bool {
	return ref != filepath.Base(ref)
}

// Resolve turns a bundled adapter name or the path of a definition file into
// a Factory.
func Resolve(ctx context.Context, ref string) (Factory, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty adapter reference", ErrAdapterNotFound)
	}

	if IsPath(ref) {
		def, err := LoadDefinition(ctx, ref)
		if err != nil {
			return nil, err
		}
		return def.Factory()
	}

	f, ok := bundled[ref]
	if !ok {
		return nil, fmt.Errorf("%w: no bundled adapter named '%s' (known: %v)", ErrAdapterNotFound, ref, Bundled())
	}
	return f, nil
}

// ResolvePlatform returns the default adapter Factory for platform.
func ResolvePlatform(ctx context.Context, platform string) (Factory, error) {
	name, ok := DefaultAdapterName(platform)
	if !ok {
		return nil, fmt.Errorf("%w \"%s\"", ErrUnsupportedPlatform, platform)
	}
	return Resolve(ctx, name)
}
