package mkiso

// Errors returned by this package are wrapped with context; use errors.Is
// to test for a kind.

import "errors"

var (
	// ErrMissingSource is returned by New when no source directory is given.
	ErrMissingSource = errors.New("missing required source directory")

	// ErrUnsupportedPlatform is returned when no adapter was configured and
	// the platform has no default one.
	ErrUnsupportedPlatform = errors.New("no adapter for platform")

	// ErrSourceNotFound is returned by Exec when the source does not exist.
	ErrSourceNotFound = errors.New("source does not exist")

	// ErrMalformedAdapter is returned when an adapter lacks a command or an
	// argument list, or a definition file cannot be decoded.
	ErrMalformedAdapter = errors.New("malformed adapter")

	// ErrCommandNotFound is returned when the adapter's command cannot be
	// found in the executable search path.
	ErrCommandNotFound = errors.New("command not found")

	// ErrAdapterNotFound is returned when a bundled name or a definition
	// path cannot be resolved.
	ErrAdapterNotFound = errors.New("adapter not found")

	// ErrSpawn is returned when the operating system refuses to start the
	// external tool.
	ErrSpawn = errors.New("failed to start command")
)
