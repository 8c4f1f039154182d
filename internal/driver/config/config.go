// Package config holds the compile-time switches threaded from the nino
// command's generate flags (internal/driver/generate) down to the emit driver (spec.md §6 "Compile-time switches"),
// grounded on the teacher's own flag.FlagSet-based internal/apiflagdata
// pattern.
package config

import "flag"

// Options is the set of generation-wide switches spec.md §6 and §9 name.
type Options struct {
	// WeakVersionTolerance enables framed managed-member writes and
	// skip-on-eof reads (spec.md §6 "WEAK_VERSION_TOLERANCE").
	WeakVersionTolerance bool

	// HostGameRuntime adds the additional auto-init hook that fires on
	// scene load, set when the analyzed module depends on the well-known
	// game-engine packages (spec.md §6 "Host-game-runtime flag").
	HostGameRuntime bool

	// MaxBulkRun bounds how many adjacent unmanaged members are grouped
	// into one bulk unsafe write (spec.md §4.4.1, §9 "Per-type grouping of
	// 16 unmanaged members"). Defaults to ninowire.DefaultMaxBulkRun.
	MaxBulkRun int
}

// Default returns the zero-config Options: no weak-version-tolerance, not a
// game runtime, and the runtime's default bulk-run width.
func Default() Options {
	return Options{MaxBulkRun: 16}
}

// RegisterFlags installs fs flags backing o, in the style of the teacher's
// subcommand SetFlags methods (each subcommand owns and registers its own
// flag.FlagSet rather than relying on package-level flags).
func (o *Options) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&o.WeakVersionTolerance, "weak_version_tolerance", false,
		"frame managed member writes so older/newer schema versions can skip unknown members")
	fs.BoolVar(&o.HostGameRuntime, "host_game_runtime", false,
		"emit an additional auto-init hook that fires on scene load")
	fs.IntVar(&o.MaxBulkRun, "max_bulk_run", 16,
		"maximum number of adjacent unmanaged members grouped into one bulk write")
}
