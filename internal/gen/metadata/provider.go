package metadata

import (
	"context"
	"go/token"
	"go/types"
)

// Unit represents one loaded Go package's compiled metadata, the Go
// analogue of spec.md's "compiled program metadata" input to C1. It plays
// the role loader.Package played in the teacher repository this generator
// is adapted from: a bundle of exactly what the host front-end can supply
// and nothing more.
type Unit struct {
	PackagePath string
	// Dir is the on-disk directory the unit's source files live in, used by
	// the generate command to write this package's generated files
	// alongside it instead of into one shared output directory. Empty when
	// the Unit was built from in-memory source (gentest.Unit) rather than a
	// real Provider.Load.
	Dir       string
	Fileset   *token.FileSet
	TypesInfo *types.Info
	TypesPkg  *types.Package

	// DeclaredTypeNames lists the package-level type names declared in this
	// unit in a fixed order (PackagesProvider sorts them by name;
	// gentest.Unit keeps source order), so extraction (C2) can walk them
	// deterministically instead of relying on map iteration order.
	DeclaredTypeNames []string
}

// Provider loads compiled Go package metadata. It is the thin seam between
// C1 and the host compiler front-end that spec.md §1 names as an external
// collaborator ("it supplies a read-only metadata API") and does not
// specify further; Nino-Go's only concrete Provider wraps
// golang.org/x/tools/go/packages (see gopackages.go).
type Provider interface {
	// Load resolves the given patterns (Go package import paths or
	// "./..."-style patterns) to metadata Units.
	Load(ctx context.Context, patterns ...string) ([]*Unit, error)
}

// TypeByName resolves name (a package-local identifier) in unit's package
// scope, or returns nil if not found.
func TypeByName(unit *Unit, name string) types.Object {
	if unit == nil || unit.TypesPkg == nil {
		return nil
	}
	return unit.TypesPkg.Scope().Lookup(name)
}
