// Package gentest provides shared type-checking fixtures for the nino
// pipeline's unit tests (metadata, extract, graph, emit). It type-checks a
// small Go source string against a synthetic ninoapi package, standing in
// for a real golang.org/x/tools/go/packages load so tests stay hermetic and
// fast, the way the teacher's internal/fix tests build a *types.Info
// directly via go/types rather than shelling out to a build system.
package gentest

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"

	"github.com/nino-lang/nino-go/internal/gen/metadata"
)

const ninoapiPackagePath = "github.com/nino-lang/nino-go/ninoapi"

// ninoapiPackage builds a synthetic *types.Package for ninoapi containing
// just enough of its real surface (Tag, Tagged) for extraction tests to
// exercise struct-tag and marker-interface based inheritance without
// depending on the real ninoapi package being resolvable by an importer.
func ninoapiPackage() *types.Package {
	pkg := types.NewPackage(ninoapiPackagePath, "ninoapi")

	tagNamed := types.NewNamed(types.NewTypeName(token.NoPos, pkg, "Tag", nil), types.NewStruct(nil, nil), nil)

	sig := types.NewSignatureType(nil, nil, nil, nil, nil, false)
	taggedMethod := types.NewFunc(token.NoPos, pkg, "ninoTagged", sig)
	taggedIface := types.NewInterfaceType([]*types.Func{taggedMethod}, nil)
	taggedIface.Complete()
	taggedNamed := types.NewNamed(types.NewTypeName(token.NoPos, pkg, "Tagged", nil), taggedIface, nil)

	// Tag implements Tagged via a value-receiver ninoTagged() method, same
	// shape as the real ninoapi.Tag.
	tagMethod := types.NewFunc(token.NoPos, pkg, "ninoTagged", sig)
	tagNamed.AddMethod(tagMethod)

	scope := pkg.Scope()
	scope.Insert(tagNamed.Obj())
	scope.Insert(taggedNamed.Obj())
	pkg.MarkComplete()
	return pkg
}

// fixtureImporter resolves ninoapi to the synthetic package above and
// delegates everything else to go/importer's source importer.
type fixtureImporter struct {
	ninoapi *types.Package
	fall    types.Importer
}

func newFixtureImporter() *fixtureImporter {
	return &fixtureImporter{ninoapi: ninoapiPackage(), fall: importer.Default()}
}

func (f *fixtureImporter) Import(path string) (*types.Package, error) {
	if path == ninoapiPackagePath {
		return f.ninoapi, nil
	}
	return f.fall.Import(path)
}

// Unit type-checks src (a complete Go source file body, package clause
// included) under package path pkgPath and returns a metadata.Unit ready
// to feed into extract.Extract, exactly like a real metadata.Provider
// would.
func Unit(pkgPath, src string) (*metadata.Unit, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, pkgPath+"/fixture.go", src, 0)
	if err != nil {
		return nil, fmt.Errorf("gentest: parse: %w", err)
	}

	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	conf := types.Config{Importer: newFixtureImporter()}
	pkg, err := conf.Check(pkgPath, fset, []*ast.File{f}, info)
	if err != nil {
		return nil, fmt.Errorf("gentest: type-check: %w", err)
	}

	var names []string
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range gd.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok {
				names = append(names, ts.Name.Name)
			}
		}
	}

	return &metadata.Unit{
		PackagePath:       pkgPath,
		Fileset:           fset,
		TypesInfo:         info,
		TypesPkg:          pkg,
		DeclaredTypeNames: names,
	}, nil
}
