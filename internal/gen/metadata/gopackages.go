package metadata

import (
	"context"
	"fmt"
	"go/ast"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/golang/glog"
	"golang.org/x/tools/go/packages"
)

// PackagesProvider is a Provider backed by golang.org/x/tools/go/packages,
// grounded directly on the teacher's BlazeLoader (internal/o2o/loader):
// same packages.Config shape, same policy of failing the whole
// batch on a package-level load error rather than returning partial,
// silently-broken results.
type PackagesProvider struct {
	// Dir is the working directory go/packages resolves patterns relative
	// to; empty means the process's current directory.
	Dir string

	// Tests, when true, also loads the synthesized test variants of the
	// requested packages (mirrors packages.Config.Tests).
	Tests bool
}

// Load implements Provider.
func (p *PackagesProvider) Load(ctx context.Context, patterns ...string) ([]*Unit, error) {
	cfg := &packages.Config{
		Dir:     p.Dir,
		Context: ctx,
		Mode: packages.NeedName | packages.NeedSyntax | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedDeps | packages.NeedFiles,
		Tests: p.Tests,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("metadata: go/packages load failed: %w", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, fmt.Errorf("metadata: one or more packages failed to type-check")
	}

	var units []*Unit
	for _, pkg := range pkgs {
		if strings.HasSuffix(pkg.ID, ".test") {
			// go/packages synthesizes a "pkg [pkg.test]" variant when
			// Tests is set; skip it the same way the teacher's
			// BlazeLoader does, to avoid double-processing every type.
			continue
		}
		if pkg.Types == nil || pkg.TypesInfo == nil {
			log.Warningf("metadata: skipping package %s: missing type information", pkg.ID)
			continue
		}

		var names []string
		for _, f := range pkg.Syntax {
			for _, decl := range f.Decls {
				gd, ok := decl.(*ast.GenDecl)
				if !ok {
					continue
				}
				for _, spec := range gd.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}
					names = append(names, ts.Name.Name)
				}
			}
		}
		sort.Strings(names)

		var dir string
		if len(pkg.GoFiles) > 0 {
			dir = filepath.Dir(pkg.GoFiles[0])
		}

		units = append(units, &Unit{
			PackagePath:       pkg.PkgPath,
			Dir:               dir,
			Fileset:           pkg.Fset,
			TypesInfo:         pkg.TypesInfo,
			TypesPkg:          pkg.Types,
			DeclaredTypeNames: names,
		})
	}
	return units, nil
}
