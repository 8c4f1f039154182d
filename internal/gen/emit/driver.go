package emit

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nino-lang/nino-go/internal/driver/config"
	"github.com/nino-lang/nino-go/internal/driver/syncset"
	"github.com/nino-lang/nino-go/internal/gen/diag"
	"github.com/nino-lang/nino-go/internal/gen/emit/render"
	"github.com/nino-lang/nino-go/internal/gen/graph"
	"github.com/nino-lang/nino-go/internal/gen/metadata"
)

// GeneratedFile is one emitted artifact: its on-disk name (relative to the
// directory of the Go package it belongs to), its formatted Go source, and
// the import path of that package, so a multi-package run can route each
// file to the right directory instead of writing everything into one shared
// output location under a single fake package name.
type GeneratedFile struct {
	Name        string
	Src         []byte
	PackagePath string
}

// Driver implements C4.6 (spec.md §4.4.3, §5): it runs C4 and C5 across
// every NinoType in a finished graph, plus every distinct structural-builtin
// shape any NinoType's members reference, with errgroup-bounded parallelism.
// This mirrors the teacher's rewrite.go fixPackageBatch, which fans a batch
// of independent packages out across --parallel_jobs goroutines and collects
// results positionally rather than as they complete.
type Driver struct {
	Emitter  *Emitter
	Parallel int
}

// NewDriver returns a Driver bound to g, opts, and diags, capped at
// parallel concurrent emissions (parallel <= 0 means sequential).
func NewDriver(g *graph.NinoGraph, opts config.Options, diags *diag.Collector, parallel int) *Driver {
	if parallel <= 0 {
		parallel = 1
	}
	return &Driver{Emitter: New(g, opts, diags), Parallel: parallel}
}

// Run emits one file per NinoType, one file per distinct builtin shape
// reachable from any NinoType's members, and a final init file registering
// every emitted type with ninowire.Default. A per-type emission error is
// captured as a comment-only diagnostic artifact instead of aborting the
// whole batch (spec.md §7: emission failures are per-node, not fatal to the
// run), the same failure-isolation shape as fixPackageBatch recovering one
// package's fix pass without losing the rest of the batch.
//
// Every input type keeps its own declaring package's name and import path
// (nt.Type.Namespace/PackageName), since generated code must live alongside
// the user's own declaration to get unexported-member access; a batch
// spanning several packages therefore groups its output per package, each
// with its own builtin-shape files and its own nino_init.go, rather than
// writing one flat directory of files under a single fake package name.
func (d *Driver) Run(ctx context.Context) ([]GeneratedFile, error) {
	ids := make([]uint32, 0, len(d.Emitter.Graph.Types))
	for id := range d.Emitter.Graph.Types {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	userFiles := make([]GeneratedFile, len(ids))
	registerNames := make([]string, len(ids))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(d.Parallel)
	for i, id := range ids {
		i, id := i, id
		eg.Go(func() (err error) {
			if err := egCtx.Err(); err != nil {
				return err
			}
			nt := d.Emitter.Graph.Types[id]
			loc := diag.Location{Package: nt.Type.Namespace, Type: nt.Type.SimpleName}
			defer func() {
				if r := recover(); r != nil {
					d.Emitter.Diags.EmissionFailure(loc, "panic during emission: %v", r)
					userFiles[i] = failureArtifact(nt.Type.Namespace, nt.Type.SimpleName, fmt.Sprintf("%v", r))
				}
			}()

			src, emitErr := d.Emitter.EmitUserType(nt)
			if emitErr != nil {
				d.Emitter.Diags.EmissionFailure(loc, "%v", emitErr)
				userFiles[i] = failureArtifact(nt.Type.Namespace, nt.Type.SimpleName, emitErr.Error())
				return nil
			}
			userFiles[i] = GeneratedFile{Name: nt.Type.SimpleName + "_nino.go", Src: src, PackagePath: nt.Type.Namespace}
			registerNames[i] = exportedName(nt.Type)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var pkgOrder []string
	idsByPkg := map[string][]uint32{}
	pkgNameByPath := map[string]string{}
	for _, id := range ids {
		nt := d.Emitter.Graph.Types[id]
		pkg := nt.Type.Namespace
		if _, ok := idsByPkg[pkg]; !ok {
			pkgOrder = append(pkgOrder, pkg)
			pkgNameByPath[pkg] = packageClause(nt.Type)
		}
		idsByPkg[pkg] = append(idsByPkg[pkg], id)
	}
	sort.Strings(pkgOrder)

	files := make([]GeneratedFile, 0, len(userFiles)+len(ids)+len(pkgOrder))
	files = append(files, userFiles...)

	idxByID := make(map[uint32]int, len(ids))
	for i, id := range ids {
		idxByID[id] = i
	}

	for _, pkg := range pkgOrder {
		pkgIDs := idsByPkg[pkg]
		pkgName := pkgNameByPath[pkg]

		files = append(files, d.emitBuiltinShapes(ctx, pkgIDs, pkg, pkgName)...)

		var names []string
		for _, id := range pkgIDs {
			if n := registerNames[idxByID[id]]; n != "" {
				names = append(names, n)
			}
		}
		files = append(files, d.emitInit(pkg, pkgName, names))
	}
	return files, nil
}

func failureArtifact(pkgPath, simpleName, reason string) GeneratedFile {
	return GeneratedFile{
		Name:        simpleName + "_nino_FAILED.go",
		Src:         []byte(fmt.Sprintf("// nino: emission of %s failed: %s\n", simpleName, reason)),
		PackagePath: pkgPath,
	}
}

// emitBuiltinShapes collects every distinct structural-builtin shape
// referenced by any of pkgIDs' members (deduplicated by sanitized display
// name, since two members of the same shape - e.g. two []int32 fields in
// the same package - must not emit the same Serialize/Deserialize pair
// twice) and runs C5 over each one, into pkgName's own package. Two
// packages referencing the same shape (e.g. both declaring a []int32
// member) each get their own private copy, since Go has no shared
// cross-package location for these generated files to live without
// introducing an import. Emission order is sorted for determinism; the
// dedup set itself uses syncset the same way driver-level dedup is used
// elsewhere in this pipeline, even though this pass is single-threaded, so
// a future parallelization of this loop is a pure addition rather than a
// rewrite.
func (d *Driver) emitBuiltinShapes(ctx context.Context, ids []uint32, pkgPath, pkgName string) []GeneratedFile {
	seen := syncset.New()
	var shapes []metadata.TypeInfo
	for _, id := range ids {
		nt := d.Emitter.Graph.Types[id]
		for _, m := range nt.Members {
			collectBuiltinShapes(m.Type, seen, &shapes)
		}
	}

	sort.Slice(shapes, func(i, j int) bool { return shapes[i].DisplayNameSanitized < shapes[j].DisplayNameSanitized })

	var out []GeneratedFile
	for _, ti := range shapes {
		if ctx.Err() != nil {
			break
		}
		src, ok, err := d.Emitter.EmitBuiltin(pkgName, ti)
		if err != nil {
			d.Emitter.Diags.EmissionFailure(diag.Location{Package: pkgPath, Type: ti.SimpleName}, "%v", err)
			out = append(out, failureArtifact(pkgPath, exportedName(ti), err.Error()))
			continue
		}
		if !ok {
			continue
		}
		out = append(out, GeneratedFile{Name: exportedName(ti) + "_nino.go", Src: src, PackagePath: pkgPath})
	}
	return out
}

// collectBuiltinShapes walks ti looking for nested structural-builtin
// shapes (a slice-of-slice, a map with a nullable value, ...), adding each
// distinct one to *out at most once.
func collectBuiltinShapes(ti metadata.TypeInfo, seen *syncset.Set, out *[]metadata.TypeInfo) {
	isBuiltin := ti.SpecialType == metadata.SpecialNullable || ti.NullableUnderlying != nil ||
		ti.SpecialType == metadata.SpecialKVP ||
		ti.SpecialType == metadata.SpecialSlice || ti.Kind == metadata.KindSlice ||
		ti.SpecialType == metadata.SpecialMap || ti.Kind == metadata.KindMap ||
		ti.SpecialType == metadata.SpecialSet ||
		ti.SpecialType == metadata.SpecialArray || ti.Kind == metadata.KindArray

	if isBuiltin {
		key := ti.DisplayNameSanitized
		if key == "" {
			key = ti.SimpleName
		}
		if seen.Add(key) {
			*out = append(*out, ti)
		}
	}

	if ti.ElementType != nil {
		collectBuiltinShapes(*ti.ElementType, seen, out)
	}
	if ti.NullableUnderlying != nil {
		collectBuiltinShapes(*ti.NullableUnderlying, seen, out)
	}
	for _, ta := range ti.TypeArguments {
		collectBuiltinShapes(ta, seen, out)
	}
	for _, te := range ti.TupleElements {
		collectBuiltinShapes(te.Type, seen, out)
	}
}

// emitInit renders a package-level Init function that calls every type
// declared in pkgPath's register func exactly once and marks
// ninowire.Default ready (spec.md §4.4.3 "Initialization is idempotent under
// a lock"), the generated-code analogue of the teacher's own package init
// pattern of collecting independently-registered pieces into one startup
// pass. One nino_init.go is emitted per user package, since each package's
// Init only knows about the register funcs declared in its own generated
// files.
func (d *Driver) emitInit(pkgPath, pkgName string, names []string) GeneratedFile {
	b := render.New()
	b.P("// Code generated by nino. DO NOT EDIT.")
	b.P("")
	b.P("package %s", pkgName)
	b.P("")
	b.P("import (")
	b.In()
	b.P(`"github.com/nino-lang/nino-go/ninowire"`)
	b.Out()
	b.P(")")
	b.P("")
	b.P("func Init() {")
	b.In()
	for _, n := range names {
		if n == "" {
			continue
		}
		b.P("register%s()", n)
	}
	b.P("ninowire.Default.MarkReady()")
	b.Out()
	b.P("}")
	b.P("")

	src, err := b.Source()
	if err != nil {
		return failureArtifact(pkgPath, "Init", err.Error())
	}
	return GeneratedFile{Name: "nino_init.go", Src: src, PackagePath: pkgPath}
}
