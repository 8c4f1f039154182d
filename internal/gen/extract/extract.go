// Package extract implements C2 of the nino pipeline (spec.md §4.2): from
// each user-annotated type, it projects members, constructors, parent ids,
// custom-formatter references, and cross-assembly custom codec hints into a
// NinoType DTR. It consumes only metadata.TypeInfo DTRs and go/types
// objects reachable from a single metadata.Unit; it never reaches back into
// the host metadata API beyond what Unit already exposes.
package extract

import (
	"context"
	"go/types"

	log "github.com/golang/glog"

	"github.com/nino-lang/nino-go/internal/gen/metadata"
	"github.com/nino-lang/nino-go/internal/gen/typeid"
)

// NinoMember is one serializable member of a NinoType (spec.md §3
// "NinoMember").
type NinoMember struct {
	Name string
	Type metadata.TypeInfo

	IsConstructorParameter bool
	IsPrivate              bool
	IsProperty             bool // true for a Go method-backed accessor pair, false for a plain field
	IsUTF8String           bool
	IsStatic               bool
	IsReadOnly             bool

	// CustomFormatter names a user-supplied formatter type for this member,
	// when the `nino:"formatter=..."` tag option is present.
	CustomFormatter *metadata.TypeInfo
}

// ConstructorParam is one parameter of a ConstructorInfo.
type ConstructorParam struct {
	Name string
	Type metadata.TypeInfo
}

// ConstructorInfo describes one candidate constructor or static factory
// (spec.md §3 "ConstructorInfo").
type ConstructorInfo struct {
	Params []ConstructorParam

	HasExplicitOrdering   bool
	ExplicitParamOrder    []string // overrides default order when set
	IsPrimaryConstructor  bool     // Go: true on the leading entry: the factory if found, else the struct literal
	IsConstructor         bool     // false when this is a static factory method
	FactoryMethodName     string   // set when IsConstructor is false
}

// NinoType is the immutable extraction record for one user-annotated type
// (spec.md §3 "NinoType").
type NinoType struct {
	Type metadata.TypeInfo

	Members []NinoMember

	// ParentTypeIds holds embedded-struct and implemented-interface ids,
	// not NinoType references, so that cyclic type graphs can be rebuilt
	// from stable ids instead of object identity (spec.md §9 "Cyclic type
	// graphs").
	ParentTypeIds []uint32

	CustomSerializerName   string // cross-assembly custom codec hint, §4.1
	CustomDeserializerName string

	// RefDeserializeFactory names a public, static, zero-parameter method
	// that returns the same type and is marked for reference
	// deserialization (spec.md §4.1 "Ref-deserialization factory").
	RefDeserializeFactory string

	Constructors []ConstructorInfo

	// Filled in later by the graph builder (C3); zero-valued here.
	IsPolymorphic  bool
	IsCircular     bool
	HierarchyLevel int
}

// Key returns the TypeId used to dedupe and look up this NinoType, per
// spec.md §3 "NinoGraph ... All dictionaries use TypeId-based equality".
func (n NinoType) Key() uint32 { return n.Type.TypeId }

// DirectlyTagged reports whether decl's declared type itself carries the
// nino:"type" tag, i.e. is a "direct-attribute type" per spec.md §4.3
// "Dedup ... direct-attribute types win over inherited."
type DirectlyTagged bool

// Extraction holds one candidate type plus whether it was found directly or
// only via the inheritance walk, which the graph builder's dedup rule
// (spec.md §4.3) needs.
type Extraction struct {
	Type    NinoType
	Direct  DirectlyTagged
	Skipped bool // true if the type failed the generic-validity check (§4.2)
}

// Extract walks every package-level type declared in unit and returns one
// Extraction per type that is a C2 input: it (a) carries the nino:"type"
// tag directly, or (b) inherits from / implements a type that does, with
// allow-inheritance semantics holding along the walk (spec.md §4.2
// "Inputs", "Attribute inheritance rule").
//
// ctx is checked at type entry and at each member; constructor selection
// does not check it.
func Extract(ctx context.Context, unit *metadata.Unit, proj *metadata.Projector) ([]Extraction, error) {
	var out []Extraction
	for _, name := range unit.DeclaredTypeNames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		obj := metadata.TypeByName(unit, name)
		tn, ok := obj.(*types.TypeName)
		if !ok {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok {
			continue
		}
		st, ok := named.Underlying().(*types.Struct)
		if !ok {
			// Only struct-shaped types can carry a NinoType tag field; other
			// declared types (interfaces, defined basics) are never C2
			// inputs themselves, though they may appear as NinoMember types.
			continue
		}

		opts, direct, ok := resolveAttribute(named, st)
		if !ok {
			continue
		}
		if direct && !opts.autoCollect {
			// autoCollect=false means this type's own tag is present but it
			// opts out of the scan-and-collect pass; it is still a valid
			// inheritance source for other types (spec.md §4.2).
			continue
		}

		ext, skip, err := extractOne(ctx, named, st, opts, proj)
		if err != nil {
			return nil, err
		}
		out = append(out, Extraction{Type: ext, Direct: DirectlyTagged(direct), Skipped: skip})
	}
	return out, nil
}

// attributeOptions mirrors spec.md §4.2's "Recognised options on the
// attribute".
type attributeOptions struct {
	autoCollect             bool
	containNonPublicMembers bool
	allowInheritance        bool
}

func defaultAttributeOptions() attributeOptions {
	return attributeOptions{autoCollect: true, allowInheritance: true}
}

// resolveAttribute implements the attribute-inheritance rule of spec.md
// §4.2: search self, then the embedded-struct chain, then implemented
// interfaces; stop as soon as a match is found whose allowInheritance is
// false on a non-self match.
func resolveAttribute(named *types.Named, st *types.Struct) (attributeOptions, bool /*direct*/, bool /*found*/) {
	if opts, ok := tagOptions(st); ok {
		return opts, true, true
	}

	visited := map[*types.Named]bool{named: true}
	if opts, ok := searchEmbedded(st, visited); ok {
		if !opts.allowInheritance {
			// The nearest tagged ancestor set noInherit: the walk stops
			// there and this type is not an input.
			return attributeOptions{}, false, false
		}
		return opts, false, true
	}
	if opts, ok := searchInterfaces(named, visited); ok {
		return opts, false, true
	}
	return attributeOptions{}, false, false
}

func searchEmbedded(st *types.Struct, visited map[*types.Named]bool) (attributeOptions, bool) {
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Embedded() {
			continue
		}
		named, embeddedStruct := embeddedStructOf(f.Type())
		if embeddedStruct == nil {
			continue
		}
		if named != nil {
			if visited[named] {
				continue
			}
			visited[named] = true
		}
		if opts, ok := tagOptions(embeddedStruct); ok {
			if !opts.allowInheritance {
				// Present but closes the door: returned as found so that
				// resolveAttribute stops the walk here and rejects the
				// embedding type.
				return opts, true
			}
			return opts, true
		}
		if opts, ok := searchEmbedded(embeddedStruct, visited); ok {
			return opts, ok
		}
	}
	return attributeOptions{}, false
}

func searchInterfaces(named *types.Named, visited map[*types.Named]bool) (attributeOptions, bool) {
	var pkg *types.Package
	if named.Obj() != nil {
		pkg = named.Obj().Pkg()
	}
	taggedIface := taggedInterfaceFromPkg(pkg)
	if taggedIface == nil {
		return attributeOptions{}, false
	}
	if types.Implements(named, taggedIface) || types.Implements(types.NewPointer(named), taggedIface) {
		return defaultAttributeOptions(), true
	}
	return attributeOptions{}, false
}

// embeddedStructOf dereferences an embedded field's type down to the
// *types.Struct it wraps (following at most one level of pointer
// indirection, matching Go's own embedding rules), returning the *Named it
// came from (nil for anonymous structs, which cannot themselves carry a
// struct tag because they have no declaration to tag).
func embeddedStructOf(t types.Type) (*types.Named, *types.Struct) {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, ok := t.(*types.Named)
	if !ok {
		return nil, nil
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return named, nil
	}
	return named, st
}

func extractOne(ctx context.Context, named *types.Named, st *types.Struct, opts attributeOptions, proj *metadata.Projector) (NinoType, bool, error) {
	info, err := proj.Project(ctx, named)
	if err != nil {
		return NinoType{}, false, err
	}

	nt := NinoType{Type: info}

	for i := 0; i < st.NumFields(); i++ {
		if err := ctx.Err(); err != nil {
			return NinoType{}, false, err
		}
		f := st.Field(i)
		tag := st.Tag(i)

		if f.Embedded() {
			if parentID, ok := parentIDFromEmbedded(ctx, f, proj); ok {
				nt.ParentTypeIds = append(nt.ParentTypeIds, parentID)
			}
			continue // an embedded field contributes a parent id, not a member
		}
		if isTagField(f) {
			continue // the ninoapi.Tag marker field itself is never a member
		}

		memberOpts, err := parseMemberTag(tag)
		if err != nil {
			log.Warningf("nino: extract: %s.%s: %v, skipping member", info.DisplayName, f.Name(), err)
			continue
		}
		if memberOpts.skip {
			continue
		}
		if !f.Exported() && !opts.containNonPublicMembers {
			continue
		}

		memType, err := proj.Project(ctx, f.Type())
		if err != nil {
			return NinoType{}, false, err
		}
		if memberOpts.utf8 && memType.SpecialType != metadata.SpecialString {
			log.Warningf("nino: extract: %s.%s: nino:\"utf8\" on non-string member, ignoring", info.DisplayName, f.Name())
			memberOpts.utf8 = false
		}

		m := NinoMember{
			Name:         f.Name(),
			Type:         memType,
			IsPrivate:    !f.Exported(),
			IsUTF8String: memberOpts.utf8,
		}
		if memberOpts.formatter != "" {
			ft := metadata.TypeInfo{FullyQualifiedName: memberOpts.formatter, TypeId: typeid.Of(memberOpts.formatter), DisplayName: memberOpts.formatter, SimpleName: memberOpts.formatter}
			m.CustomFormatter = &ft
		}
		nt.Members = append(nt.Members, m)
	}

	if ok, reason := validateGenerics(named); !ok {
		log.Infof("nino: extract: skipping %s: %s", info.DisplayName, reason)
		return nt, true, nil
	}

	nt.Constructors = selectConstructors(named, nt.Members)
	nt.RefDeserializeFactory = findRefDeserializeFactory(named)
	nt.CustomSerializerName, nt.CustomDeserializerName = findCrossAssemblyCodec(named)

	return nt, false, nil
}

func parentIDFromEmbedded(ctx context.Context, f *types.Var, proj *metadata.Projector) (uint32, bool) {
	info, err := proj.Project(ctx, f.Type())
	if err != nil {
		return 0, false
	}
	return info.TypeId, true
}

func isTagField(f *types.Var) bool {
	named, ok := f.Type().(*types.Named)
	if !ok {
		return false
	}
	return named.Obj().Pkg() != nil &&
		named.Obj().Pkg().Path() == ninoapiPackagePath &&
		named.Obj().Name() == "Tag"
}

// ninoapiPackagePath is the import path user code imports ninoapi.Tag from.
// It is compared against types.Named.Obj().Pkg().Path() rather than
// importing ninoapi directly, keeping C2 free of any dependency on runtime
// packages (only metadata DTRs and go/types flow through this stage).
const ninoapiPackagePath = "github.com/nino-lang/nino-go/ninoapi"
