package metadata

import (
	"context"
	"go/types"
	"regexp"
	"strings"
	"sync"

	log "github.com/golang/glog"

	"github.com/nino-lang/nino-go/internal/gen/typeid"
)

// Projector turns go/types.Type values into TypeInfo DTRs. It caches by
// type identity so that re-projecting the same *types.Type within one
// extraction batch is cheap and, more importantly, so that recursive shapes
// (generic arguments, array elements, nullable underlyings) always resolve
// to the exact same TypeInfo value, keeping equality structural rather than
// incidental (spec.md §3).
//
// A Projector is safe for concurrent use: the host metadata API may deliver
// projection events for different types on different goroutines (spec.md
// §5), and Projector only ever reads its argument plus its own cache, which
// is mutex-guarded.
type Projector struct {
	mu    sync.Mutex
	cache map[types.Type]TypeInfo
}

// NewProjector returns a ready-to-use Projector.
func NewProjector() *Projector {
	return &Projector{cache: make(map[types.Type]TypeInfo)}
}

// Project extracts a TypeInfo for t (spec.md §4.1 "extract(typeHandle) →
// TypeInfo"). It is pure, reentrant, and checks ctx at entry and at every
// recursive step (type arguments, array/slice elements, nullable
// underlying, tuple elements), per spec.md §5 "Suspension points".
func (p *Projector) Project(ctx context.Context, t types.Type) (TypeInfo, error) {
	if err := ctx.Err(); err != nil {
		return TypeInfo{}, err
	}

	t = normalize(t)

	p.mu.Lock()
	if cached, ok := p.cache[t]; ok {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	info, err := p.project(ctx, t)
	if err != nil {
		return TypeInfo{}, err
	}

	p.mu.Lock()
	p.cache[t] = info
	p.mu.Unlock()
	return info, nil
}

// normalize returns t unchanged. Go has no nullable-reference annotations
// to strip; pointer-ness is itself the nullable signal and is preserved.
// Tuple element names are not removed either: they are part of t.String(),
// so two tuples differing only in element names get different TypeIds.
func normalize(t types.Type) types.Type {
	return t
}

func (p *Projector) project(ctx context.Context, t types.Type) (TypeInfo, error) {
	fqn := fullyQualifiedName(t)
	info := TypeInfo{
		FullyQualifiedName: fqn,
		TypeId:             typeid.Of(fqn),
	}

	switch u := t.(type) {
	case *types.Basic:
		p.fillBasic(&info, u)
	case *types.Pointer:
		elem, err := p.Project(ctx, u.Elem())
		if err != nil {
			return TypeInfo{}, err
		}
		info.Kind = KindPointer
		info.IsReferenceType = true
		info.SpecialType = SpecialNullable
		info.NullableUnderlying = &elem
	case *types.Slice:
		if err := ctx.Err(); err != nil {
			return TypeInfo{}, err
		}
		elem, err := p.Project(ctx, u.Elem())
		if err != nil {
			return TypeInfo{}, err
		}
		info.Kind = KindSlice
		info.IsReferenceType = true
		info.SpecialType = SpecialSlice
		info.ElementType = &elem
		info.ArrayRank = 1
	case *types.Array:
		if err := ctx.Err(); err != nil {
			return TypeInfo{}, err
		}
		elem, err := p.Project(ctx, u.Elem())
		if err != nil {
			return TypeInfo{}, err
		}
		info.Kind = KindArray
		info.IsValueType = true
		info.SpecialType = SpecialArray
		info.ElementType = &elem
		info.ArrayRank = 1
		info.ArrayLen = u.Len()
	case *types.Map:
		if err := ctx.Err(); err != nil {
			return TypeInfo{}, err
		}
		key, err := p.Project(ctx, u.Key())
		if err != nil {
			return TypeInfo{}, err
		}
		val, err := p.Project(ctx, u.Elem())
		if err != nil {
			return TypeInfo{}, err
		}
		info.Kind = KindMap
		info.IsReferenceType = true
		info.SpecialType = SpecialMap
		if isEmptyStruct(u.Elem()) {
			// map[T]struct{}, Go's idiomatic HashSet<T> shape (spec.md §4.5).
			info.SpecialType = SpecialSet
		}
		info.TypeArguments = []TypeInfo{key, val}
	case *types.Struct:
		info.Kind = KindStruct
		info.IsValueType = true
	case *types.Interface:
		info.Kind = KindInterface
		info.IsReferenceType = true
		info.IsPolymorphic = true
		info.IsAbstract = true
	case *types.Named:
		if err := p.fillNamed(ctx, &info, u); err != nil {
			return TypeInfo{}, err
		}
	case *types.Tuple:
		if err := p.fillTuple(ctx, &info, u); err != nil {
			return TypeInfo{}, err
		}
	default:
		log.Warningf("nino: metadata.Project: unhandled go/types.Type %T for %s, treating as opaque reference type", u, fqn)
		info.Kind = KindInvalid
		info.IsReferenceType = true
	}

	info.IsUnmanaged = computeUnmanaged(t, info)
	info.Namespace, info.Assembly, info.PackageName = namespaceAndAssembly(t)
	info.DisplayName = t.String()
	info.DisplayNameSanitized = sanitizeDisplayName(info.DisplayName)
	info.SimpleName = simpleName(info.DisplayNameSanitized)
	info.InstanceName = instanceName(info.DisplayNameSanitized)

	return info, nil
}

func (p *Projector) fillBasic(info *TypeInfo, b *types.Basic) {
	info.Kind = KindBasic
	info.IsValueType = true
	info.IsUnmanaged = true
	switch b.Kind() {
	case types.Bool:
		info.SpecialType = SpecialBool
	case types.Int8:
		info.SpecialType = SpecialInt8
	case types.Int16:
		info.SpecialType = SpecialInt16
	case types.Int32, types.Int, types.Rune:
		info.SpecialType = SpecialInt32
	case types.Int64:
		info.SpecialType = SpecialInt64
	case types.Uint8, types.Byte:
		info.SpecialType = SpecialByte
	case types.Uint16:
		info.SpecialType = SpecialUint16
	case types.Uint32, types.Uint:
		info.SpecialType = SpecialUint32
	case types.Uint64:
		info.SpecialType = SpecialUint64
	case types.Float32:
		info.SpecialType = SpecialFloat32
	case types.Float64:
		info.SpecialType = SpecialFloat64
	case types.String:
		info.SpecialType = SpecialString
		info.IsUnmanaged = false
		info.IsReferenceType = true
		info.IsValueType = false
	default:
		info.SpecialType = SpecialNone
	}
}

func (p *Projector) fillNamed(ctx context.Context, info *TypeInfo, n *types.Named) error {
	info.OriginalDefinition = n.Origin().String()
	info.IsGenericDefinition = n.TypeParams() != nil && n.TypeArgs() == nil

	if targs := n.TypeArgs(); targs != nil {
		info.IsGeneric = true
		for i := 0; i < targs.Len(); i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			arg, err := p.Project(ctx, targs.At(i))
			if err != nil {
				return err
			}
			info.TypeArguments = append(info.TypeArguments, arg)
		}
	}

	under := n.Underlying()
	switch u := under.(type) {
	case *types.Struct:
		info.Kind = KindStruct
		info.IsValueType = true
	case *types.Interface:
		info.Kind = KindInterface
		info.IsReferenceType = true
		info.IsPolymorphic = true
		info.IsAbstract = true
		_ = u
	case *types.Basic:
		p.fillBasic(info, u)
		info.Kind = KindBasic
	default:
		info.Kind = KindInvalid
	}

	// A defined (non-interface) Go type is a reference type for nino's
	// purposes, and hence a polymorphic dispatch participant, unless it is
	// a plain value (struct/basic) passed by value; in Go there is no
	// sealed/final keyword, so a struct used as a value receiver is
	// considered non-polymorphic (IsSealed=true) here; the graph builder
	// (C3) marks a NinoType polymorphic when it has parent ids or sub-types.
	if info.Kind == KindStruct {
		info.IsSealed = true
	}

	return nil
}

func (p *Projector) fillTuple(ctx context.Context, info *TypeInfo, t *types.Tuple) error {
	info.Kind = KindTuple
	info.IsValueType = true
	info.SpecialType = SpecialTuple
	for i := 0; i < t.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		v := t.At(i)
		elemType, err := p.Project(ctx, v.Type())
		if err != nil {
			return err
		}
		name := v.Name()
		info.TupleElements = append(info.TupleElements, TupleElement{Name: name, Type: elemType})
	}
	return nil
}

func computeUnmanaged(t types.Type, info TypeInfo) bool {
	switch info.Kind {
	case KindBasic:
		return info.SpecialType != SpecialString
	case KindPointer, KindSlice, KindMap, KindInterface:
		return false
	case KindArray:
		return info.ElementType != nil && info.ElementType.IsUnmanaged
	case KindStruct:
		// A projected struct is always reported as managed; nothing later
		// in the pipeline recomputes this from the struct's members.
		return false
	default:
		return false
	}
}

func namespaceAndAssembly(t types.Type) (namespace, assembly, packageName string) {
	named, ok := t.(*types.Named)
	if !ok {
		return "", "", ""
	}
	obj := named.Obj()
	if obj.Pkg() == nil {
		return "", "", ""
	}
	return obj.Pkg().Path(), obj.Pkg().Path(), obj.Pkg().Name()
}

func isEmptyStruct(t types.Type) bool {
	s, ok := t.Underlying().(*types.Struct)
	return ok && s.NumFields() == 0
}

func fullyQualifiedName(t types.Type) string {
	return t.String()
}

// multiDimArrayPattern matches C-style multi-dimensional array syntax
// (T[*,*]) that some host front-ends surface; spec.md §4.1 requires
// rewriting it to T[,] before emission. Go's own array/slice syntax never
// produces this form, so this only ever fires on names synthesized from a
// cross-language FullyQualifiedName passed through verbatim (e.g. a custom
// codec hint borrowed from a non-Go sibling project); kept here so the
// sanitization rule is enforced uniformly regardless of where the name
// string originated.
var multiDimArrayPattern = regexp.MustCompile(`\[(\*,)*\*\]`)

func sanitizeDisplayName(name string) string {
	return multiDimArrayPattern.ReplaceAllStringFunc(name, func(m string) string {
		commas := strings.Count(m, ",")
		return "[" + strings.Repeat(",", commas) + "]"
	})
}

var nonIdentChar = regexp.MustCompile(`[^a-zA-Z0-9]`)

func instanceName(sanitizedDisplayName string) string {
	lower := strings.ToLower(sanitizedDisplayName)
	safe := nonIdentChar.ReplaceAllString(lower, "_")
	return InstanceNameSigil + safe
}

func simpleName(sanitizedDisplayName string) string {
	s := sanitizedDisplayName
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	return s
}
