// Package emit implements C4 and C5 of the nino pipeline (spec.md §4.4,
// §4.5): given the finished NinoGraph, it emits a Serialize/Deserialize pair
// plus registration glue for every user NinoType and every structural
// builtin shape it references, as text via internal/gen/emit/render, the way
// Apache Fory's Go codegen builds brand-new source with repeated
// buf.Fprintf-equivalent calls rather than rewriting an existing AST.
package emit

import (
	"fmt"
	"strings"

	"github.com/nino-lang/nino-go/internal/gen/extract"
	"github.com/nino-lang/nino-go/internal/gen/metadata"
)

// serializeFuncName returns the package-level function name emitted for
// writing a value of type ti, e.g. "SerializePlayer".
func serializeFuncName(ti metadata.TypeInfo) string {
	return "Serialize" + exportedName(ti)
}

// deserializeFuncName returns the package-level function name emitted for
// reading a value of type ti, e.g. "DeserializePlayer".
func deserializeFuncName(ti metadata.TypeInfo) string {
	return "Deserialize" + exportedName(ti)
}

// exportedName derives an exported Go identifier fragment from ti's simple
// name, falling back to the sanitized display name for builtin shapes that
// have no single declared name (e.g. "[]int32").
func exportedName(ti metadata.TypeInfo) string {
	name := ti.SimpleName
	if name == "" {
		name = ti.DisplayNameSanitized
	}
	var b strings.Builder
	upperNext := true
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			if upperNext && r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
			b.WriteRune(r)
			upperNext = false
		default:
			upperNext = true
		}
	}
	if b.Len() == 0 {
		return fmt.Sprintf("Type%08x", ti.TypeId)
	}
	return b.String()
}

// goFieldType renders ti as a Go type expression suitable for a struct field
// or local variable declaration, for the subset of shapes C4/C5 need to
// spell out directly (primitives, pointers, slices, arrays, maps, named user
// types). Anything else falls back to SimpleName, the package-unqualified
// identifier a reference within ti's own declaring package resolves without
// an import; DisplayName is not used here since go/types prints it
// import-path-qualified (e.g. "example.com/leaf.Position"), which is not
// valid syntax for a type reference inside that same package.
func goFieldType(ti metadata.TypeInfo) string {
	switch ti.SpecialType {
	case metadata.SpecialBool:
		return "bool"
	case metadata.SpecialInt8:
		return "int8"
	case metadata.SpecialInt16:
		return "int16"
	case metadata.SpecialInt32:
		return "int32"
	case metadata.SpecialInt64:
		return "int64"
	case metadata.SpecialUint8, metadata.SpecialByte:
		return "uint8"
	case metadata.SpecialUint16:
		return "uint16"
	case metadata.SpecialUint32:
		return "uint32"
	case metadata.SpecialUint64:
		return "uint64"
	case metadata.SpecialFloat32:
		return "float32"
	case metadata.SpecialFloat64:
		return "float64"
	case metadata.SpecialString:
		return "string"
	}
	if ti.Kind == metadata.KindPointer && ti.NullableUnderlying != nil {
		return "*" + goFieldType(*ti.NullableUnderlying)
	}
	if ti.Kind == metadata.KindSlice && ti.ElementType != nil {
		return "[]" + goFieldType(*ti.ElementType)
	}
	if ti.Kind == metadata.KindArray && ti.ElementType != nil {
		return fmt.Sprintf("[%d]%s", ti.ArrayLen, goFieldType(*ti.ElementType))
	}
	if ti.Kind == metadata.KindMap && len(ti.TypeArguments) == 2 {
		return "map[" + goFieldType(ti.TypeArguments[0]) + "]" + goFieldType(ti.TypeArguments[1])
	}
	return ti.SimpleName
}

// packageClause returns the package identifier generated code for ti's
// declaring package should carry, so generated files live in the same Go
// package as the user's annotated type and get direct, same-package access
// to its unexported members. ti.PackageName is empty only for synthetic
// TypeInfo values built directly in tests, which fall back to "ninogen".
func packageClause(ti metadata.TypeInfo) string {
	if ti.PackageName != "" {
		return ti.PackageName
	}
	return "ninogen"
}

// isBulkEligible reports whether member m can participate in a run grouped
// into a single unsafe bulk write (spec.md §4.4.1): unmanaged,
// non-polymorphic, non-nullable, no custom formatter.
func isBulkEligible(m extract.NinoMember) bool {
	t := m.Type
	return t.IsUnmanaged && !t.IsPolymorphic && t.NullableUnderlying == nil && m.CustomFormatter == nil
}

// isBuiltinShape reports whether ti is a structural-builtin shape with a
// single-value Serialize/Deserialize signature that a NinoMember can call
// directly (builtin.go's Nullable/Slice/Map generators). KeyValuePair is
// deliberately excluded: its generated functions take (key, value, w)/(r)
// (key, value, error) rather than a single value, since a KVP only ever
// appears nested inside a Dictionary's own generated body (builtin.go's
// genMap writes/reads key and value directly, never through
// SerializeKeyValuePair), never as a standalone NinoMember.
func isBuiltinShape(ti metadata.TypeInfo) bool {
	if ti.SpecialType == metadata.SpecialNullable || ti.NullableUnderlying != nil {
		return true
	}
	if ti.SpecialType == metadata.SpecialSlice || ti.Kind == metadata.KindSlice {
		return true
	}
	if ti.SpecialType == metadata.SpecialMap || ti.Kind == metadata.KindMap {
		return true
	}
	if ti.SpecialType == metadata.SpecialArray || ti.Kind == metadata.KindArray {
		return true
	}
	if ti.SpecialType == metadata.SpecialSet {
		return true
	}
	return false
}
