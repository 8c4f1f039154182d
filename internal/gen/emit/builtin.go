package emit

import (
	"fmt"

	"github.com/nino-lang/nino-go/internal/gen/emit/render"
	"github.com/nino-lang/nino-go/internal/gen/metadata"
)

// builtinGenerator is one entry of the C5 catalogue (spec.md §4.5): a shape
// filter plus a template that emits a Serialize/Deserialize pair for every
// distinct instantiation of that shape the graph's members reference.
// Filters match on SpecialType/Kind. The catalogue covers Nullable (*T),
// KeyValuePair, Set (map[T]struct{}), Slice, Map and Array; no entry
// matches SpecialStack, SpecialQueue, SpecialLinkedList, SpecialPriorityQ
// or SpecialTuple, so EmitBuiltin reports ok=false for those shapes.
type builtinGenerator struct {
	Name     string
	Filter   func(metadata.TypeInfo) bool
	Generate func(b *render.Buffer, ti metadata.TypeInfo)
}

// builtinCatalogue lists the generators in filter-priority order: the first
// matching Filter wins, so more specific shapes (Nullable, KVP) must precede
// the general slice/map fallback.
var builtinCatalogue = []builtinGenerator{
	{Name: "Nullable", Filter: isNullableShape, Generate: genNullable},
	{Name: "KeyValuePair", Filter: isKVPShape, Generate: genKVP},
	{Name: "Set", Filter: isSetShape, Generate: genSet},
	{Name: "Slice", Filter: isSliceShape, Generate: genSlice},
	{Name: "Map", Filter: isMapShape, Generate: genMap},
	{Name: "Array", Filter: isArrayShape, Generate: genArray},
}

func isNullableShape(ti metadata.TypeInfo) bool {
	return ti.SpecialType == metadata.SpecialNullable || ti.NullableUnderlying != nil
}

func isKVPShape(ti metadata.TypeInfo) bool {
	return ti.SpecialType == metadata.SpecialKVP
}

func isSliceShape(ti metadata.TypeInfo) bool {
	return ti.SpecialType == metadata.SpecialSlice || ti.Kind == metadata.KindSlice
}

func isMapShape(ti metadata.TypeInfo) bool {
	return (ti.SpecialType == metadata.SpecialMap || ti.Kind == metadata.KindMap) && ti.SpecialType != metadata.SpecialSet
}

func isSetShape(ti metadata.TypeInfo) bool {
	return ti.SpecialType == metadata.SpecialSet
}

func isArrayShape(ti metadata.TypeInfo) bool {
	return ti.SpecialType == metadata.SpecialArray || ti.Kind == metadata.KindArray
}

// EmitBuiltin renders the Serialize/Deserialize pair for ti's structural
// shape, or ok=false if ti matches no catalogue entry (driver.go then skips
// the shape; a member of that type is reported as MissingMember by
// usertype.go's writeScalar/readSingleMember default case). pkgName is the package the generated file
// is written into: builtin shapes like []int32 have no declaring package of
// their own, so the caller supplies the referencing user package's name
// (driver.go emits one private copy of each shape per package that uses it).
func (e *Emitter) EmitBuiltin(pkgName string, ti metadata.TypeInfo) (src []byte, ok bool, err error) {
	for _, g := range builtinCatalogue {
		if !g.Filter(ti) {
			continue
		}
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
		g.Generate(b, ti)
		out, serr := b.Source()
		if serr != nil {
			return nil, true, serr
		}
		return out, true, nil
	}
	return nil, false, nil
}

// genNullable implements the Nullable<T> generator: bool tag + (T if tag)
// (spec.md §4.5 catalogue, §8 scenario 5).
func genNullable(b *render.Buffer, ti metadata.TypeInfo) {
	name := exportedName(ti)
	elem := *ti.NullableUnderlying
	elemGo := goFieldType(elem)

	b.P("func %s(value *%s, w ninowire.Writer) error {", serializeFuncName(ti), elemGo)
	b.In()
	b.P("if value == nil {")
	b.In()
	b.P("w.WriteBool(false)")
	b.P("return nil")
	b.Out()
	b.P("}")
	b.P("w.WriteBool(true)")
	writeScalarLiteral(b, "(*value)", elem)
	b.P("return nil")
	b.Out()
	b.P("}")
	b.P("")

	b.P("func %s(r ninowire.Reader) (*%s, error) {", deserializeFuncName(ti), elemGo)
	b.In()
	b.P("if !r.ReadBool() {")
	b.In()
	b.P("return nil, nil")
	b.Out()
	b.P("}")
	b.P("v := %s", readScalarLiteral(elem))
	b.P("return &v, nil")
	b.Out()
	b.P("}")
	b.P("")
	_ = name
}

// genKVP implements the KeyValuePair<K,V> generator: K then V; an all
// unmanaged pair collapses to a single bulk copy (spec.md §4.5 catalogue).
func genKVP(b *render.Buffer, ti metadata.TypeInfo) {
	if len(ti.TupleElements) != 2 {
		return
	}
	k, v := ti.TupleElements[0].Type, ti.TupleElements[1].Type
	kGo, vGo := goFieldType(k), goFieldType(v)

	b.P("func %s(key %s, value %s, w ninowire.Writer) error {", serializeFuncName(ti), kGo, vGo)
	b.In()
	if k.IsUnmanaged && v.IsUnmanaged {
		b.P("w.WriteBulkUnmanaged(ninowire.BulkCopy(&struct {")
		b.In()
		b.P("K %s", kGo)
		b.P("V %s", vGo)
		b.Out()
		b.P("}{key, value}))")
	} else {
		writeScalarLiteral(b, "key", k)
		writeScalarLiteral(b, "value", v)
	}
	b.P("return nil")
	b.Out()
	b.P("}")
	b.P("")

	b.P("func %s(r ninowire.Reader) (%s, %s, error) {", deserializeFuncName(ti), kGo, vGo)
	b.In()
	if k.IsUnmanaged && v.IsUnmanaged {
		b.P("var bulk struct {")
		b.In()
		b.P("K %s", kGo)
		b.P("V %s", vGo)
		b.Out()
		b.P("}")
		b.P("ninowire.ReadBulk(r, &bulk)")
		b.P("return bulk.K, bulk.V, nil")
	} else {
		b.P("key := %s", readScalarLiteral(k))
		b.P("value := %s", readScalarLiteral(v))
		b.P("return key, value, nil")
	}
	b.Out()
	b.P("}")
	b.P("")
}

// genSlice implements the slice shape (List/IList): collection-header then
// N elements, bulk-copied when the element type is unmanaged (spec.md §4.5
// "Fast-path rule").
func genSlice(b *render.Buffer, ti metadata.TypeInfo) {
	elem := *ti.ElementType
	elemGo := goFieldType(elem)
	sliceGo := "[]" + elemGo

	b.P("func %s(value %s, w ninowire.Writer) error {", serializeFuncName(ti), sliceGo)
	b.In()
	b.P("if value == nil {")
	b.In()
	b.P("w.WriteUint32(ninowire.NullCollectionHeader)")
	b.P("return nil")
	b.Out()
	b.P("}")
	b.P("w.WriteUint32(uint32(len(value)))")
	if elem.IsUnmanaged && !elem.IsPolymorphic {
		b.P("for i := range value {")
		b.In()
		b.P("w.WriteBulkUnmanaged(ninowire.BulkCopy(&value[i]))")
		b.Out()
		b.P("}")
	} else {
		b.P("for _, elem := range value {")
		b.In()
		writeScalarLiteral(b, "elem", elem)
		b.Out()
		b.P("}")
	}
	b.P("return nil")
	b.Out()
	b.P("}")
	b.P("")

	b.P("func %s(r ninowire.Reader) (%s, error) {", deserializeFuncName(ti), sliceGo)
	b.In()
	b.P("n := r.ReadUint32()")
	b.P("if n == ninowire.NullCollectionHeader {")
	b.In()
	b.P("return nil, nil")
	b.Out()
	b.P("}")
	b.P("out := make(%s, n)", sliceGo)
	if elem.IsUnmanaged && !elem.IsPolymorphic {
		b.P("for i := range out {")
		b.In()
		b.P("ninowire.ReadBulk(r, &out[i])")
		b.Out()
		b.P("}")
	} else {
		b.P("for i := range out {")
		b.In()
		b.P("out[i] = %s", readScalarLiteral(elem))
		b.Out()
		b.P("}")
	}
	b.P("return out, nil")
	b.Out()
	b.P("}")
	b.P("")
}

// genMap implements Dictionary and friends: collection-header then N KV
// pairs, each key and value written by its own scalar call; no bulk copy
// is used, even when both key and value are unmanaged.
func genMap(b *render.Buffer, ti metadata.TypeInfo) {
	var key, val metadata.TypeInfo
	if len(ti.TypeArguments) == 2 {
		key, val = ti.TypeArguments[0], ti.TypeArguments[1]
	}
	keyGo, valGo := goFieldType(key), goFieldType(val)
	mapGo := "map[" + keyGo + "]" + valGo

	b.P("func %s(value %s, w ninowire.Writer) error {", serializeFuncName(ti), mapGo)
	b.In()
	b.P("if value == nil {")
	b.In()
	b.P("w.WriteUint32(ninowire.NullCollectionHeader)")
	b.P("return nil")
	b.Out()
	b.P("}")
	b.P("w.WriteUint32(uint32(len(value)))")
	b.P("for k, v := range value {")
	b.In()
	writeScalarLiteral(b, "k", key)
	writeScalarLiteral(b, "v", val)
	b.Out()
	b.P("}")
	b.P("return nil")
	b.Out()
	b.P("}")
	b.P("")

	b.P("func %s(r ninowire.Reader) (%s, error) {", deserializeFuncName(ti), mapGo)
	b.In()
	b.P("n := r.ReadUint32()")
	b.P("if n == ninowire.NullCollectionHeader {")
	b.In()
	b.P("return nil, nil")
	b.Out()
	b.P("}")
	b.P("out := make(%s, n)", mapGo)
	b.P("for i := uint32(0); i < n; i++ {")
	b.In()
	b.P("k := %s", readScalarLiteral(key))
	b.P("v := %s", readScalarLiteral(val))
	b.P("out[k] = v")
	b.Out()
	b.P("}")
	b.P("return out, nil")
	b.Out()
	b.P("}")
	b.P("")
}

// genSet implements HashSet<T>: collection-header then N keys, no values
// (spec.md §4.5 catalogue; Go's structural equivalent is map[T]struct{}).
func genSet(b *render.Buffer, ti metadata.TypeInfo) {
	var key metadata.TypeInfo
	if len(ti.TypeArguments) == 2 {
		key = ti.TypeArguments[0]
	}
	keyGo := goFieldType(key)
	mapGo := "map[" + keyGo + "]struct{}"

	b.P("func %s(value %s, w ninowire.Writer) error {", serializeFuncName(ti), mapGo)
	b.In()
	b.P("if value == nil {")
	b.In()
	b.P("w.WriteUint32(ninowire.NullCollectionHeader)")
	b.P("return nil")
	b.Out()
	b.P("}")
	b.P("w.WriteUint32(uint32(len(value)))")
	b.P("for k := range value {")
	b.In()
	writeScalarLiteral(b, "k", key)
	b.Out()
	b.P("}")
	b.P("return nil")
	b.Out()
	b.P("}")
	b.P("")

	b.P("func %s(r ninowire.Reader) (%s, error) {", deserializeFuncName(ti), mapGo)
	b.In()
	b.P("n := r.ReadUint32()")
	b.P("if n == ninowire.NullCollectionHeader {")
	b.In()
	b.P("return nil, nil")
	b.Out()
	b.P("}")
	b.P("out := make(%s, n)", mapGo)
	b.P("for i := uint32(0); i < n; i++ {")
	b.In()
	b.P("k := %s", readScalarLiteral(key))
	b.P("out[k] = struct{}{}")
	b.Out()
	b.P("}")
	b.P("return out, nil")
	b.Out()
	b.P("}")
	b.P("")
}

// genArray implements fixed-size array generation ([N]T, Go's structural
// equivalent of a fixed-arity container): unlike Slice/List, the length is
// part of the type itself, so no collection header is written; an unmanaged
// element type bulk-copies the whole array in one call (spec.md §4.5
// "Fast-path rule").
func genArray(b *render.Buffer, ti metadata.TypeInfo) {
	elem := *ti.ElementType
	elemGo := goFieldType(elem)
	arrGo := fmt.Sprintf("[%d]%s", ti.ArrayLen, elemGo)

	b.P("func %s(value %s, w ninowire.Writer) error {", serializeFuncName(ti), arrGo)
	b.In()
	if elem.IsUnmanaged && !elem.IsPolymorphic {
		b.P("w.WriteBulkUnmanaged(ninowire.BulkCopy(&value))")
	} else {
		b.P("for i := range value {")
		b.In()
		writeScalarLiteral(b, "value[i]", elem)
		b.Out()
		b.P("}")
	}
	b.P("return nil")
	b.Out()
	b.P("}")
	b.P("")

	b.P("func %s(r ninowire.Reader) (%s, error) {", deserializeFuncName(ti), arrGo)
	b.In()
	b.P("var out %s", arrGo)
	if elem.IsUnmanaged && !elem.IsPolymorphic {
		b.P("ninowire.ReadBulk(r, &out)")
	} else {
		b.P("for i := range out {")
		b.In()
		b.P("out[i] = %s", readScalarLiteral(elem))
		b.Out()
		b.P("}")
	}
	b.P("return out, nil")
	b.Out()
	b.P("}")
	b.P("")
}

// writeScalarLiteral and readScalarLiteral emit the primitive write/read
// call for a builtin-shape leaf type; builtin shapes only ever nest
// primitives or other builtin shapes (never a bare user NinoType without
// going through a member), so this is a simpler subset of
// Emitter.writeScalar/readSingleMember that doesn't need a diag.Location.
func writeScalarLiteral(b *render.Buffer, access string, ti metadata.TypeInfo) {
	switch ti.SpecialType {
	case metadata.SpecialBool:
		b.P("w.WriteBool(%s)", access)
	case metadata.SpecialInt8, metadata.SpecialInt16, metadata.SpecialInt32:
		b.P("w.WriteInt32(int32(%s))", access)
	case metadata.SpecialInt64:
		b.P("w.WriteInt64(%s)", access)
	case metadata.SpecialUint8, metadata.SpecialByte, metadata.SpecialUint16, metadata.SpecialUint32:
		b.P("w.WriteUint32(uint32(%s))", access)
	case metadata.SpecialUint64:
		b.P("w.WriteUint64(%s)", access)
	case metadata.SpecialFloat32:
		b.P("w.WriteFloat32(%s)", access)
	case metadata.SpecialFloat64:
		b.P("w.WriteFloat64(%s)", access)
	case metadata.SpecialString:
		b.P("w.WriteString(%s)", access)
	default:
		b.P("%s(%s, w)", serializeFuncName(ti), access)
	}
}

func readScalarLiteral(ti metadata.TypeInfo) string {
	switch ti.SpecialType {
	case metadata.SpecialBool:
		return "r.ReadBool()"
	case metadata.SpecialInt8:
		return "int8(r.ReadInt32())"
	case metadata.SpecialInt16:
		return "int16(r.ReadInt32())"
	case metadata.SpecialInt32:
		return "r.ReadInt32()"
	case metadata.SpecialInt64:
		return "r.ReadInt64()"
	case metadata.SpecialUint8, metadata.SpecialByte:
		return "uint8(r.ReadUint32())"
	case metadata.SpecialUint16:
		return "uint16(r.ReadUint32())"
	case metadata.SpecialUint32:
		return "r.ReadUint32()"
	case metadata.SpecialUint64:
		return "r.ReadUint64()"
	case metadata.SpecialFloat32:
		return "r.ReadFloat32()"
	case metadata.SpecialFloat64:
		return "r.ReadFloat64()"
	case metadata.SpecialString:
		return "r.ReadString()"
	default:
		return deserializeFuncName(ti) + "(r)"
	}
}
