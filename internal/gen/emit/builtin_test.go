package emit_test

import (
	"strings"
	"testing"

	"github.com/nino-lang/nino-go/internal/driver/config"
	"github.com/nino-lang/nino-go/internal/gen/diag"
	"github.com/nino-lang/nino-go/internal/gen/emit"
	"github.com/nino-lang/nino-go/internal/gen/graph"
	"github.com/nino-lang/nino-go/internal/gen/metadata"
)

func int32Type() metadata.TypeInfo {
	return metadata.TypeInfo{SpecialType: metadata.SpecialInt32, DisplayName: "int32", Kind: metadata.KindBasic, IsUnmanaged: true}
}

func stringType() metadata.TypeInfo {
	return metadata.TypeInfo{SpecialType: metadata.SpecialString, DisplayName: "string", Kind: metadata.KindBasic}
}

func TestEmitBuiltinNullable(t *testing.T) {
	elem := int32Type()
	ti := metadata.TypeInfo{
		SimpleName:         "NullableInt32",
		SpecialType:        metadata.SpecialNullable,
		NullableUnderlying: &elem,
	}
	e := emit.New(graph.Build(nil), config.Default(), diag.NewCollector())
	src, ok, err := e.EmitBuiltin("game", ti)
	if err != nil {
		t.Fatalf("EmitBuiltin: %v", err)
	}
	if !ok {
		t.Fatalf("expected Nullable shape to match a catalogue entry")
	}
	out := string(src)
	if !strings.Contains(out, "package game") {
		t.Errorf("expected the builtin shape to be emitted into the referencing package:\n%s", out)
	}
	if !strings.Contains(out, "func SerializeNullableInt32(value *int32, w ninowire.Writer) error {") {
		t.Errorf("unexpected serializer signature:\n%s", out)
	}
	if !strings.Contains(out, "w.WriteBool(false)") || !strings.Contains(out, "w.WriteBool(true)") {
		t.Errorf("expected a present/absent bool tag:\n%s", out)
	}
	if !strings.Contains(out, "func DeserializeNullableInt32(r ninowire.Reader) (*int32, error) {") {
		t.Errorf("unexpected deserializer signature:\n%s", out)
	}
}

func TestEmitBuiltinKVPBulkCopiesUnmanagedPair(t *testing.T) {
	key, val := int32Type(), int32Type()
	ti := metadata.TypeInfo{
		SimpleName:  "KeyValuePairInt32Int32",
		SpecialType: metadata.SpecialKVP,
		TupleElements: []metadata.TupleElement{
			{Name: "Key", Type: key},
			{Name: "Value", Type: val},
		},
	}
	e := emit.New(graph.Build(nil), config.Default(), diag.NewCollector())
	src, ok, err := e.EmitBuiltin("game", ti)
	if err != nil {
		t.Fatalf("EmitBuiltin: %v", err)
	}
	if !ok {
		t.Fatalf("expected KVP shape to match a catalogue entry")
	}
	out := string(src)
	if !strings.Contains(out, "w.WriteBulkUnmanaged(ninowire.BulkCopy(") {
		t.Errorf("expected an all-unmanaged KVP to bulk-copy:\n%s", out)
	}
	if !strings.Contains(out, "ninowire.ReadBulk(r, &bulk)") {
		t.Errorf("expected a symmetric bulk read:\n%s", out)
	}
}

func TestEmitBuiltinKVPMixedPairWritesFieldwise(t *testing.T) {
	key, val := int32Type(), stringType()
	ti := metadata.TypeInfo{
		SimpleName:  "KeyValuePairInt32String",
		SpecialType: metadata.SpecialKVP,
		TupleElements: []metadata.TupleElement{
			{Name: "Key", Type: key},
			{Name: "Value", Type: val},
		},
	}
	e := emit.New(graph.Build(nil), config.Default(), diag.NewCollector())
	src, ok, err := e.EmitBuiltin("game", ti)
	if err != nil {
		t.Fatalf("EmitBuiltin: %v", err)
	}
	if !ok {
		t.Fatalf("expected KVP shape to match a catalogue entry")
	}
	out := string(src)
	if strings.Contains(out, "ninowire.BulkCopy") {
		t.Errorf("a string-valued pair is not unmanaged and must not bulk-copy:\n%s", out)
	}
	if !strings.Contains(out, "w.WriteInt32(int32(key))") || !strings.Contains(out, "w.WriteString(value)") {
		t.Errorf("expected fieldwise key/value writes:\n%s", out)
	}
}

func TestEmitBuiltinSliceOfUnmanagedElement(t *testing.T) {
	elem := int32Type()
	ti := metadata.TypeInfo{
		SimpleName:  "Int32Slice",
		Kind:        metadata.KindSlice,
		ElementType: &elem,
	}
	e := emit.New(graph.Build(nil), config.Default(), diag.NewCollector())
	src, ok, err := e.EmitBuiltin("game", ti)
	if err != nil {
		t.Fatalf("EmitBuiltin: %v", err)
	}
	if !ok {
		t.Fatalf("expected slice shape to match a catalogue entry")
	}
	out := string(src)
	if !strings.Contains(out, "func SerializeInt32Slice(value []int32, w ninowire.Writer) error {") {
		t.Errorf("unexpected serializer signature:\n%s", out)
	}
	if !strings.Contains(out, "ninowire.NullCollectionHeader") {
		t.Errorf("expected a null-vs-empty collection header distinction:\n%s", out)
	}
	if !strings.Contains(out, "ninowire.BulkCopy(&value[i])") {
		t.Errorf("expected per-element bulk copy for an unmanaged element type:\n%s", out)
	}
}

func TestEmitBuiltinMap(t *testing.T) {
	key, val := stringType(), int32Type()
	ti := metadata.TypeInfo{
		SimpleName:    "StringInt32Map",
		Kind:          metadata.KindMap,
		TypeArguments: []metadata.TypeInfo{key, val},
	}
	e := emit.New(graph.Build(nil), config.Default(), diag.NewCollector())
	src, ok, err := e.EmitBuiltin("game", ti)
	if err != nil {
		t.Fatalf("EmitBuiltin: %v", err)
	}
	if !ok {
		t.Fatalf("expected map shape to match a catalogue entry")
	}
	out := string(src)
	if !strings.Contains(out, "func SerializeStringInt32Map(value map[string]int32, w ninowire.Writer) error {") {
		t.Errorf("unexpected serializer signature:\n%s", out)
	}
	if !strings.Contains(out, "func DeserializeStringInt32Map(r ninowire.Reader) (map[string]int32, error) {") {
		t.Errorf("unexpected deserializer signature:\n%s", out)
	}
}

func TestEmitBuiltinSetWritesKeysOnlyNoValues(t *testing.T) {
	key := stringType()
	ti := metadata.TypeInfo{
		SimpleName:    "StringSet",
		Kind:          metadata.KindMap,
		SpecialType:   metadata.SpecialSet,
		TypeArguments: []metadata.TypeInfo{key, {Kind: metadata.KindStruct, FullyQualifiedName: "struct{}"}},
	}
	e := emit.New(graph.Build(nil), config.Default(), diag.NewCollector())
	src, ok, err := e.EmitBuiltin("game", ti)
	if err != nil {
		t.Fatalf("EmitBuiltin: %v", err)
	}
	if !ok {
		t.Fatalf("expected Set shape to match a catalogue entry")
	}
	out := string(src)
	if !strings.Contains(out, "func SerializeStringSet(value map[string]struct{}, w ninowire.Writer) error {") {
		t.Errorf("unexpected serializer signature:\n%s", out)
	}
	if !strings.Contains(out, "for k := range value {") {
		t.Errorf("expected a keys-only range over the set:\n%s", out)
	}
	if strings.Contains(out, "out[k] = v") {
		t.Errorf("a set has no values to write:\n%s", out)
	}
}

func TestEmitBuiltinFixedArrayBulkCopiesUnmanagedElement(t *testing.T) {
	elem := int32Type()
	ti := metadata.TypeInfo{
		SimpleName:  "Int32Array3",
		Kind:        metadata.KindArray,
		ElementType: &elem,
		ArrayLen:    3,
	}
	e := emit.New(graph.Build(nil), config.Default(), diag.NewCollector())
	src, ok, err := e.EmitBuiltin("game", ti)
	if err != nil {
		t.Fatalf("EmitBuiltin: %v", err)
	}
	if !ok {
		t.Fatalf("expected Array shape to match a catalogue entry")
	}
	out := string(src)
	if !strings.Contains(out, "func SerializeInt32Array3(value [3]int32, w ninowire.Writer) error {") {
		t.Errorf("unexpected serializer signature:\n%s", out)
	}
	if !strings.Contains(out, "w.WriteBulkUnmanaged(ninowire.BulkCopy(&value))") {
		t.Errorf("expected a single bulk copy for an unmanaged fixed array:\n%s", out)
	}
	if !strings.Contains(out, "func DeserializeInt32Array3(r ninowire.Reader) ([3]int32, error) {") {
		t.Errorf("unexpected deserializer signature:\n%s", out)
	}
}

func TestEmitBuiltinUnmatchedShapeReturnsNotOK(t *testing.T) {
	ti := metadata.TypeInfo{SimpleName: "Plain", Kind: metadata.KindStruct}
	e := emit.New(graph.Build(nil), config.Default(), diag.NewCollector())
	_, ok, err := e.EmitBuiltin("game", ti)
	if err != nil {
		t.Fatalf("EmitBuiltin: %v", err)
	}
	if ok {
		t.Errorf("expected a plain struct shape to match no catalogue entry")
	}
}
