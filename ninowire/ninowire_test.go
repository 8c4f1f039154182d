package ninowire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTripPrimitives(t *testing.T) {
	w := NewWriter()
	w.WriteBool(true)
	w.WriteByte(0xAB)
	w.WriteUint32(42)
	w.WriteInt32(-7)
	w.WriteUint64(1 << 40)
	w.WriteInt64(-(1 << 40))
	w.WriteFloat32(3.5)
	w.WriteFloat64(2.25)
	w.WriteString("héllo")
	w.WriteUTF8String("utf8 string")

	r := NewReader(w.Bytes())
	assert.Equal(t, true, r.ReadBool())
	assert.Equal(t, byte(0xAB), r.ReadByte())
	assert.Equal(t, uint32(42), r.ReadUint32())
	assert.Equal(t, int32(-7), r.ReadInt32())
	assert.Equal(t, uint64(1<<40), r.ReadUint64())
	assert.Equal(t, int64(-(1<<40)), r.ReadInt64())
	assert.Equal(t, float32(3.5), r.ReadFloat32())
	assert.Equal(t, float64(2.25), r.ReadFloat64())
	assert.Equal(t, "héllo", r.ReadString())
	assert.Equal(t, "utf8 string", r.ReadUTF8String())
	assert.True(t, r.Eof())
}

func TestWeakVersionToleranceFraming(t *testing.T) {
	w := NewWriter()
	off := w.Reserve()
	w.WriteUint32(1)
	w.WriteUint32(2)
	w.PatchLength(off)

	r := NewReader(w.Bytes())
	r.SkipFramed()
	assert.True(t, r.Eof(), "SkipFramed should consume exactly the framed region")
}

type bulkPair struct {
	A int32
	B int32
}

func TestBulkCopyRoundTripsThroughReadBulk(t *testing.T) {
	w := NewWriter()
	src := bulkPair{A: 11, B: -22}
	w.WriteBulkUnmanaged(BulkCopy(&src))

	r := NewReader(w.Bytes())
	var dst bulkPair
	ReadBulk(r, &dst)
	assert.Equal(t, src, dst)
}

func TestRegistryRegisterIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	calls := 0
	ser := SerializeFunc(func(value any, w Writer) error { calls++; return nil })
	de := DeserializeFunc(func(r Reader) (any, error) { return nil, nil })

	reg.Register(0x1234, ser, de)
	reg.Register(0x1234, ser, de)

	gotSer, gotDe, ok := reg.Lookup(0x1234)
	require.True(t, ok)
	require.NotNil(t, gotSer)
	require.NotNil(t, gotDe)

	_ = gotSer(nil, NewWriter())
	assert.Equal(t, 1, calls)
}

func TestRegistryLookupMissReturnsNotOK(t *testing.T) {
	reg := NewRegistry()
	_, _, ok := reg.Lookup(0xDEAD)
	assert.False(t, ok)
}

func TestRegistryMarkReadyIsObservable(t *testing.T) {
	reg := NewRegistry()
	assert.False(t, reg.Ready())
	reg.MarkReady()
	assert.True(t, reg.Ready())
}

func TestInvalidPayloadErrorMessage(t *testing.T) {
	err := &InvalidPayloadError{TypeName: "Player", Reason: "unknown id 0xdeadbeef"}
	assert.Contains(t, err.Error(), "Player")
	assert.Contains(t, err.Error(), "unknown id 0xdeadbeef")
}

func TestNullCollectionHeaderIsDistinctFromEmpty(t *testing.T) {
	w := NewWriter()
	w.WriteUint32(0)
	w.WriteUint32(NullCollectionHeader)
	r := NewReader(w.Bytes())
	assert.Equal(t, uint32(0), r.ReadUint32(), "an empty-but-present collection writes a zero header")
	assert.Equal(t, NullCollectionHeader, r.ReadUint32(), "a nil collection writes the reserved sentinel header")
}
