// Package metadata implements C1 of the nino pipeline (spec.md §4.1): it
// mines TypeInfo data-transfer records out of compiled Go package metadata.
// It projects go/types values into the value-equatable TypeInfo DTR
// defined here. Extraction (internal/gen/extract) also reads go/types
// objects from a Unit directly (struct fields, tags, embedded types,
// factory functions); the graph builder and the emitter consume only
// TypeInfo and extract's records.
package metadata

import "fmt"

// Kind classifies the shape of a TypeInfo, mirroring spec.md §3's
// {class, struct, interface, enum, array, pointer, ...} set, adapted to
// Go's own type vocabulary (Go has no class/struct distinction, no record
// keyword, and enums are idiomatically named-integer constants rather than
// a distinct type kind).
type Kind int

const (
	KindInvalid Kind = iota
	KindStruct
	KindInterface
	KindPointer
	KindArray // fixed-size array, T[N]
	KindSlice // T[], spec.md's dynamically-sized array rank
	KindMap
	KindBasic // bool, numeric kinds, string
	KindFunc
	KindChan
	KindTuple // multi-value shape used for (K,V) and n-ary tuples
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindSlice:
		return "slice"
	case KindMap:
		return "map"
	case KindBasic:
		return "basic"
	case KindFunc:
		return "func"
	case KindChan:
		return "chan"
	case KindTuple:
		return "tuple"
	default:
		return "invalid"
	}
}

// SpecialType identifies built-in primitives and well-known generic shapes
// that C5 has a dedicated structural-builtin generator for (spec.md §3
// "SpecialType for built-in primitives and well-known collection
// interfaces").
type SpecialType int

const (
	SpecialNone SpecialType = iota
	SpecialBool
	SpecialInt8
	SpecialInt16
	SpecialInt32
	SpecialInt64
	SpecialUint8
	SpecialUint16
	SpecialUint32
	SpecialUint64
	SpecialFloat32
	SpecialFloat64
	SpecialString
	SpecialByte // alias of Uint8, kept distinct for display purposes only

	SpecialNullable   // *T / pointer-to-value used as an option type
	SpecialArray      // [N]T
	SpecialSlice      // []T / List<T>
	SpecialMap        // map[K]V / Dictionary<K,V>
	SpecialStack      // a user type matching the Stack<T> shape (§4.5)
	SpecialQueue      // a user type matching the Queue<T> shape
	SpecialSet        // map[T]struct{} / HashSet<T>
	SpecialLinkedList // container/list.List-shaped
	SpecialPriorityQ  // container/heap-shaped
	SpecialKVP        // a (K, V) pair type, e.g. struct{ Key K; Value V }
	SpecialTuple      // a Go multi-field tuple-like struct, arity >= 1
)

// Accessibility mirrors Go's own two-level visibility (exported/unexported),
// a deliberate simplification of spec.md's richer {public, private,
// protected, internal, ...} set, which does not map onto Go.
type Accessibility int

const (
	AccessibilityUnknown Accessibility = iota
	AccessibilityPublic
	AccessibilityPrivate
)

// TypeInfo is the immutable, value-equatable projection of a single Go type
// (spec.md §3 "TypeInfo"). Two TypeInfo values with the same TypeId are
// interchangeable for dispatch; recursive TypeInfo (generic argument, array
// element, nullable underlying) is always fully materialized, never a
// forward reference, so Go's struct equality (and cmp.Equal for slices)
// already gives structural equality for free.
type TypeInfo struct {
	FullyQualifiedName string
	TypeId             uint32

	Kind          Kind
	SpecialType   SpecialType
	Accessibility Accessibility

	IsValueType    bool
	IsReferenceType bool
	IsUnmanaged    bool // no pointers anywhere in the transitive layout
	IsGeneric      bool
	IsAbstract     bool // true for interface kinds: no value of the interface itself is ever constructed
	IsSealed       bool
	IsStatic       bool
	IsPolymorphic  bool // interfaces, and non-sealed/non-final reference types (spec.md §4.3)

	// Generic shape: ordered type arguments, the unparameterized origin
	// string, and whether this TypeInfo denotes the generic definition
	// itself rather than an instantiation.
	TypeArguments       []TypeInfo
	OriginalDefinition  string
	IsGenericDefinition bool

	// Array/slice shape.
	ArrayRank    int   // 0 if not an array/slice
	ArrayLen     int64 // fixed length, set only when Kind == KindArray
	ElementType  *TypeInfo

	// Nullable shape (Go: pointer-to-value-type used as an optional).
	NullableUnderlying *TypeInfo

	// Tuple shape.
	TupleElements []TupleElement

	Namespace   string // Go package path
	Assembly    string // Go package path (Go has no separate assembly concept)
	PackageName string // Go package identifier, e.g. "game" for "example.com/game"

	DisplayName           string // e.g. "[]pkg.Foo"
	DisplayNameSanitized  string // multi-dim array syntax normalized, §4.1
	InstanceName          string // lowercase, identifier-safe, sigil-prefixed
	SimpleName            string // last path component, e.g. "Foo"
}

// TupleElement is one element of a tuple TypeInfo: a type plus an optional
// field name (spec.md §3 "tuple element sequence (TypeInfo + name)").
type TupleElement struct {
	Name string
	Type TypeInfo
}

// Equal reports whether two TypeInfo values are interchangeable for
// dispatch purposes (spec.md §3 invariant: "TypeId depends only on the FQN;
// two DTRs with the same TypeId are interchangeable for dispatch").
func (t TypeInfo) Equal(o TypeInfo) bool { return t.TypeId == o.TypeId }

func (t TypeInfo) String() string {
	return fmt.Sprintf("TypeInfo{%s, id=%08x, kind=%s}", t.DisplayName, t.TypeId, t.Kind)
}

// InstanceNameSigil prefixes every generated instance-variable name derived
// from a TypeInfo's display name, chosen to avoid collisions with user
// identifiers (spec.md §4.1 "Display-name sanitization").
const InstanceNameSigil = "nv_"
