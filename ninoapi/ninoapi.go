// Package ninoapi defines the surface that user code uses to opt a type
// into the nino code generator. It has no runtime behavior of its own: the
// generator (internal/gen/extract) reads the struct tags and the marker
// interface declared here via go/types, it never imports this package's
// symbols at generation time.
package ninoapi

// Tag is embedded (by value, as an unexported-by-convention field) in a
// struct to opt it into extraction:
//
//	type Player struct {
//		_    ninoapi.Tag `nino:"type"`
//		Name string
//		HP   int
//	}
//
// The struct tag on the Tag field carries the NinoType options described by
// spec.md §4.2, comma-separated after the literal "type":
//
//	nino:"type"                                  // defaults: autoCollect, allow inheritance, public members only
//	nino:"type,containNonPublicMembers"          // include unexported fields
//	nino:"type,noInherit"                        // allowInheritance=false
//	nino:"type,noAutoCollect"                    // autoCollect=false
//
// A type that embeds a Tagged type (directly or transitively through a
// chain of embedded structs or implemented interfaces) is itself a C2 input
// unless the nearest ancestor that carries the tag set noInherit.
type Tag struct{}

// Tagged is satisfied by any type that embeds Tag. It exists purely so the
// extractor can recognize inheritance through interface satisfaction, not
// just through struct embedding: a type that implements an interface which
// embeds Tagged participates in the attribute-inheritance walk of §4.2 the
// same way an embedded struct does.
type Tagged interface {
	ninoTagged()
}

// ninoTagged is never actually implemented by user code; the extractor
// never calls it; it exists only to make Tagged an identifiable marker
// interface in the go/types universe.
func (Tag) ninoTagged() {}

// Member-level struct tag keys, read off individual field/property tags
// under the `nino` key, comma-separated:
//
//	Name string `nino:"-"`                    // excluded from extraction
//	Raw  []byte `nino:"utf8"`                 // meaningless for non-strings, ignored with a warning by extraction
//	Text string `nino:"utf8"`                 // use the UTF-8 wire path instead of length-prefixed UTF-16
//	Odd  Thing  `nino:"formatter=codecs.OddFormatter"`
const (
	// TagKey is the struct tag key the extractor reads.
	TagKey = "nino"

	// TagType marks a type as a NinoType when present as the first
	// comma-separated element of a Tag field's tag value.
	TagType = "type"

	// TagSkip excludes a member from extraction.
	TagSkip = "-"

	// TagUTF8 opts a string member into the UTF-8 wire path (§6).
	TagUTF8 = "utf8"

	// TagFormatterPrefix, followed by "=<formatter type display name>",
	// names a custom per-member formatter (§3 NinoMember.CustomFormatter).
	TagFormatterPrefix = "formatter="

	// OptContainNonPublicMembers includes unexported fields in extraction.
	OptContainNonPublicMembers = "containNonPublicMembers"

	// OptNoAutoCollect disables autoCollect (defaults to true otherwise).
	OptNoAutoCollect = "noAutoCollect"

	// OptNoInherit sets allowInheritance=false: the attribute-inheritance
	// walk of §4.2 stops here even if this type itself is reached only by
	// inheritance.
	OptNoInherit = "noInherit"
)
