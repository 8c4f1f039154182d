// Package typeid computes the deterministic TypeId the rest of the
// pipeline uses as a wire tag and dispatch-table key (spec.md §3, §4.1,
// §8 "TypeId stability").
package typeid

// Of hashes a fully-qualified type name into the deterministic 32-bit id
// used as the wire's polymorphic prefix and as the NinoGraph/dispatch-table
// key. It must depend only on the string and must be stable across
// processes, platforms, and runs (spec.md §8), so it deliberately avoids
// Go's randomized map/string hash and any runtime type identity.
//
// The algorithm is the "classic dual-hash djb2 variant" spec.md §4.1 calls
// for: two independent djb2-style lanes (different seeds/multipliers) whose
// outputs are xored together, which is cheap, allocation-free, and gives a
// much lower collision rate across a large type universe than a single
// djb2 lane.
func Of(fullyQualifiedName string) uint32 {
	const (
		seedA = uint32(5381)
		seedB = uint32(52711)
		mulA  = uint32(33)
		mulB  = uint32(31)
	)
	ha, hb := seedA, seedB
	for i := 0; i < len(fullyQualifiedName); i++ {
		c := uint32(fullyQualifiedName[i])
		ha = ha*mulA + c
		hb = hb*mulB ^ c
	}
	return ha ^ hb
}
