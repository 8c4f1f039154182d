package graph

import "github.com/nino-lang/nino-go/internal/gen/metadata"

// detectCircular implements spec.md §4.3 "Cycle detection". Per the
// Open-Questions note in spec.md §9 ("Replace any natural object-identity
// cycle with node + adjacency table keyed by stable id"), this runs over
// every NinoType rather than only ones the host language would call
// "reference types": in Go every extracted NinoType is a struct (a value
// type at the language level), so the spec's "skip value types, they
// cannot form managed cycles" rule is instead enforced at the member-edge
// granularity below (an unmanaged value-typed leaf member can never carry a
// reference edge forward), which is where a Go rendition can actually
// observe the distinction the spec is drawing.
func detectCircular(g *NinoGraph) {
	for id := range g.Types {
		if reachesSelfOrAncestor(g, id) {
			g.CircularTypes[id] = true
		}
	}
}

func reachesSelfOrAncestor(g *NinoGraph, id uint32) bool {
	nt, ok := g.Types[id]
	if !ok {
		return false
	}

	target := map[uint32]bool{id: true}
	for _, a := range g.BaseTypes[id] {
		target[a] = true
	}

	visited := map[uint32]bool{id: true}
	for _, m := range nt.Members {
		if reaches(g, m.Type, target, visited) {
			return true
		}
	}
	return false
}

// reaches performs the bounded DFS of spec.md §4.3: it treats direct
// self-reference, upward references to an ancestor, generic type
// arguments, array/slice element types, nullable underlyings, and
// transitive traversal through the members of any other encountered
// NinoType as edges. Value-type, unmanaged leaves terminate the walk
// without contributing an edge ("Value-type members and unmanaged members
// cannot contribute to a cycle").
func reaches(g *NinoGraph, ti metadata.TypeInfo, target, visited map[uint32]bool) bool {
	if target[ti.TypeId] {
		return true
	}
	if ti.IsValueType && ti.IsUnmanaged {
		return false
	}

	for _, arg := range ti.TypeArguments {
		if reaches(g, arg, target, visited) {
			return true
		}
	}
	if ti.ElementType != nil && reaches(g, *ti.ElementType, target, visited) {
		return true
	}
	if ti.NullableUnderlying != nil && reaches(g, *ti.NullableUnderlying, target, visited) {
		return true
	}

	if nt, ok := g.Types[ti.TypeId]; ok {
		if visited[ti.TypeId] {
			return false
		}
		visited[ti.TypeId] = true
		for _, m := range nt.Members {
			if reaches(g, m.Type, target, visited) {
				return true
			}
		}
	}

	return false
}
