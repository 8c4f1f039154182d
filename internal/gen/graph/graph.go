// Package graph implements C3 of the nino pipeline (spec.md §4.3): it
// merges extracted NinoType DTRs, deduplicates them by TypeId, computes
// transitive base-type lists and their inverse, marks top-types, and
// detects circular types. It runs once per input batch on a single thread
// (spec.md §5) and produces the NinoGraph that C4/C5 consume read-only.
package graph

import (
	"sort"

	"github.com/nino-lang/nino-go/internal/gen/extract"
)

// NinoGraph is the merged, deduplicated type hierarchy (spec.md §3
// "NinoGraph"). All maps are keyed by TypeId, which is the "TypeId-based
// equality for NinoType keys" the spec requires.
type NinoGraph struct {
	// Types holds every surviving NinoType, keyed by TypeId, after dedup.
	Types map[uint32]extract.NinoType

	// BaseTypes[id] lists every transitive ancestor of the type with that
	// id, walk-ordered (spec.md §9: "depth-first, base-first, interfaces in
	// declaration order" — Go's flat ParentTypeIds list already reflects
	// embedded-field declaration order, so the walk below preserves it
	// directly rather than separating a base-class lane from an
	// interface lane).
	BaseTypes map[uint32][]uint32

	// SubTypes[id] lists every type that has the type with that id
	// somewhere in its BaseTypes, i.e. the inverse of BaseTypes.
	SubTypes map[uint32][]uint32

	// TopTypes holds every type with zero resolved ancestors.
	TopTypes map[uint32]bool

	// CircularTypes holds every type found to be reachable from itself via
	// a member edge (see cycle.go).
	CircularTypes map[uint32]bool

	// TypeMap indexes every surviving type by its sanitized display name,
	// for fast lookup during emission (spec.md §3 "TypeMap: map
	// DisplayName → NinoType").
	TypeMap map[string]uint32
}

// Get returns the NinoType for id, or the zero value and false if id is not
// in the graph (e.g. an unresolved, silently-dropped external parent).
func (g *NinoGraph) Get(id uint32) (extract.NinoType, bool) {
	t, ok := g.Types[id]
	return t, ok
}

// Ancestors returns the NinoType values for BaseTypes[id], in walk order.
func (g *NinoGraph) Ancestors(id uint32) []extract.NinoType {
	var out []extract.NinoType
	for _, aid := range g.BaseTypes[id] {
		if t, ok := g.Types[aid]; ok {
			out = append(out, t)
		}
	}
	return out
}

// DeepestFirstSubTypes returns the direct and transitive sub-types of id,
// ordered deepest-first by ancestor count, the order spec.md §4.4.1 and
// §4.4.2 require for polymorphic dispatch case generation: "ordered
// deepest-first by ancestor count". Ties are broken by TypeId for
// determinism.
func (g *NinoGraph) DeepestFirstSubTypes(id uint32) []extract.NinoType {
	seen := map[uint32]bool{}
	var ids []uint32
	var walk func(uint32)
	walk = func(cur uint32) {
		for _, sub := range g.SubTypes[cur] {
			if seen[sub] {
				continue
			}
			seen[sub] = true
			ids = append(ids, sub)
			walk(sub)
		}
	}
	walk(id)

	sort.SliceStable(ids, func(i, j int) bool {
		di, dj := len(g.BaseTypes[ids[i]]), len(g.BaseTypes[ids[j]])
		if di != dj {
			return di > dj
		}
		return ids[i] < ids[j]
	})

	out := make([]extract.NinoType, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.Types[id])
	}
	return out
}

// Build implements spec.md §4.3 end to end: dedup, base walk, sub-type
// inversion, top-type marking, and cycle detection, returning the finished
// NinoGraph with IsPolymorphic/IsCircular/HierarchyLevel filled in on every
// contained NinoType.
func Build(extractions []extract.Extraction) *NinoGraph {
	g := &NinoGraph{
		Types:         map[uint32]extract.NinoType{},
		BaseTypes:     map[uint32][]uint32{},
		SubTypes:      map[uint32][]uint32{},
		TopTypes:      map[uint32]bool{},
		CircularTypes: map[uint32]bool{},
		TypeMap:       map[string]uint32{},
	}

	dedup(g, extractions)
	for id := range g.Types {
		g.BaseTypes[id] = walkBases(g, id, map[uint32]bool{id: true})
	}
	for id, bases := range g.BaseTypes {
		if len(bases) == 0 {
			g.TopTypes[id] = true
		}
	}
	invertSubTypes(g)
	detectCircular(g)

	for id, nt := range g.Types {
		// A type with sub-types in the graph is a dispatch base even when
		// its own TypeInfo is a (sealed) struct.
		nt.IsPolymorphic = len(nt.ParentTypeIds) > 0 || nt.Type.IsPolymorphic || len(g.SubTypes[id]) > 0
		nt.IsCircular = g.CircularTypes[id]
		nt.HierarchyLevel = len(g.BaseTypes[id])
		g.Types[id] = nt
	}

	return g
}

// dedup implements "Collapse by TypeId; direct-attribute types win over
// inherited" (spec.md §4.3 "Dedup").
func dedup(g *NinoGraph, extractions []extract.Extraction) {
	for _, e := range extractions {
		if e.Skipped {
			continue
		}
		id := e.Type.Key()
		existing, ok := g.Types[id]
		if ok {
			// Replace only if the new one is direct and the existing one
			// was not already recorded as winning via direct extraction.
			// extract.Extract never emits two Direct extractions for the
			// same TypeId (one type, one declaration), so the only
			// meaningful conflict is direct-over-inherited.
			if !bool(e.Direct) {
				continue
			}
			_ = existing
		}
		g.Types[id] = e.Type
		g.TypeMap[e.Type.Type.DisplayNameSanitized] = id
	}
}

// walkBases resolves each parent TypeId against the set of all NinoTypes,
// accumulating the transitive ancestor list with duplicate suppression,
// order preserved by walk order. Unresolved parents (external types) are
// silently dropped (spec.md §4.3 "Base walk").
func walkBases(g *NinoGraph, id uint32, visiting map[uint32]bool) []uint32 {
	nt, ok := g.Types[id]
	if !ok {
		return nil
	}

	var out []uint32
	seen := map[uint32]bool{}
	for _, pid := range nt.ParentTypeIds {
		if _, ok := g.Types[pid]; !ok {
			continue // unresolved external parent: not an error, just dropped
		}
		if !seen[pid] {
			seen[pid] = true
			out = append(out, pid)
		}
		if visiting[pid] {
			continue // guards against a malformed embed cycle; NinoType parent ids should never cycle
		}
		visiting[pid] = true
		for _, transitive := range walkBases(g, pid, visiting) {
			if !seen[transitive] {
				seen[transitive] = true
				out = append(out, transitive)
			}
		}
	}
	return out
}

// invertSubTypes implements "Sub-type inversion" (spec.md §4.3): for each
// derived t with ancestors [a1, a2, ...], for each ai, append t to
// SubTypes[ai] if not present.
func invertSubTypes(g *NinoGraph) {
	ids := sortedKeys(g.Types)
	for _, id := range ids {
		for _, ancestor := range g.BaseTypes[id] {
			if !containsID(g.SubTypes[ancestor], id) {
				g.SubTypes[ancestor] = append(g.SubTypes[ancestor], id)
			}
		}
	}
}

func containsID(ids []uint32, id uint32) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func sortedKeys(m map[uint32]extract.NinoType) []uint32 {
	out := make([]uint32, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
