// Package diag implements the nino pipeline's error-handling taxonomy
// (spec.md §7): StructuralReject, MissingMember, and EmissionFailure are
// collected here as Diagnostic values during C2/C4/C5; InvalidPayload is a
// runtime concern and lives in ninowire instead. The Collector plays the
// role the teacher's internal/fix/stats.go ReportStats entries play for
// open2opaque: accumulate structured findings during a pass, then let the
// driver decide what to do with them (log, fail the batch, emit a stub).
package diag

import (
	"fmt"
	"sync"
)

// Kind is the taxonomy of spec.md §7.
type Kind int

const (
	// StructuralReject: input fails extraction (bad generics, inaccessible,
	// not a NinoType). Silent drop at the call site; the Diagnostic exists
	// for observability only, never blocks the batch.
	StructuralReject Kind = iota
	// MissingMember: at emit time, a member type has no resolvable codec.
	// The type that owns the member is skipped; its siblings still emit.
	MissingMember
	// EmissionFailure: an internal invariant breaks mid-emission. The
	// driver writes a comment-only stub artifact for that type and
	// continues with the rest of the batch.
	EmissionFailure
)

func (k Kind) String() string {
	switch k {
	case StructuralReject:
		return "structural_reject"
	case MissingMember:
		return "missing_member"
	case EmissionFailure:
		return "emission_failure"
	default:
		return fmt.Sprintf("diag.Kind(%d)", int(k))
	}
}

// Location pinpoints a Diagnostic within a type declaration, mirroring the
// teacher's spb.Location without the AST-position machinery: nino-go
// diagnostics are attached to declared names, not byte offsets, since C2
// onward never touches go/token positions.
type Location struct {
	Package string
	Type    string
	Member  string // empty when the diagnostic is about the type as a whole
}

func (l Location) String() string {
	if l.Member == "" {
		return fmt.Sprintf("%s.%s", l.Package, l.Type)
	}
	return fmt.Sprintf("%s.%s.%s", l.Package, l.Type, l.Member)
}

// Diagnostic is one finding produced during extraction or emission.
type Diagnostic struct {
	Kind     Kind
	Location Location
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Kind, d.Location, d.Message)
}

// Collector accumulates Diagnostics across a concurrent C4/C5 emission
// batch (spec.md §5: "parallel-per-node emission"), the same role the
// teacher's mutex-guarded stats accumulation plays across its own
// concurrent dstutil.Apply passes.
type Collector struct {
	mu    sync.Mutex
	found []Diagnostic
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add records d, safe for concurrent callers.
func (c *Collector) Add(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.found = append(c.found, d)
}

// Reject is a convenience wrapper for a StructuralReject at loc.
func (c *Collector) Reject(loc Location, format string, a ...any) {
	c.Add(Diagnostic{Kind: StructuralReject, Location: loc, Message: fmt.Sprintf(format, a...)})
}

// MissingMember is a convenience wrapper for a MissingMember diagnostic.
func (c *Collector) MissingMember(loc Location, format string, a ...any) {
	c.Add(Diagnostic{Kind: MissingMember, Location: loc, Message: fmt.Sprintf(format, a...)})
}

// EmissionFailure is a convenience wrapper for an EmissionFailure
// diagnostic.
func (c *Collector) EmissionFailure(loc Location, format string, a ...any) {
	c.Add(Diagnostic{Kind: EmissionFailure, Location: loc, Message: fmt.Sprintf(format, a...)})
}

// All returns every Diagnostic recorded so far, in recording order.
func (c *Collector) All() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.found))
	copy(out, c.found)
	return out
}

// CountOf returns how many recorded Diagnostics have the given Kind.
func (c *Collector) CountOf(k Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.found {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Empty reports whether no Diagnostics have been recorded.
func (c *Collector) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.found) == 0
}
