package diag_test

import (
	"sync"
	"testing"

	"github.com/nino-lang/nino-go/internal/gen/diag"
)

func TestCollectorAddAndAll(t *testing.T) {
	c := diag.NewCollector()
	if !c.Empty() {
		t.Fatalf("new collector should be empty")
	}
	c.Reject(diag.Location{Package: "game", Type: "Player"}, "bad generics")
	c.MissingMember(diag.Location{Package: "game", Type: "Player", Member: "Inventory"}, "no codec for %s", "Item")

	all := c.All()
	if len(all) != 2 {
		t.Fatalf("All() = %d diagnostics, want 2", len(all))
	}
	if all[0].Kind != diag.StructuralReject {
		t.Errorf("all[0].Kind = %v, want StructuralReject", all[0].Kind)
	}
	if all[1].Kind != diag.MissingMember {
		t.Errorf("all[1].Kind = %v, want MissingMember", all[1].Kind)
	}
	if all[1].Location.String() != "game.Player.Inventory" {
		t.Errorf("all[1].Location.String() = %q, want %q", all[1].Location.String(), "game.Player.Inventory")
	}
}

func TestCollectorCountOf(t *testing.T) {
	c := diag.NewCollector()
	c.EmissionFailure(diag.Location{Package: "game", Type: "Player"}, "panic: %v", "nil member type")
	c.EmissionFailure(diag.Location{Package: "game", Type: "Enemy"}, "panic: %v", "nil member type")
	c.Reject(diag.Location{Package: "game", Type: "Bad"}, "unbound generic")

	if n := c.CountOf(diag.EmissionFailure); n != 2 {
		t.Errorf("CountOf(EmissionFailure) = %d, want 2", n)
	}
	if n := c.CountOf(diag.StructuralReject); n != 1 {
		t.Errorf("CountOf(StructuralReject) = %d, want 1", n)
	}
	if n := c.CountOf(diag.MissingMember); n != 0 {
		t.Errorf("CountOf(MissingMember) = %d, want 0", n)
	}
}

func TestCollectorConcurrentAdd(t *testing.T) {
	c := diag.NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.MissingMember(diag.Location{Package: "game", Type: "T"}, "concurrent %d", i)
		}(i)
	}
	wg.Wait()
	if n := len(c.All()); n != 50 {
		t.Errorf("All() returned %d diagnostics, want 50", n)
	}
}
