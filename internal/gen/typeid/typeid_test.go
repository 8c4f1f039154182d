package typeid

import "testing"

func TestOfIsStableAcrossCalls(t *testing.T) {
	const fqn = "example.com/pkg.MyType"
	a := Of(fqn)
	b := Of(fqn)
	if a != b {
		t.Fatalf("Of(%q) = %d, %d; want equal", fqn, a, b)
	}
}

func TestOfDiffersForDifferentNames(t *testing.T) {
	x := Of("example.com/pkg.A")
	y := Of("example.com/pkg.B")
	if x == y {
		t.Fatalf("Of produced the same id for two different names: %d", x)
	}
}

func TestOfDoesNotCollideOnCommonPrefixes(t *testing.T) {
	names := []string{
		"pkg.A", "pkg.AA", "pkg.AAA",
		"pkg.Base", "pkg.BaseImpl", "pkg.BaseImplV2",
	}
	seen := map[uint32]string{}
	for _, n := range names {
		id := Of(n)
		if prev, ok := seen[id]; ok {
			t.Errorf("Of(%q) collided with Of(%q) = %d", n, prev, id)
		}
		seen[id] = n
	}
}
