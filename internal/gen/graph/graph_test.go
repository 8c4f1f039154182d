package graph_test

import (
	"context"
	"testing"

	"github.com/nino-lang/nino-go/internal/gen/extract"
	"github.com/nino-lang/nino-go/internal/gen/gentest"
	"github.com/nino-lang/nino-go/internal/gen/graph"
	"github.com/nino-lang/nino-go/internal/gen/metadata"
)

func build(t *testing.T, pkgPath, src string) *graph.NinoGraph {
	t.Helper()
	unit, err := gentest.Unit(pkgPath, src)
	if err != nil {
		t.Fatalf("gentest.Unit: %v", err)
	}
	exts, err := extract.Extract(context.Background(), unit, metadata.NewProjector())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return graph.Build(exts)
}

func idOf(t *testing.T, g *graph.NinoGraph, simpleName string) uint32 {
	t.Helper()
	for id, nt := range g.Types {
		if nt.Type.SimpleName == simpleName {
			return id
		}
	}
	t.Fatalf("no type named %s in graph", simpleName)
	return 0
}

const hierarchySrc = `package game

import "github.com/nino-lang/nino-go/ninoapi"

type A struct {
	_ ninoapi.Tag ` + "`nino:\"type\"`" + `
	Val int32
}

type B struct {
	A
	Name string
}

type C struct {
	B
	Flag bool
}
`

func TestBuildTopTypes(t *testing.T) {
	g := build(t, "example.com/hier", hierarchySrc)
	aID := idOf(t, g, "A")
	if !g.TopTypes[aID] {
		t.Errorf("A should be a top type")
	}
	bID := idOf(t, g, "B")
	if g.TopTypes[bID] {
		t.Errorf("B should not be a top type")
	}
}

func TestBuildTransitiveBaseTypes(t *testing.T) {
	g := build(t, "example.com/hier2", hierarchySrc)
	aID := idOf(t, g, "A")
	bID := idOf(t, g, "B")
	cID := idOf(t, g, "C")

	bases := g.BaseTypes[cID]
	if len(bases) != 2 {
		t.Fatalf("C.BaseTypes = %v, want [B A] (2 entries)", bases)
	}
	if bases[0] != bID || bases[1] != aID {
		t.Errorf("C.BaseTypes = %v, want [%d %d] (B then A)", bases, bID, aID)
	}
}

func TestBuildSubTypeInversion(t *testing.T) {
	g := build(t, "example.com/hier3", hierarchySrc)
	aID := idOf(t, g, "A")
	bID := idOf(t, g, "B")
	cID := idOf(t, g, "C")

	subsOfA := g.SubTypes[aID]
	if !containsUint32(subsOfA, bID) || !containsUint32(subsOfA, cID) {
		t.Errorf("SubTypes[A] = %v, want to contain B and C", subsOfA)
	}
}

func TestBuildDeepestFirstSubTypes(t *testing.T) {
	g := build(t, "example.com/hier4", hierarchySrc)
	aID := idOf(t, g, "A")
	bID := idOf(t, g, "B")
	cID := idOf(t, g, "C")

	order := g.DeepestFirstSubTypes(aID)
	if len(order) != 2 {
		t.Fatalf("DeepestFirstSubTypes(A) = %v, want 2 entries", order)
	}
	if order[0].Key() != cID || order[1].Key() != bID {
		t.Errorf("DeepestFirstSubTypes(A) = %v, want [C B] (deepest first)", order)
	}
}

func TestBuildDetectsSelfReferenceCycle(t *testing.T) {
	src := `package game

import "github.com/nino-lang/nino-go/ninoapi"

type Node struct {
	_    ninoapi.Tag ` + "`nino:\"type\"`" + `
	Val  int32
	Next *Node
}
`
	g := build(t, "example.com/cyc", src)
	nodeID := idOf(t, g, "Node")
	if !g.CircularTypes[nodeID] {
		t.Errorf("Node should be detected as circular (self-referencing pointer)")
	}
}

func TestBuildDoesNotFlagAcyclicTypes(t *testing.T) {
	g := build(t, "example.com/acyc", hierarchySrc)
	for id, nt := range g.Types {
		if g.CircularTypes[id] {
			t.Errorf("%s unexpectedly flagged circular", nt.Type.SimpleName)
		}
	}
}

func TestBuildUnresolvedParentIsSilentlyDropped(t *testing.T) {
	src := `package game

type External struct {
	Val int32
}
`
	// External has no nino tag, so it never enters the graph.
	g := build(t, "example.com/ext", src)
	if len(g.Types) != 0 {
		t.Errorf("expected no NinoTypes extracted, got %d", len(g.Types))
	}

	// Player embeds External: the unresolved parent gives Player no base
	// type and causes no error.
	embedSrc := `package game

import "github.com/nino-lang/nino-go/ninoapi"

type External struct {
	Val int32
}

type Player struct {
	_ ninoapi.Tag ` + "`nino:\"type\"`" + `
	External
	Name string
}
`
	g2 := build(t, "example.com/ext2", embedSrc)
	pID := idOf(t, g2, "Player")
	if len(g2.BaseTypes[pID]) != 0 {
		t.Errorf("Player.BaseTypes = %v, want none (External is not a NinoType)", g2.BaseTypes[pID])
	}
	if !g2.TopTypes[pID] {
		t.Errorf("Player should be a top type")
	}
}

func containsUint32(s []uint32, v uint32) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
