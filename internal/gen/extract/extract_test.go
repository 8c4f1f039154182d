package extract_test

import (
	"context"
	"testing"

	"github.com/nino-lang/nino-go/internal/gen/extract"
	"github.com/nino-lang/nino-go/internal/gen/gentest"
	"github.com/nino-lang/nino-go/internal/gen/metadata"
)

const pkgPath = "example.com/game"

func mustExtract(t *testing.T, src string) []extract.Extraction {
	t.Helper()
	unit, err := gentest.Unit(pkgPath, src)
	if err != nil {
		t.Fatalf("gentest.Unit: %v", err)
	}
	exts, err := extract.Extract(context.Background(), unit, metadata.NewProjector())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return exts
}

func findByName(t *testing.T, exts []extract.Extraction, simpleName string) extract.Extraction {
	t.Helper()
	for _, e := range exts {
		if e.Type.Type.SimpleName == simpleName {
			return e
		}
	}
	t.Fatalf("no extraction named %s among %d extractions", simpleName, len(exts))
	return extract.Extraction{}
}

func TestExtractDirectlyTaggedStruct(t *testing.T) {
	src := `package game

import "github.com/nino-lang/nino-go/ninoapi"

type Player struct {
	_    ninoapi.Tag ` + "`nino:\"type\"`" + `
	Name string
	HP   int32
}
`
	exts := mustExtract(t, src)
	p := findByName(t, exts, "Player")
	if !bool(p.Direct) {
		t.Errorf("Player.Direct = false, want true")
	}
	if p.Skipped {
		t.Errorf("Player.Skipped = true, want false")
	}
	if len(p.Type.Members) != 2 {
		t.Fatalf("Player.Members = %+v, want 2 members", p.Type.Members)
	}
}

func TestExtractSkipsNonPublicMembersByDefault(t *testing.T) {
	src := `package game

import "github.com/nino-lang/nino-go/ninoapi"

type Player struct {
	_    ninoapi.Tag ` + "`nino:\"type\"`" + `
	Name string
	hp   int32
}
`
	exts := mustExtract(t, src)
	p := findByName(t, exts, "Player")
	for _, m := range p.Type.Members {
		if m.Name == "hp" {
			t.Errorf("unexported member hp was extracted without containNonPublicMembers")
		}
	}
}

func TestExtractIncludesNonPublicMembersWhenOptedIn(t *testing.T) {
	src := `package game

import "github.com/nino-lang/nino-go/ninoapi"

type Player struct {
	_    ninoapi.Tag ` + "`nino:\"type,containNonPublicMembers\"`" + `
	Name string
	hp   int32
}
`
	exts := mustExtract(t, src)
	p := findByName(t, exts, "Player")
	found := false
	for _, m := range p.Type.Members {
		if m.Name == "hp" {
			found = true
			if !m.IsPrivate {
				t.Errorf("hp.IsPrivate = false, want true")
			}
		}
	}
	if !found {
		t.Errorf("hp not extracted despite containNonPublicMembers")
	}
}

func TestExtractSkipsMemberTaggedDash(t *testing.T) {
	src := `package game

import "github.com/nino-lang/nino-go/ninoapi"

type Player struct {
	_       ninoapi.Tag ` + "`nino:\"type\"`" + `
	Name    string
	Cache   int32 ` + "`nino:\"-\"`" + `
}
`
	exts := mustExtract(t, src)
	p := findByName(t, exts, "Player")
	for _, m := range p.Type.Members {
		if m.Name == "Cache" {
			t.Errorf("Cache member should have been skipped via nino:\"-\"")
		}
	}
}

func TestExtractInheritsTagThroughEmbeddedStruct(t *testing.T) {
	src := `package game

import "github.com/nino-lang/nino-go/ninoapi"

type Entity struct {
	_  ninoapi.Tag ` + "`nino:\"type\"`" + `
	ID int32
}

type Player struct {
	Entity
	Name string
}
`
	exts := mustExtract(t, src)
	p := findByName(t, exts, "Player")
	if bool(p.Direct) {
		t.Errorf("Player.Direct = true, want false (inherited)")
	}
	if len(p.Type.ParentTypeIds) != 1 {
		t.Errorf("Player.ParentTypeIds = %v, want exactly 1 (Entity)", p.Type.ParentTypeIds)
	}
}

func TestExtractFindsFactoryConstructor(t *testing.T) {
	src := `package game

import "github.com/nino-lang/nino-go/ninoapi"

type Player struct {
	_    ninoapi.Tag ` + "`nino:\"type\"`" + `
	Name string
	HP   int32
}

func NewPlayer(name string, hp int32) *Player {
	return &Player{Name: name, HP: hp}
}
`
	exts := mustExtract(t, src)
	p := findByName(t, exts, "Player")
	if len(p.Type.Constructors) == 0 {
		t.Fatal("no constructors extracted")
	}
	found := false
	for _, c := range p.Type.Constructors {
		if c.FactoryMethodName == "NewPlayer" {
			found = true
			if len(c.Params) != 2 {
				t.Errorf("NewPlayer params = %+v, want 2", c.Params)
			}
		}
	}
	if !found {
		t.Errorf("NewPlayer factory not found among constructors: %+v", p.Type.Constructors)
	}
}

func TestExtractUTF8TagOnNonStringIsIgnoredWithWarning(t *testing.T) {
	src := `package game

import "github.com/nino-lang/nino-go/ninoapi"

type Player struct {
	_  ninoapi.Tag ` + "`nino:\"type\"`" + `
	HP int32 ` + "`nino:\"utf8\"`" + `
}
`
	exts := mustExtract(t, src)
	p := findByName(t, exts, "Player")
	for _, m := range p.Type.Members {
		if m.Name == "HP" && m.IsUTF8String {
			t.Errorf("HP.IsUTF8String = true, want false (not a string member)")
		}
	}
}
