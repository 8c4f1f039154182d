package emit_test

import (
	"context"
	"strings"
	"testing"

	"github.com/nino-lang/nino-go/internal/driver/config"
	"github.com/nino-lang/nino-go/internal/gen/diag"
	"github.com/nino-lang/nino-go/internal/gen/emit"
)

const driverFixtureSrc = `package game

import "github.com/nino-lang/nino-go/ninoapi"

type Inventory struct {
	_     ninoapi.Tag ` + "`nino:\"type\"`" + `
	Items []int32
	Tags  map[string]int32
}
`

func TestDriverRunEmitsUserTypeAndReachableBuiltins(t *testing.T) {
	g := buildGraph(t, "example.com/driver", driverFixtureSrc)
	d := emit.NewDriver(g, config.Default(), diag.NewCollector(), 4)

	files, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	names := map[string]string{}
	for _, f := range files {
		names[f.Name] = string(f.Src)
	}

	if _, ok := names["Inventory_nino.go"]; !ok {
		t.Fatalf("expected Inventory_nino.go among %v", keysOf(names))
	}
	if init, ok := names["nino_init.go"]; !ok {
		t.Fatalf("expected nino_init.go among %v", keysOf(names))
	} else if !strings.Contains(init, "registerInventory()") {
		t.Errorf("nino_init.go should call registerInventory():\n%s", init)
	}
	if inv, ok := names["Inventory_nino.go"]; !ok || !strings.Contains(inv, "package game") {
		t.Errorf("expected Inventory_nino.go to declare the user's own package (game):\n%s", inv)
	}

	foundSlice, foundMap := false, false
	for name := range names {
		if strings.Contains(name, "Int32") && strings.HasSuffix(name, "_nino.go") && name != "Inventory_nino.go" {
			foundSlice = true
		}
		if strings.Contains(name, "Map") {
			foundMap = true
		}
	}
	if !foundSlice {
		t.Errorf("expected a builtin file for the []int32 member among %v", keysOf(names))
	}
	if !foundMap {
		t.Errorf("expected a builtin file for the map[string]int32 member among %v", keysOf(names))
	}
}

func TestDriverRunIsDeterministicAcrossRuns(t *testing.T) {
	g1 := buildGraph(t, "example.com/driverdet1", driverFixtureSrc)
	g2 := buildGraph(t, "example.com/driverdet2", driverFixtureSrc)

	d1 := emit.NewDriver(g1, config.Default(), diag.NewCollector(), 4)
	d2 := emit.NewDriver(g2, config.Default(), diag.NewCollector(), 1)

	f1, err := d1.Run(context.Background())
	if err != nil {
		t.Fatalf("Run 1: %v", err)
	}
	f2, err := d2.Run(context.Background())
	if err != nil {
		t.Fatalf("Run 2: %v", err)
	}

	if len(f1) != len(f2) {
		t.Fatalf("file count differs between parallel (%d) and sequential (%d) runs", len(f1), len(f2))
	}
	names1, names2 := map[string]bool{}, map[string]bool{}
	for _, f := range f1 {
		names1[f.Name] = true
	}
	for _, f := range f2 {
		names2[f.Name] = true
	}
	for n := range names1 {
		if !names2[n] {
			t.Errorf("file %s present in parallel run but not sequential run", n)
		}
	}
}

func keysOf(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
