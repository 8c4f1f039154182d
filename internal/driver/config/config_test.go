package config_test

import (
	"flag"
	"testing"

	"github.com/nino-lang/nino-go/internal/driver/config"
)

func TestDefaultHasNonZeroBulkRun(t *testing.T) {
	o := config.Default()
	if o.MaxBulkRun != 16 {
		t.Errorf("Default().MaxBulkRun = %d, want 16", o.MaxBulkRun)
	}
	if o.WeakVersionTolerance || o.HostGameRuntime {
		t.Errorf("Default() = %+v, want both flags false", o)
	}
}

func TestRegisterFlagsParsesArgs(t *testing.T) {
	var o config.Options
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	o.RegisterFlags(fs)

	if err := fs.Parse([]string{"-weak_version_tolerance", "-max_bulk_run=8"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !o.WeakVersionTolerance {
		t.Errorf("WeakVersionTolerance = false, want true")
	}
	if o.MaxBulkRun != 8 {
		t.Errorf("MaxBulkRun = %d, want 8", o.MaxBulkRun)
	}
	if o.HostGameRuntime {
		t.Errorf("HostGameRuntime = true, want false (not passed)")
	}
}
