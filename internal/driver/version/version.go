// Package version implements the version subcommand of the nino tool.
package version

import (
	"context"
	"flag"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/subcommands"
)

// Cmd implements the version subcommand.
type Cmd struct{}

// Name implements subcommands.Command.
func (*Cmd) Name() string { return "version" }

// Synopsis implements subcommands.Command.
func (*Cmd) Synopsis() string { return "print generator version" }

// Usage implements subcommands.Command.
func (*Cmd) Usage() string { return "Usage: nino version\n" }

// SetFlags implements subcommands.Command.
func (*Cmd) SetFlags(*flag.FlagSet) {}

func synthesizeVersion(info *debug.BuildInfo) string {
	const fallback = "(devel)"
	settings := make(map[string]string)
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	rev, ok := settings["vcs.revision"]
	if !ok {
		return fallback
	}

	commitTime, err := time.Parse(time.RFC3339Nano, settings["vcs.time"])
	if err != nil {
		return fallback
	}

	modifiedSuffix := ""
	if settings["vcs.modified"] == "true" {
		modifiedSuffix = "+dirty"
	}

	if len(rev) > 12 {
		rev = rev[:12]
	}

	const pseudoVersionTimestampFormat = "20060102150405"
	return fmt.Sprintf("v?.?.?-%s-%s%s",
		commitTime.UTC().Format(pseudoVersionTimestampFormat),
		rev,
		modifiedSuffix)
}

// Execute implements subcommands.Command.
func (cmd *Cmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	info, ok := debug.ReadBuildInfo()
	mainVersion := "<runtime/debug.ReadBuildInfo failed>"
	if ok {
		mainVersion = info.Main.Version
		if mainVersion == "(devel)" {
			mainVersion = synthesizeVersion(info)
		}
	}
	fmt.Printf("nino %s\n", mainVersion)
	return subcommands.ExitSuccess
}

// Command returns an initialized Cmd for registration with the subcommands
// package.
func Command() *Cmd {
	return &Cmd{}
}
