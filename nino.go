// The nino command generates compact binary Serialize/Deserialize code for
// Go types tagged with ninoapi.Tag.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/nino-lang/nino-go/internal/driver/generate"
	"github.com/nino-lang/nino-go/internal/driver/version"
)

const groupOther = "working with this tool"
const groupGenerate = "generating serialization code"

func main() {
	ctx := context.Background()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), groupOther)
	commander.Register(commander.FlagsCommand(), groupOther)
	commander.Register(version.Command(), groupOther)

	commander.Register(generate.Command(), groupGenerate)

	flag.Usage = func() {
		commander.HelpCommand().Execute(ctx, flag.CommandLine)
	}
	flag.Parse()

	os.Exit(int(commander.Execute(ctx)))
}
