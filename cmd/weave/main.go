package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/weave/cmd/weave/commands"
	"git.home.luguber.info/inful/weave/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("weave"),
		kong.Description("Generate literate-programming documentation: prose from comments beside highlighted code."),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("weave %s (commit %s, built %s)",
				version.Version, version.GitCommit, version.BuildTime),
		},
	)

	if err := ctx.Run(&commands.Global{}, cli); err != nil {
		fmt.Fprintf(os.Stderr, "weave: %v\n", err)
		os.Exit(1)
	}
}
