package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/habitsync/cmd/habitsync/commands"
	"git.home.luguber.info/inful/habitsync/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("habitsync"),
		kong.Description("One-way sync of completed Todoist tasks into Habitify habit logs"),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	err := ctx.Run(&commands.Global{}, &cli)
	ctx.FatalIfErrorf(err)
}
