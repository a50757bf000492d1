package main

import (
	"github.com/alecthomas/kong"

	"github.com/pagesift/pagesift/cmd/cli"
)

var app struct {
	Run   cli.RunCmd   `cmd:"" help:"Execute an extraction job file."`
	Lint  cli.LintCmd  `cmd:"" help:"Validate a job file without fetching pages or calling a model."`
	Actor cli.ActorCmd `cmd:"" help:"Run one extraction from platform actor storage."`
}

func main() {
	ctx := kong.Parse(&app,
		kong.Name("pagesift"),
		kong.Description("LLM-driven extraction of named fields from rendered web pages."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
