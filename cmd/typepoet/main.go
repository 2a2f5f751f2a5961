package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/broady/typepoet/cmd/typepoet/internal/check"
	"github.com/broady/typepoet/cmd/typepoet/internal/gen"
	"github.com/broady/typepoet/cmd/typepoet/internal/render"
	"github.com/broady/typepoet/cmd/typepoet/internal/serve"
)

type CLI struct {
	Verbose bool `help:"Log debug output to stderr." short:"v"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Render  render.Cmd `cmd:"" help:"Render the types of a type-spec document as Kotlin."`
	Gen     gen.Cmd    `cmd:"" help:"Generate Kotlin declarations for Go packages."`
	Check   check.Cmd  `cmd:"" help:"Validate types without generating files."`
	Serve   serve.Cmd  `cmd:"" help:"Start the HTTP render playground."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("typepoet"),
		kong.Description("Kotlin type names and declarations from Go types and type-spec documents."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	err := ctx.Run(logger)
	ctx.FatalIfErrorf(err)
}
