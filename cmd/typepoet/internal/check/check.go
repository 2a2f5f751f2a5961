package check

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/broady/typepoet/cmd/typepoet/internal/gen"
	"github.com/broady/typepoet/ktgen/sink"
)

type Cmd struct {
	gen.Options `embed:""`
}

func (c *Cmd) Run(logger *slog.Logger) error {
	return c.run(context.Background(), os.Stdout, logger)
}

func (c *Cmd) run(ctx context.Context, stdout io.Writer, logger *slog.Logger) error {
	g, err := c.Generator(logger)
	if err != nil {
		return err
	}

	// Render everything without writing so emission errors surface too.
	discard := &sink.DiscardSink{}
	result, err := g.Run(ctx, discard)
	if err != nil {
		return err
	}
	_, size := discard.Stats()

	fmt.Fprintf(stdout, "✓ %d types, %d files (%d bytes)\n", result.TypesGenerated, len(result.Files), size)
	for _, w := range result.Warnings {
		loc := w.TypeName
		if w.Source != nil {
			loc = fmt.Sprintf("%s:%d", w.Source.File, w.Source.Line)
		}
		fmt.Fprintf(stdout, "! %s: %s (%s)\n", loc, w.Message, w.Code)
	}
	if len(result.Warnings) == 0 {
		fmt.Fprintln(stdout, "✓ All types resolvable")
	}
	return nil
}
