package main

import (
	"github.com/go-sod/clamp/internal/cli"
	"github.com/go-sod/clamp/internal/logging"
	"github.com/go-sod/clamp/internal/shutdown"
)

func main() {
	ctx, done := shutdown.New()
	defer done()

	logger := logging.FromContext(ctx)
	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		done()
		logger.Fatal(err)
	}
}
