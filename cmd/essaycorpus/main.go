// Command essaycorpus scrapes an essay archive into a chunked corpus,
// embeds the chunks and serves semantic search over them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/custodia-labs/essaycorpus/internal/adapters/driven/config/file"
	"github.com/custodia-labs/essaycorpus/internal/adapters/driving/cli"
	"github.com/custodia-labs/essaycorpus/internal/app"
	"github.com/custodia-labs/essaycorpus/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	container, err := app.NewContainer(configStore, version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Warn("closing stores: %v", err)
		}
	}()

	cli.SetVersion(version)
	cli.SetProvider(container)

	// cobra has already printed the error.
	return cli.Execute(ctx)
}
