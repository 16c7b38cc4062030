package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/whisker/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional, defaults to ~/.config/whisker/config.toml)")
	prefsPath := flag.String("prefs", "", "override preferences path (optional)")
	limit := flag.Int("limit", 0, "number of cats per page (optional, 1-100)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{ConfigPath: *configPath, PrefsPath: *prefsPath}
	if n := *limit; n > 0 {
		opts.Limit = n
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "whisker: %v\n", err)
		return 1
	}
	return 0
}
