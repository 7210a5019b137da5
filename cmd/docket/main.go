package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/docket/internal/cli"
	"github.com/alexanderramin/docket/internal/config"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	logger := cli.NewLogger(os.Stderr, cfg.Debug)

	app := cli.NewApp(cfg, logger, version)
	return cli.NewRootCmd(app).Execute()
}
