package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vinci-protocol/vinci-deploy/internal/cli"
	"github.com/vinci-protocol/vinci-deploy/internal/config"
)

// Set via -ldflags at release time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	config.SetBuildFlags(version, commit, date)
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
