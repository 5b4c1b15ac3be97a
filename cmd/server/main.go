package main

import (
	"os"

	"github.com/RichardoC/envask/internal/cli"
)

// Standalone web form server; equivalent to `envask serve`.
func main() {
	cmd := cli.NewServeCmd()
	cmd.Use = "server"
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
