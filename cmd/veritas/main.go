// Command veritas runs the suggestion service CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/veritas/internal/adapters/driving/cli"
)

func main() {
	// A local .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
