package main

import (
	"os"

	"fasttrack/internal/adapter/primary/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
