package main

import (
	"os"

	"github.com/DaniXM02/tunneltap/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
