package main

import (
	"os"

	"github.com/udisondev/worldkit/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
