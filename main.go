package main

import (
	"os"

	"github.com/arisylafeta/reddit-analyzer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
