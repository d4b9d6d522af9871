package main

import (
	"os"

	"github.com/billfold/billfold/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
