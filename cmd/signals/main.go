package main

import (
	"os"

	"github.com/mwt/signals/cmd/signals/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
