package main

import (
	"os"

	"github.com/samirrijal/meetpoint/cmd/meetpoint/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
