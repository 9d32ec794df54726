package main

import (
	"os"

	linkdexcmder "github.com/daylogco/linkdex/cmd/linkdex"
)

func main() {
	cmd := linkdexcmder.NewLinkdexCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
