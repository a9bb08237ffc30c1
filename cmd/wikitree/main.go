package main

import (
	"os"

	"github.com/wikiforge/wikitree/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
