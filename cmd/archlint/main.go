package main

import (
	"os"

	"github.com/archlint/archlint/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
