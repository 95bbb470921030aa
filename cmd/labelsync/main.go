package main

import (
	"os"

	"github.com/ALT-F4-LLC/labelsync/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
