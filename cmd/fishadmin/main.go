package main

import (
	"os"

	"github.com/dmitrijs2005/fishtank/internal/admin/cli"
)

func main() {
	os.Exit(cli.Execute())
}
