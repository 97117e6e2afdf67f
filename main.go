package main

import (
	"os"

	"github.com/smazurov/camoufox-launcher/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
