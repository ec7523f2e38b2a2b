package main

import (
	"os"

	"github.com/mkarren/gush/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
