// Package main is the entry point for the gatecheck CLI binary.
package main

import (
	"os"

	cli "gatecheck/pkg/cli"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	os.Exit(cli.Execute())
}
