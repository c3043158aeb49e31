// Command journal runs the team trading journal API and admin CLI.
package main

import (
	"os"
	_ "time/tzdata"

	"team-journal/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
