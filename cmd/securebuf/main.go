package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"

	"github.com/carved4/go-securebuf/cmd/securebuf/commands"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	// Purges the enclave session key and exits on SIGINT/SIGTERM.
	memguard.CatchInterrupt()

	code := 0
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		code = 1
	}

	memguard.Purge()
	os.Exit(code)
}

func run() error {
	app := &commands.App{}
	root := commands.NewRootCommand(app)
	root.Version = fmt.Sprintf("%s (commit: %s)", version, commit)
	return root.Execute()
}
