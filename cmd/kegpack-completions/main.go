package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/kegpack/cmd/kegpack"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <bash|zsh|fish|powershell>\n", os.Args[0])
		os.Exit(1)
	}

	// The completion subcommand validates the shell name.
	os.Exit(kegpack.Execute([]string{"completion", os.Args[1]}, os.Stdout, os.Stderr))
}
