package main

import (
	"os"

	"github.com/arthur-debert/kegpack/cmd/kegpack"
)

func main() {
	os.Exit(kegpack.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
