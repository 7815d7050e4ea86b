package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/kegpack/cmd/kegpack"
	"github.com/arthur-debert/kegpack/internal/version"
)

func main() {
	rootCmd := kegpack.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "KEGPACK",
		Section: "1",
		Source:  "kegpack " + version.Version,
		Manual:  "kegpack manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
