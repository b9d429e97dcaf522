package main

import (
	"fmt"
	"os"

	"github.com/Agrid-Dev/thermoprops/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.NewRootCmd(version, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
