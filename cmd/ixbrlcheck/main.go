package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/ixbrlcheck/internal/cli"
)

func main() {
	err := cli.Execute()
	if err != nil && !errors.Is(err, cli.ErrInvalid) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.ExitCode(err))
}
