package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/oak-disperser/oakboot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Aborted by user.")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
