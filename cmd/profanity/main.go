// Package main provides a command-line front end to the profanity filter,
// useful for checking denylist changes before deploying them.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, errMatchFound) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
