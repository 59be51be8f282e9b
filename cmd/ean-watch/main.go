// Package main is the entry point for the ean-watch service.
package main

import (
	"os"

	"github.com/eansearch/eansearch-go/cmd/ean-watch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
