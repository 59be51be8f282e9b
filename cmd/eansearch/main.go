// Package main is the entry point for the eansearch CLI client.
package main

import (
	"github.com/eansearch/eansearch-go/cmd/eansearch/cmd"
)

func main() {
	cmd.Execute()
}
