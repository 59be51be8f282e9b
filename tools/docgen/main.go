// Package main generates CLI reference documentation for both command
// trees: the eansearch client CLI and the ean-watch service.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	watchcmd "github.com/eansearch/eansearch-go/cmd/ean-watch/cmd"
	searchcmd "github.com/eansearch/eansearch-go/cmd/eansearch/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory for generated markdown")
	flag.Parse()

	trees := []struct {
		name string
		root *cobra.Command
	}{
		{name: "eansearch", root: searchcmd.Root()},
		{name: "ean-watch", root: watchcmd.Root()},
	}

	for _, tree := range trees {
		dir := filepath.Join(*output, tree.name)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Fatalf("creating output directory: %v", err)
		}

		tree.root.DisableAutoGenTag = true
		if err := doc.GenMarkdownTree(tree.root, dir); err != nil {
			log.Fatalf("generating %s docs: %v", tree.name, err)
		}
	}

	fmt.Printf("CLI docs generated in %s/\n", *output)
}
