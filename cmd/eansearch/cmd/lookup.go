package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func lookupCmd() *cobra.Command {
	var lang int

	cmd := &cobra.Command{
		Use:   "lookup <barcode>",
		Short: "Look up a product by EAN/GTIN barcode",
		Example: `  eansearch lookup 5099902895529
  eansearch lookup 5099902895529 --lang 2
  eansearch lookup 5099902895529 --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := newSDKClient()
			if err != nil {
				return err
			}
			p, err := c.GtinLookup(context.Background(), args[0], lang)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(p)
			}
			return printProductDetail(p)
		},
	}
	cmd.Flags().IntVar(&lang, "lang", 0, "preferred product name language (service code)")

	return cmd
}

func isbnCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "isbn <isbn-13>",
		Short:   "Look up a book title by ISBN-13",
		Example: `  eansearch isbn 9781234567897`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := newSDKClient()
			if err != nil {
				return err
			}
			title, err := c.IsbnLookup(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(map[string]string{"isbn": args[0], "title": title})
			}
			fmt.Println(title)
			return nil
		},
	}
}

func countryCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "country <barcode>",
		Short:   "Show the country that issued a barcode",
		Long:    "Resolves the GS1 prefix of a barcode to its issuing country.",
		Example: `  eansearch country 5099902895529`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := newSDKClient()
			if err != nil {
				return err
			}
			country, err := c.IssuingCountry(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(map[string]string{"barcode": args[0], "country": country})
			}
			fmt.Println(country)
			return nil
		},
	}
}
