package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	eansearch "github.com/eansearch/eansearch-go"
)

func searchCmd() *cobra.Command {
	var (
		similar  bool
		page     int
		allPages bool
		maxPages int
	)

	cmd := &cobra.Command{
		Use:   "search <name>",
		Short: "Search products by name",
		Long: "Searches the product database by name. With --similar the service\n" +
			"matches loosely instead of exactly; with --all-pages the search walks\n" +
			"every result page up to the page budget.",
		Example: `  eansearch search "bosch drill"
  eansearch search "thriller" --similar
  eansearch search "bosch" --all-pages --max-pages 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := newSDKClient()
			if err != nil {
				return err
			}

			search := c.ProductSearch
			if similar {
				search = c.SimilarProductSearch
			}

			ctx := context.Background()

			if allPages {
				p := eansearch.NewPaginator(eansearch.WithMaxPages(maxPages))
				result, err := p.Paginate(ctx, func(ctx context.Context, page int) ([]eansearch.Product, error) {
					return search(ctx, args[0], page)
				})
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(result)
				}
				if len(result.Products) == 0 {
					fmt.Println("No products found.")
					return nil
				}
				fmt.Printf("Found %d products over %d pages (stopped: %s)\n\n",
					len(result.Products), result.PagesUsed, result.StoppedAt)
				return printProductTable(result.Products)
			}

			products, err := search(ctx, args[0], page)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(products)
			}
			if len(products) == 0 {
				fmt.Println("No products found.")
				return nil
			}
			return printProductTable(products)
		},
	}
	cmd.Flags().BoolVar(&similar, "similar", false, "loose name matching")
	cmd.Flags().IntVar(&page, "page", 0, "result page")
	cmd.Flags().BoolVar(&allPages, "all-pages", false, "walk all result pages")
	cmd.Flags().IntVar(&maxPages, "max-pages", 20, "page budget for --all-pages")

	return cmd
}

func prefixCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "prefix <barcode-prefix>",
		Short: "List products whose barcode starts with a prefix",
		Example: `  eansearch prefix 509990289
  eansearch prefix 4006381 --page 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := newSDKClient()
			if err != nil {
				return err
			}
			products, err := c.BarcodePrefixSearch(context.Background(), args[0], page)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(products)
			}
			if len(products) == 0 {
				fmt.Println("No products found.")
				return nil
			}
			return printProductTable(products)
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "result page")

	return cmd
}

func categoryCmd() *cobra.Command {
	var (
		name string
		page int
	)

	cmd := &cobra.Command{
		Use:   "category <category-id>",
		Short: "Search products within a category",
		Example: `  eansearch category 45
  eansearch category 45 --name "thriller"`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := newSDKClient()
			if err != nil {
				return err
			}
			products, err := c.CategorySearch(context.Background(), args[0], name, page)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(products)
			}
			if len(products) == 0 {
				fmt.Println("No products found.")
				return nil
			}
			return printProductTable(products)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name filter within the category")
	cmd.Flags().IntVar(&page, "page", 0, "result page")

	return cmd
}
