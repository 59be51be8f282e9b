package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eansearch/eansearch-go/pkg/gtin"
)

func verifyCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "verify <barcode>",
		Short: "Verify a barcode check digit",
		Long: "Verifies the check digit of an EAN-8, UPC-A, EAN-13, or GTIN-14\n" +
			"barcode. Verification runs locally and costs no API credits unless\n" +
			"--remote asks the service instead.",
		Example: `  eansearch verify 5099902895529
  eansearch verify 5099902895529 --remote`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			valid, err := runVerify(args[0], remote)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(map[string]any{"barcode": args[0], "valid": valid})
			}

			if valid {
				fmt.Printf("%s: valid\n", args[0])
			} else {
				fmt.Printf("%s: INVALID check digit\n", args[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "verify via the EAN-Search API")

	return cmd
}

func runVerify(barcode string, remote bool) (bool, error) {
	if !remote {
		return gtin.Valid(barcode), nil
	}

	c, err := newSDKClient()
	if err != nil {
		return false, err
	}
	return c.VerifyChecksum(context.Background(), barcode)
}
