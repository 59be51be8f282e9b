package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func imageCmd() *cobra.Command {
	var (
		width   int
		height  int
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "image <barcode>",
		Short: "Download a barcode as a PNG image",
		Long: "Renders the barcode as a PNG image. The image is written to\n" +
			"<barcode>.png unless -o names another file, or - for stdout.",
		Example: `  eansearch image 5099902895529
  eansearch image 5099902895529 -o album.png
  eansearch image 5099902895529 --width 300 --height 150 -o - > barcode.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := newSDKClient()
			if err != nil {
				return err
			}
			img, err := c.BarcodeImage(context.Background(), args[0], width, height)
			if err != nil {
				return err
			}

			if outFile == "-" {
				_, err := os.Stdout.Write(img)
				return err
			}

			if outFile == "" {
				outFile = args[0] + ".png"
			}
			if err := os.WriteFile(outFile, img, 0o644); err != nil {
				return fmt.Errorf("writing image: %w", err)
			}

			fmt.Printf("Wrote %s (%d bytes)\n", outFile, len(img))
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "image width in pixels (0 = service default)")
	cmd.Flags().IntVar(&height, "height", 0, "image height in pixels (0 = service default)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (- for stdout)")

	return cmd
}
