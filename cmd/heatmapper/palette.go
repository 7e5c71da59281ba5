package main

import (
	"fmt"

	"github.com/setanarut/heatmapper/utils"
	"github.com/spf13/cobra"
)

var paletteCmd = &cobra.Command{
	Use:   "palette [image]",
	Short: "List the dominant colors of an image",
	Args:  cobra.ExactArgs(1),
	RunE:  runPalette,
}

func init() {
	paletteCmd.Flags().IntP("colors", "k", 5, "Number of colors")
	paletteCmd.Flags().String("method", "dominantcolor", "Palette method (dominantcolor, kmeans)")
	paletteCmd.Flags().String("swatch", "", "Write the palette as PNG strip")
	paletteCmd.Flags().Bool("sort-luma", false, "Order colors dark to bright instead of by weight")
	rootCmd.AddCommand(paletteCmd)
}

func runPalette(cmd *cobra.Command, args []string) error {
	k, _ := cmd.Flags().GetInt("colors")
	methodStr, _ := cmd.Flags().GetString("method")
	swatchPath, _ := cmd.Flags().GetString("swatch")
	sortLuma, _ := cmd.Flags().GetBool("sort-luma")

	method, err := utils.ParsePaletteMethod(methodStr)
	if err != nil {
		return err
	}
	if k <= 0 {
		return fmt.Errorf("colors must be positive, got %d", k)
	}

	img, err := utils.ReadImage(args[0])
	if err != nil {
		return err
	}
	palette := utils.ExtractPalette(img, k, method)
	if sortLuma {
		utils.SortPaletteByLuma(palette)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:   %s\n", args[0])
	fmt.Fprintf(out, "Method: %s\n", method)
	for _, s := range palette {
		fmt.Fprintf(out, "  %s  %5.1f%%\n", s.Color.Hex(), s.Weight*100)
	}

	if swatchPath != "" {
		if err := utils.SavePalette(palette, 64, swatchPath); err != nil {
			return fmt.Errorf("writing swatch: %w", err)
		}
	}
	return nil
}
