package main

import (
	"fmt"
	"math"
	"strconv"

	"github.com/setanarut/heatmapper"
	"github.com/setanarut/heatmapper/preview"
	"github.com/setanarut/heatmapper/utils"
	"github.com/spf13/cobra"
)

var blendCmd = &cobra.Command{
	Use:   "blend [dir] [saturation] [output]",
	Short: "Average all images below dir, saturate and save as PNG",
	Long: `Average all images below dir into one heat map, adjust its saturation
and save it as PNG. Images are blended in lexicographic path order.

Defaults: dir "./", saturation 1 (unchanged), output "blended.png".`,
	Args: cobra.MaximumNArgs(3),
	RunE: runBlend,
}

func init() {
	blendCmd.Flags().StringSlice("ext", utils.DefaultExtensions, "Input file extensions")
	blendCmd.Flags().Bool("preview", false, "Show every blend step in the terminal")
	blendCmd.Flags().Duration("preview-delay", 0, "Pause after each preview frame")
	blendCmd.Flags().Duration("preview-hold", 0, "Keep the final frame this long (0 waits for a key)")
	rootCmd.AddCommand(blendCmd)
}

type blendArgs struct {
	dir        string
	saturation float64
	output     string
}

func parseBlendArgs(args []string) (blendArgs, error) {
	ba := blendArgs{
		dir:        "./",
		saturation: heatmapper.DefaultOptions().Saturation,
		output:     "blended.png",
	}
	if len(args) >= 1 {
		ba.dir = args[0]
	}
	if len(args) >= 2 {
		s, err := strconv.ParseFloat(args[1], 64)
		if err != nil || math.IsNaN(s) || math.IsInf(s, 0) {
			return ba, fmt.Errorf("invalid saturation factor %q", args[1])
		}
		ba.saturation = s
	}
	if len(args) >= 3 {
		ba.output = args[2]
	}
	return ba, nil
}

func runBlend(cmd *cobra.Command, args []string) error {
	ba, err := parseBlendArgs(args)
	if err != nil {
		return err
	}
	exts, _ := cmd.Flags().GetStringSlice("ext")
	showPreview, _ := cmd.Flags().GetBool("preview")
	delay, _ := cmd.Flags().GetDuration("preview-delay")
	hold, _ := cmd.Flags().GetDuration("preview-hold")

	paths, err := utils.FindImages(ba.dir, exts...)
	if err != nil {
		return fmt.Errorf("finding images: %w", err)
	}

	ctx := cmd.Context()
	opts := heatmapper.DefaultOptions()
	opts.Saturation = ba.saturation
	var term *preview.Terminal
	if showPreview {
		term, err = preview.NewTerminal(ctx)
		if err != nil {
			return fmt.Errorf("opening preview: %w", err)
		}
		// Close is idempotent; the deferred call covers early returns.
		defer term.Close()
		term.Delay = delay
		ctx = term.Context()
		opts.Observer = term.Observe
	}

	result, err := heatmapper.RunContext(ctx, paths, utils.LoadPixelBuffer, opts)
	if err != nil {
		return err
	}
	if err := utils.SaveBuffer(result.Image(), ba.output); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if term != nil {
		term.Hold(hold)
		term.Close()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Blended %d images (%dx%d), saturation %g → %s\n",
		result.Images, result.Blended.W, result.Blended.H, ba.saturation, ba.output)
	return nil
}
