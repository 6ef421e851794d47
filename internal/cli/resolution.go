package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/menta2k/odm-postprocess/pkg/resolution"
)

func newHeightToPxResCmd() *cobra.Command {
	var height, fov float64
	var xRes, yRes int

	cmd := &cobra.Command{
		Use:     "height-to-px-res",
		Aliases: []string{"height_to_px_res"},
		Short:   "Estimate the orthophoto resolution for a flight height",
		Long: `Using the drone's height in meters and the camera's sensor resolution,
calculate the ground sampling distance and the matching NodeODM
orthophoto-resolution (cm/px).`,
		Example: `  odm-postprocess height-to-px-res -H 80 -x 5472 -y 3648`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			w, h, err := resolution.Footprint(height, xRes, yRes, fov)
			if err != nil {
				return err
			}
			gsd, err := resolution.GroundSampleDistance(height, xRes, yRes, fov)
			if err != nil {
				return err
			}
			logger.Debug("computed ground sampling distance", "height", height, "x_res", xRes, "y_res", yRes, "fov", fov)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "footprint: %.1f x %.1f m\n", w, h)
			fmt.Fprintf(out, "gsd: %.2f cm/px\n", gsd)
			fmt.Fprintf(out, "orthophoto-resolution: %.2f\n", gsd)
			return nil
		},
	}

	cmd.Flags().Float64VarP(&height, "height", "H", 0, "Flight height above ground in meters (required)")
	cmd.Flags().IntVarP(&xRes, "x-res", "x", 0, "Image width in pixels (required)")
	cmd.Flags().IntVarP(&yRes, "y-res", "y", 0, "Image height in pixels (required)")
	cmd.Flags().Float64Var(&fov, "fov", resolution.DefaultFOV, "Horizontal field of view in degrees")
	cmd.Flags().SetNormalizeFunc(flagAliases(map[string]string{
		"x_res": "x-res",
		"y_res": "y-res",
	}))

	_ = cmd.MarkFlagRequired("height")
	_ = cmd.MarkFlagRequired("x-res")
	_ = cmd.MarkFlagRequired("y-res")

	return cmd
}
