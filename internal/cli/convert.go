package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	odmpostprocess "github.com/menta2k/odm-postprocess"
	"github.com/menta2k/odm-postprocess/internal/config"
	"github.com/menta2k/odm-postprocess/pkg/orthophoto"
)

func newConvertCmd() *cobra.Command {
	var inputDir, outputDir string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an ODM package into a web map package",
		Long: `Reads odm_georeferencing/odm_georeferenced_model.info.json and
odm_orthophoto/odm_orthophoto.png from the input directory and writes
summary.json, odm_orthophoto.png and odm_orthophoto.webp to the output
directory, creating it if needed.`,
		Example: `  # Default 0.2 size factor and quality 90
  odm-postprocess convert -i ./odm_project -o ./web

  # Larger preview with a title
  odm-postprocess convert -i ./odm_project -o ./web -s 0.5 -q 80 --title "North field"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			opts, err := converterOptions(cfg)
			if err != nil {
				return err
			}

			converter := odmpostprocess.NewWithLogger(opts, logger)
			report, err := converter.Convert(inputDir, outputDir, cfg.Convert.SizeFactor, float32(cfg.Convert.Quality))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.SummaryPath)
			fmt.Fprintln(out, report.Orthophoto.LosslessPath)
			fmt.Fprintln(out, report.Orthophoto.LossyPath)
			return nil
		},
	}

	d := config.Default()
	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "ODM output directory (required)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Destination directory (required)")
	cmd.Flags().Float64P("size-factor", "s", d.Convert.SizeFactor, "Scale applied to the lossy orthophoto")
	cmd.Flags().Float64P("quality", "q", d.Convert.Quality, "WebP quality (0-100)")
	cmd.Flags().String("title", d.Convert.Title, "Title written to summary.json")
	cmd.Flags().String("description", d.Convert.Description, "Description written to summary.json")
	cmd.Flags().Int64("max-pixels", d.Decode.MaxPixels, "Reject mosaics with more pixels (0 disables)")
	cmd.Flags().Int("max-dimension", d.Decode.MaxDimension, "Reject mosaics wider or taller than this (0 disables)")
	cmd.Flags().String("png-compression", d.Output.PNGCompression, "PNG compression: default, none, speed, best")

	cmd.Flags().SetNormalizeFunc(flagAliases(map[string]string{
		"input-dir":    "input",
		"output-dir":   "output",
		"webp-quality": "quality",
	}))

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func converterOptions(cfg *config.Config) (odmpostprocess.Options, error) {
	level, err := cfg.PNGCompressionLevel()
	if err != nil {
		return odmpostprocess.Options{}, err
	}

	limits := orthophoto.NoLimits()
	limits.MaxDimension = cfg.Decode.MaxDimension
	limits.MaxPixels = cfg.Decode.MaxPixels

	return odmpostprocess.Options{
		Title:       cfg.Convert.Title,
		Description: cfg.Convert.Description,
		Transcoder: orthophoto.Config{
			Limits:         limits,
			PNGCompression: level,
		},
	}, nil
}
