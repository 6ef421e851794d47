package cli

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/menta2k/odm-postprocess/pkg/webmap"
)

func newInspectCmd() *cobra.Command {
	var outputDir, format string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe a converted web map package",
		Long: `Reads summary.json and the headers of odm_orthophoto.png and
odm_orthophoto.webp from a converted package and prints their metadata.`,
		Example: `  odm-postprocess inspect -o ./web
  odm-postprocess inspect -o ./web --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := loadConfig(cmd); err != nil {
				return err
			}

			info, err := webmap.Inspect(outputDir)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), info, format)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Converted package directory (required)")
	cmd.Flags().StringVar(&format, "format", "json", "Report format: json or yaml")

	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func writeReport(w io.Writer, info webmap.PackageInfo, format string) error {
	switch strings.ToLower(format) {
	case "json":
		data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
