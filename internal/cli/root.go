package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	odmpostprocess "github.com/menta2k/odm-postprocess"
	"github.com/menta2k/odm-postprocess/internal/config"
	"github.com/menta2k/odm-postprocess/internal/logging"
)

// NewRootCmd builds the odm-postprocess command tree
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "odm-postprocess",
		Short: "Convert OpenDroneMap output into a web map package",
		Long: `odm-postprocess turns the output of an OpenDroneMap run into a small
package a MapLibre site can serve: a summary.json with the bounds and map
center, the orthophoto as lossless PNG, and a downsized lossy WebP.`,
		Version:      odmpostprocess.Version,
		SilenceUsage: true,
	}

	d := config.Default()
	cmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().String("log-level", d.Log.Level, "Log level: debug, info, warn, error")
	cmd.PersistentFlags().String("log-format", d.Log.Format, "Log format: text or json")

	cmd.AddCommand(newConvertCmd())
	cmd.AddCommand(newHeightToPxResCmd())
	cmd.AddCommand(newInspectCmd())

	return cmd
}

// loadConfig resolves defaults, the --config file and the flags set on cmd,
// then points the default logger at cmd's error stream
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read --config: %w", err)
	}

	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	if path != "" {
		logger.Debug("using config file", "path", path)
	}
	return cfg, logger, nil
}

// flagAliases accepts the older long flag names scripts still pass
func flagAliases(aliases map[string]string) func(*pflag.FlagSet, string) pflag.NormalizedName {
	return func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		return pflag.NormalizedName(name)
	}
}
