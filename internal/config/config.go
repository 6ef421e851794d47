package config

import (
	"fmt"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/menta2k/odm-postprocess/internal/logging"
)

// Config holds the application configuration
type Config struct {
	Convert ConvertConfig `mapstructure:"convert" yaml:"convert"`
	Decode  DecodeConfig  `mapstructure:"decode" yaml:"decode"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// ConvertConfig holds the parameters of one ODM package conversion
type ConvertConfig struct {
	SizeFactor  float64 `mapstructure:"size_factor" yaml:"size_factor"`
	Quality     float64 `mapstructure:"quality" yaml:"quality"`
	Title       string  `mapstructure:"title" yaml:"title"`
	Description string  `mapstructure:"description" yaml:"description"`
}

// DecodeConfig bounds mosaic decoding. Zero disables a ceiling.
type DecodeConfig struct {
	MaxDimension int   `mapstructure:"max_dimension" yaml:"max_dimension"`
	MaxPixels    int64 `mapstructure:"max_pixels" yaml:"max_pixels"`
}

// OutputConfig holds configuration for artifact encoding
type OutputConfig struct {
	PNGCompression string `mapstructure:"png_compression" yaml:"png_compression"`
}

// LogConfig holds configuration for the slog handler
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			SizeFactor:  0.2,
			Quality:     90,
			Title:       "",
			Description: "",
		},
		Decode: DecodeConfig{
			MaxDimension: 0,
			MaxPixels:    0,
		},
		Output: OutputConfig{
			PNGCompression: "default",
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
	}
}

// FlagKeys maps command-line flag names to configuration keys
var FlagKeys = map[string]string{
	"size-factor":     "convert.size_factor",
	"quality":         "convert.quality",
	"title":           "convert.title",
	"description":     "convert.description",
	"max-dimension":   "decode.max_dimension",
	"max-pixels":      "decode.max_pixels",
	"png-compression": "output.png_compression",
	"log-level":       "log.level",
	"log-format":      "log.format",
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("convert.size_factor", d.Convert.SizeFactor)
	v.SetDefault("convert.quality", d.Convert.Quality)
	v.SetDefault("convert.title", d.Convert.Title)
	v.SetDefault("convert.description", d.Convert.Description)
	v.SetDefault("decode.max_dimension", d.Decode.MaxDimension)
	v.SetDefault("decode.max_pixels", d.Decode.MaxPixels)
	v.SetDefault("output.png_compression", d.Output.PNGCompression)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads configuration from an optional YAML file and overlays the flags
// the user set explicitly. Precedence: flag > file > default.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []string

	q := c.Convert.Quality
	if math.IsNaN(q) || q < 0 || q > 100 {
		errs = append(errs, fmt.Sprintf("convert.quality must be between 0 and 100, got %v", q))
	}
	f := c.Convert.SizeFactor
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		errs = append(errs, fmt.Sprintf("convert.size_factor must be a positive number, got %v", f))
	}
	if c.Decode.MaxDimension < 0 {
		errs = append(errs, "decode.max_dimension must not be negative")
	}
	if c.Decode.MaxPixels < 0 {
		errs = append(errs, "decode.max_pixels must not be negative")
	}
	if _, err := c.PNGCompressionLevel(); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, "log.level: "+err.Error())
	}
	if !logging.ValidFormat(c.Log.Format) {
		errs = append(errs, fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// PNGCompressionLevel maps output.png_compression to the encoder setting
func (c *Config) PNGCompressionLevel() (png.CompressionLevel, error) {
	switch strings.ToLower(c.Output.PNGCompression) {
	case "", "default":
		return png.DefaultCompression, nil
	case "none":
		return png.NoCompression, nil
	case "speed":
		return png.BestSpeed, nil
	case "best":
		return png.BestCompression, nil
	default:
		return png.DefaultCompression, fmt.Errorf("output.png_compression must be one of default, none, speed, best, got %q", c.Output.PNGCompression)
	}
}
