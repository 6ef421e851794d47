// Package odmpostprocess converts an OpenDroneMap output package into a small
// package a MapLibre site can serve directly.
//
// Basic usage:
//
//	package main
//
//	import (
//		"fmt"
//		"log"
//
//		odmpostprocess "github.com/menta2k/odm-postprocess"
//	)
//
//	func main() {
//		converter := odmpostprocess.New()
//
//		report, err := converter.Convert("odm_project", "web", 0.2, 90)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		fmt.Printf("center %.6f, %.6f\n", report.Summary.Center.Lat, report.Summary.Center.Lon)
//	}
//
// A conversion reads two files from the ODM package:
//
//	odm_georeferencing/odm_georeferenced_model.info.json
//	odm_orthophoto/odm_orthophoto.png
//
// and writes three into the output directory:
//
//	summary.json           title, description, bounds and map center
//	odm_orthophoto.png     the mosaic at full resolution, pixel-identical
//	odm_orthophoto.webp    the mosaic scaled by the size factor, lossy RGBA
//
// The package consists of the following components:
//
// 1. Bounds (pkg/bounds): locates the EPSG:4326 bounding box in the metadata
// 2. Orthophoto (pkg/orthophoto): decodes, resizes and encodes the mosaic
// 3. Webmap (pkg/webmap): path layout, summary.json and package inspection
// 4. Resolution (pkg/resolution): ground sampling distance for flight planning
//
// Every failure is a *types.StageError; use errors.Is with types.ErrSchema,
// types.ErrDecode and friends to classify it.
package odmpostprocess

import (
	"log/slog"

	"github.com/menta2k/odm-postprocess/internal/utils"
	"github.com/menta2k/odm-postprocess/pkg/bounds"
	"github.com/menta2k/odm-postprocess/pkg/orthophoto"
	"github.com/menta2k/odm-postprocess/pkg/types"
	"github.com/menta2k/odm-postprocess/pkg/webmap"
)

// Version of the odm-postprocess library
const Version = "0.2.0"

// Defaults used by the convert command when nothing else is configured
const (
	DefaultSizeFactor = 0.2
	DefaultQuality    = 90.0
)

// Options configures a Converter
type Options struct {
	Title       string
	Description string
	Transcoder  orthophoto.Config
}

// DefaultOptions returns empty title and description with decode limits disabled
func DefaultOptions() Options {
	return Options{Transcoder: orthophoto.DefaultConfig()}
}

// Converter runs the bounds extractor and the orthophoto transcoder over one
// ODM package
type Converter struct {
	options    Options
	extractor  *bounds.Extractor
	transcoder *orthophoto.Transcoder
	logger     *slog.Logger
}

// New creates a new Converter with default configuration
func New() *Converter {
	return NewWithConfig(DefaultOptions())
}

// NewWithConfig creates a new Converter with custom configuration
func NewWithConfig(options Options) *Converter {
	return NewWithLogger(options, slog.Default())
}

// NewWithLogger creates a Converter that reports progress to logger
func NewWithLogger(options Options, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	transcoder := orthophoto.NewWithConfig(options.Transcoder)
	transcoder.SetLogger(logger)

	return &Converter{
		options:    options,
		extractor:  bounds.NewWithLogger(logger),
		transcoder: transcoder,
		logger:     logger,
	}
}

// Report describes a finished conversion
type Report struct {
	Summary     types.Summary     `json:"summary"`
	SummaryPath string            `json:"summary_path"`
	Orthophoto  orthophoto.Result `json:"orthophoto"`
}

// Convert extracts bounds, writes summary.json and transcodes the orthophoto.
// Metadata problems are reported before the output directory is touched.
func (c *Converter) Convert(inputDir, outputDir string, factor float64, quality float32) (Report, error) {
	layout := webmap.NewLayout(inputDir, outputDir)

	metadata := layout.MetadataPath()
	c.logger.Info("reading georeferencing metadata", "path", metadata)
	b, center, err := c.extractor.Extract(metadata)
	if err != nil {
		return Report{}, err
	}
	c.logger.Info("extracted bounds",
		"min_x", b.MinX, "max_x", b.MaxX, "min_y", b.MinY, "max_y", b.MaxY,
		"width_deg", b.Width(), "height_deg", b.Height(),
		"lat", center.Lat, "lon", center.Lon,
	)

	summary := types.NewSummary(c.options.Title, c.options.Description, b)

	if err := utils.EnsureDir(outputDir); err != nil {
		return Report{}, types.NewStageError(types.StageWrite, outputDir, err)
	}

	summaryPath := layout.SummaryPath()
	if err := webmap.WriteSummary(summaryPath, summary); err != nil {
		return Report{}, err
	}
	c.logger.Info("wrote summary", "path", summaryPath)

	result, err := c.transcoder.Transcode(layout.OrthophotoPath(), outputDir, factor, quality)
	if err != nil {
		return Report{}, err
	}
	c.logger.Info("conversion complete",
		"lossless", result.LosslessPath,
		"lossless_size", utils.FormatFileSize(utils.FileSize(result.LosslessPath)),
		"lossy", result.LossyPath,
		"lossy_size", utils.FormatFileSize(utils.FileSize(result.LossyPath)),
	)

	return Report{
		Summary:     summary,
		SummaryPath: summaryPath,
		Orthophoto:  result,
	}, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
