package webmap

import (
	"path/filepath"

	"github.com/menta2k/odm-postprocess/internal/utils"
)

// Fixed names of the ODM package and the web package
const (
	GeoreferencingDir = "odm_georeferencing"
	GeoreferencedBase = "odm_georeferenced_model"
	MetadataExt       = "info.json"
	OrthophotoDir     = "odm_orthophoto"
	OrthophotoFile    = "odm_orthophoto.png"
	SummaryFile       = "summary.json"
)

// Layout resolves input and output artifact paths for one conversion
type Layout struct {
	InputDir  string
	OutputDir string
}

// NewLayout creates a layout for the given ODM package and destination
func NewLayout(inputDir, outputDir string) Layout {
	return Layout{InputDir: inputDir, OutputDir: outputDir}
}

// MetadataPath is <in>/odm_georeferencing/odm_georeferenced_model.info.json
func (l Layout) MetadataPath() string {
	return utils.ReplaceExt(filepath.Join(l.InputDir, GeoreferencingDir, GeoreferencedBase), MetadataExt)
}

// OrthophotoPath is <in>/odm_orthophoto/odm_orthophoto.png
func (l Layout) OrthophotoPath() string {
	return filepath.Join(l.InputDir, OrthophotoDir, OrthophotoFile)
}

func (l Layout) SummaryPath() string {
	return filepath.Join(l.OutputDir, SummaryFile)
}

// LosslessPath is where the transcoder writes the full-resolution PNG
func (l Layout) LosslessPath() string {
	return utils.ReplaceExt(filepath.Join(l.OutputDir, OrthophotoFile), "png")
}

// LossyPath is where the transcoder writes the downsized WebP
func (l Layout) LossyPath() string {
	return utils.ReplaceExt(filepath.Join(l.OutputDir, OrthophotoFile), "webp")
}
