package webmap

import (
	"fmt"
	"image"
	_ "image/png"
	"os"

	_ "golang.org/x/image/webp"

	"github.com/menta2k/odm-postprocess/internal/utils"
	"github.com/menta2k/odm-postprocess/pkg/types"
)

// ImageInfo contains basic metadata of an image artifact
type ImageInfo struct {
	Path        string  `json:"path" yaml:"path"`
	Format      string  `json:"format" yaml:"format"`
	Width       int     `json:"width" yaml:"width"`
	Height      int     `json:"height" yaml:"height"`
	AspectRatio float64 `json:"aspect_ratio" yaml:"aspect_ratio"`
	Area        int     `json:"area" yaml:"area"`
	Size        int64   `json:"size" yaml:"size"`
	SizeHuman   string  `json:"size_human" yaml:"size_human"`
}

// PackageInfo describes a converted web package
type PackageInfo struct {
	Dir      string        `json:"dir" yaml:"dir"`
	Summary  types.Summary `json:"summary" yaml:"summary"`
	Lossless ImageInfo     `json:"lossless" yaml:"lossless"`
	Lossy    ImageInfo     `json:"lossy" yaml:"lossy"`
}

// GetImageInfo reads only the header of the image at path
func GetImageInfo(path string) (ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, types.NewStageError(types.StageRead, path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return ImageInfo{}, types.NewStageError(types.StageDecode, path, fmt.Errorf("failed to read image header: %w", err))
	}

	info := ImageInfo{
		Path:   path,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Area:   cfg.Width * cfg.Height,
		Size:   utils.FileSize(path),
	}
	if cfg.Height > 0 {
		info.AspectRatio = float64(cfg.Width) / float64(cfg.Height)
	}
	info.SizeHuman = utils.FormatFileSize(info.Size)
	return info, nil
}

// Inspect reports the summary and both orthophoto artifacts in outputDir
func Inspect(outputDir string) (PackageInfo, error) {
	if !utils.DirExists(outputDir) {
		return PackageInfo{}, types.NewStageError(types.StageRead, outputDir, fmt.Errorf("not a package directory: %w", os.ErrNotExist))
	}

	layout := NewLayout("", outputDir)
	for _, p := range []string{layout.SummaryPath(), layout.LosslessPath(), layout.LossyPath()} {
		if !utils.FileExists(p) {
			return PackageInfo{}, types.NewStageError(types.StageRead, p, fmt.Errorf("artifact missing: %w", os.ErrNotExist))
		}
	}

	summary, err := ReadSummary(layout.SummaryPath())
	if err != nil {
		return PackageInfo{}, err
	}
	lossless, err := GetImageInfo(layout.LosslessPath())
	if err != nil {
		return PackageInfo{}, err
	}
	lossy, err := GetImageInfo(layout.LossyPath())
	if err != nil {
		return PackageInfo{}, err
	}

	return PackageInfo{
		Dir:      outputDir,
		Summary:  summary,
		Lossless: lossless,
		Lossy:    lossy,
	}, nil
}
