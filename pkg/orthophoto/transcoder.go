package orthophoto

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/menta2k/odm-postprocess/pkg/types"
)

// Output extensions for the two artifacts
const (
	LosslessExt = "png"
	LossyExt    = "webp"
)

// ErrEmptyTarget is returned when the size factor collapses a dimension to zero
var ErrEmptyTarget = errors.New("resize target has no pixels")

// Config holds configuration for the transcoder
type Config struct {
	Limits         Limits
	PNGCompression png.CompressionLevel
}

// DefaultConfig returns the configuration used for ODM packages: decoder
// limits explicitly disabled and default PNG compression.
func DefaultConfig() Config {
	return Config{
		Limits:         NoLimits(),
		PNGCompression: png.DefaultCompression,
	}
}

// Transcoder turns one orthophoto mosaic into a lossless copy and a
// downscaled lossy derivative
type Transcoder struct {
	config Config
	logger *slog.Logger
}

// New creates a new Transcoder with default configuration
func New() *Transcoder {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new Transcoder with custom configuration
func NewWithConfig(config Config) *Transcoder {
	return &Transcoder{config: config, logger: slog.Default()}
}

// SetLogger replaces the logger used for progress messages
func (t *Transcoder) SetLogger(logger *slog.Logger) {
	if logger != nil {
		t.logger = logger
	}
}

// Result describes the artifacts produced by Transcode
type Result struct {
	Format       string `json:"format"`
	SourceWidth  int    `json:"source_width"`
	SourceHeight int    `json:"source_height"`
	LossyWidth   int    `json:"lossy_width"`
	LossyHeight  int    `json:"lossy_height"`
	LosslessPath string `json:"lossless_path"`
	LossyPath    string `json:"lossy_path"`
}

// Transcode decodes src once and writes <base>.png and <base>.webp into
// outputDir, where base is src's file name without extension
func (t *Transcoder) Transcode(src, outputDir string, factor float64, quality float32) (Result, error) {
	img, format, err := t.Decode(src)
	if err != nil {
		return Result{}, err
	}

	b := img.Bounds()
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	res := Result{
		Format:       format,
		SourceWidth:  b.Dx(),
		SourceHeight: b.Dy(),
		LosslessPath: filepath.Join(outputDir, base+"."+LosslessExt),
		LossyPath:    filepath.Join(outputDir, base+"."+LossyExt),
	}
	t.logger.Info("decoded orthophoto", "path", src, "format", format, "width", res.SourceWidth, "height", res.SourceHeight)

	if err := t.SaveLossless(img, res.LosslessPath); err != nil {
		return Result{}, err
	}
	t.logger.Info("wrote lossless orthophoto", "path", res.LosslessPath)

	resized, err := t.Resize(img, factor)
	if err != nil {
		return Result{}, types.NewStageError(types.StageEncode, res.LossyPath, err)
	}

	if err := t.SaveLossy(resized, res.LossyPath, quality); err != nil {
		return Result{}, err
	}
	res.LossyWidth, res.LossyHeight = resized.Bounds().Dx(), resized.Bounds().Dy()
	t.logger.Info("wrote lossy orthophoto", "path", res.LossyPath, "width", res.LossyWidth, "height", res.LossyHeight, "quality", quality)

	return res, nil
}

// Decode loads the mosaic at path. The format is sniffed from content, not
// the extension. With the default NoLimits configuration no size ceiling is
// applied, since orthomosaics routinely exceed photo-oriented thresholds.
func (t *Transcoder) Decode(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", types.NewStageError(types.StageRead, path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, "", types.NewStageError(types.StageDecode, path, fmt.Errorf("failed to read image header: %w", err))
	}
	if t.config.Limits.Enabled() {
		if err := t.config.Limits.Check(cfg.Width, cfg.Height); err != nil {
			return nil, "", types.NewStageError(types.StageDecode, path, err)
		}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", types.NewStageError(types.StageRead, path, err)
	}

	img, err := imaging.Decode(f)
	if err != nil {
		return nil, "", types.NewStageError(types.StageDecode, path, err)
	}
	return img, format, nil
}

// SaveLossless writes img unmodified as PNG
func (t *Transcoder) SaveLossless(img image.Image, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return types.NewStageError(types.StageWrite, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = types.NewStageError(types.StageWrite, path, cerr)
		}
	}()

	w := &trackingWriter{w: f}
	if err := imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(t.config.PNGCompression)); err != nil {
		if w.err != nil {
			return types.NewStageError(types.StageWrite, path, w.err)
		}
		return types.NewStageError(types.StageEncode, path, err)
	}
	return nil
}

// TargetSize returns floor(w*factor) x floor(h*factor)
func TargetSize(w, h int, factor float64) (int, int) {
	return int(math.Floor(float64(w) * factor)), int(math.Floor(float64(h) * factor))
}

// Resize scales img by factor with a triangle filter. The result always has
// straight alpha; opaque sources come back with alpha 255 everywhere.
func (t *Transcoder) Resize(img image.Image, factor float64) (*image.NRGBA, error) {
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, fmt.Errorf("invalid size factor %v", factor)
	}

	b := img.Bounds()
	w, h := TargetSize(b.Dx(), b.Dy(), factor)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d scaled by %v gives %dx%d", ErrEmptyTarget, b.Dx(), b.Dy(), factor, w, h)
	}

	return imaging.Resize(img, w, h, imaging.Linear), nil
}

// EncodeLossy writes img to w as lossy WebP at the given quality (0-100).
// libwebp expects straight alpha, so NRGBA pixels are handed over as-is
// instead of going through the encoder's premultiplied conversion.
func (t *Transcoder) EncodeLossy(w io.Writer, img image.Image, quality float32) error {
	return webp.Encode(w, straightRGBA(img), &webp.Options{Lossless: false, Quality: quality})
}

// straightRGBA reinterprets an NRGBA buffer as RGBA without copying. The
// result only makes sense to consumers that read the bytes as straight alpha.
func straightRGBA(img image.Image) image.Image {
	if m, ok := img.(*image.NRGBA); ok {
		return &image.RGBA{Pix: m.Pix, Stride: m.Stride, Rect: m.Rect}
	}
	return img
}

// SaveLossy encodes img as lossy WebP straight into path
func (t *Transcoder) SaveLossy(img image.Image, path string, quality float32) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return types.NewStageError(types.StageWrite, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = types.NewStageError(types.StageWrite, path, cerr)
		}
	}()

	w := &trackingWriter{w: f}
	if err := t.EncodeLossy(w, img, quality); err != nil {
		if w.err != nil {
			return types.NewStageError(types.StageWrite, path, w.err)
		}
		return types.NewStageError(types.StageEncode, path, err)
	}
	return nil
}

// trackingWriter remembers the first write error so encoder failures can be
// told apart from I/O failures
type trackingWriter struct {
	w   io.Writer
	err error
}

func (tw *trackingWriter) Write(p []byte) (int, error) {
	n, err := tw.w.Write(p)
	if err != nil && tw.err == nil {
		tw.err = err
	}
	return n, err
}
