package odmpostprocess

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/menta2k/odm-postprocess/pkg/orthophoto"
	"github.com/menta2k/odm-postprocess/pkg/types"
	"github.com/menta2k/odm-postprocess/pkg/webmap"
)

const fieldMetadata = `{
  "stats": {
    "bbox": {
      "EPSG:4326": {
        "bbox": {"minx": 10, "miny": "20", "maxx": 12.0, "maxy": "22.0"}
      }
    }
  }
}`

// createTestImage creates an opaque gradient mosaic
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	return img
}

// writeODMPackage lays out a minimal ODM project under dir
func writeODMPackage(t *testing.T, dir, metadata string, width, height int) {
	t.Helper()
	l := webmap.NewLayout(dir, "")

	for _, p := range []string{l.MetadataPath(), l.OrthophotoPath()} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(l.MetadataPath(), []byte(metadata), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := os.Create(l.OrthophotoPath())
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, createTestImage(width, height)); err != nil {
		t.Fatal(err)
	}
}

func decodeConfig(t *testing.T, path string) image.Config {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("failed to decode %s: %v", path, err)
	}
	return cfg
}

func TestNew(t *testing.T) {
	c := New()
	if c == nil {
		t.Fatal("New() returned nil")
	}
	if c.extractor == nil || c.transcoder == nil {
		t.Error("Converter components are nil")
	}
	if c.options.Transcoder.Limits.Enabled() {
		t.Error("Expected decode limits to be disabled by default")
	}
}

func TestConvert(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "web")
	writeODMPackage(t, in, fieldMetadata, 1000, 500)

	report, err := New().Convert(in, out, DefaultSizeFactor, DefaultQuality)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	wantBounds := types.Bounds{MinX: 10, MaxX: 12, MinY: 20, MaxY: 22}
	if report.Summary.Bounds != wantBounds {
		t.Errorf("Expected bounds %+v, got %+v", wantBounds, report.Summary.Bounds)
	}
	if report.Summary.Center != (types.Center{Lat: 21, Lon: 11}) {
		t.Errorf("Expected center 21/11, got %+v", report.Summary.Center)
	}

	summary, err := webmap.ReadSummary(filepath.Join(out, "summary.json"))
	if err != nil {
		t.Fatalf("ReadSummary failed: %v", err)
	}
	if summary != report.Summary {
		t.Errorf("summary.json %+v differs from report %+v", summary, report.Summary)
	}
	if summary.Title != "" || summary.Description != "" {
		t.Error("Expected empty title and description")
	}

	lossless := decodeConfig(t, filepath.Join(out, "odm_orthophoto.png"))
	if lossless.Width != 1000 || lossless.Height != 500 {
		t.Errorf("Expected lossless 1000x500, got %dx%d", lossless.Width, lossless.Height)
	}

	lossy := decodeConfig(t, filepath.Join(out, "odm_orthophoto.webp"))
	if lossy.Width != 200 || lossy.Height != 100 {
		t.Errorf("Expected lossy 200x100, got %dx%d", lossy.Width, lossy.Height)
	}
	if report.Orthophoto.LossyWidth != 200 || report.Orthophoto.LossyHeight != 100 {
		t.Errorf("Unexpected report dimensions %+v", report.Orthophoto)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected 3 artifacts, got %d", len(entries))
	}
}

func TestConvertTitleAndDescription(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeODMPackage(t, in, fieldMetadata, 100, 50)

	opts := DefaultOptions()
	opts.Title = "North field"
	opts.Description = "Survey 2024-06"

	report, err := NewWithConfig(opts).Convert(in, out, 0.5, 80)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if report.Summary.Title != "North field" || report.Summary.Description != "Survey 2024-06" {
		t.Errorf("Unexpected summary %+v", report.Summary)
	}
}

func TestConvertLogsExtent(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeODMPackage(t, in, fieldMetadata, 100, 50)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	if _, err := NewWithLogger(DefaultOptions(), logger).Convert(in, out, 0.5, 80); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	for _, want := range []string{"width_deg=2", "height_deg=2", "lat=21", "lon=11"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Expected %q in log:\n%s", want, buf.String())
		}
	}
}

func TestConvertSchemaErrorWritesNothing(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "web")
	writeODMPackage(t, in, `{"stats": {"bbox": {}}}`, 100, 50)

	_, err := New().Convert(in, out, DefaultSizeFactor, DefaultQuality)
	if !errors.Is(err, types.ErrSchema) {
		t.Fatalf("Expected schema error, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("Output directory should not exist after a schema error")
	}
}

func TestConvertNonFiniteBoundsWritesNothing(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "web")
	doc := `{"stats": {"bbox": {"EPSG:4326": {"bbox": {"minx": "NaN", "miny": 20, "maxx": 12, "maxy": 22}}}}}`
	writeODMPackage(t, in, doc, 100, 50)

	_, err := New().Convert(in, out, DefaultSizeFactor, DefaultQuality)
	if !errors.Is(err, types.ErrSchema) {
		t.Fatalf("Expected schema error, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("Output directory should not exist after a schema error")
	}
}

func TestConvertMissingOrthophoto(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeODMPackage(t, in, fieldMetadata, 10, 10)
	if err := os.Remove(webmap.NewLayout(in, out).OrthophotoPath()); err != nil {
		t.Fatal(err)
	}

	_, err := New().Convert(in, out, DefaultSizeFactor, DefaultQuality)
	if !errors.Is(err, types.ErrRead) {
		t.Fatalf("Expected read error, got %v", err)
	}
	stage, ok := types.StageOf(err)
	if !ok || stage != types.StageRead {
		t.Errorf("Expected read stage, got %q", stage)
	}
}

func TestConvertLimitsEnabled(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeODMPackage(t, in, fieldMetadata, 300, 200)

	opts := DefaultOptions()
	opts.Transcoder.Limits = orthophoto.Limits{MaxDimension: 256}

	_, err := NewWithConfig(opts).Convert(in, out, DefaultSizeFactor, DefaultQuality)
	if !errors.Is(err, types.ErrDecode) {
		t.Fatalf("Expected decode error, got %v", err)
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("Expected version %s, got %s", Version, GetVersion())
	}
}
