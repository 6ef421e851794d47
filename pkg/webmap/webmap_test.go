package webmap

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chai2010/webp"

	"github.com/menta2k/odm-postprocess/pkg/types"
)

func TestLayout(t *testing.T) {
	l := NewLayout(filepath.Join("data", "odm"), filepath.Join("data", "web"))

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"metadata", l.MetadataPath(), filepath.Join("data", "odm", "odm_georeferencing", "odm_georeferenced_model.info.json")},
		{"orthophoto", l.OrthophotoPath(), filepath.Join("data", "odm", "odm_orthophoto", "odm_orthophoto.png")},
		{"summary", l.SummaryPath(), filepath.Join("data", "web", "summary.json")},
		{"lossless", l.LosslessPath(), filepath.Join("data", "web", "odm_orthophoto.png")},
		{"lossy", l.LossyPath(), filepath.Join("data", "web", "odm_orthophoto.webp")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, tt.got)
			}
		})
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), SummaryFile)
	want := types.NewSummary("Field 7", "June flight", types.Bounds{MinX: 10, MaxX: 12, MinY: 20, MaxY: 22})

	if err := WriteSummary(path, want); err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}

	got, err := ReadSummary(path)
	if err != nil {
		t.Fatalf("ReadSummary failed: %v", err)
	}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestMarshalSummaryShape(t *testing.T) {
	s := types.NewSummary("", "", types.Bounds{MinX: 10, MaxX: 12, MinY: 20, MaxY: 22})
	data, err := MarshalSummary(s)
	if err != nil {
		t.Fatalf("MarshalSummary failed: %v", err)
	}

	text := string(data)
	for _, want := range []string{
		`"title": ""`,
		`"description": ""`,
		`"min_x": 10`,
		`"max_y": 22`,
		`"lat": 21`,
		`"lon": 11`,
		"\n  \"bounds\": {",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}
}

func TestWriteSummaryMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", SummaryFile)
	err := WriteSummary(path, types.Summary{})
	if !errors.Is(err, types.ErrWrite) {
		t.Fatalf("Expected write error, got %v", err)
	}
}

func TestReadSummaryErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadSummary(filepath.Join(dir, "none.json")); !errors.Is(err, types.ErrRead) {
		t.Errorf("Expected read error, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSummary(bad); !errors.Is(err, types.ErrParse) {
		t.Errorf("Expected parse error, got %v", err)
	}
}

func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 90, A: 255})
		}
	}
	return img
}

func writePackage(t *testing.T, dir string) {
	t.Helper()
	l := NewLayout("", dir)

	if err := WriteSummary(l.SummaryPath(), types.NewSummary("t", "d", types.Bounds{MinX: 1, MaxX: 3, MinY: 5, MaxY: 7})); err != nil {
		t.Fatal(err)
	}

	f, err := os.Create(l.LosslessPath())
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, createTestImage(400, 300)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	f, err = os.Create(l.LossyPath())
	if err != nil {
		t.Fatal(err)
	}
	if err := webp.Encode(f, createTestImage(80, 60), &webp.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
	f.Close()
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	writePackage(t, dir)

	info, err := Inspect(dir)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}

	if info.Summary.Center != (types.Center{Lat: 6, Lon: 2}) {
		t.Errorf("Unexpected center %+v", info.Summary.Center)
	}
	if info.Lossless.Format != "png" || info.Lossless.Width != 400 || info.Lossless.Height != 300 {
		t.Errorf("Unexpected lossless info %+v", info.Lossless)
	}
	if info.Lossless.Area != 120000 {
		t.Errorf("Expected area 120000, got %d", info.Lossless.Area)
	}
	if info.Lossy.Format != "webp" || info.Lossy.Width != 80 || info.Lossy.Height != 60 {
		t.Errorf("Unexpected lossy info %+v", info.Lossy)
	}
	expectedRatio := float64(80) / float64(60)
	if info.Lossy.AspectRatio != expectedRatio {
		t.Errorf("Expected aspect ratio %f, got %f", expectedRatio, info.Lossy.AspectRatio)
	}
	if info.Lossy.Size <= 0 || info.Lossy.SizeHuman == "" {
		t.Errorf("Expected lossy file size, got %+v", info.Lossy)
	}
}

func TestInspectMissingArtifact(t *testing.T) {
	for _, name := range []string{SummaryFile, "odm_orthophoto.png", "odm_orthophoto.webp"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writePackage(t, dir)
			missing := filepath.Join(dir, name)
			if err := os.Remove(missing); err != nil {
				t.Fatal(err)
			}

			_, err := Inspect(dir)
			if !errors.Is(err, types.ErrRead) || !errors.Is(err, os.ErrNotExist) {
				t.Fatalf("Expected missing-artifact read error, got %v", err)
			}
			var se *types.StageError
			if !errors.As(err, &se) || se.Path != missing {
				t.Errorf("Expected error naming %s, got %v", missing, err)
			}
		})
	}
}

func TestInspectNotADirectory(t *testing.T) {
	dir := t.TempDir()
	writePackage(t, dir)

	for _, target := range []string{filepath.Join(dir, "absent"), filepath.Join(dir, SummaryFile)} {
		_, err := Inspect(target)
		if !errors.Is(err, types.ErrRead) || !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Inspect(%s): expected read error, got %v", target, err)
		}
	}
}

func TestGetImageInfoCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odm_orthophoto.png")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := GetImageInfo(path)
	if !errors.Is(err, types.ErrDecode) {
		t.Fatalf("Expected decode error, got %v", err)
	}
}
