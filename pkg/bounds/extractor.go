package bounds

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/menta2k/odm-postprocess/pkg/types"
)

// ReferenceSystem is the bbox key ODM uses for WGS84 lon/lat bounds
const ReferenceSystem = "EPSG:4326"

// bboxPath is stats → bbox → EPSG:4326 → bbox inside odm_georeferenced_model.info.json
var bboxPath = []interface{}{"stats", "bbox", ReferenceSystem, "bbox"}

var errEmptyDocument = errors.New("document is empty")

// Extractor reads georeferencing metadata and produces bounds
type Extractor struct {
	logger *slog.Logger
}

// New creates an Extractor that logs through slog.Default
func New() *Extractor {
	return &Extractor{logger: slog.Default()}
}

// NewWithLogger creates an Extractor with its own logger
func NewWithLogger(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract reads the metadata file at path and returns its bounds and center
func (e *Extractor) Extract(path string) (types.Bounds, types.Center, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Bounds{}, types.Center{}, types.NewStageError(types.StageRead, path, err)
	}

	b, err := e.extract(data)
	if err != nil {
		var se *types.StageError
		if errors.As(err, &se) {
			se.Path = path
		}
		return types.Bounds{}, types.Center{}, err
	}
	return b, b.Center(), nil
}

// ExtractBytes is Extract for an in-memory document
func (e *Extractor) ExtractBytes(data []byte) (types.Bounds, types.Center, error) {
	b, err := e.extract(data)
	if err != nil {
		return types.Bounds{}, types.Center{}, err
	}
	return b, b.Center(), nil
}

func (e *Extractor) extract(data []byte) (types.Bounds, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return types.Bounds{}, types.NewStageError(types.StageParse, "", errEmptyDocument)
	}
	if !jsoniter.Valid(data) {
		return types.Bounds{}, types.NewStageError(types.StageParse, "", fmt.Errorf("invalid JSON document"))
	}

	bbox := jsoniter.Get(data, bboxPath...)
	if bbox.ValueType() != jsoniter.ObjectValue {
		return types.Bounds{}, types.NewStageError(types.StageSchema, "",
			fmt.Errorf("missing object at stats.bbox[%q].bbox", ReferenceSystem))
	}
	e.logger.Debug("located bounding box", "bbox", bbox.ToString())

	var b types.Bounds
	fields := []struct {
		key string
		dst *float64
	}{
		{"minx", &b.MinX},
		{"miny", &b.MinY},
		{"maxx", &b.MaxX},
		{"maxy", &b.MaxY},
	}
	for _, f := range fields {
		v, err := numericFromAny(bbox.Get(f.key))
		if err != nil {
			return types.Bounds{}, types.NewStageError(types.StageSchema, "", fmt.Errorf("bbox.%s: %w", f.key, err))
		}
		n, err := v.Float64()
		if err != nil {
			return types.Bounds{}, types.NewStageError(types.StageSchema, "", fmt.Errorf("bbox.%s: %w", f.key, err))
		}
		*f.dst = n
	}

	return b, nil
}
