package webmap

import (
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/menta2k/odm-postprocess/pkg/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalSummary renders s as JSON indented with two spaces
func MarshalSummary(s types.Summary) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// WriteSummary writes s to path, replacing any existing file
func WriteSummary(path string, s types.Summary) error {
	data, err := MarshalSummary(s)
	if err != nil {
		return types.NewStageError(types.StageEncode, path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return types.NewStageError(types.StageWrite, path, err)
	}
	return nil
}

// ReadSummary loads a summary previously written by WriteSummary
func ReadSummary(path string) (types.Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Summary{}, types.NewStageError(types.StageRead, path, err)
	}

	var s types.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return types.Summary{}, types.NewStageError(types.StageParse, path, err)
	}
	return s, nil
}
