package types

import (
	"errors"
	"fmt"
)

// Stage identifies the pipeline step an error came from
type Stage string

const (
	StageRead   Stage = "read"
	StageParse  Stage = "parse"
	StageSchema Stage = "schema"
	StageDecode Stage = "decode"
	StageEncode Stage = "encode"
	StageWrite  Stage = "write"
)

// Sentinels for errors.Is classification of a StageError
var (
	ErrRead   = errors.New("read failed")
	ErrParse  = errors.New("parse failed")
	ErrSchema = errors.New("schema mismatch")
	ErrDecode = errors.New("decode failed")
	ErrEncode = errors.New("encode failed")
	ErrWrite  = errors.New("write failed")
)

func (s Stage) sentinel() error {
	switch s {
	case StageRead:
		return ErrRead
	case StageParse:
		return ErrParse
	case StageSchema:
		return ErrSchema
	case StageDecode:
		return ErrDecode
	case StageEncode:
		return ErrEncode
	case StageWrite:
		return ErrWrite
	default:
		return nil
	}
}

// StageError is returned by every component at its boundary. All stages are
// fatal; nothing upstream retries or substitutes defaults.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

// NewStageError wraps err for the given stage and path
func NewStageError(stage Stage, path string, err error) *StageError {
	return &StageError{Stage: stage, Path: path, Err: err}
}

func (e *StageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

// Unwrap exposes both the stage sentinel and the underlying cause
func (e *StageError) Unwrap() []error {
	if s := e.Stage.sentinel(); s != nil {
		return []error{s, e.Err}
	}
	return []error{e.Err}
}

// StageOf reports the stage of the first StageError in err's chain
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
