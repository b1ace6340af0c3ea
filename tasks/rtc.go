package tasks

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// ResolvedContext is one resolved task invocation: concrete input and
// output paths, the slot count granted by the workflow engine, and the
// resolved option values keyed by namespaced option name.
type ResolvedContext struct {
	TaskID      string
	InputFiles  []string
	OutputFiles []string
	NProc       int
	Options     map[string]any
}

// resolvedContract mirrors the JSON a workflow engine emits.
type resolvedContract struct {
	Task struct {
		TaskID      string         `json:"task_id"`
		InputFiles  []string       `json:"input_files"`
		OutputFiles []string       `json:"output_files"`
		NProc       int            `json:"nproc"`
		Options     map[string]any `json:"options"`
	} `json:"resolved_tool_contract"`
}

// LoadResolvedContext parses a resolved tool contract JSON file.
func LoadResolvedContext(filename string) (*ResolvedContext, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var rc resolvedContract
	if err = json.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("parse %s: %v", filename, err)
	}
	rtc := &ResolvedContext{
		TaskID:      rc.Task.TaskID,
		InputFiles:  rc.Task.InputFiles,
		OutputFiles: rc.Task.OutputFiles,
		NProc:       rc.Task.NProc,
		Options:     rc.Task.Options,
	}
	if rtc.NProc < 1 {
		rtc.NProc = 1
	}
	if rtc.TaskID == "" {
		return nil, fmt.Errorf("%s names no task", filename)
	}
	return rtc, nil
}

// IntOption returns the named option as an int, falling back to def when
// the option is absent. JSON numbers arrive as float64.
func (rtc *ResolvedContext) IntOption(key string, def int) (int, error) {
	v, ok := rtc.Options[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("option %s: %v", key, err)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("option %s: expected a number, got %T", key, v)
	}
}

// StringOption returns the named option as a string, falling back to def
// when the option is absent.
func (rtc *ResolvedContext) StringOption(key, def string) (string, error) {
	v, ok := rtc.Options[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("option %s: expected a string, got %T", key, v)
	}
	return s, nil
}

// Bam2FastxConfig is the validated option set of the extraction tasks.
type Bam2FastxConfig struct {
	MinSubreadLength int
}

func newBam2FastxConfig(rtc *ResolvedContext) (Bam2FastxConfig, error) {
	minLength, err := rtc.IntOption(MinSubreadLengthOption, 0)
	if err != nil {
		return Bam2FastxConfig{}, err
	}
	return Bam2FastxConfig{MinSubreadLength: minLength}, nil
}

// Bam2BamConfig is the validated option set of the barcode task.
type Bam2BamConfig struct {
	ScoreMode string
	NProc     int
}

func newBam2BamConfig(rtc *ResolvedContext) (Bam2BamConfig, error) {
	scoreMode, err := rtc.StringOption(ScoreModeOption, scoreModeOption.Default.(string))
	if err != nil {
		return Bam2BamConfig{}, err
	}
	nproc := rtc.NProc
	if nproc < 1 {
		nproc = 1
	}
	return Bam2BamConfig{ScoreMode: scoreMode, NProc: nproc}, nil
}
