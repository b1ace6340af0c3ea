package tasks

import (
	"os"
	"path/filepath"
	"testing"
)

var declaredTasks = []string{
	"h5_subreads_to_subread",
	"bam2bam_barcode",
	"bam2fastq",
	"bam2fasta",
	"bam2fasta_nofilter",
	"fasta2fofn",
	"fasta2referenceset",
	"bam2fastq_ccs",
	"bam2fasta_ccs",
}

func TestRegistryDeclaresAllTasks(t *testing.T) {
	r := NewRegistry()
	for _, name := range declaredTasks {
		task, ok := r.Get(name)
		if !ok {
			t.Error("task not registered:", name)
			continue
		}
		if task.Run == nil {
			t.Error("task has no handler:", name)
		}
		if len(task.InputTypes) == 0 || len(task.OutputTypes) == 0 {
			t.Error("task declares no file types:", name)
		}
	}
	if names := r.Names(); len(names) != len(declaredTasks) {
		t.Error("unexpected task count:", len(names))
	}
}

func TestRegistryRejectsUnknownTask(t *testing.T) {
	r := NewRegistry()
	if _, err := r.RunTask(&ResolvedContext{TaskID: "bam2carrier_pigeon"}); err == nil {
		t.Error("expected an error for an unknown task id")
	}
}

func TestLoadResolvedContext(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "rtc.json")
	contract := `{
  "resolved_tool_contract": {
    "task_id": "bam2fasta",
    "input_files": ["in.subreadset.xml"],
    "output_files": ["out.fasta"],
    "nproc": 4,
    "options": {"pbconvert.task_options.min_subread_length": 50}
  }
}`
	if err := os.WriteFile(filename, []byte(contract), 0o644); err != nil {
		t.Fatal(err)
	}
	rtc, err := LoadResolvedContext(filename)
	if err != nil {
		t.Fatal(err)
	}
	if rtc.TaskID != "bam2fasta" || rtc.NProc != 4 {
		t.Error("contract fields lost:", rtc.TaskID, rtc.NProc)
	}
	if rtc.InputFiles[0] != "in.subreadset.xml" || rtc.OutputFiles[0] != "out.fasta" {
		t.Error("file lists lost:", rtc.InputFiles, rtc.OutputFiles)
	}
	minLength, err := rtc.IntOption(MinSubreadLengthOption, 0)
	if err != nil {
		t.Fatal(err)
	}
	if minLength != 50 {
		t.Error("numeric option lost:", minLength)
	}
}

func TestLoadResolvedContextRequiresTaskID(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "rtc.json")
	if err := os.WriteFile(filename, []byte(`{"resolved_tool_contract": {}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadResolvedContext(filename); err == nil {
		t.Error("expected an error for a contract without a task id")
	}
}

func TestOptionDefaults(t *testing.T) {
	rtc := &ResolvedContext{TaskID: "bam2fasta", Options: map[string]any{}}
	minLength, err := rtc.IntOption(MinSubreadLengthOption, 0)
	if err != nil || minLength != 0 {
		t.Error("missing option should fall back to its default:", minLength, err)
	}
	mode, err := rtc.StringOption(ScoreModeOption, "symmetric")
	if err != nil || mode != "symmetric" {
		t.Error("missing option should fall back to its default:", mode, err)
	}
}

func TestOptionTypeMismatch(t *testing.T) {
	rtc := &ResolvedContext{Options: map[string]any{
		MinSubreadLengthOption: []any{1, 2},
		ScoreModeOption:        7.0,
	}}
	if _, err := rtc.IntOption(MinSubreadLengthOption, 0); err == nil {
		t.Error("expected an error for a non-numeric option value")
	}
	if _, err := rtc.StringOption(ScoreModeOption, ""); err == nil {
		t.Error("expected an error for a non-string option value")
	}
}

func TestBam2BamConfigDefaults(t *testing.T) {
	cfg, err := newBam2BamConfig(&ResolvedContext{NProc: 0, Options: map[string]any{}})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ScoreMode != "symmetric" {
		t.Error("score mode should default to symmetric:", cfg.ScoreMode)
	}
	if cfg.NProc != 1 {
		t.Error("nproc should never drop below 1:", cfg.NProc)
	}
}
