package shell

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunSuccess(t *testing.T) {
	if code := Run("sh", "-c", "exit 0"); code != 0 {
		t.Error("expected exit code 0, got", code)
	}
}

func TestRunPropagatesExitCode(t *testing.T) {
	if code := Run("sh", "-c", "exit 3"); code != 3 {
		t.Error("expected exit code 3, got", code)
	}
}

func TestRunCommandNotFound(t *testing.T) {
	if code := Run("pbconvert-no-such-tool"); code != ExitCommandNotFound {
		t.Error("expected exit code 127 for a missing executable, got", code)
	}
}

func TestRunToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "out.fofn")
	if code := RunToFile(outputFile, "echo", "reads.fasta"); code != 0 {
		t.Fatal("expected exit code 0, got", code)
	}
	data, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "reads.fasta" {
		t.Errorf("unexpected fofn contents: %q", string(data))
	}
}

func TestRunToFilePropagatesExitCode(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "out.txt")
	if code := RunToFile(outputFile, "sh", "-c", "exit 5"); code != 5 {
		t.Error("expected exit code 5, got", code)
	}
}
