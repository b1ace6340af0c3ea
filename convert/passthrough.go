package convert

import (
	"github.com/jrharting/pbconvert/shell"
)

var runCmdToFile shell.RunToFileFunc = shell.RunToFile

// FastaToFofn writes a file-of-file-names listing the single input FASTA.
func FastaToFofn(inputFile, outputFile string) (int, error) {
	return runCmdToFile(outputFile, "echo", inputFile), nil
}

// FastaToReferenceSet builds a ReferenceSet dataset from a FASTA with the
// external dataset tool. Older installs ship the tool as dataset.py, so a
// command-not-found result triggers one retry under that name.
func FastaToReferenceSet(inputFile, outputFile string) (int, error) {
	args := []string{"create", "--type", "ReferenceSet", "--generateIndices",
		outputFile, inputFile}
	code := runCmd("dataset", args...)
	if code == shell.ExitCommandNotFound {
		code = runCmd("dataset.py", args...)
	}
	return code, nil
}
