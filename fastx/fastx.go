// Package fastx extracts FASTA/FASTQ records from BAM-backed datasets by
// driving the external bam2fasta/bam2fastq tools, then re-filters the
// extracted records by minimum sequence length.
package fastx

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/jrharting/pbconvert/shell"
	"github.com/klauspost/pgzip"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
)

// Format of the extracted records.
type Format int

const (
	Fasta Format = iota
	Fastq
)

// fastaLineLength is the column width used when re-emitting FASTA records.
const fastaLineLength = 60

var runCmd shell.RunFunc = shell.Run

// BamToFastx runs the named extraction tool (bam2fasta or bam2fastq) on one
// dataset file, then re-emits the extracted records to outputFile keeping
// only those longer than minLength. A minLength below one keeps every
// record; negative values log a warning and are otherwise ignored. The
// tool's compressed temporary output is removed once the scan completes.
func BamToFastx(program, inputFile, outputFile string, minLength int) (int, error) {
	tmp, err := os.CreateTemp("", "pbconvert")
	exception.PanicOnErr(err)
	tmpPrefix := tmp.Name()
	exception.PanicOnErr(tmp.Close())
	exception.PanicOnErr(os.Remove(tmpPrefix))

	code := runCmd(program, "-o", tmpPrefix, inputFile)
	if code != 0 {
		return code, nil
	}

	// bam2fasta writes <prefix>.fasta.gz, bam2fastq <prefix>.fastq.gz
	ext := strings.Replace(program, "bam2", "", 1)
	tmpOut := fmt.Sprintf("%s.%s.gz", tmpPrefix, ext)
	if _, err = os.Stat(tmpOut); err != nil {
		exception.PanicOnErr(fmt.Errorf("missing expected output %s", tmpOut))
	}
	defer os.Remove(tmpOut)
	log.Printf("raw output in %s", tmpOut)

	format := Fasta
	if ext == "fastq" {
		format = Fastq
	}
	if minLength > 0 {
		log.Printf("filtering records by minimum length = %d", minLength)
	} else if minLength < 0 {
		log.Printf("WARNING: minimum length = %d, ignoring", minLength)
	}
	return 0, filterFile(tmpOut, outputFile, format, minLength)
}

// filterFile streams records from inputFile to outputFile, dropping those
// that fail the minimum length predicate. Input ending in .gz is
// decompressed on the fly.
func filterFile(inputFile, outputFile string, format Format, minLength int) error {
	file, err := os.Open(inputFile)
	exception.PanicOnErr(err)
	defer file.Close()
	var reader io.Reader = file
	if strings.HasSuffix(inputFile, ".gz") {
		gz, gzErr := pgzip.NewReader(file)
		exception.PanicOnErr(gzErr)
		defer gz.Close()
		reader = gz
	}

	out := fileio.EasyCreate(outputFile)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<26)
	if format == Fastq {
		err = filterFastq(scanner, out, minLength)
	} else {
		err = filterFasta(scanner, out, minLength)
	}
	if err != nil {
		out.Close()
		return err
	}
	exception.PanicOnErr(scanner.Err())
	exception.PanicOnErr(out.Close())
	return nil
}

// keep is the length predicate: thresholds below one keep everything,
// otherwise the sequence must be strictly longer than the threshold.
func keep(seqLen, minLength int) bool {
	return minLength < 1 || seqLen > minLength
}

func filterFastq(scanner *bufio.Scanner, out *fileio.EasyWriter, minLength int) error {
	for scanner.Scan() {
		header := scanner.Text()
		if !strings.HasPrefix(header, "@") {
			return fmt.Errorf("malformed fastq: expected '@' header, got %q", header)
		}
		if !scanner.Scan() {
			return fmt.Errorf("malformed fastq: record %q truncated", header)
		}
		seq := scanner.Text()
		if !scanner.Scan() || !strings.HasPrefix(scanner.Text(), "+") {
			return fmt.Errorf("malformed fastq: record %q missing '+' line", header)
		}
		if !scanner.Scan() {
			return fmt.Errorf("malformed fastq: record %q missing quality line", header)
		}
		qual := scanner.Text()
		if len(qual) != len(seq) {
			return fmt.Errorf("malformed fastq: record %q sequence/quality length mismatch", header)
		}
		if keep(len(seq), minLength) {
			_, err := fmt.Fprintf(out, "%s\n%s\n+\n%s\n", header, seq, qual)
			exception.PanicOnErr(err)
		}
	}
	return nil
}

func filterFasta(scanner *bufio.Scanner, out *fileio.EasyWriter, minLength int) error {
	var name string
	var seq strings.Builder
	flush := func() {
		if name == "" {
			return
		}
		if keep(seq.Len(), minLength) {
			writeFastaRecord(out, name, seq.String())
		}
		seq.Reset()
	}
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			name = line
			continue
		}
		if name == "" && line != "" {
			return fmt.Errorf("malformed fasta: sequence before first header")
		}
		seq.WriteString(strings.TrimSpace(line))
	}
	flush()
	return nil
}

func writeFastaRecord(out *fileio.EasyWriter, name, seq string) {
	_, err := fmt.Fprintln(out, name)
	exception.PanicOnErr(err)
	for start := 0; start < len(seq); start += fastaLineLength {
		end := start + fastaLineLength
		if end > len(seq) {
			end = len(seq)
		}
		_, err = fmt.Fprintln(out, seq[start:end])
		exception.PanicOnErr(err)
	}
}
