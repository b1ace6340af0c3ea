// Package convert turns raw-format sequencing datasets into BAM-backed
// datasets by driving the external bax2bam converter, fanning out per movie
// when an input spans more than one acquisition.
package convert

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jrharting/pbconvert/dataset"
	"github.com/jrharting/pbconvert/shell"
	"github.com/vertgenlab/gonomics/exception"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// intermediateSuffix names the per-movie dataset files produced during
// fan-out.
const intermediateSuffix = ".hdfsubreadset.xml"

var runCmd shell.RunFunc = shell.Run

// BaxToBam converts an HdfSubreadSet to a SubreadSet. Inputs spanning a
// single movie convert directly; inputs spanning several movies convert one
// raw file at a time and the per-movie results are merged into one output
// dataset carrying the input's name and, when present, its description and
// collection metadata. The returned int is the exit code of the first
// failing external conversion, or zero.
func BaxToBam(inputFile, outputFile string) (int, error) {
	dsIn := dataset.Read(inputFile)
	movies := make(map[string]bool)
	for _, rr := range dsIn.ResourceReaders() {
		movie, err := rr.MovieName()
		if err != nil {
			return 1, err
		}
		movies[movie] = true
	}
	if len(movies) <= 1 {
		return baxToBamSingle(inputFile, outputFile)
	}

	names := maps.Keys(movies)
	slices.Sort(names)
	log.Printf("input spans %d movies: %s", len(names), strings.Join(names, ", "))

	outDir := filepath.Dir(outputFile)
	var intermediates []string
	for _, baxFile := range dsIn.ExternalFiles() {
		intermediate := filepath.Join(outDir,
			stripExtensions(filepath.Base(baxFile), 2)+intermediateSuffix)
		if code, err := baxToBamSingle(baxFile, intermediate); code != 0 || err != nil {
			log.Println("bax2bam failed")
			return code, err
		}
		intermediates = append(intermediates, intermediate)
	}

	dsOut := dataset.Merge(dataset.SubreadSetType, intermediates...)
	dsOut.Name = dsIn.Name
	if dsIn.Description != "" {
		dsOut.Description = dsIn.Description
		dsOut.MergeMetadata(dsIn)
	}
	dsOut.Write(outputFile)
	return 0, nil
}

// baxToBamSingle converts one raw file or dataset. bax2bam only accepts
// dataset XML input, so a bare bax file is first wrapped in a temporary
// single-resource dataset.
func baxToBamSingle(inputFile, outputFile string) (int, error) {
	input := inputFile
	if strings.HasSuffix(inputFile, ".bax.h5") {
		tmp, err := os.CreateTemp("", "pbconvert.*"+intermediateSuffix)
		exception.PanicOnErr(err)
		input = tmp.Name()
		exception.PanicOnErr(tmp.Close())
		defer os.Remove(input)

		wrapper := dataset.New(dataset.HdfSubreadSetType)
		wrapper.ExternalResources.Resources = []dataset.ExternalResource{
			{ResourceID: inputFile, MetaType: dataset.BaxType},
		}
		wrapper.Write(input)
	}

	baseName := stripExtensions(outputFile, 2)
	code := runCmd("bax2bam",
		"--subread",
		"-o", baseName,
		"--output-xml", outputFile,
		"--xml", input)
	if code != 0 {
		return code, nil
	}
	// the converter must have produced an indexed dataset
	exception.PanicOnErr(dataset.Read(outputFile).AssertIndexed())
	return 0, nil
}

// stripExtensions drops the last n dot-separated components of name.
func stripExtensions(name string, n int) string {
	parts := strings.Split(name, ".")
	if len(parts) > n {
		parts = parts[:len(parts)-n]
	}
	return strings.Join(parts, ".")
}
