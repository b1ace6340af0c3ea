// Package barcode drives the external bam2bam barcode splitter and rebuilds
// the dataset resource tree around its outputs, keeping each subread BAM
// associated with its scraps file, its indices and the barcode set used.
package barcode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jrharting/pbconvert/dataset"
	"github.com/jrharting/pbconvert/shell"
	"github.com/vertgenlab/gonomics/exception"
)

// Score modes understood by the external splitter.
const (
	ScoreModeSymmetric  string = "symmetric"
	ScoreModeAsymmetric string = "asymmetric"
)

var runCmd shell.RunFunc = shell.Run

// Rebuild runs the barcode splitter over every subreads/scraps pair in the
// input SubreadSet and writes a new SubreadSet whose resources point at the
// barcoded outputs. Usage problems (bad score mode, multi-FASTA barcode
// sets, missing scraps) surface as errors before any external process is
// launched; splitter failures propagate as the returned exit code with no
// output written.
func Rebuild(subreadSetFile, barcodeSetFile, outputFile string, nproc int, scoreMode string) (int, error) {
	if scoreMode != ScoreModeSymmetric && scoreMode != ScoreModeAsymmetric {
		return 2, fmt.Errorf("unrecognized score mode %q", scoreMode)
	}
	bc := dataset.Read(barcodeSetFile)
	if len(bc.ExternalResources.Resources) > 1 {
		return 2, errors.New("multi-FASTA barcode set input is not supported")
	}
	if len(bc.ExternalResources.Resources) == 0 {
		return 2, errors.New("the barcode set names no FASTA file")
	}
	barcodeFasta := bc.ExternalFiles()[0]

	dsIn := dataset.Read(subreadSetFile)
	dsNew := dataset.New(dataset.SubreadSetType)
	outDir := filepath.Dir(outputFile)
	for i := range dsIn.ExternalResources.Resources {
		res := &dsIn.ExternalResources.Resources[i]
		subreadsBam := res.BamPath()
		if subreadsBam == "" {
			return 2, fmt.Errorf("resource %s is not a subread BAM", res.ResourceID)
		}
		scrapsBam := res.ScrapsPath()
		if scrapsBam == "" {
			return 2, errors.New("the input SubreadSet must include scraps")
		}
		newPrefix := filepath.Join(outDir,
			strings.Replace(filepath.Base(subreadsBam), ".subreads.bam", "_barcoded", 1))
		subreadsBam = dsIn.ResolvePath(subreadsBam)
		scrapsBam = dsIn.ResolvePath(scrapsBam)

		code := runCmd("bam2bam",
			"-j", strconv.Itoa(nproc),
			"-b", strconv.Itoa(nproc),
			"-o", newPrefix,
			"--barcodes", barcodeFasta,
			"--scoreMode", scoreMode,
			subreadsBam, scrapsBam)
		if code != 0 {
			return code, nil
		}

		newSubreads := newPrefix + ".subreads.bam"
		newScraps := newPrefix + ".scraps.bam"
		if _, err := os.Stat(newSubreads); err != nil {
			// the splitter reported success, so its primary output must exist
			exception.PanicOnErr(fmt.Errorf("missing %s", newSubreads))
		}
		dsNew.ExternalResources.Resources = append(dsNew.ExternalResources.Resources,
			barcodedResource(newSubreads, newScraps, barcodeSetFile))
	}

	// TODO record the barcode set as a top-level dataset resource as well
	dsNew.CopyFiltersFrom(dsIn)
	dsNew.PopulateMetaTypes()
	dsNew.UpdateCounts()
	dsNew.Write(outputFile)
	return 0, nil
}

// barcodedResource builds the resource node for one split pair: the primary
// subreads BAM carrying its index, with the scraps BAM and the barcode set
// nested beneath it.
func barcodedResource(subreadsBam, scrapsBam, barcodeSetFile string) dataset.ExternalResource {
	return dataset.ExternalResource{
		ResourceID: subreadsBam,
		MetaType:   dataset.SubreadBamType,
		FileIndices: &dataset.FileIndices{Indices: []dataset.FileIndex{
			{ResourceID: subreadsBam + ".pbi"},
		}},
		Resources: &dataset.ExternalResources{Resources: []dataset.ExternalResource{
			{
				ResourceID: scrapsBam,
				MetaType:   dataset.ScrapsBamType,
				FileIndices: &dataset.FileIndices{Indices: []dataset.FileIndex{
					{ResourceID: scrapsBam + ".pbi"},
				}},
			},
			{
				ResourceID: barcodeSetFile,
				MetaType:   dataset.BarcodeSetType,
			},
		}},
	}
}
