package main

import (
	"flag"
	"fmt"

	"github.com/jrharting/pbconvert/barcode"
	"github.com/jrharting/pbconvert/tasks"
	"github.com/vertgenlab/gonomics/exception"
)

func barcodeUsage(fs *flag.FlagSet) {
	fmt.Print(
		"bam2bam_barcode - Split subread BAMs by barcode and rebuild the dataset\n\n" +
			"Usage:\n" +
			"  pbconvert bam2bam_barcode -i in.subreadset.xml -b barcodes.barcodeset.xml -o out.subreadset.xml\n\n" +
			"Options:\n")
	fs.PrintDefaults()
}

func runBarcodeCmd(registry *tasks.Registry, args []string) {
	fs := flag.NewFlagSet("bam2bam_barcode", flag.ExitOnError)
	input := fs.String("i", "", "Input SubreadSet XML (must include scraps)")
	barcodes := fs.String("b", "", "Input BarcodeSet XML")
	output := fs.String("o", "", "Output SubreadSet XML")
	nproc := fs.Int("nproc", 1, "Worker count forwarded to bam2bam")
	scoreMode := fs.String("scoreMode", barcode.ScoreModeSymmetric,
		"Barcode score mode (symmetric or asymmetric)")
	err := fs.Parse(args)
	exception.PanicOnErr(err)
	fs.Usage = func() { barcodeUsage(fs) }

	if *input == "" || *barcodes == "" || *output == "" {
		fs.Usage()
		errExit("\nERROR: must have inputs for -i, -b, and -o")
	}

	dispatch(registry, &tasks.ResolvedContext{
		TaskID:      "bam2bam_barcode",
		InputFiles:  []string{*input, *barcodes},
		OutputFiles: []string{*output},
		NProc:       *nproc,
		Options:     map[string]any{tasks.ScoreModeOption: *scoreMode},
	})
}
