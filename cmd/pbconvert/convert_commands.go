package main

import (
	"flag"
	"fmt"

	"github.com/jrharting/pbconvert/tasks"
	"github.com/vertgenlab/gonomics/exception"
)

func bax2bamUsage(fs *flag.FlagSet) {
	fmt.Print(
		"h5_subreads_to_subread - Convert an HdfSubreadSet to a SubreadSet\n\n" +
			"Usage:\n" +
			"  pbconvert h5_subreads_to_subread -i in.hdfsubreadset.xml -o out.subreadset.xml\n\n" +
			"Options:\n")
	fs.PrintDefaults()
}

func runBax2BamCmd(registry *tasks.Registry, args []string) {
	fs := flag.NewFlagSet("h5_subreads_to_subread", flag.ExitOnError)
	input := fs.String("i", "", "Input HdfSubreadSet XML")
	output := fs.String("o", "", "Output SubreadSet XML")
	err := fs.Parse(args)
	exception.PanicOnErr(err)
	fs.Usage = func() { bax2bamUsage(fs) }

	if *input == "" || *output == "" {
		fs.Usage()
		errExit("\nERROR: must have inputs for -i and -o")
	}

	dispatch(registry, &tasks.ResolvedContext{
		TaskID:      "h5_subreads_to_subread",
		InputFiles:  []string{*input},
		OutputFiles: []string{*output},
		NProc:       1,
	})
}

func fofnUsage(fs *flag.FlagSet) {
	fmt.Print(
		"fasta2fofn - Write a file-of-file-names listing one FASTA\n\n" +
			"Usage:\n" +
			"  pbconvert fasta2fofn -i in.fasta -o out.fofn\n\n" +
			"Options:\n")
	fs.PrintDefaults()
}

func runFofnCmd(registry *tasks.Registry, args []string) {
	fs := flag.NewFlagSet("fasta2fofn", flag.ExitOnError)
	input := fs.String("i", "", "Input FASTA")
	output := fs.String("o", "", "Output FOFN")
	err := fs.Parse(args)
	exception.PanicOnErr(err)
	fs.Usage = func() { fofnUsage(fs) }

	if *input == "" || *output == "" {
		fs.Usage()
		errExit("\nERROR: must have inputs for -i and -o")
	}

	dispatch(registry, &tasks.ResolvedContext{
		TaskID:      "fasta2fofn",
		InputFiles:  []string{*input},
		OutputFiles: []string{*output},
		NProc:       1,
	})
}

func referenceSetUsage(fs *flag.FlagSet) {
	fmt.Print(
		"fasta2referenceset - Build a ReferenceSet dataset from a FASTA\n\n" +
			"Usage:\n" +
			"  pbconvert fasta2referenceset -i in.fasta -o out.referenceset.xml\n\n" +
			"Options:\n")
	fs.PrintDefaults()
}

func runReferenceSetCmd(registry *tasks.Registry, args []string) {
	fs := flag.NewFlagSet("fasta2referenceset", flag.ExitOnError)
	input := fs.String("i", "", "Input FASTA")
	output := fs.String("o", "", "Output ReferenceSet XML")
	err := fs.Parse(args)
	exception.PanicOnErr(err)
	fs.Usage = func() { referenceSetUsage(fs) }

	if *input == "" || *output == "" {
		fs.Usage()
		errExit("\nERROR: must have inputs for -i and -o")
	}

	dispatch(registry, &tasks.ResolvedContext{
		TaskID:      "fasta2referenceset",
		InputFiles:  []string{*input},
		OutputFiles: []string{*output},
		NProc:       1,
	})
}
