package main

import (
	"flag"
	"fmt"

	"github.com/jrharting/pbconvert/tasks"
	"github.com/vertgenlab/gonomics/exception"
)

// tasksWithLengthFilter expose the -minLength flag; the rest always extract
// unfiltered.
var tasksWithLengthFilter = map[string]bool{
	"bam2fastq": true,
	"bam2fasta": true,
}

func fastxUsage(task string, fs *flag.FlagSet) {
	fmt.Printf(
		"%s - Extract records from a BAM-backed dataset\n\n"+
			"Usage:\n"+
			"  pbconvert %s -i in.xml -o out\n\n"+
			"Options:\n", task, task)
	fs.PrintDefaults()
}

// runFastxCmd builds the subcommand handler for one extraction task.
func runFastxCmd(task string) func(registry *tasks.Registry, args []string) {
	return func(registry *tasks.Registry, args []string) {
		fs := flag.NewFlagSet(task, flag.ExitOnError)
		input := fs.String("i", "", "Input dataset XML")
		output := fs.String("o", "", "Output FASTA/FASTQ file")
		var minLength *int
		if tasksWithLengthFilter[task] {
			minLength = fs.Int("minLength", 0, "Minimum subread length to keep")
		}
		err := fs.Parse(args)
		exception.PanicOnErr(err)
		fs.Usage = func() { fastxUsage(task, fs) }

		if *input == "" || *output == "" {
			fs.Usage()
			errExit("\nERROR: must have inputs for -i and -o")
		}

		rtc := &tasks.ResolvedContext{
			TaskID:      task,
			InputFiles:  []string{*input},
			OutputFiles: []string{*output},
			NProc:       1,
		}
		if minLength != nil {
			rtc.Options = map[string]any{tasks.MinSubreadLengthOption: *minLength}
		}
		dispatch(registry, rtc)
	}
}
