package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/jrharting/pbconvert/tasks"
)

const version string = "0.1.0"

type subcommand struct {
	name     string
	function func(registry *tasks.Registry, args []string)
	blurb    string
}

// SubCommands contains all valid subcommands. New conversions are added by
// declaring the task in the tasks registry and listing it here.
var SubCommands = []*subcommand{
	{"h5_subreads_to_subread", runBax2BamCmd, "convert HDF subread sets to BAM-backed subread sets"},
	{"bam2bam_barcode", runBarcodeCmd, "split subread BAMs by barcode and rebuild the dataset"},
	{"bam2fastq", runFastxCmd("bam2fastq"), "extract FASTQ records from a subread set"},
	{"bam2fasta", runFastxCmd("bam2fasta"), "extract FASTA records from a subread set"},
	{"bam2fasta_nofilter", runFastxCmd("bam2fasta_nofilter"), "extract FASTA records without length filtering"},
	{"fasta2fofn", runFofnCmd, "write a file-of-file-names for a FASTA"},
	{"fasta2referenceset", runReferenceSetCmd, "build a ReferenceSet dataset from a FASTA"},
	{"bam2fastq_ccs", runFastxCmd("bam2fastq_ccs"), "extract FASTQ records from a consensus read set"},
	{"bam2fasta_ccs", runFastxCmd("bam2fasta_ccs"), "extract FASTA records from a consensus read set"},
	{"run-rtc", runRtcCmd, "run a resolved tool contract JSON file"},
}

func usage() {
	s := new(strings.Builder)
	s.WriteString(
		"Program: pbconvert (dataset conversion wrappers for PacBio sequencing tools)\n" +
			"Version: " + version + "\n" +
			"\nUsage:\tpbconvert <command> [options]\n\n" +
			"Commands:\n")

	// add subcommand text via tabwriter so the columns align
	w := tabwriter.NewWriter(s, 0, 8, 5, '\t', tabwriter.AlignRight)
	for i := range SubCommands {
		fmt.Fprintf(w, "\t%s\t%s\n", SubCommands[i].name, SubCommands[i].blurb)
	}
	w.Flush()
	fmt.Print(s.String())
}

// commandMap builds a map of possible subcommands keyed on the name of the subcommand
func commandMap() map[string]func(registry *tasks.Registry, args []string) {
	m := make(map[string]func(registry *tasks.Registry, args []string))
	for i := range SubCommands {
		m[SubCommands[i].name] = SubCommands[i].function
	}
	return m
}

func main() {
	flag.Usage = usage
	flag.Parse()

	// check if first argument is a valid subcommand
	command := commandMap()[flag.Arg(0)]

	// if no command is found, print the usage and return
	if command == nil {
		flag.Usage()
		return
	}

	// the registry is built once here and handed to the subcommand
	command(tasks.NewRegistry(), flag.Args()[1:])
}

func errExit(err string) {
	fmt.Fprintln(os.Stderr, color.RedString(err))
	os.Exit(1)
}

// dispatch runs one resolved context through the registry and exits with the
// task's code on failure.
func dispatch(registry *tasks.Registry, rtc *tasks.ResolvedContext) {
	code, err := registry.RunTask(rtc)
	if err != nil {
		errExit("ERROR: " + err.Error())
	}
	if code != 0 {
		os.Exit(code)
	}
}
