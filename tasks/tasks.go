// Package tasks declares the conversion task contracts and maps task
// identifiers to their handlers. The registry is built explicitly at
// process start; nothing registers itself as a side effect.
package tasks

import (
	"fmt"

	"github.com/jrharting/pbconvert/barcode"
	"github.com/jrharting/pbconvert/convert"
	"github.com/jrharting/pbconvert/fastx"
)

// FileType tags the declared inputs and outputs of a task.
type FileType string

const (
	HdfSubreadSet    FileType = "PacBio.DataSet.HdfSubreadSet"
	SubreadSet       FileType = "PacBio.DataSet.SubreadSet"
	ConsensusReadSet FileType = "PacBio.DataSet.ConsensusReadSet"
	BarcodeSet       FileType = "PacBio.DataSet.BarcodeSet"
	ReferenceSet     FileType = "PacBio.DataSet.ReferenceSet"
	FastaFile        FileType = "PacBio.FileTypes.Fasta"
	FastqFile        FileType = "PacBio.FileTypes.Fastq"
	FofnFile         FileType = "PacBio.FileTypes.generic_fofn"
)

// MaxNProc marks tasks that forward the workflow engine's full slot count
// to the external tool.
const MaxNProc = -1

// Option keys, namespaced the way the workflow engine resolves them.
const (
	MinSubreadLengthOption = "pbconvert.task_options.min_subread_length"
	ScoreModeOption        = "pbconvert.task_options.score_mode"
)

// Option declares one named task option.
type Option struct {
	Key         string
	Default     any
	Label       string
	Description string
}

// Handler runs one resolved task and returns its exit code.
type Handler func(rtc *ResolvedContext) (int, error)

// Task is one conversion contract.
type Task struct {
	Name        string
	Version     string
	InputTypes  []FileType
	OutputTypes []FileType
	Distributed bool
	NProc       int
	Options     []Option
	Run         Handler
}

// Registry maps task identifiers to their contracts, preserving the order
// tasks were declared in.
type Registry struct {
	tasks map[string]*Task
	order []string
}

func (r *Registry) add(t *Task) {
	r.tasks[t.Name] = t
	r.order = append(r.order, t.Name)
}

// Get looks up a task by identifier.
func (r *Registry) Get(name string) (*Task, bool) {
	t, ok := r.tasks[name]
	return t, ok
}

// Names returns the task identifiers in declaration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// RunTask dispatches a resolved context to the handler of the task it names.
func (r *Registry) RunTask(rtc *ResolvedContext) (int, error) {
	t, ok := r.tasks[rtc.TaskID]
	if !ok {
		return 2, fmt.Errorf("unknown task %q", rtc.TaskID)
	}
	return t.Run(rtc)
}

var minSubreadLengthOption = Option{
	Key:         MinSubreadLengthOption,
	Default:     0,
	Label:       "Minimum subread length",
	Description: "Minimum length of subreads to write to FASTA/FASTQ",
}

var scoreModeOption = Option{
	Key:         ScoreModeOption,
	Default:     barcode.ScoreModeSymmetric,
	Label:       "Barcode score mode",
	Description: "Symmetric or asymmetric barcode scoring",
}

// NewRegistry builds the full task registry.
func NewRegistry() *Registry {
	r := &Registry{tasks: make(map[string]*Task)}
	r.add(&Task{
		Name:        "h5_subreads_to_subread",
		Version:     "0.1.0",
		InputTypes:  []FileType{HdfSubreadSet},
		OutputTypes: []FileType{SubreadSet},
		Distributed: true,
		NProc:       1,
		Run:         runBax2Bam,
	})
	r.add(&Task{
		Name:        "bam2bam_barcode",
		Version:     "0.1.0",
		InputTypes:  []FileType{SubreadSet, BarcodeSet},
		OutputTypes: []FileType{SubreadSet},
		Distributed: true,
		NProc:       MaxNProc,
		Options:     []Option{scoreModeOption},
		Run:         runBam2Bam,
	})
	r.add(&Task{
		Name:        "bam2fastq",
		Version:     "0.1.0",
		InputTypes:  []FileType{SubreadSet},
		OutputTypes: []FileType{FastqFile},
		Distributed: true,
		NProc:       1,
		Options:     []Option{minSubreadLengthOption},
		Run:         runBam2Fastx("bam2fastq", true),
	})
	r.add(&Task{
		Name:        "bam2fasta",
		Version:     "0.1.0",
		InputTypes:  []FileType{SubreadSet},
		OutputTypes: []FileType{FastaFile},
		Distributed: true,
		NProc:       1,
		Options:     []Option{minSubreadLengthOption},
		Run:         runBam2Fastx("bam2fasta", true),
	})
	r.add(&Task{
		Name:        "bam2fasta_nofilter",
		Version:     "0.1.0",
		InputTypes:  []FileType{SubreadSet},
		OutputTypes: []FileType{FastaFile},
		Distributed: true,
		NProc:       1,
		Run:         runBam2Fastx("bam2fasta", false),
	})
	r.add(&Task{
		Name:        "fasta2fofn",
		Version:     "0.1.0",
		InputTypes:  []FileType{FastaFile},
		OutputTypes: []FileType{FofnFile},
		Distributed: false,
		NProc:       1,
		Run:         runFasta2Fofn,
	})
	r.add(&Task{
		Name:        "fasta2referenceset",
		Version:     "0.1.0",
		InputTypes:  []FileType{FastaFile},
		OutputTypes: []FileType{ReferenceSet},
		Distributed: true,
		NProc:       1,
		Run:         runFasta2ReferenceSet,
	})
	r.add(&Task{
		Name:        "bam2fastq_ccs",
		Version:     "0.1.0",
		InputTypes:  []FileType{ConsensusReadSet},
		OutputTypes: []FileType{FastqFile},
		Distributed: true,
		NProc:       1,
		Run:         runBam2Fastx("bam2fastq", false),
	})
	r.add(&Task{
		Name:        "bam2fasta_ccs",
		Version:     "0.1.0",
		InputTypes:  []FileType{ConsensusReadSet},
		OutputTypes: []FileType{FastaFile},
		Distributed: true,
		NProc:       1,
		Run:         runBam2Fastx("bam2fasta", false),
	})
	return r
}

func runBax2Bam(rtc *ResolvedContext) (int, error) {
	return convert.BaxToBam(rtc.InputFiles[0], rtc.OutputFiles[0])
}

func runBam2Bam(rtc *ResolvedContext) (int, error) {
	cfg, err := newBam2BamConfig(rtc)
	if err != nil {
		return 2, err
	}
	return barcode.Rebuild(rtc.InputFiles[0], rtc.InputFiles[1], rtc.OutputFiles[0],
		cfg.NProc, cfg.ScoreMode)
}

// runBam2Fastx builds the handler for one extraction flavor. Tasks without
// the length option always extract unfiltered.
func runBam2Fastx(program string, filtered bool) Handler {
	return func(rtc *ResolvedContext) (int, error) {
		minLength := 0
		if filtered {
			cfg, err := newBam2FastxConfig(rtc)
			if err != nil {
				return 2, err
			}
			minLength = cfg.MinSubreadLength
		}
		return fastx.BamToFastx(program, rtc.InputFiles[0], rtc.OutputFiles[0], minLength)
	}
}

func runFasta2Fofn(rtc *ResolvedContext) (int, error) {
	return convert.FastaToFofn(rtc.InputFiles[0], rtc.OutputFiles[0])
}

func runFasta2ReferenceSet(rtc *ResolvedContext) (int, error) {
	return convert.FastaToReferenceSet(rtc.InputFiles[0], rtc.OutputFiles[0])
}
