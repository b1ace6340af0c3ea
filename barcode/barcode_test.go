package barcode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrharting/pbconvert/dataset"
)

// fakeSplitter stands in for bam2bam: it records each command line and
// touches the output pair the real splitter would have produced.
type fakeSplitter struct {
	calls [][]string
	code  int
}

func (f *fakeSplitter) run(name string, args ...string) int {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.code != 0 {
		return f.code
	}
	prefix := ""
	for i, arg := range args {
		if arg == "-o" && i+1 < len(args) {
			prefix = args[i+1]
		}
	}
	for _, suffix := range []string{".subreads.bam", ".scraps.bam"} {
		if err := os.WriteFile(prefix+suffix, nil, 0o644); err != nil {
			panic(err)
		}
	}
	return 0
}

func installFake(t *testing.T, f *fakeSplitter) {
	t.Helper()
	orig := runCmd
	runCmd = f.run
	t.Cleanup(func() { runCmd = orig })
}

func writeBarcodeSet(t *testing.T, dir string, fastas ...string) string {
	t.Helper()
	bc := dataset.New(dataset.BarcodeSetType)
	for _, fasta := range fastas {
		bc.ExternalResources.Resources = append(bc.ExternalResources.Resources,
			dataset.ExternalResource{ResourceID: fasta})
	}
	filename := filepath.Join(dir, "barcodes.barcodeset.xml")
	bc.Write(filename)
	return filename
}

func writeSubreadSet(t *testing.T, dir string, withScraps bool) string {
	t.Helper()
	ds := dataset.New(dataset.SubreadSetType)
	res := dataset.ExternalResource{
		ResourceID: "movie1.subreads.bam",
		MetaType:   dataset.SubreadBamType,
	}
	if withScraps {
		res.Resources = &dataset.ExternalResources{Resources: []dataset.ExternalResource{
			{ResourceID: "movie1.scraps.bam", MetaType: dataset.ScrapsBamType},
		}}
	}
	ds.ExternalResources.Resources = []dataset.ExternalResource{res}
	ds.Filters = &dataset.Filters{Filters: []dataset.Filter{
		{Properties: dataset.Properties{Properties: []dataset.Property{
			{Name: "rq", Operator: ">", Value: "0.7"},
		}}},
	}}
	filename := filepath.Join(dir, "in.subreadset.xml")
	ds.Write(filename)
	return filename
}

func TestRejectsUnknownScoreMode(t *testing.T) {
	dir := t.TempDir()
	subreads := writeSubreadSet(t, dir, true)
	barcodes := writeBarcodeSet(t, dir, "barcodes.fasta")
	fake := &fakeSplitter{}
	installFake(t, fake)

	if _, err := Rebuild(subreads, barcodes, filepath.Join(dir, "out.subreadset.xml"), 1, "lopsided"); err == nil {
		t.Error("expected an error for an unknown score mode")
	}
	if len(fake.calls) != 0 {
		t.Error("no external process may launch after a usage error")
	}
}

func TestRejectsMultiFastaBarcodeSet(t *testing.T) {
	dir := t.TempDir()
	subreads := writeSubreadSet(t, dir, true)
	barcodes := writeBarcodeSet(t, dir, "one.fasta", "two.fasta")
	fake := &fakeSplitter{}
	installFake(t, fake)

	if _, err := Rebuild(subreads, barcodes, filepath.Join(dir, "out.subreadset.xml"), 1, ScoreModeSymmetric); err == nil {
		t.Error("expected an error for a multi-FASTA barcode set")
	}
	if len(fake.calls) != 0 {
		t.Error("no external process may launch after a usage error")
	}
}

func TestRejectsMissingScraps(t *testing.T) {
	dir := t.TempDir()
	subreads := writeSubreadSet(t, dir, false)
	barcodes := writeBarcodeSet(t, dir, "barcodes.fasta")
	outputFile := filepath.Join(dir, "out.subreadset.xml")
	fake := &fakeSplitter{}
	installFake(t, fake)

	if _, err := Rebuild(subreads, barcodes, outputFile, 1, ScoreModeSymmetric); err == nil {
		t.Error("expected an error for a pair without scraps")
	}
	if len(fake.calls) != 0 {
		t.Error("no external process may launch after a usage error")
	}
	if _, err := os.Stat(outputFile); err == nil {
		t.Error("no output may be written after a usage error")
	}
}

func TestRebuild(t *testing.T) {
	dir := t.TempDir()
	subreads := writeSubreadSet(t, dir, true)
	barcodes := writeBarcodeSet(t, dir, "barcodes.fasta")
	outputFile := filepath.Join(dir, "out.subreadset.xml")
	fake := &fakeSplitter{}
	installFake(t, fake)

	code, err := Rebuild(subreads, barcodes, outputFile, 4, ScoreModeAsymmetric)
	if code != 0 || err != nil {
		t.Fatal("rebuild failed:", code, err)
	}
	if len(fake.calls) != 1 {
		t.Fatal("expected 1 splitter invocation, got", len(fake.calls))
	}
	args := fake.calls[0]
	if args[0] != "bam2bam" {
		t.Error("unexpected command:", args[0])
	}
	assertArgPair(t, args, "-j", "4")
	assertArgPair(t, args, "-b", "4")
	assertArgPair(t, args, "--scoreMode", ScoreModeAsymmetric)
	// relative resource paths resolve against the input dataset's directory
	if args[len(args)-2] != filepath.Join(dir, "movie1.subreads.bam") {
		t.Error("subreads path not resolved:", args[len(args)-2])
	}
	if args[len(args)-1] != filepath.Join(dir, "movie1.scraps.bam") {
		t.Error("scraps path not resolved:", args[len(args)-1])
	}

	out := dataset.Read(outputFile)
	if len(out.ExternalResources.Resources) != 1 {
		t.Fatal("expected 1 rebuilt resource, got", len(out.ExternalResources.Resources))
	}
	res := out.ExternalResources.Resources[0]
	if filepath.Base(res.ResourceID) != "movie1_barcoded.subreads.bam" {
		t.Error("unexpected primary resource:", res.ResourceID)
	}
	if res.MetaType != dataset.SubreadBamType {
		t.Error("primary resource metatype:", res.MetaType)
	}
	if res.FileIndices == nil || res.FileIndices.Indices[0].ResourceID != res.ResourceID+".pbi" {
		t.Error("primary resource index missing")
	}
	nested := res.Resources.Resources
	if len(nested) != 2 {
		t.Fatal("expected scraps and barcode set under the primary resource, got", len(nested))
	}
	if nested[0].MetaType != dataset.ScrapsBamType ||
		filepath.Base(nested[0].ResourceID) != "movie1_barcoded.scraps.bam" {
		t.Error("scraps resource wrong:", nested[0])
	}
	if nested[0].FileIndices == nil {
		t.Error("scraps resource index missing")
	}
	if nested[1].MetaType != dataset.BarcodeSetType || nested[1].ResourceID != barcodes {
		t.Error("barcode set resource wrong:", nested[1])
	}
	if nested[1].FileIndices != nil {
		t.Error("barcode set resource must carry no index")
	}
	if out.Filters == nil || len(out.Filters.Filters) != 1 {
		t.Error("input filters not carried over")
	}
}

func TestRebuildPropagatesSplitterFailure(t *testing.T) {
	dir := t.TempDir()
	subreads := writeSubreadSet(t, dir, true)
	barcodes := writeBarcodeSet(t, dir, "barcodes.fasta")
	outputFile := filepath.Join(dir, "out.subreadset.xml")
	installFake(t, &fakeSplitter{code: 9})

	code, err := Rebuild(subreads, barcodes, outputFile, 1, ScoreModeSymmetric)
	if err != nil {
		t.Fatal(err)
	}
	if code != 9 {
		t.Error("splitter exit code must propagate unchanged, got", code)
	}
	if _, statErr := os.Stat(outputFile); statErr == nil {
		t.Error("no partial dataset may be written after a splitter failure")
	}
}

func assertArgPair(t *testing.T, args []string, flag, want string) {
	t.Helper()
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			if args[i+1] != want {
				t.Errorf("%s = %s, want %s", flag, args[i+1], want)
			}
			return
		}
	}
	t.Errorf("flag %s not passed: %v", flag, args)
}
