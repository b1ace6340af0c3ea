package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/pgzip"
	"github.com/vertgenlab/gonomics/exception"
)

// PbiIndex holds the summary a PBI index carries about its BAM: the record
// count and the total number of sequenced bases.
type PbiIndex struct {
	NumReads    int64
	TotalLength int64
}

// pbiHeader is the fixed-size header of a PBI file.
type pbiHeader struct {
	Magic    [4]byte
	Version  uint32
	Flags    uint16
	NumReads uint32
	Reserved [18]byte
}

// ReadPbi reads a PacBio BAM index (.pbi). The file is BGZF-framed, which a
// multi-member gzip reader decompresses directly. Only the basic section is
// consumed: per-read qStart/qEnd give the total length; reads without query
// coordinates (qStart or qEnd below zero) contribute no length.
func ReadPbi(filename string) PbiIndex {
	file, err := os.Open(filename)
	exception.PanicOnErr(err)
	defer file.Close()
	gz, err := pgzip.NewReader(file)
	exception.PanicOnErr(err)
	defer gz.Close()

	var hdr pbiHeader
	err = binary.Read(gz, binary.LittleEndian, &hdr)
	exception.PanicOnErr(err)
	if string(hdr.Magic[:]) != "PBI\x01" {
		exception.PanicOnErr(fmt.Errorf("malformed index file: %s", filename))
	}

	n := int(hdr.NumReads)
	rgID := make([]int32, n)
	qStart := make([]int32, n)
	qEnd := make([]int32, n)
	readColumn(gz, rgID)
	readColumn(gz, qStart)
	readColumn(gz, qEnd)

	idx := PbiIndex{NumReads: int64(n)}
	for i := 0; i < n; i++ {
		if qStart[i] >= 0 && qEnd[i] >= 0 {
			idx.TotalLength += int64(qEnd[i] - qStart[i])
		}
	}
	return idx
}

func readColumn(r io.Reader, column []int32) {
	err := binary.Read(r, binary.LittleEndian, column)
	exception.PanicOnErr(err)
}
