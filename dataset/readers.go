package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/vertgenlab/gonomics/exception"
)

// A ResourceReader reports acquisition metadata for one underlying raw file
// of a dataset. Readers are derived on demand and never persisted.
type ResourceReader struct {
	path string
	res  *ExternalResource
}

// ResourceReaders returns one reader per top-level resource, in resource
// order.
func (ds *DataSet) ResourceReaders() []*ResourceReader {
	var readers []*ResourceReader
	for i := range ds.ExternalResources.Resources {
		res := &ds.ExternalResources.Resources[i]
		readers = append(readers, &ResourceReader{
			path: ds.ResolvePath(res.ResourceID),
			res:  res,
		})
	}
	return readers
}

// Path returns the resolved path of the underlying file.
func (r *ResourceReader) Path() string {
	return r.path
}

// MovieName reports the movie the underlying file was acquired from: the
// collection context recorded with the resource, or for BAM files the read
// group platform unit from the file's own header. The reported value is
// trusted verbatim.
func (r *ResourceReader) MovieName() (string, error) {
	if r.res.Collection != nil && r.res.Collection.Context != "" {
		return r.res.Collection.Context, nil
	}
	if strings.HasSuffix(r.path, ".bam") {
		return bamMovieName(r.path)
	}
	return "", fmt.Errorf("no collection metadata recorded for %s", r.path)
}

// bamMovieName reads the PU field of the first read group in a BAM header.
// BGZF blocks are ordinary gzip members, so the header is reachable with a
// plain multi-member gzip reader.
func bamMovieName(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()
	gz, err := pgzip.NewReader(file)
	if err != nil {
		return "", fmt.Errorf("%s: %v", filename, err)
	}
	defer gz.Close()

	var magic [4]byte
	if _, err = io.ReadFull(gz, magic[:]); err != nil {
		return "", fmt.Errorf("%s: %v", filename, err)
	}
	if string(magic[:]) != "BAM\x01" {
		return "", fmt.Errorf("%s is not a BAM file", filename)
	}
	var textLen int32
	err = binary.Read(gz, binary.LittleEndian, &textLen)
	exception.PanicOnErr(err)
	text := make([]byte, textLen)
	_, err = io.ReadFull(gz, text)
	exception.PanicOnErr(err)

	for _, line := range strings.Split(string(text), "\n") {
		if !strings.HasPrefix(line, "@RG") {
			continue
		}
		for _, field := range strings.Split(line, "\t") {
			if strings.HasPrefix(field, "PU:") {
				return strings.TrimPrefix(field, "PU:"), nil
			}
		}
	}
	return "", fmt.Errorf("no read group platform unit in %s", filename)
}
