// Package dataset reads, writes and merges PacBio dataset files: XML
// containers that name a tree of external resources (BAM files, scraps,
// barcode references) along with filters and summary counts.
package dataset

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
)

// MetaType tags for dataset containers.
const (
	SubreadSetType       string = "PacBio.DataSet.SubreadSet"
	HdfSubreadSetType    string = "PacBio.DataSet.HdfSubreadSet"
	ConsensusReadSetType string = "PacBio.DataSet.ConsensusReadSet"
	ReferenceSetType     string = "PacBio.DataSet.ReferenceSet"
	BarcodeSetType       string = "PacBio.DataSet.BarcodeSet"
)

// MetaType tags for the files a dataset references.
const (
	SubreadBamType string = "PacBio.SubreadFile.SubreadBamFile"
	ScrapsBamType  string = "PacBio.SubreadFile.ScrapsBamFile"
	BaxType        string = "PacBio.SubreadFile.BaxFile"
)

// DataSet is one dataset container. Resources, filters and metadata are
// owned exclusively by the containing DataSet; Merge and CopyFiltersFrom
// copy rather than share.
type DataSet struct {
	XMLName           xml.Name          `xml:"DataSet"`
	MetaType          string            `xml:"MetaType,attr"`
	Name              string            `xml:"Name,attr"`
	UniqueID          string            `xml:"UniqueId,attr"`
	CreatedAt         string            `xml:"CreatedAt,attr,omitempty"`
	Description       string            `xml:"Description,attr,omitempty"`
	Tags              string            `xml:"Tags,attr,omitempty"`
	ExternalResources ExternalResources `xml:"ExternalResources"`
	Filters           *Filters          `xml:"Filters"`
	Metadata          *Metadata         `xml:"DataSetMetadata"`

	dir string // directory the dataset was read from or written to
}

// ExternalResources is an ordered collection of resources.
type ExternalResources struct {
	Resources []ExternalResource `xml:"ExternalResource"`
}

// ExternalResource is one file in the resource tree. Nested resources hold
// auxiliary files produced alongside the primary file.
type ExternalResource struct {
	ResourceID  string              `xml:"ResourceId,attr"`
	MetaType    string              `xml:"MetaType,attr,omitempty"`
	FileIndices *FileIndices        `xml:"FileIndices"`
	Resources   *ExternalResources  `xml:"ExternalResources"`
	Collection  *CollectionMetadata `xml:"CollectionMetadata"`
}

// FileIndices lists the index files that accompany a resource.
type FileIndices struct {
	Indices []FileIndex `xml:"FileIndex"`
}

// FileIndex names one index file.
type FileIndex struct {
	ResourceID string `xml:"ResourceId,attr"`
}

// CollectionMetadata records the acquisition a resource came from. Context
// is the movie name reported by the instrument.
type CollectionMetadata struct {
	Context        string `xml:"Context,attr"`
	InstrumentName string `xml:"InstrumentName,attr,omitempty"`
}

// Metadata is the dataset-level metadata block.
type Metadata struct {
	TotalLength int64        `xml:"TotalLength"`
	NumRecords  int64        `xml:"NumRecords"`
	Collections *Collections `xml:"Collections"`
}

// Collections groups the collection metadata of all movies in a dataset.
type Collections struct {
	Collections []CollectionMetadata `xml:"CollectionMetadata"`
}

// Filters is a dataset's record filter set.
type Filters struct {
	Filters []Filter `xml:"Filter"`
}

// Filter is one conjunction of filter properties.
type Filter struct {
	Properties Properties `xml:"Properties"`
}

// Properties wraps the property list of a filter.
type Properties struct {
	Properties []Property `xml:"Property"`
}

// Property is a single name/operator/value predicate.
type Property struct {
	Name     string `xml:"Name,attr"`
	Operator string `xml:"Operator,attr"`
	Value    string `xml:"Value,attr"`
}

// New creates an empty dataset of the given MetaType with a fresh UniqueId.
func New(metaType string) *DataSet {
	return &DataSet{
		MetaType:  metaType,
		UniqueID:  uuid.New().String(),
		CreatedAt: time.Now().Format(time.RFC3339),
	}
}

// Read parses the dataset file at filename. Relative resource paths inside
// the file stay relative; ResolvePath maps them against the file's directory.
func Read(filename string) *DataSet {
	data, err := os.ReadFile(filename)
	exception.PanicOnErr(err)
	var ds DataSet
	err = xml.Unmarshal(data, &ds)
	exception.PanicOnErr(err)
	abs, err := filepath.Abs(filename)
	exception.PanicOnErr(err)
	ds.dir = filepath.Dir(abs)
	return &ds
}

// Write serializes the dataset to filename, stamping a UniqueId and creation
// time if they are missing.
func (ds *DataSet) Write(filename string) {
	if ds.UniqueID == "" {
		ds.UniqueID = uuid.New().String()
	}
	if ds.CreatedAt == "" {
		ds.CreatedAt = time.Now().Format(time.RFC3339)
	}
	out := fileio.EasyCreate(filename)
	_, err := out.Write([]byte(xml.Header))
	exception.PanicOnErr(err)
	enc := xml.NewEncoder(out)
	enc.Indent("", "  ")
	err = enc.Encode(ds)
	exception.PanicOnErr(err)
	_, err = out.Write([]byte("\n"))
	exception.PanicOnErr(err)
	err = out.Close()
	exception.PanicOnErr(err)
	abs, err := filepath.Abs(filename)
	exception.PanicOnErr(err)
	ds.dir = filepath.Dir(abs)
}

// Merge opens each dataset file in order and concatenates their resource
// lists into a new dataset of the given MetaType. Summary counts are summed
// and collection metadata concatenated; name and description are left for
// the caller to fill in.
func Merge(metaType string, filenames ...string) *DataSet {
	out := New(metaType)
	meta := &Metadata{}
	for _, filename := range filenames {
		in := Read(filename)
		for _, res := range in.ExternalResources.Resources {
			res.ResourceID = in.ResolvePath(res.ResourceID)
			out.ExternalResources.Resources = append(out.ExternalResources.Resources, res)
		}
		if in.Metadata == nil {
			continue
		}
		meta.TotalLength += in.Metadata.TotalLength
		meta.NumRecords += in.Metadata.NumRecords
		if in.Metadata.Collections != nil {
			if meta.Collections == nil {
				meta.Collections = &Collections{}
			}
			meta.Collections.Collections = append(meta.Collections.Collections,
				in.Metadata.Collections.Collections...)
		}
	}
	out.Metadata = meta
	return out
}

// MergeMetadata folds another dataset's collection metadata into this one.
// Summary counts are not touched; they describe this dataset's own resources.
func (ds *DataSet) MergeMetadata(other *DataSet) {
	if other.Metadata == nil || other.Metadata.Collections == nil {
		return
	}
	if ds.Metadata == nil {
		ds.Metadata = &Metadata{}
	}
	if ds.Metadata.Collections == nil {
		ds.Metadata.Collections = &Collections{}
	}
	ds.Metadata.Collections.Collections = append(ds.Metadata.Collections.Collections,
		other.Metadata.Collections.Collections...)
}

// CopyFiltersFrom installs a deep copy of another dataset's filter set so
// the two datasets never share mutable filter state.
func (ds *DataSet) CopyFiltersFrom(other *DataSet) {
	if other.Filters == nil {
		return
	}
	cp := Filters{Filters: make([]Filter, len(other.Filters.Filters))}
	for i, f := range other.Filters.Filters {
		props := make([]Property, len(f.Properties.Properties))
		copy(props, f.Properties.Properties)
		cp.Filters[i] = Filter{Properties: Properties{Properties: props}}
	}
	ds.Filters = &cp
}

// ResolvePath maps a resource path against the dataset's own directory when
// the path is relative.
func (ds *DataSet) ResolvePath(path string) string {
	if filepath.IsAbs(path) || ds.dir == "" {
		return path
	}
	return filepath.Join(ds.dir, path)
}

// ExternalFiles returns the resolved paths of all top-level resources in
// resource order.
func (ds *DataSet) ExternalFiles() []string {
	var files []string
	for i := range ds.ExternalResources.Resources {
		files = append(files, ds.ResolvePath(ds.ExternalResources.Resources[i].ResourceID))
	}
	return files
}

// UpdateCounts recomputes NumRecords and TotalLength from the PBI index
// files recorded in the resource tree. Resources without a readable index
// contribute nothing.
func (ds *DataSet) UpdateCounts() {
	if ds.Metadata == nil {
		ds.Metadata = &Metadata{}
	}
	var numRecords, totalLength int64
	for i := range ds.ExternalResources.Resources {
		res := &ds.ExternalResources.Resources[i]
		if res.FileIndices == nil {
			continue
		}
		for _, idx := range res.FileIndices.Indices {
			if !strings.HasSuffix(idx.ResourceID, ".pbi") {
				continue
			}
			path := ds.ResolvePath(idx.ResourceID)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			pbi := ReadPbi(path)
			numRecords += pbi.NumReads
			totalLength += pbi.TotalLength
		}
	}
	ds.Metadata.NumRecords = numRecords
	ds.Metadata.TotalLength = totalLength
}

// PopulateMetaTypes fills in missing resource MetaTypes from the well-known
// file name suffixes, recursing through nested resources.
func (ds *DataSet) PopulateMetaTypes() {
	populateMetaTypes(&ds.ExternalResources)
}

func populateMetaTypes(resources *ExternalResources) {
	for i := range resources.Resources {
		res := &resources.Resources[i]
		if res.MetaType == "" {
			res.MetaType = metaTypeForPath(res.ResourceID)
		}
		if res.Resources != nil {
			populateMetaTypes(res.Resources)
		}
	}
}

func metaTypeForPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".subreads.bam"):
		return SubreadBamType
	case strings.HasSuffix(path, ".scraps.bam"):
		return ScrapsBamType
	case strings.HasSuffix(path, ".bax.h5"):
		return BaxType
	case strings.HasSuffix(path, ".barcodeset.xml"):
		return BarcodeSetType
	default:
		return ""
	}
}

// AssertIndexed reports an error when any top-level resource lacks an index
// file. Converters call this after an external tool claims success.
func (ds *DataSet) AssertIndexed() error {
	for i := range ds.ExternalResources.Resources {
		res := &ds.ExternalResources.Resources[i]
		if res.FileIndices == nil || len(res.FileIndices.Indices) == 0 {
			return fmt.Errorf("resource %s is not indexed", res.ResourceID)
		}
	}
	return nil
}

// BamPath returns the resource path when the resource is a BAM file, and ""
// otherwise.
func (r *ExternalResource) BamPath() string {
	if strings.HasSuffix(r.ResourceID, ".bam") {
		return r.ResourceID
	}
	return ""
}

// ScrapsPath returns the scraps BAM nested under this resource, or "" when
// the resource carries no scraps.
func (r *ExternalResource) ScrapsPath() string {
	if r.Resources == nil {
		return ""
	}
	for i := range r.Resources.Resources {
		child := &r.Resources.Resources[i]
		if child.MetaType == ScrapsBamType || strings.HasSuffix(child.ResourceID, ".scraps.bam") {
			return child.ResourceID
		}
	}
	return ""
}
