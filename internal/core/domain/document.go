package domain

import (
	"fmt"
	"regexp"
)

// SourceType identifies the modality a NormalizedDocument was extracted from.
type SourceType string

// Available source types.
const (
	// SourceTypePDF is one page of a PDF file.
	SourceTypePDF SourceType = "pdf"

	// SourceTypeVideo is one timestamped line of a lecture transcript.
	SourceTypeVideo SourceType = "video"

	// SourceTypeText is raw caller-supplied text.
	SourceTypeText SourceType = "text"
)

// IsValid returns true if the source type is recognised.
func (t SourceType) IsValid() bool {
	switch t {
	case SourceTypePDF, SourceTypeVideo, SourceTypeText:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t SourceType) String() string {
	return string(t)
}

// Well-known metadata keys.
const (
	MetaFileName   = "file_name"
	MetaPage       = "page"
	MetaTotalPages = "total_pages"
	MetaTimestamp  = "timestamp"
	MetaSourceFile = "source_file"

	// Keys added to every chunk during chunking.
	MetaSourceType = "source_type"
	MetaPageNumber = "page_number"
)

var timestampPattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)

// NormalizedDocument is the common representation every source is converted to
// before chunking.
type NormalizedDocument struct {
	// Text is the extracted content. May be empty (e.g. a blank PDF page).
	Text string

	// SourceType is the modality the text came from.
	SourceType SourceType

	// Metadata always carries file_name. PDF records add page and total_pages,
	// video records add timestamp and source_file.
	Metadata map[string]any

	// PageNumber is the 1-based page. Set only for PDF records.
	PageNumber *int

	// Timestamp is the HH:MM:SS offset. Set only for video records.
	Timestamp *string

	// Confidence is an optional extraction confidence. Carried but never read.
	Confidence *float64
}

// Validate checks the per-source-type invariants.
func (d *NormalizedDocument) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidInput)
	}
	if !d.SourceType.IsValid() {
		return fmt.Errorf("%w: source type %q", ErrUnsupportedType, d.SourceType)
	}
	if _, ok := d.Metadata[MetaFileName]; !ok {
		return fmt.Errorf("%w: metadata missing %s", ErrInvalidInput, MetaFileName)
	}
	for key, value := range d.Metadata {
		if !isScalar(value) {
			return fmt.Errorf("%w: metadata %s must be a string, number, bool or null, got %T",
				ErrInvalidInput, key, value)
		}
	}

	switch d.SourceType {
	case SourceTypePDF:
		if d.PageNumber == nil || *d.PageNumber < 1 {
			return fmt.Errorf("%w: pdf record needs a page number", ErrInvalidInput)
		}
		if d.Timestamp != nil {
			return fmt.Errorf("%w: pdf record must not carry a timestamp", ErrInvalidInput)
		}
	case SourceTypeVideo:
		if d.Timestamp == nil || !timestampPattern.MatchString(*d.Timestamp) {
			return fmt.Errorf("%w: video record needs an HH:MM:SS timestamp", ErrInvalidInput)
		}
		if d.PageNumber != nil {
			return fmt.Errorf("%w: video record must not carry a page number", ErrInvalidInput)
		}
	case SourceTypeText:
		if d.PageNumber != nil || d.Timestamp != nil {
			return fmt.Errorf("%w: text record must not carry page or timestamp", ErrInvalidInput)
		}
	}
	return nil
}

// isScalar reports whether v can be stored as metadata. Nested values are
// rejected so every value survives persistence with its type intact.
func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

// FileName returns the file_name metadata value, or "" if absent.
func (d *NormalizedDocument) FileName() string {
	if name, ok := d.Metadata[MetaFileName].(string); ok {
		return name
	}
	return ""
}

// Chunk represents a bounded window of a NormalizedDocument's text.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Text is the window content.
	Text string

	// Position is the ordinal position within the parent document.
	Position int

	// Metadata is the parent's metadata plus source_type and, when present,
	// page_number and timestamp.
	Metadata map[string]any
}

// IngestResult summarises a completed ingestion.
type IngestResult struct {
	// Documents is the number of normalised records produced.
	Documents int

	// Chunks is the number of chunks inserted into the index.
	Chunks int
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// StringPtr returns a pointer to v.
func StringPtr(v string) *string {
	return &v
}
