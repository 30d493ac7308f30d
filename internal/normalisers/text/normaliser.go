// Package text wraps caller-supplied text as a NormalizedDocument.
//
// Note files can also be markdown or HTML; NormaliseFile strips their markup
// before indexing so retrieval matches on words rather than syntax.
package text

import (
	"path/filepath"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// DefaultFileName is used when the caller does not name the text.
const DefaultFileName = "text"

// Metadata keys added by NormaliseFile.
const (
	MetaFormat = "format"
	MetaTitle  = "title"
)

// Normalise wraps text with a copy of metadata. file_name defaults to
// DefaultFileName so every record carries one.
func Normalise(text string, metadata map[string]any) domain.NormalizedDocument {
	meta := copyMetadata(metadata)
	if meta == nil {
		meta = make(map[string]any, 1)
	}
	if name, ok := meta[domain.MetaFileName].(string); !ok || name == "" {
		meta[domain.MetaFileName] = DefaultFileName
	}

	return domain.NormalizedDocument{
		Text:       text,
		SourceType: domain.SourceTypeText,
		Metadata:   meta,
	}
}

// NormaliseFile normalises the contents of a note file. file_name is set to
// the base name of path; markdown and HTML are reduced to plain text and
// their title, if any, is recorded.
func NormaliseFile(path string, data []byte) domain.NormalizedDocument {
	content := string(data)
	format := FormatOf(path)

	meta := map[string]any{
		domain.MetaFileName: filepath.Base(path),
		MetaFormat:          string(format),
	}
	if title := Title(content, format); title != "" {
		meta[MetaTitle] = title
	}

	switch format {
	case FormatMarkdown:
		content = StripMarkdown(content)
	case FormatHTML:
		content = StripHTML(content)
	}

	return Normalise(content, meta)
}

// copyMetadata creates a shallow copy of metadata.
func copyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
