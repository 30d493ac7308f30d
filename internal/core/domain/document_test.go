package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceType_IsValid(t *testing.T) {
	assert.True(t, SourceTypePDF.IsValid())
	assert.True(t, SourceTypeVideo.IsValid())
	assert.True(t, SourceTypeText.IsValid())
	assert.False(t, SourceType("audio").IsValid())
	assert.Equal(t, "video", SourceTypeVideo.String())
}

func TestNormalizedDocument_Validate(t *testing.T) {
	tests := []struct {
		name    string
		doc     *NormalizedDocument
		wantErr error
	}{
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidInput,
		},
		{
			name: "valid pdf page",
			doc: &NormalizedDocument{
				Text:       "page one",
				SourceType: SourceTypePDF,
				Metadata:   map[string]any{MetaFileName: "notes.pdf", MetaPage: 1, MetaTotalPages: 3},
				PageNumber: IntPtr(1),
			},
		},
		{
			name: "pdf without page",
			doc: &NormalizedDocument{
				SourceType: SourceTypePDF,
				Metadata:   map[string]any{MetaFileName: "notes.pdf"},
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "pdf with zero page",
			doc: &NormalizedDocument{
				SourceType: SourceTypePDF,
				Metadata:   map[string]any{MetaFileName: "notes.pdf"},
				PageNumber: IntPtr(0),
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "valid video line",
			doc: &NormalizedDocument{
				Text:       "hello",
				SourceType: SourceTypeVideo,
				Metadata:   map[string]any{MetaFileName: "lecture.mp4"},
				Timestamp:  StringPtr("00:00:10"),
			},
		},
		{
			name: "video with bad timestamp",
			doc: &NormalizedDocument{
				SourceType: SourceTypeVideo,
				Metadata:   map[string]any{MetaFileName: "lecture.mp4"},
				Timestamp:  StringPtr("10s"),
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "text with page",
			doc: &NormalizedDocument{
				SourceType: SourceTypeText,
				Metadata:   map[string]any{MetaFileName: "text"},
				PageNumber: IntPtr(2),
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "missing file name",
			doc: &NormalizedDocument{
				SourceType: SourceTypeText,
				Metadata:   map[string]any{},
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "unknown source type",
			doc: &NormalizedDocument{
				SourceType: "audio",
				Metadata:   map[string]any{MetaFileName: "a.wav"},
			},
			wantErr: ErrUnsupportedType,
		},
		{
			name: "scalar caller metadata",
			doc: &NormalizedDocument{
				SourceType: SourceTypeText,
				Metadata:   map[string]any{MetaFileName: "note", "week": 3, "score": 2.0, "draft": false, "tag": nil},
			},
		},
		{
			name: "nested map metadata",
			doc: &NormalizedDocument{
				SourceType: SourceTypeText,
				Metadata:   map[string]any{MetaFileName: "note", "author": map[string]any{"name": "kim"}},
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "list metadata",
			doc: &NormalizedDocument{
				SourceType: SourceTypeText,
				Metadata:   map[string]any{MetaFileName: "note", "tags": []any{"a", "b"}},
			},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalizedDocument_FileName(t *testing.T) {
	doc := &NormalizedDocument{Metadata: map[string]any{MetaFileName: "a.pdf"}}
	assert.Equal(t, "a.pdf", doc.FileName())

	doc = &NormalizedDocument{Metadata: map[string]any{}}
	assert.Empty(t, doc.FileName())
}
