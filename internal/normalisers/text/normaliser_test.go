package text

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func TestNormalise(t *testing.T) {
	meta := map[string]any{domain.MetaFileName: "notes.md", "course": "CS101"}

	doc := Normalise("some notes", meta)

	assert.Equal(t, "some notes", doc.Text)
	assert.Equal(t, domain.SourceTypeText, doc.SourceType)
	assert.Equal(t, "notes.md", doc.Metadata[domain.MetaFileName])
	assert.Equal(t, "CS101", doc.Metadata["course"])
	assert.Nil(t, doc.PageNumber)
	assert.Nil(t, doc.Timestamp)
	assert.NoError(t, doc.Validate())
}

func TestNormalise_DefaultsFileName(t *testing.T) {
	doc := Normalise("x", nil)
	assert.Equal(t, DefaultFileName, doc.Metadata[domain.MetaFileName])

	doc = Normalise("x", map[string]any{domain.MetaFileName: ""})
	assert.Equal(t, DefaultFileName, doc.Metadata[domain.MetaFileName])
}

func TestNormalise_DoesNotMutateCallerMetadata(t *testing.T) {
	meta := map[string]any{"k": "v"}

	doc := Normalise("x", meta)
	doc.Metadata["k"] = "changed"

	assert.Equal(t, "v", meta["k"])
	_, added := meta[domain.MetaFileName]
	assert.False(t, added)
}

func TestCopyMetadata(t *testing.T) {
	assert.Nil(t, copyMetadata(nil))
	assert.Empty(t, copyMetadata(map[string]any{}))
	assert.Equal(t, map[string]any{"a": 1}, copyMetadata(map[string]any{"a": 1}))
}

func TestNormaliseFile(t *testing.T) {
	t.Run("markdown", func(t *testing.T) {
		doc := NormaliseFile("/notes/week1.md", []byte("# Week 1\n\n**Deadlock** needs four conditions."))

		assert.Equal(t, "Week 1\n\nDeadlock needs four conditions.", doc.Text)
		assert.Equal(t, domain.SourceTypeText, doc.SourceType)
		assert.Equal(t, "week1.md", doc.Metadata[domain.MetaFileName])
		assert.Equal(t, "markdown", doc.Metadata[MetaFormat])
		assert.Equal(t, "Week 1", doc.Metadata[MetaTitle])
	})

	t.Run("html", func(t *testing.T) {
		doc := NormaliseFile("page.html", []byte("<title>Notes</title><p>Paging</p>"))

		assert.Equal(t, "Paging", doc.Text)
		assert.Equal(t, "html", doc.Metadata[MetaFormat])
		assert.Equal(t, "Notes", doc.Metadata[MetaTitle])
	})

	t.Run("plain text is kept verbatim", func(t *testing.T) {
		doc := NormaliseFile("todo.txt", []byte("  # not a heading\n"))

		assert.Equal(t, "  # not a heading\n", doc.Text)
		assert.Equal(t, "plain", doc.Metadata[MetaFormat])
		_, hasTitle := doc.Metadata[MetaTitle]
		assert.False(t, hasTitle)
	})
}
