package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func TestIndexStatus_Ready(t *testing.T) {
	index := &mockIndexService{status: &domain.IndexStatus{
		Ready: true,
		Path:  "/home/u/.lectern/index",
		Manifest: domain.IndexManifest{
			EmbeddingModel: "nomic-embed-text",
			Dimensions:     768,
			Entries:        42,
			UpdatedAt:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
	}}

	out, err := execute(t, &Services{Index: index}, "", "index", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Path: /home/u/.lectern/index")
	assert.Contains(t, out, "Status: ready")
	assert.Contains(t, out, "nomic-embed-text (768 dimensions)")
	assert.Contains(t, out, "Passages: 42")
}

func TestIndexStatus_Empty(t *testing.T) {
	index := &mockIndexService{status: &domain.IndexStatus{Path: "/idx"}}

	out, err := execute(t, &Services{Index: index}, "", "index", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Status: empty")
}

func TestIndexStatus_Unusable(t *testing.T) {
	index := &mockIndexService{status: &domain.IndexStatus{Path: "/idx"}}

	out, err := execute(t, &Services{Index: index, IndexErr: domain.ErrEmbeddingMismatch}, "", "index", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Status: unusable")
	assert.Contains(t, out, "lectern index reset")
}

func TestIndexReset_Yes(t *testing.T) {
	index := &mockIndexService{}

	out, err := execute(t, &Services{Index: index}, "", "index", "reset", "--yes")

	require.NoError(t, err)
	assert.Equal(t, 1, index.resets)
	assert.Contains(t, out, "Index deleted.")
}

func TestIndexReset_Confirm(t *testing.T) {
	index := &mockIndexService{}

	_, err := execute(t, &Services{Index: index}, "y\n", "index", "reset")

	require.NoError(t, err)
	assert.Equal(t, 1, index.resets)
}

func TestIndexReset_Abort(t *testing.T) {
	index := &mockIndexService{}

	out, err := execute(t, &Services{Index: index}, "\n", "index", "reset")

	require.NoError(t, err)
	assert.Zero(t, index.resets)
	assert.Contains(t, out, "Aborted.")
}

func TestIndexReset_WorksWhenIndexUnusable(t *testing.T) {
	index := &mockIndexService{}

	_, err := execute(t, &Services{Index: index, IndexErr: domain.ErrEmbeddingMismatch}, "", "index", "reset", "-y")

	require.NoError(t, err)
	assert.Equal(t, 1, index.resets)
}
