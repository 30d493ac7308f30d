package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func statusRequest() *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: indexStatusURI}}
}

func TestServer_handleIndexStatusResource(t *testing.T) {
	ctx := context.Background()

	t.Run("ready index", func(t *testing.T) {
		updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		ports := newTestPorts()
		ports.Index = &mockIndexService{status: &domain.IndexStatus{
			Ready: true,
			Path:  "/data/index",
			Manifest: domain.IndexManifest{
				EmbeddingModel: "bge-m3",
				Dimensions:     1024,
				Entries:        42,
				UpdatedAt:      updated,
			},
		}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleIndexStatusResource(ctx, statusRequest())
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, indexStatusURI, result.Contents[0].URI)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var info indexStatusInfo
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &info))
		assert.True(t, info.Ready)
		assert.Equal(t, "bge-m3", info.EmbeddingModel)
		assert.Equal(t, 1024, info.Dimensions)
		assert.Equal(t, 42, info.Entries)
		assert.Equal(t, "2026-03-01T12:00:00Z", info.UpdatedAt)
	})

	t.Run("empty index", func(t *testing.T) {
		ports := newTestPorts()
		ports.Index = &mockIndexService{status: &domain.IndexStatus{Path: "/data/index"}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleIndexStatusResource(ctx, statusRequest())
		require.NoError(t, err)
		assert.NotContains(t, result.Contents[0].Text, "embedding_model")
		assert.Contains(t, result.Contents[0].Text, `"ready": false`)
	})

	t.Run("status error", func(t *testing.T) {
		ports := newTestPorts()
		ports.Index = &mockIndexService{err: errors.New("disk gone")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, err = server.handleIndexStatusResource(ctx, statusRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk gone")
	})
}
