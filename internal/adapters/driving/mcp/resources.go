package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Lectern resources.
	uriScheme = "lectern://"

	indexStatusURI = uriScheme + "index/status"
)

// indexStatusInfo is the JSON body of the index status resource.
type indexStatusInfo struct {
	Ready          bool   `json:"ready"`
	Path           string `json:"path"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
	Dimensions     int    `json:"dimensions,omitempty"`
	Entries        int    `json:"entries"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         indexStatusURI,
		Name:        "index-status",
		Description: "Whether the index is ready, which embedding model built it, and how many passages it holds",
		MIMEType:    "application/json",
	}, s.handleIndexStatusResource)
}

func (s *Server) handleIndexStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	status, err := s.ports.Index.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading index status: %w", err)
	}

	data, err := json.MarshalIndent(statusInfo(status), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling index status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func statusInfo(status *domain.IndexStatus) indexStatusInfo {
	info := indexStatusInfo{
		Ready: status.Ready,
		Path:  status.Path,
	}
	if status.Ready {
		info.EmbeddingModel = status.Manifest.EmbeddingModel
		info.Dimensions = status.Manifest.Dimensions
		info.Entries = status.Manifest.Entries
		info.UpdatedAt = status.Manifest.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return info
}
