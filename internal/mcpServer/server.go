// Package mcpServer exposes the chat and retrieval services as Model Context
// Protocol tools over stdio.
package mcpServer

import (
	"context"
	"errors"

	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var ErrMissingChatService = errors.New("mcp: chat service is required")

type DocumentLister interface {
	ListDocuments(ctx context.Context) ([]commonModels.Document, error)
}

type Ports struct {
	Chat      rag.Service
	Documents DocumentLister
}

type Server struct {
	ports  Ports
	server *mcp.Server
	logger *logger_i.Logger
}

func NewServer(ports Ports) (*Server, error) {
	if ports.Chat == nil {
		return nil, ErrMissingChatService
	}
	s := &Server{
		ports: ports,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "ragbot",
			Version: config.AppVersion,
		}, nil),
		logger: logger_i.NewLogger("MCPServer"),
	}
	s.registerTools()
	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server listening on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
