package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"iflowgraph/internal/config"
	"iflowgraph/internal/store"
)

type Server struct {
	rules config.ClassifierRules
	db    store.Store
	mcp   *sdk.Server
}

func NewServer(rules config.ClassifierRules, db store.Store, version string) *Server {
	s := &Server{
		rules: rules,
		db:    db,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "iflowgraph",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
