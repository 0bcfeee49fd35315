// Package mcpserver exposes scenario chat turns as MCP tools over stdio.
package mcpserver

import (
	"context"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/daikw/scenariochat/internal/chat"
)

// Tool names.
const (
	ToolChatTurn      = "chat_turn"
	ToolListScenarios = "list_scenarios"
)

// Turns runs one stateless exchange.
type Turns interface {
	RunTurn(ctx context.Context, scenario, text string) (string, error)
}

// Catalog lists the known scenarios.
type Catalog interface {
	Names() []string
}

// Server wraps an MCP server with the scenario chat tools registered.
type Server struct {
	turns     Turns
	scenarios Catalog
	mcp       *server.MCPServer
}

// New registers the tools.
func New(turns Turns, scenarios Catalog, version string) *Server {
	s := &Server{
		turns:     turns,
		scenarios: scenarios,
		mcp:       server.NewMCPServer("scenariochat", version, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(mcp.NewTool(ToolChatTurn,
		mcp.WithDescription("Send one message to a scenario persona and return its reply"),
		mcp.WithString("scenario",
			mcp.Required(),
			mcp.Description("Scenario name, see list_scenarios"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("What the user says"),
		),
	), s.handleChatTurn)

	s.mcp.AddTool(mcp.NewTool(ToolListScenarios,
		mcp.WithDescription("List the available scenario names"),
	), s.handleListScenarios)

	return s
}

// ServeStdio blocks serving requests on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Debug().Msg("Serving MCP on stdio")
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleChatTurn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("scenario")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	reply, err := s.turns.RunTurn(ctx, name, message)
	switch {
	case errors.Is(err, chat.ErrInvalidScenario):
		return mcp.NewToolResultError(chat.InvalidScenarioMessage), nil
	case errors.Is(err, chat.ErrEmptyInput):
		return mcp.NewToolResultError("message is empty"), nil
	case err != nil:
		log.Warn().Err(err).Str("scenario", name).Msg("Tool turn failed")
		return mcp.NewToolResultError("Error: " + err.Error()), nil
	}
	return mcp.NewToolResultText(reply), nil
}

func (s *Server) handleListScenarios(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(strings.Join(s.scenarios.Names(), "\n")), nil
}
