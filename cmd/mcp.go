package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/daikw/scenariochat/internal/chat"
	"github.com/daikw/scenariochat/internal/conversation"
	"github.com/daikw/scenariochat/internal/mcpserver"
)

// handleMCP serves turns over stdio. Stdout carries the protocol; logs stay
// on stderr and nothing is spoken.
func handleMCP(ctx context.Context, c *cli.Command) error {
	a, err := loadApp(c)
	if err != nil {
		return err
	}

	client, err := a.newLLM()
	if err != nil {
		return err
	}

	orch := chat.New(chat.Deps{
		Scenarios: a.scenarios,
		LLM:       client,
		Display:   conversation.NewLog(),
		Selection: chat.NewSelection(a.scenarios.Names(), nil, "", ""),
	}, chat.Options{
		Workers:   1,
		QueueSize: 1,
		Timeout:   a.cfg.Timeout(),
	})
	defer orch.Close(context.Background())

	if err := mcpserver.New(orch, a.scenarios, version).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
