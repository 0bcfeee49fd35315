package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/daikw/scenariochat/internal/chat"
	"github.com/daikw/scenariochat/internal/scenario"
)

type MockTurns struct {
	mock.Mock
}

func (m *MockTurns) RunTurn(ctx context.Context, scenario, text string) (string, error) {
	args := m.Called(ctx, scenario, text)
	return args.String(0), args.Error(1)
}

func callRequest(name string, arguments map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = arguments
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	switch c := result.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	default:
		t.Fatalf("unexpected content %T", c)
		return ""
	}
}

func newTestServer(t *testing.T) (*Server, *MockTurns) {
	t.Helper()
	store, err := scenario.New(map[string]string{
		"Interview": "You are a hiring manager.",
		"Doctor":    "You are a family doctor.",
	})
	require.NoError(t, err)
	turns := &MockTurns{}
	return New(turns, store, "test"), turns
}

func TestChatTurn(t *testing.T) {
	s, turns := newTestServer(t)
	turns.On("RunTurn", mock.Anything, "Interview", "Hello").Return("Hi there, tell me about yourself.", nil).Once()

	result, err := s.handleChatTurn(context.Background(), callRequest(ToolChatTurn, map[string]any{
		"scenario": "Interview",
		"message":  "Hello",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "Hi there, tell me about yourself.", resultText(t, result))
	turns.AssertExpectations(t)
}

func TestChatTurn_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		turnErr  error
		expected string
	}{
		{
			name:     "invalid scenario",
			args:     map[string]any{"scenario": "Astronaut", "message": "Hello"},
			turnErr:  fmt.Errorf("%w: %w", chat.ErrInvalidScenario, scenario.ErrNotFound),
			expected: chat.InvalidScenarioMessage,
		},
		{
			name:     "service error",
			args:     map[string]any{"scenario": "Interview", "message": "Hello"},
			turnErr:  errors.New("rate limited"),
			expected: "Error: rate limited",
		},
		{
			name:     "empty message",
			args:     map[string]any{"scenario": "Interview", "message": " "},
			turnErr:  chat.ErrEmptyInput,
			expected: "message is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, turns := newTestServer(t)
			turns.On("RunTurn", mock.Anything, mock.Anything, mock.Anything).Return("", tt.turnErr)

			result, err := s.handleChatTurn(context.Background(), callRequest(ToolChatTurn, tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Equal(t, tt.expected, resultText(t, result))
		})
	}
}

func TestChatTurn_MissingArgument(t *testing.T) {
	s, turns := newTestServer(t)

	result, err := s.handleChatTurn(context.Background(), callRequest(ToolChatTurn, map[string]any{
		"scenario": "Interview",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	turns.AssertNotCalled(t, "RunTurn", mock.Anything, mock.Anything, mock.Anything)
}

func TestListScenarios(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleListScenarios(context.Background(), callRequest(ToolListScenarios, nil))
	require.NoError(t, err)
	assert.Equal(t, "Doctor\nInterview", resultText(t, result))
}
