package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/model"
)

func TestBuildMessages_FoldsToolResultsIntoUserTurn(t *testing.T) {
	a := core.ToolCall{ID: "t1", Name: "track_package", Arguments: map[string]any{"packageId": "A"}}
	b := core.ToolCall{ID: "t2", Name: "search_knowledge_base", Arguments: map[string]any{"query": "lost"}}

	msgs := buildMessages([]core.Message{
		core.NewUserMessage("help"),
		{Role: core.RoleAssistant, ToolCalls: []core.ToolCall{a, b}},
		core.NewToolMessage(a, core.Success("ok")),
		core.NewToolMessage(b, core.Failure(core.ErrorKindTimeout, "slow")),
		core.NewAssistantMessage("Here is what I found."),
	})

	require.Len(t, msgs, 4)
	assert.Equal(t, "user", string(msgs[0].Role))

	assert.Equal(t, "assistant", string(msgs[1].Role))
	require.Len(t, msgs[1].Content, 2)
	require.NotNil(t, msgs[1].Content[0].OfToolUse)
	assert.Equal(t, "t1", msgs[1].Content[0].OfToolUse.ID)
	assert.Equal(t, "track_package", msgs[1].Content[0].OfToolUse.Name)

	assert.Equal(t, "user", string(msgs[2].Role))
	require.Len(t, msgs[2].Content, 2)
	require.NotNil(t, msgs[2].Content[0].OfToolResult)
	assert.Equal(t, "t1", msgs[2].Content[0].OfToolResult.ToolUseID)
	assert.Equal(t, "t2", msgs[2].Content[1].OfToolResult.ToolUseID)

	assert.Equal(t, "assistant", string(msgs[3].Role))
}

func TestExtractSystem(t *testing.T) {
	blocks := extractSystem(model.Request{
		Instructions: "be brief",
		Messages:     []core.Message{{Role: core.RoleSystem, Content: "extra"}},
	})
	require.Len(t, blocks, 2)
	assert.Equal(t, "be brief", blocks[0].Text)
	assert.Equal(t, "extra", blocks[1].Text)
}

func TestBuildTools(t *testing.T) {
	tools := buildTools([]core.ToolDefinition{{
		Name:        "create_support_ticket",
		Description: "open a ticket",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"email": map[string]any{"type": "string"}},
			"required":   []any{"email"},
		},
	}})
	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "create_support_ticket", tools[0].OfTool.Name)
	assert.Equal(t, []string{"email"}, tools[0].OfTool.InputSchema.Required)
}
