package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/model"
)

func TestBuildMessages_MapsRoles(t *testing.T) {
	call := core.ToolCall{ID: "call-1", Name: "track_package", Arguments: map[string]any{"packageId": "ABC123"}}
	req := model.Request{
		Instructions: "You are a courier support assistant.",
		Messages: []core.Message{
			core.NewUserMessage("Where is ABC123?"),
			{Role: core.RoleAssistant, ToolCalls: []core.ToolCall{call}},
			core.NewToolMessage(call, core.Success(map[string]any{"status": "In Progress"})),
			core.NewAssistantMessage("It is on its way."),
		},
	}

	msgs := buildMessages(req)
	require.Len(t, msgs, 5)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)

	require.NotNil(t, msgs[2].OfAssistant)
	require.Len(t, msgs[2].OfAssistant.ToolCalls, 1)
	assert.Equal(t, "call-1", msgs[2].OfAssistant.ToolCalls[0].ID)
	assert.Equal(t, "track_package", msgs[2].OfAssistant.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"packageId":"ABC123"}`, msgs[2].OfAssistant.ToolCalls[0].Function.Arguments)

	require.NotNil(t, msgs[3].OfTool)
	assert.Equal(t, "call-1", msgs[3].OfTool.ToolCallID)
	assert.NotNil(t, msgs[4].OfAssistant)
}

func TestBuildMessages_KeepsTextBesideToolCalls(t *testing.T) {
	call := core.ToolCall{ID: "call-1", Name: "track_package", Arguments: map[string]any{"packageId": "ABC123"}}
	msgs := buildMessages(model.Request{Messages: []core.Message{
		{Role: core.RoleAssistant, Content: "Let me check that.", ToolCalls: []core.ToolCall{call}},
		{Role: core.RoleAssistant, ToolCalls: []core.ToolCall{call}},
	}})

	require.Len(t, msgs, 2)
	require.NotNil(t, msgs[0].OfAssistant)
	assert.True(t, msgs[0].OfAssistant.Content.OfString.Valid())
	assert.Equal(t, "Let me check that.", msgs[0].OfAssistant.Content.OfString.Value)
	assert.Len(t, msgs[0].OfAssistant.ToolCalls, 1)

	require.NotNil(t, msgs[1].OfAssistant)
	assert.False(t, msgs[1].OfAssistant.Content.OfString.Valid())
}

func TestFinalMessage_OrdersToolCallsByIndex(t *testing.T) {
	agg := map[int64]*aggCall{
		1: {id: "b", name: "search_knowledge_base", args: `{"query":"lost"}`},
		0: {id: "a", name: "track_package", args: `{"packageId":"A"}`},
	}
	msg := finalMessage("checking", agg)

	assert.Equal(t, core.RoleAssistant, msg.Role)
	assert.Equal(t, "checking", msg.Content)
	require.Len(t, msg.ToolCalls, 2)
	assert.Equal(t, "a", msg.ToolCalls[0].ID)
	assert.Equal(t, "A", msg.ToolCalls[0].Arguments["packageId"])
	assert.Equal(t, "b", msg.ToolCalls[1].ID)
}

func TestBuildParams_IncludesTools(t *testing.T) {
	m := NewModelFromClient(nil, func(o *Options) { o.Model = "gpt-4o-mini" })
	params := m.buildParams(model.Request{
		Tools: []core.ToolDefinition{{
			Name:        "track_package",
			Description: "track",
			Parameters:  map[string]any{"type": "object"},
		}},
	}, nil)

	require.Len(t, params.Tools, 1)
	assert.Equal(t, "track_package", params.Tools[0].Function.Name)
	assert.Equal(t, "openai", m.Info().Provider)
	assert.Equal(t, "gpt-4o-mini", m.Info().Name)
}
