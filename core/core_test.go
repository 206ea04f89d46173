package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolResult_JSONShape(t *testing.T) {
	ok := Success(map[string]any{"status": "delivered"})

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(ok.String()), &decoded))
	assert.Equal(t, true, decoded["success"])
	assert.Equal(t, map[string]any{"status": "delivered"}, decoded["payload"])
	assert.NotContains(t, decoded, "errorKind")

	fail := Failure(ErrorKindTimeout, "")
	decoded = nil
	require.NoError(t, json.Unmarshal([]byte(fail.String()), &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.Equal(t, "Timeout", decoded["errorKind"])
	assert.NotContains(t, decoded, "detail")
}

func TestToolResult_Unencodable(t *testing.T) {
	r := Success(make(chan int))
	assert.Contains(t, r.String(), string(ErrorKindUnexpected))
}

func TestToolResult_Outcome(t *testing.T) {
	assert.Equal(t, "success", Success(nil).Outcome())
	assert.Equal(t, "RemoteRejected", Failuref(ErrorKindRemoteRejected, "status %d", 500).Outcome())
}

func TestNewToolMessage(t *testing.T) {
	call := ToolCall{ID: "c1", Name: "track_package", Arguments: map[string]any{"packageId": "ABC123"}}
	msg := NewToolMessage(call, Success("ok"))

	assert.Equal(t, RoleTool, msg.Role)
	assert.Equal(t, "c1", msg.ToolCallID)
	assert.Equal(t, "track_package", msg.ToolName)
	require.NotNil(t, msg.Result)
	assert.True(t, msg.Result.Success)
	assert.JSONEq(t, `{"success":true,"payload":"ok"}`, msg.Content)
}

func TestCloneMessages_Deep(t *testing.T) {
	orig := []Message{
		NewUserMessage("hi"),
		{
			Role:      RoleAssistant,
			ToolCalls: []ToolCall{{ID: "1", Name: "x", Arguments: map[string]any{"a": "b"}}},
		},
		NewToolMessage(ToolCall{ID: "1", Name: "x"}, Failure(ErrorKindValidation, "missing required fields: a")),
	}

	clone := CloneMessages(orig)
	require.Len(t, clone, 3)

	clone[1].ToolCalls[0].Arguments["a"] = "changed"
	clone[2].Result.Detail = "changed"
	clone[0].Content = "changed"

	assert.Equal(t, "b", orig[1].ToolCalls[0].Arguments["a"])
	assert.Equal(t, "missing required fields: a", orig[2].Result.Detail)
	assert.Equal(t, "hi", orig[0].Content)
}

func TestCloneMessages_Nil(t *testing.T) {
	out := CloneMessages(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
