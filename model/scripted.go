package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/supportmesh/core"
)

// Turn is one scripted model reply: either a message or an error.
type Turn struct {
	Message core.Message
	Err     error
}

// Reply scripts a plain assistant answer.
func Reply(text string) Turn {
	return Turn{Message: core.NewAssistantMessage(text)}
}

// CallTools scripts an assistant turn requesting the given tool calls.
func CallTools(calls ...core.ToolCall) Turn {
	return Turn{Message: core.Message{Role: core.RoleAssistant, ToolCalls: calls}}
}

// Fail scripts a provider failure.
func Fail(err error) Turn {
	return Turn{Err: err}
}

// ScriptedModel is a deterministic in‑memory Model for tests, demos and
// offline runs. It plays back its turns in order and records every request.
// Once the script is exhausted it keeps repeating the last turn.
type ScriptedModel struct {
	mu       sync.Mutex
	turns    []Turn
	next     int
	requests []Request
	info     Info
}

// NewScriptedModel creates a model replaying turns.
func NewScriptedModel(turns ...Turn) *ScriptedModel {
	return &ScriptedModel{
		turns: turns,
		info:  Info{Name: "scripted", Provider: "scripted", SupportsTools: true},
	}
}

// Generate implements Model. With Stream set, text content is additionally
// emitted rune by rune as partial chunks.
func (m *ScriptedModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.requests = append(m.requests, cloneRequest(req))
	var turn Turn
	switch {
	case len(m.turns) == 0:
		turn = Fail(fmt.Errorf("scripted model has no turns"))
	case m.next < len(m.turns):
		turn = m.turns[m.next]
		m.next++
	default:
		turn = m.turns[len(m.turns)-1]
	}
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)
		if turn.Err != nil {
			errCh <- turn.Err
			return
		}
		msg := turn.Message.Clone()
		msg.Role = core.RoleAssistant
		if req.Stream {
			for _, r := range msg.Content {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Message: core.NewAssistantMessage(string(r))}:
				}
			}
		}
		finish := "stop"
		if msg.HasToolCalls() {
			finish = "tool_calls"
		}
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{Message: msg, FinishReason: finish}:
		}
	}()
	return respCh, errCh
}

// Info implements Model.
func (m *ScriptedModel) Info() Info { return m.info }

// Requests returns copies of the requests received so far.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns how many times Generate was invoked.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func cloneRequest(req Request) Request {
	c := req
	c.Messages = core.CloneMessages(req.Messages)
	if req.Tools != nil {
		c.Tools = append([]core.ToolDefinition(nil), req.Tools...)
	}
	return c
}
