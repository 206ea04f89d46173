package session

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/supportmesh/core"
)

// Encode serializes a transcript for durable stores.
func Encode(messages []core.Message) ([]byte, error) {
	if messages == nil {
		messages = []core.Message{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	return data, nil
}

// Decode parses a transcript written by Encode. Empty input yields an empty
// transcript.
func Decode(data []byte) ([]core.Message, error) {
	if len(data) == 0 {
		return []core.Message{}, nil
	}
	var messages []core.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	if messages == nil {
		messages = []core.Message{}
	}
	return messages, nil
}
