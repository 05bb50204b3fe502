package events

import (
	"encoding/json"
	"fmt"
)

// Name identifies a named server-push event on a quiz stream.
type Name string

const (
	Connected       Name = "connected"
	PlayerJoined    Name = "player.joined"
	PlayerExited    Name = "player.exited"
	QuestionChanged Name = "question.changed"
)

// AdminNames are the events carried by the admin stream.
func AdminNames() []string {
	return []string{
		string(Connected),
		string(PlayerJoined),
		string(PlayerExited),
		string(QuestionChanged),
	}
}

// PlayerNames are the events carried by the participant stream.
func PlayerNames() []string {
	return []string{
		string(Connected),
		string(QuestionChanged),
	}
}

// PlayerPayload carries participant presence data. Fields other than the
// identifier are pointers because join/exit events may carry partial records;
// absent fields must not overwrite known state downstream.
type PlayerPayload struct {
	ID     string  `json:"id"`
	Name   *string `json:"name,omitempty"`
	Score  *int    `json:"score,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// QuestionChangedPayload announces which question the administrator broadcast.
type QuestionChangedPayload struct {
	QuestionNumber int `json:"questionNumber"`
}

// ConnectedPayload is the stream handshake. Its data is the session id as a
// bare string, not JSON.
type ConnectedPayload struct {
	SessionID string
}

// ParsePayload decodes the data of a named event into its typed payload.
// A decode failure here is the caller's cue to drop the event and keep the
// stream alive.
func ParsePayload(name Name, data []byte) (interface{}, error) {
	switch name {
	case Connected:
		return ConnectedPayload{SessionID: string(data)}, nil

	case PlayerJoined, PlayerExited:
		var payload PlayerPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", name, err)
		}
		if payload.ID == "" {
			return nil, fmt.Errorf("%s payload missing id", name)
		}
		return payload, nil

	case QuestionChanged:
		var payload QuestionChangedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", name, err)
		}
		if payload.QuestionNumber < 1 {
			return nil, fmt.Errorf("%s payload has invalid questionNumber %d", name, payload.QuestionNumber)
		}
		return payload, nil

	default:
		return nil, fmt.Errorf("unknown event name: %s", name)
	}
}
