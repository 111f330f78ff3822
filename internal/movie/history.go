package movie

import (
	"encoding/json"
	"fmt"
)

// History is the persisted sequence of list snapshots. Element 0 is the
// oldest snapshot and is the one restored at startup.
type History []List

// Append returns a new history with a copy of l added at the end.
func (h History) Append(l List) History {
	out := make(History, 0, len(h)+1)
	out = append(out, h...)
	return append(out, l.Copy())
}

// First returns the oldest snapshot, or an empty list.
func (h History) First() List {
	if len(h) == 0 {
		return List{}
	}
	return h[0].Copy()
}

// Latest returns the newest snapshot, or an empty list.
func (h History) Latest() List {
	if len(h) == 0 {
		return List{}
	}
	return h[len(h)-1].Copy()
}

// Encode serializes the history as JSON text.
func (h History) Encode() (string, error) {
	if h == nil {
		h = History{}
	}
	data, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("failed to encode history: %w", err)
	}
	return string(data), nil
}

// DecodeHistory parses JSON text produced by Encode.
func DecodeHistory(raw string) (History, error) {
	var h History
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return h, nil
}
