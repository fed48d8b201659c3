package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Response is a decoded /api/do_action reply. Only the keys present in the
// reply are kept, so Merge can tell "absent" apart from "null".
type Response struct {
	fields map[string]json.RawMessage
}

// ParseResponse decodes a raw response body.
func ParseResponse(data []byte) (Response, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Response{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return Response{fields: fields}, nil
}

// Has reports whether the response carried key.
func (r Response) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// Keys returns the number of keys in the response.
func (r Response) Keys() int {
	return len(r.fields)
}

// ErrorMessage returns the server's display error, if any.
func (r Response) ErrorMessage() string {
	var s string
	if raw, ok := r.fields["error"]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

// BackendError returns the server-side failure detail. The server sends either
// a string or a list of traceback lines.
func (r Response) BackendError() (string, bool) {
	raw, ok := r.fields["backend_error"]
	if !ok || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return strings.TrimSpace(strings.Join(lines, "")), true
	}
	return string(raw), true
}

// Merge applies a response to prev and returns the new snapshot. Keys absent
// from the response keep their previous value; a JSON null clears the field.
// The game ID is fixed once set and the enabled factions never change here.
func Merge(prev GameState, resp Response) (GameState, error) {
	next := prev.Clone()

	for key, raw := range resp.fields {
		var err error
		switch key {
		case "game_id":
			if next.GameID == "" {
				err = decodeNullable(raw, &next.GameID)
			}
		case "current_player":
			var p string
			err = decodeNullable(raw, &p)
			next.CurrentPlayer = Faction(p)
		case "current_action":
			var name string
			err = decodeNullable(raw, &name)
			next.CurrentAction = ParseAction(name)
			next.ActionName = name
			if name == "" {
				next.ActionName = ActionNone.String()
			}
		case "actions":
			next.ActionsLeft = nil
			if string(raw) != "null" {
				var n int
				err = json.Unmarshal(raw, &n)
				next.ActionsLeft = &n
			}
		case "reset_on":
			err = decodeNullable(raw, &next.ResetOn)
		case "game_over":
			err = decodeNullable(raw, &next.GameOver)
		case "hexes":
			next.Hexes = nil
			err = decodeNullable(raw, &next.Hexes)
		case "spells":
			next.Spells = nil
			err = decodeNullable(raw, &next.Spells)
		case "error":
			next.Error = ""
			err = decodeNullable(raw, &next.Error)
		case "info":
			next.Info = ""
			err = decodeNullable(raw, &next.Info)
		}
		if err != nil {
			return prev, fmt.Errorf("invalid %q in response: %w", key, err)
		}
	}

	return next, nil
}

// decodeNullable resets dst to its zero value on null and decodes otherwise.
func decodeNullable[T any](raw json.RawMessage, dst *T) error {
	if string(raw) == "null" {
		var zero T
		*dst = zero
		return nil
	}
	return json.Unmarshal(raw, dst)
}
