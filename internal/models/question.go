package models

import (
	"bytes"
	"encoding/json"
)

// Question is the body POSTed to /ask.
type Question struct {
	Query string `json:"query"`
}

// Reply is the decoded /ask response. Only the answer property is read;
// anything else the server sends is ignored.
type Reply struct {
	Answer json.RawMessage `json:"answer"`
}

// Text returns the answer as it should be displayed and whether the
// property was present at all. Non-string values are shown as their JSON text.
func (r Reply) Text() (string, bool) {
	raw := bytes.TrimSpace(r.Answer)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return string(raw), true
}
