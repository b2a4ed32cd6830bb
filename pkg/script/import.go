package script

import (
	"bytes"
	"encoding/json"
)

// ImportError rejects an externally supplied project document. The stored
// project must be left untouched when one of these is returned.
type ImportError struct {
	Reason string
}

func (e *ImportError) Error() string {
	return "invalid project document: " + e.Reason
}

// ParseProject validates and decodes an externally supplied project
// document. The document must carry a worldSettings key (null is allowed)
// and a stages array; anything else is rejected with an *ImportError.
func ParseProject(data []byte) (*Project, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ImportError{Reason: "not a JSON object: " + err.Error()}
	}

	if _, ok := doc["worldSettings"]; !ok {
		return nil, &ImportError{Reason: "missing worldSettings"}
	}
	stagesRaw, ok := doc["stages"]
	if !ok {
		return nil, &ImportError{Reason: "missing stages"}
	}
	if trimmed := bytes.TrimSpace(stagesRaw); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &ImportError{Reason: "stages must be an array"}
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &ImportError{Reason: err.Error()}
	}
	if p.Stages == nil {
		p.Stages = []Stage{}
	}
	return &p, nil
}
