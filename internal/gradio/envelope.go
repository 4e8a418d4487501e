package gradio

import "encoding/json"

// FileRef describes one output slot of a prediction. Only entries with
// IsFile set and a non-empty Name refer to a downloadable file.
type FileRef struct {
	IsFile   bool   `json:"is_file"`
	Name     string `json:"name"`
	OrigName string `json:"orig_name,omitempty"`
}

// Downloadable reports whether the backend serves this entry at /file=<Name>.
func (f FileRef) Downloadable() bool {
	return f.IsFile && f.Name != ""
}

// Envelope is the reply of a prediction call.
type Envelope struct {
	Data            json.RawMessage `json:"data"`
	IsGenerating    bool            `json:"is_generating,omitempty"`
	Duration        float64         `json:"duration,omitempty"`
	AverageDuration float64         `json:"average_duration,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// Groups decodes Data into result groups, keeping positions intact.
//
// It returns nil when Data is absent or not an array. A group that is not an
// array decodes to a nil slice; an item that is not a file object decodes to
// a zero FileRef. Both are skipped by callers but still occupy their index.
func (e *Envelope) Groups() [][]FileRef {
	if e == nil || len(e.Data) == 0 {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(e.Data, &raw); err != nil {
		return nil
	}

	groups := make([][]FileRef, len(raw))
	for i, g := range raw {
		var items []json.RawMessage
		if err := json.Unmarshal(g, &items); err != nil {
			continue
		}
		refs := make([]FileRef, len(items))
		for j, item := range items {
			// Non-object items stay zero-valued.
			_ = json.Unmarshal(item, &refs[j])
		}
		groups[i] = refs
	}
	return groups
}
