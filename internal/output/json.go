package output

import (
	"encoding/json"
	"io"
)

// RenderJSON writes v as indented JSON. Analysis results, comparison
// results and history records all share this path, so their wire shape
// is whatever their struct tags say.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
