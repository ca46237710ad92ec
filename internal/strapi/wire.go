// Strapi v4 wire envelope types shared by the repository and the mappings.
package strapi

import (
	"encoding/json"
	"fmt"
)

// listEnvelope is the paginated collection response: {"data": [...], "meta": {...}}.
type listEnvelope struct {
	Data []json.RawMessage `json:"data"`
	Meta meta              `json:"meta"`
}

// itemEnvelope is the single-entity response: {"data": {...}}.
type itemEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type meta struct {
	Pagination pagination `json:"pagination"`
}

type pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// relation is a relation field: {"data": [{"id": 1}, ...]}.
type relation struct {
	Data []relationEntry `json:"data"`
}

type relationEntry struct {
	ID json.Number `json:"id"`
}

// ids returns the relation's backend-native numeric ids as domain strings.
// A nil relation yields nil, preserving "absent" through the mapping.
func (r *relation) ids() []string {
	if r == nil || r.Data == nil {
		return nil
	}
	out := make([]string, 0, len(r.Data))
	for _, e := range r.Data {
		out = append(out, e.ID.String())
	}
	return out
}

// media is an image field: {"data": {"id": 1, "attributes": {...}}} or {"data": null}.
type media struct {
	Data *mediaEntry `json:"data"`
}

type mediaEntry struct {
	ID         json.Number     `json:"id"`
	Attributes mediaAttributes `json:"attributes"`
}

type mediaAttributes struct {
	URL     string                 `json:"url"`
	Formats map[string]mediaFormat `json:"formats"`
}

type mediaFormat struct {
	URL string `json:"url"`
}

// splitEntry separates an entity entry into its id and attribute bytes.
// Accepts both the enveloped form {"id": 1, "attributes": {...}} and the
// flattened form some Strapi plugins return, where the attributes live at
// the top level next to the id.
func splitEntry(data []byte) (string, []byte, error) {
	var entry struct {
		ID         json.Number     `json:"id"`
		Attributes json.RawMessage `json:"attributes"`
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", nil, fmt.Errorf("failed to decode entry: %w", err)
	}

	attrs := []byte(entry.Attributes)
	if len(attrs) == 0 || string(attrs) == "null" {
		attrs = data
	}
	return entry.ID.String(), attrs, nil
}

// mediaRef converts an image reference for write payloads. Uploaded media is
// linked by its numeric library id; anything non-numeric passes through as a
// plain URL.
func mediaRef(ref string) any {
	n := json.Number(ref)
	if _, err := n.Int64(); err == nil {
		return n
	}
	return ref
}

// relationIDs converts domain string ids to the numeric ids Strapi expects
// in write payloads. Non-numeric ids pass through unchanged so the server
// can reject them itself.
func relationIDs(ids []string) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		var n json.Number = json.Number(id)
		if _, err := n.Int64(); err == nil {
			out = append(out, n)
			continue
		}
		out = append(out, id)
	}
	return out
}
