package audit

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Bookkeeping fields carry no business meaning in a diff
var ignoredFields = map[string]bool{
	"id":         true,
	"tenant_id":  true,
	"company_id": true,
	"created_at": true,
	"updated_at": true,
}

// displayValueLimit caps each rendered value in the human-readable diff
const displayValueLimit = 200

// FieldChange is one changed field with both values rendered as strings
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// ChangeSet is the outcome of diffing two entity snapshots
type ChangeSet struct {
	OldJSON []byte
	NewJSON []byte
	Changes []FieldChange
}

// Empty reports whether no business field changed
func (c *ChangeSet) Empty() bool {
	return len(c.Changes) == 0
}

// Fields returns the names of the changed fields in order
func (c *ChangeSet) Fields() []string {
	fields := make([]string, len(c.Changes))
	for i, ch := range c.Changes {
		fields[i] = ch.Field
	}
	return fields
}

// Display renders the change set for humans, one "field: old -> new" line
// per change with long values truncated
func (c *ChangeSet) Display() string {
	lines := make([]string, len(c.Changes))
	for i, ch := range c.Changes {
		lines[i] = fmt.Sprintf("%s: %s -> %s", ch.Field, truncate(ch.Old), truncate(ch.New))
	}
	return strings.Join(lines, "\n")
}

// Diff compares two entity snapshots field by field through their JSON
// representations. Either side may be nil (creation and deletion). Fields on
// the ignore list never appear in the result.
func Diff(oldValue, newValue any) (*ChangeSet, error) {
	oldJSON, oldMap, err := snapshot(oldValue)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot old value: %w", err)
	}
	newJSON, newMap, err := snapshot(newValue)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot new value: %w", err)
	}

	fields := make(map[string]bool, len(oldMap)+len(newMap))
	for k := range oldMap {
		fields[k] = true
	}
	for k := range newMap {
		fields[k] = true
	}

	cs := &ChangeSet{OldJSON: oldJSON, NewJSON: newJSON}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if !ignoredFields[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		oldRendered := render(oldMap[name])
		newRendered := render(newMap[name])
		if oldRendered != newRendered {
			cs.Changes = append(cs.Changes, FieldChange{Field: name, Old: oldRendered, New: newRendered})
		}
	}
	return cs, nil
}

// snapshot marshals a value and reads it back as a generic map
func snapshot(value any) ([]byte, map[string]any, error) {
	if value == nil {
		return nil, nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, err
	}
	return raw, m, nil
}

// render turns a decoded JSON value into a comparable string
func render(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		// Trailing zeroes would make equal numbers look different
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= displayValueLimit {
		return s
	}
	return string(runes[:displayValueLimit]) + "..."
}
