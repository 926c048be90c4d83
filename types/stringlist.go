package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StringList decodes from a JSON array of strings, a single string, or an array of
// arbitrary values (stringified). Models are not strict about list shapes.
type StringList []string

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = StringList{}
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			*l = StringList{}
		} else {
			*l = StringList{single}
		}
		return nil
	}

	var items []interface{}
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("expected string or list: %w", err)
	}

	out := make(StringList, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case nil:
			continue
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return err
			}
			out = append(out, string(b))
		}
	}
	*l = out
	return nil
}
