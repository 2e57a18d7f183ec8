package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// DefaultStats is shown for projects whose stats column is not an object.
func DefaultStats() []Stat {
	return []Stat{
		{Label: "Duration", Value: "3 months"},
		{Label: "Team Size", Value: "1"},
		{Label: "Status", Value: "Completed"},
	}
}

// ParseStats turns a JSON stats object into label/value pairs, keeping the
// key order of the document. Anything other than an object (null, arrays,
// scalars, malformed input) yields DefaultStats.
func ParseStats(raw []byte) []Stat {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return DefaultStats()
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return DefaultStats()
	}

	stats := []Stat{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return DefaultStats()
		}
		label, _ := keyTok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return DefaultStats()
		}
		stats = append(stats, Stat{Label: label, Value: statValue(value)})
	}
	return stats
}

// EncodeStats renders stats as a JSON object preserving their order.
func EncodeStats(stats []Stat) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range stats {
		if i > 0 {
			buf.WriteByte(',')
		}
		label, err := json.Marshal(s.Label)
		if err != nil {
			return nil, fmt.Errorf("content.EncodeStats: %w", err)
		}
		value, err := json.Marshal(s.Value)
		if err != nil {
			return nil, fmt.Errorf("content.EncodeStats: %w", err)
		}
		buf.Write(label)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func statValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
