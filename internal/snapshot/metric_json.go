package snapshot

import (
	"encoding/json"
	"strconv"
)

// MarshalJSON emits the bare number or string.
func (m MetricValue) MarshalJSON() ([]byte, error) {
	if m.Number != nil {
		// Integers stay integers on the wire.
		if *m.Number == float64(int64(*m.Number)) {
			return []byte(strconv.FormatInt(int64(*m.Number), 10)), nil
		}
		return json.Marshal(*m.Number)
	}
	return json.Marshal(m.Text)
}

// UnmarshalJSON accepts numbers and strings.
func (m *MetricValue) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		m.Number = &n
		return nil
	}
	return json.Unmarshal(data, &m.Text)
}
