package forecast

import (
	"encoding/json"
	"math"
)

// Document is a decoded upstream JSON object. Lookups never fail: a missing
// or mistyped value reads as absent.
type Document map[string]any

// Decode parses a JSON object into a Document
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Section returns a nested object, or an empty Document when name is absent
func (d Document) Section(name string) Document {
	switch v := d[name].(type) {
	case map[string]any:
		return Document(v)
	case Document:
		return v
	}
	return Document{}
}

// Number returns a numeric field
func (d Document) Number(name string) (float64, bool) {
	return toNumber(d[name])
}

// Series returns an array field
func (d Document) Series(name string) Series {
	switch v := d[name].(type) {
	case []any:
		return Series(v)
	case Series:
		return v
	case []float64:
		s := make(Series, len(v))
		for i := range v {
			s[i] = v[i]
		}
		return s
	case []string:
		s := make(Series, len(v))
		for i := range v {
			s[i] = v[i]
		}
		return s
	}
	return nil
}

// Series is an array of loosely typed values, as found in hourly and daily blocks
type Series []any

func (s Series) Len() int { return len(s) }

// Number returns the value at i if it is numeric
func (s Series) Number(i int) (float64, bool) {
	if i < 0 || i >= len(s) {
		return 0, false
	}
	return toNumber(s[i])
}

// String returns the value at i if it is a string
func (s Series) String(i int) (string, bool) {
	if i < 0 || i >= len(s) {
		return "", false
	}
	v, ok := s[i].(string)
	return v, ok
}

func toNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
