package forecast

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	doc, err := Decode([]byte(`{"current":{"wind_speed_10m":31.5},"daily":{"time":["2024-06-01"],"uv_index_max":[7]}}`))
	require.NoError(t, err)

	v, ok := doc.Section("current").Number("wind_speed_10m")
	assert.True(t, ok)
	assert.Equal(t, 31.5, v)

	n, ok := doc.Section("daily").Series("uv_index_max").Number(0)
	assert.True(t, ok)
	assert.Equal(t, 7.0, n)

	s, ok := doc.Section("daily").Series("time").String(0)
	assert.True(t, ok)
	assert.Equal(t, "2024-06-01", s)

	_, err = Decode([]byte(`[1,2]`))
	assert.Error(t, err)
}

func TestDocumentTolerance(t *testing.T) {
	doc := Document{
		"current": "not an object",
		"daily": map[string]any{
			"temperature_2m_max": "hot",
			"temperature_2m_min": []any{nil, 3},
		},
		"hourly": Document{"precipitation_probability": []float64{10, 20}},
	}

	t.Run("mistyped section reads empty", func(t *testing.T) {
		_, ok := doc.Section("current").Number("wind_speed_10m")
		assert.False(t, ok)
	})

	t.Run("missing section reads empty", func(t *testing.T) {
		assert.Equal(t, 0, doc.Section("nope").Series("x").Len())
	})

	t.Run("mistyped series reads empty", func(t *testing.T) {
		assert.Equal(t, 0, doc.Section("daily").Series("temperature_2m_max").Len())
	})

	t.Run("null entry is absent", func(t *testing.T) {
		s := doc.Section("daily").Series("temperature_2m_min")
		_, ok := s.Number(0)
		assert.False(t, ok)
		v, ok := s.Number(1)
		assert.True(t, ok)
		assert.Equal(t, 3.0, v)
	})

	t.Run("out of range index", func(t *testing.T) {
		_, ok := doc.Section("daily").Series("temperature_2m_min").Number(5)
		assert.False(t, ok)
		_, ok = doc.Section("daily").Series("temperature_2m_min").String(-1)
		assert.False(t, ok)
	})

	t.Run("typed slices", func(t *testing.T) {
		v, ok := doc.Section("hourly").Series("precipitation_probability").Number(1)
		assert.True(t, ok)
		assert.Equal(t, 20.0, v)
	})

	t.Run("nil document", func(t *testing.T) {
		var empty Document
		_, ok := empty.Section("current").Number("uv_index")
		assert.False(t, ok)
	})
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{in: 5, want: 5, ok: true},
		{in: int64(-3), want: -3, ok: true},
		{in: float32(1.5), want: 1.5, ok: true},
		{in: json.Number("12.25"), want: 12.25, ok: true},
		{in: json.Number("abc"), ok: false},
		{in: "12", ok: false},
		{in: true, ok: false},
		{in: nil, ok: false},
	}
	for _, tt := range tests {
		got, ok := toNumber(tt.in)
		assert.Equal(t, tt.ok, ok, "%#v", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}
