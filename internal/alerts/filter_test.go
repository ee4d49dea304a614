package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var sample = []Alert{
	{Rain, Warning, "Rain very likely today", "Chance of precipitation is 90%."},
	{Wind, Info, "Breezy conditions", "Current wind speed is ~32 km/h."},
	{UV, Warning, "High UV", "UV index is 9. Consider sunscreen and shade."},
	{Heat, Info, "Warm day", "High is ~29°C."},
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		allowed []Type
		min     Severity
		want    []Type
	}{
		{name: "all types info", allowed: AllTypes, min: Info, want: []Type{Rain, Wind, UV, Heat}},
		{name: "warnings only", allowed: AllTypes, min: Warning, want: []Type{Rain, UV}},
		{name: "subset of types", allowed: []Type{Wind, Heat}, min: Info, want: []Type{Wind, Heat}},
		{name: "subset and warnings", allowed: []Type{Wind, Heat}, min: Warning, want: []Type{}},
		{name: "unknown severity ranks as info", allowed: []Type{UV}, min: Severity("bogus"), want: []Type{UV}},
		{name: "no types", allowed: nil, min: Info, want: []Type{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(sample, tt.allowed, tt.min)
			types := make([]Type, 0, len(got))
			for _, a := range got {
				types = append(types, a.Type)
			}
			assert.Equal(t, tt.want, types)
		})
	}
}

func TestFilter_RainWarningsOnly(t *testing.T) {
	list := []Alert{
		{Rain, Info, "Rain possible today", "Chance of precipitation is 65%."},
		{Wind, Warning, "Strong winds", "Current wind speed is ~50 km/h."},
		{Rain, Warning, "Rain likely soon", "High precipitation probability around 2024-06-01 03:00 (75%)."},
	}

	got := Filter(list, []Type{Rain}, Warning)
	assert.Equal(t, []Alert{list[2]}, got)

	assert.Empty(t, Filter(list[:1], []Type{Rain}, Warning))
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	in := append([]Alert(nil), sample...)
	Filter(in, []Type{Rain}, Warning)
	assert.Equal(t, sample, in)
}

func TestHash(t *testing.T) {
	t.Run("hex sha256", func(t *testing.T) {
		h := Hash(sample)
		assert.Len(t, h, 64)
		assert.Equal(t, h, Hash(sample))
	})

	t.Run("order invariant", func(t *testing.T) {
		reversed := []Alert{sample[3], sample[2], sample[1], sample[0]}
		assert.Equal(t, Hash(sample), Hash(reversed))
	})

	t.Run("detail change alters hash", func(t *testing.T) {
		changed := append([]Alert(nil), sample...)
		changed[0].Detail = "Chance of precipitation is 91%."
		assert.NotEqual(t, Hash(sample), Hash(changed))
	})

	t.Run("severity change alters hash", func(t *testing.T) {
		changed := append([]Alert(nil), sample...)
		changed[1].Severity = Warning
		assert.NotEqual(t, Hash(sample), Hash(changed))
	})

	t.Run("subset differs", func(t *testing.T) {
		assert.NotEqual(t, Hash(sample), Hash(sample[:3]))
	})

	t.Run("empty list", func(t *testing.T) {
		assert.Equal(t, Hash(nil), Hash([]Alert{}))
	})
}
