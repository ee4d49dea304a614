package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swelljoe/weatherpulse/internal/alerts"
	"github.com/swelljoe/weatherpulse/internal/cache"
	"github.com/swelljoe/weatherpulse/internal/forecast"
)

type fakeUpstream struct {
	city       *Location
	address    *Location
	reverse    *Location
	doc        forecast.Document
	aqi        forecast.Document
	cityErr    error
	addressErr error
	reverseErr error
	docErr     error

	calls map[string]int
	tz    string
}

func (f *fakeUpstream) hit(name string) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeUpstream) GeocodeCity(ctx context.Context, name string) (*Location, error) {
	f.hit("city")
	return f.city, f.cityErr
}

func (f *fakeUpstream) GeocodeAddress(ctx context.Context, query string) (*Location, error) {
	f.hit("address")
	return f.address, f.addressErr
}

func (f *fakeUpstream) ReverseGeocode(ctx context.Context, lat, lon float64) (*Location, error) {
	f.hit("reverse")
	return f.reverse, f.reverseErr
}

func (f *fakeUpstream) Forecast(ctx context.Context, lat, lon float64, tz string) (forecast.Document, error) {
	f.hit("forecast")
	f.tz = tz
	return f.doc, f.docErr
}

func (f *fakeUpstream) AirQuality(ctx context.Context, lat, lon float64, tz string) (forecast.Document, error) {
	f.hit("aqi")
	return f.aqi, nil
}

// failingStore errors on every call
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}

var paris = &Location{Name: "Paris", Country: "France", Lat: 48.85, Lon: 2.35, Timezone: "Europe/Paris"}

func windyDoc() forecast.Document {
	return forecast.Document{"current": map[string]any{"wind_speed_10m": 50.0}}
}

func TestService_ByCity(t *testing.T) {
	ctx := context.Background()
	up := &fakeUpstream{city: paris, doc: windyDoc()}
	store := cache.NewMemory()
	s := NewService(up, store, nil, nil)

	first, err := s.ByCity(ctx, "Paris")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, *paris, first.Location)
	assert.Equal(t, "Europe/Paris", up.tz)

	second, err := s.ByCity(ctx, "  paris ")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Location, second.Location)
	assert.Equal(t, 1, up.calls["forecast"], "second lookup served from cache")

	// stored bytes keep cached=false
	var raw WeatherPayload
	ok, err := cache.GetJSON(ctx, store, cache.WeatherKey("paris"), &raw)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, raw.Cached)
}

func TestService_ByCity_AddressFallback(t *testing.T) {
	up := &fakeUpstream{address: &Location{Name: "Baker Street", Lat: 51.52, Lon: -0.15, Timezone: "auto"}, doc: windyDoc()}
	s := NewService(up, cache.NewMemory(), nil, nil)

	got, err := s.ByCity(context.Background(), "221B Baker Street")
	require.NoError(t, err)
	assert.Equal(t, "Baker Street", got.Location.Name)
	assert.Equal(t, 1, up.calls["address"])
}

func TestService_ByCity_NotFound(t *testing.T) {
	t.Run("no match anywhere", func(t *testing.T) {
		s := NewService(&fakeUpstream{}, cache.NewMemory(), nil, nil)
		_, err := s.ByCity(context.Background(), "Atlantis")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("address geocoder failure is a miss", func(t *testing.T) {
		s := NewService(&fakeUpstream{addressErr: errors.New("timeout")}, cache.NewMemory(), nil, nil)
		_, err := s.ByCity(context.Background(), "Atlantis")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_ByCity_UpstreamErrors(t *testing.T) {
	t.Run("geocoder", func(t *testing.T) {
		s := NewService(&fakeUpstream{cityErr: errors.New("boom")}, cache.NewMemory(), nil, nil)
		_, err := s.ByCity(context.Background(), "Paris")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("forecast", func(t *testing.T) {
		store := cache.NewMemory()
		s := NewService(&fakeUpstream{city: paris, docErr: errors.New("boom")}, store, nil, nil)
		_, err := s.ByCity(context.Background(), "Paris")
		require.Error(t, err)
		assert.Equal(t, 0, store.Len(), "failures are not cached")
	})
}

func TestService_ByCoords(t *testing.T) {
	ctx := context.Background()

	t.Run("reverse geocoded", func(t *testing.T) {
		up := &fakeUpstream{reverse: paris, doc: windyDoc()}
		s := NewService(up, cache.NewMemory(), nil, nil)

		got, err := s.ByCoords(ctx, 48.85, 2.35, "")
		require.NoError(t, err)
		assert.Equal(t, "Paris", got.Location.Name)
		assert.Equal(t, "auto", up.tz)

		again, err := s.ByCoords(ctx, 48.85, 2.35, "auto")
		require.NoError(t, err)
		assert.True(t, again.Cached)
	})

	t.Run("reverse failure falls back", func(t *testing.T) {
		up := &fakeUpstream{reverseErr: errors.New("boom"), doc: windyDoc()}
		s := NewService(up, cache.NewMemory(), nil, nil)

		got, err := s.ByCoords(ctx, 10, 20, "UTC")
		require.NoError(t, err)
		assert.Equal(t, Location{Name: "Current location", Lat: 10, Lon: 20, Timezone: "UTC"}, got.Location)
	})

	t.Run("no reverse match falls back", func(t *testing.T) {
		s := NewService(&fakeUpstream{doc: windyDoc()}, cache.NewMemory(), nil, nil)

		got, err := s.ByCoords(ctx, 10, 20, "auto")
		require.NoError(t, err)
		assert.Equal(t, "Current location", got.Location.Name)
	})
}

func TestService_AirQuality(t *testing.T) {
	ctx := context.Background()
	up := &fakeUpstream{aqi: forecast.Document{"current": map[string]any{"us_aqi": 17.0}}}
	s := NewService(up, cache.NewMemory(), nil, nil)

	first, err := s.AirQuality(ctx, 1, 2, "")
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := s.AirQuality(ctx, 1, 2, "auto")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	v, _ := second.AQI.Section("current").Number("us_aqi")
	assert.Equal(t, 17.0, v)
	assert.Equal(t, 1, up.calls["aqi"])
}

func TestService_Alerts(t *testing.T) {
	ctx := context.Background()

	t.Run("derived from forecast", func(t *testing.T) {
		up := &fakeUpstream{doc: windyDoc()}
		s := NewService(up, cache.NewMemory(), nil, nil)

		got, err := s.Alerts(ctx, 1, 2, "auto")
		require.NoError(t, err)
		require.Len(t, got.Alerts, 1)
		assert.Equal(t, alerts.Wind, got.Alerts[0].Type)
		assert.False(t, got.Cached)

		again, err := s.Alerts(ctx, 1, 2, "auto")
		require.NoError(t, err)
		assert.True(t, again.Cached)
		assert.Equal(t, got.Alerts, again.Alerts)
		assert.Equal(t, 1, up.calls["forecast"])
	})

	t.Run("empty list survives the cache", func(t *testing.T) {
		up := &fakeUpstream{doc: forecast.Document{}}
		s := NewService(up, cache.NewMemory(), nil, nil)

		_, err := s.Alerts(ctx, 1, 2, "auto")
		require.NoError(t, err)
		again, err := s.Alerts(ctx, 1, 2, "auto")
		require.NoError(t, err)
		assert.NotNil(t, again.Alerts)
		assert.Empty(t, again.Alerts)
	})

	t.Run("expired entry refetches", func(t *testing.T) {
		now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		store := cache.NewMemory(cache.WithClock(func() time.Time { return now }))
		up := &fakeUpstream{doc: windyDoc()}
		s := NewService(up, store, nil, nil)

		_, err := s.Alerts(ctx, 1, 2, "auto")
		require.NoError(t, err)
		now = now.Add(cache.AlertsTTL)
		got, err := s.Alerts(ctx, 1, 2, "auto")
		require.NoError(t, err)
		assert.False(t, got.Cached)
		assert.Equal(t, 2, up.calls["forecast"])
	})
}

func TestService_CacheFailuresAreMisses(t *testing.T) {
	up := &fakeUpstream{city: paris, doc: windyDoc()}
	s := NewService(up, failingStore{}, nil, nil)

	got, err := s.ByCity(context.Background(), "Paris")
	require.NoError(t, err)
	assert.False(t, got.Cached)

	_, err = s.ByCity(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, 2, up.calls["forecast"])
}
