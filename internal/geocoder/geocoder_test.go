package geocoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/favaddr/internal/models"
)

const parisResponse = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [2.3522, 48.8566]},
			"properties": {"label": "Paris"}
		}
	]
}`

func TestClientGeocode(t *testing.T) {
	type tExpected struct {
		coordinate models.Coordinate
		found      bool
		err        bool
	}
	testCases := []struct {
		name     string
		status   int
		body     string
		expected tExpected
	}{
		{
			name:     "found",
			status:   http.StatusOK,
			body:     parisResponse,
			expected: tExpected{coordinate: models.Coordinate{Lat: 48.8566, Lng: 2.3522}, found: true},
		},
		{
			name:     "no_features",
			status:   http.StatusOK,
			body:     `{"type": "FeatureCollection", "features": []}`,
			expected: tExpected{found: false},
		},
		{
			name:     "unsearchable_query",
			status:   http.StatusBadRequest,
			body:     `{"code": 400, "message": "q must contain between 3 and 200 chars"}`,
			expected: tExpected{found: false},
		},
		{
			name:     "server_error",
			status:   http.StatusBadGateway,
			body:     `upstream unavailable`,
			expected: tExpected{err: true},
		},
		{
			name:     "malformed_json",
			status:   http.StatusOK,
			body:     `{"features": [`,
			expected: tExpected{err: true},
		},
		{
			name:     "malformed_geometry",
			status:   http.StatusOK,
			body:     `{"features": [{"geometry": {"coordinates": [2.35]}}]}`,
			expected: tExpected{err: true},
		},
		{
			name:     "out_of_range",
			status:   http.StatusOK,
			body:     `{"features": [{"geometry": {"coordinates": [48.8566, 200]}}]}`,
			expected: tExpected{err: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "10 rue de la paix", r.URL.Query().Get("q"))
				assert.Equal(t, "1", r.URL.Query().Get("limit"))

				w.WriteHeader(tc.status)
				_, err := w.Write([]byte(tc.body))
				assert.NoError(t, err)
			}))
			defer server.Close()

			client := New(server.URL+"/search/", time.Second)
			coordinate, found, err := client.Geocode(context.Background(), "10 rue de la paix")

			if tc.expected.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected.found, found)
			assert.Equal(t, tc.expected.coordinate, coordinate)
		})
	}
}

func TestClientGeocodeTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := New(server.URL, 50*time.Millisecond)
	_, found, err := client.Geocode(context.Background(), "Paris")

	assert.Error(t, err)
	assert.False(t, found)
}

func TestClientGeocodeCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(parisResponse))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New(server.URL, time.Second).Geocode(ctx, "Paris")
	assert.Error(t, err)
}

func TestFunc(t *testing.T) {
	var geocoder interface {
		Geocode(ctx context.Context, text string) (models.Coordinate, bool, error)
	} = Func(func(ctx context.Context, text string) (models.Coordinate, bool, error) {
		return models.Coordinate{Lat: 1, Lng: 2}, text == "known", nil
	})

	coordinate, found, err := geocoder.Geocode(context.Background(), "known")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, models.Coordinate{Lat: 1, Lng: 2}, coordinate)

	_, found, err = geocoder.Geocode(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, found)
}
