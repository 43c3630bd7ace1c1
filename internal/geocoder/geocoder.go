// Package geocoder resolves free-text locations to coordinates.
//
// Client talks to a search API answering GeoJSON feature collections, such as
// https://api-adresse.data.gouv.fr/search/. Func lets any function of the same
// shape stand in for it.
package geocoder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/patric-chuzhbe/favaddr/internal/models"
)

// Func adapts an ordinary function to the geocoding contract used by the
// address service.
type Func func(ctx context.Context, text string) (models.Coordinate, bool, error)

func (f Func) Geocode(ctx context.Context, text string) (models.Coordinate, bool, error) {
	return f(ctx, text)
}

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Geometry struct {
		// GeoJSON order: longitude first.
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
}

// Client is the HTTP implementation.
type Client struct {
	client  *resty.Client
	baseURL string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		baseURL: baseURL,
	}
}

// Geocode returns the best match for text. found is false when the API has no
// match or rejects the query as unsearchable; any other failure is an error.
func (c *Client) Geocode(ctx context.Context, text string) (models.Coordinate, bool, error) {
	var collection featureCollection

	response, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     text,
			"limit": "1",
		}).
		ForceContentType("application/json").
		SetResult(&collection).
		Get(c.baseURL)
	if err != nil {
		return models.Coordinate{}, false, fmt.Errorf(
			"in internal/geocoder/geocoder.go/Geocode(): error while `c.client.R().Get()` calling: %w",
			err,
		)
	}

	if response.StatusCode() == http.StatusBadRequest {
		return models.Coordinate{}, false, nil
	}
	if !response.IsSuccess() {
		return models.Coordinate{}, false, fmt.Errorf(
			"in internal/geocoder/geocoder.go/Geocode(): unexpected status %d",
			response.StatusCode(),
		)
	}

	if len(collection.Features) == 0 {
		return models.Coordinate{}, false, nil
	}

	coordinates := collection.Features[0].Geometry.Coordinates
	if len(coordinates) < 2 {
		return models.Coordinate{}, false, fmt.Errorf(
			"in internal/geocoder/geocoder.go/Geocode(): malformed geometry %v",
			coordinates,
		)
	}

	result := models.Coordinate{Lat: coordinates[1], Lng: coordinates[0]}
	if result.Lat < -90 || result.Lat > 90 || result.Lng < -180 || result.Lng > 180 {
		return models.Coordinate{}, false, fmt.Errorf(
			"in internal/geocoder/geocoder.go/Geocode(): coordinate out of range %v",
			coordinates,
		)
	}

	return result, true, nil
}
