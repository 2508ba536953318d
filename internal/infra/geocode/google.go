package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const defaultBaseURL = "https://maps.googleapis.com"

// Location is the resolved position and administrative area of an address.
type Location struct {
	Lat       float64
	Lng       float64
	City      string
	County    string
	State     string
	Formatted string
}

// Client calls the Google Geocoding, Static Maps and Street View APIs.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves an address to coordinates plus city/county/state.
func (c *Client) Geocode(ctx context.Context, address string) (Location, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)

	var resp geocodeResponse
	if err := c.getJSON(ctx, "/maps/api/geocode/json?"+q.Encode(), &resp); err != nil {
		return Location{}, err
	}
	if resp.Status != "OK" || len(resp.Results) == 0 {
		return Location{}, fmt.Errorf("geocode %q: status %s", address, resp.Status)
	}

	res := resp.Results[0]
	loc := Location{
		Lat:       res.Geometry.Location.Lat,
		Lng:       res.Geometry.Location.Lng,
		Formatted: res.FormattedAddress,
	}
	for _, comp := range res.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "locality":
				loc.City = comp.LongName
			case "administrative_area_level_2":
				loc.County = comp.LongName
			case "administrative_area_level_1":
				loc.State = comp.ShortName
			}
		}
	}
	return loc, nil
}

// AerialImage saves a satellite Static Maps shot of the coordinates.
func (c *Client) AerialImage(ctx context.Context, lat, lng float64, outPath string) error {
	q := url.Values{}
	q.Set("center", fmt.Sprintf("%f,%f", lat, lng))
	q.Set("zoom", "18")
	q.Set("size", "640x400")
	q.Set("maptype", "satellite")
	q.Set("key", c.apiKey)
	return c.getFile(ctx, "/maps/api/staticmap?"+q.Encode(), outPath)
}

// StreetViewImage saves a Street View shot of the address.
func (c *Client) StreetViewImage(ctx context.Context, address string, outPath string) error {
	q := url.Values{}
	q.Set("location", address)
	q.Set("size", "640x400")
	q.Set("key", c.apiKey)
	return c.getFile(ctx, "/maps/api/streetview?"+q.Encode(), outPath)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("maps api: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) getFile(ctx context.Context, path string, outPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("maps api: unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(outPath)
		return err
	}
	return nil
}
