package stadiamaps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/pkg/errors"
)

const (
	defaultStadiaBaseURL = "https://api.stadiamaps.com"
	reverseEndpoint      = "/geocoding/v1/reverse"
)

// ErrNoPlace is returned when a reverse lookup finds nothing near the point.
var ErrNoPlace = errors.New("no place found")

// Client handles communication with the Stadia Maps geocoding API.
type Client struct {
	BaseURL    *url.URL
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a Stadia Maps client. An empty baseURL selects the
// public endpoint.
func NewClient(apiKey, baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = defaultStadiaBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}
	return &Client{
		BaseURL: u,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
	}, nil
}

// reverseQuery is encoded with go-querystring.
type reverseQuery struct {
	PointLat float64  `url:"point.lat"`
	PointLon float64  `url:"point.lon"`
	Size     int      `url:"size"`
	Layers   []string `url:"layers,omitempty,comma"`
}

type featureCollection struct {
	Features []struct {
		Properties struct {
			Label       string `json:"label"`
			Name        string `json:"name"`
			HouseNumber string `json:"housenumber"`
			Street      string `json:"street"`
			Locality    string `json:"locality"`
			County      string `json:"county"`
			Region      string `json:"region"`
			Country     string `json:"country"`
		} `json:"properties"`
	} `json:"features"`
}

// Place is the postal description of a coordinate.
type Place struct {
	Address string
	City    string
	Country string
}

func (c *Client) buildURL(endpoint string, params interface{}) (string, error) {
	rel, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.Wrap(err, "parse endpoint")
	}
	u := c.BaseURL.ResolveReference(rel)

	v, err := query.Values(params)
	if err != nil {
		return "", errors.Wrap(err, "encode query parameters")
	}
	v.Set("api_key", c.APIKey)
	u.RawQuery = v.Encode()
	return u.String(), nil
}

// ReverseGeocode returns the closest address or venue to the point.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (Place, error) {
	reqURL, err := c.buildURL(reverseEndpoint, reverseQuery{
		PointLat: lat,
		PointLon: lng,
		Size:     1,
		Layers:   []string{"address", "venue", "street"},
	})
	if err != nil {
		return Place{}, errors.Wrap(err, "build reverse geocode URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Place{}, errors.Wrap(err, "create reverse geocode request")
	}

	var result featureCollection
	if err := c.do(req, &result); err != nil {
		return Place{}, errors.Wrap(err, "execute reverse geocode request")
	}
	if len(result.Features) == 0 {
		return Place{}, ErrNoPlace
	}

	props := result.Features[0].Properties
	address := strings.TrimSpace(strings.Join([]string{props.HouseNumber, props.Street}, " "))
	if address == "" {
		address = props.Name
	}
	city := props.Locality
	if city == "" {
		city = props.County
	}
	return Place{Address: address, City: city, Country: props.Country}, nil
}

// do executes HTTP requests and decodes JSON responses.
func (c *Client) do(req *http.Request, v interface{}) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "execute HTTP request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
