package onemap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"hdb_service/internal/domain/model"
)

// tokenSlack is subtracted from the credential expiry so a token is
// refreshed before it actually lapses mid-request.
const tokenSlack = time.Minute

// Client wraps the OneMap geocoding and walking-route APIs. It owns
// the access-token lifecycle: the token is fetched lazily on first use
// and refreshed when its validity window closes. Both lookups soft-fail
// so the prediction pipeline degrades instead of aborting.
type Client struct {
	baseURL    string
	email      string
	password   string
	httpClient *http.Client
	maxRetries int
	log        *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(baseURL, email, password string, timeout time.Duration, maxRetries int, log *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		email:      email,
		password:   password,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		log:        log,
	}
}

type tokenResponse struct {
	AccessToken     string `json:"access_token"`
	ExpiryTimestamp string `json:"expiry_timestamp"`
}

type searchResponse struct {
	Results []struct {
		Latitude  string `json:"LATITUDE"`
		Longitude string `json:"LONGITUDE"`
	} `json:"results"`
}

type routeResponse struct {
	RouteSummary struct {
		TotalDistance *float64 `json:"total_distance"`
	} `json:"route_summary"`
}

// Geocode resolves an address through the OneMap search API. It
// returns ok=false when the service fails or finds nothing; the zero
// coordinate is never handed to callers as a location.
func (c *Client) Geocode(ctx context.Context, address string) (model.Coordinate, bool) {
	endpoint := fmt.Sprintf("%s/api/common/elastic/search?searchVal=%s&returnGeom=Y&getAddrDetails=N",
		c.baseURL, url.QueryEscape(address))

	var resp searchResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		c.log.Warn("geocode request failed", zap.String("address", address), zap.Error(err))
		return model.Coordinate{}, false
	}
	if len(resp.Results) == 0 {
		return model.Coordinate{}, false
	}

	lat, errLat := strconv.ParseFloat(resp.Results[0].Latitude, 64)
	long, errLong := strconv.ParseFloat(resp.Results[0].Longitude, 64)
	if errLat != nil || errLong != nil {
		c.log.Warn("geocode response had malformed coordinates", zap.String("address", address))
		return model.Coordinate{}, false
	}

	return model.Coordinate{Lat: lat, Long: long}, true
}

// WalkingDistance queries the OneMap routing service for the walking
// distance between two coordinates, in meters. Nil means unknown.
func (c *Client) WalkingDistance(ctx context.Context, origin, dest model.Coordinate) *float64 {
	endpoint := fmt.Sprintf("%s/api/public/routingsvc/route?start=%f,%f&end=%f,%f&routeType=walk",
		c.baseURL, origin.Lat, origin.Long, dest.Lat, dest.Long)

	var resp routeResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		c.log.Warn("route request failed", zap.Error(err))
		return nil
	}
	return resp.RouteSummary.TotalDistance
}

// getJSON issues an authorized GET with bounded retries. Exhausting
// the retry budget returns the last error; callers translate that into
// an unknown feature value.
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}
		if lastErr = c.doGetJSON(ctx, endpoint, out); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (c *Client) doGetJSON(ctx context.Context, endpoint string, out interface{}) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("error building request: %w", err)
	}
	req.Header.Set("Authorization", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}

// accessToken returns a valid token, re-authenticating when the cached
// one is absent or inside the expiry slack.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenSlack)) {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/auth/post/getToken", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("error building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error requesting token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("error decoding token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token response had no access_token")
	}

	c.token = tok.AccessToken
	c.tokenExpiry = parseExpiry(tok.ExpiryTimestamp)
	return c.token, nil
}

// parseExpiry decodes OneMap's unix-seconds expiry string. A malformed
// value falls back to a conservative one-hour window.
func parseExpiry(raw string) time.Time {
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Now().Add(time.Hour)
	}
	return time.Unix(secs, 0)
}
