// Package acoustid identifies recordings from Chromaprint fingerprints.
package acoustid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cesargomez89/strume/internal/fingerprint"
	"github.com/cesargomez89/strume/internal/httpclient"
)

// ErrNoAPIKey is returned when no application key is configured.
var ErrNoAPIKey = errors.New("acoustid api key not configured")

// Match is the first recording of the best scoring result.
type Match struct {
	RecordingID string  `json:"recording_id"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	Score       float64 `json:"score"`
}

// Lookup is implemented by Client and CachedClient.
type Lookup interface {
	Lookup(ctx context.Context, fp fingerprint.Result) (*Match, error)
}

type Client struct {
	http   *httpclient.Client
	url    string
	apiKey string
}

func NewClient(lookupURL, apiKey string, httpClient *http.Client) *Client {
	return &Client{
		url:    lookupURL,
		apiKey: apiKey,
		http:   httpclient.NewClient(httpClient, httpclient.Options{}),
	}
}

type lookupResponse struct {
	Status  string   `json:"status"`
	Error   apiError `json:"error"`
	Results []result `json:"results"`
}

type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type result struct {
	ID         string      `json:"id"`
	Recordings []recording `json:"recordings"`
	Score      float64     `json:"score"`
}

type recording struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Artists []artist `json:"artists"`
}

type artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Lookup returns nil, nil when AcoustID knows no recording for fp.
func (c *Client) Lookup(ctx context.Context, fp fingerprint.Result) (*Match, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	form := url.Values{}
	form.Set("client", c.apiKey)
	form.Set("meta", "recordings")
	form.Set("duration", strconv.Itoa(fp.Duration))
	form.Set("fingerprint", fp.Fingerprint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("acoustid request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("acoustid returned status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("acoustid error %d: %s", body.Error.Code, body.Error.Message)
	}

	return firstMatch(body.Results), nil
}

// firstMatch takes the first recording of the first result, which is the
// highest scoring one.
func firstMatch(results []result) *Match {
	if len(results) == 0 || len(results[0].Recordings) == 0 {
		return nil
	}
	rec := results[0].Recordings[0]
	m := &Match{
		RecordingID: rec.ID,
		Title:       rec.Title,
		Score:       results[0].Score,
	}
	if len(rec.Artists) > 0 {
		m.Artist = rec.Artists[0].Name
	}
	return m
}
