// Package musicbrainz looks up genre tags for recordings identified by
// AcoustID.
package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cesargomez89/strume/internal/httpclient"
)

const (
	DefaultUserAgent = "strume/1.0 (https://github.com/cesargomez89/strume)"
	// MusicBrainz asks for at most one request per second.
	minRequestInterval = 1050 * time.Millisecond
)

// DefaultGenreMap folds common MusicBrainz tags into broad genres.
var DefaultGenreMap = map[string]string{
	"rock":              "Rock",
	"alternative rock":  "Rock",
	"indie rock":        "Rock",
	"hard rock":         "Rock",
	"punk":              "Rock",
	"punk rock":         "Rock",
	"post-punk":         "Rock",
	"grunge":            "Rock",
	"metal":             "Metal",
	"heavy metal":       "Metal",
	"nu metal":          "Metal",
	"death metal":       "Metal",
	"thrash metal":      "Metal",
	"metalcore":         "Metal",
	"alternative metal": "Metal",
	"pop":               "Pop",
	"indie pop":         "Pop",
	"synthpop":          "Pop",
	"synth-pop":         "Pop",
	"dance-pop":         "Pop",
	"electropop":        "Pop",
	"hip hop":           "Hip-Hop",
	"rap":               "Hip-Hop",
	"trap":              "Hip-Hop",
	"boom bap":          "Hip-Hop",
	"r&b":               "R&B",
	"rnb":               "R&B",
	"contemporary r&b":  "R&B",
	"soul":              "R&B",
	"neo soul":          "R&B",
	"funk":              "R&B",
	"electronic":        "Electronic",
	"edm":               "Electronic",
	"house":             "Electronic",
	"techno":            "Electronic",
	"trance":            "Electronic",
	"dubstep":           "Electronic",
	"drum and bass":     "Electronic",
	"trip hop":          "Electronic",
	"disco":             "Electronic",
	"latin":             "Latin",
	"reggaeton":         "Latin",
	"salsa":             "Latin",
	"bachata":           "Latin",
	"cumbia":            "Latin",
	"bossa nova":        "Latin",
	"regional mexican":  "Regional Mexican",
	"banda":             "Regional Mexican",
	"corridos":          "Regional Mexican",
	"mariachi":          "Regional Mexican",
	"country":           "Country",
	"americana":         "Country",
	"jazz":              "Jazz",
	"smooth jazz":       "Jazz",
	"bebop":             "Jazz",
	"classical":         "Classical",
	"opera":             "Classical",
	"baroque":           "Classical",
	"orchestral":        "Classical",
	"folk":              "Folk",
	"indie folk":        "Folk",
	"acoustic":          "Folk",
	"reggae":            "Reggae",
	"dancehall":         "Reggae",
	"ska":               "Reggae",
	"blues":             "Blues",
	"soundtrack":        "Soundtrack",
	"film score":        "Soundtrack",
}

// GenreResult is the broad genre plus the most voted raw tag when it
// differs.
type GenreResult struct {
	MainGenre string `json:"main_genre"`
	SubGenre  string `json:"sub_genre,omitempty"`
}

type Client struct {
	http     *httpclient.Client
	genreMap map[string]string
	baseURL  string
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: httpclient.NewClient(httpClient, httpclient.Options{
			UserAgent:          DefaultUserAgent,
			MinRequestInterval: minRequestInterval,
		}),
		genreMap: DefaultGenreMap,
	}
}

func (c *Client) SetGenreMap(m map[string]string) {
	if m != nil {
		c.genreMap = m
	}
}

// GetGenres returns the genre of a recording. Unknown recordings yield an
// empty result, not an error.
func (c *Client) GetGenres(ctx context.Context, recordingID string) (GenreResult, error) {
	if recordingID == "" {
		return GenreResult{}, nil
	}

	u := fmt.Sprintf("%s/recording/%s?inc=tags+genres&fmt=json", c.baseURL, url.PathEscape(recordingID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return GenreResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return GenreResult{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return GenreResult{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return GenreResult{}, fmt.Errorf("musicbrainz returned status %d", resp.StatusCode)
	}

	var rec recording
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return GenreResult{}, fmt.Errorf("failed to decode response: %w", err)
	}

	mainGenre, subGenre := extractMainGenre(rec, c.genreMap)
	return GenreResult{MainGenre: mainGenre, SubGenre: subGenre}, nil
}

// extractMainGenre sums tag votes per mapped genre. Curated genres count
// alongside free-form tags.
func extractMainGenre(rec recording, genreMap map[string]string) (mainGenre string, subGenre string) {
	genreCounts := make(map[string]int)
	var highestOriginalTag string
	var highestOriginalCount int

	for _, t := range append(rec.Genres, rec.Tags...) {
		if t.Count <= 0 {
			continue
		}

		normalized := strings.ToLower(strings.TrimSpace(t.Name))
		if normalized == "" {
			continue
		}

		if mapped, ok := genreMap[normalized]; ok {
			genreCounts[mapped] += t.Count
		} else {
			genreCounts[t.Name] += t.Count
		}

		if t.Count > highestOriginalCount {
			highestOriginalCount = t.Count
			highestOriginalTag = t.Name
		}
	}

	if len(genreCounts) == 0 {
		return "", ""
	}

	var maxGenre string
	var maxCount int
	for genre, count := range genreCounts {
		// ties resolve alphabetically so results are stable
		if count > maxCount || (count == maxCount && genre < maxGenre) {
			maxCount = count
			maxGenre = genre
		}
	}

	if highestOriginalTag != "" && !strings.EqualFold(highestOriginalTag, maxGenre) {
		return maxGenre, highestOriginalTag
	}
	return maxGenre, ""
}

type recording struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Tags   []tag  `json:"tags"`
	Genres []tag  `json:"genres"`
}

type tag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
