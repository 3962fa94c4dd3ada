package musicbrainz

import (
	"context"
	"encoding/json"
	"time"
)

// GenreLookup is what the metadata detector needs from MusicBrainz.
type GenreLookup interface {
	GetGenres(ctx context.Context, recordingID string) (GenreResult, error)
}

var _ GenreLookup = (*Client)(nil)
var _ GenreLookup = (*CachedClient)(nil)

type Cache interface {
	GetCache(key string) ([]byte, error)
	SetCache(key string, data []byte, ttl time.Duration) error
}

// CachedClient memoizes genre lookups, including misses.
type CachedClient struct {
	client GenreLookup
	cache  Cache
	ttl    time.Duration
}

func NewCachedClient(client GenreLookup, cache Cache, ttl time.Duration) *CachedClient {
	return &CachedClient{
		client: client,
		cache:  cache,
		ttl:    ttl,
	}
}

type cachedGenre struct {
	Genre    GenreResult `json:"genre"`
	NotFound bool        `json:"not_found"`
}

func (c *CachedClient) GetGenres(ctx context.Context, recordingID string) (GenreResult, error) {
	if recordingID == "" {
		return GenreResult{}, nil
	}
	cacheKey := "mb:genre:" + recordingID

	data, err := c.cache.GetCache(cacheKey)
	if err != nil {
		return GenreResult{}, err
	}

	if data != nil {
		var cached cachedGenre
		if unmarshalErr := json.Unmarshal(data, &cached); unmarshalErr == nil {
			return cached.Genre, nil
		}
	}

	result, err := c.client.GetGenres(ctx, recordingID)
	if err != nil {
		return GenreResult{}, err
	}

	cached := cachedGenre{Genre: result, NotFound: result.MainGenre == ""}
	if data, marshalErr := json.Marshal(cached); marshalErr == nil {
		_ = c.cache.SetCache(cacheKey, data, c.ttl)
	}

	return result, nil
}
