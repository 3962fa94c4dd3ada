package acoustid

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cesargomez89/strume/internal/fingerprint"
	"github.com/cesargomez89/strume/internal/storage"
)

type Cache interface {
	GetCache(key string) ([]byte, error)
	SetCache(key string, data []byte, ttl time.Duration) error
}

// CachedClient remembers answers per fingerprint, misses included.
type CachedClient struct {
	client Lookup
	cache  Cache
	ttl    time.Duration
}

var _ Lookup = (*Client)(nil)
var _ Lookup = (*CachedClient)(nil)

func NewCachedClient(client Lookup, cache Cache, ttl time.Duration) *CachedClient {
	return &CachedClient{client: client, cache: cache, ttl: ttl}
}

type cachedMatch struct {
	Match    *Match `json:"match"`
	NotFound bool   `json:"not_found"`
}

func cacheKey(fp fingerprint.Result) string {
	return "acoustid:" + storage.HashString(strconv.Itoa(fp.Duration)+":"+fp.Fingerprint)
}

func (c *CachedClient) Lookup(ctx context.Context, fp fingerprint.Result) (*Match, error) {
	key := cacheKey(fp)

	data, err := c.cache.GetCache(key)
	if err != nil {
		return nil, err
	}
	if data != nil {
		var cached cachedMatch
		if unmarshalErr := json.Unmarshal(data, &cached); unmarshalErr == nil {
			return cached.Match, nil
		}
	}

	match, err := c.client.Lookup(ctx, fp)
	if err != nil {
		return nil, err
	}

	cached := cachedMatch{Match: match, NotFound: match == nil}
	if data, marshalErr := json.Marshal(cached); marshalErr == nil {
		_ = c.cache.SetCache(key, data, c.ttl)
	}
	return match, nil
}
