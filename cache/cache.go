package cache

import (
	"encoding/json"
	"strings"
	"time"
)

// Cache stores json values under case-insensitive keys, so hex hashes
// match whatever casing the caller uses.
type Cache struct {
	Cache ICache
}

type ICache interface {
	Set(key string, entry []byte) error

	Get(key string) ([]byte, error)

	Delete(key string) error

	Close() error
}

func NewLocalCache(allKeysExpTime time.Duration) (*Cache, error) {
	cache, err := NewBigCache(allKeysExpTime)
	if err != nil {
		return nil, err
	}
	return &Cache{Cache: cache}, nil
}

func (c *Cache) PutJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Cache.Set(strings.ToLower(key), data)
}

// GetJSON returns ErrEntryNotFound for a missing or expired key.
func (c *Cache) GetJSON(key string, v interface{}) error {
	data, err := c.Cache.Get(strings.ToLower(key))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (c *Cache) Close() error {
	return c.Cache.Close()
}
