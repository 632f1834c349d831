package client

import (
	"net/url"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Key identifies a cached response by endpoint and query parameters.
type Key struct {
	Endpoint string
	Params   string
}

// NewKey builds a Key. Parameters are encoded in sorted order so equal
// queries share an entry.
func NewKey(endpoint string, params url.Values) Key {
	return Key{Endpoint: endpoint, Params: params.Encode()}
}

// Cache holds raw response bodies for read endpoints. It is safe for
// concurrent use and is passed to clients explicitly.
type Cache struct {
	lru *expirable.LRU[Key, []byte]
}

// NewCache creates a cache holding up to size responses for ttl.
func NewCache(size int, ttl time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[Key, []byte](size, nil, ttl)}
}

// Get returns the cached body for k.
func (c *Cache) Get(k Key) ([]byte, bool) {
	return c.lru.Get(k)
}

// Put stores body under k.
func (c *Cache) Put(k Key, body []byte) {
	c.lru.Add(k, body)
}

// Invalidate drops every entry for endpoint.
func (c *Cache) Invalidate(endpoint string) {
	for _, k := range c.lru.Keys() {
		if k.Endpoint == endpoint {
			c.lru.Remove(k)
		}
	}
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// Len reports how many responses are cached.
func (c *Cache) Len() int {
	return c.lru.Len()
}
