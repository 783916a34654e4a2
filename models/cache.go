package models

import (
	"fmt"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	oneHour           = 60 * 60
	renderCacheExpire = oneHour * 12

	// DefaultRenderCacheMB holds rendered charts of about a year of daily rows
	DefaultRenderCacheMB = 32

	// per entry header freecache stores next to key and value
	entryHeaderSize = 24
)

// RenderCache keeps rendered chart markup per dataset, so a page reload
// does not render unchanged charts again
type RenderCache struct {
	cache *freecache.Cache
	// freecache refuses entries larger than 1/1024 of its size
	maxEntry int
}

func NewRenderCache(sizeMB int) *RenderCache {
	megabyte := 1024 * 1024
	if sizeMB <= 0 {
		sizeMB = DefaultRenderCacheMB
	}
	size := sizeMB * megabyte
	return &RenderCache{
		cache:    freecache.NewCache(size),
		maxEntry: size/1024 - entryHeaderSize,
	}
}

func renderCacheKey(datasetID uint64, chart string) []byte {
	return []byte(fmt.Sprintf("dataset::%d::%s", datasetID, chart))
}

// Get returns cached markup for a dataset chart
func (c *RenderCache) Get(datasetID uint64, chart string) ([]byte, bool) {
	val, err := c.cache.Get(renderCacheKey(datasetID, chart))
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores the markup. Markup too large for the cache is skipped and
// rendered again on the next request.
func (c *RenderCache) Set(datasetID uint64, chart string, markup []byte) {
	key := renderCacheKey(datasetID, chart)
	if len(key)+len(markup) > c.maxEntry {
		log.Debugf("chart %s for dataset %d not cached: %d bytes over the %d bytes entry limit", chart, datasetID, len(markup), c.maxEntry)
		return
	}
	if err := c.cache.Set(key, markup, renderCacheExpire); err != nil {
		log.Warnf("cache chart %s for dataset %d: %s", chart, datasetID, err)
	}
}

// Clear drops everything, used when a new dataset replaces the old one
func (c *RenderCache) Clear() {
	c.cache.Clear()
}
