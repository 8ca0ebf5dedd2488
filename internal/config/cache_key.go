package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CatalogStatsKey returns the hash holding per-operation outcome counters.
func (r *CacheKeyStruct) CatalogStatsKey() string {
	return "catalog:stats"
}

// CatalogStatsField returns the counter field for an operation and its outcome.
func (r *CacheKeyStruct) CatalogStatsField(operation, outcome string) string {
	return fmt.Sprintf("%s:%s", operation, outcome)
}

var CacheKey = NewCacheKeyStruct()
