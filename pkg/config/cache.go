package config

import (
	"fmt"
	"strings"
	"time"
)

// CacheConfig configures the Redis product cache. An empty address disables caching.
type CacheConfig struct {
	Addr string        `koanf:"addr"`
	TTL  time.Duration `koanf:"ttl"`
}

// Enabled reports whether a Redis server is configured.
func (c *CacheConfig) Enabled() bool {
	return c.Addr != ""
}

// String returns a string representation of the cache configuration.
func (c *CacheConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Cache ---\n")
	b.WriteString(fmt.Sprintf("  addr: %s\n", c.Addr))
	b.WriteString(fmt.Sprintf("  ttl: %s\n", c.TTL))
	return b.String()
}

func (c *CacheConfig) Validate() error {
	if c.Enabled() && c.TTL <= 0 {
		return fmt.Errorf("cache is enabled but ttl is not configured")
	}
	return nil
}
