package lakesim

import (
	"fmt"
	"time"

	"github.com/ulule/limiter/v3"

	"github.com/tidelake/lakeacl/internal/db"
)

const (
	DefaultBind     = "127.0.0.1:8080"
	DefaultTokenTTL = time.Hour
	DefaultRate     = "600-M"
)

type Config struct {
	Bind       string
	DBPath     string
	AuthSecret string
	TokenTTL   time.Duration
	Rate       string // limiter format, e.g. "600-M"
	SeedPath   string
	EnableHSTS bool
}

// Validate fills defaults and rejects unusable values.
func (c *Config) Validate() error {
	if c.Bind == "" {
		c.Bind = DefaultBind
	}
	if c.DBPath == "" {
		c.DBPath = db.InMemory
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = DefaultTokenTTL
	}
	if c.Rate == "" {
		c.Rate = DefaultRate
	}
	if _, err := limiter.NewRateFromFormatted(c.Rate); err != nil {
		return fmt.Errorf("bad rate %q: %w", c.Rate, err)
	}
	return nil
}
