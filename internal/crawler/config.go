// Package crawler implements the venue crawling pipeline and its helpers.
package crawler

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config captures every knob that influences a crawl run. Values originate
// from Viper so the crawler can be configured via files, env vars, or flags,
// but the struct itself is decoupled from Viper for testability.
type Config struct {
	Query           string
	Latitude        float64
	Longitude       float64
	OutputDir       string
	UserAgent       string
	DetailWorkers   int
	SearchTimeout   time.Duration
	DetailTimeout   time.Duration
	NavigateQPS     float64
	NavigateRetries int
	FeedScroll      ScrollConfig
	ReviewScroll    ScrollConfig
}

// ScrollConfig bounds a stabilize-or-cap scroll loop: the loop stops when the
// measured height is unchanged for NoChangeCount consecutive checks, or after
// MaxIterations, whichever comes first.
type ScrollConfig struct {
	NoChangeCount int
	MaxIterations int
	Interval      time.Duration
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		Query:           v.GetString("crawler.query"),
		Latitude:        v.GetFloat64("crawler.latitude"),
		Longitude:       v.GetFloat64("crawler.longitude"),
		OutputDir:       v.GetString("crawler.output_dir"),
		UserAgent:       v.GetString("crawler.user_agent"),
		DetailWorkers:   v.GetInt("crawler.detail_workers"),
		SearchTimeout:   v.GetDuration("crawler.search_timeout"),
		DetailTimeout:   v.GetDuration("crawler.detail_timeout"),
		NavigateQPS:     v.GetFloat64("crawler.navigate_qps"),
		NavigateRetries: v.GetInt("crawler.navigate_retries"),
		FeedScroll: ScrollConfig{
			NoChangeCount: v.GetInt("crawler.feed_scroll.no_change_count"),
			MaxIterations: v.GetInt("crawler.feed_scroll.max_iterations"),
			Interval:      v.GetDuration("crawler.feed_scroll.interval"),
		},
		ReviewScroll: ScrollConfig{
			NoChangeCount: v.GetInt("crawler.review_scroll.no_change_count"),
			MaxIterations: v.GetInt("crawler.review_scroll.max_iterations"),
			Interval:      v.GetDuration("crawler.review_scroll.interval"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.Query == "" {
		return fmt.Errorf("crawler.query must be set")
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("crawler.latitude must be within [-90, 90]")
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("crawler.longitude must be within [-180, 180]")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("crawler.output_dir must be set")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.DetailWorkers <= 0 {
		return fmt.Errorf("crawler.detail_workers must be > 0")
	}
	if c.SearchTimeout <= 0 {
		return fmt.Errorf("crawler.search_timeout must be > 0")
	}
	if c.DetailTimeout <= 0 {
		return fmt.Errorf("crawler.detail_timeout must be > 0")
	}
	if c.NavigateQPS < 0 {
		return fmt.Errorf("crawler.navigate_qps must be >= 0")
	}
	if c.NavigateRetries <= 0 {
		return fmt.Errorf("crawler.navigate_retries must be > 0")
	}
	if err := c.FeedScroll.validate("crawler.feed_scroll"); err != nil {
		return err
	}
	if err := c.ReviewScroll.validate("crawler.review_scroll"); err != nil {
		return err
	}
	return nil
}

func (s ScrollConfig) validate(prefix string) error {
	if s.NoChangeCount <= 0 {
		return fmt.Errorf("%s.no_change_count must be > 0", prefix)
	}
	if s.MaxIterations <= 0 {
		return fmt.Errorf("%s.max_iterations must be > 0", prefix)
	}
	if s.Interval < 0 {
		return fmt.Errorf("%s.interval must be >= 0", prefix)
	}
	return nil
}
