// Package config initializes the application's configuration. It uses the
// Viper library to read settings from a config file, environment variables,
// and command-line flags, providing a unified configuration system.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// defaultUserAgent presents a desktop browser; the map site serves a reduced
// page to unknown agents.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Init loads configuration from the given file (or the default search
// paths), environment variables, and defaults. A missing config file is not
// an error; defaults and env vars are enough to run.
func Init(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/smartdine/")
		viper.AddConfigPath("$HOME/.smartdine")
	}

	setDefaults()

	viper.SetEnvPrefix("SMARTDINE") // e.g. SMARTDINE_CRAWLER_QUERY=cafes
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("logging.development", false)

	viper.SetDefault("crawler.query", "restaurants")
	viper.SetDefault("crawler.latitude", -33.899109)
	viper.SetDefault("crawler.longitude", 151.209469)
	viper.SetDefault("crawler.output_dir", "output")
	viper.SetDefault("crawler.user_agent", defaultUserAgent)
	viper.SetDefault("crawler.detail_workers", 3)
	viper.SetDefault("crawler.search_timeout", "3m")
	viper.SetDefault("crawler.detail_timeout", "5m")
	viper.SetDefault("crawler.navigate_qps", 0.0)
	viper.SetDefault("crawler.navigate_retries", 3)

	viper.SetDefault("crawler.feed_scroll.no_change_count", 3)
	viper.SetDefault("crawler.feed_scroll.max_iterations", 10)
	viper.SetDefault("crawler.feed_scroll.interval", "1s")

	viper.SetDefault("crawler.review_scroll.no_change_count", 3)
	viper.SetDefault("crawler.review_scroll.max_iterations", 20)
	viper.SetDefault("crawler.review_scroll.interval", "1s")
}
