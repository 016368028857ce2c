package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestInitDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	require.NoError(t, Init(""))

	require.Equal(t, "restaurants", viper.GetString("crawler.query"))
	require.InDelta(t, -33.899109, viper.GetFloat64("crawler.latitude"), 1e-9)
	require.InDelta(t, 151.209469, viper.GetFloat64("crawler.longitude"), 1e-9)
	require.Equal(t, "output", viper.GetString("crawler.output_dir"))
	require.Equal(t, 3, viper.GetInt("crawler.detail_workers"))
	require.Equal(t, 3, viper.GetInt("crawler.navigate_retries"))
	require.Equal(t, 10, viper.GetInt("crawler.feed_scroll.max_iterations"))
	require.Equal(t, 20, viper.GetInt("crawler.review_scroll.max_iterations"))
	require.NotEmpty(t, viper.GetString("crawler.user_agent"))
	require.False(t, viper.GetBool("logging.development"))
}

func TestInitReadsConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawler:\n  query: thai food\n  detail_workers: 5\n"), 0o600))

	require.NoError(t, Init(path))

	require.Equal(t, "thai food", viper.GetString("crawler.query"))
	require.Equal(t, 5, viper.GetInt("crawler.detail_workers"))
	// Keys absent from the file keep their defaults.
	require.Equal(t, "output", viper.GetString("crawler.output_dir"))
}

func TestInitRejectsMalformedConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawler: [unclosed\n"), 0o600))

	require.Error(t, Init(path))
}

func TestInitEnvironmentOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SMARTDINE_CRAWLER_QUERY", "ramen")
	require.NoError(t, Init(""))

	require.Equal(t, "ramen", viper.GetString("crawler.query"))
}
