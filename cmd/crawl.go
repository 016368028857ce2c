package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/chenmingwei23/smart-dine/internal/browser"
	"github.com/chenmingwei23/smart-dine/internal/clock/system"
	"github.com/chenmingwei23/smart-dine/internal/crawler"
	"github.com/chenmingwei23/smart-dine/internal/extract"
	"github.com/chenmingwei23/smart-dine/internal/hash/sha256"
	"github.com/chenmingwei23/smart-dine/internal/id/uuid"
	"github.com/chenmingwei23/smart-dine/internal/logging"
	"github.com/chenmingwei23/smart-dine/internal/store/memory"
)

// newCrawlCmd creates and configures the 'crawl' subcommand, which runs one
// search-and-enrich pass and writes a snapshot file.
func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Runs one venue crawl and writes a snapshot",
		Long: `Discovers venues for the configured query and coordinate, enriches
each venue with a detail-page visit under the configured concurrency
cap, and writes the aggregate as one timestamped JSON file.`,

		RunE: runCrawlCommand,
	}

	cmd.Flags().String("query", "", "search term (e.g. \"restaurants\")")
	cmd.Flags().Float64("lat", 0, "search center latitude")
	cmd.Flags().Float64("lng", 0, "search center longitude")
	cmd.Flags().String("out", "", "snapshot output directory")

	cobra.CheckErr(viper.BindPFlag("crawler.query", cmd.Flags().Lookup("query")))
	cobra.CheckErr(viper.BindPFlag("crawler.latitude", cmd.Flags().Lookup("lat")))
	cobra.CheckErr(viper.BindPFlag("crawler.longitude", cmd.Flags().Lookup("lng")))
	cobra.CheckErr(viper.BindPFlag("crawler.output_dir", cmd.Flags().Lookup("out")))
	return cmd
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	logger, err := logging.New(development || viper.GetBool("logging.development"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := crawler.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load crawler config: %w", err)
	}

	mgr, err := browser.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer func() {
		if cerr := mgr.Close(); cerr != nil {
			logger.Warn("failed to close browser", zap.Error(cerr))
		}
	}()

	clk := system.New()
	sink, err := crawler.NewFileSystemSink(cfg.OutputDir, clk, logger)
	if err != nil {
		return fmt.Errorf("init sink: %w", err)
	}

	engine := crawler.NewEngine(
		cfg,
		mgr,
		extract.New(sha256.New(), clk, logger),
		memory.NewJobStore(),
		sink,
		clk,
		uuid.New(),
		logger,
	)

	path, err := engine.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run crawl: %w", err)
	}

	logger.Info("crawl command finished", zap.String("snapshot", path))
	return nil
}
