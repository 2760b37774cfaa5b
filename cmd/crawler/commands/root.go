package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/announcement-crawler/pkg/config"
	"github.com/user/announcement-crawler/pkg/logger"
	"go.uber.org/zap"
)

var (
	configFile string
	cfg        *config.Config
	log        *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "crawler",
	Short: "crawler discovers and crawls campus announcement lists.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("could not load config: %w", err)
		}
		log, err = logger.New(os.Stderr, cfg.LogLevel)
		if err != nil {
			return err
		}
		log.Debug("Configuration loaded",
			zap.String("url_list_path", cfg.URLListPath),
			zap.Int("crawl_workers", cfg.CrawlWorkers),
			zap.Bool("use_browser", cfg.UseBrowser))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file to read configuration from (default .env)")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
