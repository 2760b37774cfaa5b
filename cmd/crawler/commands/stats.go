package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/user/announcement-crawler/internal/adapter/jsonfile"
	"github.com/user/announcement-crawler/internal/usecase"
)

var statsURLs bool

func init() {
	statsCmd.Flags().BoolVar(&statsURLs, "urls", false, "Also list the URLs the next item pass would crawl.")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats [--urls]",
	Short: "Prints statistics of the URL store.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := usecase.NewStatusReader(jsonfile.NewURLRecordRepo(cfg.URLListPath), nil, log)
		stats, err := reader.Statistics()
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Total", "Active", "Failed", "Crawled in 24h"})
		t.AppendRow(table.Row{stats.TotalURLs, stats.ActiveURLs, stats.FailedURLs, stats.RecentlyCrawled})
		t.SetStyle(table.StyleRounded)
		t.Render()

		if !statsURLs {
			return nil
		}
		plan, err := reader.Plan()
		if err != nil {
			return err
		}
		t = table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "URL"})
		for i, u := range plan {
			t.AppendRow(table.Row{i + 1, u})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}
