package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/user/announcement-crawler/internal/usecase"
)

func init() {
	rootCmd.AddCommand(discoverCmd, crawlCmd, runCmd, cleanupCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Finds announcement list pages and reconciles them with the URL store.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobCommand(cmd, "discover", usecase.StepDiscover)
	},
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawls every announcement list page below the failure threshold.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobCommand(cmd, "crawl", usecase.StepCrawl)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs a discovery pass followed by an item pass.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobCommand(cmd, "run", usecase.StepDiscover, usecase.StepCrawl)
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Removes URLs not seen by discovery for CLEANUP_DAYS days.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobCommand(cmd, "cleanup", usecase.StepCleanup)
	},
}

func jobCommand(cmd *cobra.Command, name string, steps ...usecase.Step) error {
	report, err := runJob(cmd.Context(), name, steps...)
	if report != nil {
		renderReport(report)
	}
	return err
}

func renderReport(report *usecase.JobReport) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Pass", "Result", "Count"})

	if d := report.Discovery; d != nil {
		t.AppendRows([]table.Row{
			{"discover", "sources", d.Sources},
			{"discover", "sources fetched", d.Fetched},
			{"discover", "list pages", d.Discovered},
			{"discover", "new", d.New},
			{"discover", "missing", len(d.Missing)},
			{"discover", "removed", len(d.Removed)},
		})
		t.AppendSeparator()
	}
	if c := report.Crawl; c != nil {
		t.AppendRows([]table.Row{
			{"crawl", "planned", c.Planned},
			{"crawl", "succeeded", c.Succeeded},
			{"crawl", "failed", c.Failed},
			{"crawl", "skipped", c.Skipped},
		})
		t.AppendSeparator()
	}
	if report.Discovery == nil && report.Crawl == nil {
		t.AppendRow(table.Row{"cleanup", "removed", len(report.Removed)})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
