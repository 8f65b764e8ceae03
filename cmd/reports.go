package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	reportsProfileID string
	reportsLimit     int
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List report jobs for a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		jobs, err := st.ListJobs(ctx, reportsProfileID, reportsLimit)
		if err != nil {
			return eris.Wrap(err, "list reports")
		}
		if len(jobs) == 0 {
			fmt.Println("no reports")
			return nil
		}

		for _, job := range jobs {
			line := fmt.Sprintf("%s  %-10s  %s", job.ID, job.Status, job.CreatedAt.Format("2006-01-02 15:04:05"))
			if job.CompletedAt != nil {
				line += "  finished " + job.CompletedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Println(line)
		}
		return nil
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Print a finished report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		job, err := st.GetJob(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "load report")
		}
		if job == nil {
			return eris.Errorf("report not found: %s", args[0])
		}
		if job.ErrorMessage != nil {
			return eris.Errorf("report failed: %s", *job.ErrorMessage)
		}
		if job.Content == nil {
			return eris.Errorf("report not finished yet (status %s)", job.Status)
		}

		fmt.Println(*job.Content)
		return nil
	},
}

func init() {
	reportsCmd.Flags().StringVar(&reportsProfileID, "profile", "", "profile ID to list reports for")
	reportsCmd.Flags().IntVar(&reportsLimit, "limit", 20, "maximum number of reports to list")
	reportsCmd.MarkFlagRequired("profile") //nolint:errcheck
	reportsCmd.AddCommand(reportsShowCmd)
	rootCmd.AddCommand(reportsCmd)
}
