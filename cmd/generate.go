package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JahirJmnz/marketpulse/internal/report"
)

var (
	generateProfileID string
	generateWait      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a competitive intelligence report for a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		job, err := env.Manager.Generate(ctx, generateProfileID)
		if err != nil {
			return eris.Wrap(err, "start report generation")
		}

		zap.L().Info("report generation started",
			zap.String("report_id", job.ID),
			zap.String("profile_id", generateProfileID))

		if !generateWait {
			fmt.Println(job.ID)
			return nil
		}

		done, err := report.WaitForCompletion(ctx, env.Store, job.ID)
		if err != nil {
			return eris.Wrap(err, "wait for report")
		}
		if done.ErrorMessage != nil {
			return eris.Errorf("report generation failed: %s", *done.ErrorMessage)
		}
		if done.Content != nil {
			fmt.Println(*done.Content)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateProfileID, "profile", "", "profile ID to generate a report for")
	generateCmd.Flags().BoolVar(&generateWait, "wait", false, "poll until the report finishes and print it")
	generateCmd.MarkFlagRequired("profile") //nolint:errcheck
	rootCmd.AddCommand(generateCmd)
}
