package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/logger"
	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/model"
	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/slack"
)

func newDigestCommand(opts *globalOptions) *cobra.Command {
	var d slack.Digest

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Post a daily digest for an already published report",
		Long: `Post the executive daily digest to the configured Slack webhook.

Items are given with repeatable --decision, --action and --delta flags;
empty sections are shown as _None_.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if _, err := model.NewReportRequest(d.Date); err != nil {
				return err
			}

			webhook := slack.NewWebhook(cfg.Slack.WebhookURL, time.Duration(cfg.Slack.Timeout)*time.Second)
			if err := webhook.Post(cmd.Context(), d.Build()); err != nil {
				return err
			}

			logger.Log.WithField("date", d.Date).Info("digest posted")
			fmt.Fprintln(cmd.OutOrStdout(), "digest posted")
			return nil
		},
	}

	cmd.Flags().StringVar(&d.JSONURL, "json-url", "", "Link to the JSON report")
	cmd.Flags().StringVar(&d.MarkdownURL, "md-url", "", "Link to the Markdown report")
	cmd.Flags().StringVar(&d.Date, "date", "", "Report date (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&d.Decisions, "decision", nil, "Decision item (repeatable)")
	cmd.Flags().StringArrayVar(&d.Actions, "action", nil, "Action item for the next 48h (repeatable)")
	cmd.Flags().StringArrayVar(&d.Deltas, "delta", nil, "Delta item (repeatable)")
	_ = cmd.MarkFlagRequired("json-url")
	_ = cmd.MarkFlagRequired("md-url")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}
