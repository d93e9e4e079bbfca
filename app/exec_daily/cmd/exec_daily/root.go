package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/config"
	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/engine"
	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/logger"
	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/model"
)

var version = "dev"

// globalOptions 所有子命令共享的参数
type globalOptions struct {
	configPath string
}

// load 加载配置并初始化日志
func (o *globalOptions) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	var (
		daily bool
		date  string
	)

	cmd := &cobra.Command{
		Use:   "exec_daily",
		Short: "Executive daily report job",
		Long: `exec_daily produces the executive daily report through the tool service,
writes it to the report store as JSON and Markdown, and posts a digest to Slack.

The pipeline only runs when --daily is given.`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if !daily {
				logger.Log.Info("no job selected, pass --daily to run the daily report")
				return nil
			}

			if date == "" {
				date = time.Now().Format(time.DateOnly)
			}
			req, err := model.NewReportRequest(date)
			if err != nil {
				return err
			}
			if err := cfg.ValidateDaily(); err != nil {
				return err
			}

			eng := engine.NewEngine(cfg, logger.Log)
			out, err := eng.RunDaily(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", out.Artifact.JSONLocator, out.Artifact.MarkdownLocator)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().BoolVar(&daily, "daily", false, "Run the daily report pipeline")
	cmd.Flags().StringVar(&date, "date", "", "Report date (YYYY-MM-DD), defaults to today")

	cmd.AddCommand(newConsolidateCommand(opts))
	cmd.AddCommand(newDigestCommand(opts))

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}
