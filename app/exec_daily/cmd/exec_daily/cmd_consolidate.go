package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/engine"
	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/logger"
	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/storage"
)

func newConsolidateCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "consolidate",
		Short: "Summarize the last day of traces into the semantic memory log",
		Long: `Count the traces recorded by Langfuse in the configured window and append
a one-line summary to the memory_semantic_log table in Postgres.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if err := cfg.ValidateConsolidate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := storage.NewSemanticLog(ctx, cfg.DB.DSN())
			if err != nil {
				return &JobFailureError{Err: err}
			}
			defer store.Close()

			window := time.Duration(cfg.Langfuse.WindowHours) * time.Hour
			c := engine.NewConsolidator(engine.NewTraceClient(cfg), store, window, logger.Log)
			summary, err := c.Run(ctx)
			if err != nil {
				return &JobFailureError{Err: err}
			}

			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}
