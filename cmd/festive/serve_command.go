package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"festive/internal/webui"
	"festive/internal/workspace"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local web surface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup()
			if err != nil {
				return err
			}
			serveCfg := *cfg
			if bind != "" {
				serveCfg.Server.Bind = bind
			}

			lock, err := workspace.Acquire(cfg.LockPath())
			if err != nil {
				return err
			}
			defer lock.Release()

			ctrl, err := ctx.newController(&serveCfg, logger)
			if err != nil {
				return err
			}
			srv := webui.New(&serveCfg, ctrl, logger)
			runCtx := cmd.Context()
			if err := srv.Start(runCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (Ctrl+C to stop)\n", srv.Addr())
			<-runCtx.Done()
			srv.Stop()
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (defaults to server.bind)")
	return cmd
}
