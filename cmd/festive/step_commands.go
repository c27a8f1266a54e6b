package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"festive/internal/mediajob"
)

func newStepCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newUploadCommand(ctx),
		newSubmitCommand(ctx),
		newPollCommand(ctx),
		newDownloadCommand(ctx),
	}
}

func newUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <image>",
		Short: "Upload an image and print its CDN URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup()
			if err != nil {
				return err
			}
			ctrl, err := ctx.newController(cfg, logger)
			if err != nil {
				return err
			}
			asset, err := ctrl.UploadPath(actionContext(cmd), args[0])
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, asset)
			}
			fmt.Fprintln(cmd.OutOrStdout(), asset.URL)
			return nil
		},
	}
}

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <asset-url>",
		Short: "Submit a generation job for an uploaded asset and print the job id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup()
			if err != nil {
				return err
			}
			asset := mediajob.UploadedAsset{URL: strings.TrimSpace(args[0])}
			ctrl, err := ctx.newController(cfg, logger)
			if err != nil {
				return err
			}
			job, err := ctrl.Submit(actionContext(cmd), asset)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, job)
			}
			fmt.Fprintln(cmd.OutOrStdout(), job.JobID)
			return nil
		},
	}
}

func newPollCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "poll <job-id>",
		Short: "Wait for a submitted job and print the result URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup()
			if err != nil {
				return err
			}
			ctrl, err := ctx.newController(cfg, logger)
			if err != nil {
				return err
			}
			if !ctx.jsonOutput() {
				ctrl.Subscribe(newProgressPrinter(cmd.ErrOrStderr()))
			}
			result, err := ctrl.Poll(actionContext(cmd), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.URL)
			return nil
		},
	}
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Save a result through the download proxy, falling back to a direct fetch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup()
			if err != nil {
				return err
			}
			dir := strings.TrimSpace(outputDir)
			if dir == "" {
				dir = cfg.Paths.OutputDir
			}
			ctrl, err := ctx.newController(cfg, logger)
			if err != nil {
				return err
			}
			saved, err := ctrl.Download(actionContext(cmd), args[0], dir)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, saved)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes, via %s)\n", saved.Path, saved.Bytes, saved.Strategy)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for the saved file (defaults to paths.output_dir)")
	return cmd
}
