package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"festive/internal/history"
	"festive/internal/logging"
	"festive/internal/mediajob"
	"festive/internal/preflight"
	"festive/internal/workspace"
)

// runSummary is the JSON output of `festive run`.
type runSummary struct {
	RecordID  int64                    `json:"record_id"`
	Source    string                   `json:"source"`
	AssetURL  string                   `json:"asset_url"`
	JobID     string                   `json:"job_id"`
	ResultURL string                   `json:"result_url"`
	Saved     *mediajob.DownloadedFile `json:"saved,omitempty"`
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var skipDownload bool

	cmd := &cobra.Command{
		Use:   "run <image>",
		Short: "Upload an image, apply the effect and save the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup()
			if err != nil {
				return err
			}
			actx := actionContext(cmd)
			source := args[0]

			lock, err := workspace.Acquire(cfg.LockPath())
			if err != nil {
				return err
			}
			defer lock.Release()

			runCfg := *cfg
			if dir := strings.TrimSpace(outputDir); dir != "" {
				runCfg.Paths.OutputDir = dir
			}
			if err := os.MkdirAll(runCfg.Paths.OutputDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			if failed := preflight.Failed(preflight.RunAll(actx, &runCfg, true)); len(failed) > 0 {
				return fmt.Errorf("preflight failed: %s: %s", failed[0].Name, failed[0].Detail)
			}

			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			record, err := store.Start(actx, source)
			if err != nil {
				return err
			}
			recorder := history.NewRecorder(store, record, logger)

			ctrl, err := ctx.newController(cfg, logger)
			if err != nil {
				recorder.MarkFailed(err)
				return err
			}
			ctrl.Subscribe(recorder)
			if !ctx.jsonOutput() {
				ctrl.Subscribe(newProgressPrinter(cmd.ErrOrStderr()))
			}

			summary, err := runPipeline(actx, ctrl, source, runCfg.Paths.OutputDir, skipDownload)
			if err != nil {
				recorder.MarkFailed(err)
				return err
			}
			if summary.Saved != nil {
				recorder.MarkDownloaded(summary.Saved.Path)
			}
			summary.RecordID = record.ID

			logger.Info("run finished",
				logging.Int64("record_id", record.ID),
				logging.String("result_url", summary.ResultURL),
				logging.String(logging.FieldEventType, "run_finished"))

			if ctx.jsonOutput() {
				return writeJSON(cmd, summary)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Result: %s\n", summary.ResultURL)
			if summary.Saved != nil {
				fmt.Fprintf(out, "Saved:  %s\n", summary.Saved.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for the saved result (defaults to paths.output_dir)")
	cmd.Flags().BoolVar(&skipDownload, "no-download", false, "Stop after the job completes and only print the result URL")
	return cmd
}

func runPipeline(ctx context.Context, ctrl *mediajob.Controller, source, outputDir string, skipDownload bool) (runSummary, error) {
	summary := runSummary{Source: source}

	asset, err := ctrl.UploadPath(ctx, source)
	if err != nil {
		return summary, err
	}
	summary.AssetURL = asset.URL

	result, err := ctrl.Generate(ctx)
	if err != nil {
		return summary, err
	}
	summary.ResultURL = result.URL
	summary.JobID = ctrl.Snapshot().JobID

	if skipDownload {
		return summary, nil
	}
	saved, err := ctrl.Download(ctx, result.URL, outputDir)
	if err != nil {
		return summary, err
	}
	summary.Saved = &saved
	return summary, nil
}
