package mediajob

import (
	"context"
	"fmt"

	"festive/internal/effects"
	"festive/internal/logging"
	"festive/internal/services"
)

// Submit posts a generation job for asset.
func (c *Controller) Submit(ctx context.Context, asset UploadedAsset) (GenerationJob, error) {
	epoch, err := c.begin()
	if err != nil {
		return GenerationJob{}, err
	}
	defer c.end(epoch)
	return c.submit(ctx, epoch, asset)
}

// Poll waits for jobID to finish and returns its result. The result is
// recorded but does not replace the asset slot.
func (c *Controller) Poll(ctx context.Context, jobID string) (ResultAsset, error) {
	epoch, err := c.begin()
	if err != nil {
		return ResultAsset{}, err
	}
	defer c.end(epoch)

	ctx = services.WithJobID(ctx, jobID)
	result, err := c.poll(ctx, epoch, jobID)
	if err != nil {
		return ResultAsset{}, err
	}
	c.complete(ctx, epoch, jobID, result, false)
	return result, nil
}

// Generate submits the current asset, polls the job to completion, and makes
// the result the new current asset so the next Generate applies the effect
// again on top of it.
func (c *Controller) Generate(ctx context.Context) (ResultAsset, error) {
	epoch, asset, err := c.beginGenerate()
	if err != nil {
		return ResultAsset{}, err
	}
	defer c.end(epoch)
	return c.generate(ctx, epoch, asset)
}

// GenerateOutcome is the result of a job started with StartGenerate.
type GenerateOutcome struct {
	Result ResultAsset
	Err    error
}

// StartGenerate reserves the job slot and runs Generate in the background.
// ErrBusy and ErrNoAsset are returned before anything starts. Otherwise the
// returned channel receives exactly one outcome, sent after the slot is
// released, and is then closed.
func (c *Controller) StartGenerate(ctx context.Context) (<-chan GenerateOutcome, error) {
	epoch, asset, err := c.beginGenerate()
	if err != nil {
		return nil, err
	}
	done := make(chan GenerateOutcome, 1)
	go func() {
		defer close(done)
		result, err := c.generate(ctx, epoch, asset)
		c.end(epoch)
		done <- GenerateOutcome{Result: result, Err: err}
	}()
	return done, nil
}

func (c *Controller) beginGenerate() (uint64, UploadedAsset, error) {
	epoch, err := c.begin()
	if err != nil {
		return 0, UploadedAsset{}, err
	}
	asset, ok := c.Asset()
	if !ok {
		c.end(epoch)
		return 0, UploadedAsset{}, ErrNoAsset
	}
	return epoch, asset, nil
}

func (c *Controller) generate(ctx context.Context, epoch uint64, asset UploadedAsset) (ResultAsset, error) {
	job, err := c.submit(ctx, epoch, asset)
	if err != nil {
		return ResultAsset{}, err
	}
	ctx = services.WithJobID(ctx, job.JobID)
	result, err := c.poll(ctx, epoch, job.JobID)
	if err != nil {
		return ResultAsset{}, err
	}
	c.complete(ctx, epoch, job.JobID, result, true)
	return result, nil
}

func (c *Controller) submit(ctx context.Context, epoch uint64, asset UploadedAsset) (GenerationJob, error) {
	ctx = services.WithStage(ctx, "submit")
	if asset.URL == "" {
		return GenerationJob{}, ErrNoAsset
	}
	c.transition(epoch, Event{State: StateSubmitting, Label: LabelSubmitting, AssetURL: asset.URL})

	jobID, err := c.api.SubmitJob(ctx, effects.SubmitRequest{
		Model:           c.job.Model,
		ToolType:        c.job.ToolType,
		EffectID:        c.job.EffectID,
		UserID:          c.job.UserID,
		RemoveWatermark: c.job.RemoveWatermark,
		IsPrivate:       c.job.IsPrivate,
		ImageURL:        asset.URL,
	})
	if err != nil {
		wrapped := services.Wrap(services.ErrSubmit, "submit", "post", "failed to submit job", err)
		c.fail(ctx, epoch, StateFailed, "", wrapped)
		return GenerationJob{}, wrapped
	}

	c.transition(epoch, Event{State: StateQueued, Label: LabelQueued, AssetURL: asset.URL, JobID: jobID})
	logging.WithContext(services.WithJobID(ctx, jobID), c.logger).Info("job submitted",
		logging.String(logging.FieldEventType, "job_submitted"),
		logging.String("asset_url", asset.URL),
		logging.String("model", c.job.Model),
		logging.String("effect_id", c.job.EffectID),
	)
	return GenerationJob{JobID: jobID, Status: JobQueued}, nil
}

// poll queries the job status at a fixed interval up to maxAttempts times.
// There is no sleep after the final attempt.
func (c *Controller) poll(ctx context.Context, epoch uint64, jobID string) (ResultAsset, error) {
	ctx = services.WithStage(ctx, "poll")
	logger := logging.WithContext(ctx, c.logger)

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		status, err := c.api.JobStatus(ctx, c.job.Model, c.job.UserID, jobID)
		if err != nil {
			wrapped := services.Wrap(services.ErrJob, "poll", "status", "failed to check status", err)
			c.fail(ctx, epoch, StateFailed, jobID, wrapped)
			return ResultAsset{}, wrapped
		}
		logger.Debug("job status", logging.Int("attempt", attempt), logging.String("status", status.Status))

		switch {
		case status.Completed():
			mediaURL, ok := status.MediaURL()
			if !ok {
				wrapped := services.Wrap(services.ErrJob, "poll", "result", "no media URL in response", nil)
				c.fail(ctx, epoch, StateFailed, jobID, wrapped)
				return ResultAsset{}, wrapped
			}
			return ResultAsset{URL: mediaURL}, nil
		case status.Failed():
			message := status.ErrorText()
			if message == "" {
				message = "job processing failed"
			}
			wrapped := services.Wrap(services.ErrJob, "poll", "status", message, nil)
			c.fail(ctx, epoch, StateFailed, jobID, wrapped)
			return ResultAsset{}, wrapped
		}

		c.transition(epoch, Event{State: StateProcessing, Label: ProcessingLabel(attempt), JobID: jobID, Attempt: attempt})
		if attempt == c.maxAttempts {
			break
		}
		if err := c.sleep(ctx, c.interval); err != nil {
			wrapped := services.Wrap(services.ErrJob, "poll", "wait", "polling interrupted", err)
			c.fail(ctx, epoch, StateFailed, jobID, wrapped)
			return ResultAsset{}, wrapped
		}
	}

	timeout := services.Wrap(services.ErrTimeout, "poll", "", fmt.Sprintf("job timed out after %d polls", c.maxAttempts), nil)
	c.fail(ctx, epoch, StateTimedOut, jobID, timeout)
	return ResultAsset{}, timeout
}

func (c *Controller) complete(ctx context.Context, epoch uint64, jobID string, result ResultAsset, chain bool) {
	var assetURL string
	c.mutate(epoch, func() {
		c.result = &result
		if chain {
			c.asset = &UploadedAsset{URL: result.URL}
		}
		if c.asset != nil {
			assetURL = c.asset.URL
		}
	})
	c.transition(epoch, Event{
		State:     StateCompleted,
		Label:     LabelComplete,
		AssetURL:  assetURL,
		JobID:     jobID,
		ResultURL: result.URL,
	})
	logging.WithContext(ctx, c.logger).Info("job complete",
		logging.String(logging.FieldEventType, "job_completed"),
		logging.String("result_url", result.URL),
	)
}
