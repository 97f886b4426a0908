package gemini

import (
	"context"
	"time"

	"google.golang.org/genai"

	"github.com/modalkit/modalkit"
)

// videoPollInterval is how often a pending Veo operation is re-checked.
const videoPollInterval = 10 * time.Second

func (a *Adapter) generateVideo(ctx context.Context, rc modalkit.RequestContext, prompt string, opts ...modalkit.VideoOption) (*modalkit.VideoResult, error) {
	options := modalkit.ApplyVideoOptions(opts...)
	model := a.videoModel
	if options.Model != "" {
		model = options.Model
	}

	client, err := a.sdk(ctx, rc)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateVideosConfig{}
	if options.AspectRatio != "" {
		config.AspectRatio = options.AspectRatio
	}
	if options.DurationSeconds > 0 {
		config.DurationSeconds = genai.Ptr(int32(options.DurationSeconds))
	}

	// Veo is asynchronous: submit the generation, then poll the
	// long-running operation until it completes.
	op, err := client.Models.GenerateVideos(ctx, model, prompt, nil, config)
	if err != nil {
		return nil, wrapError(err)
	}

	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(videoPollInterval):
		}
		op, err = client.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return nil, wrapError(err)
		}
	}

	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 {
		return nil, modalkit.NewPermanentError("video generation returned no videos", 0, nil)
	}
	video := op.Response.GeneratedVideos[0].Video
	if video == nil || video.URI == "" {
		return nil, modalkit.NewPermanentError("video generation returned no downloadable video", 0, nil)
	}

	return &modalkit.VideoResult{
		URL:   video.URI,
		Model: model,
	}, nil
}
