package openai

import (
	"context"

	"github.com/openai/openai-go"

	"github.com/modalkit/modalkit"
)

func (a *Adapter) generateImage(ctx context.Context, rc modalkit.RequestContext, prompt string, opts ...modalkit.ImageOption) (*modalkit.ImageResult, error) {
	options := modalkit.ApplyImageOptions(opts...)
	model := a.imageModel
	if options.Model != "" {
		model = options.Model
	}

	params := openai.ImageGenerateParams{
		Model:  openai.ImageModel(model),
		Prompt: prompt,
		N:      openai.Int(1),
	}

	size := options.Size
	if size == "" {
		size = modalkit.ImageSize1024x1024
	}
	params.Size = openai.ImageGenerateParamsSize(size)

	client := a.sdk(rc)
	resp, err := client.Images.Generate(ctx, params)
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.Data) == 0 {
		return nil, modalkit.NewPermanentError("image generation returned no images", 0, nil)
	}

	img := resp.Data[0]
	return &modalkit.ImageResult{
		URL:           img.URL,
		Base64:        img.B64JSON,
		RevisedPrompt: img.RevisedPrompt,
		Model:         model,
	}, nil
}
