package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"

	"github.com/openai/openai-go"

	"github.com/modalkit/modalkit"
)

func (a *Adapter) synthesizeSpeech(ctx context.Context, rc modalkit.RequestContext, input string, opts ...modalkit.SpeechOption) (*modalkit.SpeechResult, error) {
	options := modalkit.ApplySpeechOptions(opts...)
	model := a.speechModel
	if options.Model != "" {
		model = options.Model
	}
	voice := a.voice
	if options.Voice != "" {
		voice = options.Voice
	}

	params := openai.AudioSpeechNewParams{
		Model: openai.SpeechModel(model),
		Input: input,
		Voice: openai.AudioSpeechNewParamsVoice(voice),
	}
	if options.Format != "" {
		params.ResponseFormat = openai.AudioSpeechNewParamsResponseFormat(options.Format)
	}

	client := a.sdk(rc)
	resp, err := client.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, wrapError(err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, modalkit.NewPermanentError("reading synthesized audio", 0, err)
	}

	return &modalkit.SpeechResult{
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		Model:       model,
	}, nil
}

func (a *Adapter) transcribeSpeech(ctx context.Context, rc modalkit.RequestContext, audio modalkit.AudioSource, opts ...modalkit.SpeechOption) (*modalkit.TranscriptResult, error) {
	options := modalkit.ApplySpeechOptions(opts...)
	model := a.transcribeModel
	if options.Model != "" {
		model = options.Model
	}

	filename := audio.Filename
	if filename == "" {
		filename = "audio.mp3"
	}
	mimeType := audio.MimeType
	if mimeType == "" {
		mimeType = "audio/mpeg"
	}

	params := openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(model),
		File:  openai.File(bytes.NewReader(audio.Data), filename, mimeType),
	}
	if options.Language != "" {
		params.Language = openai.String(options.Language)
	}

	client := a.sdk(rc)
	resp, err := client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, wrapError(err)
	}

	return &modalkit.TranscriptResult{
		Text:  resp.Text,
		Model: model,
	}, nil
}
