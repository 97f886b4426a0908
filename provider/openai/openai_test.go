package openai

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modalkit/modalkit"
)

func TestAdapterIdentity(t *testing.T) {
	a := New()
	assert.Equal(t, "openai", a.ID())
	assert.Equal(t,
		[]modalkit.Capability{
			modalkit.CapabilityChat,
			modalkit.CapabilityText,
			modalkit.CapabilitySpeech,
			modalkit.CapabilityImage,
		},
		a.Capabilities())

	h := a.Handlers()
	assert.NotNil(t, h.Chat)
	assert.NotNil(t, h.Text)
	assert.NotNil(t, h.SynthesizeSpeech)
	assert.NotNil(t, h.TranscribeSpeech)
	assert.NotNil(t, h.GenerateImage)
	assert.Nil(t, h.GenerateVideo)
	assert.Nil(t, h.CheckBalance)
}

func TestAdapterOptions(t *testing.T) {
	a := New(
		WithID("openai-eu"),
		WithChatModel("gpt-4o-mini"),
		WithVoice("nova"),
	)
	assert.Equal(t, "openai-eu", a.ID())
	assert.Equal(t, "gpt-4o-mini", a.chatModel)
	assert.Equal(t, "nova", a.voice)
}

func TestConvertMessages(t *testing.T) {
	converted := convertMessages([]modalkit.Message{
		modalkit.NewSystemMessage("be brief"),
		modalkit.NewUserMessage("hi"),
		modalkit.NewAssistantMessage("hello"),
	})
	require.Len(t, converted, 3)

	assert.NotNil(t, converted[0].OfSystem)
	assert.NotNil(t, converted[1].OfUser)
	assert.NotNil(t, converted[2].OfAssistant)
}

func TestCategorizeStatusCode(t *testing.T) {
	assert.Equal(t, modalkit.ErrorTransient, categorizeStatusCode(429))
	assert.Equal(t, modalkit.ErrorTransient, categorizeStatusCode(500))
	assert.Equal(t, modalkit.ErrorTransient, categorizeStatusCode(503))
	assert.Equal(t, modalkit.ErrorUserInput, categorizeStatusCode(400))
	assert.Equal(t, modalkit.ErrorUserInput, categorizeStatusCode(404))
	assert.Equal(t, modalkit.ErrorUserInput, categorizeStatusCode(422))
	assert.Equal(t, modalkit.ErrorPermanent, categorizeStatusCode(401))
	assert.Equal(t, modalkit.ErrorPermanent, categorizeStatusCode(403))
}

func TestParseRetryAfter(t *testing.T) {
	mk := func(value string) *http.Response {
		resp := &http.Response{Header: http.Header{}}
		if value != "" {
			resp.Header.Set("Retry-After", value)
		}
		return resp
	}

	assert.Equal(t, time.Duration(0), parseRetryAfter(nil))
	assert.Equal(t, time.Duration(0), parseRetryAfter(mk("")))
	assert.Equal(t, 30*time.Second, parseRetryAfter(mk("30")))
	assert.Equal(t, time.Duration(0), parseRetryAfter(mk("garbage")))

	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	assert.Greater(t, parseRetryAfter(mk(future)), 50*time.Second)
}

func TestWrapErrorPassesThroughPlainErrors(t *testing.T) {
	assert.Nil(t, wrapError(nil))

	plain := assert.AnError
	assert.Equal(t, plain, wrapError(plain))
}
