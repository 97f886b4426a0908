package platform

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modalkit/modalkit"
)

type fakeAdapter struct {
	id       string
	caps     []modalkit.Capability
	handlers modalkit.Handlers
}

func (f *fakeAdapter) ID() string                          { return f.id }
func (f *fakeAdapter) Capabilities() []modalkit.Capability { return f.caps }
func (f *fakeAdapter) Handlers() modalkit.Handlers         { return f.handlers }

type vetoAdapter struct {
	fakeAdapter
	allow bool
}

func (v *vetoAdapter) CanHandle(_ []modalkit.Capability) bool { return v.allow }

// chatAdapter returns a Chat+Text adapter whose handlers record the request
// context they were invoked with.
func chatAdapter(id string, seen *modalkit.RequestContext) *fakeAdapter {
	return &fakeAdapter{
		id:   id,
		caps: []modalkit.Capability{modalkit.CapabilityChat, modalkit.CapabilityText},
		handlers: modalkit.Handlers{
			Chat: func(ctx context.Context, rc modalkit.RequestContext, messages []modalkit.Message, opts ...modalkit.Option) (*modalkit.ChatResult, error) {
				if seen != nil {
					*seen = rc
				}
				return &modalkit.ChatResult{
					Content: "hello from " + id,
					Model:   "test-model",
					Usage:   &modalkit.Usage{InputTokens: 3, OutputTokens: 5},
				}, nil
			},
			Text: func(ctx context.Context, rc modalkit.RequestContext, prompt string, opts ...modalkit.Option) (*modalkit.ChatResult, error) {
				return &modalkit.ChatResult{Content: "text from " + id, Model: "test-model"}, nil
			},
		},
	}
}

func imageAdapter(id string) *fakeAdapter {
	return &fakeAdapter{
		id:   id,
		caps: []modalkit.Capability{modalkit.CapabilityImage},
		handlers: modalkit.Handlers{
			GenerateImage: func(ctx context.Context, rc modalkit.RequestContext, prompt string, opts ...modalkit.ImageOption) (*modalkit.ImageResult, error) {
				return &modalkit.ImageResult{URL: "https://img.test/" + id, Model: "img-model"}, nil
			},
		},
	}
}

func TestNewRejectsEmptyAdapterID(t *testing.T) {
	_, err := New([]modalkit.Adapter{&fakeAdapter{id: ""}}, nil)
	require.Error(t, err)

	var empty *ErrEmptyAdapterID
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, 0, empty.Index)
}

func TestNewRejectsDuplicateAdapterID(t *testing.T) {
	_, err := New([]modalkit.Adapter{
		chatAdapter("dup", nil),
		imageAdapter("dup"),
	}, nil)
	require.Error(t, err)

	var dup *ErrDuplicateAdapterID
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "dup", dup.ID)
}

func TestChatRoutesToFirstRegisteredAdapter(t *testing.T) {
	p, err := New(
		[]modalkit.Adapter{chatAdapter("first", nil), chatAdapter("second", nil)},
		map[string]string{"first": "key-1", "second": "key-2"},
	)
	require.NoError(t, err)

	completion, err := p.Chat(context.Background(), []modalkit.Message{modalkit.NewUserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "hello from first", completion.Message)
}

func TestDefaultAdapterOverridesRegistrationOrder(t *testing.T) {
	p, err := New(
		[]modalkit.Adapter{imageAdapter("img-a"), imageAdapter("img-b")},
		map[string]string{"img-a": "key-a", "img-b": "key-b"},
		WithDefaultAdapter(modalkit.CapabilityImage, "img-b"),
	)
	require.NoError(t, err)

	completion, err := p.GenerateImage(context.Background(), "a red cube")
	require.NoError(t, err)
	assert.Equal(t, "https://img.test/img-b", completion.ImageURL)
}

func TestDefaultAdapterNotRegisteredFailsWithoutFallback(t *testing.T) {
	p, err := New(
		[]modalkit.Adapter{imageAdapter("img-a")},
		map[string]string{"img-a": "key-a"},
		WithDefaultAdapter(modalkit.CapabilityImage, "img-z"),
	)
	require.NoError(t, err)

	_, err = p.GenerateImage(context.Background(), "a red cube")
	require.Error(t, err)

	var unavailable *ErrCapabilityUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.Contains(t, err.Error(), "img-z")
}

func TestDefaultAdapterMissingHandlerFailsWithoutFallback(t *testing.T) {
	noHandler := &fakeAdapter{
		id:   "img-b",
		caps: []modalkit.Capability{modalkit.CapabilityImage},
	}
	p, err := New(
		[]modalkit.Adapter{imageAdapter("img-a"), noHandler},
		map[string]string{"img-a": "key-a", "img-b": "key-b"},
		WithDefaultAdapter(modalkit.CapabilityImage, "img-b"),
	)
	require.NoError(t, err)

	// img-a could serve the capability, but the pinned default is binding.
	_, err = p.GenerateImage(context.Background(), "a red cube")
	require.Error(t, err)

	var unavailable *ErrCapabilityUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.Contains(t, err.Error(), "img-b")
}

func TestMissingAPIKey(t *testing.T) {
	p, err := New([]modalkit.Adapter{imageAdapter("img-a")}, nil)
	require.NoError(t, err)

	_, err = p.GenerateImage(context.Background(), "a red cube")
	require.Error(t, err)

	var missing *ErrMissingAPIKey
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "img-a", missing.AdapterID)
	assert.Equal(t, modalkit.CapabilityImage, missing.Capability)
	assert.Contains(t, err.Error(), "missing API key")
}

func TestBlankKeyTreatedAsAbsent(t *testing.T) {
	p, err := New(
		[]modalkit.Adapter{imageAdapter("img-a")},
		map[string]string{"img-a": "   \n\t"},
	)
	require.NoError(t, err)

	_, err = p.GenerateImage(context.Background(), "a red cube")
	var missing *ErrMissingAPIKey
	require.ErrorAs(t, err, &missing)
}

func TestHandlerReceivesTrimmedKeyAndFreshContext(t *testing.T) {
	var seen modalkit.RequestContext
	p, err := New(
		[]modalkit.Adapter{chatAdapter("chat-a", &seen)},
		map[string]string{"chat-a": "  sk-test-123 \n"},
		WithUserID("user-42"),
	)
	require.NoError(t, err)

	_, err = p.Chat(context.Background(), []modalkit.Message{modalkit.NewUserMessage("hi")})
	require.NoError(t, err)

	assert.Equal(t, "sk-test-123", seen.APIKey)
	assert.Equal(t, "user-42", seen.UserID)
	assert.Equal(t, "chat-a", seen.ProviderID)
	assert.True(t, strings.HasPrefix(seen.TraceID, "trace-"))

	first := seen.TraceID
	_, err = p.Chat(context.Background(), []modalkit.Message{modalkit.NewUserMessage("hi")})
	require.NoError(t, err)
	assert.NotEqual(t, first, seen.TraceID)
}

func TestChatCompletionEnvelope(t *testing.T) {
	p, err := New(
		[]modalkit.Adapter{chatAdapter("chat-a", nil)},
		map[string]string{"chat-a": "key"},
		WithUserID("user-42"),
	)
	require.NoError(t, err)

	completion, err := p.Chat(context.Background(), []modalkit.Message{modalkit.NewUserMessage("hi")})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(completion.ID, "cmpl-"))
	assert.Equal(t, modalkit.CompletionTypeChat, completion.Type)
	assert.Equal(t, "user-42", completion.PartitionKey)
	assert.Equal(t, "test-model", completion.Model)
	assert.Equal(t, "hello from chat-a", completion.Message)
	require.NotNil(t, completion.Usage)
	assert.Equal(t, 3, completion.Usage.InputTokens)
	assert.Equal(t, 5, completion.Usage.OutputTokens)
	assert.GreaterOrEqual(t, completion.DurationMillis, int64(0))
	assert.False(t, completion.CreatedAt.IsZero())

	second, err := p.Chat(context.Background(), []modalkit.Message{modalkit.NewUserMessage("hi")})
	require.NoError(t, err)
	assert.NotEqual(t, completion.ID, second.ID)
}

func TestAdapterErrorPropagates(t *testing.T) {
	boom := errors.New("upstream exploded")
	a := &fakeAdapter{
		id:   "chat-a",
		caps: []modalkit.Capability{modalkit.CapabilityChat},
		handlers: modalkit.Handlers{
			Chat: func(ctx context.Context, rc modalkit.RequestContext, messages []modalkit.Message, opts ...modalkit.Option) (*modalkit.ChatResult, error) {
				return nil, boom
			},
		},
	}
	p, err := New([]modalkit.Adapter{a}, map[string]string{"chat-a": "key"})
	require.NoError(t, err)

	_, err = p.Chat(context.Background(), []modalkit.Message{modalkit.NewUserMessage("hi")})
	assert.ErrorIs(t, err, boom)
}

func TestCheckBalanceWithoutAdapterReturnsZero(t *testing.T) {
	p, err := New(
		[]modalkit.Adapter{chatAdapter("chat-a", nil)},
		map[string]string{"chat-a": "key"},
	)
	require.NoError(t, err)

	completion, err := p.CheckBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, modalkit.CompletionTypeBalance, completion.Type)
	assert.Equal(t, float64(0), completion.Balance)
}

func balanceAdapter(id string, amount float64, calls *int, fail *bool) *fakeAdapter {
	return &fakeAdapter{
		id:   id,
		caps: []modalkit.Capability{modalkit.CapabilityBalance},
		handlers: modalkit.Handlers{
			CheckBalance: func(ctx context.Context, rc modalkit.RequestContext) (*modalkit.BalanceResult, error) {
				if calls != nil {
					*calls++
				}
				if fail != nil && *fail {
					return nil, errors.New("balance endpoint down")
				}
				return &modalkit.BalanceResult{Amount: amount}, nil
			},
		},
	}
}

func TestCheckBalance(t *testing.T) {
	p, err := New(
		[]modalkit.Adapter{balanceAdapter("credits", 42.5, nil, nil)},
		map[string]string{"credits": "key"},
	)
	require.NoError(t, err)

	completion, err := p.CheckBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42.5, completion.Balance)
}

func TestCheckBalanceMissingKeyDegradesToZero(t *testing.T) {
	p, err := New([]modalkit.Adapter{balanceAdapter("credits", 42.5, nil, nil)}, nil)
	require.NoError(t, err)

	completion, err := p.CheckBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(0), completion.Balance)
}

func TestCurrentBalanceCachesFirstResult(t *testing.T) {
	calls := 0
	p, err := New(
		[]modalkit.Adapter{balanceAdapter("credits", 10, &calls, nil)},
		map[string]string{"credits": "key"},
	)
	require.NoError(t, err)

	first, err := p.CurrentBalance(context.Background())
	require.NoError(t, err)
	second, err := p.CurrentBalance(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Same(t, first, second)
}

func TestCurrentBalanceDoesNotCacheErrors(t *testing.T) {
	calls := 0
	fail := true
	p, err := New(
		[]modalkit.Adapter{balanceAdapter("credits", 10, &calls, &fail)},
		map[string]string{"credits": "key"},
	)
	require.NoError(t, err)

	_, err = p.CurrentBalance(context.Background())
	require.Error(t, err)

	fail = false
	completion, err := p.CurrentBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(10), completion.Balance)
	assert.Equal(t, 2, calls)
}

func TestCanHandleRequiresKey(t *testing.T) {
	a := imageAdapter("img-a")

	p, err := New([]modalkit.Adapter{a}, nil)
	require.NoError(t, err)
	assert.False(t, p.CanHandle(modalkit.CapabilityImage))

	p, err = New([]modalkit.Adapter{a}, map[string]string{"img-a": "key"})
	require.NoError(t, err)
	assert.True(t, p.CanHandle(modalkit.CapabilityImage))
}

func TestCanHandleUnknownCapability(t *testing.T) {
	p, err := New(
		[]modalkit.Adapter{chatAdapter("chat-a", nil)},
		map[string]string{"chat-a": "key"},
	)
	require.NoError(t, err)

	assert.True(t, p.CanHandle(modalkit.CapabilityChat, modalkit.CapabilityText))
	assert.False(t, p.CanHandle(modalkit.CapabilityChat, modalkit.CapabilityVideo))
}

func TestCanHandleSpeechWithEitherHandler(t *testing.T) {
	synthOnly := &fakeAdapter{
		id:   "tts",
		caps: []modalkit.Capability{modalkit.CapabilitySpeech},
		handlers: modalkit.Handlers{
			SynthesizeSpeech: func(ctx context.Context, rc modalkit.RequestContext, input string, opts ...modalkit.SpeechOption) (*modalkit.SpeechResult, error) {
				return &modalkit.SpeechResult{AudioBase64: "QUJD", Model: "tts-model"}, nil
			},
		},
	}
	p, err := New([]modalkit.Adapter{synthOnly}, map[string]string{"tts": "key"})
	require.NoError(t, err)

	assert.True(t, p.CanHandle(modalkit.CapabilitySpeech))

	// The transcription operation itself still needs its own handler.
	_, err = p.TranscribeSpeech(context.Background(), modalkit.AudioSource{Data: []byte("RIFF")})
	require.Error(t, err)

	completion, err := p.SynthesizeSpeech(context.Background(), "say hi")
	require.NoError(t, err)
	assert.Equal(t, "QUJD", completion.AudioBase64)
}

func TestCanHandleVeto(t *testing.T) {
	a := &vetoAdapter{fakeAdapter: *imageAdapter("img-a"), allow: false}
	p, err := New([]modalkit.Adapter{a}, map[string]string{"img-a": "key"})
	require.NoError(t, err)
	assert.False(t, p.CanHandle(modalkit.CapabilityImage))

	a.allow = true
	assert.True(t, p.CanHandle(modalkit.CapabilityImage))
}

func TestEventsEmitted(t *testing.T) {
	events := make(chan Event, 8)
	p, err := New(
		[]modalkit.Adapter{chatAdapter("chat-a", nil)},
		map[string]string{"chat-a": "key"},
		WithEvents(events),
	)
	require.NoError(t, err)

	_, err = p.Chat(context.Background(), []modalkit.Message{modalkit.NewUserMessage("hi")})
	require.NoError(t, err)

	require.Len(t, events, 2)
	start := <-events
	done := <-events
	assert.Equal(t, EventRequestStart, start.Type)
	assert.Equal(t, "chat", start.Operation)
	assert.Equal(t, "chat-a", start.Adapter)
	assert.Equal(t, EventRequestComplete, done.Type)
	assert.Equal(t, start.TraceID, done.TraceID)
}

func TestEventsDroppedWhenChannelFull(t *testing.T) {
	events := make(chan Event) // unbuffered, nobody reading
	p, err := New(
		[]modalkit.Adapter{chatAdapter("chat-a", nil)},
		map[string]string{"chat-a": "key"},
		WithEvents(events),
	)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := p.Chat(context.Background(), []modalkit.Message{modalkit.NewUserMessage("hi")})
		assert.NoError(t, err)
	}()
	<-done
}

func TestGenerateTextAndModelAndVideo(t *testing.T) {
	multi := &fakeAdapter{
		id: "multi",
		caps: []modalkit.Capability{
			modalkit.CapabilityText, modalkit.CapabilityModel, modalkit.CapabilityVideo,
		},
		handlers: modalkit.Handlers{
			Text: func(ctx context.Context, rc modalkit.RequestContext, prompt string, opts ...modalkit.Option) (*modalkit.ChatResult, error) {
				return &modalkit.ChatResult{Content: "echo: " + prompt, Model: "m"}, nil
			},
			GenerateModel: func(ctx context.Context, rc modalkit.RequestContext, prompt string, opts ...modalkit.ModelOption) (*modalkit.ModelResult, error) {
				return &modalkit.ModelResult{URL: "https://models.test/cube.glb", Model: "m"}, nil
			},
			GenerateVideo: func(ctx context.Context, rc modalkit.RequestContext, prompt string, opts ...modalkit.VideoOption) (*modalkit.VideoResult, error) {
				return &modalkit.VideoResult{URL: "https://videos.test/clip.mp4", Model: "m"}, nil
			},
		},
	}
	p, err := New([]modalkit.Adapter{multi}, map[string]string{"multi": "key"})
	require.NoError(t, err)

	text, err := p.GenerateText(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, "echo: ping", text.Message)
	assert.Equal(t, modalkit.CompletionTypeText, text.Type)

	model, err := p.GenerateModel(context.Background(), "a cube")
	require.NoError(t, err)
	assert.Equal(t, "https://models.test/cube.glb", model.ModelURL)
	assert.Equal(t, modalkit.CompletionTypeModel, model.Type)

	video, err := p.GenerateVideo(context.Background(), "a sunrise")
	require.NoError(t, err)
	assert.Equal(t, "https://videos.test/clip.mp4", video.VideoURL)
	assert.Equal(t, modalkit.CompletionTypeVideo, video.Type)
}
