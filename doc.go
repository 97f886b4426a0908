// Package modalkit routes logical AI operations to interchangeable provider
// adapters.
//
// The library abstracts over provider-specific APIs for chat, text, speech,
// image, video, 3D model generation, and account balance, allowing hosts to
// swap providers without touching calling code.
//
// Basic usage:
//
//	p, err := platform.New(
//		[]modalkit.Adapter{openai.New(), gemini.New()},
//		map[string]string{"openai": openaiKey, "gemini": geminiKey},
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	completion, err := p.Chat(ctx, []modalkit.Message{
//		modalkit.NewUserMessage("Hello!"),
//	})
//
// The root package holds the shared contract: the Capability enumeration, the
// Adapter interface, the Completion envelope every operation returns, and the
// categorized error taxonomy. Routing lives in the platform subpackage; the
// retry/backoff HTTP layer that adapters build on lives in httpclient.
package modalkit
