// Command demo exercises the platform end to end against real providers.
//
// API keys are read from the environment (or a .env file) and handed to the
// platform explicitly; the library itself never touches the environment.
//
// Usage:
//
//	go run ./cmd/demo chat "Say hello in 3 languages"
//	go run ./cmd/demo image "A lighthouse at dusk"
//	go run ./cmd/demo speak "Welcome aboard"
//	go run ./cmd/demo model "A low-poly fox"
//	go run ./cmd/demo balance
//	go run ./cmd/demo capabilities
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/modalkit/modalkit"
	"github.com/modalkit/modalkit/platform"
	"github.com/modalkit/modalkit/provider/anthropic"
	"github.com/modalkit/modalkit/provider/gemini"
	"github.com/modalkit/modalkit/provider/openai"
	"github.com/modalkit/modalkit/provider/tripo"
)

func main() {
	godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: demo <chat|text|speak|image|video|model|balance|capabilities> [prompt]")
		os.Exit(1)
	}
	command := os.Args[1]
	prompt := strings.Join(os.Args[2:], " ")

	p, err := buildPlatform()
	if err != nil {
		fmt.Fprintf(os.Stderr, "platform: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var completion *modalkit.Completion

	switch command {
	case "chat":
		completion, err = p.Chat(ctx, []modalkit.Message{modalkit.NewUserMessage(prompt)})
	case "text":
		completion, err = p.GenerateText(ctx, prompt)
	case "speak":
		completion, err = p.SynthesizeSpeech(ctx, prompt)
	case "image":
		completion, err = p.GenerateImage(ctx, prompt)
	case "video":
		completion, err = p.GenerateVideo(ctx, prompt)
	case "model":
		completion, err = p.GenerateModel(ctx, prompt)
	case "balance":
		completion, err = p.CheckBalance(ctx)
	case "capabilities":
		printCapabilities(p)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printCompletion(completion)
}

func buildPlatform() (*platform.Platform, error) {
	adapters := []modalkit.Adapter{
		openai.New(),
		gemini.New(),
		anthropic.New(),
		tripo.New(),
	}
	keys := map[string]string{
		"openai":    os.Getenv("OPENAI_API_KEY"),
		"gemini":    os.Getenv("GEMINI_API_KEY"),
		"anthropic": os.Getenv("ANTHROPIC_API_KEY"),
		"tripo":     os.Getenv("TRIPO_API_KEY"),
	}

	var opts []platform.Option
	if id := os.Getenv("MODALKIT_CHAT_ADAPTER"); id != "" {
		opts = append(opts, platform.WithDefaultAdapter(modalkit.CapabilityChat, id))
	}
	opts = append(opts, platform.WithUserID("demo"))

	return platform.New(adapters, keys, opts...)
}

func printCapabilities(p *platform.Platform) {
	for _, c := range modalkit.AllCapabilities() {
		fmt.Printf("%-10s %v\n", c, p.CanHandle(c))
	}
}

func printCompletion(c *modalkit.Completion) {
	fmt.Printf("id: %s  type: %s  model: %s  duration: %dms\n", c.ID, c.Type, c.Model, c.DurationMillis)
	switch {
	case c.Message != "":
		fmt.Println(c.Message)
	case c.AudioBase64 != "":
		writeAudio(c.AudioBase64)
	case c.ImageURL != "":
		fmt.Println(c.ImageURL)
	case c.ImageBase64 != "":
		fmt.Printf("(%d bytes of base64 image data)\n", len(c.ImageBase64))
	case c.VideoURL != "":
		fmt.Println(c.VideoURL)
	case c.ModelURL != "":
		fmt.Println(c.ModelURL)
	case c.Type == modalkit.CompletionTypeBalance:
		fmt.Printf("balance: %.2f\n", c.Balance)
	}
	if c.Usage != nil {
		fmt.Printf("tokens: %d in / %d out\n", c.Usage.InputTokens, c.Usage.OutputTokens)
	}
}

func writeAudio(b64 string) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decoding audio: %v\n", err)
		return
	}
	if err := os.WriteFile("speech.mp3", data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "writing audio: %v\n", err)
		return
	}
	fmt.Println("wrote speech.mp3")
}
