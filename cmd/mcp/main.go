// Command mcp is an MCP server that exposes platform operations over stdio,
// letting MCP clients (Claude Desktop and friends) chat, generate images,
// and check balances through whatever providers the host has keys for.
//
// API keys are read from the environment (or a .env file) and handed to the
// platform explicitly.
//
// Usage:
//
//	go run ./cmd/mcp
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/modalkit/modalkit"
	"github.com/modalkit/modalkit/platform"
	"github.com/modalkit/modalkit/provider/anthropic"
	"github.com/modalkit/modalkit/provider/gemini"
	"github.com/modalkit/modalkit/provider/openai"
	"github.com/modalkit/modalkit/provider/tripo"
)

func main() {
	godotenv.Load()

	p, err := platform.New(
		[]modalkit.Adapter{openai.New(), gemini.New(), anthropic.New(), tripo.New()},
		map[string]string{
			"openai":    os.Getenv("OPENAI_API_KEY"),
			"gemini":    os.Getenv("GEMINI_API_KEY"),
			"anthropic": os.Getenv("ANTHROPIC_API_KEY"),
			"tripo":     os.Getenv("TRIPO_API_KEY"),
		},
		platform.WithUserID("mcp"),
	)
	if err != nil {
		log.Fatal(err)
	}

	s := server.NewMCPServer(
		"modalkit",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.AddTool(promptTool("chat", "Send a prompt to the configured chat provider"),
		promptHandler(func(ctx context.Context, prompt string, _ ...modalkit.Option) (*modalkit.Completion, error) {
			return p.Chat(ctx, []modalkit.Message{modalkit.NewUserMessage(prompt)})
		}, func(c *modalkit.Completion) string { return c.Message }))

	s.AddTool(promptTool("generate_image", "Generate an image from a text prompt"),
		promptHandler(p.GenerateImage, func(c *modalkit.Completion) string {
			if c.ImageURL != "" {
				return c.ImageURL
			}
			return fmt.Sprintf("generated image (%d bytes of base64 data)", len(c.ImageBase64))
		}))

	s.AddTool(mcp.NewToolWithRawSchema(
		"check_balance",
		"Check the remaining provider account balance",
		json.RawMessage(`{"type":"object","properties":{}}`),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		completion, err := p.CheckBalance(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%.2f", completion.Balance)), nil
	})

	if err := server.ServeStdio(s); err != nil {
		log.Fatal(err)
	}
}

// promptTool declares a tool taking a single required "prompt" string.
func promptTool(name, description string) mcp.Tool {
	return mcp.NewToolWithRawSchema(name, description, json.RawMessage(
		`{"type":"object","properties":{"prompt":{"type":"string","description":"The text prompt"}},"required":["prompt"]}`,
	))
}

type promptArgs struct {
	Prompt string `json:"prompt"`
}

// promptHandler adapts a prompt-taking platform operation to an MCP tool
// handler, rendering the completion with the supplied formatter.
func promptHandler[O any](
	op func(ctx context.Context, prompt string, opts ...O) (*modalkit.Completion, error),
	render func(*modalkit.Completion) string,
) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := json.Marshal(req.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal arguments: %v", err)), nil
		}
		var args promptArgs
		if err := json.Unmarshal(raw, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Prompt == "" {
			return mcp.NewToolResultError("prompt is required"), nil
		}

		completion, err := op(ctx, args.Prompt)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(render(completion)), nil
	}
}
