// Package tripo provides a Tripo-backed capability adapter for 3D model
// generation and account balance. Tripo exposes a plain task-based HTTP API
// with no Go SDK, so the adapter speaks JSON directly through the resilient
// httpclient layer.
package tripo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/modalkit/modalkit"
	"github.com/modalkit/modalkit/httpclient"
)

// AdapterID is the default registry id for this adapter.
const AdapterID = "tripo"

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.tripo3d.ai/v2/openapi"

// defaultPollInterval is how often a pending generation task is re-checked.
const defaultPollInterval = 5 * time.Second

// Adapter implements modalkit.Adapter against the Tripo task API. The API
// key arrives per call through the request context.
type Adapter struct {
	id           string
	baseURL      string
	client       *httpclient.Client
	pollInterval time.Duration
}

// New creates a Tripo adapter with the default endpoint and retry policy.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		id:           AdapterID,
		baseURL:      DefaultBaseURL,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.client == nil {
		a.client = httpclient.New()
	}
	return a
}

// Option configures the adapter.
type Option func(*Adapter)

// WithID overrides the registry id.
func WithID(id string) Option {
	return func(a *Adapter) {
		a.id = id
	}
}

// WithBaseURL points the adapter at a different endpoint.
func WithBaseURL(url string) Option {
	return func(a *Adapter) {
		a.baseURL = url
	}
}

// WithPolicy sets the retry policy for the adapter's HTTP calls.
func WithPolicy(p httpclient.Policy) Option {
	return func(a *Adapter) {
		a.client = httpclient.New(httpclient.WithPolicy(p))
	}
}

// WithHTTPClient sets the underlying HTTP executor. Mostly useful in tests.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(a *Adapter) {
		a.client = c
	}
}

// WithPollInterval sets how often pending tasks are re-checked.
func WithPollInterval(d time.Duration) Option {
	return func(a *Adapter) {
		a.pollInterval = d
	}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() string { return a.id }

// Capabilities returns the capabilities this adapter declares.
func (a *Adapter) Capabilities() []modalkit.Capability {
	return []modalkit.Capability{
		modalkit.CapabilityModel,
		modalkit.CapabilityBalance,
	}
}

// Handlers returns the operation functions for the declared capabilities.
func (a *Adapter) Handlers() modalkit.Handlers {
	return modalkit.Handlers{
		GenerateModel: a.generateModel,
		CheckBalance:  a.checkBalance,
	}
}

// envelope is the common wrapper around every Tripo response.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type taskCreated struct {
	TaskID string `json:"task_id"`
}

type taskStatus struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
	Output struct {
		Model    string `json:"model"`
		PBRModel string `json:"pbr_model"`
	} `json:"output"`
}

type balanceData struct {
	Balance float64 `json:"balance"`
	Frozen  float64 `json:"frozen"`
}

func (a *Adapter) generateModel(ctx context.Context, rc modalkit.RequestContext, prompt string, opts ...modalkit.ModelOption) (*modalkit.ModelResult, error) {
	options := modalkit.ApplyModelOptions(opts...)

	payload := map[string]any{
		"type":   "text_to_model",
		"prompt": prompt,
	}
	if options.Format != "" {
		payload["model_format"] = options.Format
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var created taskCreated
	if err := a.call(ctx, "tripo create task", http.MethodPost, a.baseURL+"/task", rc.APIKey, body, &created); err != nil {
		return nil, err
	}
	if created.TaskID == "" {
		return nil, modalkit.NewPermanentError("model generation returned no task id", 0, nil)
	}

	// The task API is asynchronous: poll until the task leaves the queue.
	statusURL := fmt.Sprintf("%s/task/%s", a.baseURL, created.TaskID)
	for {
		var status taskStatus
		if err := a.call(ctx, "tripo poll task", http.MethodGet, statusURL, rc.APIKey, nil, &status); err != nil {
			return nil, err
		}

		switch status.Status {
		case "success":
			url := status.Output.PBRModel
			if url == "" {
				url = status.Output.Model
			}
			if url == "" {
				return nil, modalkit.NewPermanentError("model generation task finished without output", 0, nil)
			}
			return &modalkit.ModelResult{
				URL:    url,
				Format: options.Format,
				Model:  "tripo-" + created.TaskID,
			}, nil
		case "failed", "cancelled", "banned":
			return nil, modalkit.NewPermanentError(
				fmt.Sprintf("model generation task %s ended with status %q", created.TaskID, status.Status), 0, nil)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.pollInterval):
		}
	}
}

func (a *Adapter) checkBalance(ctx context.Context, rc modalkit.RequestContext) (*modalkit.BalanceResult, error) {
	var data balanceData
	if err := a.call(ctx, "tripo balance", http.MethodGet, a.baseURL+"/user/balance", rc.APIKey, nil, &data); err != nil {
		return nil, err
	}
	return &modalkit.BalanceResult{Amount: data.Balance}, nil
}

// call performs one logical API call through the resilient transport and
// decodes the data payload into out. The request factory rebuilds the
// request, body included, on every attempt.
func (a *Adapter) call(ctx context.Context, operation, method, url, apiKey string, body []byte, out any) error {
	resp, err := a.client.Execute(ctx, operation, func(ctx context.Context) (*http.Request, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+apiKey)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return modalkit.NewPermanentError(operation+": reading response", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("%s: unexpected status %d", operation, resp.StatusCode)
		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			return modalkit.NewTransientError(msg, resp.StatusCode, nil)
		}
		return modalkit.NewPermanentError(msg, resp.StatusCode, nil)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return modalkit.NewPermanentError(operation+": malformed response body", resp.StatusCode, err)
	}
	if env.Code != 0 {
		return modalkit.NewPermanentError(
			fmt.Sprintf("%s: API error %d: %s", operation, env.Code, env.Message), resp.StatusCode, nil)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return modalkit.NewPermanentError(operation+": malformed data payload", resp.StatusCode, err)
		}
	}
	return nil
}

var _ modalkit.Adapter = (*Adapter)(nil)
