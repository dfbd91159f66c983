package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/cexll/agentsdk-go/pkg/api"
	"github.com/cexll/agentsdk-go/pkg/model"

	"github.com/SIDHANTH-S/Voigent/internal/config"
)

// PersonaPrompt is the system prompt for the generative backend. It pins the
// assistant's voice so bridged answers sound like the locally generated ones.
const PersonaPrompt = `You are Priya, a sharp and friendly business assistant for a small Indian retail store. You speak on the phone with the owner, so keep answers short, conversational, and concrete. Use the rupee figures you are given, never invent numbers, and round the way a person would when speaking. If you genuinely cannot answer from the figures provided, say so and suggest what you can cover instead.`

// Runtime is the subset of the agent runtime the completer needs. Kept as an
// interface so tests can substitute a stub.
type Runtime interface {
	Run(ctx context.Context, req api.Request) (*api.Response, error)
	Close()
}

type runtimeAdapter struct {
	rt *api.Runtime
}

func (r *runtimeAdapter) Run(ctx context.Context, req api.Request) (*api.Response, error) {
	return r.rt.Run(ctx, req)
}

func (r *runtimeAdapter) Close() {
	r.rt.Close()
}

// LLMCompleter answers complex questions through an agentsdk runtime. Each
// dialogue session maps to a runtime session, so the model keeps its own view
// of the conversation across bridged turns.
type LLMCompleter struct {
	runtime Runtime
}

// NewLLMCompleter builds the default runtime from config. Returns an error
// when no API key is configured; callers treat that as "bridge disabled".
func NewLLMCompleter(cfg *config.Config) (*LLMCompleter, error) {
	if strings.TrimSpace(cfg.Provider.APIKey) == "" {
		return nil, fmt.Errorf("no provider api key configured")
	}

	var provider api.ModelFactory
	switch cfg.Provider.Type {
	case "openai":
		provider = &model.OpenAIProvider{
			APIKey:    cfg.Provider.APIKey,
			BaseURL:   cfg.Provider.BaseURL,
			ModelName: cfg.Agent.Model,
			MaxTokens: cfg.Agent.MaxTokens,
		}
	default: // "anthropic" or empty
		provider = &model.AnthropicProvider{
			APIKey:    cfg.Provider.APIKey,
			BaseURL:   cfg.Provider.BaseURL,
			ModelName: cfg.Agent.Model,
			MaxTokens: cfg.Agent.MaxTokens,
		}
	}

	rt, err := api.New(context.Background(), api.Options{
		ProjectRoot:  cfg.Agent.Workspace,
		ModelFactory: provider,
		SystemPrompt: PersonaPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("create runtime: %w", err)
	}
	return &LLMCompleter{runtime: &runtimeAdapter{rt: rt}}, nil
}

// NewLLMCompleterWithRuntime wires a completer over an existing runtime.
func NewLLMCompleterWithRuntime(rt Runtime) *LLMCompleter {
	return &LLMCompleter{runtime: rt}
}

// Complete runs one prompt through the model and returns its text output.
func (c *LLMCompleter) Complete(ctx context.Context, sessionID, prompt string) (string, error) {
	resp, err := c.runtime.Run(ctx, api.Request{
		Prompt:    prompt,
		SessionID: sessionID,
	})
	if err != nil {
		return "", fmt.Errorf("run completion: %w", err)
	}
	if resp == nil || resp.Result == nil {
		return "", fmt.Errorf("empty completion response")
	}
	return strings.TrimSpace(resp.Result.Output), nil
}

// Close releases the underlying runtime.
func (c *LLMCompleter) Close() {
	if c.runtime != nil {
		c.runtime.Close()
	}
}
