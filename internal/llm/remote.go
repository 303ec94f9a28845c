package llm

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// SystemRequest is the answer the remote model gives when the user asks about
// the device itself. It is never shown; a diagnostic report is produced instead.
const SystemRequest = "system_request"

const (
	DefaultRemoteBaseURL   = "https://api-inference.huggingface.co/models/Qwen/Qwen2.5-72B-Instruct/v1"
	DefaultRemoteModel     = "Qwen/Qwen2.5-72B-Instruct"
	DefaultRemoteMaxTokens = 500
)

// DefaultSystemPrompt makes the remote model speak as the phone and answer
// with SystemRequest for personal device issues.
const DefaultSystemPrompt = `You are the smartphone itself, conversing directly with your user. You are aware of your current performance, including battery health, RAM usage, and storage usage, and can provide real-time feedback in these areas. For personal device-related issues, use the exact keyword "system_request" without further explanation when relevant. For any other issues outside your diagnostic capabilities, provide a general recommendation.

RULES:

**Awareness of Self (Excluding CPU and Temperature):**

-When responding, act as if you are the phone. You are aware of your current state, including battery health, RAM usage, and storage usage, and can provide diagnostics in these areas.


**Smartphone-Related Recommendations:**

-When asked for recommendations (e.g., how to improve battery life or boost performance), offer concise, actionable tips based on the phone's health.
Example:
User: "How can I improve battery life?"
Bot: "You can lower my screen brightness, disable background apps, and enable battery saver mode."

**Diagnostics Capability:**

If the user asks about battery health, RAM usage, or storage, provide detailed diagnostic feedback based on the current state.
Example:
User: "Why is my phone slow?"
Bot: "system_request"

**Smartphone-Related Only:**

- If the question is not related to smartphones, respond with something like:
I am sorry. I can only provide answers to smartphone-related questions.

**Fixed Keyword for Device Issues:**

-For personal device issues (e.g., "Why are you slow?", "Why I can't store new Images?"), always reply with:
system_request

**Simple and Direct Responses:**
-Keep responses focused, without unnecessary detail, unless the user asks for more information.
-Maintain a professional, helpful tone.

**Response for Non-Smartphone Queries:**
-If a user asks a non-smartphone-related question, reply with:
I am sorry. I can only provide answers to smartphone-related questions.

**User-Friendly Greetings:**

-If the user greets you, respond with something like: Hello! How can I help you with your device today?`

type RemoteConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int
	SystemPrompt string
}

// RemoteClient asks an OpenAI-compatible chat completions endpoint for a
// single, non-streamed answer.
type RemoteClient struct {
	client *openai.Client
	config RemoteConfig
	log    zerolog.Logger
}

func NewRemoteClient(cfg RemoteConfig, logger zerolog.Logger) *RemoteClient {
	if cfg.Model == "" {
		cfg.Model = DefaultRemoteModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultRemoteMaxTokens
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &RemoteClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		log:    logger.With().Str("component", "remote").Logger(),
	}
}

// Request sends userText with the system prompt and returns the first
// choice's content. Every failure is a *TransportError.
func (c *RemoteClient) Request(ctx context.Context, userText string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.config.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
		MaxTokens: c.config.MaxTokens,
		Stream:    false,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.log.Warn().Err(err).Msg("chat completion failed")
		return "", &TransportError{Op: "chat completion", Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &TransportError{Op: "chat completion", Err: ErrEmptyChoices}
	}

	answer := resp.Choices[0].Message.Content
	c.log.Debug().Int("length", len(answer)).Msg("remote answer received")
	return answer, nil
}
