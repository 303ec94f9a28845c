package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

const (
	DefaultLocalBaseURL   = "http://127.0.0.1:11434/v1"
	DefaultLocalModel     = "gemma2:2b"
	DefaultLocalMaxTokens = 1024

	fragmentBufferSize = 1
)

// LocalPrompt wraps a user question in the Gemma chat template together with
// the assistant's instructions.
func LocalPrompt(question string) string {
	return "<start_of_turn>user\n" +
		"You are an AI assistant for responding to questions related to smartphones only. " +
		"Try to make your responses brief and to the point. REFUSE to answer to any other question. \n" +
		" Question:" + question + "<end_of_turn>\n<start_of_turn>model\n"
}

type LocalConfig struct {
	BaseURL   string
	Model     string
	APIKey    string
	MaxTokens int
}

// LocalModel is the long-lived on-device generative model. It is reached
// over an OpenAI-compatible streaming endpoint (Ollama, llama.cpp server)
// and publishes its output as Fragments.
//
// Submit starts a generation and returns immediately; output arrives on
// Fragments. Starting a new generation cancels the previous one and discards
// its unread fragments.
type LocalModel struct {
	client *openai.Client
	config LocalConfig
	buffer *FragmentBuffer
	log    zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewLocalModel(cfg LocalConfig, logger zerolog.Logger) *LocalModel {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultLocalBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLocalModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultLocalMaxTokens
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL

	return &LocalModel{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		buffer: NewFragmentBuffer(fragmentBufferSize),
		log:    logger.With().Str("component", "local-model").Logger(),
	}
}

func (m *LocalModel) Fragments() <-chan Fragment {
	return m.buffer.Fragments()
}

// Submit starts generating a reply to prompt. ctx bounds the whole
// generation, not just the call.
func (m *LocalModel) Submit(ctx context.Context, prompt string) error {
	m.stopCurrent()
	if n := m.buffer.Drain(); n > 0 {
		m.log.Debug().Int("fragments", n).Msg("discarded stale fragments")
	}

	genCtx, cancel := context.WithCancel(ctx)
	req := openai.ChatCompletionRequest{
		Model: m.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: LocalPrompt(prompt)},
		},
		MaxTokens: m.config.MaxTokens,
		Stream:    true,
	}

	stream, err := m.client.CreateChatCompletionStream(genCtx, req)
	if err != nil {
		cancel()
		return fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go m.pump(genCtx, cancel, stream)
	return nil
}

// pump forwards deltas, holding one back so the final text fragment can
// carry Done.
func (m *LocalModel) pump(ctx context.Context, cancel context.CancelFunc, stream *openai.ChatCompletionStream) {
	defer m.wg.Done()
	defer cancel()
	defer stream.Close()

	var pending *Fragment
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			final := Fragment{Done: true}
			if pending != nil {
				final.Text = pending.Text
			}
			m.buffer.Publish(final)
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				m.log.Debug().Msg("generation cancelled")
				return
			}
			m.log.Warn().Err(err).Msg("generation failed")
			if pending != nil {
				m.publish(*pending)
			}
			m.buffer.Publish(Fragment{Done: true, Err: err})
			return
		}

		if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
			continue
		}
		if pending != nil {
			m.publish(*pending)
		}
		pending = &Fragment{Text: resp.Choices[0].Delta.Content}
	}
}

func (m *LocalModel) publish(f Fragment) {
	if m.buffer.Publish(f) {
		m.log.Debug().Msg("consumer behind, dropped oldest fragment")
	}
}

func (m *LocalModel) stopCurrent() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

// Close cancels any running generation and waits for it to stop.
func (m *LocalModel) Close() error {
	m.stopCurrent()
	return nil
}
