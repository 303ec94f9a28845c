package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Rorical/PocketDoc/internal/device"
	"github.com/Rorical/PocketDoc/internal/diagnostics"
	"github.com/Rorical/PocketDoc/internal/eventbus"
	"github.com/Rorical/PocketDoc/internal/intent"
	"github.com/Rorical/PocketDoc/internal/llm"
	"github.com/Rorical/PocketDoc/internal/models"
	"github.com/Rorical/PocketDoc/internal/stream"
)

var (
	ErrQueueFull = errors.New("request queue is full")
	ErrStopped   = errors.New("chat service stopped")
)

const requestQueueSize = 16

// Generator is the local generative model: Submit starts a generation whose
// output arrives on Fragments.
type Generator interface {
	Submit(ctx context.Context, prompt string) error
	Fragments() <-chan llm.Fragment
}

// RemoteInference answers a question with a single request.
type RemoteInference interface {
	Request(ctx context.Context, userText string) (string, error)
}

type Deps struct {
	Metrics    device.Provider
	Generator  Generator
	Remote     RemoteInference // nil when no remote profile is configured
	Classifier *intent.Classifier
	Reports    *diagnostics.Builder
	Logger     zerolog.Logger
	CharDelay  time.Duration
	Online     bool
}

// ChatService turns user messages into conversation turns. Requests are
// handled one at a time by a single worker; the event loop stays free to
// apply mode toggles while a request is running.
type ChatService struct {
	state      *ChatState
	eventBus   *eventbus.EventBus
	streamer   *stream.Streamer
	classifier *intent.Classifier
	reports    *diagnostics.Builder
	metrics    device.Provider
	generator  Generator
	remote     RemoteInference
	log        zerolog.Logger

	requests chan string
	ctx      context.Context
	cancel   context.CancelFunc
	group    *errgroup.Group

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewChatService builds the service; eb may be nil for headless use.
func NewChatService(deps Deps, eb *eventbus.EventBus) *ChatService {
	if deps.Classifier == nil {
		deps.Classifier = intent.NewClassifier(nil)
	}
	if deps.Reports == nil {
		deps.Reports = diagnostics.NewBuilder()
	}

	ctx, cancel := context.WithCancel(context.Background())
	cs := &ChatService{
		state:      NewChatState(),
		eventBus:   eb,
		classifier: deps.Classifier,
		reports:    deps.Reports,
		metrics:    deps.Metrics,
		generator:  deps.Generator,
		remote:     deps.Remote,
		log:        deps.Logger.With().Str("component", "chat").Logger(),
		requests:   make(chan string, requestQueueSize),
		ctx:        ctx,
		cancel:     cancel,
	}
	cs.streamer = stream.New(&notifyingSink{cs: cs}, deps.CharDelay, deps.Logger)
	cs.state.SetOnline(deps.Online)
	return cs
}

// Start streams the welcome message and begins accepting requests.
func (cs *ChatService) Start() {
	cs.startOnce.Do(func() {
		g, ctx := errgroup.WithContext(cs.ctx)
		cs.group = g

		cs.pushStateToUI()
		g.Go(func() error { return cs.worker(ctx) })
		if cs.eventBus != nil {
			g.Go(func() error { return cs.eventLoop(ctx) })
		}
	})
}

// Stop cancels in-flight work and waits for it. Every turn is left
// complete, the generating flag is cleared and text input is disabled.
func (cs *ChatService) Stop() {
	cs.stopOnce.Do(func() {
		cs.cancel()
		cs.startOnce.Do(func() {})
		if cs.group != nil {
			if err := cs.group.Wait(); err != nil {
				cs.log.Warn().Err(err).Msg("chat tasks stopped with error")
			}
		}

		if n := cs.state.CompleteInFlight(stream.CancelledText); n > 0 {
			cs.log.Debug().Int("turns", n).Msg("closed in-flight turns on stop")
		}
		cs.state.SetGenerating(false)
		cs.state.SetTextInput(false)
		cs.pushStateToUI()
	})
}

// SendMessage queues text for handling without blocking.
func (cs *ChatService) SendMessage(text string) error {
	if cs.ctx.Err() != nil {
		return ErrStopped
	}
	select {
	case cs.requests <- text:
		return nil
	default:
		return ErrQueueFull
	}
}

// ToggleOnlineMode flips online mode and returns the new value. Requests
// already being handled keep the route they were given.
func (cs *ChatService) ToggleOnlineMode() bool {
	online := cs.state.ToggleOnline()
	cs.log.Info().Bool("online", online).Msg("online mode toggled")
	cs.pushStateToUI()
	return online
}

// Handle runs one request to completion on the caller's goroutine. It is
// meant for headless use where Start is never called.
func (cs *ChatService) Handle(ctx context.Context, text string) {
	cs.processMessage(ctx, text)
}

// Turns returns the conversation newest first.
func (cs *ChatService) Turns() []models.Turn {
	return cs.state.NewestFirst()
}

func (cs *ChatService) Flags() models.UIFlags {
	return cs.state.Flags()
}

func (cs *ChatService) worker(ctx context.Context) error {
	cs.withGenerating(func() {
		cs.streamSystemMessage(ctx, WelcomeMessage, "")
	})

	for {
		select {
		case <-ctx.Done():
			return nil
		case text := <-cs.requests:
			cs.processMessage(ctx, text)
		}
	}
}

func (cs *ChatService) eventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-cs.eventBus.UIToCore():
			if !ok {
				return nil
			}
			cs.handleUIEvent(event)
		}
	}
}

func (cs *ChatService) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.SendMessageEvent:
		if err := cs.SendMessage(e.Message); err != nil {
			cs.log.Warn().Err(err).Msg("request rejected")
		}
	case eventbus.ToggleOnlineModeEvent:
		cs.ToggleOnlineMode()
	}
}

// withGenerating keeps the generating flag raised while fn runs and clears
// it however fn returns.
func (cs *ChatService) withGenerating(fn func()) {
	cs.state.SetGenerating(true)
	cs.pushStateToUI()
	defer func() {
		if r := recover(); r != nil {
			cs.log.Error().Interface("panic", r).Msg("request handler panicked")
			cs.state.CompleteInFlight(StreamFailedMessage)
		}
		cs.state.SetGenerating(false)
		cs.pushStateToUI()
	}()
	fn()
}

func (cs *ChatService) processMessage(ctx context.Context, text string) {
	cs.withGenerating(func() {
		if strings.TrimSpace(text) == "" {
			cs.streamSystemMessage(ctx, EmptyInputMessage, "")
			return
		}
		if utf8.RuneCountInString(text) > MaxInputLength {
			cs.streamSystemMessage(ctx, TooLongMessage, "")
			return
		}

		cs.state.AddTurn(models.User, text)
		cs.pushStateToUI()

		online := cs.state.Flags().OnlineMode
		cs.log.Info().Int("length", len(text)).Bool("online", online).Msg("request received")
		if online {
			cs.handleOnline(ctx, text)
			return
		}

		in := cs.classifier.Classify(text)
		cs.log.Debug().Stringer("intent", in).Msg("intent routed")
		switch in {
		case intent.DeviceStatusInquiry:
			cs.handleDiagnostic(ctx, "")
		case intent.GeneralAdviceRequest:
			cs.handleAdvice(ctx, text)
		default:
			cs.streamSystemMessage(ctx, OutOfScopeMessage, "")
		}
	})
}

// openPlaceholder appends an empty MODEL turn shown as a loading indicator.
func (cs *ChatService) openPlaceholder() string {
	t := cs.state.OpenTurn(true)
	cs.pushStateToUI()
	return t.ID
}

// streamSystemMessage types text into the turn id, or into a new
// placeholder turn when id is empty.
func (cs *ChatService) streamSystemMessage(ctx context.Context, text, id string) {
	if id == "" {
		id = cs.openPlaceholder()
	}

	err := cs.streamer.Stream(ctx, id, text)
	if err == nil || ctx.Err() != nil {
		return
	}

	cs.log.Warn().Err(err).Str("turn", id).Msg("streaming failed")
	if cs.state.CompleteTurnWithText(id, StreamFailedMessage) != nil {
		cs.state.AddTurn(models.Model, StreamFailedMessage)
	}
	cs.pushStateToUI()
}

func (cs *ChatService) handleDiagnostic(ctx context.Context, id string) {
	report := DeviceReadMessage
	if cs.metrics != nil {
		snapshot, err := device.Collect(ctx, cs.metrics)
		if err != nil {
			cs.log.Warn().Err(err).Msg("device snapshot failed")
		} else {
			report = cs.reports.Build(snapshot)
		}
	}
	cs.streamSystemMessage(ctx, report, id)
}

func (cs *ChatService) handleAdvice(ctx context.Context, text string) {
	id := cs.openPlaceholder()

	if cs.generator == nil {
		cs.failGeneration(id, 0, llm.ErrModelUnavailable)
		return
	}
	if err := cs.generator.Submit(ctx, text); err != nil {
		if ctx.Err() != nil {
			cs.finishTurn(id, stream.CancelledText)
			return
		}
		cs.failGeneration(id, 0, err)
		return
	}

	received, err := cs.streamer.Relay(ctx, id, cs.generator.Fragments())
	if err != nil && ctx.Err() == nil {
		cs.failGeneration(id, received, err)
	}
}

// failGeneration shows err as the request's only terminal turn. A
// placeholder that never got content is replaced by a new MODEL turn; a
// partial answer is completed with the error appended.
func (cs *ChatService) failGeneration(id string, received int, err error) {
	msg := err.Error()
	if msg == "" {
		msg = UnknownErrorMessage
	}
	cs.log.Warn().Err(err).Int("fragments", received).Msg("generation failed")

	// An empty placeholder is removed rather than left open next to the
	// error turn, so the request ends with exactly one complete turn.
	if received == 0 && cs.state.DiscardPlaceholder(id) == nil {
		cs.state.AddTurn(models.Model, msg)
	} else if t, ok := cs.state.Turn(id); ok && !t.IsComplete {
		text := msg
		if t.Text != "" {
			text = t.Text + "\n\n" + msg
		}
		if cerr := cs.state.CompleteTurnWithText(id, text); cerr != nil {
			cs.log.Error().Err(cerr).Msg("could not close failed turn")
		}
	}
	cs.pushStateToUI()
}

func (cs *ChatService) handleOnline(ctx context.Context, text string) {
	id := cs.openPlaceholder()

	if cs.remote == nil {
		cs.log.Warn().Msg("online mode without a configured remote profile")
		cs.finishTurn(id, ConnectivityMessage)
		return
	}

	answer, err := cs.remote.Request(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			cs.finishTurn(id, stream.CancelledText)
			return
		}
		cs.log.Warn().Err(err).Msg("remote request failed")
		cs.finishTurn(id, ConnectivityMessage)
		return
	}

	if answer == llm.SystemRequest {
		cs.handleDiagnostic(ctx, id)
		return
	}
	cs.streamSystemMessage(ctx, answer, id)
}

func (cs *ChatService) finishTurn(id, text string) {
	if err := cs.state.CompleteTurnWithText(id, text); err != nil {
		cs.log.Error().Err(err).Str("turn", id).Msg("could not complete turn")
	}
	cs.pushStateToUI()
}

func (cs *ChatService) pushStateToUI() {
	if cs.eventBus == nil {
		return
	}

	err := cs.eventBus.SendToUI(eventbus.StateUpdateEvent{
		Turns: cs.state.NewestFirst(),
		Flags: cs.state.Flags(),
	})
	if err != nil {
		cs.log.Debug().Err(err).Msg("state update not delivered")
	}
}

// notifyingSink forwards streamer writes to the state and pushes a
// snapshot to the UI after each one.
type notifyingSink struct {
	cs *ChatService
}

func (s *notifyingSink) AppendToTurn(id, chunk string) error {
	return s.after(s.cs.state.AppendToTurn(id, chunk))
}

func (s *notifyingSink) ReplaceTurnText(id, text string) error {
	return s.after(s.cs.state.ReplaceTurnText(id, text))
}

func (s *notifyingSink) CompleteTurn(id string) error {
	return s.after(s.cs.state.CompleteTurn(id))
}

func (s *notifyingSink) after(err error) error {
	if err != nil {
		return fmt.Errorf("update turn: %w", err)
	}
	s.cs.pushStateToUI()
	return nil
}
