// Package stream reveals finished text on a turn one character at a time
// and relays generated fragments onto a turn as they arrive.
package stream

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rorical/PocketDoc/internal/llm"
)

const (
	DefaultCharDelay = 30 * time.Millisecond

	// CancelledText is written to a turn that was aborted before receiving
	// any content.
	CancelledText = "Response cancelled."
)

// Sink is the turn store the streamer writes into. AppendToTurn and
// ReplaceTurnText clear the placeholder flag of the turn they touch; all
// three reject a turn that is already complete.
type Sink interface {
	AppendToTurn(id, chunk string) error
	ReplaceTurnText(id, text string) error
	CompleteTurn(id string) error
}

type Streamer struct {
	sink  Sink
	delay time.Duration
	log   zerolog.Logger
}

func New(sink Sink, delay time.Duration, logger zerolog.Logger) *Streamer {
	if delay < 0 {
		delay = 0
	}
	return &Streamer{
		sink:  sink,
		delay: delay,
		log:   logger.With().Str("component", "streamer").Logger(),
	}
}

// Stream appends text to the turn one rune at a time, pausing between runes,
// then completes the turn. An empty text completes the turn immediately.
//
// If ctx ends first the turn is still completed, keeping whatever was
// appended or CancelledText when nothing was, and ctx.Err() is returned.
func (s *Streamer) Stream(ctx context.Context, id, text string) error {
	if text == "" {
		return s.sink.CompleteTurn(id)
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	runes := []rune(text)
	for i, r := range runes {
		if ctx.Err() != nil {
			return s.abort(ctx, id, i > 0)
		}
		if err := s.sink.AppendToTurn(id, string(r)); err != nil {
			return err
		}
		if i == len(runes)-1 || s.delay == 0 {
			continue
		}

		if timer == nil {
			timer = time.NewTimer(s.delay)
		} else {
			timer.Reset(s.delay)
		}
		select {
		case <-ctx.Done():
			return s.abort(ctx, id, true)
		case <-timer.C:
		}
	}

	return s.sink.CompleteTurn(id)
}

// Relay writes fragments onto the turn in arrival order: the first non-empty
// fragment replaces the turn's text, later ones append. The fragment marked
// Done completes the turn.
//
// A fragment carrying Err stops the relay without completing the turn; the
// caller decides how the failure is shown. received counts the fragments
// written so the caller can tell whether anything reached the turn.
func (s *Streamer) Relay(ctx context.Context, id string, fragments <-chan llm.Fragment) (received int, err error) {
	for {
		select {
		case <-ctx.Done():
			return received, s.abort(ctx, id, received > 0)
		case f, ok := <-fragments:
			if !ok {
				return received, s.sink.CompleteTurn(id)
			}
			if f.Err != nil {
				return received, f.Err
			}
			if f.Text != "" {
				if received == 0 {
					err = s.sink.ReplaceTurnText(id, f.Text)
				} else {
					err = s.sink.AppendToTurn(id, f.Text)
				}
				if err != nil {
					return received, err
				}
				received++
			}
			if f.Done {
				return received, s.sink.CompleteTurn(id)
			}
		}
	}
}

func (s *Streamer) abort(ctx context.Context, id string, hasContent bool) error {
	s.log.Debug().Str("turn", id).Bool("partial", hasContent).Msg("stream cancelled")

	var errs []error
	if !hasContent {
		errs = append(errs, s.sink.ReplaceTurnText(id, CancelledText))
	}
	errs = append(errs, s.sink.CompleteTurn(id), ctx.Err())
	return errors.Join(errs...)
}
