// Package chat runs conversation turns: it resolves the scenario, asks the
// language model on a bounded worker pool, appends the results to the
// transcript and hands the reply to speech synthesis.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/daikw/scenariochat/internal/conversation"
	"github.com/daikw/scenariochat/internal/listen"
	"github.com/daikw/scenariochat/internal/llm"
)

// Transcript notices.
const (
	InvalidScenarioMessage = "Invalid scenario selected. Please choose a valid scenario."
	BusyMessage            = "Busy: too many pending requests"
)

// Pool defaults.
const (
	DefaultWorkers   = 2
	DefaultQueueSize = 8
	DefaultTimeout   = 30 * time.Second
)

var (
	ErrEmptyInput       = errors.New("empty input")
	ErrInvalidScenario  = errors.New("invalid scenario")
	ErrQueueFull        = errors.New("too many pending requests")
	ErrClosed           = errors.New("orchestrator closed")
	ErrCaptureDisabled  = errors.New("voice capture disabled")
	ErrAlreadyListening = errors.New("already listening")
)

// State is a step of a turn's lifecycle.
type State string

const (
	StateIdle          State = "Idle"
	StateSending       State = "Sending"
	StateAwaitingReply State = "AwaitingReply"
	StateSpeaking      State = "Speaking"
	StateFailed        State = "Failed"
)

// Prompts resolves a scenario name to its system prompt.
type Prompts interface {
	Lookup(name string) (string, error)
}

// Speaker synthesizes and starts playback without waiting for it to finish.
type Speaker interface {
	Speak(ctx context.Context, text, voiceID string) error
}

// Capturer records and recognizes one utterance.
type Capturer interface {
	Capture(ctx context.Context) (string, error)
}

// Deps are the collaborators of an Orchestrator. Speech and Capture may be
// nil to mute synthesis or disable voice input.
type Deps struct {
	Scenarios Prompts
	LLM       llm.Client
	Speech    Speaker
	Capture   Capturer
	Display   conversation.Display
	Selection *Selection
}

// Options size the worker pool.
type Options struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
	// Supersede cancels the previous in-flight turn when a new one is submitted.
	Supersede bool
}

// PendingRequest is one dispatched turn. Scenario and Voice are the
// selections at submit time.
type PendingRequest struct {
	ID       uuid.UUID
	Text     string
	Scenario string
	Prompt   string
	Voice    string
}

type job struct {
	req     *PendingRequest
	capture bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Orchestrator dispatches turns to a fixed set of workers.
type Orchestrator struct {
	deps Deps
	opts Options

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	queue  chan *job

	mu     sync.Mutex
	closed bool
	latest context.CancelFunc

	pending   atomic.Int32
	listening atomic.Bool
}

// New starts the worker pool.
func New(deps Deps, opts Options) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		deps:   deps,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		group:  &errgroup.Group{},
		queue:  make(chan *job, opts.QueueSize),
	}

	for i := 0; i < opts.Workers; i++ {
		o.group.Go(func() error {
			for j := range o.queue {
				o.process(j)
			}
			return nil
		})
	}

	log.Debug().Int("workers", opts.Workers).Int("queue", opts.QueueSize).
		Bool("supersede", opts.Supersede).Msg("Worker pool started")
	return o
}

// Pending returns the number of turns queued or running.
func (o *Orchestrator) Pending() int {
	return int(o.pending.Load())
}

// Listening reports whether a voice capture is in progress.
func (o *Orchestrator) Listening() bool {
	return o.listening.Load()
}

// Submit appends the user's text and dispatches a turn for it. It never
// blocks on the network. Empty input changes nothing; an unresolvable
// scenario appends the invalid-scenario notice and dispatches nothing.
func (o *Orchestrator) Submit(text string) (*PendingRequest, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	o.mu.Lock()
	closed := o.closed
	o.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	j, err := o.prepare(o.ctx, text)
	if err != nil {
		return nil, err
	}
	if err := o.enqueue(j); err != nil {
		return nil, err
	}
	return j.req, nil
}

// SubmitVoice dispatches a microphone capture to the pool. A recognized
// utterance becomes a normal submission.
func (o *Orchestrator) SubmitVoice() error {
	if o.deps.Capture == nil {
		return ErrCaptureDisabled
	}
	if !o.listening.CompareAndSwap(false, true) {
		return ErrAlreadyListening
	}

	ctx, cancel := context.WithCancel(o.ctx)
	if err := o.enqueue(&job{capture: true, ctx: ctx, cancel: cancel}); err != nil {
		o.listening.Store(false)
		return err
	}
	return nil
}

// RunTurn performs one exchange synchronously without touching the
// transcript or speech.
func (o *Orchestrator) RunTurn(ctx context.Context, scenario, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}
	prompt, err := o.deps.Scenarios.Lookup(scenario)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.opts.Timeout)
	defer cancel()
	return o.deps.LLM.Complete(ctx, prompt, text)
}

// Close stops intake and waits for queued turns to finish. When ctx expires
// first, in-flight turns are canceled and ctx's error is returned.
func (o *Orchestrator) Close(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	close(o.queue)
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = o.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.cancel()
		log.Debug().Msg("Worker pool drained")
		return nil
	case <-ctx.Done():
		log.Warn().Int("pending", o.Pending()).Msg("Canceling in-flight turns")
		o.cancel()
		<-done
		return ctx.Err()
	}
}

// prepare appends the user entry and resolves the scenario for a turn whose
// context derives from parent.
func (o *Orchestrator) prepare(parent context.Context, text string) (*job, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	choice := o.deps.Selection.Snapshot()
	req := &PendingRequest{
		ID:       uuid.New(),
		Text:     text,
		Scenario: choice.Scenario,
		Voice:    choice.Voice,
	}
	logger := turnLogger(req)

	o.deps.Display.Append(conversation.User, text)
	transition(logger, StateSending)

	prompt, err := o.deps.Scenarios.Lookup(choice.Scenario)
	if err != nil {
		o.deps.Display.Append(conversation.SystemError, InvalidScenarioMessage)
		logger.Warn().Err(err).Str("state", string(StateFailed)).Msg("Turn failed")
		return nil, fmt.Errorf("%w: %q", ErrInvalidScenario, choice.Scenario)
	}
	req.Prompt = prompt

	ctx, cancel := context.WithCancel(parent)
	return &job{req: req, ctx: ctx, cancel: cancel}, nil
}

func (o *Orchestrator) enqueue(j *job) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		j.cancel()
		return ErrClosed
	}

	select {
	case o.queue <- j:
	default:
		j.cancel()
		o.deps.Display.Append(conversation.SystemError, BusyMessage)
		log.Warn().Int("queue", o.opts.QueueSize).Msg("Queue full, request dropped")
		return ErrQueueFull
	}

	if !j.capture {
		o.track(j)
	}
	return nil
}

// track counts j as pending and, when superseding, cancels the previous turn.
// Callers hold o.mu.
func (o *Orchestrator) track(j *job) {
	o.pending.Add(1)
	if !o.opts.Supersede {
		return
	}
	if o.latest != nil {
		o.latest()
	}
	o.latest = j.cancel
}

func (o *Orchestrator) process(j *job) {
	defer j.cancel()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Worker recovered from panic")
			o.deps.Display.Append(conversation.SystemError, fmt.Sprintf("Error: %v", r))
		}
	}()

	if j.capture {
		o.listen(j)
		return
	}
	defer o.pending.Add(-1)
	o.runTurn(j)
}

func (o *Orchestrator) listen(j *job) {
	defer o.listening.Store(false)

	log.Debug().Msg("Listening")
	text, err := o.deps.Capture.Capture(j.ctx)
	switch {
	case j.ctx.Err() != nil:
		return
	case errors.Is(err, listen.ErrSilence):
		log.Debug().Msg("No speech recognized")
		return
	case err != nil:
		log.Warn().Err(err).Msg("Speech recognition failed")
		o.deps.Display.Append(conversation.SystemError, "Speech recognition unavailable: "+err.Error())
		return
	}

	// The capture already holds this worker; run the turn here instead of
	// queueing it behind other work. An accepted capture still completes
	// after Close; only cancellation of j.ctx stops it.
	turn, err := o.prepare(j.ctx, text)
	if err != nil {
		log.Debug().Err(err).Msg("Recognized utterance not dispatched")
		return
	}
	o.mu.Lock()
	o.track(turn)
	o.mu.Unlock()

	defer o.pending.Add(-1)
	defer turn.cancel()
	o.runTurn(turn)
}

func (o *Orchestrator) runTurn(j *job) {
	req := j.req
	logger := turnLogger(req)

	if j.ctx.Err() != nil {
		logger.Debug().Msg("Turn canceled before start")
		return
	}

	transition(logger, StateAwaitingReply)
	started := time.Now()
	ctx, cancel := context.WithTimeout(j.ctx, o.opts.Timeout)
	reply, err := o.deps.LLM.Complete(ctx, req.Prompt, req.Text)
	cancel()

	if j.ctx.Err() != nil {
		logger.Debug().Msg("Turn canceled")
		return
	}
	if err != nil {
		o.deps.Display.Append(conversation.SystemError, "Error: "+err.Error())
		logger.Warn().Err(err).Str("state", string(StateFailed)).Msg("Turn failed")
		return
	}
	logger.Debug().Dur("elapsed", time.Since(started)).Msg("Reply received")

	o.deps.Display.Append(conversation.Agent, reply)

	if o.deps.Speech == nil {
		transition(logger, StateIdle)
		return
	}

	transition(logger, StateSpeaking)
	if err := o.deps.Speech.Speak(j.ctx, reply, req.Voice); err != nil {
		if j.ctx.Err() != nil {
			return
		}
		o.deps.Display.Append(conversation.SystemError, "Speech unavailable: "+err.Error())
		logger.Warn().Err(err).Msg("Speech synthesis failed")
	}
	transition(logger, StateIdle)
}

func turnLogger(req *PendingRequest) zerolog.Logger {
	return log.With().
		Str("turn", req.ID.String()).
		Str("scenario", req.Scenario).
		Str("voice", req.Voice).
		Logger()
}

func transition(logger zerolog.Logger, state State) {
	logger.Debug().Str("state", string(state)).Msg("Turn state")
}
