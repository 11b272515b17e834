package statesync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/neubot/nbwatch/internal/logger"
	"github.com/neubot/nbwatch/internal/state"
	"github.com/neubot/nbwatch/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Fetcher issues one state request carrying the given cursor.
type Fetcher interface {
	Fetch(ctx context.Context, cursor string) ([]byte, error)
}

// Renderer is the display surface. Both calls happen on the loop
// goroutine, one after the other, for every good response.
type Renderer interface {
	// RenderDaemonState shows whether the agent runs and, if it does, the
	// ordered activity list with the current entry marked.
	RenderDaemonState(active bool, activities []state.Activity)
	// RenderTestDetail shows the current or latest test. It is not called
	// when the response has no test section, so the previous detail stays.
	RenderTestDetail(test *state.Test, active bool)
}

// FailureReporter is an optional Renderer extension. Renderers that
// implement it are told about every failed poll before the retry wait.
type FailureReporter interface {
	PollFailed(err error, retryIn time.Duration)
}

// Phase is where the loop currently is.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseWaiting
	PhaseRendering
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWaiting:
		return "waiting"
	case PhaseRendering:
		return "rendering"
	default:
		return "unknown"
	}
}

// DefaultMinLongPoll is how long a request must have been outstanding for
// its timeout to count as an expired long poll rather than a failure.
const DefaultMinLongPoll = time.Second

// ErrMalformedDocument wraps responses that could not be parsed at all.
var ErrMalformedDocument = errors.New("malformed state document")

// Syncer runs the long-poll loop.
type Syncer struct {
	fetcher  Fetcher
	renderer Renderer
	parser   *state.Parser
	log      logger.Logger
	retry    RetryPolicy

	// minLongPoll separates expired long polls from requests that time
	// out almost at once.
	minLongPoll time.Duration

	// pause sleeps between failed polls and now reads the clock; tests
	// replace both.
	pause func(ctx context.Context, d time.Duration) error
	now   func() time.Time

	mu     sync.Mutex
	cursor string
	phase  Phase
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLogger sets the logger for poll failures and parser anomalies.
func WithLogger(l logger.Logger) Option {
	return func(s *Syncer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *Syncer) {
		s.retry = p
	}
}

// WithMinLongPoll overrides DefaultMinLongPoll. A request that times out
// sooner than d is treated as a failed poll and backs off.
func WithMinLongPoll(d time.Duration) Option {
	return func(s *Syncer) {
		if d >= 0 {
			s.minLongPoll = d
		}
	}
}

// WithCursor starts the loop from a cursor other than state.InitialCursor.
func WithCursor(cursor string) Option {
	return func(s *Syncer) {
		if cursor != "" {
			s.cursor = cursor
		}
	}
}

// New creates an idle Syncer positioned at state.InitialCursor.
func New(fetcher Fetcher, renderer Renderer, opts ...Option) *Syncer {
	s := &Syncer{
		fetcher:     fetcher,
		renderer:    renderer,
		log:         logger.Noop(),
		retry:       DefaultRetryPolicy(),
		minLongPoll: DefaultMinLongPoll,
		pause:       sleep,
		now:         time.Now,
		cursor:      state.InitialCursor,
		phase:       PhaseIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.parser = state.NewParser(s.log)
	return s
}

// Cursor returns the cursor the next request will carry.
func (s *Syncer) Cursor() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Phase returns the current loop phase.
func (s *Syncer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Syncer) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// Run polls until ctx is cancelled and returns ctx's error. The first
// request carries the initial cursor.
func (s *Syncer) Run(ctx context.Context) error {
	b := s.retry.newBackOff()
	failures := 0

	defer s.setPhase(PhaseIdle)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		started := s.now()
		err := s.Poll(ctx)
		switch {
		case err == nil:
			if failures > 0 {
				s.log.Info("state updates resumed after %d failed polls", failures)
			}
			failures = 0
			b.Reset()
			continue
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, context.DeadlineExceeded) && s.now().Sub(started) >= s.minLongPoll:
			s.log.Debug("long poll at cursor %s outlived the request timeout, polling again", s.Cursor())
			continue
		}

		failures++
		delay := b.NextBackOff()
		if delay == backoff.Stop {
			delay = s.retry.Max
		}
		s.log.Warn("poll %d failed: %v (retrying in %s)", failures, err, delay)
		if fr, ok := s.renderer.(FailureReporter); ok {
			fr.PollFailed(err, delay)
		}

		s.setPhase(PhaseIdle)
		if err := s.pause(ctx, delay); err != nil {
			return err
		}
	}
}

// Poll performs exactly one cycle: request at the current cursor, then
// OnResponse. The cursor is left untouched when either step fails.
func (s *Syncer) Poll(ctx context.Context) error {
	cursor := s.Cursor()
	s.setPhase(PhaseWaiting)

	doc, err := s.fetcher.Fetch(ctx, cursor)
	if err != nil {
		s.setPhase(PhaseIdle)
		return fmt.Errorf("state request at cursor %s: %w", cursor, err)
	}
	return s.OnResponse(ctx, doc)
}

// OnResponse parses doc, renders it and advances the cursor. A document
// that cannot be parsed renders nothing and returns ErrMalformedDocument.
func (s *Syncer) OnResponse(ctx context.Context, doc []byte) error {
	snap, err := s.parser.Parse(doc)
	if err != nil {
		s.setPhase(PhaseIdle)
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	s.setPhase(PhaseRendering)
	_, span := telemetry.StartSpan(ctx, "statesync.render")
	span.SetAttributes(
		telemetry.Cursor(snap.Cursor),
		attribute.Bool("nbwatch.daemon_active", snap.DaemonActive),
		attribute.Int("nbwatch.activities", len(snap.Activities)),
		attribute.Bool("nbwatch.has_test", snap.Test != nil),
	)

	s.renderer.RenderDaemonState(snap.DaemonActive, snap.Activities)
	if snap.Test != nil {
		s.renderer.RenderTestDetail(snap.Test, snap.DaemonActive)
	}
	span.End()

	s.mu.Lock()
	if snap.Cursor != "" {
		s.cursor = snap.Cursor
	} else {
		s.log.Debug("state document has no cursor, keeping %s", s.cursor)
	}
	s.phase = PhaseIdle
	s.mu.Unlock()

	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
