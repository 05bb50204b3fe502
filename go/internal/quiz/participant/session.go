package participant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/brainup-app/brainup/go/clients/quiz_api_client"
	"github.com/brainup-app/brainup/go/internal/quiz/events"
	"github.com/brainup-app/brainup/go/internal/quiz/identity"
	"github.com/brainup-app/brainup/go/internal/quiz/metrics"
	"github.com/brainup-app/brainup/go/internal/quiz/questions"
	"github.com/brainup-app/brainup/go/internal/quiz/round"
	"github.com/brainup-app/brainup/go/internal/quiz/stream"
)

// ErrNoIdentity means no participant identifier is available; the caller
// must join first.
var ErrNoIdentity = errors.New("no player identity, join the quiz first")

// Session is one participant's quiz client: identity, the event-stream
// subscription, and the round state machine, wired together.
type Session struct {
	api        *quiz_api_client.QuizAPIClient
	ids        *identity.Store
	clock      clockwork.Clock
	controller *round.Controller

	baseDelay time.Duration
	maxDelay  time.Duration

	mu       sync.Mutex
	channel  *stream.Channel
	playerID string
}

// Option configures a Session.
type Option func(*Session, *[]round.Option)

func WithClock(clock clockwork.Clock) Option {
	return func(s *Session, roundOpts *[]round.Option) {
		s.clock = clock
		*roundOpts = append(*roundOpts, round.WithClock(clock))
	}
}

// WithRoundDuration overrides the round length in seconds.
func WithRoundDuration(seconds int) Option {
	return func(s *Session, roundOpts *[]round.Option) {
		*roundOpts = append(*roundOpts, round.WithDuration(seconds))
	}
}

// WithBackoff overrides the stream reconnection delays.
func WithBackoff(base, max time.Duration) Option {
	return func(s *Session, _ *[]round.Option) {
		s.baseDelay = base
		s.maxDelay = max
	}
}

// WithOnRoundChange registers a redraw hook for round transitions.
func WithOnRoundChange(fn func(round.Snapshot)) Option {
	return func(_ *Session, roundOpts *[]round.Option) {
		*roundOpts = append(*roundOpts, round.WithOnChange(fn))
	}
}

func NewSession(api *quiz_api_client.QuizAPIClient, ids *identity.Store, opts ...Option) *Session {
	s := &Session{
		api:       api,
		ids:       ids,
		clock:     clockwork.NewRealClock(),
		baseDelay: stream.DefaultBaseDelay,
		maxDelay:  stream.DefaultMaxDelay,
	}

	var roundOpts []round.Option
	for _, opt := range opts {
		opt(s, &roundOpts)
	}

	s.controller = round.NewController(questions.NewResolver(api), api, roundOpts...)
	return s
}

// Join starts a quiz session with the given form fields and persists the
// assigned identifier. A join failure is terminal for the attempt; the
// caller stays on the join screen.
func (s *Session) Join(ctx context.Context, fields map[string]string) error {
	resp, err := s.api.Start(ctx, fields)
	if err != nil {
		return fmt.Errorf("join quiz: %w", err)
	}

	s.mu.Lock()
	s.playerID = resp.PlayerID
	s.mu.Unlock()

	if err := s.ids.Save(resp.PlayerID); err != nil {
		log.Warn().Err(err).Msg("could not persist player id")
	}
	log.Info().Str("player_id", resp.PlayerID).Msg("joined quiz")
	return nil
}

// ResolveIdentity establishes the participant identifier from an explicit
// override or the persisted store.
func (s *Session) ResolveIdentity(override string) (string, error) {
	if override != "" {
		s.mu.Lock()
		s.playerID = override
		s.mu.Unlock()
		return override, nil
	}

	stored, err := s.ids.Load()
	if err != nil {
		return "", err
	}
	if stored == "" {
		return "", ErrNoIdentity
	}

	s.mu.Lock()
	s.playerID = stored
	s.mu.Unlock()
	return stored, nil
}

// PlayerID returns the current participant identifier, "" when not joined.
func (s *Session) PlayerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerID
}

// Start opens the participant event stream. Question-change events drive the
// round controller; the controller's own countdown handles expiry locally.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	playerID := s.playerID
	s.mu.Unlock()

	if playerID == "" {
		return ErrNoIdentity
	}

	cfg := stream.DefaultConfig("player", s.api.PlayerStreamURL(playerID), events.PlayerNames()...)
	cfg.BaseDelay = s.baseDelay
	cfg.MaxDelay = s.maxDelay

	channel := stream.NewChannel(cfg, func(ev stream.Event) {
		s.handleEvent(ctx, ev)
	}, stream.WithClock(s.clock))

	s.mu.Lock()
	s.channel = channel
	s.mu.Unlock()

	channel.Open(ctx)
	return nil
}

func (s *Session) handleEvent(ctx context.Context, ev stream.Event) {
	name := events.Name(ev.Name)
	payload, err := events.ParsePayload(name, ev.Data)
	if err != nil {
		metrics.DroppedPayloads.WithLabelValues("player", ev.Name).Inc()
		log.Warn().Err(err).Str("event", ev.Name).Msg("dropping malformed event payload")
		return
	}

	switch p := payload.(type) {
	case events.ConnectedPayload:
		log.Info().Str("session_id", p.SessionID).Msg("player stream handshake")
	case events.QuestionChangedPayload:
		s.controller.HandleQuestionChanged(ctx, p.QuestionNumber)
	}
}

// Select records a provisional alternative choice for the current round.
func (s *Session) Select(index int) error {
	return s.controller.Select(index)
}

// Submit sends the current selection. On failure the round stays Active and
// the user may retry while time remains.
func (s *Session) Submit(ctx context.Context) error {
	return s.controller.Submit(ctx)
}

// Acknowledge dismisses a shown result and returns to waiting.
func (s *Session) Acknowledge() error {
	return s.controller.Acknowledge()
}

// Exit leaves the quiz. On success the persisted identity is cleared and the
// stream is closed; on failure the session stays live and the error is
// surfaced.
func (s *Session) Exit(ctx context.Context) error {
	s.mu.Lock()
	playerID := s.playerID
	s.mu.Unlock()

	if playerID == "" {
		return ErrNoIdentity
	}

	if err := s.api.Exit(ctx, playerID); err != nil {
		return fmt.Errorf("exit quiz: %w", err)
	}

	if err := s.ids.Clear(); err != nil {
		log.Warn().Err(err).Msg("could not clear persisted player id")
	}

	s.mu.Lock()
	s.playerID = ""
	channel := s.channel
	s.channel = nil
	s.mu.Unlock()

	if channel != nil {
		channel.Close()
	}

	log.Info().Str("player_id", playerID).Msg("exited quiz")
	return nil
}

// Close tears down the stream subscription without exiting the room.
func (s *Session) Close() {
	s.mu.Lock()
	channel := s.channel
	s.mu.Unlock()

	if channel != nil {
		channel.Close()
	}
}

// ScreenSnapshot is what the participant screen renders.
type ScreenSnapshot struct {
	PlayerID    string
	StreamState stream.State
	Round       round.Snapshot
}

func (s *Session) Snapshot() ScreenSnapshot {
	s.mu.Lock()
	playerID := s.playerID
	channel := s.channel
	s.mu.Unlock()

	snap := ScreenSnapshot{
		PlayerID:    playerID,
		Round:       s.controller.Snapshot(),
		StreamState: stream.StateIdle,
	}
	if channel != nil {
		snap.StreamState = channel.State()
	}
	return snap
}
