package admin

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/brainup-app/brainup/go/clients/quiz_api_client"
	"github.com/brainup-app/brainup/go/internal/quiz/events"
	"github.com/brainup-app/brainup/go/internal/quiz/metrics"
	"github.com/brainup-app/brainup/go/internal/quiz/roster"
	"github.com/brainup-app/brainup/go/internal/quiz/stream"
)

// highlightFlash is how long a broadcast question number stays highlighted
// on the dashboard.
const highlightFlash = 1200 * time.Millisecond

// Session is the administrator's live view: it applies presence events to
// the roster, tracks the last broadcast question, and triggers broadcasts.
type Session struct {
	api   *quiz_api_client.QuizAPIClient
	store *roster.Store
	clock clockwork.Clock

	baseDelay time.Duration
	maxDelay  time.Duration
	onChange  func()

	mu          sync.Mutex
	channel     *stream.Channel
	adminID     string
	highlighted int
	flashSeq    int
	flashTimer  clockwork.Timer
	flashCancel chan struct{}
}

// Option configures a Session.
type Option func(*Session)

func WithClock(clock clockwork.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// WithBackoff overrides the stream reconnection delays.
func WithBackoff(base, max time.Duration) Option {
	return func(s *Session) {
		s.baseDelay = base
		s.maxDelay = max
	}
}

// WithOnChange registers a redraw hook invoked after every applied event.
func WithOnChange(fn func()) Option {
	return func(s *Session) { s.onChange = fn }
}

func NewSession(api *quiz_api_client.QuizAPIClient, opts ...Option) *Session {
	s := &Session{
		api:       api,
		store:     roster.NewStore(),
		clock:     clockwork.NewRealClock(),
		baseDelay: stream.DefaultBaseDelay,
		maxDelay:  stream.DefaultMaxDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the admin event stream. It does not block; events flow into
// the roster as they arrive.
func (s *Session) Start(ctx context.Context) {
	cfg := stream.DefaultConfig("admin", s.api.AdminStreamURL(), events.AdminNames()...)
	cfg.BaseDelay = s.baseDelay
	cfg.MaxDelay = s.maxDelay

	channel := stream.NewChannel(cfg, s.handleEvent, stream.WithClock(s.clock))

	s.mu.Lock()
	s.channel = channel
	s.mu.Unlock()

	channel.Open(ctx)
}

// Close tears down the stream subscription.
func (s *Session) Close() {
	s.mu.Lock()
	channel := s.channel
	s.mu.Unlock()

	if channel != nil {
		channel.Close()
	}
}

func (s *Session) handleEvent(ev stream.Event) {
	name := events.Name(ev.Name)
	payload, err := events.ParsePayload(name, ev.Data)
	if err != nil {
		metrics.DroppedPayloads.WithLabelValues("admin", ev.Name).Inc()
		log.Warn().Err(err).Str("event", ev.Name).Msg("dropping malformed event payload")
		return
	}

	switch p := payload.(type) {
	case events.ConnectedPayload:
		s.mu.Lock()
		s.adminID = p.SessionID
		s.mu.Unlock()
		log.Info().Str("admin_id", p.SessionID).Msg("admin stream handshake")

	case events.PlayerPayload:
		if name == events.PlayerJoined {
			active := true
			s.store.Upsert(roster.PlayerPatch{
				ID:     p.ID,
				Name:   p.Name,
				Score:  p.Score,
				Active: &active,
			})
		} else {
			s.store.MarkInactive(p.ID)
		}

	case events.QuestionChangedPayload:
		s.highlight(p.QuestionNumber)
	}

	s.changed()
}

// ChangeQuestion asks the service to broadcast question n to every
// participant.
func (s *Session) ChangeQuestion(ctx context.Context, questionNumber int) error {
	if err := s.api.ChangeQuestion(ctx, questionNumber); err != nil {
		return fmt.Errorf("trigger question %d: %w", questionNumber, err)
	}
	s.highlight(questionNumber)
	s.changed()
	return nil
}

// highlight marks a question number on the dashboard and clears it after
// the flash window. A newer highlight supersedes the pending clear: its
// cancel channel releases the superseded goroutine, whose stopped timer
// would otherwise never fire.
func (s *Session) highlight(questionNumber int) {
	s.mu.Lock()
	s.highlighted = questionNumber
	s.flashSeq++
	seq := s.flashSeq

	if s.flashTimer != nil {
		s.flashTimer.Stop()
	}
	if s.flashCancel != nil {
		close(s.flashCancel)
	}
	timer := s.clock.NewTimer(highlightFlash)
	cancel := make(chan struct{})
	s.flashTimer = timer
	s.flashCancel = cancel
	s.mu.Unlock()

	go func() {
		select {
		case <-timer.Chan():
		case <-cancel:
			return
		}
		s.mu.Lock()
		if s.flashSeq == seq {
			s.highlighted = 0
		}
		s.mu.Unlock()
		s.changed()
	}()
}

// AddTestPlayer inserts a synthetic participant into the local roster. Debug
// helper; nothing is sent to the service.
func (s *Session) AddTestPlayer() roster.Player {
	name := fmt.Sprintf("Test Player %s", s.clock.Now().Format("15:04:05"))
	score := rand.Intn(10)
	active := true
	p := s.store.Upsert(roster.PlayerPatch{
		ID:     "test-" + uuid.New().String()[:8],
		Name:   &name,
		Score:  &score,
		Active: &active,
	})
	s.changed()
	return p
}

// SimulateExit marks a random active participant inactive. Debug helper.
func (s *Session) SimulateExit() (roster.Player, bool) {
	actives := make([]roster.Player, 0)
	for _, p := range s.store.Players() {
		if p.Active {
			actives = append(actives, p)
		}
	}
	if len(actives) == 0 {
		return roster.Player{}, false
	}
	picked := actives[rand.Intn(len(actives))]
	s.store.MarkInactive(picked.ID)
	s.changed()
	picked.Active = false
	return picked, true
}

// Roster exposes the underlying store for read-only queries.
func (s *Session) Roster() *roster.Store {
	return s.store
}

// DashboardSnapshot is what the dashboard renders.
type DashboardSnapshot struct {
	AdminID      string
	StreamState  stream.State
	Highlighted  int
	Players      []roster.Player // ranked
	Total        int
	Online       int
	AverageScore float64
}

func (s *Session) Snapshot() DashboardSnapshot {
	s.mu.Lock()
	adminID := s.adminID
	highlighted := s.highlighted
	channel := s.channel
	s.mu.Unlock()

	snap := DashboardSnapshot{
		AdminID:      adminID,
		Highlighted:  highlighted,
		Players:      s.store.Ranking(),
		Total:        s.store.Len(),
		Online:       s.store.OnlineCount(),
		AverageScore: s.store.AverageScore(),
		StreamState:  stream.StateIdle,
	}
	if channel != nil {
		snap.StreamState = channel.State()
	}
	return snap
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
