package round

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/brainup-app/brainup/go/internal/quiz/metrics"
	"github.com/brainup-app/brainup/go/internal/quiz/questions"
)

// Phase is the lifecycle state of the current round.
type Phase string

const (
	PhaseWaiting     Phase = "waiting"
	PhaseActive      Phase = "active"
	PhaseAnswered    Phase = "answered"
	PhaseExpired     Phase = "expired"
	PhaseResultShown Phase = "result"
)

// Outcome is how a finished round ended. An empty-handed expiry is always
// Expired, never Incorrect, and a submitted round without a known answer key
// is Answered.
type Outcome string

const (
	OutcomePending   Outcome = ""
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	OutcomeAnswered  Outcome = "answered"
	OutcomeExpired   Outcome = "expired"
)

// DefaultDurationSec is the fixed round length in seconds.
const DefaultDurationSec = 10

var (
	ErrNotActive       = errors.New("round is not active")
	ErrNoSelection     = errors.New("no alternative selected")
	ErrTimeExpired     = errors.New("round time has expired")
	ErrSubmitInFlight  = errors.New("a submission is already in flight")
	ErrRoundSuperseded = errors.New("round was superseded before the submission completed")
	ErrNoResult        = errors.New("no result to acknowledge")
	ErrBadAlternative  = errors.New("alternative index out of range")
)

// QuestionResolver resolves a broadcast sequence number into a question.
type QuestionResolver interface {
	Resolve(ctx context.Context, number int) questions.Question
}

// AnswerSubmitter delivers the participant's answer to the quiz service.
type AnswerSubmitter interface {
	SubmitAnswer(ctx context.Context, questionID, selectedAnswer, timeUsedSec int) error
}

// Snapshot is a read-only copy of the round for presentation.
type Snapshot struct {
	Phase    Phase
	Question *questions.Question
	TimeLeft int // clamped, never negative
	Selected *int
	Outcome  Outcome
}

// Controller owns the question round state machine: current question,
// countdown, answer state and result. It is driven by question-change events
// and by its own 1-second tick, and it self-terminates on timeout without
// waiting for the server.
//
// Every round carries a token captured at start; stale ticks, stale question
// fetches and stale submission acknowledgments are discarded by comparing
// tokens, so a new question can preempt any phase without corrupting state.
type Controller struct {
	clock     clockwork.Clock
	resolver  QuestionResolver
	submitter AnswerSubmitter
	duration  int
	onChange  func(Snapshot)

	mu         sync.Mutex
	phase      Phase
	question   *questions.Question
	timeLeft   int
	selected   *int
	outcome    Outcome
	roundID    uuid.UUID
	tickStop   chan struct{}
	submitting bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock substitutes the countdown clock.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithDuration overrides the round length in seconds.
func WithDuration(seconds int) Option {
	return func(c *Controller) {
		if seconds > 0 {
			c.duration = seconds
		}
	}
}

// WithOnChange registers a callback invoked after every observable
// transition with a fresh snapshot. It runs with the controller unlocked.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = fn }
}

func NewController(resolver QuestionResolver, submitter AnswerSubmitter, opts ...Option) *Controller {
	c := &Controller{
		clock:     clockwork.NewRealClock(),
		resolver:  resolver,
		submitter: submitter,
		duration:  DefaultDurationSec,
		phase:     PhaseWaiting,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.timeLeft = c.duration
	return c
}

// HandleQuestionChanged starts a round for the broadcast question number.
// It always wins: whatever phase the current round is in, its timer is
// cancelled, its in-flight operations are invalidated, and the old round's
// state is cleared under the same lock that installs the new token, so the
// superseded round can not accept a selection or submission while the new
// question is still resolving. Resolution never fails (see
// questions.Resolver), so a fresh Active round always follows.
func (c *Controller) HandleQuestionChanged(ctx context.Context, number int) {
	c.mu.Lock()
	token := uuid.New()
	c.roundID = token
	c.stopTickerLocked()
	c.phase = PhaseWaiting
	c.question = nil
	c.timeLeft = c.duration
	c.selected = nil
	c.outcome = OutcomePending
	c.mu.Unlock()

	log.Info().Int("question", number).Msg("question changed, starting round")

	q := c.resolver.Resolve(ctx, number)
	c.beginRound(token, q)
}

func (c *Controller) beginRound(token uuid.UUID, q questions.Question) {
	c.mu.Lock()
	if c.roundID != token {
		c.mu.Unlock()
		log.Debug().Int("question", q.ID).Msg("discarding question fetch for superseded round")
		return
	}

	c.phase = PhaseActive
	c.question = &q
	c.timeLeft = c.duration
	c.selected = nil
	c.outcome = OutcomePending
	c.submitting = false

	stop := make(chan struct{})
	c.tickStop = stop
	c.mu.Unlock()

	go c.runTicker(token, stop)
	c.notify()
}

// runTicker drives the 1-second countdown for one round. Starting a new
// round closes the previous round's stop channel first, so two countdowns
// never run concurrently.
func (c *Controller) runTicker(token uuid.UUID, stop chan struct{}) {
	ticker := c.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			if done := c.tick(token); done {
				return
			}
		}
	}
}

// tick decrements the countdown. At zero the round expires: exactly one of
// answered/expired happens per round, and a tie at the expiry instant goes
// to expiry.
func (c *Controller) tick(token uuid.UUID) bool {
	c.mu.Lock()
	if c.roundID != token || c.phase != PhaseActive {
		c.mu.Unlock()
		return true
	}

	c.timeLeft--
	if c.timeLeft > 0 {
		c.mu.Unlock()
		c.notify()
		return false
	}

	c.timeLeft = 0
	c.phase = PhaseExpired
	c.outcome = OutcomeExpired
	c.stopTickerLocked()
	c.mu.Unlock()

	log.Info().Msg("round expired without submission")
	metrics.RoundOutcomes.WithLabelValues(string(OutcomeExpired)).Inc()
	c.notify()

	c.mu.Lock()
	if c.roundID == token && c.phase == PhaseExpired {
		c.phase = PhaseResultShown
	}
	c.mu.Unlock()
	c.notify()
	return true
}

// Select records a provisional alternative choice. It has no effect once the
// round is answered, expired, or out of time.
func (c *Controller) Select(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseActive || c.timeLeft <= 0 {
		return ErrNotActive
	}
	if c.question == nil || index < 0 || index >= len(c.question.Alternatives) {
		return ErrBadAlternative
	}
	c.selected = &index
	return nil
}

// Submit sends the current selection to the quiz service. It is valid only
// once, while the round is Active with time remaining. A service failure
// leaves the round Active so the user can retry within the window; an
// acknowledgment that arrives after expiry or preemption is discarded.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhaseActive {
		c.mu.Unlock()
		return ErrNotActive
	}
	if c.timeLeft <= 0 {
		c.mu.Unlock()
		return ErrTimeExpired
	}
	if c.selected == nil {
		c.mu.Unlock()
		return ErrNoSelection
	}
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	token := c.roundID
	questionID := c.question.ID
	selected := *c.selected
	timeUsed := c.duration - c.timeLeft
	c.submitting = true
	c.mu.Unlock()

	err := c.submitter.SubmitAnswer(ctx, questionID, selected, timeUsed)

	c.mu.Lock()
	if c.roundID == token {
		c.submitting = false
	}

	if err != nil {
		c.mu.Unlock()
		metrics.AnswerSubmissions.WithLabelValues("failure").Inc()
		return fmt.Errorf("submit answer: %w", err)
	}

	if c.roundID != token || c.phase != PhaseActive {
		c.mu.Unlock()
		log.Debug().Int("question", questionID).Msg("discarding submission ack for superseded round")
		metrics.AnswerSubmissions.WithLabelValues("stale").Inc()
		return ErrRoundSuperseded
	}

	c.phase = PhaseAnswered
	c.outcome = c.computeOutcomeLocked(selected)
	c.stopTickerLocked()
	outcome := c.outcome
	c.mu.Unlock()

	log.Info().
		Int("question", questionID).
		Int("selected", selected).
		Str("outcome", string(outcome)).
		Msg("answer submitted")
	metrics.AnswerSubmissions.WithLabelValues("success").Inc()
	metrics.RoundOutcomes.WithLabelValues(string(outcome)).Inc()
	c.notify()

	c.mu.Lock()
	if c.roundID == token && c.phase == PhaseAnswered {
		c.phase = PhaseResultShown
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

// Acknowledge clears a shown result and returns to Waiting. The controller
// never auto-advances past a result.
func (c *Controller) Acknowledge() error {
	c.mu.Lock()
	if c.phase != PhaseResultShown {
		c.mu.Unlock()
		return ErrNoResult
	}
	c.roundID = uuid.Nil
	c.stopTickerLocked()
	c.phase = PhaseWaiting
	c.question = nil
	c.selected = nil
	c.outcome = OutcomePending
	c.timeLeft = c.duration
	c.mu.Unlock()

	c.notify()
	return nil
}

// Snapshot returns a copy of the round state for presentation. The displayed
// time is clamped at zero.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:    c.phase,
		TimeLeft: c.timeLeft,
		Outcome:  c.outcome,
	}
	if snap.TimeLeft < 0 {
		snap.TimeLeft = 0
	}
	if c.question != nil {
		q := *c.question
		snap.Question = &q
	}
	if c.selected != nil {
		sel := *c.selected
		snap.Selected = &sel
	}
	return snap
}

// computeOutcomeLocked grades a submitted selection. With no answer key the
// round is simply Answered; grading is the server's business then.
func (c *Controller) computeOutcomeLocked(selected int) Outcome {
	if c.question == nil || c.question.CorrectAnswer == nil {
		return OutcomeAnswered
	}
	if selected == *c.question.CorrectAnswer {
		return OutcomeCorrect
	}
	return OutcomeIncorrect
}

func (c *Controller) stopTickerLocked() {
	if c.tickStop != nil {
		close(c.tickStop)
		c.tickStop = nil
	}
}

func (c *Controller) notify() {
	if c.onChange == nil {
		return
	}
	c.mu.Lock()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.onChange(snap)
}
