package stream

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/brainup-app/brainup/go/internal/quiz/metrics"
)

// State is the connection lifecycle state of a Channel. It is owned
// exclusively by the channel; consumers only see decoded events.
type State string

const (
	StateIdle               State = "idle"
	StateConnecting         State = "connecting"
	StateOpen               State = "open"
	StateErroring           State = "erroring"
	StateReconnectScheduled State = "reconnect-scheduled"
	StateClosed             State = "closed"
)

// Event is one named event delivered off the stream. Data is the raw payload;
// typed decoding happens in the events package so a malformed payload can be
// dropped without touching the connection.
type Event struct {
	Name string
	Data []byte
}

// Handler receives decoded events. It is called from the channel's read
// goroutine, so it must not block for long.
type Handler func(Event)

// Config holds the subscription parameters for one Channel.
type Config struct {
	Name       string // label for logs and metrics, e.g. "admin" or "player"
	URL        string
	EventNames []string // named events to deliver; empty means all
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Client     *http.Client
}

// DefaultConfig returns a subscription config with the standard backoff
// policy. The HTTP client carries no timeout: the response body is a
// long-lived stream.
func DefaultConfig(name, url string, eventNames ...string) Config {
	return Config{
		Name:       name,
		URL:        url,
		EventNames: eventNames,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
		Client:     &http.Client{},
	}
}

// Channel maintains one long-lived server-push subscription: it connects,
// dispatches named events to the handler, and on any transport error tears
// the connection down and reconnects with capped exponential backoff. At most
// one reconnection timer is pending at a time, and Close cancels it.
//
// Callers never see connection errors; they observe decoded events and, if
// they care, State().
type Channel struct {
	id      string
	cfg     Config
	clock   clockwork.Clock
	handler Handler
	wanted  map[string]bool

	mu             sync.Mutex
	state          State
	attempt        int
	reconnectTimer clockwork.Timer
	cancel         context.CancelFunc
	done           chan struct{}
	closed         bool
}

// Option configures a Channel.
type Option func(*Channel)

// WithClock substitutes the clock used for reconnection timers.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Channel) {
		c.clock = clock
	}
}

func NewChannel(cfg Config, handler Handler, opts ...Option) *Channel {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}

	c := &Channel{
		id:      uuid.New().String()[:8],
		cfg:     cfg,
		clock:   clockwork.NewRealClock(),
		handler: handler,
		state:   StateIdle,
	}
	if len(cfg.EventNames) > 0 {
		c.wanted = make(map[string]bool, len(cfg.EventNames))
		for _, name := range cfg.EventNames {
			c.wanted[name] = true
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open starts the subscription. It never returns a connection error; failures
// feed the reconnect path. Opening an already-open channel tears down the
// live connection and any pending reconnection timer first. Opening a closed
// channel is a no-op.
func (c *Channel) Open(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		cancel, timer, done := c.cancel, c.reconnectTimer, c.done
		c.cancel = nil
		c.reconnectTimer = nil
		c.mu.Unlock()

		if timer != nil {
			stopAndDrainTimer(timer)
		}
		cancel()
		<-done

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	c.state = StateConnecting
	c.mu.Unlock()

	log.Info().
		Str("stream", c.cfg.Name).
		Str("channel_id", c.id).
		Str("url", c.cfg.URL).
		Msg("opening event stream")

	go c.run(runCtx, done)
}

// Close tears the channel down: it cancels any pending reconnection timer,
// releases the transport, and waits for the read loop to exit, so no events
// are delivered after it returns. Closed is terminal and Close is safe to
// call any number of times.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.state = StateClosed
	cancel, timer, done := c.cancel, c.reconnectTimer, c.done
	c.cancel = nil
	c.reconnectTimer = nil
	c.mu.Unlock()

	if timer != nil {
		stopAndDrainTimer(timer)
	}
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	log.Info().Str("stream", c.cfg.Name).Str("channel_id", c.id).Msg("event stream closed")
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		c.setState(StateConnecting)

		err := c.consume(ctx)
		if ctx.Err() != nil || c.isClosed() {
			return
		}

		c.setState(StateErroring)

		c.mu.Lock()
		delay := Backoff(c.attempt, c.cfg.BaseDelay, c.cfg.MaxDelay)
		attempt := c.attempt
		c.attempt++
		timer := c.clock.NewTimer(delay)
		c.reconnectTimer = timer
		if !c.closed {
			c.state = StateReconnectScheduled
		}
		c.mu.Unlock()

		metrics.StreamReconnects.WithLabelValues(c.cfg.Name).Inc()
		log.Warn().
			Err(err).
			Str("stream", c.cfg.Name).
			Str("channel_id", c.id).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("stream error, reconnect scheduled")

		select {
		case <-timer.Chan():
		case <-ctx.Done():
			stopAndDrainTimer(timer)
			return
		}
	}
}

// consume establishes one connection and reads frames until the transport
// fails or the context is cancelled.
func (c *Channel) consume(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.cfg.Client.Do(req)
	if err != nil {
		return fmt.Errorf("connect stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateOpen
	c.attempt = 0
	c.mu.Unlock()

	log.Info().Str("stream", c.cfg.Name).Str("channel_id", c.id).Msg("event stream connected")

	reader := bufio.NewReader(resp.Body)
	for {
		f, err := readFrame(reader)
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
		if c.wanted != nil && !c.wanted[f.name] {
			log.Debug().Str("stream", c.cfg.Name).Str("event", f.name).Msg("skipping unsubscribed event")
			continue
		}
		metrics.StreamEvents.WithLabelValues(c.cfg.Name, f.name).Inc()
		c.handler(Event{Name: f.name, Data: f.data})
	}
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state = s
}

func (c *Channel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// stopAndDrainTimer safely stops a timer and drains its channel, following
// the pattern from the time.Timer.Stop documentation.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
