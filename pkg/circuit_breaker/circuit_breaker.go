package circuit_breaker

import (
	"errors"
	"sync"
	"time"
)

type State uint8

const (
	Closed State = iota + 1
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	// Window is the number of most recent calls the failure ratio is computed over.
	Window int `envconfig:"CB_WINDOW" default:"10"`
	// FailureRatio opens the breaker once failures/Window reaches it.
	FailureRatio float64 `envconfig:"CB_FAILURE_RATIO" default:"0.5"`
	// Cooldown is how long the breaker stays open before letting a probe through.
	Cooldown time.Duration `envconfig:"CB_COOLDOWN" default:"30s"`
	// Recovery is the number of consecutive half-open successes needed to close.
	Recovery int `envconfig:"CB_RECOVERY" default:"3"`
}

type CircuitBreaker interface {
	Call(fn func() error) error
	State() State
}

type breaker struct {
	mu  sync.Mutex
	cfg Config
	now func() time.Time

	state    State
	openedAt time.Time
	// ring of recent outcomes, true = failed
	outcomes  []bool
	pos       int
	successes int
}

func New(cfg Config) CircuitBreaker {
	return newBreaker(cfg, time.Now)
}

func newBreaker(cfg Config, now func() time.Time) *breaker {
	if cfg.Window <= 0 {
		cfg.Window = 10
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = 0.5
	}
	if cfg.Recovery <= 0 {
		cfg.Recovery = 1
	}
	return &breaker{
		cfg:      cfg,
		now:      now,
		state:    Closed,
		outcomes: make([]bool, cfg.Window),
	}
}

func (b *breaker) Call(fn func() error) error {
	if !b.allow() {
		return ErrOpen
	}
	err := fn()
	b.record(err != nil)
	return err
}

func (b *breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Open {
		return true
	}
	if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
		return false
	}
	b.state = HalfOpen
	b.successes = 0
	return true
}

func (b *breaker) record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == HalfOpen {
		if failed {
			b.trip()
			return
		}
		b.successes++
		if b.successes >= b.cfg.Recovery {
			b.reset()
		}
		return
	}

	b.outcomes[b.pos] = failed
	b.pos = (b.pos + 1) % len(b.outcomes)

	fails := 0
	for _, f := range b.outcomes {
		if f {
			fails++
		}
	}
	if float64(fails)/float64(len(b.outcomes)) >= b.cfg.FailureRatio {
		b.trip()
	}
}

func (b *breaker) trip() {
	b.state = Open
	b.openedAt = b.now()
	b.successes = 0
}

func (b *breaker) reset() {
	for i := range b.outcomes {
		b.outcomes[i] = false
	}
	b.pos = 0
	b.successes = 0
	b.state = Closed
}
