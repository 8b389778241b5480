package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/LefterisXris/brew-bean-app/internal/clock"
	"github.com/LefterisXris/brew-bean-app/internal/coffee"
)

// ErrDeclined matches every simulated decline.
var ErrDeclined = errors.New("payment declined")

type DeclinedError struct {
	Method coffee.PaymentMethod
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("%s payment declined", e.Method)
}

func (e *DeclinedError) Is(target error) bool { return target == ErrDeclined }

// Notifier receives human-readable progress messages.
type Notifier func(message string)

// Random is the source of simulated outcomes. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
	Intn(n int) int
}

type Config struct {
	// FailureRate is the probability in [0,1] that a payment is declined.
	FailureRate float64
	Latency     map[coffee.PaymentMethod]time.Duration
}

func DefaultConfig() Config {
	return Config{
		FailureRate: 0.05,
		Latency: map[coffee.PaymentMethod]time.Duration{
			coffee.PaymentCash:       500 * time.Millisecond,
			coffee.PaymentGooglePay:  time.Second,
			coffee.PaymentApplePay:   time.Second,
			coffee.PaymentCreditCard: 2 * time.Second,
		},
	}
}

// Simulator is a mock transaction processor: it waits a fixed per-method
// latency, then declines with probability FailureRate.
type Simulator struct {
	cfg    Config
	clock  clock.Clock
	logger *slog.Logger

	mu   sync.Mutex // guards rand; *rand.Rand is not safe for concurrent use
	rand Random
}

type Option func(*Simulator)

func WithClock(c clock.Clock) Option { return func(s *Simulator) { s.clock = c } }

func WithRandom(r Random) Option { return func(s *Simulator) { s.rand = r } }

func WithLogger(l *slog.Logger) Option { return func(s *Simulator) { s.logger = l } }

func NewSimulator(cfg Config, opts ...Option) *Simulator {
	s := &Simulator{
		cfg:    cfg,
		clock:  clock.Real(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rand == nil {
		s.rand = rand.New(rand.NewSource(s.clock.Now().UnixNano()))
	}
	return s
}

// ProcessPayment blocks for the method's latency and reports the outcome.
// notify, when non-nil, is called once before waiting.
func (s *Simulator) ProcessPayment(ctx context.Context, method coffee.PaymentMethod, notify Notifier) (coffee.PaymentInfo, error) {
	if !method.Valid() {
		return coffee.PaymentInfo{}, fmt.Errorf("process payment: unknown method %q", method)
	}

	if notify != nil {
		notify(fmt.Sprintf("Processing %s payment...", method.Label()))
	}
	s.logger.DebugContext(ctx, "payment started", "method", method)

	select {
	case <-s.clock.After(s.latency(method)):
	case <-ctx.Done():
		return coffee.PaymentInfo{}, fmt.Errorf("process payment: %w", ctx.Err())
	}

	s.mu.Lock()
	declined := s.rand.Float64() < s.cfg.FailureRate
	var suffix string
	if !declined {
		suffix = s.randomSuffix(9)
	}
	s.mu.Unlock()

	if declined {
		s.logger.InfoContext(ctx, "payment declined", "method", method)
		return coffee.PaymentInfo{}, &DeclinedError{Method: method}
	}

	info := coffee.PaymentInfo{
		Method:        method,
		Status:        coffee.PaymentCompleted,
		TransactionID: "TXN-" + strconv.FormatInt(s.clock.Now().UnixMilli(), 10) + "-" + suffix,
	}
	s.logger.InfoContext(ctx, "payment completed", "method", method, "transaction_id", info.TransactionID)
	return info, nil
}

func (s *Simulator) latency(method coffee.PaymentMethod) time.Duration {
	if d, ok := s.cfg.Latency[method]; ok {
		return d
	}
	return time.Second
}

const suffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// randomSuffix must be called with s.mu held.
func (s *Simulator) randomSuffix(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(suffixAlphabet[s.rand.Intn(len(suffixAlphabet))])
	}
	return b.String()
}
