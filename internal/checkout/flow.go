// Package checkout runs an order through payment and submission and keeps
// the status the customer sees while it does.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/LefterisXris/brew-bean-app/internal/broadcast"
	"github.com/LefterisXris/brew-bean-app/internal/clock"
	"github.com/LefterisXris/brew-bean-app/internal/coffee"
	"github.com/LefterisXris/brew-bean-app/internal/events"
	"github.com/LefterisXris/brew-bean-app/internal/metrics"
	"github.com/LefterisXris/brew-bean-app/internal/middleware"
	"github.com/LefterisXris/brew-bean-app/internal/payment"
)

// DefaultResetDelay is how long a success or failure stays visible.
const DefaultResetDelay = 3 * time.Second

const (
	MsgPaymentFailed    = "❌ Payment failed. Please try again."
	MsgSubmissionFailed = "❌ Order submission failed. Please try again."
)

var (
	ErrEmptyBasket          = errors.New("basket is empty")
	ErrMissingCustomerName  = errors.New("customer name is required")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrAlreadyProcessing    = errors.New("an order is already being processed")
)

type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// Status is what the customer sees. Attempt increases every time the flow
// enters processing.
type Status struct {
	State   State               `json:"state"`
	Attempt uint64              `json:"attempt"`
	Message string              `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
	Order   *coffee.Order       `json:"order,omitempty"`
	Payment *coffee.PaymentInfo `json:"payment,omitempty"`
}

type Request struct {
	CustomerName  string
	PaymentMethod coffee.PaymentMethod
}

type Basket interface {
	Items() []coffee.BasketItem
	Clear()
}

type PaymentProcessor interface {
	ProcessPayment(ctx context.Context, method coffee.PaymentMethod, notify payment.Notifier) (coffee.PaymentInfo, error)
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, o coffee.NewOrder) (coffee.Order, error)
}

type Flow struct {
	basket     Basket
	payments   PaymentProcessor
	orders     OrderPlacer
	publisher  events.Publisher
	clock      clock.Clock
	logger     *slog.Logger
	metrics    *metrics.Metrics
	resetDelay time.Duration

	// emitMu keeps status changes and their broadcasts in the same order.
	emitMu sync.Mutex
	mu     sync.Mutex
	status Status
	gen    uint64
	reset  clock.Timer
	feed   broadcast.Feed[Status]

	wg sync.WaitGroup
}

type Option func(*Flow)

func WithClock(c clock.Clock) Option { return func(f *Flow) { f.clock = c } }

func WithLogger(l *slog.Logger) Option { return func(f *Flow) { f.logger = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(f *Flow) { f.metrics = m } }

func WithPublisher(p events.Publisher) Option { return func(f *Flow) { f.publisher = p } }

// WithResetDelay sets how long success and failure stay visible. Values
// <= 0 keep the default.
func WithResetDelay(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.resetDelay = d
		}
	}
}

func NewFlow(b Basket, p PaymentProcessor, o OrderPlacer, opts ...Option) *Flow {
	f := &Flow{
		basket:     b,
		payments:   p,
		orders:     o,
		publisher:  events.NopPublisher{},
		clock:      clock.Real(),
		logger:     slog.Default(),
		resetDelay: DefaultResetDelay,
		status:     Status{State: StateIdle},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// attempt is everything fixed at the moment processing begins.
type attempt struct {
	gen     uint64
	name    string
	method  coffee.PaymentMethod
	items   []coffee.BasketItem
	started time.Time
}

// Submit runs one attempt to completion and returns the stored order.
func (f *Flow) Submit(ctx context.Context, req Request) (coffee.Order, error) {
	a, err := f.begin(req)
	if err != nil {
		return coffee.Order{}, err
	}
	return f.run(ctx, a)
}

// Start enters processing and finishes the attempt in the background. The
// attempt keeps ctx's values but not its cancellation.
func (f *Flow) Start(ctx context.Context, req Request) (Status, error) {
	a, err := f.begin(req)
	if err != nil {
		return Status{}, err
	}

	runCtx := context.WithoutCancel(ctx)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		_, _ = f.run(runCtx, a)
	}()
	return f.Status(), nil
}

// Wait blocks until every attempt launched by Start has finished.
func (f *Flow) Wait() { f.wg.Wait() }

func (f *Flow) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Subscribe registers l for every later status change and returns the
// current status.
func (f *Flow) Subscribe(l broadcast.Listener[Status]) (current Status, cancel func()) {
	f.emitMu.Lock()
	defer f.emitMu.Unlock()
	return f.Status(), f.feed.Subscribe(l)
}

func (f *Flow) begin(req Request) (attempt, error) {
	name := strings.TrimSpace(req.CustomerName)

	f.emitMu.Lock()
	defer f.emitMu.Unlock()
	f.mu.Lock()

	if f.status.State == StateProcessing {
		f.mu.Unlock()
		return attempt{}, ErrAlreadyProcessing
	}
	items := f.basket.Items()
	switch {
	case len(items) == 0:
		f.mu.Unlock()
		return attempt{}, ErrEmptyBasket
	case name == "":
		f.mu.Unlock()
		return attempt{}, ErrMissingCustomerName
	case !req.PaymentMethod.Valid():
		f.mu.Unlock()
		return attempt{}, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, req.PaymentMethod)
	}

	if f.reset != nil {
		f.reset.Stop()
		f.reset = nil
	}
	f.gen++
	a := attempt{
		gen:     f.gen,
		name:    name,
		method:  req.PaymentMethod,
		items:   items,
		started: f.clock.Now(),
	}
	f.status = Status{State: StateProcessing, Attempt: a.gen}
	snapshot := f.status
	f.mu.Unlock()

	f.feed.Publish(snapshot)
	return a, nil
}

func (f *Flow) run(ctx context.Context, a attempt) (coffee.Order, error) {
	log := f.logger.With("attempt", a.gen, "correlation_id", middleware.GetCorrelationID(ctx))
	log.InfoContext(ctx, "checkout started", "method", a.method, "items", coffee.Count(a.items))

	notify := func(msg string) {
		f.update(a.gen, func(s *Status) { s.Message = msg })
	}

	info, err := f.payments.ProcessPayment(ctx, a.method, notify)
	if err != nil {
		f.metrics.ObservePayment(string(a.method), paymentOutcome(err))
		log.WarnContext(ctx, "payment failed", "method", a.method, "err", err)
		f.finish(a, Status{State: StateFailed, Error: MsgPaymentFailed})
		return coffee.Order{}, err
	}
	f.metrics.ObservePayment(string(a.method), metrics.OutcomeSuccess)

	created, err := f.orders.PlaceOrder(ctx, coffee.BuildOrder(a.items, a.name, &info, f.clock.Now()))
	if err != nil {
		log.ErrorContext(ctx, "order submission failed", "transaction_id", info.TransactionID, "err", err)
		f.finish(a, Status{State: StateFailed, Error: MsgSubmissionFailed, Payment: &info})
		return coffee.Order{}, err
	}

	// Clear while still processing so no new attempt can snapshot the
	// items that were just ordered.
	f.basket.Clear()
	f.finish(a, Status{
		State:   StateSuccess,
		Message: fmt.Sprintf("✅ Order #%d placed! Transaction ID: %s", created.ID, info.TransactionID),
		Order:   &created,
		Payment: &info,
	})
	log.InfoContext(ctx, "order placed", "order_id", created.ID, "total", created.TotalPrice, "transaction_id", info.TransactionID)

	if err := f.publisher.PublishOrderPlaced(ctx, created); err != nil {
		log.WarnContext(ctx, "publish order placed failed", "order_id", created.ID, "err", err)
	}
	return created, nil
}

// finish records the attempt's final status and arms the reset timer.
func (f *Flow) finish(a attempt, final Status) {
	result := metrics.OutcomeSuccess
	if final.State == StateFailed {
		result = metrics.OutcomeFailed
	}
	f.metrics.ObserveCheckout(result, f.clock.Now().Sub(a.started))

	f.update(a.gen, func(s *Status) {
		final.Attempt = a.gen
		*s = final
		f.reset = f.clock.AfterFunc(f.resetDelay, func() { f.resetTo(a.gen) })
	})
}

// resetTo returns the flow to idle unless a newer attempt has started.
func (f *Flow) resetTo(gen uint64) {
	f.update(gen, func(s *Status) {
		if s.State == StateProcessing {
			return
		}
		*s = Status{State: StateIdle, Attempt: gen}
		f.reset = nil
	})
}

// update applies fn to the status of attempt gen and broadcasts the result.
// Changes for an attempt that is no longer current are dropped.
func (f *Flow) update(gen uint64, fn func(*Status)) {
	f.emitMu.Lock()
	defer f.emitMu.Unlock()

	f.mu.Lock()
	if f.gen != gen {
		f.mu.Unlock()
		return
	}
	before := f.status
	fn(&f.status)
	after := f.status
	f.mu.Unlock()

	if !sameStatus(before, after) {
		f.feed.Publish(after)
	}
}

func sameStatus(a, b Status) bool {
	return a.State == b.State && a.Attempt == b.Attempt && a.Message == b.Message &&
		a.Error == b.Error && a.Order == b.Order && a.Payment == b.Payment
}

func paymentOutcome(err error) string {
	switch {
	case errors.Is(err, payment.ErrDeclined):
		return metrics.OutcomeDeclined
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCancelled
	default:
		return metrics.OutcomeFailed
	}
}
