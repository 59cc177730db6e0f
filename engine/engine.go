package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/c360/travelstreams/catalog"
	"github.com/c360/travelstreams/errors"
	"github.com/c360/travelstreams/metric"
	"github.com/c360/travelstreams/pkg/delay"
	"github.com/c360/travelstreams/travel"
)

// Call shapes, used as metric labels and log fields.
const (
	ShapeUnary        = "unary"
	ShapeServerStream = "server_stream"
	ShapeClientStream = "client_stream"
	ShapeBidi         = "bidi"
)

// previewLimit bounds the checkout summary preview.
const previewLimit = 5

// Engine hosts the four call handlers over a shared immutable catalog.
type Engine struct {
	store  *catalog.Store
	logger *slog.Logger

	queryDelay    delay.Policy
	monitorDelay  delay.Policy
	checkoutDelay delay.Policy
	chatDelay     delay.Policy

	now   func() time.Time
	newID func() string

	metrics *engineMetrics

	mu     sync.Mutex
	active map[string]activeCall
}

type activeCall struct {
	shape   string
	started time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithQueryDelay sets the simulated backend latency for unary queries.
func WithQueryDelay(p delay.Policy) Option {
	return func(e *Engine) { e.queryDelay = p }
}

// WithMonitorDelay sets the pacing between timeline updates.
func WithMonitorDelay(p delay.Policy) Option {
	return func(e *Engine) { e.monitorDelay = p }
}

// WithCheckoutDelay sets the simulated payment-processing latency.
func WithCheckoutDelay(p delay.Policy) Option {
	return func(e *Engine) { e.checkoutDelay = p }
}

// WithChatDelay sets the simulated reply-composition latency.
func WithChatDelay(p delay.Policy) Option {
	return func(e *Engine) { e.chatDelay = p }
}

// WithClock overrides time source, used by tests for fixed timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides call/confirmation ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine creates an engine over the given catalog. The metrics
// registry may be nil; the engine then runs without metrics, matching
// how other services degrade when observability is not wired.
func NewEngine(
	store *catalog.Store,
	logger *slog.Logger,
	metricsRegistry *metric.MetricsRegistry,
	opts ...Option,
) *Engine {
	e := &Engine{
		store:         store,
		logger:        logger,
		queryDelay:    delay.Random(1*time.Second, 3*time.Second),
		monitorDelay:  delay.Fixed(2 * time.Second),
		checkoutDelay: delay.Fixed(1 * time.Second),
		chatDelay:     delay.Fixed(500 * time.Millisecond),
		now:           time.Now,
		newID:         uuid.NewString,
		active:        make(map[string]activeCall),
	}

	for _, opt := range opts {
		opt(e)
	}

	metrics, err := newEngineMetrics(metricsRegistry)
	if err != nil {
		logger.Error("Failed to initialize engine metrics", "error", err)
		metrics = nil // Continue without metrics
	}
	e.metrics = metrics

	return e
}

// ActiveCalls returns the number of calls currently in flight.
func (e *Engine) ActiveCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}

// Flight looks up a single catalog record by identifier.
func (e *Engine) Flight(id string) (travel.Flight, error) {
	if e.store == nil {
		return travel.Flight{}, errors.WrapUnavailable(
			errors.ErrCatalogUnavailable, "engine", "Flight", "catalog access")
	}
	flight, ok := e.store.ByID(id)
	if !ok {
		return travel.Flight{}, errors.WrapInvalid(
			errors.ErrFlightNotFound, "engine", "Flight", "lookup "+id)
	}
	return flight, nil
}

// beginCall allocates per-call state and returns its release function.
// The release function is idempotent and must run on every exit path.
func (e *Engine) beginCall(shape string) (string, func(err error)) {
	callID := e.newID()
	started := e.now()

	e.mu.Lock()
	e.active[callID] = activeCall{shape: shape, started: started}
	e.mu.Unlock()

	e.metrics.recordCallStarted(shape)

	var once sync.Once
	release := func(err error) {
		once.Do(func() {
			e.mu.Lock()
			delete(e.active, callID)
			e.mu.Unlock()

			status := "ok"
			if err != nil {
				status = errors.Classify(err).String()
			}
			e.metrics.recordCallCompleted(shape, status, time.Since(started))
		})
	}
	return callID, release
}
