// Package submission drives an order from the validated checkout form to the
// order service and the post-purchase redirect.
package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/checkout"
	"github.com/noah-isme/toko-storefront/internal/events"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/orderapi"
	"github.com/noah-isme/toko-storefront/internal/resilience"
)

var (
	// ErrInvalidOrder is returned when the checkout form fails validation.
	ErrInvalidOrder = errors.New("submission: invalid order")
	// ErrEmptyCart is returned when there is nothing to order.
	ErrEmptyCart = errors.New("submission: cart is empty")
	// ErrSubmissionFailed wraps order service failures.
	ErrSubmissionFailed = errors.New("submission: order placement failed")
)

const (
	DefaultRedirectDelay = 2 * time.Second
	DefaultRedirectPath  = "/"

	reasonUnavailable = "The order service is temporarily unavailable. Please try again shortly."
	reasonFailed      = "We could not place your order. Please try again."
	reasonEmptyCart   = "Your cart is empty."
)

// Navigator moves the shopper to another page.
type Navigator interface {
	RedirectTo(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// RedirectTo implements Navigator.
func (f NavigatorFunc) RedirectTo(path string) { f(path) }

// Timer is a pending one-shot callback.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Config wires a Controller.
type Config struct {
	API           orderapi.API
	Validator     *checkout.Validator
	Events        events.Emitter
	Navigator     Navigator
	Logger        *zerolog.Logger
	RedirectDelay time.Duration
	RedirectPath  string
	AfterFunc     AfterFunc
	Tracer        trace.Tracer
}

// Controller is the order submission state machine. At most one order is in
// flight; the order service is called without holding the lock.
type Controller struct {
	mu        sync.Mutex
	state     State
	reason    string
	conf      *orderapi.Confirmation
	errors    map[checkout.Field]string
	timer     Timer
	disposed  bool
	api       orderapi.API
	validator *checkout.Validator
	events    events.Emitter
	navigator Navigator
	logger    zerolog.Logger
	delay     time.Duration
	path      string
	afterFunc AfterFunc
	tracer    trace.Tracer
}

// NewController returns an Idle controller.
func NewController(cfg Config) *Controller {
	c := &Controller{
		state:     Idle,
		api:       cfg.API,
		validator: cfg.Validator,
		events:    cfg.Events,
		navigator: cfg.Navigator,
		logger:    zerolog.Nop(),
		delay:     cfg.RedirectDelay,
		path:      cfg.RedirectPath,
		afterFunc: cfg.AfterFunc,
		tracer:    cfg.Tracer,
	}
	if c.validator == nil {
		c.validator = checkout.NewValidator()
	}
	if c.events == nil {
		c.events = events.Nop{}
	}
	if cfg.Logger != nil {
		c.logger = cfg.Logger.With().Str("component", "submission").Logger()
	}
	if c.delay <= 0 {
		c.delay = DefaultRedirectDelay
	}
	if c.path == "" {
		c.path = DefaultRedirectPath
	}
	if c.afterFunc == nil {
		c.afterFunc = realAfterFunc
	}
	if c.tracer == nil {
		c.tracer = obs.Tracer()
	}
	return c
}

// BuildOrder snapshots the cart and form into an order payload.
func BuildOrder(store *cart.Store, form checkout.Form) orderapi.Order {
	items, totals := store.Snapshot()
	return orderapi.Order{
		Reference: uuid.NewString(),
		Items:     items,
		Totals:    totals,
		Form:      form,
	}
}

// Submit validates order and, when valid, places it with the order service.
// Calls made while a submission is in flight, after success or after Dispose
// return the current status and no error.
func (c *Controller) Submit(ctx context.Context, order orderapi.Order) (Status, error) {
	c.mu.Lock()
	if c.disposed || !c.state.accepts() {
		st := c.statusLocked()
		c.mu.Unlock()
		recordSubmission("ignored")
		return st, nil
	}
	c.transitionLocked(ctx, Validating)
	c.reason = ""
	c.errors = nil

	res := c.validator.Validate(order.Form)
	if !res.Valid() {
		c.errors = res.Errors
		c.transitionLocked(ctx, Idle)
		st := c.statusLocked()
		c.mu.Unlock()
		recordSubmission("invalid")
		recordValidationFailures(res)
		return st, fmt.Errorf("%w: %d field(s) failed", ErrInvalidOrder, len(res.Errors))
	}
	if len(order.Items) == 0 {
		c.reason = reasonEmptyCart
		c.transitionLocked(ctx, Idle)
		st := c.statusLocked()
		c.mu.Unlock()
		recordSubmission("empty_cart")
		return st, ErrEmptyCart
	}
	c.transitionLocked(ctx, Submitting)
	c.mu.Unlock()

	conf, err := c.place(ctx, order)

	c.mu.Lock()
	if err != nil {
		c.reason = reasonFor(err)
		c.transitionLocked(ctx, Failed)
		st := c.statusLocked()
		c.mu.Unlock()
		c.logger.Warn().Err(err).Str("reference", order.Reference).Msg("order_submission_failed")
		return st, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	c.conf = &conf
	c.transitionLocked(ctx, Succeeded)
	if !c.disposed {
		c.timer = c.afterFunc(c.delay, c.fireRedirect)
	}
	st := c.statusLocked()
	c.mu.Unlock()

	evt := events.Event{
		Topic:       events.TopicOrderPlaced,
		Title:       "Order Placed!",
		Description: "Thank you for your purchase. Your order is being processed.",
		Attributes:  map[string]string{"order_id": conf.OrderID, "reference": order.Reference},
	}
	if err := c.events.Emit(ctx, evt); err != nil {
		c.logger.Warn().Err(err).Str("topic", evt.Topic).Msg("notification_emit_failed")
	}
	return st, nil
}

func (c *Controller) place(ctx context.Context, order orderapi.Order) (orderapi.Confirmation, error) {
	ctx, span := c.tracer.Start(ctx, "submission.place_order",
		trace.WithAttributes(
			attribute.String("order.reference", order.Reference),
			attribute.Int("order.items", len(order.Items)),
		))
	defer span.End()

	if c.api == nil {
		err := errors.New("order api not configured")
		span.SetStatus(codes.Error, err.Error())
		return orderapi.Confirmation{}, err
	}
	started := time.Now()
	conf, err := c.api.Submit(ctx, order)
	result := "succeeded"
	if err != nil {
		result = "failed"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.String("order.id", conf.OrderID))
	}
	recordSubmission(result)
	if obs.OrderSubmissionLatency != nil {
		obs.OrderSubmissionLatency.WithLabelValues(result).Observe(obs.DurationMillis(time.Since(started)))
	}
	return conf, err
}

func (c *Controller) fireRedirect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed || c.timer == nil {
		return
	}
	c.timer = nil
	if c.navigator != nil {
		c.navigator.RedirectTo(c.path)
	}
	recordRedirect("fired")
	c.logger.Debug().Str("path", c.path).Msg("checkout_redirect")
}

// Dispose cancels a pending redirect. The controller ignores submissions
// afterwards. The Navigator must not call back into the controller.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	if c.timer != nil {
		if c.timer.Stop() {
			recordRedirect("cancelled")
		}
		c.timer = nil
	}
}

// Status returns the current status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Controller) statusLocked() Status {
	st := Status{State: c.state, Reason: c.reason}
	if c.conf != nil {
		conf := *c.conf
		st.Confirmation = &conf
	}
	if len(c.errors) > 0 {
		st.Errors = make(map[checkout.Field]string, len(c.errors))
		for f, msg := range c.errors {
			st.Errors[f] = msg
		}
	}
	if c.timer != nil {
		st.Redirect = c.path
	}
	return st
}

func (c *Controller) transitionLocked(ctx context.Context, next State) {
	prev := c.state
	c.state = next
	evt := c.logger.Debug()
	if next == Succeeded || next == Failed {
		evt = c.logger.Info()
	}
	evt = evt.Str("from_state", prev.String()).Str("to_state", next.String())
	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		evt = evt.Str("trace_id", span.TraceID().String())
	}
	if sid := obs.SessionIDFromContext(ctx); sid != "" {
		evt = evt.Str("session_id", sid)
	}
	evt.Msg("submission_transition")
}

func reasonFor(err error) string {
	if errors.Is(err, resilience.ErrOpenCircuit) || errors.Is(err, context.DeadlineExceeded) {
		return reasonUnavailable
	}
	return reasonFailed
}

func recordSubmission(result string) {
	if obs.OrderSubmissionsTotal != nil {
		obs.OrderSubmissionsTotal.WithLabelValues(result).Inc()
	}
}

func recordValidationFailures(res checkout.Result) {
	if obs.CheckoutValidationFailures == nil {
		return
	}
	for field := range res.Errors {
		obs.CheckoutValidationFailures.WithLabelValues(string(field)).Inc()
	}
}

func recordRedirect(result string) {
	if obs.CheckoutRedirectsTotal != nil {
		obs.CheckoutRedirectsTotal.WithLabelValues(result).Inc()
	}
}
