// Package orders owns submitted orders: checkout from a cart, the status
// state machine and the role-scoped views over the order log.
package orders

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go_trial/cravewave/cart"
	"go_trial/cravewave/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentation = "go_trial/cravewave/orders"

// DefaultDeliveryAddress is used when checkout is given a blank address.
const DefaultDeliveryAddress = "123 Main St (Default)"

// maxSwapAttempts bounds the re-read loop when another writer changes the
// status between our read and our compare-and-swap.
const maxSwapAttempts = 3

// DeliveryStatuses is the default filter of OrdersForDelivery.
var DeliveryStatuses = []models.OrderStatus{
	models.StatusAccepted,
	models.StatusPreparing,
	models.StatusOutForDelivery,
}

type Engine struct {
	store     Store
	publisher Publisher
	log       zerolog.Logger
	now       func() time.Time
	newID     func() string
	locks     *keyedMutex

	tracer      trace.Tracer
	checkouts   metric.Int64Counter
	transitions metric.Int64Counter
}

type Option func(*Engine)

func WithPublisher(p Publisher) Option {
	return func(e *Engine) {
		if p != nil {
			e.publisher = p
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l.With().Str("module", "orders").Logger() }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		publisher: noopPublisher{},
		log:       zerolog.Nop(),
		now:       time.Now,
		newID:     uuid.NewString,
		locks:     newKeyedMutex(),
		tracer:    otel.Tracer(instrumentation),
	}
	for _, opt := range opts {
		opt(e)
	}

	meter := otel.Meter(instrumentation)
	var err error
	if e.checkouts, err = meter.Int64Counter("orders.checkouts",
		metric.WithDescription("Checkout attempts by result")); err != nil {
		e.log.Warn().Err(err).Msg("checkout counter unavailable")
	}
	if e.transitions, err = meter.Int64Counter("orders.transitions",
		metric.WithDescription("Status change attempts by edge and result")); err != nil {
		e.log.Warn().Err(err).Msg("transition counter unavailable")
	}
	return e
}

// Checkout turns a non-empty single-restaurant cart into a PLACED order and
// appends it to the log. The cart is left as is; clearing it after success
// is the caller's job.
func (e *Engine) Checkout(ctx context.Context, actor models.Actor, c *cart.Cart, deliveryAddress string) (order models.Order, err error) {
	const op = "orders.Checkout"
	ctx, span := e.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("customer.id", actor.UserID)))
	defer func() {
		e.count(ctx, e.checkouts, err)
		endSpan(span, err)
	}()

	if !actor.Authenticated() {
		return models.Order{}, models.Unauthenticated(op)
	}
	if actor.Role != models.RoleCustomer {
		return models.Order{}, models.Unauthorized(op, "only customers can check out, got %s", actor.Role)
	}
	if c == nil || c.Empty() {
		return models.Order{}, models.Validation(op, "cart is empty")
	}
	restaurantID := c.RestaurantID()
	if restaurantID == "" {
		return models.Order{}, models.Validation(op, "cart has no restaurant")
	}

	lines := c.Lines()
	items := make([]models.OrderLine, 0, len(lines))
	total := decimal.Zero
	for _, l := range lines {
		if l.Item.RestaurantID != "" && l.Item.RestaurantID != restaurantID {
			return models.Order{}, models.Validation(op, "item %s is not from restaurant %s", l.Item.ID, restaurantID)
		}
		if l.Quantity <= 0 {
			return models.Order{}, models.Validation(op, "item %s has quantity %d", l.Item.ID, l.Quantity)
		}
		line := models.OrderLine{
			ItemID:   l.Item.ID,
			Name:     l.Item.Name,
			Category: l.Item.Category,
			Image:    l.Item.Image,
			Price:    l.Item.Price,
			Quantity: l.Quantity,
		}
		items = append(items, line)
		total = total.Add(line.Subtotal())
	}

	address := strings.TrimSpace(deliveryAddress)
	if address == "" {
		address = DefaultDeliveryAddress
	}

	order = models.Order{
		ID:           e.newID(),
		CustomerID:   actor.UserID,
		RestaurantID: restaurantID,
		Items:        items,
		Total:        total,
		Status:       models.StatusPlaced,
		// stores keep millisecond precision; truncating keeps round trips exact
		CreatedAt:       e.now().UTC().Truncate(time.Millisecond),
		DeliveryAddress: address,
	}
	span.SetAttributes(attribute.String("order.id", order.ID))

	if err := e.store.AppendOrder(ctx, order.Clone()); err != nil {
		return models.Order{}, storeError(op, err)
	}

	e.log.Info().
		Str("order_id", order.ID).
		Str("customer_id", order.CustomerID).
		Str("restaurant_id", order.RestaurantID).
		Str("total", order.Total.String()).
		Msg("order placed")
	e.publish(ctx, Event{Type: EventOrderPlaced, Order: order.Clone(), Actor: actor, At: order.CreatedAt})
	return order, nil
}

// UpdateStatus moves an order to `to` if the transition table allows it for
// actor. Only the status changes. Writers to the same order are serialised
// here, and the store's compare-and-swap covers writers in other processes.
func (e *Engine) UpdateStatus(ctx context.Context, actor models.Actor, orderID string, to models.OrderStatus) (order models.Order, err error) {
	const op = "orders.UpdateStatus"
	ctx, span := e.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.status.to", string(to)),
		attribute.String("actor.role", actor.Role.String()),
	))
	defer func() {
		e.count(ctx, e.transitions, err, attribute.String("to", string(to)))
		endSpan(span, err)
	}()

	if strings.TrimSpace(orderID) == "" {
		return models.Order{}, models.Validation(op, "order id is required")
	}

	unlock := e.locks.Lock(orderID)
	defer unlock()

	for attempt := 1; attempt <= maxSwapAttempts; attempt++ {
		current, err := e.store.GetOrder(ctx, orderID)
		if err != nil {
			return models.Order{}, storeError(op, err)
		}
		if err := checkTransition(current, actor, to); err != nil {
			return models.Order{}, err
		}

		err = e.store.CompareAndSwapStatus(ctx, orderID, current.Status, to)
		if errors.Is(err, ErrStatusConflict) {
			e.log.Debug().Str("order_id", orderID).Int("attempt", attempt).Msg("status changed underneath, retrying")
			continue
		}
		if err != nil {
			return models.Order{}, storeError(op, err)
		}

		from := current.Status
		current.Status = to
		e.log.Info().
			Str("order_id", orderID).
			Str("from", string(from)).
			Str("to", string(to)).
			Str("actor_id", actor.UserID).
			Str("actor_role", actor.Role.String()).
			Msg("order status updated")
		e.publish(ctx, Event{Type: EventStatusChanged, Order: current.Clone(), FromStatus: from, Actor: actor, At: e.now().UTC()})
		return current, nil
	}
	return models.Order{}, models.Persistence(op, ErrStatusConflict)
}

// Order returns a single order if actor may see it.
func (e *Engine) Order(ctx context.Context, actor models.Actor, orderID string) (_ models.Order, err error) {
	const op = "orders.Order"
	ctx, span := e.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("order.id", orderID)))
	defer func() { endSpan(span, err) }()

	if !actor.Authenticated() {
		return models.Order{}, models.Unauthenticated(op)
	}
	order, err := e.store.GetOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, storeError(op, err)
	}
	if !owns(order, actor) {
		return models.Order{}, models.Unauthorized(op, "order %s belongs to someone else", orderID)
	}
	return order.Clone(), nil
}

func (e *Engine) OrdersForCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	return e.query(ctx, "orders.OrdersForCustomer", func(o models.Order) bool {
		return o.CustomerID == customerID
	})
}

func (e *Engine) OrdersForRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error) {
	return e.query(ctx, "orders.OrdersForRestaurant", func(o models.Order) bool {
		return o.RestaurantID == restaurantID
	})
}

// OrdersForDelivery lists orders in any of the given statuses, or in
// DeliveryStatuses when none are given.
func (e *Engine) OrdersForDelivery(ctx context.Context, statuses ...models.OrderStatus) ([]models.Order, error) {
	if len(statuses) == 0 {
		statuses = DeliveryStatuses
	}
	want := make(map[models.OrderStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	return e.query(ctx, "orders.OrdersForDelivery", func(o models.Order) bool {
		return want[o.Status]
	})
}

// AllOrders is admin only.
func (e *Engine) AllOrders(ctx context.Context, actor models.Actor) ([]models.Order, error) {
	const op = "orders.AllOrders"
	if !actor.Authenticated() {
		return nil, models.Unauthenticated(op)
	}
	if actor.Role != models.RoleAdmin {
		return nil, models.Unauthorized(op, "admin only")
	}
	return e.query(ctx, op, func(models.Order) bool { return true })
}

// query filters the persisted log, newest first.
func (e *Engine) query(ctx context.Context, op string, keep func(models.Order) bool) (_ []models.Order, err error) {
	ctx, span := e.tracer.Start(ctx, op)
	defer func() { endSpan(span, err) }()

	all, err := e.store.LoadOrders(ctx)
	if err != nil {
		return nil, storeError(op, err)
	}

	out := make([]models.Order, 0, len(all))
	// walk backwards so equal timestamps keep newest-appended first
	for i := len(all) - 1; i >= 0; i-- {
		if keep(all[i]) {
			out = append(out, all[i].Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	span.SetAttributes(attribute.Int("orders.count", len(out)))
	return out, nil
}

func (e *Engine) publish(ctx context.Context, ev Event) {
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.log.Warn().Err(err).Str("order_id", ev.Order.ID).Str("event", string(ev.Type)).Msg("publish order event failed")
	}
}

func (e *Engine) count(ctx context.Context, c metric.Int64Counter, err error, attrs ...attribute.KeyValue) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = models.KindOf(err).String()
	}
	attrs = append(attrs, attribute.String("result", result))
	c.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// storeError keeps typed errors from the store and classifies anything else
// as a persistence failure.
func storeError(op string, err error) error {
	if models.KindOf(err) != 0 {
		return err
	}
	return models.Persistence(op, err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
