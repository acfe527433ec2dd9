package exchange

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/amirphl/alpaca-trader/internal/logging"
	"github.com/amirphl/alpaca-trader/internal/order"
)

const ordersPath = "/orders"

// ListStatus filters an order listing.
type ListStatus string

const (
	ListOpen   ListStatus = "open"
	ListClosed ListStatus = "closed"
	ListAll    ListStatus = "all"
)

// ListParams bounds an order listing. Zero From/To fall back to 7 days ago
// and now respectively; Status and Limit are validated strictly, so start
// from DefaultListParams rather than a zero value.
type ListParams struct {
	From   time.Time
	To     time.Time
	Status ListStatus
	Limit  int
}

// DefaultListParams returns the listing defaults: all statuses, limit 50.
func DefaultListParams() ListParams {
	return ListParams{Status: ListAll, Limit: 50}
}

// Orders drives the order lifecycle against the brokerage.
//
// Read operations (List, Get, GetByClientID) raise ErrInvalidParameter or
// ErrInvalidResponse. Mutating operations (Place, Update, Cancel) swallow
// transport failures into bool/nil results so callers get a single
// "did it work" check instead of an error path. That asymmetry is the
// intended contract.
type Orders struct {
	gw Gateway
}

// NewOrders returns an Orders resource backed by gw.
func NewOrders(gw Gateway) *Orders {
	return &Orders{gw: gw}
}

// List fetches orders in the given window, ascending, with nested child legs,
// and indexes them into a Collection in response order.
func (r *Orders) List(ctx context.Context, params ListParams) (*order.Collection, error) {
	from := params.From
	if from.IsZero() {
		from = time.Now().AddDate(0, 0, -7)
	}

	to := params.To
	if to.IsZero() || !to.After(from) {
		to = time.Now()
	}

	switch params.Status {
	case ListOpen, ListClosed, ListAll:
	default:
		return nil, fmt.Errorf("%w: status %q is not a recognized option, options are: %s, %s, %s",
			ErrInvalidParameter, params.Status, ListOpen, ListClosed, ListAll)
	}

	if params.Limit <= 0 || params.Limit > 500 {
		return nil, fmt.Errorf("%w: limit %d is not in the acceptable range of 0 to 500",
			ErrInvalidParameter, params.Limit)
	}

	query := url.Values{
		"status":    {string(params.Status)},
		"limit":     {strconv.Itoa(params.Limit)},
		"after":     {from.Format(time.RFC3339)},
		"until":     {to.Format(time.RFC3339)},
		"direction": {"asc"},
		"nested":    {"true"},
	}

	result, err := r.gw.Get(ctx, ordersPath, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	collection := order.NewCollection()

	rows, _ := result.([]any)
	for _, row := range rows {
		fields, ok := row.(map[string]any)
		if !ok {
			continue
		}
		collection.Add(order.FromWire(fields), false)
	}

	return collection, nil
}

// Get fetches an order by its server-assigned id, with nested child legs.
// An empty response is a not-found result (nil, nil), not an error.
func (r *Orders) Get(ctx context.Context, id string) (*order.Order, error) {
	result, err := r.gw.Get(ctx, ordersPath+"/"+id, url.Values{"nested": {"true"}})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	fields, ok := result.(map[string]any)
	if !ok || len(fields) == 0 {
		return nil, nil
	}

	return order.FromWire(fields), nil
}

// GetByClientID fetches an order via the client-order-id lookup path. Same
// empty/error semantics as Get.
func (r *Orders) GetByClientID(ctx context.Context, clientOrderID string) (*order.Order, error) {
	result, err := r.gw.Get(ctx, ordersPath+":by_client_order_id",
		url.Values{"client_order_id": {clientOrderID}})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	fields, ok := result.(map[string]any)
	if !ok || len(fields) == 0 {
		return nil, nil
	}

	return order.FromWire(fields), nil
}

// Place submits o for creation. On success the passed-in order is hydrated
// in place from the response, so the caller's reference gains the
// server-assigned id, status and timestamps. A transport failure reports
// false and leaves o unmodified.
func (r *Orders) Place(ctx context.Context, o *order.Order) bool {
	result, err := r.gw.Post(ctx, ordersPath, prepareOrderForPost(o))
	if err != nil {
		logging.L().Warnw("order placement failed", "client_order_id", o.ClientOrderID(), "error", err)
		return false
	}

	if fields, ok := result.(map[string]any); ok && len(fields) > 0 {
		o.Update(fields)
	}

	return true
}

// Update amends the order keyed by its server-assigned id and returns a new
// Order built from the response; the input is not mutated. A missing id,
// transport failure or empty response all return nil — a recoverable,
// caller-visible outcome rather than an error.
func (r *Orders) Update(ctx context.Context, o *order.Order) *order.Order {
	id := o.ID()
	if id == "" {
		return nil
	}

	result, err := r.gw.Patch(ctx, ordersPath+"/"+id, prepareOrderForPatch(o))
	if err != nil {
		logging.L().Warnw("order update failed", "id", id, "error", err)
		return nil
	}

	fields, ok := result.(map[string]any)
	if !ok || len(fields) == 0 {
		return nil
	}

	return order.FromWire(fields)
}

// Cancel deletes the order keyed by its server-assigned id. Success means
// the transport reported a 200-class status; any failure is false.
func (r *Orders) Cancel(ctx context.Context, o *order.Order) bool {
	id := o.ID()
	if id == "" {
		return false
	}

	_, status, err := r.gw.Delete(ctx, ordersPath+"/"+id)
	if err != nil {
		logging.L().Warnw("order cancel failed", "id", id, "error", err)
		return false
	}

	return status/100 == 2
}

// prepareOrderForPost serializes the fields relevant to order creation,
// dropping anything unset. Quantities and prices go over the wire as
// strings.
func prepareOrderForPost(o *order.Order) map[string]any {
	body := make(map[string]any)

	if o.Has(order.FieldSymbol) {
		body["symbol"] = o.Symbol()
	}
	if o.Has(order.FieldQuantity) {
		body["qty"] = strconv.Itoa(o.Quantity())
	}
	if o.Has(order.FieldSide) {
		body["side"] = string(o.Side())
	}
	if o.Has(order.FieldType) {
		body["type"] = string(o.Type())
	}
	if o.Has(order.FieldTimeInForce) {
		body["time_in_force"] = string(o.TimeInForce())
	}
	if price, ok := o.LimitPrice(); ok {
		body["limit_price"] = strconv.FormatFloat(price, 'f', -1, 64)
	}
	if price, ok := o.StopPrice(); ok {
		body["stop_price"] = strconv.FormatFloat(price, 'f', -1, 64)
	}
	if o.Has(order.FieldExtendedHours) {
		body["extended_hours"] = strconv.FormatBool(o.ExtendedHours())
	}
	if o.Has(order.FieldClientOrderID) {
		body["client_order_id"] = o.ClientOrderID()
	}
	if o.Has(order.FieldClass) {
		body["order_class"] = string(o.Class())
	}
	if tp := o.Get(order.FieldTakeProfit); tp != nil {
		body["take_profit"] = tp
	}
	if sl := o.Get(order.FieldStopLoss); sl != nil {
		body["stop_loss"] = sl
	}

	return body
}

// prepareOrderForPatch serializes only the amendable fields, dropping
// anything unset.
func prepareOrderForPatch(o *order.Order) map[string]any {
	body := make(map[string]any)

	if o.Has(order.FieldQuantity) {
		body["qty"] = strconv.Itoa(o.Quantity())
	}
	if o.Has(order.FieldTimeInForce) {
		body["time_in_force"] = string(o.TimeInForce())
	}
	if price, ok := o.LimitPrice(); ok {
		body["limit_price"] = strconv.FormatFloat(price, 'f', -1, 64)
	}
	if price, ok := o.StopPrice(); ok {
		body["stop_price"] = strconv.FormatFloat(price, 'f', -1, 64)
	}
	if o.Has(order.FieldClientOrderID) {
		body["client_order_id"] = o.ClientOrderID()
	}

	return body
}
