// Package order
package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/amirphl/alpaca-trader/internal/record"
)

// Side of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Type of an order.
type Type string

const (
	TypeMarket    Type = "market"
	TypeLimit     Type = "limit"
	TypeStop      Type = "stop"
	TypeStopLimit Type = "stop_limit"
)

// TimeInForce of an order.
type TimeInForce string

const (
	TIFDay             TimeInForce = "day"
	TIFGoodTilCancel   TimeInForce = "gtc"
	TIFOpening         TimeInForce = "opg"
	TIFClosing         TimeInForce = "cls"
	TIFImmediateOrKill TimeInForce = "ioc"
	TIFFillOrKill      TimeInForce = "fok"
)

// Class of an order (simple, bracket, one-cancels-other, one-triggers-other).
type Class string

const (
	ClassSimple           Class = "simple"
	ClassBracket          Class = "bracket"
	ClassOneTriggersOther Class = "oto"
	ClassOneCancelsOther  Class = "oco"
)

// Status reported by the brokerage.
type Status string

const (
	StatusNew                Status = "new"
	StatusPartiallyFilled    Status = "partially_filled"
	StatusFilled             Status = "filled"
	StatusDoneForDay         Status = "done_for_day"
	StatusCanceled           Status = "canceled"
	StatusExpired            Status = "expired"
	StatusReplaced           Status = "replaced"
	StatusPendingCancel      Status = "pending_cancel"
	StatusPendingReplace     Status = "pending_replace"
	StatusAccepted           Status = "accepted" // accepted by the broker, not yet routed to execution
	StatusPendingNew         Status = "pending_new"
	StatusAcceptedForBidding Status = "accepted_for_bidding"
	StatusStopped            Status = "stopped"
	StatusRejected           Status = "rejected"
	StatusSuspended          Status = "suspended"
	StatusCalculated         Status = "calculated"
)

// Entity field names.
const (
	FieldID             = "Id"
	FieldClientOrderID  = "ClientOrderId"
	FieldAssetID        = "AssetId"
	FieldSymbol         = "Symbol"
	FieldStatus         = "Status"
	FieldQuantity       = "Quantity"
	FieldFilledQuantity = "FilledQuantity"
	FieldTimeInForce    = "TimeInForce"
	FieldSide           = "Side"
	FieldType           = "Type"
	FieldLimitPrice     = "LimitPrice"
	FieldStopPrice      = "StopPrice"
	FieldFilledAvgPrice = "FilledAvgPrice"
	FieldClass          = "Class"
	FieldTakeProfit     = "TakeProfit"
	FieldStopLoss       = "StopLoss"
	FieldCreatedAt      = "CreatedAt"
	FieldUpdatedAt      = "UpdatedAt"
	FieldSubmittedAt    = "SubmittedAt"
	FieldFilledAt       = "FilledAt"
	FieldExpiredAt      = "ExpiredAt"
	FieldCanceledAt     = "CanceledAt"
	FieldFailedAt       = "FailedAt"
	FieldReplacedAt     = "ReplacedAt"
	FieldReplacedBy     = "ReplacedBy"
	FieldReplaces       = "Replaces"
	FieldExtendedHours  = "ExtendedHours"
)

func schema() record.Schema {
	return record.Schema{
		FieldID:            record.UUID,
		FieldClientOrderID: record.UUID,
		FieldAssetID:       record.UUID,
		FieldSymbol:        record.String,
		FieldStatus: record.Enum(
			string(StatusNew), string(StatusPartiallyFilled), string(StatusFilled),
			string(StatusDoneForDay), string(StatusCanceled), string(StatusExpired),
			string(StatusReplaced), string(StatusPendingCancel), string(StatusPendingReplace),
			string(StatusAccepted), string(StatusPendingNew), string(StatusAcceptedForBidding),
			string(StatusStopped), string(StatusRejected), string(StatusSuspended),
			string(StatusCalculated),
		),
		FieldQuantity:       record.Int,
		FieldFilledQuantity: record.Int,
		FieldTimeInForce: record.Enum(
			string(TIFDay), string(TIFGoodTilCancel), string(TIFOpening),
			string(TIFClosing), string(TIFImmediateOrKill), string(TIFFillOrKill),
		),
		FieldSide: record.Enum(string(SideBuy), string(SideSell)),
		FieldType: record.Enum(
			string(TypeMarket), string(TypeLimit), string(TypeStop), string(TypeStopLimit),
		),
		FieldLimitPrice:     record.Float,
		FieldStopPrice:      record.Float,
		FieldFilledAvgPrice: record.Float,
		FieldClass: record.Enum(
			string(ClassSimple), string(ClassBracket),
			string(ClassOneTriggersOther), string(ClassOneCancelsOther),
		),
		FieldTakeProfit:    record.Composite("limit_price"),
		FieldStopLoss:      record.Composite("stop_price", "limit_price"),
		FieldCreatedAt:     record.Date,
		FieldUpdatedAt:     record.Date,
		FieldSubmittedAt:   record.Date,
		FieldFilledAt:      record.Date,
		FieldExpiredAt:     record.Date,
		FieldCanceledAt:    record.Date,
		FieldFailedAt:      record.Date,
		FieldReplacedAt:    record.Date,
		FieldReplacedBy:    record.UUID,
		FieldReplaces:      record.UUID,
		FieldExtendedHours: record.Bool,
	}
}

// wireKeys translates the API's snake_case field names into entity fields.
// Unknown wire keys are ignored.
var wireKeys = map[string]string{
	"id":               FieldID,
	"client_order_id":  FieldClientOrderID,
	"created_at":       FieldCreatedAt,
	"updated_at":       FieldUpdatedAt,
	"submitted_at":     FieldSubmittedAt,
	"filled_at":        FieldFilledAt,
	"expired_at":       FieldExpiredAt,
	"canceled_at":      FieldCanceledAt,
	"failed_at":        FieldFailedAt,
	"replaced_at":      FieldReplacedAt,
	"replaced_by":      FieldReplacedBy,
	"replaces":         FieldReplaces,
	"asset_id":         FieldAssetID,
	"symbol":           FieldSymbol,
	"qty":              FieldQuantity,
	"filled_qty":       FieldFilledQuantity,
	"type":             FieldType,
	"side":             FieldSide,
	"time_in_force":    FieldTimeInForce,
	"limit_price":      FieldLimitPrice,
	"stop_price":       FieldStopPrice,
	"filled_avg_price": FieldFilledAvgPrice,
	"status":           FieldStatus,
	"extended_hours":   FieldExtendedHours,
	"order_class":      FieldClass,
	"take_profit":      FieldTakeProfit,
	"stop_loss":        FieldStopLoss,
}

// Order is a typed record over the brokerage's order fields. Every Order has
// a ClientOrderId, generated locally at construction so the order is
// addressable before the server assigns its own Id.
type Order struct {
	*record.Record
}

// New returns an empty Order with a freshly generated ClientOrderId.
func New() *Order {
	o := &Order{Record: record.New(schema())}
	o.Set(FieldClientOrderID, uuid.NewString())
	return o
}

// FromWire builds an Order from a wire-format map and checkpoints it, so
// freshly loaded server state shows no pending local edits.
func FromWire(fields map[string]any) *Order {
	o := &Order{Record: record.New(schema())}
	o.load(fields, true)
	return o
}

// Update applies a wire-format map without checkpointing: fields that differ
// from what the server reports surface in the change set, which is how drift
// after a partial fill or replace shows up.
func (o *Order) Update(fields map[string]any) {
	o.load(fields, false)
}

func (o *Order) load(fields map[string]any, clearAfter bool) {
	translated := make(map[string]any, len(fields))
	for key, value := range fields {
		if field, ok := wireKeys[key]; ok {
			translated[field] = value
		}
	}

	o.Load(translated, clearAfter)
}

// ID returns the server-assigned order id, or "" before placement.
func (o *Order) ID() string {
	return o.stringField(FieldID)
}

// ClientOrderID returns the client-assigned id.
func (o *Order) ClientOrderID() string {
	return o.stringField(FieldClientOrderID)
}

// Symbol returns the order's symbol, or "" when unset.
func (o *Order) Symbol() string {
	return o.stringField(FieldSymbol)
}

// Status returns the order's status, or "" when unset.
func (o *Order) Status() Status {
	return Status(o.stringField(FieldStatus))
}

// Side returns the order's side, or "" when unset.
func (o *Order) Side() Side {
	return Side(o.stringField(FieldSide))
}

// Type returns the order's type, or "" when unset.
func (o *Order) Type() Type {
	return Type(o.stringField(FieldType))
}

// TimeInForce returns the order's time in force, or "" when unset.
func (o *Order) TimeInForce() TimeInForce {
	return TimeInForce(o.stringField(FieldTimeInForce))
}

// Class returns the order's class, or "" when unset.
func (o *Order) Class() Class {
	return Class(o.stringField(FieldClass))
}

// Quantity returns the order quantity, or 0 when unset.
func (o *Order) Quantity() int {
	if v, ok := o.Get(FieldQuantity).(int); ok {
		return v
	}
	return 0
}

// FilledQuantity returns the filled quantity, or 0 when unset.
func (o *Order) FilledQuantity() int {
	if v, ok := o.Get(FieldFilledQuantity).(int); ok {
		return v
	}
	return 0
}

// LimitPrice returns the limit price and whether it is set.
func (o *Order) LimitPrice() (float64, bool) {
	v, ok := o.Get(FieldLimitPrice).(float64)
	return v, ok
}

// StopPrice returns the stop price and whether it is set.
func (o *Order) StopPrice() (float64, bool) {
	v, ok := o.Get(FieldStopPrice).(float64)
	return v, ok
}

// FilledAvgPrice returns the average fill price and whether it is set.
func (o *Order) FilledAvgPrice() (float64, bool) {
	v, ok := o.Get(FieldFilledAvgPrice).(float64)
	return v, ok
}

// ExtendedHours reports whether the order is flagged for extended hours.
func (o *Order) ExtendedHours() bool {
	if v, ok := o.Get(FieldExtendedHours).(bool); ok {
		return v
	}
	return false
}

// CreatedAt returns the creation timestamp and whether it is set.
func (o *Order) CreatedAt() (time.Time, bool) {
	v, ok := o.Get(FieldCreatedAt).(time.Time)
	return v, ok
}

func (o *Order) stringField(field string) string {
	if v, ok := o.Get(field).(string); ok {
		return v
	}
	return ""
}
