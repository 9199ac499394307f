package mapper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

const quantityField = "quantity"

// ErrMalformedPayload is returned when a request body is not valid JSON.
var ErrMalformedPayload = errors.New("request body must be valid JSON")

// Envelope wraps every request and response body as {"data": ...}.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// OrderData is the request payload. Every field stays raw until the
// validators have checked its type, so a wrong-typed field reads as absent
// instead of failing the whole decode.
type OrderData struct {
	ID           json.RawMessage `json:"id"`
	DeliverTo    json.RawMessage `json:"deliverTo"`
	MobileNumber json.RawMessage `json:"mobileNumber"`
	Status       json.RawMessage `json:"status"`
	Dishes       json.RawMessage `json:"dishes"`
}

// Order represents the transport-layer shape returned to clients.
type Order struct {
	ID           string           `json:"id"`
	DeliverTo    string           `json:"deliverTo"`
	MobileNumber string           `json:"mobileNumber"`
	Status       string           `json:"status"`
	Dishes       []map[string]any `json:"dishes"`
}

// DecodePayload reads a {"data": {...}} body. Only invalid JSON is an error:
// an empty body, a non-object body or a non-object data value all yield an
// empty payload that the field checks then reject.
func DecodePayload(body []byte) (OrderData, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return OrderData{}, nil
	}
	if !json.Valid(body) {
		return OrderData{}, ErrMalformedPayload
	}
	var envelope Envelope[json.RawMessage]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return OrderData{}, nil
	}
	raw := bytes.TrimSpace(envelope.Data)
	if len(raw) == 0 || raw[0] != '{' {
		return OrderData{}, nil
	}
	var data OrderData
	if err := json.Unmarshal(raw, &data); err != nil {
		return OrderData{}, nil
	}
	return data, nil
}

// Field returns the named payload field and whether it is present. Scalar
// fields count only as non-empty JSON strings.
func (d OrderData) Field(name string) (string, bool) {
	switch name {
	case "id":
		return nonEmptyText(d.ID)
	case "deliverTo":
		return nonEmptyText(d.DeliverTo)
	case "mobileNumber":
		return nonEmptyText(d.MobileNumber)
	case "status":
		return nonEmptyText(d.Status)
	case "dishes":
		raw := bytes.TrimSpace(d.Dishes)
		return string(raw), isTruthyJSON(raw)
	default:
		return "", false
	}
}

// MismatchedID returns the body id when one is given and it differs from
// routeID. Any truthy non-string id never matches.
func (d OrderData) MismatchedID(routeID string) (string, bool) {
	raw := bytes.TrimSpace(d.ID)
	if !isTruthyJSON(raw) {
		return "", false
	}
	if s, ok := textOf(raw); ok {
		return s, s != routeID
	}
	return string(raw), true
}

// DishElements splits the raw dishes value into its elements. ok is false
// when the value is missing or is not a JSON array.
func DishElements(raw json.RawMessage) (elements []json.RawMessage, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, false
	}
	return elements, true
}

// DishQuantity extracts a positive integer quantity from one dish element.
func DishQuantity(element json.RawMessage) (int, bool) {
	dish, err := decodeObject(element)
	if err != nil {
		return 0, false
	}
	return quantityOf(dish[quantityField])
}

// ToInput converts a validated payload into the service input.
func ToInput(data OrderData) (ports.OrderInput, error) {
	elements, ok := DishElements(data.Dishes)
	if !ok || len(elements) == 0 {
		return ports.OrderInput{}, domain.ErrNoDishes
	}
	dishes := make([]domain.Dish, 0, len(elements))
	for i, element := range elements {
		dish, err := toDomainDish(element)
		if err != nil {
			return ports.OrderInput{}, domain.DishQuantityError{Index: i}
		}
		dishes = append(dishes, dish)
	}
	deliverTo, _ := data.Field("deliverTo")
	mobileNumber, _ := data.Field("mobileNumber")
	status, _ := data.Field("status")
	return ports.OrderInput{
		DeliverTo:    deliverTo,
		MobileNumber: mobileNumber,
		Status:       domain.Status(status),
		Dishes:       dishes,
	}, nil
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	dishes := make([]map[string]any, 0, len(order.Dishes))
	for _, dish := range order.Dishes {
		dishes = append(dishes, FromDomainDish(dish))
	}
	return Order{
		ID:           order.ID,
		DeliverTo:    order.DeliverTo,
		MobileNumber: order.MobileNumber,
		Status:       string(order.Status),
		Dishes:       dishes,
	}
}

// FromDomainOrders converts a list preserving order.
func FromDomainOrders(orders []*domain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, FromDomainOrder(order))
	}
	return result
}

// FromDomainDish flattens a dish back into a single JSON object.
func FromDomainDish(dish domain.Dish) map[string]any {
	out := make(map[string]any, len(dish.Attributes)+1)
	for k, v := range dish.Attributes {
		out[k] = v
	}
	out[quantityField] = dish.Quantity
	return out
}

// ToDomainDish splits a JSON object into quantity and pass-through attributes.
func ToDomainDish(fields map[string]any) (domain.Dish, error) {
	quantity, ok := quantityOf(fields[quantityField])
	if !ok {
		return domain.Dish{}, domain.ErrInvalidQuantity
	}
	attributes := make(map[string]any, len(fields))
	for k, v := range fields {
		if k != quantityField {
			attributes[k] = v
		}
	}
	return domain.Dish{Quantity: quantity, Attributes: attributes}, nil
}

func toDomainDish(element json.RawMessage) (domain.Dish, error) {
	fields, err := decodeObject(element)
	if err != nil {
		return domain.Dish{}, err
	}
	return ToDomainDish(fields)
}

func decodeObject(element json.RawMessage) (map[string]any, error) {
	element = bytes.TrimSpace(element)
	if len(element) == 0 || element[0] != '{' {
		return nil, errors.New("dish must be a JSON object")
	}
	dec := json.NewDecoder(bytes.NewReader(element))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode dish: %w", err)
	}
	return fields, nil
}

// maxQuantity is the exclusive float bound for a quantity that still fits an int64.
const maxQuantity = float64(1 << 63)

// quantityOf accepts whole JSON numbers greater than zero, including 2.0.
// Values beyond the int range are rejected.
func quantityOf(value any) (int, bool) {
	var f float64
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			if n <= 0 || n > math.MaxInt {
				return 0, false
			}
			return int(n), true
		}
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = v
	case int:
		f = float64(v)
	default:
		return 0, false
	}
	if f <= 0 || f >= maxQuantity || f > math.MaxInt || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// textOf decodes raw as a JSON string.
func textOf(raw []byte) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func nonEmptyText(raw []byte) (string, bool) {
	s, ok := textOf(raw)
	return s, ok && s != ""
}

// isTruthyJSON mirrors a loose truthiness test on a raw JSON value.
func isTruthyJSON(raw []byte) bool {
	switch string(raw) {
	case "", "null", "false", "0", `""`:
		return false
	default:
		return true
	}
}
