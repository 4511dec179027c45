package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ItemIDField is the primary key every item must carry
const ItemIDField = "id"

// ErrInvalidItemID is returned when an item's id is not a non-empty string
var ErrInvalidItemID = errors.New("item id must be a non-empty string")

// Item is a keyed record persisted in the store. Values are JSON-compatible;
// numbers decoded from the wire are json.Number, numbers prepared for the
// store are Decimal.
type Item map[string]any

// ID returns the item's primary key
func (i Item) ID() (string, error) {
	raw, ok := i[ItemIDField]
	if !ok {
		return "", ErrInvalidItemID
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("%w, got %T", ErrInvalidItemID, raw)
	}
	return id, nil
}

// DecodeItem parses a stored or transmitted item, keeping numbers exact
func DecodeItem(data []byte) (Item, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var item Item
	if err := dec.Decode(&item); err != nil {
		return nil, fmt.Errorf("failed to decode item: %w", err)
	}
	if item == nil {
		return nil, errors.New("failed to decode item: not an object")
	}
	return item, nil
}

// NormalizeItem returns a deep copy of item with every number replaced by a
// Decimal. The input is left untouched.
func NormalizeItem(item Item) (Item, error) {
	out, err := normalizeValue(map[string]any(item))
	if err != nil {
		return nil, err
	}
	return Item(out.(map[string]any)), nil
}

func normalizeValue(v any) (any, error) {
	switch val := v.(type) {
	case nil, string, bool, Decimal:
		return val, nil
	case json.Number:
		return ParseDecimal(val.String())
	case float64:
		return DecimalFromFloat(val)
	case float32:
		return DecimalFromFloat(float64(val))
	case int:
		return DecimalFromInt(int64(val)), nil
	case int64:
		return DecimalFromInt(val), nil
	case int32:
		return DecimalFromInt(int64(val)), nil
	case Item:
		return normalizeValue(map[string]any(val))
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			n, err := normalizeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for idx, elem := range val {
			n, err := normalizeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", idx, err)
			}
			out[idx] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
