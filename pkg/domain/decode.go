package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Payload is a loosely typed record as produced by JSON or YAML decoding.
type Payload map[string]any

// ParsePayload decodes a JSON object, keeping numbers as json.Number so that
// integer fields can tell 103 apart from 103.5.
func ParsePayload(data []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("decode payload: expected object")
	}
	return p, nil
}

// DecodeKeyboard builds a keyboard from number_of_keys, switch_type and need_backlight.
func DecodeKeyboard(p Payload) (Keyboard, error) {
	keys, err := p.intField(EntityKeyboard, "number_of_keys")
	if err != nil {
		return Keyboard{}, err
	}
	sw, err := p.stringField(EntityKeyboard, "switch_type")
	if err != nil {
		return Keyboard{}, err
	}
	light, err := p.boolField(EntityKeyboard, "need_backlight")
	if err != nil {
		return Keyboard{}, err
	}
	return NewKeyboard(KeyCount(keys), SwitchType(sw), light)
}

// DecodeSample builds a sample from sample_volume and material.
func DecodeSample(p Payload) (Sample, error) {
	volume, err := p.numberField(EntitySample, "sample_volume")
	if err != nil {
		return Sample{}, err
	}
	material, err := p.stringField(EntitySample, "material")
	if err != nil {
		return Sample{}, err
	}
	return NewSample(volume, material)
}

// DecodeCoffee builds a coffee from coffee_size, coffee_sort, need_sugar and
// need_milk, plus the optional additions total written by MarshalJSON.
// coffee_size must be one of the offered sizes, so it is read as an integer.
func DecodeCoffee(p Payload) (Coffee, error) {
	size, err := p.intField(EntityCoffee, "coffee_size")
	if err != nil {
		return Coffee{}, err
	}
	sort, err := p.stringField(EntityCoffee, "coffee_sort")
	if err != nil {
		return Coffee{}, err
	}
	sugar, err := p.boolField(EntityCoffee, "need_sugar")
	if err != nil {
		return Coffee{}, err
	}
	milk, err := p.boolField(EntityCoffee, "need_milk")
	if err != nil {
		return Coffee{}, err
	}
	c, err := NewCoffee(CoffeeSize(size), CoffeeSort(sort), sugar, milk)
	if err != nil {
		return Coffee{}, err
	}
	if _, ok := p["additions"]; ok {
		extra, err := p.numberField(EntityCoffee, "additions")
		if err != nil {
			return Coffee{}, err
		}
		if err := checkAmount(EntityCoffee, "additions", extra, 0); err != nil {
			return Coffee{}, err
		}
		c.extra = extra
	}
	return c, nil
}

// DecodeBook builds a book from id, name and pages.
func DecodeBook(p Payload) (Book, error) {
	id, err := p.intField(EntityBook, "id")
	if err != nil {
		return Book{}, err
	}
	name, err := p.stringField(EntityBook, "name")
	if err != nil {
		return Book{}, err
	}
	pages, err := p.intField(EntityBook, "pages")
	if err != nil {
		return Book{}, err
	}
	return NewBook(id, name, pages)
}

// DecodePlant builds a plant from age, height and soil_volume.
func DecodePlant(p Payload) (Plant, error) {
	return p.plant(EntityPlant)
}

// DecodeAraucaria builds an araucaria from the plant fields and need_watering.
func DecodeAraucaria(p Payload) (Araucaria, error) {
	base, err := p.plant(EntityAraucaria)
	if err != nil {
		return Araucaria{}, err
	}
	need, err := p.boolField(EntityAraucaria, "need_watering")
	if err != nil {
		return Araucaria{}, err
	}
	return Araucaria{Plant: base, needWatering: need}, nil
}

// DecodeFittonia builds a fittonia from the plant fields and need_pruning.
func DecodeFittonia(p Payload) (Fittonia, error) {
	base, err := p.plant(EntityFittonia)
	if err != nil {
		return Fittonia{}, err
	}
	need, err := p.boolField(EntityFittonia, "need_pruning")
	if err != nil {
		return Fittonia{}, err
	}
	return Fittonia{Plant: base, needPruning: need}, nil
}

func (p Payload) plant(entity EntityType) (Plant, error) {
	age, err := p.intField(entity, "age")
	if err != nil {
		return Plant{}, err
	}
	height, err := p.numberField(entity, "height")
	if err != nil {
		return Plant{}, err
	}
	soil, err := p.numberField(entity, "soil_volume")
	if err != nil {
		return Plant{}, err
	}
	return newPlant(entity, age, height, soil)
}

// Number reads a finite numeric field.
func (p Payload) Number(entity EntityType, key string) (float64, error) {
	return p.numberField(entity, key)
}

// Int reads an integral field.
func (p Payload) Int(entity EntityType, key string) (int, error) {
	return p.intField(entity, key)
}

// Bool reads a boolean field.
func (p Payload) Bool(entity EntityType, key string) (bool, error) {
	return p.boolField(entity, key)
}

// Text reads a string field.
func (p Payload) Text(entity EntityType, key string) (string, error) {
	return p.stringField(entity, key)
}

func (p Payload) lookup(entity EntityType, key string) (any, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, TypeConstraintError{Entity: entity, Field: key, Value: nil, Reason: "is required"}
	}
	return v, nil
}

func (p Payload) intField(entity EntityType, key string) (int, error) {
	v, err := p.lookup(entity, key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case uint64:
		if n > math.MaxInt32 {
			break
		}
		return int(n), nil
	case json.Number:
		if i, err := strconv.ParseInt(string(n), 10, 0); err == nil {
			return int(i), nil
		}
	}
	return 0, TypeConstraintError{Entity: entity, Field: key, Value: v, Reason: "must be an integer"}
}

func (p Payload) numberField(entity EntityType, key string) (float64, error) {
	v, err := p.lookup(entity, key)
	if err != nil {
		return 0, err
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, perr := n.Float64()
		if perr != nil {
			return 0, TypeConstraintError{Entity: entity, Field: key, Value: v, Reason: "must be a number"}
		}
		f = parsed
	default:
		return 0, TypeConstraintError{Entity: entity, Field: key, Value: v, Reason: "must be a number"}
	}
	if err := checkFinite(entity, key, f); err != nil {
		return 0, err
	}
	return f, nil
}

func (p Payload) stringField(entity EntityType, key string) (string, error) {
	v, err := p.lookup(entity, key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", TypeConstraintError{Entity: entity, Field: key, Value: v, Reason: "must be a string"}
	}
	return s, nil
}

func (p Payload) boolField(entity EntityType, key string) (bool, error) {
	v, err := p.lookup(entity, key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, TypeConstraintError{Entity: entity, Field: key, Value: v, Reason: "must be a boolean"}
	}
	return b, nil
}
