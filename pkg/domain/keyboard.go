package domain

import (
	"fmt"
	"strings"
)

// KeyCount enumerates the supported keyboard form factors by key count.
type KeyCount int

// Supported keyboard form factors.
const (
	Keys61  KeyCount = 61
	Keys64  KeyCount = 64
	Keys67  KeyCount = 67
	Keys85  KeyCount = 85
	Keys103 KeyCount = 103
)

// KeyCounts returns every supported form factor in ascending order.
func KeyCounts() []KeyCount {
	return []KeyCount{Keys61, Keys64, Keys67, Keys85, Keys103}
}

// Valid reports whether k is a supported form factor.
func (k KeyCount) Valid() bool {
	switch k {
	case Keys61, Keys64, Keys67, Keys85, Keys103:
		return true
	}
	return false
}

// SwitchType enumerates mechanical switch colours.
type SwitchType string

// Supported switch types.
const (
	SwitchRed   SwitchType = "red"
	SwitchBlue  SwitchType = "blue"
	SwitchBrown SwitchType = "brown"
	SwitchBlack SwitchType = "black"
)

var switchAliases = map[string]SwitchType{
	"red":        SwitchRed,
	"blue":       SwitchBlue,
	"brown":      SwitchBrown,
	"black":      SwitchBlack,
	"красный":    SwitchRed,
	"синий":      SwitchBlue,
	"коричневый": SwitchBrown,
	"черный":     SwitchBlack,
}

// ParseSwitchType resolves a switch colour case-insensitively.
func ParseSwitchType(s string) (SwitchType, error) {
	if st, ok := switchAliases[strings.ToLower(s)]; ok {
		return st, nil
	}
	return "", RangeConstraintError{Entity: EntityKeyboard, Field: "switch_type", Value: s, Reason: "unknown switch type"}
}

// Valid reports whether s is one of the canonical switch types.
func (s SwitchType) Valid() bool {
	switch s {
	case SwitchRed, SwitchBlue, SwitchBrown, SwitchBlack:
		return true
	}
	return false
}

// Keyboard describes a mechanical keyboard.
type Keyboard struct {
	keys       KeyCount
	switchType SwitchType
	backlight  bool
}

// NewKeyboard validates the form factor and switch type and builds a keyboard.
// The switch type is normalised to lower case.
func NewKeyboard(keys KeyCount, switchType SwitchType, needBacklight bool) (Keyboard, error) {
	if !keys.Valid() {
		return Keyboard{}, RangeConstraintError{Entity: EntityKeyboard, Field: "key_count", Value: int(keys), Reason: "no keyboard form factor with this key count"}
	}
	st, err := ParseSwitchType(string(switchType))
	if err != nil {
		return Keyboard{}, err
	}
	return Keyboard{keys: keys, switchType: st, backlight: needBacklight}, nil
}

// KeyCount returns the number of keys.
func (k Keyboard) KeyCount() KeyCount { return k.keys }

// SwitchType returns the normalised switch type.
func (k Keyboard) SwitchType() SwitchType { return k.switchType }

// NeedBacklight reports the backlight flag supplied at construction.
func (k Keyboard) NeedBacklight() bool { return k.backlight }

// BacklightOn is part of the keyboard interface and intentionally changes nothing.
func (k *Keyboard) BacklightOn() {}

// BacklightOff is part of the keyboard interface and intentionally changes nothing.
func (k *Keyboard) BacklightOff() {}

func (k Keyboard) String() string {
	light := "without backlight"
	if k.backlight {
		light = "with backlight"
	}
	return fmt.Sprintf("Keyboard: %d keys, %s switches, %s.", k.keys, k.switchType, light)
}

// GoString renders the keyboard in constructor form.
func (k Keyboard) GoString() string {
	return fmt.Sprintf("Keyboard(number_of_keys=%d, switch_type=%q, need_backlight=%t)", k.keys, k.switchType, k.backlight)
}
