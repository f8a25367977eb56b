package domain

import "encoding/json"

// Entities serialise their validated fields and re-validate on decode, so a
// persisted or transported record can never bypass its constructor.

type keyboardWire struct {
	Keys      KeyCount   `json:"number_of_keys"`
	Switch    SwitchType `json:"switch_type"`
	Backlight bool       `json:"need_backlight"`
}

// MarshalJSON implements json.Marshaler.
func (k Keyboard) MarshalJSON() ([]byte, error) {
	return json.Marshal(keyboardWire{Keys: k.keys, Switch: k.switchType, Backlight: k.backlight})
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *Keyboard) UnmarshalJSON(data []byte) error {
	return decodeInto(data, DecodeKeyboard, k)
}

type sampleWire struct {
	Volume   float64 `json:"sample_volume"`
	Material string  `json:"material"`
}

// MarshalJSON implements json.Marshaler.
func (s Sample) MarshalJSON() ([]byte, error) {
	return json.Marshal(sampleWire{Volume: s.volume, Material: s.material})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Sample) UnmarshalJSON(data []byte) error {
	return decodeInto(data, DecodeSample, s)
}

type coffeeWire struct {
	Size      CoffeeSize `json:"coffee_size"`
	Sort      CoffeeSort `json:"coffee_sort"`
	Sugar     bool       `json:"need_sugar"`
	Milk      bool       `json:"need_milk"`
	Additions float64    `json:"additions"`
}

// MarshalJSON implements json.Marshaler.
func (c Coffee) MarshalJSON() ([]byte, error) {
	return json.Marshal(coffeeWire{Size: c.cup, Sort: c.sort, Sugar: c.sugar, Milk: c.milk, Additions: c.extra})
}

// UnmarshalJSON implements json.Unmarshaler. The notifier is kept.
func (c *Coffee) UnmarshalJSON(data []byte) error {
	n := c.notifier
	if err := decodeInto(data, DecodeCoffee, c); err != nil {
		return err
	}
	c.notifier = n
	return nil
}

type bookWire struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Pages int    `json:"pages"`
}

// MarshalJSON implements json.Marshaler.
func (b Book) MarshalJSON() ([]byte, error) {
	return json.Marshal(bookWire{ID: b.id, Name: b.name, Pages: b.pages})
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Book) UnmarshalJSON(data []byte) error {
	return decodeInto(data, DecodeBook, b)
}

// MarshalJSON encodes the library as an ordered array of books.
func (l Library) MarshalJSON() ([]byte, error) {
	books := l.books
	if books == nil {
		books = []Book{}
	}
	return json.Marshal(books)
}

// UnmarshalJSON decodes an ordered array of books.
func (l *Library) UnmarshalJSON(data []byte) error {
	var books []Book
	if err := json.Unmarshal(data, &books); err != nil {
		return err
	}
	l.books = books
	return nil
}

type plantWire struct {
	Age          int     `json:"age"`
	Height       float64 `json:"height"`
	SoilVolume   float64 `json:"soil_volume"`
	NeedWatering *bool   `json:"need_watering,omitempty"`
	NeedPruning  *bool   `json:"need_pruning,omitempty"`
}

func (p Plant) wire() plantWire {
	return plantWire{Age: p.age, Height: p.height, SoilVolume: p.soilVolume}
}

// MarshalJSON implements json.Marshaler.
func (p Plant) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.wire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Plant) UnmarshalJSON(data []byte) error {
	return decodeInto(data, DecodePlant, p)
}

// MarshalJSON implements json.Marshaler.
func (a Araucaria) MarshalJSON() ([]byte, error) {
	w := a.wire()
	w.NeedWatering = &a.needWatering
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Araucaria) UnmarshalJSON(data []byte) error {
	return decodeInto(data, DecodeAraucaria, a)
}

// MarshalJSON implements json.Marshaler.
func (f Fittonia) MarshalJSON() ([]byte, error) {
	w := f.wire()
	w.NeedPruning = &f.needPruning
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Fittonia) UnmarshalJSON(data []byte) error {
	return decodeInto(data, DecodeFittonia, f)
}

func decodeInto[T any](data []byte, decode func(Payload) (T, error), dst *T) error {
	p, err := ParsePayload(data)
	if err != nil {
		return err
	}
	v, err := decode(p)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
