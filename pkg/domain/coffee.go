package domain

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// CoffeeSize enumerates the cup sizes offered, in ml.
type CoffeeSize int

// Supported cup sizes.
const (
	Size200 CoffeeSize = 200
	Size300 CoffeeSize = 300
	Size400 CoffeeSize = 400
)

// Valid reports whether s is an offered cup size.
func (s CoffeeSize) Valid() bool {
	switch s {
	case Size200, Size300, Size400:
		return true
	}
	return false
}

// CoffeeSort enumerates bean sorts in stock.
type CoffeeSort string

// Supported coffee sorts.
const (
	SortArabica  CoffeeSort = "arabica"
	SortRobusta  CoffeeSort = "robusta"
	SortLiberica CoffeeSort = "liberica"
)

var sortAliases = map[string]CoffeeSort{
	"arabica":  SortArabica,
	"robusta":  SortRobusta,
	"liberica": SortLiberica,
	"арабика":  SortArabica,
	"робуста":  SortRobusta,
	"либерика": SortLiberica,
}

// ParseCoffeeSort resolves a sort name case-insensitively.
func ParseCoffeeSort(s string) (CoffeeSort, error) {
	if cs, ok := sortAliases[strings.ToLower(s)]; ok {
		return cs, nil
	}
	return "", RangeConstraintError{Entity: EntityCoffee, Field: "coffee_sort", Value: s, Reason: "sort not in stock"}
}

// Notifier receives progress messages emitted by coffee preparation.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

// Notify calls f(msg).
func (f NotifierFunc) Notify(msg string) { f(msg) }

// WriterNotifier writes each message as a line to W.
type WriterNotifier struct {
	W io.Writer
}

// Notify writes msg followed by a newline.
func (n WriterNotifier) Notify(msg string) {
	_, _ = fmt.Fprintln(n.W, msg)
}

// DefaultNotifier is used by coffees that were not given a notifier.
var DefaultNotifier Notifier = WriterNotifier{W: os.Stdout}

// Coffee is a cup whose volume starts at an offered size and grows with
// additions.
type Coffee struct {
	cup      CoffeeSize
	extra    float64
	sort     CoffeeSort
	sugar    bool
	milk     bool
	notifier Notifier
}

// NewCoffee validates the cup size and sort and prepares a coffee.
func NewCoffee(size CoffeeSize, sort CoffeeSort, needSugar, needMilk bool) (Coffee, error) {
	if !size.Valid() {
		return Coffee{}, RangeConstraintError{Entity: EntityCoffee, Field: "coffee_size", Value: int(size), Reason: "size not offered"}
	}
	cs, err := ParseCoffeeSort(string(sort))
	if err != nil {
		return Coffee{}, err
	}
	return Coffee{cup: size, sort: cs, sugar: needSugar, milk: needMilk}, nil
}

// Size returns the current volume in ml: the cup size plus all additions.
func (c Coffee) Size() float64 { return float64(c.cup) + c.extra }

// Cup returns the cup size ordered at construction.
func (c Coffee) Cup() CoffeeSize { return c.cup }

// Additions returns the total amount added since construction.
func (c Coffee) Additions() float64 { return c.extra }

// Sort returns the normalised coffee sort.
func (c Coffee) Sort() CoffeeSort { return c.sort }

// NeedSugar reports the sugar flag supplied at construction.
func (c Coffee) NeedSugar() bool { return c.sugar }

// NeedMilk reports the milk flag supplied at construction.
func (c Coffee) NeedMilk() bool { return c.milk }

// SetNotifier routes preparation messages to n; nil restores DefaultNotifier.
func (c *Coffee) SetNotifier(n Notifier) { c.notifier = n }

// AddSugar announces and adds a portion of sugar (g) to the cup.
func (c *Coffee) AddSugar(grams float64) error {
	return c.add("sugar", grams, "Adding sugar...")
}

// AddMilk announces and adds a portion of milk (ml) to the cup.
func (c *Coffee) AddMilk(ml float64) error {
	return c.add("milk", ml, "Adding milk...")
}

func (c *Coffee) add(field string, amount float64, announcement string) error {
	if err := checkAmount(EntityCoffee, field, amount, 0); err != nil {
		return err
	}
	n := c.notifier
	if n == nil {
		n = DefaultNotifier
	}
	n.Notify(announcement)
	c.extra += amount
	return nil
}

func (c Coffee) String() string {
	var extras []string
	if c.sugar {
		extras = append(extras, "sugar")
	}
	if c.milk {
		extras = append(extras, "milk")
	}
	with := "black"
	if len(extras) > 0 {
		with = "with " + strings.Join(extras, " and ")
	}
	return fmt.Sprintf("Coffee: %s, %g ml, %s.", c.sort, c.Size(), with)
}

// GoString renders the coffee in constructor form.
func (c Coffee) GoString() string {
	return fmt.Sprintf("Coffee(coffee_size=%g, coffee_sort=%q, need_sugar=%t, need_milk=%t)", c.Size(), c.sort, c.sugar, c.milk)
}
