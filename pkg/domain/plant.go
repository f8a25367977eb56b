package domain

import "fmt"

const (
	// MaxFertilizerLiters caps a single fertilizer portion.
	MaxFertilizerLiters = 0.3
	// MaxWateringLiters caps a single watering.
	MaxWateringLiters = 0.5
)

// Fertilizable is implemented by every plant variant.
type Fertilizable interface {
	AddFertilizer(liters float64) error
	SoilVolume() float64
}

var (
	_ Fertilizable = (*Plant)(nil)
	_ Fertilizable = (*Araucaria)(nil)
	_ Fertilizable = (*Fittonia)(nil)
)

// Plant is a potted plant. Age and height are fixed at construction; soil
// volume only grows through fertilizer (and watering for araucarias).
type Plant struct {
	kind       EntityType
	age        int
	height     float64
	soilVolume float64
}

// NewPlant validates age (years), height (m) and soil volume (L).
func NewPlant(age int, height, soilVolume float64) (Plant, error) {
	return newPlant(EntityPlant, age, height, soilVolume)
}

func newPlant(entity EntityType, age int, height, soilVolume float64) (Plant, error) {
	if age < 0 {
		return Plant{}, RangeConstraintError{Entity: entity, Field: "age", Value: age, Reason: "must not be negative"}
	}
	if err := checkAmount(entity, "height", height, 0); err != nil {
		return Plant{}, err
	}
	if err := checkAmount(entity, "soil_volume", soilVolume, 0); err != nil {
		return Plant{}, err
	}
	return Plant{kind: entity, age: age, height: height, soilVolume: soilVolume}, nil
}

// entity names the variant the plant was built as, for error reporting.
func (p Plant) entity() EntityType {
	if p.kind == "" {
		return EntityPlant
	}
	return p.kind
}

// Age returns the plant age in years.
func (p Plant) Age() int { return p.age }

// Height returns the plant height in metres.
func (p Plant) Height() float64 { return p.height }

// SoilVolume returns the soil volume in litres.
func (p Plant) SoilVolume() float64 { return p.soilVolume }

// AddFertilizer adds at most MaxFertilizerLiters of fertilizer to the soil.
func (p *Plant) AddFertilizer(liters float64) error {
	if err := checkAmount(p.entity(), "fertilizer", liters, MaxFertilizerLiters); err != nil {
		return err
	}
	p.soilVolume += liters
	return nil
}

func (p Plant) String() string {
	return fmt.Sprintf("This is a plant. Age: %d years, height: %g m, soil volume: %g L.", p.age, p.height, p.soilVolume)
}

// GoString renders the plant in constructor form.
func (p Plant) GoString() string {
	return fmt.Sprintf("Plant(%s)", p.fields())
}

func (p Plant) fields() string {
	return fmt.Sprintf("age=%d, height=%g, soil_volume=%g", p.age, p.height, p.soilVolume)
}

// Araucaria is a plant that may need watering.
type Araucaria struct {
	Plant
	needWatering bool
}

// NewAraucaria validates the plant attributes and builds an araucaria.
func NewAraucaria(age int, height, soilVolume float64, needWatering bool) (Araucaria, error) {
	p, err := newPlant(EntityAraucaria, age, height, soilVolume)
	if err != nil {
		return Araucaria{}, err
	}
	return Araucaria{Plant: p, needWatering: needWatering}, nil
}

// NeedWatering reports the stored watering flag.
func (a Araucaria) NeedWatering() bool { return a.needWatering }

// SetNeedWatering replaces the stored watering flag.
func (a *Araucaria) SetNeedWatering(v bool) { a.needWatering = v }

// Watering validates liters whatever the flag and adds it to the soil only
// when needWatering is true. The stored flag is not consulted; see
// WaterIfNeeded.
func (a *Araucaria) Watering(liters float64, needWatering bool) error {
	if err := checkAmount(EntityAraucaria, "water", liters, MaxWateringLiters); err != nil {
		return err
	}
	if needWatering {
		a.soilVolume += liters
	}
	return nil
}

// WaterIfNeeded waters using the stored flag.
func (a *Araucaria) WaterIfNeeded(liters float64) error {
	return a.Watering(liters, a.needWatering)
}

func (a Araucaria) String() string {
	if a.needWatering {
		return a.Plant.String() + " Araucaria needs watering!"
	}
	return a.Plant.String() + " Araucaria does not need watering :)"
}

// GoString renders the araucaria in constructor form.
func (a Araucaria) GoString() string {
	return fmt.Sprintf("Araucaria(%s, need_watering=%t)", a.fields(), a.needWatering)
}

// Fittonia is a plant that may need pruning.
type Fittonia struct {
	Plant
	needPruning bool
}

// NewFittonia validates the plant attributes and builds a fittonia.
func NewFittonia(age int, height, soilVolume float64, needPruning bool) (Fittonia, error) {
	p, err := newPlant(EntityFittonia, age, height, soilVolume)
	if err != nil {
		return Fittonia{}, err
	}
	return Fittonia{Plant: p, needPruning: needPruning}, nil
}

// NeedPruning reports the stored pruning flag.
func (f Fittonia) NeedPruning() bool { return f.needPruning }

// SetNeedPruning replaces the stored pruning flag.
func (f *Fittonia) SetNeedPruning(v bool) { f.needPruning = v }

// Pruning accepts the pruning flag and leaves the plant unchanged.
func (f *Fittonia) Pruning(needPruning bool) {}

func (f Fittonia) String() string {
	if f.needPruning {
		return f.Plant.String() + " Fittonia needs pruning!"
	}
	return f.Plant.String() + " Fittonia does not need pruning :)"
}

// GoString renders the fittonia in constructor form.
func (f Fittonia) GoString() string {
	return fmt.Sprintf("Fittonia(%s, need_pruning=%t)", f.fields(), f.needPruning)
}
