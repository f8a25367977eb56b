package domain

import "fmt"

// Sample is a solution whose volume (ml) grows as water or material is added.
type Sample struct {
	volume   float64
	material string
}

// NewSample validates the starting volume and builds a sample.
func NewSample(volume float64, material string) (Sample, error) {
	if err := checkAmount(EntitySample, "sample_volume", volume, 0); err != nil {
		return Sample{}, err
	}
	return Sample{volume: volume, material: material}, nil
}

// Volume returns the current sample volume in ml.
func (s Sample) Volume() float64 { return s.volume }

// Material returns the sample material.
func (s Sample) Material() string { return s.material }

// AddWater dilutes the sample with ml of water.
func (s *Sample) AddWater(ml float64) error {
	if err := checkAmount(EntitySample, "water", ml, 0); err != nil {
		return err
	}
	s.volume += ml
	return nil
}

// AddMaterial adds ml of the sample material.
func (s *Sample) AddMaterial(ml float64) error {
	if err := checkAmount(EntitySample, "material", ml, 0); err != nil {
		return err
	}
	s.volume += ml
	return nil
}

func (s Sample) String() string {
	return fmt.Sprintf("Sample of %s, %g ml.", s.material, s.volume)
}

// GoString renders the sample in constructor form.
func (s Sample) GoString() string {
	return fmt.Sprintf("Sample(sample_volume=%g, material=%q)", s.volume, s.material)
}
