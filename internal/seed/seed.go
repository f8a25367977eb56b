// Package seed loads bench fixtures from YAML or JSON and applies them to a
// bench service. Every record passes through the domain decoders, so a
// fixture is validated exactly like an API request.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"labworks/internal/core"
	"labworks/pkg/domain"
)

//go:embed default.yaml
var defaultFixture []byte

// Format names a fixture encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Fixture is the raw, undecoded content of a fixture file.
type Fixture struct {
	Keyboards  []domain.Payload `yaml:"keyboards" json:"keyboards"`
	Samples    []domain.Payload `yaml:"samples" json:"samples"`
	Coffees    []domain.Payload `yaml:"coffees" json:"coffees"`
	Books      []domain.Payload `yaml:"books" json:"books"`
	Plants     []domain.Payload `yaml:"plants" json:"plants"`
	Araucarias []domain.Payload `yaml:"araucarias" json:"araucarias"`
	Fittonias  []domain.Payload `yaml:"fittonias" json:"fittonias"`
}

// BookEntry is a decoded book. ID 0 asks the library for its next id.
type BookEntry struct {
	ID    int
	Name  string
	Pages int
}

// Bench holds the validated records of a fixture.
type Bench struct {
	Keyboards  []domain.Keyboard
	Samples    []domain.Sample
	Coffees    []domain.Coffee
	Books      []BookEntry
	Plants     []domain.Plant
	Araucarias []domain.Araucaria
	Fittonias  []domain.Fittonia
}

// Summary counts the records applied per entity kind.
type Summary map[domain.EntityType]int

// Total returns the number of applied records.
func (s Summary) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

// FormatFor picks a format from a file extension; anything other than
// .json is read as YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes fixture bytes. JSON numbers are kept as json.Number so that
// integer fields reject fractional input.
func Parse(data []byte, format Format) (Fixture, error) {
	var fx Fixture
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		dec.DisallowUnknownFields()
		if err := dec.Decode(&fx); err != nil {
			return Fixture{}, fmt.Errorf("parse json fixture: %w", err)
		}
	case FormatYAML:
		if err := yaml.UnmarshalStrict(data, &fx); err != nil {
			return Fixture{}, fmt.Errorf("parse yaml fixture: %w", err)
		}
	default:
		return Fixture{}, fmt.Errorf("unknown fixture format %q", format)
	}
	return fx, nil
}

// Load reads and parses the fixture at path.
func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied fixture path
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data, FormatFor(path))
}

// Default returns the embedded demonstration fixture.
func Default() Fixture {
	fx, err := Parse(defaultFixture, FormatYAML)
	if err != nil {
		panic(fmt.Errorf("embedded fixture: %w", err))
	}
	return fx
}

// Decode validates every record of fx. Errors name the offending list entry.
func Decode(fx Fixture) (Bench, error) {
	var b Bench
	var err error
	if b.Keyboards, err = decodeAll("keyboards", fx.Keyboards, domain.DecodeKeyboard); err != nil {
		return Bench{}, err
	}
	if b.Samples, err = decodeAll("samples", fx.Samples, domain.DecodeSample); err != nil {
		return Bench{}, err
	}
	if b.Coffees, err = decodeAll("coffees", fx.Coffees, domain.DecodeCoffee); err != nil {
		return Bench{}, err
	}
	if b.Books, err = decodeAll("books", fx.Books, decodeBookEntry); err != nil {
		return Bench{}, err
	}
	if b.Plants, err = decodeAll("plants", fx.Plants, domain.DecodePlant); err != nil {
		return Bench{}, err
	}
	if b.Araucarias, err = decodeAll("araucarias", fx.Araucarias, domain.DecodeAraucaria); err != nil {
		return Bench{}, err
	}
	if b.Fittonias, err = decodeAll("fittonias", fx.Fittonias, domain.DecodeFittonia); err != nil {
		return Bench{}, err
	}
	return b, nil
}

func decodeAll[T any](list string, payloads []domain.Payload, decode func(domain.Payload) (T, error)) ([]T, error) {
	out := make([]T, 0, len(payloads))
	for i, p := range payloads {
		v, err := decode(p)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", list, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeBookEntry(p domain.Payload) (BookEntry, error) {
	if _, ok := p["id"]; ok {
		book, err := domain.DecodeBook(p)
		if err != nil {
			return BookEntry{}, err
		}
		return BookEntry{ID: book.ID(), Name: book.Name(), Pages: book.Pages()}, nil
	}
	name, err := p.Text(domain.EntityBook, "name")
	if err != nil {
		return BookEntry{}, err
	}
	pages, err := p.Int(domain.EntityBook, "pages")
	if err != nil {
		return BookEntry{}, err
	}
	// validate with a placeholder id; the real one is assigned on insert
	if _, err := domain.NewBook(1, name, pages); err != nil {
		return BookEntry{}, err
	}
	return BookEntry{Name: name, Pages: pages}, nil
}

// Library builds the library the bench's books form on their own.
func (b Bench) Library() (domain.Library, error) {
	lib := domain.NewLibrary()
	for _, e := range b.Books {
		if e.ID == 0 {
			if _, err := lib.AddBook(e.Name, e.Pages); err != nil {
				return domain.Library{}, err
			}
			continue
		}
		book, err := domain.NewBook(e.ID, e.Name, e.Pages)
		if err != nil {
			return domain.Library{}, err
		}
		lib.Append(book)
	}
	return lib, nil
}

// Apply decodes fx and stores every record through svc, one transaction per
// record. It stops at the first failure; records stored before it remain.
func Apply(ctx context.Context, svc *core.Service, fx Fixture) (Summary, error) {
	bench, err := Decode(fx)
	if err != nil {
		return nil, err
	}
	sum := Summary{}
	for _, k := range bench.Keyboards {
		if _, _, err := svc.CreateKeyboard(ctx, k); err != nil {
			return sum, fmt.Errorf("seed keyboard: %w", err)
		}
		sum[domain.EntityKeyboard]++
	}
	for _, s := range bench.Samples {
		if _, _, err := svc.CreateSample(ctx, s); err != nil {
			return sum, fmt.Errorf("seed sample: %w", err)
		}
		sum[domain.EntitySample]++
	}
	for _, c := range bench.Coffees {
		if _, _, err := svc.CreateCoffee(ctx, c); err != nil {
			return sum, fmt.Errorf("seed coffee: %w", err)
		}
		sum[domain.EntityCoffee]++
	}
	for _, e := range bench.Books {
		if err := applyBook(ctx, svc, e); err != nil {
			return sum, fmt.Errorf("seed book %q: %w", e.Name, err)
		}
		sum[domain.EntityBook]++
	}
	for _, p := range bench.Plants {
		if _, _, err := svc.CreatePlant(ctx, p); err != nil {
			return sum, fmt.Errorf("seed plant: %w", err)
		}
		sum[domain.EntityPlant]++
	}
	for _, a := range bench.Araucarias {
		if _, _, err := svc.CreateAraucaria(ctx, a); err != nil {
			return sum, fmt.Errorf("seed araucaria: %w", err)
		}
		sum[domain.EntityAraucaria]++
	}
	for _, f := range bench.Fittonias {
		if _, _, err := svc.CreateFittonia(ctx, f); err != nil {
			return sum, fmt.Errorf("seed fittonia: %w", err)
		}
		sum[domain.EntityFittonia]++
	}
	return sum, nil
}

func applyBook(ctx context.Context, svc *core.Service, e BookEntry) error {
	if e.ID == 0 {
		_, _, err := svc.AddBook(ctx, e.Name, e.Pages)
		return err
	}
	book, err := domain.NewBook(e.ID, e.Name, e.Pages)
	if err != nil {
		return err
	}
	_, err = svc.AppendBook(ctx, book)
	return err
}
