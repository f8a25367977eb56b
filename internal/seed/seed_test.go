package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"labworks/internal/core"
	"labworks/pkg/domain"
)

func TestDefaultFixtureDecodes(t *testing.T) {
	bench, err := Decode(Default())
	if err != nil {
		t.Fatalf("decode default: %v", err)
	}
	if len(bench.Keyboards) != 1 || bench.Keyboards[0].KeyCount() != 103 || bench.Keyboards[0].SwitchType() != domain.SwitchRed {
		t.Fatalf("unexpected keyboards %+v", bench.Keyboards)
	}
	if len(bench.Samples) != 1 || bench.Samples[0].Volume() != 10 || bench.Samples[0].Material() != "tantalum" {
		t.Fatalf("unexpected samples %+v", bench.Samples)
	}
	if len(bench.Coffees) != 1 || bench.Coffees[0].Size() != 300 || !bench.Coffees[0].NeedMilk() {
		t.Fatalf("unexpected coffees %+v", bench.Coffees)
	}
	if len(bench.Araucarias) != 1 || bench.Araucarias[0].SoilVolume() != 4 || bench.Araucarias[0].NeedWatering() {
		t.Fatalf("unexpected araucarias %+v", bench.Araucarias)
	}
	if len(bench.Fittonias) != 1 || !bench.Fittonias[0].NeedPruning() {
		t.Fatalf("unexpected fittonias %+v", bench.Fittonias)
	}
	lib, err := bench.Library()
	if err != nil {
		t.Fatalf("library: %v", err)
	}
	if lib.Len() != 2 || lib.NextBookID() != 3 {
		t.Fatalf("unexpected library %s next=%d", lib, lib.NextBookID())
	}
}

func TestApplyDefaultFixture(t *testing.T) {
	ctx := context.Background()
	svc := core.NewInMemoryService(nil)
	sum, err := Apply(ctx, svc, Default())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if sum.Total() != 8 || sum[domain.EntityBook] != 2 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	snap, _ := svc.Snapshot(ctx)
	if snap.Count() != 8 {
		t.Fatalf("expected 8 stored records, got %d", snap.Count())
	}
	// applying again continues the library sequence
	if _, err := Apply(ctx, svc, Default()); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if next, _ := svc.NextBookID(ctx); next != 5 {
		t.Fatalf("expected next id 5, got %d", next)
	}
}

func TestParseJSONFixture(t *testing.T) {
	data := []byte(`{
		"keyboards": [{"number_of_keys": 85, "switch_type": "Brown", "need_backlight": false}],
		"books": [{"id": 7, "name": "explicit", "pages": 12}, {"name": "auto", "pages": 3}]
	}`)
	fx, err := Parse(data, FormatJSON)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	bench, err := Decode(fx)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bench.Keyboards[0].SwitchType() != domain.SwitchBrown {
		t.Fatalf("expected normalised switch type, got %s", bench.Keyboards[0].SwitchType())
	}
	if bench.Books[0].ID != 7 || bench.Books[1].ID != 0 {
		t.Fatalf("unexpected book entries %+v", bench.Books)
	}
	lib, _ := bench.Library()
	if idx, err := lib.IndexByBookID(8); err != nil || idx != 1 {
		t.Fatalf("auto book should follow explicit id: %d %v", idx, err)
	}
}

func TestDecodeErrorsNameTheEntry(t *testing.T) {
	cases := []struct {
		name   string
		data   string
		format Format
		check  func(error) bool
		where  string
	}{
		{"quoted key count", "keyboards:\n  - {number_of_keys: \"103\", switch_type: red, need_backlight: true}\n", FormatYAML, domain.IsTypeConstraint, "keyboards[0]"},
		{"unsupported key count", "keyboards:\n  - {number_of_keys: 70, switch_type: red, need_backlight: true}\n", FormatYAML, domain.IsRangeConstraint, "keyboards[0]"},
		{"bad sort", `{"coffees":[{"coffee_size":200,"coffee_sort":"excelsa","need_sugar":true,"need_milk":true}]}`, FormatJSON, domain.IsRangeConstraint, "coffees[0]"},
		{"fractional pages", `{"books":[{"name":"x","pages":1.5}]}`, FormatJSON, domain.IsTypeConstraint, "books[0]"},
		{"second fittonia", "fittonias:\n  - {age: 1, height: 1, soil_volume: 1, need_pruning: true}\n  - {age: 1, height: 1, soil_volume: -1, need_pruning: true}\n", FormatYAML, domain.IsRangeConstraint, "fittonias[1]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx, err := Parse([]byte(tc.data), tc.format)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			_, err = Decode(fx)
			if err == nil || !tc.check(err) || !strings.Contains(err.Error(), tc.where) {
				t.Fatalf("expected error at %s, got %v", tc.where, err)
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestParseRejectsUnknownSections(t *testing.T) {
	if _, err := Parse([]byte("gadgets: []\n"), FormatYAML); err == nil {
		t.Fatalf("expected strict yaml error")
	}
	if _, err := Parse([]byte(`{"gadgets": []}`), FormatJSON); err == nil {
		t.Fatalf("expected strict json error")
	}
	if _, err := Parse(nil, Format("toml")); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "bench.JSON")
	if err := os.WriteFile(jsonPath, []byte(`{"samples":[{"sample_volume":2.5,"material":"salt"}]}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fx, err := Load(jsonPath)
	if err != nil || len(fx.Samples) != 1 {
		t.Fatalf("load json: %+v %v", fx, err)
	}
	yamlPath := filepath.Join(dir, "bench.yml")
	if err := os.WriteFile(yamlPath, []byte("plants:\n  - {age: 3, height: 0.5, soil_volume: 1.5}\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fx, err = Load(yamlPath)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	bench, err := Decode(fx)
	if err != nil || bench.Plants[0].Height() != 0.5 {
		t.Fatalf("decode yaml plant: %+v %v", bench.Plants, err)
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
	if FormatFor("x.yaml") != FormatYAML || FormatFor("x.json") != FormatJSON {
		t.Fatalf("unexpected format detection")
	}
}

func TestApplyStopsAtStoreFailure(t *testing.T) {
	ctx := context.Background()
	engine := core.NewRulesEngine()
	engine.Register(blockSamples{})
	svc := core.NewService(core.NewMemoryStore(engine))
	sum, err := Apply(ctx, svc, Default())
	var rv domain.RuleViolationError
	if !errors.As(err, &rv) {
		t.Fatalf("expected rule violation, got %v", err)
	}
	if sum[domain.EntityKeyboard] != 1 || sum[domain.EntitySample] != 0 {
		t.Fatalf("unexpected partial summary %+v", sum)
	}
}

type blockSamples struct{}

func (blockSamples) Name() string { return "block_samples" }

func (blockSamples) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	for _, c := range changes {
		if c.Entity == domain.EntitySample {
			return domain.Result{Violations: []domain.Violation{{Rule: "block_samples", Severity: domain.SeverityBlock, Entity: domain.EntitySample}}}, nil
		}
	}
	return domain.Result{}, nil
}
