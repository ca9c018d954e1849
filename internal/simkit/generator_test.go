package simkit

import (
	"math"
	"reflect"
	"testing"

	"gomediate/domain/ratings"
)

func TestGenerateDeterministic(t *testing.T) {
	first, err := Generate(DefaultConfig())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := Generate(DefaultConfig())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !reflect.DeepEqual(first.Rows, second.Rows) {
		t.Error("same seed produced different rendered rows")
	}
	if !reflect.DeepEqual(first.MEQuality, second.MEQuality) {
		t.Error("same seed produced different latent mediators")
	}

	cfg := DefaultConfig()
	cfg.Seed = 7
	other, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if reflect.DeepEqual(first.Rows, other.Rows) {
		t.Error("different seeds produced identical rows")
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	ds, err := Generate(DefaultConfig())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	tbl, err := ratings.ParseTable(ds.Raw(), ratings.DefaultSchema())
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	if tbl.Len() != len(ds.Records) {
		t.Fatalf("parsed %d records, want %d", tbl.Len(), len(ds.Records))
	}

	for i, got := range tbl.Records {
		want := ds.Records[i]
		if got.ProjectID != want.ProjectID || got.Instrument != want.Instrument ||
			got.Region != want.Region || got.Country != want.Country ||
			got.Sector != want.Sector {
			t.Fatalf("record %d labels diverge: got %+v want %+v", i, got, want)
		}
		for _, f := range []ratings.Field{
			ratings.FieldOutcome, ratings.FieldMEQuality, ratings.FieldVolume,
			ratings.FieldApprovalFY, ratings.FieldClosingFY, ratings.FieldFCS,
			ratings.FieldTreatment,
		} {
			if !sameValue(got.Value(f), want.Value(f)) {
				t.Fatalf("record %d field %s: got %f want %f", i, f, got.Value(f), want.Value(f))
			}
		}
	}
}

func TestGenerateSampleSizes(t *testing.T) {
	ds, err := Generate(DefaultConfig())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	tbl := ds.Table()

	working := tbl.WorkingSample()
	if working.Len() < 350 || working.Len() >= tbl.Len() {
		t.Errorf("working sample of %d from %d rows outside the expected band",
			working.Len(), tbl.Len())
	}

	share := float64(working.TreatedCount()) / float64(working.Len())
	if share < 0.15 || share > 0.40 {
		t.Errorf("treated share %f drifted from the configured mix", share)
	}

	pool := tbl.PlaceboPool(2012)
	if pool.Len() < 120 {
		t.Errorf("placebo pool of %d cannot seat the standard draw", pool.Len())
	}

	// Missingness is applied when rows render, so the latent view keeps
	// rows the quantized view loses.
	if latent := ds.LatentTable().WorkingSample(); latent.Len() < working.Len() {
		t.Errorf("latent working sample %d smaller than quantized %d",
			latent.Len(), working.Len())
	}
}

func TestGenerateValidation(t *testing.T) {
	bad := []Config{
		func() Config { c := DefaultConfig(); c.Projects = 0; return c }(),
		func() Config { c := DefaultConfig(); c.TreatedShare = 0.95; return c }(),
		func() Config { c := DefaultConfig(); c.Noise = -1; return c }(),
		func() Config { c := DefaultConfig(); c.EndFY = c.StartFY; return c }(),
	}
	for i, cfg := range bad {
		if _, err := Generate(cfg); err == nil {
			t.Errorf("config %d should have been rejected", i)
		}
	}
}

func sameValue(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}
