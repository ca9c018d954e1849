package ratings

import (
	"math"
	"testing"
)

// validRecord is a control-arm record that passes every working-sample screen.
func validRecord() ProjectRecord {
	return ProjectRecord{
		Instrument: "IPF",
		Region:     "AFR",
		Country:    "Kenya",
		Sector:     "Governance",
		Outcome:    4,
		MEQuality:  3,
		Volume:     2,
		ApprovalFY: 2010,
		ClosingFY:  2015,
		FCS:        0,
	}
}

func TestWorkingSampleScreens(t *testing.T) {
	treated := validRecord()
	treated.Instrument = "PforR"
	treated.Treatment = 1

	otherInstrument := validRecord()
	otherInstrument.Instrument = "DPF"

	missingME := validRecord()
	missingME.MEQuality = math.NaN()

	missingVolume := validRecord()
	missingVolume.Volume = math.NaN()

	zeroDuration := validRecord()
	zeroDuration.ClosingFY = zeroDuration.ApprovalFY

	implausibleDuration := validRecord()
	implausibleDuration.ClosingFY = implausibleDuration.ApprovalFY + 35

	missingYears := validRecord()
	missingYears.ApprovalFY = math.NaN()

	tbl := NewTable(DefaultSchema(), []ProjectRecord{
		validRecord(), treated, otherInstrument, missingME,
		missingVolume, zeroDuration, implausibleDuration, missingYears,
	})

	ws := tbl.WorkingSample()
	if ws.Len() != 2 {
		t.Fatalf("working sample n = %d, want 2", ws.Len())
	}
	if ws.TreatedCount() != 1 {
		t.Errorf("treated count = %d, want 1", ws.TreatedCount())
	}
}

func TestExplorationSampleKeepsRatedRecords(t *testing.T) {
	rated := validRecord()
	rated.ApprovalFY = math.NaN() // incomplete controls still allowed here

	unratedOutcome := validRecord()
	unratedOutcome.Outcome = math.NaN()

	tbl := NewTable(DefaultSchema(), []ProjectRecord{rated, unratedOutcome})
	if got := tbl.ExplorationSample().Len(); got != 1 {
		t.Fatalf("exploration sample n = %d, want 1", got)
	}
}

func TestPlaceboPool(t *testing.T) {
	pre := validRecord() // IPF, approved 2010

	post := validRecord()
	post.ApprovalFY = 2015
	post.ClosingFY = 2020

	treatedPre := validRecord()
	treatedPre.Instrument = "PforR"
	treatedPre.Treatment = 1

	incompletePre := validRecord()
	incompletePre.FCS = math.NaN()

	tbl := NewTable(DefaultSchema(), []ProjectRecord{pre, post, treatedPre, incompletePre})
	pool := tbl.PlaceboPool(2012)
	if pool.Len() != 1 {
		t.Fatalf("placebo pool n = %d, want 1", pool.Len())
	}
	if pool.Records[0].ApprovalFY != 2010 {
		t.Errorf("wrong record survived the pool screens")
	}
}

func TestCountryFESample(t *testing.T) {
	var records []ProjectRecord
	for i := 0; i < 5; i++ {
		records = append(records, validRecord())
	}
	rare := validRecord()
	rare.Country = "Fiji"
	records = append(records, rare, rare)

	tbl := NewTable(DefaultSchema(), records)
	kept := tbl.CountryFESample(5)
	if kept.Len() != 5 {
		t.Fatalf("country FE sample n = %d, want 5", kept.Len())
	}
	for _, rec := range kept.Records {
		if rec.Country != "Kenya" {
			t.Errorf("unexpected country %q in restricted sample", rec.Country)
		}
	}
}

func TestLevelsSortedDistinct(t *testing.T) {
	a := validRecord()
	b := validRecord()
	b.Region = "EAP"
	c := validRecord()
	c.Region = "AFR"
	blank := validRecord()
	blank.Region = ""

	tbl := NewTable(DefaultSchema(), []ProjectRecord{b, a, c, blank})
	got := tbl.Levels(FieldRegion)
	want := []string{"AFR", "EAP"}
	if len(got) != len(want) {
		t.Fatalf("Levels = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Levels = %v, want %v", got, want)
		}
	}
}

func TestColumnAndLabels(t *testing.T) {
	a := validRecord()
	b := validRecord()
	b.Outcome = 6
	b.Region = "EAP"

	tbl := NewTable(DefaultSchema(), []ProjectRecord{a, b})
	col := tbl.Column(FieldOutcome)
	if col[0] != 4 || col[1] != 6 {
		t.Errorf("Column(outcome) = %v", col)
	}
	labels := tbl.Labels(FieldRegion)
	if labels[0] != "AFR" || labels[1] != "EAP" {
		t.Errorf("Labels(region) = %v", labels)
	}
}
