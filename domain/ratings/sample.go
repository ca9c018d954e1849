package ratings

import (
	"math"
	"sort"
)

// Implementation spans outside this window indicate data-entry problems
// (swapped years, placeholder closing dates) rather than real projects.
const maxDurationYears = 30

// Table is a typed view of the ratings export plus the sample filters the
// analysis derives from it. Filtered views share the parent schema.
type Table struct {
	Schema  Schema
	Records []ProjectRecord

	present        map[Field]bool
	MissingColumns []Field
}

// NewTable builds a table directly from records, marking every field
// present. Generators and tests use it; file loads go through ParseTable.
func NewTable(schema Schema, records []ProjectRecord) *Table {
	present := make(map[Field]bool)
	for _, f := range []Field{
		FieldInstrument, FieldRegion, FieldCountry, FieldSector,
		FieldOutcome, FieldMEQuality, FieldVolume, FieldApprovalFY,
		FieldClosingFY, FieldDuration, FieldFCS, FieldTreatment,
	} {
		present[f] = true
	}
	return &Table{Schema: schema, Records: records, present: present}
}

// Len returns the record count.
func (t *Table) Len() int { return len(t.Records) }

// HasColumn reports whether the source provided the column behind f.
func (t *Table) HasColumn(f Field) bool { return t.present[f] }

// Column extracts the numeric values for f across all records.
func (t *Table) Column(f Field) []float64 {
	out := make([]float64, len(t.Records))
	for i, rec := range t.Records {
		out[i] = rec.Value(f)
	}
	return out
}

// Labels extracts the categorical labels for f across all records.
func (t *Table) Labels(f Field) []string {
	out := make([]string, len(t.Records))
	for i, rec := range t.Records {
		out[i] = rec.Label(f)
	}
	return out
}

// Filter returns the records satisfying pred as a new table.
func (t *Table) Filter(pred func(ProjectRecord) bool) *Table {
	kept := make([]ProjectRecord, 0, len(t.Records))
	for _, rec := range t.Records {
		if pred(rec) {
			kept = append(kept, rec)
		}
	}
	return &Table{
		Schema:         t.Schema,
		Records:        kept,
		present:        t.present,
		MissingColumns: t.MissingColumns,
	}
}

// ExplorationSample keeps records rated on both outcome and M&E quality.
// Descriptive statistics run on this view.
func (t *Table) ExplorationSample() *Table {
	return t.Filter(func(r ProjectRecord) bool {
		return !math.IsNaN(r.Outcome) && !math.IsNaN(r.MEQuality)
	})
}

// WorkingSample narrows to the modeling sample: treatment and control
// instruments only, complete outcome, M&E quality, approval year, FCS flag
// and volume band, and an implementation span strictly inside (0, 30) years.
func (t *Table) WorkingSample() *Table {
	return t.Filter(func(r ProjectRecord) bool {
		if r.Instrument != t.Schema.TreatmentLabel && r.Instrument != t.Schema.ControlLabel {
			return false
		}
		return completeForModeling(r) && plausibleDuration(r)
	})
}

// PlaceboPool returns control-instrument records approved before cutoffFY,
// under the same completeness and duration screens as the working sample.
// Placebo draws assign fake treatment inside this pool.
func (t *Table) PlaceboPool(cutoffFY float64) *Table {
	return t.Filter(func(r ProjectRecord) bool {
		if r.Instrument != t.Schema.ControlLabel {
			return false
		}
		if !(r.ApprovalFY < cutoffFY) {
			return false
		}
		return completeForModeling(r) && plausibleDuration(r)
	})
}

// CountryFESample keeps records from countries with at least minObs
// observations, so country intercepts rest on repeated observation rather
// than a single project.
func (t *Table) CountryFESample(minObs int) *Table {
	counts := make(map[string]int)
	for _, rec := range t.Records {
		counts[rec.Country]++
	}
	return t.Filter(func(r ProjectRecord) bool {
		return counts[r.Country] >= minObs
	})
}

// TreatedCount returns how many records carry the treatment flag.
func (t *Table) TreatedCount() int {
	n := 0
	for _, rec := range t.Records {
		if rec.Treatment == 1 {
			n++
		}
	}
	return n
}

// Levels returns the sorted distinct non-blank labels of a categorical
// field. The first level is the fixed-effect reference.
func (t *Table) Levels(f Field) []string {
	seen := make(map[string]bool)
	for _, rec := range t.Records {
		if label := rec.Label(f); label != "" {
			seen[label] = true
		}
	}
	levels := make([]string, 0, len(seen))
	for label := range seen {
		levels = append(levels, label)
	}
	sort.Strings(levels)
	return levels
}

func completeForModeling(r ProjectRecord) bool {
	return !math.IsNaN(r.Outcome) &&
		!math.IsNaN(r.MEQuality) &&
		!math.IsNaN(r.ApprovalFY) &&
		!math.IsNaN(r.FCS) &&
		!math.IsNaN(r.Volume)
}

func plausibleDuration(r ProjectRecord) bool {
	d := r.Duration()
	return d > 0 && d < maxDurationYears
}
