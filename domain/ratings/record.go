package ratings

import (
	"math"
	"strings"
)

// Field identifies one analysis variable derived from a ratings export.
// The string value doubles as the regressor name in model output.
type Field string

const (
	FieldInstrument Field = "instrument"
	FieldRegion     Field = "region"
	FieldCountry    Field = "country"
	FieldSector     Field = "sector"

	FieldOutcome    Field = "outcome"
	FieldMEQuality  Field = "me_quality"
	FieldVolume     Field = "volume_ord"
	FieldApprovalFY Field = "approval_fy"
	FieldClosingFY  Field = "closing_fy"
	FieldDuration   Field = "duration"
	FieldFCS        Field = "fcs"
	FieldTreatment  Field = "pforr"
)

// String returns the field name as printed in regression tables.
func (f Field) String() string { return string(f) }

// ProjectRecord is one evaluated project. Numeric fields carry NaN for
// missing or unparseable cells; categorical fields carry "" for blanks.
// ProjectID is an identifier, not an analysis variable; it may be empty.
type ProjectRecord struct {
	ProjectID  string
	Instrument string
	Region     string
	Country    string
	Sector     string

	Outcome    float64 // 1 (Highly Unsatisfactory) .. 6 (Highly Satisfactory)
	MEQuality  float64 // 1 (Negligible) .. 4 (High)
	Volume     float64 // commitment band, 1 (<10M) .. 5 (>=100M)
	ApprovalFY float64
	ClosingFY  float64
	FCS        float64 // fragile/conflict-affected situation flag
	Treatment  float64 // 1 when the instrument matches the treatment label
}

// Duration is the approval-to-closing span in fiscal years. NaN propagates
// from either endpoint.
func (r ProjectRecord) Duration() float64 {
	return r.ClosingFY - r.ApprovalFY
}

// Value returns the numeric value for f, or NaN when f is categorical.
func (r ProjectRecord) Value(f Field) float64 {
	switch f {
	case FieldOutcome:
		return r.Outcome
	case FieldMEQuality:
		return r.MEQuality
	case FieldVolume:
		return r.Volume
	case FieldApprovalFY:
		return r.ApprovalFY
	case FieldClosingFY:
		return r.ClosingFY
	case FieldDuration:
		return r.Duration()
	case FieldFCS:
		return r.FCS
	case FieldTreatment:
		return r.Treatment
	}
	return math.NaN()
}

// Label returns the categorical label for f, or "" when f is numeric.
func (r ProjectRecord) Label(f Field) string {
	switch f {
	case FieldInstrument:
		return r.Instrument
	case FieldRegion:
		return r.Region
	case FieldCountry:
		return r.Country
	case FieldSector:
		return r.Sector
	}
	return ""
}

// Ordinal recodes for the IEG rating scales. Labels outside the scale
// ("Not Rated", "Non-Evaluable", blanks, typos) all map to NaN rather than
// failing the load; completeness filters handle them downstream.

var outcomeScores = map[string]float64{
	"Highly Satisfactory":       6,
	"Satisfactory":              5,
	"Moderately Satisfactory":   4,
	"Moderately Unsatisfactory": 3,
	"Unsatisfactory":            2,
	"Highly Unsatisfactory":     1,
}

var qualityScores = map[string]float64{
	"High":        4,
	"Substantial": 3,
	"Modest":      2,
	"Negligible":  1,
}

var volumeScores = map[string]float64{
	"<10 million":                 1,
	">=10 million & <25 million":  2,
	">=25 million & <50 million":  3,
	">=50 million & <100 million": 4,
	">=100 million":               5,
}

// OutcomeScore maps an IEG outcome rating label onto the 1-6 scale.
func OutcomeScore(label string) float64 { return scoreFor(outcomeScores, label) }

// QualityScore maps an IEG M&E quality rating label onto the 1-4 scale.
func QualityScore(label string) float64 { return scoreFor(qualityScores, label) }

// VolumeScore maps a commitment volume band onto the 1-5 scale.
func VolumeScore(label string) float64 { return scoreFor(volumeScores, label) }

func scoreFor(scale map[string]float64, label string) float64 {
	if v, ok := scale[strings.TrimSpace(label)]; ok {
		return v
	}
	return math.NaN()
}

// QualityLevels lists the M&E rating labels from best to worst, the order
// group tables print them in.
func QualityLevels() []string {
	return []string{"High", "Substantial", "Modest", "Negligible"}
}

// OutcomeLabel is the inverse of OutcomeScore for exact scale points.
func OutcomeLabel(v float64) string { return labelFor(outcomeScores, v) }

// QualityLabel is the inverse of QualityScore for exact scale points.
func QualityLabel(v float64) string { return labelFor(qualityScores, v) }

// VolumeLabel is the inverse of VolumeScore for exact scale points.
func VolumeLabel(v float64) string { return labelFor(volumeScores, v) }

func labelFor(scale map[string]float64, v float64) string {
	for label, score := range scale {
		if score == v {
			return label
		}
	}
	return ""
}
