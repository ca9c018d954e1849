package ratings

import (
	"math"
	"strconv"
	"strings"

	"gomediate/domain/core"
)

// RawRow is one data row keyed by source header.
type RawRow map[string]string

// RawTable is an untyped tabular read: header order preserved, every cell
// still a string. Adapters produce it; ParseTable types it.
type RawTable struct {
	Headers []string
	Rows    []RawRow
}

// ColumnMap names the source column each analysis field is read from.
// Defaults follow the IEG ICRR/PPAR export headers.
type ColumnMap struct {
	ProjectID  string
	Instrument string
	Region     string
	Country    string
	Sector     string
	Outcome    string
	MEQuality  string
	Volume     string
	ApprovalFY string
	ClosingFY  string
	FCS        string
}

// DefaultColumnMap returns the header names of the IEG ratings export.
func DefaultColumnMap() ColumnMap {
	return ColumnMap{
		ProjectID:  "Project ID",
		Instrument: "Lending Instrument",
		Region:     "Region",
		Country:    "Country",
		Sector:     "Global Practice",
		Outcome:    "IEG Outcome Ratings",
		MEQuality:  "IEG Monitoring and Evaluation Quality Ratings",
		Volume:     "Project Volume",
		ApprovalFY: "Approval FY",
		ClosingFY:  "Closing FY",
		FCS:        "Country FCS Status",
	}
}

// Schema binds a column map to the instrument labels that define the
// treatment contrast.
type Schema struct {
	Columns        ColumnMap
	TreatmentLabel string
	ControlLabel   string
}

// DefaultSchema targets the PforR-versus-IPF contrast on the default headers.
func DefaultSchema() Schema {
	return Schema{
		Columns:        DefaultColumnMap(),
		TreatmentLabel: "PforR",
		ControlLabel:   "IPF",
	}
}

// requiredColumns are the headers the analysis cannot proceed without.
// The remaining columns degrade to missing values when absent.
func (m ColumnMap) requiredColumns() map[Field]string {
	return map[Field]string{
		FieldInstrument: m.Instrument,
		FieldRegion:     m.Region,
		FieldOutcome:    m.Outcome,
		FieldMEQuality:  m.MEQuality,
	}
}

func (m ColumnMap) optionalColumns() map[Field]string {
	return map[Field]string{
		FieldCountry:    m.Country,
		FieldSector:     m.Sector,
		FieldVolume:     m.Volume,
		FieldApprovalFY: m.ApprovalFY,
		FieldClosingFY:  m.ClosingFY,
		FieldFCS:        m.FCS,
	}
}

// ParseTable types a raw tabular read against the schema: rating labels are
// recoded onto their ordinal scales, numeric cells parsed (unparseable cells
// become NaN, never an error), and the treatment flag derived from the
// instrument column. Absent required columns fail the parse; absent optional
// columns are reported on the table and their fields left missing.
func ParseTable(raw *RawTable, schema Schema) (*Table, error) {
	if raw == nil || len(raw.Headers) == 0 {
		return nil, core.NewMissingColumnsError(requiredColumnNames(schema.Columns))
	}

	have := make(map[string]bool, len(raw.Headers))
	for _, h := range raw.Headers {
		have[strings.TrimSpace(h)] = true
	}

	var missing []string
	for _, name := range requiredColumnNames(schema.Columns) {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, core.NewMissingColumnsError(missing)
	}

	if len(raw.Rows) == 0 {
		return nil, core.ErrEmptyDataset
	}

	present := map[Field]bool{
		FieldInstrument: true,
		FieldRegion:     true,
		FieldOutcome:    true,
		FieldMEQuality:  true,
		FieldTreatment:  true,
	}
	var absent []Field
	for field, name := range schema.Columns.optionalColumns() {
		if have[name] {
			present[field] = true
		} else {
			absent = append(absent, field)
		}
	}
	present[FieldDuration] = present[FieldApprovalFY] && present[FieldClosingFY]

	cols := schema.Columns
	records := make([]ProjectRecord, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		instrument := strings.TrimSpace(row[cols.Instrument])
		rec := ProjectRecord{
			ProjectID:  strings.TrimSpace(row[cols.ProjectID]),
			Instrument: instrument,
			Region:     strings.TrimSpace(row[cols.Region]),
			Country:    strings.TrimSpace(row[cols.Country]),
			Sector:     strings.TrimSpace(row[cols.Sector]),
			Outcome:    OutcomeScore(row[cols.Outcome]),
			MEQuality:  QualityScore(row[cols.MEQuality]),
			Volume:     VolumeScore(row[cols.Volume]),
			ApprovalFY: parseNumber(row[cols.ApprovalFY]),
			ClosingFY:  parseNumber(row[cols.ClosingFY]),
			FCS:        parseNumber(row[cols.FCS]),
		}
		if instrument == schema.TreatmentLabel {
			rec.Treatment = 1
		}
		records = append(records, rec)
	}

	sortFields(absent)
	return &Table{
		Schema:         schema,
		Records:        records,
		present:        present,
		MissingColumns: absent,
	}, nil
}

func requiredColumnNames(m ColumnMap) []string {
	return []string{m.Instrument, m.Region, m.Outcome, m.MEQuality}
}

// parseNumber reads a numeric cell. Blank or malformed cells become NaN so
// a stray annotation in a year column degrades to a missing value instead
// of aborting the load.
func parseNumber(cell string) float64 {
	s := strings.TrimSpace(cell)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func sortFields(fields []Field) {
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0 && fields[j] < fields[j-1]; j-- {
			fields[j], fields[j-1] = fields[j-1], fields[j]
		}
	}
}
