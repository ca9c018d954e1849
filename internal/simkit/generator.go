package simkit

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"gomediate/domain/ratings"
)

// Dataset is a synthetic ratings export with a known mediation structure
// planted in it. Rows carry the label-rendered cells a real IEG download
// would, while the latent series keep the continuous values from before
// quantization so tests can check path recovery without rounding loss.
type Dataset struct {
	Headers []string
	Rows    [][]string // rendered cells, loader-ready

	// Latent series behind the rows
	Treatment []float64
	MEQuality []float64
	Outcome   []float64

	// Records as the rendered rows parse back: ordinal scores, with NaN
	// where a cell rendered as unrated
	Records []ratings.ProjectRecord
}

type Config struct {
	Projects int
	Seed     int64

	// Instrument mix
	TreatedShare float64 // PforR
	DPFShare     float64 // neither treatment nor control

	// Share of ratings rendered as "Not Rated"
	MissingShare float64

	// Planted paths
	APath      float64 // treatment -> M&E quality
	BPath      float64 // M&E quality -> outcome
	DirectPath float64 // treatment -> outcome, bypassing the mediator
	Noise      float64

	StartFY int
	EndFY   int
}

func DefaultConfig() Config {
	return Config{
		Projects:     600,
		Seed:         42,
		TreatedShare: 0.25,
		DPFShare:     0.08,
		MissingShare: 0.05,
		APath:        0.5,
		BPath:        0.8,
		DirectPath:   0.1,
		Noise:        0.3,
		StartFY:      1995,
		EndFY:        2022,
	}
}

var regions = []string{"AFR", "EAP", "ECA", "LCR", "MNA", "SAR"}

var regionCountries = map[string][]string{
	"AFR": {"Ethiopia", "Kenya", "Nigeria", "Tanzania"},
	"EAP": {"Vietnam", "Indonesia", "Philippines", "Cambodia"},
	"ECA": {"Ukraine", "Turkiye", "Uzbekistan", "Albania"},
	"LCR": {"Brazil", "Colombia", "Peru", "Honduras"},
	"MNA": {"Morocco", "Egypt", "Jordan", "Tunisia"},
	"SAR": {"India", "Bangladesh", "Nepal", "Pakistan"},
}

var regionShifts = map[string]float64{
	"AFR": -0.15, "EAP": 0.10, "ECA": 0.05, "LCR": 0, "MNA": -0.05, "SAR": 0.08,
}

var sectors = []string{
	"Governance",
	"Health, Nutrition & Population",
	"Education",
	"Transport",
	"Energy & Extractives",
	"Agriculture",
	"Water",
	"Urban",
	"Social Protection & Jobs",
	"Finance, Competitiveness & Innovation",
}

func Generate(cfg Config) (*Dataset, error) {
	if cfg.Projects <= 0 {
		return nil, fmt.Errorf("projects must be > 0")
	}
	if cfg.TreatedShare <= 0 || cfg.TreatedShare+cfg.DPFShare >= 1 {
		return nil, fmt.Errorf("instrument shares must leave room for the control arm")
	}
	if cfg.Noise < 0 {
		return nil, fmt.Errorf("noise must be >= 0")
	}
	if cfg.EndFY <= cfg.StartFY {
		return nil, fmt.Errorf("approval window must span at least one year")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	n := cfg.Projects

	ds := &Dataset{
		Headers:   exportHeaders(),
		Rows:      make([][]string, 0, n),
		Treatment: make([]float64, n),
		MEQuality: make([]float64, n),
		Outcome:   make([]float64, n),
		Records:   make([]ratings.ProjectRecord, 0, n),
	}

	span := cfg.EndFY - cfg.StartFY + 1
	for i := 0; i < n; i++ {
		// Assignment and covariates
		instrument := "IPF"
		treat := 0.0
		switch u := rng.Float64(); {
		case u < cfg.TreatedShare:
			instrument, treat = "PforR", 1
		case u < cfg.TreatedShare+cfg.DPFShare:
			instrument = "DPF"
		}
		region := regions[rng.Intn(len(regions))]
		country := regionCountries[region][rng.Intn(len(regionCountries[region]))]
		sector := sectors[rng.Intn(len(sectors))]
		approval := cfg.StartFY + rng.Intn(span)
		closing := approval + 4 + rng.Intn(6)
		if rng.Float64() < 0.03 {
			closing = approval // data-entry artifact, screened downstream
		}
		fcs := 0.0
		if rng.Float64() < 0.22 {
			fcs = 1
		}
		volume := 1 + rng.Intn(5)

		// Mediation paths
		shift := regionShifts[region]
		me := 2.4 + cfg.APath*treat + 0.03*fcs - 0.01*float64(volume) +
			0.5*shift + cfg.Noise*rng.NormFloat64()
		outcome := 1.2 + cfg.BPath*me + cfg.DirectPath*treat - 0.15*fcs +
			shift + cfg.Noise*rng.NormFloat64()

		ds.Treatment[i] = treat
		ds.MEQuality[i] = me
		ds.Outcome[i] = outcome

		meScore := clamp(math.Round(me), 1, 4)
		outScore := clamp(math.Round(outcome), 1, 6)
		meLabel := ratings.QualityLabel(meScore)
		outLabel := ratings.OutcomeLabel(outScore)
		if rng.Float64() < cfg.MissingShare {
			meLabel = "Not Rated"
			meScore = math.NaN()
		}
		if rng.Float64() < cfg.MissingShare {
			outLabel = "Not Rated"
			outScore = math.NaN()
		}

		// Rendered export
		projectID := fmt.Sprintf("P%06d", 150000+i)
		ds.Rows = append(ds.Rows, []string{
			projectID,
			country,
			region,
			instrument,
			sector,
			strconv.Itoa(approval),
			strconv.Itoa(closing),
			ratings.VolumeLabel(float64(volume)),
			strconv.Itoa(int(fcs)),
			outLabel,
			meLabel,
		})
		ds.Records = append(ds.Records, ratings.ProjectRecord{
			ProjectID:  projectID,
			Instrument: instrument,
			Region:     region,
			Country:    country,
			Sector:     sector,
			Outcome:    outScore,
			MEQuality:  meScore,
			Volume:     float64(volume),
			ApprovalFY: float64(approval),
			ClosingFY:  float64(closing),
			FCS:        fcs,
			Treatment:  treat,
		})
	}

	return ds, nil
}

// exportHeaders follows the column order of the IEG ratings download.
func exportHeaders() []string {
	m := ratings.DefaultColumnMap()
	return []string{
		m.ProjectID, m.Country, m.Region, m.Instrument, m.Sector,
		m.ApprovalFY, m.ClosingFY, m.Volume, m.FCS,
		m.Outcome, m.MEQuality,
	}
}

// Raw exposes the rendered rows as an untyped tabular read, the shape file
// adapters produce.
func (ds *Dataset) Raw() *ratings.RawTable {
	rows := make([]ratings.RawRow, len(ds.Rows))
	for i, cells := range ds.Rows {
		row := make(ratings.RawRow, len(ds.Headers))
		for j, h := range ds.Headers {
			row[h] = cells[j]
		}
		rows[i] = row
	}
	return &ratings.RawTable{Headers: ds.Headers, Rows: rows}
}

// Table wraps the quantized records, bypassing the parse step.
func (ds *Dataset) Table() *ratings.Table {
	return ratings.NewTable(ratings.DefaultSchema(), ds.Records)
}

// LatentTable substitutes the continuous mediator and outcome for their
// quantized scores. Pipeline tests run on it to check that the planted
// paths come back out without rounding attenuation.
func (ds *Dataset) LatentTable() *ratings.Table {
	records := make([]ratings.ProjectRecord, len(ds.Records))
	copy(records, ds.Records)
	for i := range records {
		records[i].MEQuality = ds.MEQuality[i]
		records[i].Outcome = ds.Outcome[i]
	}
	return ratings.NewTable(ratings.DefaultSchema(), records)
}

func WriteCSV(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(ds.Headers); err != nil {
		return err
	}
	for _, row := range ds.Rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func WriteXLSX(path string, ds *Dataset) error {
	f := excelize.NewFile()

	sheet := "Sheet1"
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
	}

	for i, h := range ds.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r := 0; r < len(ds.Rows); r++ {
		rowIdx := r + 2
		for c, v := range ds.Rows[r] {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
