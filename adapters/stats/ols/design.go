package ols

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"gomediate/domain/core"
	"gomediate/domain/ratings"
	"gomediate/domain/regress"
)

// Design is a dense model matrix ready for estimation: listwise-complete
// rows, an intercept, the numeric predictors, then drop-first dummy
// columns for each fixed-effect field.
type Design struct {
	Model    string
	Response string
	Columns  []string
	X        *mat.Dense
	Y        *mat.VecDense
	Rows     []int    // indices into the source table
	Dropped  []string // declared dummy levels with no observations
}

// N returns the observation count.
func (d *Design) N() int { return len(d.Rows) }

// P returns the parameter count.
func (d *Design) P() int { return len(d.Columns) }

// ColumnIndex returns the position of a named column, or -1.
func (d *Design) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Levels maps each fixed-effect field to its ordered dummy levels. The
// first level is the omitted reference. Sharing one Levels across the
// mediation trio keeps the reference category identical in all three
// models, so their treatment coefficients decompose cleanly.
type Levels map[ratings.Field][]string

// SharedLevels collects the sorted level sets for fields from tbl.
func SharedLevels(tbl *ratings.Table, fields ...ratings.Field) Levels {
	levels := make(Levels, len(fields))
	for _, f := range fields {
		levels[f] = tbl.Levels(f)
	}
	return levels
}

type dummyTerm struct {
	field ratings.Field
	level string
}

// Build assembles the design matrix for spec on tbl. Rows missing the
// response, any predictor, or any fixed-effect label are deleted listwise
// for this model only; other models keep them. Dummy levels left with no
// observations are dropped from the design and recorded on it.
func Build(tbl *ratings.Table, spec regress.ModelSpec, levels Levels) (*Design, error) {
	rows := completeRows(tbl, spec)
	if len(rows) == 0 {
		return nil, core.NewInsufficientDataError(spec.Name, "no complete observations after listwise deletion")
	}

	columns := []string{regress.Intercept}
	for _, f := range spec.Predictors {
		columns = append(columns, f.String())
	}

	var dropped []string
	var dummies []dummyTerm
	for _, f := range spec.FixedEffects {
		lv := levels[f]
		if len(lv) == 0 {
			lv = tbl.Levels(f)
		}
		for _, level := range lv[1:] {
			name := fmt.Sprintf("%s[%s]", f, level)
			seen := 0
			for _, ri := range rows {
				if tbl.Records[ri].Label(f) == level {
					seen++
				}
			}
			if seen == 0 {
				dropped = append(dropped, name)
				continue
			}
			columns = append(columns, name)
			dummies = append(dummies, dummyTerm{field: f, level: level})
		}
	}

	n, p := len(rows), len(columns)
	if n <= p {
		return nil, core.NewSingularMatrixError(spec.Name, p, n)
	}

	X := mat.NewDense(n, p, nil)
	Y := mat.NewVecDense(n, nil)
	base := 1 + len(spec.Predictors)
	for r, ri := range rows {
		rec := tbl.Records[ri]
		X.Set(r, 0, 1)
		for j, f := range spec.Predictors {
			X.Set(r, 1+j, rec.Value(f))
		}
		for j, d := range dummies {
			if rec.Label(d.field) == d.level {
				X.Set(r, base+j, 1)
			}
		}
		Y.SetVec(r, rec.Value(spec.Response))
	}

	return &Design{
		Model:    spec.Name,
		Response: spec.Response.String(),
		Columns:  columns,
		X:        X,
		Y:        Y,
		Rows:     rows,
		Dropped:  dropped,
	}, nil
}

func completeRows(tbl *ratings.Table, spec regress.ModelSpec) []int {
	var rows []int
	for i, rec := range tbl.Records {
		if math.IsNaN(rec.Value(spec.Response)) {
			continue
		}
		ok := true
		for _, f := range spec.Predictors {
			if math.IsNaN(rec.Value(f)) {
				ok = false
				break
			}
		}
		if ok {
			for _, f := range spec.FixedEffects {
				if rec.Label(f) == "" {
					ok = false
					break
				}
			}
		}
		if ok {
			rows = append(rows, i)
		}
	}
	return rows
}
