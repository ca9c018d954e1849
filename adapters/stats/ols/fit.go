package ols

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"gomediate/domain/core"
	"gomediate/domain/regress"
)

// Covariance estimator names, statsmodels spelling.
const (
	CovHC3       = "HC3"
	CovNonRobust = "nonrobust"
)

// A leverage-one row would zero the HC3 denominator; floor it instead of
// letting the weight blow up to NaN.
const leverageFloor = 1e-8

// Fit estimates the design by least squares and returns coefficient-level
// inference under the requested covariance estimator ("" means HC3).
// HC3 inflates each squared residual by (1-h)^-2 before sandwiching, so
// high-leverage observations cannot understate the standard errors.
func Fit(d *Design, covType string) (*regress.FittedModel, error) {
	if covType == "" {
		covType = CovHC3
	}
	n, p := d.N(), d.P()
	if n <= p {
		return nil, core.NewSingularMatrixError(d.Model, p, n)
	}

	beta, err := Solve(d.X, d.Y)
	if err != nil {
		return nil, core.NewSingularMatrixError(d.Model, p, n)
	}

	resid := make([]float64, n)
	ssr := 0.0
	ybar := 0.0
	for i := 0; i < n; i++ {
		ybar += d.Y.AtVec(i)
	}
	ybar /= float64(n)
	sst := 0.0
	for i := 0; i < n; i++ {
		fitted := 0.0
		for j := 0; j < p; j++ {
			fitted += d.X.At(i, j) * beta[j]
		}
		e := d.Y.AtVec(i) - fitted
		resid[i] = e
		ssr += e * e
		dev := d.Y.AtVec(i) - ybar
		sst += dev * dev
	}

	var xtx mat.Dense
	xtx.Mul(d.X.T(), d.X)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		if _, ill := err.(mat.Condition); !ill {
			return nil, core.NewSingularMatrixError(d.Model, p, n)
		}
	}

	cov, err := covariance(d, &xtxInv, resid, ssr, covType)
	if err != nil {
		return nil, err
	}

	df := n - p
	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	coefs := make([]regress.Coefficient, p)
	for j := 0; j < p; j++ {
		se := math.Sqrt(cov.At(j, j))
		t := beta[j] / se
		coefs[j] = regress.Coefficient{
			Name:   d.Columns[j],
			Beta:   beta[j],
			SE:     se,
			TValue: t,
			PValue: 2 * (1 - tdist.CDF(math.Abs(t))),
		}
	}

	r2 := math.NaN()
	adj := math.NaN()
	if sst > 0 {
		r2 = 1 - ssr/sst
		adj = 1 - (1-r2)*float64(n-1)/float64(df)
	}

	return &regress.FittedModel{
		Name:         d.Model,
		Response:     d.Response,
		CovType:      covType,
		Coefficients: coefs,
		N:            n,
		DF:           df,
		R2:           r2,
		AdjR2:        adj,
		DroppedTerms: d.Dropped,
	}, nil
}

// Solve computes least-squares coefficients for y on X. An ill-conditioned
// system still solves (gonum reports it as a mat.Condition error alongside
// the minimum-norm solution); only a failed factorization is an error.
func Solve(X mat.Matrix, y *mat.VecDense) ([]float64, error) {
	var sol mat.Dense
	if err := sol.Solve(X, y); err != nil {
		if _, ill := err.(mat.Condition); !ill {
			return nil, err
		}
	}
	_, p := X.Dims()
	out := make([]float64, p)
	for j := 0; j < p; j++ {
		out[j] = sol.At(j, 0)
	}
	return out, nil
}

func covariance(d *Design, xtxInv *mat.Dense, resid []float64, ssr float64, covType string) (*mat.Dense, error) {
	n, p := d.N(), d.P()
	cov := mat.NewDense(p, p, nil)

	switch covType {
	case CovNonRobust:
		sigma2 := ssr / float64(n-p)
		cov.Scale(sigma2, xtxInv)
		return cov, nil

	case CovHC3:
		// Leverages from the hat matrix diagonal: h_i = x_i' (X'X)^-1 x_i.
		var m mat.Dense
		m.Mul(d.X, xtxInv)
		scaled := mat.NewDense(n, p, nil)
		for i := 0; i < n; i++ {
			h := 0.0
			for j := 0; j < p; j++ {
				h += m.At(i, j) * d.X.At(i, j)
			}
			denom := 1 - h
			if denom < leverageFloor {
				denom = leverageFloor
			}
			w := (resid[i] / denom) * (resid[i] / denom)
			for j := 0; j < p; j++ {
				scaled.Set(i, j, w*d.X.At(i, j))
			}
		}
		var meat mat.Dense
		meat.Mul(d.X.T(), scaled)
		cov.Product(xtxInv, &meat, xtxInv)
		return cov, nil
	}

	return nil, fmt.Errorf("model %s: unknown covariance estimator %q", d.Model, covType)
}
