package ols

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"gomediate/domain/core"
)

// exactDesign builds a design for y = 2 + 3*x1 - 1.5*x2 with no noise.
func exactDesign(n int) *Design {
	X := mat.NewDense(n, 3, nil)
	Y := mat.NewVecDense(n, nil)
	rows := make([]int, n)
	for i := 0; i < n; i++ {
		x1 := float64(i) / 10
		x2 := float64((i*7)%13) / 5
		X.Set(i, 0, 1)
		X.Set(i, 1, x1)
		X.Set(i, 2, x2)
		Y.SetVec(i, 2+3*x1-1.5*x2)
		rows[i] = i
	}
	return &Design{
		Model:    "exact",
		Response: "y",
		Columns:  []string{"const", "x1", "x2"},
		X:        X,
		Y:        Y,
		Rows:     rows,
	}
}

func TestFitRecoversExactCoefficients(t *testing.T) {
	model, err := Fit(exactDesign(40), CovHC3)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	want := map[string]float64{"const": 2, "x1": 3, "x2": -1.5}
	for name, beta := range want {
		c, err := model.Coef(name)
		if err != nil {
			t.Fatalf("Coef(%s): %v", name, err)
		}
		if math.Abs(c.Beta-beta) > 1e-8 {
			t.Errorf("%s = %v, want %v", name, c.Beta, beta)
		}
	}
	if math.Abs(model.R2-1) > 1e-9 {
		t.Errorf("R2 = %v, want 1 for a noiseless fit", model.R2)
	}
	if model.N != 40 || model.DF != 37 {
		t.Errorf("N = %d, DF = %d", model.N, model.DF)
	}
}

func TestFitStrongSlopeIsSignificant(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	n := 50
	X := mat.NewDense(n, 2, nil)
	Y := mat.NewVecDense(n, nil)
	rows := make([]int, n)
	for i := 0; i < n; i++ {
		x := float64(i) / 10
		X.Set(i, 0, 1)
		X.Set(i, 1, x)
		Y.SetVec(i, 1+2*x+0.01*rng.NormFloat64())
		rows[i] = i
	}
	d := &Design{Model: "slope", Response: "y", Columns: []string{"const", "x"}, X: X, Y: Y, Rows: rows}

	model, err := Fit(d, CovHC3)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	c, _ := model.Coef("x")
	if math.Abs(c.Beta-2) > 0.02 {
		t.Errorf("slope = %v, want about 2", c.Beta)
	}
	if c.PValue > 0.001 {
		t.Errorf("p = %v for a near-noiseless slope", c.PValue)
	}
	if c.SE <= 0 {
		t.Errorf("SE = %v, want positive", c.SE)
	}
}

// Under homoskedastic noise the HC3 sandwich and the classical estimator
// should agree closely at this sample size.
func TestHC3ConvergesToClassicalUnderHomoskedasticity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 4000
	X := mat.NewDense(n, 2, nil)
	Y := mat.NewVecDense(n, nil)
	rows := make([]int, n)
	for i := 0; i < n; i++ {
		x := rng.Float64() * 10
		X.Set(i, 0, 1)
		X.Set(i, 1, x)
		Y.SetVec(i, 0.5+1.2*x+rng.NormFloat64())
		rows[i] = i
	}
	d := &Design{Model: "homo", Response: "y", Columns: []string{"const", "x"}, X: X, Y: Y, Rows: rows}

	robust, err := Fit(d, CovHC3)
	if err != nil {
		t.Fatalf("Fit HC3: %v", err)
	}
	classical, err := Fit(d, CovNonRobust)
	if err != nil {
		t.Fatalf("Fit nonrobust: %v", err)
	}
	for _, name := range []string{"const", "x"} {
		r, _ := robust.Coef(name)
		c, _ := classical.Coef(name)
		if r.Beta != c.Beta {
			t.Errorf("%s: point estimates must not depend on the covariance estimator", name)
		}
		rel := math.Abs(r.SE-c.SE) / c.SE
		if rel > 0.15 {
			t.Errorf("%s: HC3 SE %v vs classical %v (rel %v)", name, r.SE, c.SE, rel)
		}
	}
}

func TestFitConstantResponseHasUndefinedR2(t *testing.T) {
	n := 20
	X := mat.NewDense(n, 2, nil)
	Y := mat.NewVecDense(n, nil)
	rows := make([]int, n)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
		X.Set(i, 1, float64(i))
		Y.SetVec(i, 3)
		rows[i] = i
	}
	d := &Design{Model: "flat", Response: "y", Columns: []string{"const", "x"}, X: X, Y: Y, Rows: rows}

	model, err := Fit(d, CovHC3)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	c, _ := model.Coef("x")
	if math.Abs(c.Beta) > 1e-10 {
		t.Errorf("slope on a constant response = %v", c.Beta)
	}
	if !math.IsNaN(model.R2) {
		t.Errorf("R2 = %v, want NaN when the response has no variance", model.R2)
	}
}

func TestFitRejectsUnknownCovarianceEstimator(t *testing.T) {
	if _, err := Fit(exactDesign(12), "HC0"); err == nil {
		t.Fatal("expected an error for an unsupported estimator")
	}
}

func TestSolveMatchesFitPointEstimates(t *testing.T) {
	d := exactDesign(25)
	beta, err := Solve(d.X, d.Y)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	model, err := Fit(d, CovNonRobust)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	for j, c := range model.Coefficients {
		if math.Abs(beta[j]-c.Beta) > 1e-12 {
			t.Errorf("column %s: Solve %v vs Fit %v", c.Name, beta[j], c.Beta)
		}
	}
}

func TestFitTooFewObservations(t *testing.T) {
	d := exactDesign(40)
	small := &Design{
		Model:   d.Model,
		Columns: d.Columns,
		X:       mat.NewDense(3, 3, nil),
		Y:       mat.NewVecDense(3, nil),
		Rows:    []int{0, 1, 2},
	}
	_, err := Fit(small, CovHC3)
	if !core.IsSingularMatrixError(err) {
		t.Fatalf("expected singular matrix error, got %v", err)
	}
}
