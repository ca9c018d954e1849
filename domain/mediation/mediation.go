package mediation

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"gomediate/domain/core"
	"gomediate/domain/ratings"
	"gomediate/domain/regress"
)

// DefaultTolerance bounds |direct + indirect - total| before the
// decomposition is flagged inconsistent. With all three models fit on the
// same rows the gap is pure floating-point noise, orders of magnitude
// below this.
const DefaultTolerance = 1e-6

// zCrit95 is the normal critical value for the 95% Sobel interval.
const zCrit95 = 1.96

// Inputs names the fitted trio and the variables the decomposition reads.
// Treatment, MediatorVar and Tolerance default to the standard run values
// when zero.
type Inputs struct {
	Mediator *regress.FittedModel // M ~ T + controls
	Total    *regress.FittedModel // Y ~ T + controls
	Direct   *regress.FittedModel // Y ~ M + T + controls

	Treatment   string
	MediatorVar string
	Tolerance   float64
}

// Result is the product-of-coefficients decomposition with Sobel inference.
type Result struct {
	A      regress.Coefficient // treatment -> mediator
	B      regress.Coefficient // mediator -> outcome, treatment held
	Total  regress.Coefficient // treatment -> outcome, mediator free
	Direct regress.Coefficient // treatment -> outcome, mediator held

	Indirect float64
	SobelSE  float64
	SobelZ   float64
	SobelP   float64
	CILow    float64
	CIHigh   float64

	// Proportion is the share of the total effect carried through the
	// mediator. NaN when the total effect is exactly zero.
	Proportion float64

	Gap        float64 // |direct + indirect - total|
	Tolerance  float64
	Consistent bool
}

// Decompose multiplies the a and b paths into the indirect effect and
// checks it against the total effect. The Sobel standard error is the
// first-order delta method, sqrt(b^2 SEa^2 + a^2 SEb^2); the covariance
// between a and b is omitted since the paths come from separate fits.
func Decompose(in Inputs) (*Result, error) {
	treatment := in.Treatment
	if treatment == "" {
		treatment = ratings.FieldTreatment.String()
	}
	mediatorVar := in.MediatorVar
	if mediatorVar == "" {
		mediatorVar = ratings.FieldMEQuality.String()
	}
	tolerance := in.Tolerance
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}

	a, err := in.Mediator.Coef(treatment)
	if err != nil {
		return nil, err
	}
	total, err := in.Total.Coef(treatment)
	if err != nil {
		return nil, err
	}
	direct, err := in.Direct.Coef(treatment)
	if err != nil {
		return nil, err
	}
	b, err := in.Direct.Coef(mediatorVar)
	if err != nil {
		return nil, err
	}

	indirect := a.Beta * b.Beta
	sobelSE := math.Sqrt(b.Beta*b.Beta*a.SE*a.SE + a.Beta*a.Beta*b.SE*b.SE)

	z := math.NaN()
	p := math.NaN()
	if sobelSE > 0 {
		z = indirect / sobelSE
		p = 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))
	}

	proportion := math.NaN()
	if total.Beta != 0 {
		proportion = indirect / total.Beta
	}

	gap := math.Abs(direct.Beta + indirect - total.Beta)

	return &Result{
		A:          a,
		B:          b,
		Total:      total,
		Direct:     direct,
		Indirect:   indirect,
		SobelSE:    sobelSE,
		SobelZ:     z,
		SobelP:     p,
		CILow:      indirect - zCrit95*sobelSE,
		CIHigh:     indirect + zCrit95*sobelSE,
		Proportion: proportion,
		Gap:        gap,
		Tolerance:  tolerance,
		Consistent: gap < tolerance,
	}, nil
}

// Warning returns the non-fatal consistency warning, or nil. Callers print
// it next to the decomposition; it never aborts a run.
func (r *Result) Warning() error {
	if r.Consistent {
		return nil
	}
	return core.NewInconsistencyWarning(r.Gap, r.Tolerance)
}
