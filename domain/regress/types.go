package regress

import (
	"fmt"

	"gomediate/domain/core"
	"gomediate/domain/ratings"
)

// Intercept is the name of the constant column in every design.
const Intercept = "const"

// ModelSpec declares one regression: a response, ordered numeric
// predictors, and categorical fixed-effect fields expanded to
// drop-first dummy columns.
type ModelSpec struct {
	Name         string
	Response     ratings.Field
	Predictors   []ratings.Field
	FixedEffects []ratings.Field

	// Reported lists the coefficients a summary table prints for this
	// model. Fixed-effect dummies stay out of the tables.
	Reported []ratings.Field
}

// Fields returns every table field the spec touches, response first.
func (s ModelSpec) Fields() []ratings.Field {
	out := []ratings.Field{s.Response}
	out = append(out, s.Predictors...)
	out = append(out, s.FixedEffects...)
	return out
}

// Coefficient is one estimated parameter with its inference.
type Coefficient struct {
	Name   string
	Beta   float64
	SE     float64
	TValue float64
	PValue float64
}

// FittedModel is the estimation result for one ModelSpec.
type FittedModel struct {
	Name         string
	Response     string
	CovType      string
	Coefficients []Coefficient
	N            int // observations after listwise deletion
	DF           int // residual degrees of freedom
	R2           float64
	AdjR2        float64
	DroppedTerms []string // declared dummy levels with no observations
}

// Coef returns the named coefficient.
func (m *FittedModel) Coef(name string) (Coefficient, error) {
	for _, c := range m.Coefficients {
		if c.Name == name {
			return c, nil
		}
	}
	return Coefficient{}, fmt.Errorf("%w: %s in %s", core.ErrCoefficientNotFound, name, m.Name)
}

// TreatmentEffect returns the treatment coefficient, the estimate every
// robustness row compares.
func (m *FittedModel) TreatmentEffect() (Coefficient, error) {
	return m.Coef(ratings.FieldTreatment.String())
}
