package regress

import "gomediate/domain/ratings"

// The mediation trio. All three models share the same controls and region
// fixed effects so the product-of-coefficients decomposition is coherent.

// BaseControls returns the covariates shared by every specification.
func BaseControls() []ratings.Field {
	return []ratings.Field{ratings.FieldApprovalFY, ratings.FieldVolume, ratings.FieldFCS}
}

// MediatorModel regresses M&E quality on treatment: the a-path.
func MediatorModel() ModelSpec {
	return ModelSpec{
		Name:         "Model 1 - DV: M&E Quality",
		Response:     ratings.FieldMEQuality,
		Predictors:   append([]ratings.Field{ratings.FieldTreatment}, BaseControls()...),
		FixedEffects: []ratings.Field{ratings.FieldRegion},
		Reported:     []ratings.Field{ratings.FieldTreatment, ratings.FieldApprovalFY, ratings.FieldFCS},
	}
}

// TotalEffectModel regresses outcome on treatment without the mediator:
// the total effect.
func TotalEffectModel() ModelSpec {
	return ModelSpec{
		Name:         "Model 2 - DV: Outcome (total)",
		Response:     ratings.FieldOutcome,
		Predictors:   append([]ratings.Field{ratings.FieldTreatment}, BaseControls()...),
		FixedEffects: []ratings.Field{ratings.FieldRegion},
		Reported:     []ratings.Field{ratings.FieldTreatment, ratings.FieldApprovalFY, ratings.FieldFCS},
	}
}

// DirectEffectModel regresses outcome on the mediator and treatment
// together: the b-path and the direct effect.
func DirectEffectModel() ModelSpec {
	return ModelSpec{
		Name:         "Model 3 - DV: Outcome (direct)",
		Response:     ratings.FieldOutcome,
		Predictors:   append([]ratings.Field{ratings.FieldMEQuality, ratings.FieldTreatment}, BaseControls()...),
		FixedEffects: []ratings.Field{ratings.FieldRegion},
		Reported:     []ratings.Field{ratings.FieldMEQuality, ratings.FieldTreatment, ratings.FieldApprovalFY},
	}
}

// PlaceboModel regresses outcome on the controls alone. The placebo test
// inserts its fake assignment column into this design draw by draw.
func PlaceboModel() ModelSpec {
	return ModelSpec{
		Name:         "Placebo - DV: Outcome",
		Response:     ratings.FieldOutcome,
		Predictors:   BaseControls(),
		FixedEffects: []ratings.Field{ratings.FieldRegion},
	}
}

// The robustness variants re-estimate the total effect under alternative
// fixed-effect structures, plus one swap of the dependent variable.

// SectorRobustnessModel adds sector intercepts on top of the baseline.
func SectorRobustnessModel() ModelSpec {
	return ModelSpec{
		Name:         "R1 - outcome, region + sector FE",
		Response:     ratings.FieldOutcome,
		Predictors:   append([]ratings.Field{ratings.FieldTreatment}, BaseControls()...),
		FixedEffects: []ratings.Field{ratings.FieldRegion, ratings.FieldSector},
	}
}

// CountryFEModel replaces region intercepts with country intercepts.
func CountryFEModel() ModelSpec {
	return ModelSpec{
		Name:         "R2 - outcome, country FE",
		Response:     ratings.FieldOutcome,
		Predictors:   append([]ratings.Field{ratings.FieldTreatment}, BaseControls()...),
		FixedEffects: []ratings.Field{ratings.FieldCountry},
	}
}

// CountrySectorFEModel carries country and sector intercepts together.
func CountrySectorFEModel() ModelSpec {
	return ModelSpec{
		Name:         "R3 - outcome, country + sector FE",
		Response:     ratings.FieldOutcome,
		Predictors:   append([]ratings.Field{ratings.FieldTreatment}, BaseControls()...),
		FixedEffects: []ratings.Field{ratings.FieldCountry, ratings.FieldSector},
	}
}

// QualityCountryFEModel moves the mediator into the response under country
// intercepts: does treatment still move M&E quality within country?
func QualityCountryFEModel() ModelSpec {
	return ModelSpec{
		Name:         "R4 - M&E quality, country FE",
		Response:     ratings.FieldMEQuality,
		Predictors:   append([]ratings.Field{ratings.FieldTreatment}, BaseControls()...),
		FixedEffects: []ratings.Field{ratings.FieldCountry},
	}
}
