package app

// Options carries the run parameters shared across the analysis services.
// Zero values fall back to the standard run: seed 42, 2000 bootstrap
// iterations, 500 placebo draws of 120 projects against the pre-2012 pool,
// and a 5-observation floor for country fixed effects.
type Options struct {
	Seed                int64
	Workers             int
	BootstrapIterations int
	PlaceboDraws        int
	PlaceboSampleSize   int
	PlaceboCutoffFY     int
	MinCountryObs       int
}

func (o Options) normalized() Options {
	if o.Seed == 0 {
		o.Seed = 42
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.BootstrapIterations <= 0 {
		o.BootstrapIterations = 2000
	}
	if o.PlaceboDraws <= 0 {
		o.PlaceboDraws = 500
	}
	if o.PlaceboSampleSize <= 0 {
		o.PlaceboSampleSize = 120
	}
	if o.PlaceboCutoffFY <= 0 {
		o.PlaceboCutoffFY = 2012
	}
	if o.MinCountryObs <= 0 {
		o.MinCountryObs = 5
	}
	return o
}
