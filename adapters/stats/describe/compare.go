package describe

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// TwoSampleResult compares the means of two groups under unequal variances.
type TwoSampleResult struct {
	N1, N2       int
	Mean1, Mean2 float64
	MeanDiff     float64
	TStat        float64
	DF           float64
	PValue       float64
}

// WelchTTest runs Welch's unequal-variance t-test on the non-missing
// values of each group, with Welch-Satterthwaite degrees of freedom.
// Groups smaller than two report NaN inference.
func WelchTTest(group1, group2 []float64) TwoSampleResult {
	g1 := observed(group1)
	g2 := observed(group2)
	res := TwoSampleResult{
		N1:     len(g1),
		N2:     len(g2),
		Mean1:  mean(g1),
		Mean2:  mean(g2),
		TStat:  math.NaN(),
		DF:     math.NaN(),
		PValue: math.NaN(),
	}
	res.MeanDiff = res.Mean1 - res.Mean2
	if len(g1) < 2 || len(g2) < 2 {
		return res
	}

	n1 := float64(len(g1))
	n2 := float64(len(g2))
	v1 := sampleVariance(g1)
	v2 := sampleVariance(g2)

	se := math.Sqrt(v1/n1 + v2/n2)
	if se == 0 {
		return res
	}
	res.TStat = (res.Mean1 - res.Mean2) / se
	res.DF = math.Pow(v1/n1+v2/n2, 2) /
		(math.Pow(v1/n1, 2)/(n1-1) + math.Pow(v2/n2, 2)/(n2-1))

	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: res.DF}
	res.PValue = 2 * (1 - tdist.CDF(math.Abs(res.TStat)))
	return res
}

// CohensD is the standardized mean difference with the average-variance
// denominator, (m1-m2)/sqrt((s1^2+s2^2)/2).
func CohensD(group1, group2 []float64) float64 {
	g1 := observed(group1)
	g2 := observed(group2)
	if len(g1) < 2 || len(g2) < 2 {
		return math.NaN()
	}
	denom := math.Sqrt((sampleVariance(g1) + sampleVariance(g2)) / 2)
	if denom == 0 {
		return math.NaN()
	}
	return (mean(g1) - mean(g2)) / denom
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func sampleVariance(data []float64) float64 {
	if len(data) < 2 {
		return math.NaN()
	}
	m := mean(data)
	sumSq := 0.0
	for _, v := range data {
		diff := v - m
		sumSq += diff * diff
	}
	return sumSq / float64(len(data)-1)
}
