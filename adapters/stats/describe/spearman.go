package describe

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Correlation is a rank correlation with its sample size and p-value.
type Correlation struct {
	Rho    float64
	N      int
	PValue float64
}

// Spearman ranks both series with tie averaging and takes the Pearson
// correlation of the ranks, which stays correct under heavy ties (the
// ordinal rating scales here tie constantly). Missing values are dropped
// pairwise; the p-value uses the t approximation on n-2 degrees of freedom.
func Spearman(x, y []float64) Correlation {
	cx, cy := pairwise(x, y)
	res := Correlation{Rho: math.NaN(), N: len(cx), PValue: math.NaN()}
	if len(cx) < 3 {
		return res
	}

	rho, err := stats.Correlation(rankValues(cx), rankValues(cy))
	if err != nil {
		return res
	}
	if rho > 1 {
		rho = 1
	} else if rho < -1 {
		rho = -1
	}
	res.Rho = rho

	if rho == 1 || rho == -1 {
		res.PValue = 0
		return res
	}
	df := float64(len(cx) - 2)
	t := rho * math.Sqrt(df/(1-rho*rho))
	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	res.PValue = 2 * (1 - tdist.CDF(math.Abs(t)))
	return res
}

// rankValues converts values to 1-based ranks, averaging ties.
func rankValues(data []float64) []float64 {
	n := len(data)
	type pair struct {
		value float64
		index int
	}
	pairs := make([]pair, n)
	for i, v := range data {
		pairs[i] = pair{value: v, index: i}
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i + 1
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}
		avgRank := float64(i+1) + float64(j-i-1)/2
		for k := i; k < j; k++ {
			ranks[pairs[k].index] = avgRank
		}
		i = j
	}
	return ranks
}
