package fitting

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"priorelicit/internal/analysis/numeric"
)

// Metric names reported with every fit. SumSquareError ranks; the criteria are informative.
const (
	MetricSumSquareError = "sumsquare_error"
	MetricAIC            = "aic"
	MetricBIC            = "bic"
)

// DefaultBins is the histogram resolution the fitted densities are compared against
const DefaultBins = 100

// histogram is an empirical density: bin centres and count/(n*width)
type histogram struct {
	centres []float64
	density []float64
}

func newHistogram(x []float64, bins int) histogram {
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	width := (hi - lo) / float64(bins)
	n := float64(len(sorted))
	h := histogram{centres: make([]float64, bins), density: make([]float64, bins)}
	for i := range counts {
		h.centres[i] = lo + (float64(i)+0.5)*width
		h.density[i] = counts[i] / (n * width)
	}
	return h
}

// fromCounts builds an empirical density from pre-binned data
func fromCounts(edges, counts []float64) histogram {
	total := floats.Sum(counts)
	h := histogram{centres: make([]float64, len(counts)), density: make([]float64, len(counts))}
	for i := range counts {
		width := edges[i+1] - edges[i]
		h.centres[i] = (edges[i] + edges[i+1]) / 2
		h.density[i] = counts[i] / (total * width)
	}
	return h
}

func (h histogram) sumSquareError(d *Distribution) float64 {
	var sse float64
	for i, c := range h.centres {
		diff := h.density[i] - d.Prob(c)
		sse += diff * diff
	}
	return sse
}

// score computes the goodness-of-fit metrics. Non-finite criteria are left out; a
// non-finite error is reported through ok.
func score(d *Distribution, h histogram, x []float64) (metrics map[string]float64, ok bool) {
	sse := h.sumSquareError(d)
	if !numeric.IsFinite(sse) {
		return nil, false
	}
	metrics = map[string]float64{MetricSumSquareError: sse}
	if len(x) == 0 {
		return metrics, true
	}

	var ll float64
	for _, v := range x {
		ll += d.LogProb(v)
	}
	k := float64(d.NumParams())
	n := float64(len(x))
	if aic := 2*k - 2*ll; numeric.IsFinite(aic) {
		metrics[MetricAIC] = aic
	}
	if bic := k*math.Log(n) - 2*ll; numeric.IsFinite(bic) {
		metrics[MetricBIC] = bic
	}
	return metrics, true
}
