// Package stats provides the shared numeric primitives of the scoring model:
// percentile estimation, the 1..5 bucket scores, level grading, and the
// effective-productivity discount.
package stats

import (
	"math"
	"sort"
)

// Percentile returns the p-th percentile of values (0 < p <= 100) using the
// index rule idx = p/100*n over the sorted slice: an integer idx averages the
// two surrounding elements, otherwise the element at floor(idx) is taken.
// An empty slice yields 0.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := p / 100 * float64(len(sorted))
	if idx == math.Trunc(idx) && int(idx) >= 1 && int(idx) < len(sorted) {
		i := int(idx)
		return (sorted[i-1] + sorted[i]) / 2
	}
	i := int(math.Floor(idx))
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	if i < 0 {
		i = 0
	}
	return sorted[i]
}

// Median is the 50th percentile.
func Median(values []float64) float64 {
	return Percentile(values, 50)
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// TimeScore buckets a median response time in minutes into 1..5.
func TimeScore(medianMinutes float64) float64 {
	switch {
	case medianMinutes < 5:
		return 1
	case medianMinutes < 15:
		return 2
	case medianMinutes < 30:
		return 3
	case medianMinutes < 60:
		return 4
	}
	return 5
}

// RallyScore buckets an average rally count into 1..5.
func RallyScore(avgRally float64) float64 {
	switch {
	case avgRally < 1.5:
		return 1
	case avgRally < 2.5:
		return 2
	case avgRally < 3.5:
		return 3
	case avgRally < 5:
		return 4
	}
	return 5
}

// CoverageScore buckets a responder-coverage percentage into 1..5. Wide
// coverage means the tag is easy, so the score is inverted.
func CoverageScore(coveragePct float64) float64 {
	switch {
	case coveragePct > 80:
		return 1
	case coveragePct > 60:
		return 2
	case coveragePct > 40:
		return 3
	case coveragePct > 20:
		return 4
	}
	return 5
}

// GradeLevel maps a composite 1..5 score onto a level using the four
// ascending thresholds: below thresholds[0] is level 1, below thresholds[1]
// is level 2, and so on up to level 5.
func GradeLevel(score float64, thresholds [4]float64) int {
	for i, t := range thresholds {
		if score < t {
			return i + 1
		}
	}
	return 5
}

// EffectiveProductivity discounts a base productivity by the overhead of
// question and advice traffic. Rates are percentages.
func EffectiveProductivity(base, questionRate, adviceRate, questionCost, adviceCost float64) float64 {
	denom := 1 + questionRate/100*questionCost + adviceRate/100*adviceCost
	if denom <= 0 {
		return base
	}
	return base / denom
}

// CaseComplexity scores one case for the intra-tag distribution: time and
// rallies dominate, with a bonus for macro-free handling and consultations.
func CaseComplexity(timeScore, rallyScore float64, macroUsed, consulted bool) float64 {
	macro := 3.0
	if macroUsed {
		macro = 1.0
	}
	consult := 1.0
	if consulted {
		consult = 5.0
	}
	return timeScore*0.4 + rallyScore*0.3 + macro*0.2 + consult*0.1
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SafeRate returns num/denom*100, or 0 when denom is 0.
func SafeRate(num, denom float64) float64 {
	if denom == 0 {
		return 0
	}
	return num / denom * 100
}

// Round1 rounds to one decimal place, matching the report precision.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
