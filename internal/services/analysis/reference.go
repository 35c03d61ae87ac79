package analysis

// referencePair is one published pairwise correlation from Table 6 of
// the governance indicators study.
type referencePair struct {
	A, B  string
	Value float64
}

var referenceCorrelations = []referencePair{
	{"VA", "PSV", 0.51},
	{"VA", "GE", 0.46},
	{"VA", "RQ", 0.66},
	{"VA", "RL", 0.63},
	{"VA", "CC", 0.52},
	{"PSV", "GE", 0.81},
	{"PSV", "RQ", 0.80},
	{"PSV", "RL", 0.82},
	{"PSV", "CC", 0.79},
	{"GE", "RQ", 0.87},
	{"GE", "RL", 0.89},
	{"GE", "CC", 0.86},
	{"RQ", "RL", 0.87},
	{"RQ", "CC", 0.87},
	{"RL", "CC", 0.88},
}

// LargeDifference flags pairs that drifted notably from the study.
const LargeDifference = 0.05

// Comparison is one pair compared against the published value.
type Comparison struct {
	A, B       string
	Reference  float64
	Calculated float64
	Difference float64
}

// Large reports whether the drift exceeds the flag threshold.
func (c Comparison) Large() bool {
	diff := c.Difference
	if diff < 0 {
		diff = -diff
	}
	return diff > LargeDifference
}

// CompareWithReference compares a computed matrix against the
// published Table 6 values, pair by pair in publication order.
func CompareWithReference(m *Matrix) []Comparison {
	out := make([]Comparison, 0, len(referenceCorrelations))
	for _, ref := range referenceCorrelations {
		calc, ok := m.Value(ref.A, ref.B)
		if !ok {
			continue
		}
		out = append(out, Comparison{
			A:          ref.A,
			B:          ref.B,
			Reference:  ref.Value,
			Calculated: calc,
			Difference: calc - ref.Value,
		})
	}
	return out
}
