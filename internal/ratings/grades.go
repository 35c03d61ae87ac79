package ratings

// InvestmentGradeMin is the lowest ordinal score that still counts as
// investment grade (BBB-).
const InvestmentGradeMin = 13

// Grade is a named band of ordinal scores, boundaries inclusive.
type Grade struct {
	Name string
	Min  float64
	Max  float64
}

// NoRating is the category for countries without a usable average.
const NoRating = "No Rating"

// Grades lists the rating bands from best to worst. The order is the
// presentation order of the summary table.
var Grades = []Grade{
	{"Prime", 22, 22},
	{"High Medium Grade", 19, 21},
	{"Upper Medium Grade", 16, 18},
	{"Lower Medium Grade", 13, 15},
	{"Speculative", 10, 12},
	{"Highly Speculative", 7, 9},
	{"Substantial Risk", 4, 6},
	{"Extremely Speculative", 2, 3},
	{"In Default", 1, 1},
}

// GradeFor categorizes an average rating. present=false (no ratings at
// all) and averages falling between bands both map to NoRating.
func GradeFor(average float64, present bool) string {
	if !present {
		return NoRating
	}
	for _, g := range Grades {
		if average >= g.Min && average <= g.Max {
			return g.Name
		}
	}
	return NoRating
}
