package ratings

// Ordinal scores run from AAA=22 down to D=1. Moody's has no direct
// equivalent for S&P's CC/D split: Ca sits at 3 and C drops to 1.
var spLevels = map[string]int{
	"AAA": 22, "AA+": 21, "AA": 20, "AA-": 19,
	"A+": 18, "A": 17, "A-": 16,
	"BBB+": 15, "BBB": 14, "BBB-": 13,
	"BB+": 12, "BB": 11, "BB-": 10,
	"B+": 9, "B": 8, "B-": 7,
	"CCC+": 6, "CCC": 5, "CCC-": 4,
	"CC": 3, "C": 2, "D": 1,
}

var moodysLevels = map[string]int{
	"Aaa": 22, "Aa1": 21, "Aa2": 20, "Aa3": 19,
	"A1": 18, "A2": 17, "A3": 16,
	"Baa1": 15, "Baa2": 14, "Baa3": 13,
	"Ba1": 12, "Ba2": 11, "Ba3": 10,
	"B1": 9, "B2": 8, "B3": 7,
	"Caa1": 6, "Caa2": 5, "Caa3": 4,
	"Ca": 3, "C": 1,
}

var fitchLevels = map[string]int{
	"AAA": 22, "AA+": 21, "AA": 20, "AA-": 19,
	"A+": 18, "A": 17, "A-": 16,
	"BBB+": 15, "BBB": 14, "BBB-": 13,
	"BB+": 12, "BB": 11, "BB-": 10,
	"B+": 9, "B": 8, "B-": 7,
	"CCC+": 6, "CCC": 5, "CCC-": 4,
	"CC": 3, "C": 2, "D": 1,
}

// scoreLabels maps an ordinal score back to the S&P-style letter grade
// used on chart axes.
var scoreLabels = map[int]string{
	22: "AAA", 21: "AA+", 20: "AA", 19: "AA-", 18: "A+", 17: "A", 16: "A-",
	15: "BBB+", 14: "BBB", 13: "BBB-", 12: "BB+", 11: "BB", 10: "BB-",
	9: "B+", 8: "B", 7: "B-", 6: "CCC+", 5: "CCC", 4: "CCC-",
	3: "CC", 2: "C", 1: "D",
}

// ScoreLabel returns the letter grade for an ordinal score, or "" when
// the score is outside the scale.
func ScoreLabel(score int) string {
	return scoreLabels[score]
}
