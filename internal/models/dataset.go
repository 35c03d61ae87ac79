package models

// SpreadRecord is one row of the bond-spreads table: a country and its
// 10-year spread to the US in basis points.
type SpreadRecord struct {
	Country  string  `json:"country"`
	SpreadBP float64 `json:"spread_bp"`
}

// CountryRatings carries one country's raw agency ratings plus the
// numeric conversions. Raw text keeps the scraped outlook tags so a
// snapshot can be re-normalized later. Nil pointers mean absent, never
// zero.
type CountryRatings struct {
	Country string `json:"country"`

	SP     string `json:"sp"`
	Moodys string `json:"moodys"`
	Fitch  string `json:"fitch"`

	SPScore     *float64 `json:"sp_score,omitempty"`
	MoodysScore *float64 `json:"moodys_score,omitempty"`
	FitchScore  *float64 `json:"fitch_score,omitempty"`

	Average *float64 `json:"average,omitempty"`
	Count   int      `json:"count"`
}

// Scores returns the present numeric scores.
func (c *CountryRatings) Scores() []float64 {
	var out []float64
	for _, p := range []*float64{c.SPScore, c.MoodysScore, c.FitchScore} {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// MaxScore returns the best present score; ok=false with no ratings.
func (c *CountryRatings) MaxScore() (float64, bool) {
	scores := c.Scores()
	if len(scores) == 0 {
		return 0, false
	}
	max := scores[0]
	for _, v := range scores[1:] {
		if v > max {
			max = v
		}
	}
	return max, true
}

// MergedRecord joins a country's spread with its ratings. One row of
// credit_ratings_and_spreads.csv.
type MergedRecord struct {
	Country  string  `json:"country"`
	SpreadBP float64 `json:"spread_bp"`
	Ratings  CountryRatings
}
