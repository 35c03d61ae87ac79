package ratings

import (
	"fmt"
	"strings"
)

// Agency identifies one of the three rating agencies.
type Agency string

const (
	AgencySP     Agency = "S&P"
	AgencyMoodys Agency = "Moody's"
	AgencyFitch  Agency = "Fitch"
)

const (
	// MinScore and MaxScore bound the ordinal letter-grade scale.
	MinScore = 1
	MaxScore = 22

	// OutlookStep is the fractional adjustment applied for an
	// upgrade/downgrade watch indicator.
	OutlookStep = 1.0 / 3.0
)

// Outlook tag literals as they appear in scraped cell text. The source
// pages pad them with a variable run of whitespace, so detection only
// keys on the bracketed literal itself.
const (
	upgradeTag   = "[upgrade]"
	downgradeTag = "[downgrade]"
)

// absentValues are raw texts that mean "no rating", not a parse failure.
var absentValues = map[string]bool{
	"": true, "N/A": true, "-": true, "NR": true,
}

// Scale converts raw rating text for one agency into a numeric score.
// Construction validates the level table so per-row normalization can
// never fail on a malformed table.
type Scale struct {
	agency Agency
	levels map[string]int
}

// NewScale builds a validated Scale. Every level must map into
// [MinScore, MaxScore] and no two codes may share an ordinal; gaps are
// allowed (Moody's omits a level).
func NewScale(agency Agency, levels map[string]int) (*Scale, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("rating scale for %s is empty", agency)
	}

	seen := make(map[int]string, len(levels))
	copied := make(map[string]int, len(levels))
	for code, score := range levels {
		if score < MinScore || score > MaxScore {
			return nil, fmt.Errorf("rating scale for %s: code %q has score %d outside [%d, %d]",
				agency, code, score, MinScore, MaxScore)
		}
		if prev, ok := seen[score]; ok {
			return nil, fmt.Errorf("rating scale for %s: codes %q and %q share score %d",
				agency, prev, code, score)
		}
		seen[score] = code
		copied[code] = score
	}

	return &Scale{agency: agency, levels: copied}, nil
}

// MustScale is a construction-time helper for the built-in tables.
func MustScale(agency Agency, levels map[string]int) *Scale {
	s, err := NewScale(agency, levels)
	if err != nil {
		panic(err)
	}
	return s
}

// Built-in scales for the three agencies.
var (
	SP     = MustScale(AgencySP, spLevels)
	Moodys = MustScale(AgencyMoodys, moodysLevels)
	Fitch  = MustScale(AgencyFitch, fitchLevels)
)

// ScaleFor returns the built-in scale for an agency.
func ScaleFor(agency Agency) (*Scale, bool) {
	switch agency {
	case AgencySP:
		return SP, true
	case AgencyMoodys:
		return Moodys, true
	case AgencyFitch:
		return Fitch, true
	}
	return nil, false
}

// Agency returns the agency this scale belongs to.
func (s *Scale) Agency() Agency {
	return s.agency
}

// Normalize converts raw rating text into a numeric score. The boolean
// is false when the text carries no rating ("N/A", "-", "NR", empty, or
// an unknown code); that is an expected outcome, never an error.
//
// An upgrade watch adds +1/3 to the base score, a downgrade watch
// subtracts 1/3. "SD" and "RD" count as default ("D").
func (s *Scale) Normalize(raw string) (float64, bool) {
	text := strings.TrimSpace(raw)
	if absentValues[text] {
		return 0, false
	}

	text, modifier := stripOutlook(text)
	if absentValues[text] {
		return 0, false
	}

	// Selective/restricted default collapses onto the default level.
	if text == "SD" || text == "RD" {
		text = "D"
	}

	code := extractCode(text)
	base, ok := s.levels[code]
	if !ok {
		return 0, false
	}
	return float64(base) + modifier, true
}

// stripOutlook removes an upgrade/downgrade tag from the text and
// returns the remaining base text plus the outlook modifier. The tag
// may be separated from the code by any amount of whitespace.
func stripOutlook(text string) (string, float64) {
	if idx := strings.Index(text, upgradeTag); idx >= 0 {
		return strings.TrimSpace(text[:idx] + text[idx+len(upgradeTag):]), OutlookStep
	}
	if idx := strings.Index(text, downgradeTag); idx >= 0 {
		return strings.TrimSpace(text[:idx] + text[idx+len(downgradeTag):]), -OutlookStep
	}
	return text, 0
}

// extractCode scans the text for the first rating code: a run of one to
// three letters, an optional + or -, and an optional single digit 1-3
// (the numeral form covers Moody's codes like Aa3). First match wins.
// When no letters occur the text is returned as-is so the table lookup
// decides.
func extractCode(text string) string {
	start := -1
	for i, r := range text {
		if isLetter(r) {
			start = i
			break
		}
	}
	if start < 0 {
		return text
	}

	end := start
	for end < len(text) && end-start < 3 && isLetter(rune(text[end])) {
		end++
	}
	if end < len(text) && (text[end] == '+' || text[end] == '-') {
		end++
	}
	if end < len(text) && text[end] >= '1' && text[end] <= '3' {
		end++
	}
	return text[start:end]
}

func isLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// Average returns the mean of the present scores. The boolean is false
// when no scores are present; an absent mean never degrades to zero.
func Average(scores []float64) (float64, bool) {
	if len(scores) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range scores {
		sum += v
	}
	return sum / float64(len(scores)), true
}
