package models

// WGIIndicators lists the World Bank Worldwide Governance Indicator
// series in presentation order.
var WGIIndicators = []WGIIndicator{
	{Code: "VA.EST", Short: "VA", Name: "Voice and Accountability"},
	{Code: "PV.EST", Short: "PSV", Name: "Political Stability"},
	{Code: "GE.EST", Short: "GE", Name: "Government Effectiveness"},
	{Code: "RQ.EST", Short: "RQ", Name: "Regulatory Quality"},
	{Code: "RL.EST", Short: "RL", Name: "Rule of Law"},
	{Code: "CC.EST", Short: "CC", Name: "Control of Corruption"},
}

// WGIIndicator describes one governance indicator series.
type WGIIndicator struct {
	Code  string `json:"code"`
	Short string `json:"short"`
	Name  string `json:"name"`
}

// WGIObservation is one (country, year, indicator) value as returned by
// the World Bank API.
type WGIObservation struct {
	Country   string  `json:"country"`
	ISO3      string  `json:"iso3"`
	Year      int     `json:"year"`
	Indicator string  `json:"indicator"`
	Value     float64 `json:"value"`
}

// WGIRecord is the wide form: all six indicators for one country-year.
// Nil means the indicator is missing for that country-year.
type WGIRecord struct {
	Country string `json:"country"`
	ISO3    string `json:"iso3"`
	Year    int    `json:"year"`

	Values map[string]*float64 `json:"values"` // keyed by short name (VA, PSV, ...)
}

// Complete reports whether every indicator is present.
func (r *WGIRecord) Complete() bool {
	for _, ind := range WGIIndicators {
		if r.Values[ind.Short] == nil {
			return false
		}
	}
	return true
}
