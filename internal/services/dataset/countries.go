package dataset

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CountryTable resolves country names to canonical names and two-letter
// flag codes. Resolution is explicit data, not heuristics: dataset
// quirks (the spreads feed labels Ukraine as "UK") live in the alias
// map where they can be overridden per deployment.
type CountryTable struct {
	// Aliases maps a raw dataset name onto the canonical country name.
	Aliases map[string]string `yaml:"aliases"`

	// Codes maps a canonical country name onto its two-letter icon code.
	Codes map[string]string `yaml:"codes"`
}

// DefaultCountryTable returns the built-in table covering the countries
// the two source pages carry.
func DefaultCountryTable() *CountryTable {
	return &CountryTable{
		Aliases: map[string]string{
			// The spreads dataset uses "UK" for Ukraine, not the United
			// Kingdom. Kept as overridable data on purpose.
			"UK":           "Ukraine",
			"Uk":           "Ukraine",
			"uk":           "Ukraine",
			"USA":          "United States",
			"Czechia":      "Czech Republic",
			"Korea, South": "South Korea",
			"Bosnia":       "Bosnia and Herzegovina",
		},
		Codes: map[string]string{
			"Switzerland": "ch", "Singapore": "sg", "Norway": "no", "Netherlands": "nl",
			"Germany": "de", "Australia": "au", "Sweden": "se", "Denmark": "dk",
			"Canada": "ca", "New Zealand": "nz", "United States": "us",
			"Finland": "fi", "Austria": "at", "Qatar": "qa", "Taiwan": "tw",
			"Ireland": "ie", "South Korea": "kr", "Hong Kong": "hk",
			"United Kingdom": "gb", "Belgium": "be", "Czech Republic": "cz",
			"France": "fr", "Iceland": "is", "Slovenia": "si",
			"Japan": "jp", "China": "cn", "Lithuania": "lt", "Malta": "mt",
			"Chile": "cl", "Portugal": "pt", "Slovakia": "sk", "Poland": "pl",
			"Spain": "es", "Croatia": "hr", "Cyprus": "cy", "Israel": "il",
			"Malaysia": "my", "Botswana": "bw", "Bulgaria": "bg", "Philippines": "ph",
			"Italy": "it", "Indonesia": "id", "Peru": "pe", "Kazakhstan": "kz",
			"Mexico": "mx", "Hungary": "hu", "Greece": "gr", "India": "in",
			"Mauritius": "mu", "Romania": "ro", "Colombia": "co", "Serbia": "rs",
			"Morocco": "ma", "Vietnam": "vn", "Brazil": "br", "South Africa": "za",
			"Jordan": "jo", "Namibia": "na", "Turkey": "tr", "Bangladesh": "bd",
			"Bahrain": "bh", "Uganda": "ug", "Nigeria": "ng", "Egypt": "eg",
			"Kenya": "ke", "Pakistan": "pk", "Sri Lanka": "lk", "Zambia": "zm",
			"Ukraine": "ua", "Russia": "ru", "Bosnia and Herzegovina": "ba",
			"Bolivia": "bo",
		},
	}
}

// LoadCountryTable merges an optional YAML override file over the
// defaults. An empty path returns the defaults unchanged.
func LoadCountryTable(path string) (*CountryTable, error) {
	table := DefaultCountryTable()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read country table %s: %w", path, err)
	}

	var overrides CountryTable
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse country table %s: %w", path, err)
	}

	for k, v := range overrides.Aliases {
		table.Aliases[k] = v
	}
	for k, v := range overrides.Codes {
		table.Codes[k] = v
	}
	return table, nil
}

// Canonical resolves a raw dataset name to its canonical country name.
func (t *CountryTable) Canonical(name string) string {
	cleaned := CleanCountryName(name)
	if canonical, ok := t.Aliases[cleaned]; ok {
		return canonical
	}
	return cleaned
}

// Code resolves a raw dataset name to a two-letter icon code. Unknown
// countries fall back to the first two letters of the name.
func (t *CountryTable) Code(name string) string {
	canonical := t.Canonical(name)
	if code, ok := t.Codes[canonical]; ok {
		return code
	}
	lower := strings.ToLower(canonical)
	if len(lower) < 2 {
		return lower
	}
	return lower[:2]
}

// CleanCountryName strips parenthetical qualifiers and footnote
// asterisks: "Ukraine (*)" becomes "Ukraine".
func CleanCountryName(name string) string {
	for {
		open := strings.Index(name, "(")
		if open < 0 {
			break
		}
		close := strings.Index(name[open:], ")")
		if close < 0 {
			name = name[:open]
			break
		}
		name = name[:open] + name[open+close+1:]
	}
	name = strings.ReplaceAll(name, "*", "")
	return strings.Join(strings.Fields(name), " ")
}
