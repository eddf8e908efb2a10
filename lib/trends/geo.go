package trends

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// the hottrends table only knows a handful of countries, keyed by full
// snake-case name
var dailyCountries = map[string]string{
	"united states":  "united_states",
	"united_states":  "united_states",
	"us":             "united_states",
	"united kingdom": "united_kingdom",
	"united_kingdom": "united_kingdom",
	"uk":             "united_kingdom",
	"gb":             "united_kingdom",
	"japan":          "japan",
	"jp":             "japan",
	"canada":         "canada",
	"ca":             "canada",
	"germany":        "germany",
	"de":             "germany",
	"india":          "india",
	"in":             "india",
	"australia":      "australia",
	"au":             "australia",
	"brazil":         "brazil",
	"br":             "brazil",
	"france":         "france",
	"fr":             "france",
	"mexico":         "mexico",
	"mx":             "mexico",
	"italy":          "italy",
	"it":             "italy",
}

// realtime trends want 2-letter codes, map the common full names
var realtimeCountries = map[string]string{
	"united states":  "US",
	"united_states":  "US",
	"usa":            "US",
	"united kingdom": "GB",
	"united_kingdom": "GB",
	"uk":             "GB",
	"india":          "IN",
	"brazil":         "BR",
	"mexico":         "MX",
	"france":         "FR",
	"germany":        "DE",
	"italy":          "IT",
	"spain":          "ES",
	"canada":         "CA",
	"australia":      "AU",
	"japan":          "JP",
}

// tolerate slightly misspelled country names ("untied states") before
// giving up and passing the input through verbatim
func fuzzyLookup(table map[string]string, name string) (string, bool) {
	best := ""
	bestDistance := 3
	for known, canonical := range table {
		if len(known) <= 3 {
			continue
		}
		distance := matchr.DamerauLevenshtein(name, known)
		if distance < bestDistance {
			best = canonical
			bestDistance = distance
		}
	}
	return best, best != ""
}

// NormalizeDailyGeo maps a country name or code to the hottrends table
// key, falling back to the input when it is unknown.
func NormalizeDailyGeo(pn string) string {
	name := strings.ToLower(strings.TrimSpace(pn))
	if canonical, ok := dailyCountries[name]; ok {
		return canonical
	}
	if canonical, ok := fuzzyLookup(dailyCountries, name); ok {
		return canonical
	}
	return pn
}

// NormalizeRealtimeGeo maps a country name to its 2-letter geo code,
// falling back to uppercasing the input.
func NormalizeRealtimeGeo(pn string) string {
	name := strings.ToLower(strings.TrimSpace(pn))
	if code, ok := realtimeCountries[name]; ok {
		return code
	}
	if code, ok := fuzzyLookup(realtimeCountries, name); ok {
		return code
	}
	return strings.ToUpper(pn)
}
