package utils

import (
	"strings"
)

// residenceNames maps the two-letter residence codes accepted on the command
// line to display names for the report header. Codes outside this table are
// shown uppercased as-is.
var residenceNames = map[string]string{
	"at": "Austria",
	"be": "Belgium",
	"cz": "Czechia",
	"de": "Germany",
	"es": "Spain",
	"fr": "France",
	"gb": "United Kingdom",
	"ie": "Ireland",
	"it": "Italy",
	"nl": "Netherlands",
	"pl": "Poland",
	"pt": "Portugal",
	"sk": "Slovakia",
	"us": "United States of America",
}

// ResidenceName resolves a residence code to its display name.
func ResidenceName(code string) string {
	if name, found := residenceNames[strings.ToLower(strings.TrimSpace(code))]; found {
		return name
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// KnownResidence reports whether the code is in the residence table.
func KnownResidence(code string) bool {
	_, found := residenceNames[strings.ToLower(strings.TrimSpace(code))]
	return found
}
