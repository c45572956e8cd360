package models

import (
	"fmt"
	"strings"
)

// Country is an ISO 3166-1 alpha-2 country code. The zero value means
// "no country".
type Country string

// CountryUnknown is the zero Country.
const CountryUnknown Country = ""

// ParseCountry validates a raw country hint. It accepts two-letter codes in
// any case and rejects everything else; callers treat a parse failure as an
// absent hint rather than an error.
func ParseCountry(raw string) (Country, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if len(s) != 2 {
		return CountryUnknown, fmt.Errorf("country %q is not an ISO 3166-1 alpha-2 code", raw)
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return CountryUnknown, fmt.Errorf("country %q is not an ISO 3166-1 alpha-2 code", raw)
		}
	}
	return Country(s), nil
}

func (c Country) String() string { return string(c) }
