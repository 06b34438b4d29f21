package conditionalaccess

// CountryIndex maps a country code to the named locations whose country list
// contains that code. Built once per run for reverse country→policy queries;
// assembly itself never consults it.
type CountryIndex map[string][]NamedLocation

// BuildCountryIndex derives the reverse index from assembled named locations.
func BuildCountryIndex(locations []NamedLocation) CountryIndex {
	index := make(CountryIndex)
	for _, loc := range locations {
		for _, country := range loc.Countries {
			index[country.Code] = append(index[country.Code], loc)
		}
	}
	return index
}

// LocationIDs returns the ids of every location referencing any of the codes.
func (idx CountryIndex) LocationIDs(codes []string) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, code := range codes {
		for _, loc := range idx[code] {
			ids[loc.ID] = struct{}{}
		}
	}
	return ids
}
