package valueobject

import (
	"strings"
)

// Address is the postal address of a selling location as reported upstream.
// Every part is optional because merchants frequently leave fields blank.
type Address struct {
	Line1      string `json:"address_line_1,omitempty"`
	Line2      string `json:"address_line_2,omitempty"`
	Locality   string `json:"locality,omitempty"`
	Region     string `json:"administrative_district_level_1,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// NewAddress trims every part and upper-cases the country code
func NewAddress(line1, line2, locality, region, postalCode, country string) Address {
	return Address{
		Line1:      strings.TrimSpace(line1),
		Line2:      strings.TrimSpace(line2),
		Locality:   strings.TrimSpace(locality),
		Region:     strings.TrimSpace(region),
		PostalCode: strings.TrimSpace(postalCode),
		Country:    strings.ToUpper(strings.TrimSpace(country)),
	}
}

// IsEmpty returns true if no part of the address is set
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// Equals compares two addresses field by field
func (a Address) Equals(other Address) bool {
	return a == other
}

// String renders the address on one line, skipping empty parts
func (a Address) String() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Line1, a.Line2, a.Locality, a.Region, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
